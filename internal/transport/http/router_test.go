package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussly/internal/community"
	"discussly/internal/content"
	"discussly/internal/identity"
	"discussly/internal/jwttoken"
	"discussly/internal/moderation"
	"discussly/internal/notification"
	"discussly/internal/platform/metrics"
	"discussly/internal/voting"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	users := identity.NewInMemoryUserStore()
	bans := identity.NewInMemoryBanStore(users)
	communities := community.NewInMemoryCommunityStore()
	subs := community.NewInMemorySubscriptionStore()
	posts := content.NewInMemoryPostStore()
	comments := content.NewInMemoryCommentStore()
	postAttachments := content.NewInMemoryPostAttachmentStore()
	commentAttachments := content.NewInMemoryCommentAttachmentStore()
	postVotes := voting.NewInMemoryPostVoteStore()
	commentVotes := voting.NewInMemoryCommentVoteStore()
	events := notification.NewMemoryPublisher()

	identitySvc := identity.NewService(users, identity.NewBcryptHasher(), events, logger)
	communitySvc := community.NewService(communities, subs, logger)
	contentSvc := content.NewService(content.Deps{
		Posts:              posts,
		Comments:           comments,
		PostAttachments:    postAttachments,
		CommentAttachments: commentAttachments,
		Users:              users,
		Communities:        communities,
		Subscriptions:      subs,
	}, logger)
	votingSvc := voting.NewService(voting.Deps{
		PostVotes:    postVotes,
		CommentVotes: commentVotes,
		Posts:        posts,
		Comments:     comments,
		Users:        users,
	}, logger)
	moderationSvc := moderation.NewService(users, bans, events, logger)

	tokens := jwttoken.NewJWTService("test-signing-key", "discussly", "discussly-api")

	return NewRouter(Deps{
		Auth:       NewAuthHandler(identitySvc, tokens, time.Hour, m, logger),
		Users:      NewUserHandler(identitySvc, logger),
		Community:  NewCommunityHandler(communitySvc, logger),
		Content:    NewContentHandler(contentSvc, m, logger),
		Voting:     NewVotingHandler(votingSvc, m, logger),
		Moderation: NewModerationHandler(moderationSvc, m, logger),
		Tokens:     tokens,
		Logger:     logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return rr.Code, nil
	}
	var decoded any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if m, ok := decoded.(map[string]any); ok {
		return rr.Code, m
	}
	// List responses come back wrapped so callers can still index into them.
	return rr.Code, map[string]any{"items": decoded}
}

func registerAndLogin(t *testing.T, router http.Handler, username string) (string, string) {
	t.Helper()
	status, body := doJSON(t, router, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusCreated, status)
	userID := body["id"].(string)

	status, body = doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"login":"`+username+`@example.com","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, status)
	token := body["access_token"].(string)
	require.NotEmpty(t, token)
	return userID, token
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	t.Run("register then login", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/auth/register", "",
			`{"username":"alice","email":"alice@example.com","password":"secret-pass"}`)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "alice@example.com", body["email"])

		status, body = doJSON(t, router, http.MethodPost, "/auth/login", "",
			`{"login":"alice","password":"secret-pass"}`)
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["access_token"])
	})

	t.Run("duplicate email - 409", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/auth/register", "",
			`{"username":"alice2","email":"alice@example.com","password":"secret-pass"}`)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "email already in use", body["error"])
	})

	t.Run("wrong password - 401", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/auth/login", "",
			`{"login":"alice","password":"wrong-pass"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "invalid credentials", body["error"])
	})

	t.Run("bad body - 400", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost, "/auth/register", "", "{bad-json")
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRouter_AuthRequired(t *testing.T) {
	router := newTestRouter(t)

	t.Run("no token - 401", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodGet, "/users/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("garbage token - 401", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodGet, "/users/me", "not-a-jwt", "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("valid token - 200", func(t *testing.T) {
		userID, token := registerAndLogin(t, router, "bob")
		status, body := doJSON(t, router, http.MethodGet, "/users/me", token, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, userID, body["id"])
	})
}

func TestRouter_CommunityAndContentFlow(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "carol")

	status, body := doJSON(t, router, http.MethodPost, "/communities", token,
		`{"name":"golang","display_name":"Go Developers","description":"all things go"}`)
	require.Equal(t, http.StatusCreated, status)
	communityID := body["id"].(string)

	status, body = doJSON(t, router, http.MethodPost, "/communities/"+communityID+"/posts", token,
		`{"title":"first post","content":"hello"}`)
	require.Equal(t, http.StatusCreated, status)
	postID := body["id"].(string)
	assert.Equal(t, false, body["is_edited"])

	status, body = doJSON(t, router, http.MethodPost, "/posts/"+postID+"/comments", token,
		`{"content":"nice one"}`)
	require.Equal(t, http.StatusCreated, status)
	commentID := body["id"].(string)

	status, body = doJSON(t, router, http.MethodPost, "/posts/"+postID+"/comments", token,
		`{"content":"a reply","parent_comment_id":"`+commentID+`"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, router, http.MethodGet, "/posts/"+postID+"/comments", token, "")
	require.Equal(t, http.StatusOK, status)
	roots := body["items"].([]any)
	require.Len(t, roots, 1)
	root := roots[0].(map[string]any)
	assert.Equal(t, commentID, root["id"])
	require.Len(t, root["replies"].([]any), 1)

	t.Run("media attaches and comes back with the post", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/posts/"+postID+"/attachments", token,
			`{"url":"https://cdn.example.com/clip.mp4","file_type":"video","mime_type":"video/mp4","size_bytes":4096,"thumbnail_url":"https://cdn.example.com/clip.jpg","duration_seconds":42,"metadata":{"codec":"h264"}}`)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "video/mp4", body["mime_type"])
		assert.Equal(t, "https://cdn.example.com/clip.jpg", body["thumbnail_url"])
		assert.Equal(t, float64(42), body["duration_seconds"])
		require.IsType(t, map[string]any{}, body["metadata"])
		assert.Equal(t, "h264", body["metadata"].(map[string]any)["codec"])

		status, body = doJSON(t, router, http.MethodGet, "/posts/"+postID, token, "")
		require.Equal(t, http.StatusOK, status)
		attachments := body["attachments"].([]any)
		require.Len(t, attachments, 1)
		assert.Equal(t, "video", attachments[0].(map[string]any)["file_type"])
	})

	t.Run("non-object metadata rejected", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost, "/posts/"+postID+"/attachments", token,
			`{"url":"https://cdn.example.com/b.png","file_type":"image","mime_type":"image/png","size_bytes":1024,"metadata":"plain string"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("creator cannot unsubscribe", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodDelete, "/communities/"+communityID+"/subscribe", token, "")
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "can't unsubscribe as a creator", body["error"])
	})
}

func TestRouter_VotingFlow(t *testing.T) {
	router := newTestRouter(t)
	_, token := registerAndLogin(t, router, "dave")
	_, otherToken := registerAndLogin(t, router, "erin")

	status, body := doJSON(t, router, http.MethodPost, "/communities", token,
		`{"name":"votes","display_name":"Voting Booth"}`)
	require.Equal(t, http.StatusCreated, status)
	communityID := body["id"].(string)

	status, body = doJSON(t, router, http.MethodPost, "/communities/"+communityID+"/posts", token,
		`{"title":"vote on me","content":""}`)
	require.Equal(t, http.StatusCreated, status)
	postID := body["id"].(string)

	status, _ = doJSON(t, router, http.MethodPut, "/posts/"+postID+"/vote", token, `{"vote":"upvote"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, router, http.MethodPut, "/posts/"+postID+"/vote", otherToken, `{"vote":"upvote"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, router, http.MethodGet, "/posts/"+postID+"/score", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["score"])

	status, _ = doJSON(t, router, http.MethodPut, "/posts/"+postID+"/vote", otherToken, `{"vote":"downvote"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, router, http.MethodGet, "/posts/"+postID+"/score", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["score"])

	status, body = doJSON(t, router, http.MethodGet, "/posts/"+postID+"/vote", otherToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "downvote", body["vote"])
}

func TestRouter_ModerationFlow(t *testing.T) {
	router := newTestRouter(t)
	targetID, targetToken := registerAndLogin(t, router, "troll")

	t.Run("non-positive duration rejected", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/users/"+targetID+"/ban", targetToken,
			`{"reason":"spam","duration_minutes":-60}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "ban duration must be positive", body["error"])

		status, _ = doJSON(t, router, http.MethodPost, "/users/"+targetID+"/ban", targetToken,
			`{"reason":"spam","duration_minutes":0}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("plain user cannot ban", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/users/"+targetID+"/ban", targetToken,
			`{"reason":"spam"}`)
		assert.Equal(t, http.StatusForbidden, status)
		assert.NotEmpty(t, body["error"])
	})

	t.Run("ban status is readable", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/users/"+targetID+"/ban", targetToken, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["banned"])
	})
}
