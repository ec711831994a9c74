package content

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discussly/internal/community"
	"discussly/internal/identity"
	dErrors "discussly/pkg/domain-errors"
)

type fixture struct {
	svc         *Service
	users       *identity.InMemoryUserStore
	bans        *identity.InMemoryBanStore
	communities *community.InMemoryCommunityStore
	subs        *community.InMemorySubscriptionStore
	now         *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := identity.NewInMemoryUserStore()
	communities := community.NewInMemoryCommunityStore()
	subs := community.NewInMemorySubscriptionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(Deps{
		Posts:              NewInMemoryPostStore(),
		Comments:           NewInMemoryCommentStore(),
		PostAttachments:    NewInMemoryPostAttachmentStore(),
		CommentAttachments: NewInMemoryCommentAttachmentStore(),
		Users:              users,
		Communities:        communities,
		Subscriptions:      subs,
	}, logger, WithClock(func() time.Time {
		// Tick per read so records created back to back still order
		// deterministically.
		now = now.Add(time.Millisecond)
		return now
	}))
	return &fixture{
		svc:         svc,
		users:       users,
		bans:        identity.NewInMemoryBanStore(users),
		communities: communities,
		subs:        subs,
		now:         &now,
	}
}

func (f *fixture) addUser(t *testing.T, username string) identity.Actor {
	t.Helper()
	u := identity.NewUser(username, username+"@example.com", "hash").MustValue()
	require.NoError(t, f.users.Save(context.Background(), u))
	return identity.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) addCommunity(t *testing.T, name string, private bool) *community.Community {
	t.Helper()
	c := community.NewCommunity(name, "Display "+name, "", uuid.New()).MustValue()
	if private {
		c.ToPrivate()
	}
	require.NoError(t, f.communities.Save(context.Background(), c))
	return c
}

func (f *fixture) banUser(t *testing.T, userID uuid.UUID) {
	t.Helper()
	ban := identity.NewBan(userID, uuid.New(), "spam", nil).MustValue()
	require.NoError(t, f.bans.Save(context.Background(), ban))
}

func TestService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		author := f.addUser(t, "alice")
		c := f.addCommunity(t, "golang", false)

		post, err := f.svc.CreatePost(ctx, author, c.ID, "Generics in practice", "some thoughts")
		require.NoError(t, err)
		assert.Equal(t, author.ID, post.AuthorID)
		assert.Equal(t, c.ID, post.CommunityID)
		assert.Equal(t, time.March, post.CreatedAt.Month(), "creation stamps come from the service clock")
	})

	t.Run("title too short", func(t *testing.T) {
		f := newFixture(t)
		author := f.addUser(t, "alice")
		c := f.addCommunity(t, "golang", false)
		_, err := f.svc.CreatePost(ctx, author, c.ID, "ab", "")
		assert.True(t, dErrors.Is(err, dErrors.KindValidation))
	})

	t.Run("banned author denied", func(t *testing.T) {
		f := newFixture(t)
		author := f.addUser(t, "alice")
		c := f.addCommunity(t, "golang", false)
		f.banUser(t, author.ID)

		_, err := f.svc.CreatePost(ctx, author, c.ID, "Generics in practice", "")
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
		assert.Contains(t, err.Error(), "banned")
	})

	t.Run("private community requires membership", func(t *testing.T) {
		f := newFixture(t)
		author := f.addUser(t, "alice")
		c := f.addCommunity(t, "secret", true)

		_, err := f.svc.CreatePost(ctx, author, c.ID, "Hello there", "")
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))

		require.NoError(t, f.subs.Save(ctx, community.NewSubscription(author.ID, c.ID, community.RoleUser)))
		_, err = f.svc.CreatePost(ctx, author, c.ID, "Hello there", "")
		require.NoError(t, err)
	})

	t.Run("markup is sanitized", func(t *testing.T) {
		f := newFixture(t)
		author := f.addUser(t, "alice")
		c := f.addCommunity(t, "golang", false)

		post, err := f.svc.CreatePost(ctx, author, c.ID, "XSS attempt", `hello <script>alert(1)</script>world`)
		require.NoError(t, err)
		assert.NotContains(t, post.Content, "<script>")
		assert.Contains(t, post.Content, "hello")
	})
}

func TestService_EditPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.addUser(t, "alice")
	stranger := f.addUser(t, "bob")
	c := f.addCommunity(t, "golang", false)

	post, err := f.svc.CreatePost(ctx, author, c.ID, "Original title", "original body")
	require.NoError(t, err)

	t.Run("only the author edits", func(t *testing.T) {
		_, err := f.svc.EditPost(ctx, stranger, post.ID, "Hijacked", "body")
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})

	t.Run("partial failure changes nothing", func(t *testing.T) {
		_, err := f.svc.EditPost(ctx, author, post.ID, "Valid new title", strings.Repeat("x", 40001))
		require.Error(t, err)

		unchanged, err := f.svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original title", unchanged.Title)
		assert.Equal(t, "original body", unchanged.Content)
	})

	t.Run("edit marks the post edited", func(t *testing.T) {
		*f.now = f.now.Add(10 * time.Minute)
		updated, err := f.svc.EditPost(ctx, author, post.ID, "Revised title", "revised body")
		require.NoError(t, err)
		assert.True(t, updated.IsEdited())
		assert.Equal(t, "Revised title", updated.Title)
	})
}

func TestService_Comments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.addUser(t, "alice")
	replier := f.addUser(t, "bob")
	c := f.addCommunity(t, "golang", false)

	post, err := f.svc.CreatePost(ctx, author, c.ID, "Discussion", "")
	require.NoError(t, err)

	t.Run("reply must share the post", func(t *testing.T) {
		other, err := f.svc.CreatePost(ctx, author, c.ID, "Other post", "")
		require.NoError(t, err)
		onOther, err := f.svc.CreateComment(ctx, author, other.ID, nil, "elsewhere")
		require.NoError(t, err)

		_, err = f.svc.CreateComment(ctx, replier, post.ID, &onOther.ID, "cross-post reply")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different post")
	})

	t.Run("tree assembly", func(t *testing.T) {
		top1, err := f.svc.CreateComment(ctx, author, post.ID, nil, "first")
		require.NoError(t, err)
		top2, err := f.svc.CreateComment(ctx, replier, post.ID, nil, "second")
		require.NoError(t, err)
		reply, err := f.svc.CreateComment(ctx, replier, post.ID, &top1.ID, "reply to first")
		require.NoError(t, err)
		nested, err := f.svc.CreateComment(ctx, author, post.ID, &reply.ID, "deeper")
		require.NoError(t, err)

		tree, err := f.svc.CommentTree(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, top1.ID, tree[0].Comment.ID)
		assert.Equal(t, top2.ID, tree[1].Comment.ID)
		require.Len(t, tree[0].Replies, 1)
		assert.Equal(t, reply.ID, tree[0].Replies[0].Comment.ID)
		require.Len(t, tree[0].Replies[0].Replies, 1)
		assert.Equal(t, nested.ID, tree[0].Replies[0].Replies[0].Comment.ID)
	})

	t.Run("author edits, stranger cannot", func(t *testing.T) {
		comment, err := f.svc.CreateComment(ctx, replier, post.ID, nil, "typo herre")
		require.NoError(t, err)

		_, err = f.svc.EditComment(ctx, author, comment.ID, "not yours")
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))

		fixed, err := f.svc.EditComment(ctx, replier, comment.ID, "typo here")
		require.NoError(t, err)
		assert.Equal(t, "typo here", fixed.Content)
	})

	t.Run("moderator deletes someone else's comment", func(t *testing.T) {
		comment, err := f.svc.CreateComment(ctx, replier, post.ID, nil, "to be removed")
		require.NoError(t, err)

		err = f.svc.DeleteComment(ctx, author, comment.ID)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))

		mod := identity.Actor{ID: uuid.New(), Role: identity.RoleModerator}
		require.NoError(t, f.svc.DeleteComment(ctx, mod, comment.ID))
	})
}

func TestService_Attachments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.addUser(t, "alice")
	stranger := f.addUser(t, "bob")
	c := f.addCommunity(t, "golang", false)

	post, err := f.svc.CreatePost(ctx, author, c.ID, "Gallery", "")
	require.NoError(t, err)

	image := func(url string, sortOrder int) MediaInput {
		return MediaInput{
			URL:       url,
			FileType:  FileTypeImage,
			MimeType:  "image/png",
			SizeBytes: 1024,
			SortOrder: sortOrder,
		}
	}

	t.Run("only the author attaches", func(t *testing.T) {
		_, err := f.svc.AttachToPost(ctx, stranger, post.ID, image("https://cdn.example.com/a.png", 0))
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
	})

	t.Run("attachments come back in sort order", func(t *testing.T) {
		second, err := f.svc.AttachToPost(ctx, author, post.ID, image("https://cdn.example.com/b.png", 1))
		require.NoError(t, err)
		first, err := f.svc.AttachToPost(ctx, author, post.ID, image("https://cdn.example.com/a.png", 0))
		require.NoError(t, err)

		loaded, err := f.svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Attachments, 2)
		assert.Equal(t, first.ID, loaded.Attachments[0].ID)
		assert.Equal(t, second.ID, loaded.Attachments[1].ID)

		// Swap the pair and read again.
		_, err = f.svc.ReorderPostAttachment(ctx, author, first.ID, 2)
		require.NoError(t, err)
		loaded, err = f.svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, loaded.Attachments[0].ID)
		assert.Equal(t, first.ID, loaded.Attachments[1].ID)
	})

	t.Run("detach honors ownership", func(t *testing.T) {
		a, err := f.svc.AttachToPost(ctx, author, post.ID, image("https://cdn.example.com/c.png", 5))
		require.NoError(t, err)

		err = f.svc.DetachFromPost(ctx, stranger, a.ID)
		assert.True(t, dErrors.Is(err, dErrors.KindPolicyDenied))
		require.NoError(t, f.svc.DetachFromPost(ctx, author, a.ID))
	})

	t.Run("comment attachments", func(t *testing.T) {
		comment, err := f.svc.CreateComment(ctx, author, post.ID, nil, "see attached")
		require.NoError(t, err)
		in := image("https://cdn.example.com/d.png", 0)
		in.SizeBytes = 2048
		a, err := f.svc.AttachToComment(ctx, author, comment.ID, in)
		require.NoError(t, err)
		assert.Equal(t, comment.ID, a.CommentID)
	})
}
