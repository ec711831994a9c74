package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"discussly/internal/platform/metrics"
	"discussly/internal/transport/http/shared"
	"discussly/internal/voting"
	dErrors "discussly/pkg/domain-errors"
)

type VotingHandler struct {
	votes   *voting.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewVotingHandler(votes *voting.Service, m *metrics.Metrics, logger *slog.Logger) *VotingHandler {
	return &VotingHandler{votes: votes, metrics: m, logger: logger}
}

// Register registers the voting routes; the caller mounts them behind auth.
func (h *VotingHandler) Register(r chi.Router) {
	r.Put("/posts/{postID}/vote", h.handleVotePost)
	r.Get("/posts/{postID}/vote", h.handleMyPostVote)
	r.Get("/posts/{postID}/score", h.handlePostScore)
	r.Put("/comments/{commentID}/vote", h.handleVoteComment)
	r.Get("/comments/{commentID}/vote", h.handleMyCommentVote)
	r.Get("/comments/{commentID}/score", h.handleCommentScore)
}

type voteRequest struct {
	Vote string `json:"vote"`
}

type voteResponse struct {
	Vote string `json:"vote"`
}

type scoreResponse struct {
	Score int64 `json:"score"`
}

func (h *VotingHandler) handleVotePost(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	voteType, err := voting.ParseVoteType(req.Vote)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	vote, err := h.votes.VotePost(r.Context(), actor, postID, voteType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.VotesCast.Inc()
	shared.WriteJSON(w, http.StatusOK, voteResponse{Vote: vote.Type.String()})
}

func (h *VotingHandler) handleMyPostVote(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voteType, err := h.votes.PostVoteOf(r.Context(), actor.ID, postID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, voteResponse{Vote: voteType.String()})
}

func (h *VotingHandler) handlePostScore(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(chi.URLParam(r, "postID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	score, err := h.votes.PostScore(r.Context(), postID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}

func (h *VotingHandler) handleVoteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	voteType, err := voting.ParseVoteType(req.Vote)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	vote, err := h.votes.VoteComment(r.Context(), actor, commentID, voteType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.VotesCast.Inc()
	shared.WriteJSON(w, http.StatusOK, voteResponse{Vote: vote.Type.String()})
}

func (h *VotingHandler) handleMyCommentVote(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voteType, err := h.votes.CommentVoteOf(r.Context(), actor.ID, commentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, voteResponse{Vote: voteType.String()})
}

func (h *VotingHandler) handleCommentScore(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(chi.URLParam(r, "commentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	score, err := h.votes.CommentScore(r.Context(), commentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, scoreResponse{Score: score})
}
