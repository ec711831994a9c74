package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"discussly/internal/identity"
	"discussly/internal/moderation"
	"discussly/internal/platform/metrics"
	"discussly/internal/transport/http/shared"
	dErrors "discussly/pkg/domain-errors"
)

type ModerationHandler struct {
	moderation *moderation.Service
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewModerationHandler(svc *moderation.Service, m *metrics.Metrics, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{moderation: svc, metrics: m, logger: logger}
}

// Register registers the moderation routes; the caller mounts them behind auth.
func (h *ModerationHandler) Register(r chi.Router) {
	r.Post("/users/{userID}/ban", h.handleBan)
	r.Delete("/users/{userID}/ban", h.handleUnban)
	r.Get("/users/{userID}/ban", h.handleIsBanned)
	r.Get("/users/{userID}/bans", h.handleHistory)
}

type banResponse struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	ModeratorID           string     `json:"moderator_id"`
	Reason                string     `json:"reason"`
	BannedAt              time.Time  `json:"banned_at"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	UnbannedAt            *time.Time `json:"unbanned_at,omitempty"`
	UnbannedByModeratorID *string    `json:"unbanned_by,omitempty"`
}

func toBanResponse(b *identity.Ban) banResponse {
	resp := banResponse{
		ID:          b.ID.String(),
		UserID:      b.UserID.String(),
		ModeratorID: b.ModeratorID.String(),
		Reason:      b.Reason,
		BannedAt:    b.BannedAt,
		ExpiresAt:   b.ExpiresAt,
		UnbannedAt:  b.UnbannedAt,
	}
	if b.UnbannedByModeratorID != nil {
		s := b.UnbannedByModeratorID.String()
		resp.UnbannedByModeratorID = &s
	}
	return resp
}

func (h *ModerationHandler) handleBan(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := pathID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// An absent duration means permanent. A supplied one, including zero or
	// negative, goes to BanFor so bad values are rejected rather than
	// silently escalated to a permanent ban.
	var req struct {
		Reason          string `json:"reason"`
		DurationMinutes *int   `json:"duration_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	var ban *identity.Ban
	if req.DurationMinutes != nil {
		ban, err = h.moderation.BanFor(r.Context(), actor, userID, req.Reason, *req.DurationMinutes)
	} else {
		ban, err = h.moderation.Ban(r.Context(), actor, userID, req.Reason)
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.UsersBanned.Inc()
	shared.WriteJSON(w, http.StatusCreated, toBanResponse(ban))
}

func (h *ModerationHandler) handleUnban(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := pathID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ban, err := h.moderation.Unban(r.Context(), actor, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBanResponse(ban))
}

func (h *ModerationHandler) handleIsBanned(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	banned, err := h.moderation.IsBanned(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"banned": banned})
}

func (h *ModerationHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	userID, err := pathID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	bans, err := h.moderation.History(r.Context(), actor, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]banResponse, 0, len(bans))
	for _, b := range bans {
		out = append(out, toBanResponse(b))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}
