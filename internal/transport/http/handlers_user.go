package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"discussly/internal/identity"
	"discussly/internal/transport/http/shared"
	dErrors "discussly/pkg/domain-errors"
)

// UserHandler owns the authenticated account endpoints.
type UserHandler struct {
	users  *identity.Service
	logger *slog.Logger
}

func NewUserHandler(users *identity.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register registers the user routes; the caller mounts them behind auth.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users/me", h.handleMe)
	r.Patch("/users/{userID}/username", h.handleUpdateUsername)
	r.Patch("/users/{userID}/avatar", h.handleUpdateAvatar)
	r.Patch("/users/{userID}/password", h.handleChangePassword)
	r.Delete("/users/{userID}", h.handleSoftDelete)
	r.Post("/users/{userID}/restore", h.handleRestore)
	r.Put("/users/{userID}/role", h.handleAssignRole)
	r.Post("/users/purge", h.handlePurge)
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	user, err := h.users.GetByID(r.Context(), actor.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	user, err := h.users.UpdateUsername(r.Context(), actor, userID, req.Username)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	user, err := h.users.UpdateAvatar(r.Context(), actor, userID, req.AvatarURL)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	if err := h.users.ChangePassword(r.Context(), actor, userID, req.CurrentPassword, req.NewPassword); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.users.SoftDelete(r.Context(), actor, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
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
	if err := h.users.Restore(r.Context(), actor, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.users.AssignRole(r.Context(), actor, userID, role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) handlePurge(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		DaysOld int `json:"days_old"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	purged, err := h.users.PurgeDeleted(r.Context(), actor, req.DaysOld)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"purged": purged})
}
