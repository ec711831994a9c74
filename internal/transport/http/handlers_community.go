package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"discussly/internal/community"
	"discussly/internal/transport/http/shared"
	dErrors "discussly/pkg/domain-errors"
)

type CommunityHandler struct {
	communities *community.Service
	logger      *slog.Logger
}

func NewCommunityHandler(communities *community.Service, logger *slog.Logger) *CommunityHandler {
	return &CommunityHandler{communities: communities, logger: logger}
}

// Register registers the community routes; the caller mounts them behind auth.
func (h *CommunityHandler) Register(r chi.Router) {
	r.Post("/communities", h.handleCreate)
	r.Get("/communities/{communityID}", h.handleGet)
	r.Patch("/communities/{communityID}", h.handleUpdateProfile)
	r.Put("/communities/{communityID}/visibility", h.handleSetVisibility)
	r.Post("/communities/{communityID}/transfer", h.handleTransfer)
	r.Post("/communities/{communityID}/subscribe", h.handleSubscribe)
	r.Delete("/communities/{communityID}/subscribe", h.handleUnsubscribe)
	r.Get("/communities/{communityID}/members", h.handleMembers)
	r.Put("/communities/{communityID}/members/{userID}/role", h.handleSetMemberRole)
}

type communityResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	OwnerID     string `json:"owner_id"`
	IsPrivate   bool   `json:"is_private"`
}

func toCommunityResponse(c *community.Community) communityResponse {
	return communityResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		DisplayName: c.DisplayName,
		Description: c.Description,
		AvatarURL:   c.AvatarURL,
		OwnerID:     c.OwnerID.String(),
		IsPrivate:   c.IsPrivate,
	}
}

type subscriptionResponse struct {
	UserID       string    `json:"user_id"`
	CommunityID  string    `json:"community_id"`
	Role         string    `json:"role"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

func toSubscriptionResponse(s *community.Subscription) subscriptionResponse {
	return subscriptionResponse{
		UserID:       s.UserID.String(),
		CommunityID:  s.CommunityID.String(),
		Role:         s.Role.String(),
		SubscribedAt: s.SubscribedAt,
	}
}

func (h *CommunityHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	created, err := h.communities.Create(r.Context(), actor, req.Name, req.DisplayName, req.Description)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toCommunityResponse(created))
}

func (h *CommunityHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.communities.Get(r.Context(), communityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCommunityResponse(c))
}

func (h *CommunityHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	updated, err := h.communities.UpdateProfile(r.Context(), actor, communityID, req.DisplayName, req.Description, req.AvatarURL)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCommunityResponse(updated))
}

func (h *CommunityHandler) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Private bool `json:"private"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	updated, err := h.communities.SetPrivate(r.Context(), actor, communityID, req.Private)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCommunityResponse(updated))
}

func (h *CommunityHandler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		NewOwnerID string `json:"new_owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}
	newOwnerID, err := pathID(req.NewOwnerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.communities.TransferOwnership(r.Context(), actor, communityID, newOwnerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCommunityResponse(updated))
}

func (h *CommunityHandler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sub, err := h.communities.Subscribe(r.Context(), actor, communityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *CommunityHandler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.communities.Unsubscribe(r.Context(), actor, communityID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommunityHandler) handleMembers(w http.ResponseWriter, r *http.Request) {
	communityID, err := pathID(chi.URLParam(r, "communityID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	members, err := h.communities.Members(r.Context(), communityID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]subscriptionResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toSubscriptionResponse(m))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *CommunityHandler) handleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	communityID, err := pathID(chi.URLParam(r, "communityID"))
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
	role, err := community.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sub, err := h.communities.SetMemberRole(r.Context(), actor, communityID, userID, role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}
