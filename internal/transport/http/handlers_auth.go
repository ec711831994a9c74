package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"discussly/internal/identity"
	"discussly/internal/jwttoken"
	"discussly/internal/platform/metrics"
	"discussly/internal/platform/middleware"
	"discussly/internal/transport/http/shared"
	dErrors "discussly/pkg/domain-errors"
)

// AuthHandler owns the unauthenticated account endpoints.
type AuthHandler struct {
	users    *identity.Service
	tokens   *jwttoken.JWTService
	tokenTTL time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewAuthHandler(users *identity.Service, tokens *jwttoken.JWTService, tokenTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, tokenTTL: tokenTTL, metrics: m, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      u.Role.String(),
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	h.metrics.UsersRegistered.Inc()
	shared.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.KindValidation, "invalid request body"))
		return
	}

	user, err := h.users.Login(ctx, req.Login, req.Password)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	h.logger.InfoContext(ctx, "login",
		"user_id", user.ID.String(),
		"os", ua.OS(),
		"browser", browser,
		"mobile", ua.Mobile(),
		"request_id", middleware.GetRequestID(ctx),
	)

	token, err := h.tokens.GenerateAccessToken(user.ID, user.Role.String(), h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed", "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.KindInternal, "could not issue token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	})
}
