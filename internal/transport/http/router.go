package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"discussly/internal/jwttoken"
	"discussly/internal/platform/middleware"
)

// Deps carries everything the router needs to wire the API together.
type Deps struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Community  *CommunityHandler
	Content    *ContentHandler
	Voting     *VotingHandler
	Moderation *ModerationHandler
	Tokens     *jwttoken.JWTService
	Logger     *slog.Logger
}

// jwtValidatorAdapter bridges the token service onto the middleware's
// validator interface.
type jwtValidatorAdapter struct {
	tokens *jwttoken.JWTService
}

func (a jwtValidatorAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{UserID: claims.UserID, Role: claims.Role}, nil
}

// NewRouter assembles the full HTTP surface: platform middleware, the
// public auth endpoints, and the authenticated API.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	deps.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtValidatorAdapter{tokens: deps.Tokens}, deps.Logger))

		deps.Users.Register(r)
		deps.Community.Register(r)
		deps.Content.Register(r)
		deps.Voting.Register(r)
		deps.Moderation.Register(r)
	})

	return r
}
