package httptransport

import (
	"context"

	"github.com/google/uuid"

	"discussly/internal/identity"
	"discussly/internal/platform/middleware"
	dErrors "discussly/pkg/domain-errors"
)

// actorFrom rebuilds the acting user from what RequireAuth put in the
// context. Handlers behind that middleware can treat a failure here as a
// server-side bug, not a client error.
func actorFrom(ctx context.Context) (identity.Actor, error) {
	id, err := uuid.Parse(middleware.GetUserID(ctx))
	if err != nil {
		return identity.Actor{}, dErrors.New(dErrors.KindUnauthorized, "authentication context error")
	}
	role, err := identity.ParseRole(middleware.GetRole(ctx))
	if err != nil {
		return identity.Actor{}, dErrors.New(dErrors.KindUnauthorized, "authentication context error")
	}
	return identity.Actor{ID: id, Role: role}, nil
}

// pathID parses a UUID path parameter.
func pathID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.KindValidation, "invalid id")
	}
	return id, nil
}
