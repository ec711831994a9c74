package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "discussly/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "discussly", "discussly-api")
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "moderator", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "moderator", claims.Role)
	assert.Equal(t, "discussly", claims.Issuer)

	extracted, err := svc.ExtractUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "discussly", "discussly-api")

	token, err := svc.GenerateAccessToken(uuid.New(), "user", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.KindUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_WrongKey(t *testing.T) {
	issuer := NewJWTService("key-one", "discussly", "discussly-api")
	verifier := NewJWTService("key-two", "discussly", "discussly-api")

	token, err := issuer.GenerateAccessToken(uuid.New(), "user", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, dErrors.Is(err, dErrors.KindUnauthorized))
}

func TestJWTService_Garbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "discussly", "discussly-api")
	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, dErrors.Is(err, dErrors.KindUnauthorized))
}
