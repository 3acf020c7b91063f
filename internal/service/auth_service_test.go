package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(NewProfileService(f.store, f.log), "secret", "https://id.example.com")

	token, err := auth.IssueToken("user_1", time.Minute)
	require.NoError(t, err)
	user, err := auth.Authenticate(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)

	// An unseen subject becomes a new user.
	token, err = auth.IssueToken("user_2", time.Minute)
	require.NoError(t, err)
	other, err := auth.Authenticate(f.ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, f.user.ID, other.ID)
	assert.Equal(t, "user_2", other.ExternalID)
}

func TestAuthenticateRejects(t *testing.T) {
	f := newFixture(t)
	profiles := NewProfileService(f.store, f.log)
	auth := NewAuthService(profiles, "secret", "https://id.example.com")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_1",
		Issuer:    "https://id.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.Authenticate(f.ctx, signed)
	assert.ErrorIs(t, err, ErrTokenExpired)

	wrongKey, err := NewAuthService(profiles, "other", "https://id.example.com").IssueToken("user_1", time.Minute)
	require.NoError(t, err)
	_, err = auth.Authenticate(f.ctx, wrongKey)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	wrongIssuer, err := NewAuthService(profiles, "secret", "https://evil.example.com").IssueToken("user_1", time.Minute)
	require.NoError(t, err)
	_, err = auth.Authenticate(f.ctx, wrongIssuer)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = auth.Authenticate(f.ctx, "garbage")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
