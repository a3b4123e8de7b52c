package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	s := setupTestStore(t)
	users := NewUserService(s, testConfig())
	ctx := context.Background()

	user, err := users.Register(ctx, "Carol@Example.com", "Carol", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email, "emails are stored lowercased")
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "sup3rsecret", user.PasswordHash)

	authed, err := users.Authenticate(ctx, "carol@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegister_Validation(t *testing.T) {
	s := setupTestStore(t)
	users := NewUserService(s, testConfig())
	ctx := context.Background()

	_, err := users.Register(ctx, "not-an-email", "X", "sup3rsecret")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = users.Register(ctx, "carol@example.com", "Carol", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = users.Register(ctx, "carol@example.com", "Carol", "sup3rsecret")
	require.NoError(t, err)
	_, err = users.Register(ctx, "CAROL@example.com", "Other Carol", "sup3rsecret")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate_Failures(t *testing.T) {
	s := setupTestStore(t)
	users := NewUserService(s, testConfig())
	ctx := context.Background()

	_, err := users.Register(ctx, "carol@example.com", "Carol", "sup3rsecret")
	require.NoError(t, err)

	// Wrong password and unknown user are the same error
	_, err = users.Authenticate(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody@example.com", "sup3rsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueToken(t *testing.T) {
	s := setupTestStore(t)
	cfg := testConfig()
	users := NewUserService(s, cfg)

	user, err := users.Register(context.Background(), "carol@example.com", "Carol", "sup3rsecret")
	require.NoError(t, err)

	signed, err := users.IssueToken(user)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	subject, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
}
