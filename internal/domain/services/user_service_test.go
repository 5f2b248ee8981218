package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/infrastructure/config"
)

func TestJWTRoundTrip(t *testing.T) {
	jwtService := NewJWTService(&config.Config{JWTSecretKey: "secret", JWTIssuer: "propertypro", TokenLifetime: time.Hour})

	token, expiresAt, err := jwtService.GenerateToken("user-a", "owner@example.com", "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := jwtService.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-a", claims.Subject)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID)

	other := NewJWTService(&config.Config{JWTSecretKey: "different"})
	_, err = other.ExtractClaims(token)
	assert.Error(t, err)
}

func TestEnsureUserUpserts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := NewUserService(env.db, env.cfg, NewJWTService(env.cfg))

	user, err := users.EnsureUser(ctx, UserProfile{ID: "user-a", Email: " Owner@Example.com ", FirstName: "Layla"})
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "owner@example.com", *user.Email)

	// 令牌未携带的资料保持不变
	user, err = users.EnsureUser(ctx, UserProfile{ID: "user-a", LastName: "Haddad"})
	require.NoError(t, err)
	assert.Equal(t, "Layla", user.FirstName)
	assert.Equal(t, "Haddad", user.LastName)
	assert.Equal(t, "owner@example.com", *user.Email)

	_, err = users.GetUser(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = users.EnsureUser(ctx, UserProfile{ID: strings.Repeat("u", 37)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDevLoginReusesAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.cfg.JWTSecretKey = "secret"
	jwtService := NewJWTService(env.cfg)
	users := NewUserService(env.db, env.cfg, jwtService)

	first, err := users.DevLogin(ctx, DevLoginRequest{Email: "owner@example.com", FirstName: "Layla"})
	require.NoError(t, err)
	second, err := users.DevLogin(ctx, DevLoginRequest{Email: "OWNER@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	claims, err := jwtService.ExtractClaims(second.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.Subject)
	assert.NotEmpty(t, claims.SessionID)

	_, err = users.DevLogin(ctx, DevLoginRequest{Email: "not-an-email"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
