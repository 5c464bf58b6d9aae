package authservice

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

func newTestService(secret, apiKey string) *AuthService {
	return NewAuthService(&config.Config{
		JWT:      config.JWTConfig{Secret: secret, Lifetime: time.Hour},
		Security: config.SecurityConfig{OperatorAPIKey: apiKey},
	}, zerolog.Nop())
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService("test-secret", "key")
	ctx := context.Background()

	token, err := svc.GenerateOperatorToken(ctx, "operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEqual(t, "", claims.OperatorID.String())
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()

	token, err := newTestService("secret-a", "key").GenerateOperatorToken(ctx, "operator")
	require.NoError(t, err)

	_, err = newTestService("secret-b", "key").VerifyToken(ctx, token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestService("test-secret", "key")
	_, err := svc.VerifyToken(context.Background(), "not.a.jwt")
	assert.Error(t, err)
}

func TestMissingSecret(t *testing.T) {
	svc := newTestService("", "key")
	ctx := context.Background()

	_, err := svc.GenerateOperatorToken(ctx, "operator")
	assert.Error(t, err)
	_, err = svc.VerifyToken(ctx, "anything")
	assert.Error(t, err)
}

func TestVerifyAPIKey(t *testing.T) {
	svc := newTestService("test-secret", "expected-key")
	ctx := context.Background()

	assert.NoError(t, svc.VerifyAPIKey(ctx, "expected-key"))
	assert.Error(t, svc.VerifyAPIKey(ctx, "wrong-key"))
	assert.Error(t, svc.VerifyAPIKey(ctx, ""))
}

func TestVerifyAPIKeyRejectsWhenUnconfigured(t *testing.T) {
	svc := newTestService("test-secret", "")
	assert.Error(t, svc.VerifyAPIKey(context.Background(), "anything"))
}
