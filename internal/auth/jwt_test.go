package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment-service/internal/config"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiry: time.Minute, Issuer: "investment-service"}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	token, expires, err := GenerateAccessToken(cfg, 42, "client")
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "client", claims.Role)
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := testConfig()
	token, _, err := GenerateAccessToken(cfg, 1, "admin")
	require.NoError(t, err)

	other := cfg
	other.Secret = "another-secret"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := cfg
	expired.Expiry = -time.Minute
	old, _, err := GenerateAccessToken(expired, 1, "admin")
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken(cfg, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
