package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("a-different-secret", token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("test-secret", token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ValidateToken("test-secret", "definitely.not.ajwt")
	assert.Error(t, err)
}
