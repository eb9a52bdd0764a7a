package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("swordfish")
	require.NoError(t, err)
	assert.NotEqual(t, "swordfish", hash)

	assert.True(t, VerifyPassword("swordfish", hash))
	assert.False(t, VerifyPassword("Swordfish", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("user-1", "Alice")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	SetSecret("first-secret")
	token, err := GenerateToken("user-1", "Alice")
	require.NoError(t, err)

	SetSecret("second-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	SetSecret("test-secret")
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}
