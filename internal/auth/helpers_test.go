package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateAndValidateJWT(t *testing.T) {
	key := []byte("test-key")

	token, err := GenerateJWT(key, "Jane", "jane@school.test", "staff", "school-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(key, token)
	require.NoError(t, err)
	assert.Equal(t, "Jane", claims.Name)
	assert.Equal(t, "jane@school.test", claims.Email)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "school-1", claims.SchoolID)
}

func TestValidateJWTWrongKey(t *testing.T) {
	token, err := GenerateJWT([]byte("key-one"), "Jane", "jane@school.test", "admin", "", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT([]byte("key-two"), token)
	assert.Error(t, err)
}

func TestValidateJWTExpired(t *testing.T) {
	key := []byte("test-key")
	token, err := GenerateJWT(key, "Jane", "jane@school.test", "admin", "", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(key, token)
	assert.Error(t, err)
}
