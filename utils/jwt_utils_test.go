package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-length"

func TestJWTToken_RoundTrip(t *testing.T) {
	token, err := GenerateJWTToken("user-1", "admin", testSecret, "mediafolder", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyJWTToken(token, testSecret, "mediafolder")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestVerifyJWTToken_Rejects(t *testing.T) {
	valid, err := GenerateJWTToken("user-1", "admin", testSecret, "mediafolder", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWTToken("user-1", "admin", testSecret, "mediafolder", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
		issuer string
	}{
		{"wrong secret", valid, "another-secret", "mediafolder"},
		{"wrong issuer", valid, testSecret, "someone-else"},
		{"expired", expired, testSecret, "mediafolder"},
		{"garbage", "not-a-token", testSecret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyJWTToken(tt.token, tt.secret, tt.issuer)
			assert.Error(t, err)
		})
	}
}
