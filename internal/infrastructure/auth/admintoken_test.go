package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenService_RoundTrip(t *testing.T) {
	svc := NewAdminTokenService("test-secret", 60)

	token, expiresIn, err := svc.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAdminTokenService_RejectsBadTokens(t *testing.T) {
	svc := NewAdminTokenService("test-secret", 60)

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)

	otherSvc := NewAdminTokenService("other-secret", 60)
	token, _, err := otherSvc.Generate()
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestAdminTokenService_RejectsExpired(t *testing.T) {
	svc := NewAdminTokenService("test-secret", -1)

	token, _, err := svc.Generate()
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestBcryptPasswordHasher(t *testing.T) {
	hasher := NewBcryptPasswordHasher(4)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	assert.NoError(t, hasher.Verify("s3cret", hash))
	assert.Error(t, hasher.Verify("wrong", hash))
	assert.Error(t, hasher.Verify("s3cret", "not-a-hash"))
}
