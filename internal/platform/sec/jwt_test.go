// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/platform/sec"
)

func signRS256(t *testing.T, key *rsa.PrivateKey, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

/*
TestInspect_Unverified reads the exp claim without a key and tolerates opaque tokens.
*/
func TestInspect_Unverified(t *testing.T) {
	inspector := sec.NewCredentialInspector()
	expiresAt := time.Now().Add(15 * time.Minute).Truncate(time.Second)

	// 1. HS256 token signed with a secret this process does not know
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	credential, err := inspector.Inspect(token)
	require.NoError(t, err)
	assert.True(t, credential.HasExpiry)
	assert.True(t, credential.ExpiresAt.Equal(expiresAt))

	// 2. Opaque token
	credential, err = inspector.Inspect("opaque-session-token")
	require.NoError(t, err)
	assert.False(t, credential.HasExpiry)

	// 3. Already expired
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	_, err = inspector.Inspect(expired)
	assert.ErrorIs(t, err, sec.ErrInvalidCredential)
}

/*
TestInspect_Verified checks that a configured key rejects foreign signatures.
*/
func TestInspect_Verified(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	inspector := sec.NewVerifyingInspectorFromKey(&key.PublicKey)
	assert.True(t, inspector.Verifies())

	credential, err := inspector.Inspect(signRS256(t, key, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "admin", credential.Subject)
	assert.True(t, credential.HasExpiry)

	_, err = inspector.Inspect(signRS256(t, other, time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, sec.ErrInvalidCredential)

	_, err = inspector.Inspect("opaque-session-token")
	assert.ErrorIs(t, err, sec.ErrInvalidCredential)
}

/*
TestGenerateSecureToken checks length and uniqueness of session identifiers.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 43)
	assert.NotEqual(t, first, second)
}
