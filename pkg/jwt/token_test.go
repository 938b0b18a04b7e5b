package jwtPkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseSession(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	token, expiresAt, err := SignSession("01HSESSION", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	sessionID, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "01HSESSION", sessionID)
}

func TestParseSessionTokenRejectsBadTokens(t *testing.T) {
	t.Setenv(SecretEnvKey, "test-secret")

	expired, _, err := SignSession("s", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSessionToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSessionToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	t.Setenv(SecretEnvKey, "other-secret")
	valid, _, err := SignSession("s", time.Hour)
	require.NoError(t, err)
	t.Setenv(SecretEnvKey, "test-secret")
	_, err = ParseSessionToken(valid)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignSessionRequiresSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "")

	_, _, err := SignSession("s", time.Hour)
	assert.ErrorIs(t, err, ErrSecretMissing)
}
