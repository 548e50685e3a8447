package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("sid-1", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)

	_, err = ParseSessionToken(token, "other")
	assert.ErrorIs(t, err, ErrInvalidSession)

	expired, err := GenerateSessionToken("sid-1", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken(expired, "secret")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = ParseSessionToken("garbage", "secret")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
