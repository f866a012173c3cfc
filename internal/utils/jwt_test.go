package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", "alice", "EMPLOYEE", "sid-1", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), at.Exp, 5*time.Second)

	c, err := ParseAccessToken("secret", at.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.Equal(t, "EMPLOYEE", c.Role)
	assert.Equal(t, "sid-1", c.SessionID)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	at, err := NewAccessToken("secret", "alice", "ADMIN", "sid", time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", at.Token)
	assert.Error(t, err)

	expired, err := NewAccessToken("secret", "alice", "ADMIN", "sid", -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	assert.Error(t, err)

	_, err = ParseAccessToken("secret", "not.a.jwt")
	assert.Error(t, err)
}
