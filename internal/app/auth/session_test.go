package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)

	principal := Principal{
		UserID:     "12345",
		Name:       "Jamie Developer",
		AvatarURL:  "https://avatars.example.com/u/12345",
		ProfileURL: "https://github.com/jamie",
	}

	token, err := sessions.Issue(principal)
	require.NoError(t, err)

	got, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, got)
}

func TestSessionExpiry(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)

	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions.Now = func() time.Time { return issued }

	token, err := sessions.Issue(Principal{UserID: "12345"})
	require.NoError(t, err)

	sessions.Now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = sessions.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsTampering(t *testing.T) {
	sessions := NewSessions("secret", time.Hour, false)

	token, err := sessions.Issue(Principal{UserID: "12345"})
	require.NoError(t, err)

	_, err = sessions.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other := NewSessions("different-secret", time.Hour, false)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = sessions.Parse("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
