package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.IssuePair("user-1")
	require.NoError(t, err)

	claims, err := m.Parse(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	claims, err = m.Parse(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenManager_RejectsWrongType(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.IssuePair("user-1")
	require.NoError(t, err)

	_, err = m.Parse(pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	access, err := m.IssueAccess("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(access, TypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("one-secret", time.Hour, time.Hour)
	verifier := NewTokenManager("other-secret", time.Hour, time.Hour)

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = verifier.Parse(access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Parse("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
