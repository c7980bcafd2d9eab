package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func newTestManager() *Manager {
	return NewManager(testSecret, "webmail-test", 15*time.Minute, 7*24*time.Hour)
}

func TestGenerateTokenPair(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair("alice", "alice@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}

func TestValidateToken(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair("alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "webmail-test", claims.Issuer)
	assert.Equal(t, "alice", claims.Subject)
}

func TestValidateToken_Invalid(t *testing.T) {
	m := newTestManager()

	_, err := m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 其他密钥签出的令牌
	other := NewManager("a-completely-different-secret-key", "webmail-test", time.Minute, time.Hour)
	pair, err := other.GenerateTokenPair("alice", "alice@example.com")
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	m := NewManager(testSecret, "webmail-test", -time.Minute, time.Hour)

	pair, err := m.GenerateTokenPair("alice", "alice@example.com")
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair("alice", "alice@example.com")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)

	_, err = m.RefreshAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
