package usecases

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func newTestTokenService(t *testing.T, clock *fixedClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, 24*time.Hour, clock)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	clock := newFixedClock(time.Now())

	_, err := NewTokenService(base64.StdEncoding.EncodeToString([]byte("too-short")), time.Hour, clock)
	assert.Error(t, err)

	_, err = NewTokenService("not base64 !!!", time.Hour, clock)
	assert.Error(t, err)
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a@x.io", 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", claims.Email)
	assert.Equal(t, int64(7), claims.CompanyID)
	assert.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, clock.Now().Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	assert.True(t, svc.IsValidFor(token, "a@x.io"))
	assert.False(t, svc.IsValidFor(token, "b@x.io"))
}

func TestParseExpiredToken(t *testing.T) {
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a@x.io", 7)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, time.Duration(0), svc.RemainingTTL(token))
}

func TestParseRejectsForeignSignature(t *testing.T) {
	clock := newFixedClock(time.Now())
	svc := newTestTokenService(t, clock)

	otherSecret := base64.StdEncoding.EncodeToString([]byte("ffffffffffffffffffffffffffffffff"))
	other, err := NewTokenService(otherSecret, time.Hour, clock)
	require.NoError(t, err)

	token, err := other.Issue("a@x.io", 7)
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestParseMalformedToken(t *testing.T) {
	svc := newTestTokenService(t, newFixedClock(time.Now()))

	_, err := svc.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRemainingTTL(t *testing.T) {
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestTokenService(t, clock)

	token, err := svc.Issue("a@x.io", 7)
	require.NoError(t, err)

	clock.Advance(10 * time.Hour)
	remaining := svc.RemainingTTL(token)
	assert.Equal(t, 14*time.Hour, remaining)
}
