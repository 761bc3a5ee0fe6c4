package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, clock func() time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{
		SessionSecret: "session-secret-for-tests",
		StreamSecret:  "stream-secret-for-tests",
		SessionTTL:    24 * time.Hour,
		StreamTTL:     10 * time.Minute,
		Clock:         clock,
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SessionSecret: "", StreamSecret: "x", SessionTTL: time.Hour, StreamTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewService(Config{SessionSecret: "same", StreamSecret: "same", SessionTTL: time.Hour, StreamTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewService(Config{SessionSecret: "a", StreamSecret: "b", SessionTTL: 0, StreamTTL: time.Hour})
	assert.Error(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)

	raw, expiresAt, err := svc.IssueSession(42, "admin@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.VerifySession(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestStreamTokenRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)

	raw, ttl, err := svc.IssueStream("media-abc")
	require.NoError(t, err)
	assert.Equal(t, 600, ttl)

	claims, err := svc.VerifyStream(raw)
	require.NoError(t, err)
	assert.Equal(t, "media-abc", claims.MediaID)
}

func TestCrossDomainTokensNeverValidate(t *testing.T) {
	svc := newTestService(t, nil)

	session, _, err := svc.IssueSession(1, "admin@example.com")
	require.NoError(t, err)
	stream, _, err := svc.IssueStream("media-abc")
	require.NoError(t, err)

	_, err = svc.VerifyStream(session)
	assert.ErrorIs(t, err, ErrInvalidToken, "session token must not authorize streaming")

	_, err = svc.VerifySession(stream)
	assert.ErrorIs(t, err, ErrInvalidToken, "stream token must not authorize admin operations")
}

func TestExpiredTokenRejected(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, func() time.Time { return current })

	raw, ttl, err := svc.IssueStream("media-abc")
	require.NoError(t, err)

	// Still valid one second before expiry.
	current = current.Add(time.Duration(ttl)*time.Second - time.Second)
	_, err = svc.VerifyStream(raw)
	assert.NoError(t, err)

	// Invalid once the clock passes expires_at.
	current = current.Add(2 * time.Second)
	_, err = svc.VerifyStream(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestService(t, nil)

	raw, _, err := svc.IssueStream("media-abc")
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.VerifyStream(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingAndGarbageTokens(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.VerifyStream("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.VerifySession("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.VerifyStream("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	svc := newTestService(t, nil)
	other, err := NewService(Config{
		SessionSecret: "another-session-secret",
		StreamSecret:  "another-stream-secret",
		SessionTTL:    time.Hour,
		StreamTTL:     time.Hour,
	})
	require.NoError(t, err)

	raw, _, err := svc.IssueStream("media-abc")
	require.NoError(t, err)

	_, err = other.VerifyStream(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
