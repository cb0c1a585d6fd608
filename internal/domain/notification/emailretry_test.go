package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedEntry(t *testing.T, attempts int, createdAt time.Time, lastAttemptAt *time.Time) *EmailRetryEntry {
	t.Helper()
	e, err := ReconstructEmailRetryEntry(1, "ord_abc", EmailKindKeyDelivery,
		"user@example.com", map[string]string{"key": "abc"}, attempts, createdAt, lastAttemptAt)
	require.NoError(t, err)
	return e
}

func TestNewEmailRetryEntry(t *testing.T) {
	e, err := NewEmailRetryEntry("ord_abc", EmailKindKeyDelivery, "user@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Attempts())
	assert.Nil(t, e.LastAttemptAt())
	assert.NotNil(t, e.Payload())

	_, err = NewEmailRetryEntry("", EmailKindKeyDelivery, "user@example.com", nil)
	assert.Error(t, err)

	_, err = NewEmailRetryEntry("ord_abc", EmailKind("sms"), "user@example.com", nil)
	assert.Error(t, err)

	_, err = NewEmailRetryEntry("ord_abc", EmailKindAdminNotify, "", nil)
	assert.Error(t, err)
}

func TestEmailRetryEntry_ShouldRetry(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := created.Add(30 * time.Minute)
	old := created.Add(-2 * time.Hour)

	tests := []struct {
		name          string
		attempts      int
		lastAttemptAt *time.Time
		now           time.Time
		want          bool
	}{
		{name: "fresh entry retries immediately", attempts: 0, now: created.Add(time.Minute), want: true},
		{name: "recent attempt waits for interval", attempts: 1, lastAttemptAt: &recent, now: recent.Add(30 * time.Minute), want: false},
		{name: "interval elapsed retries", attempts: 1, lastAttemptAt: &recent, now: recent.Add(time.Hour), want: true},
		{name: "exhausted attempts never retry", attempts: 5, lastAttemptAt: &old, now: created.Add(2 * time.Hour), want: false},
		{name: "expired entry never retries", attempts: 0, now: created.Add(25 * time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := queuedEntry(t, tt.attempts, created, tt.lastAttemptAt)
			assert.Equal(t, tt.want, e.ShouldRetry(tt.now))
		})
	}
}

func TestEmailRetryEntry_RecordAttempt(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := queuedEntry(t, 0, created, nil)

	e.RecordAttempt()
	assert.Equal(t, 1, e.Attempts())
	require.NotNil(t, e.LastAttemptAt())

	for i := 0; i < 4; i++ {
		e.RecordAttempt()
	}
	assert.True(t, e.IsExhausted())
}
