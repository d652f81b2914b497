package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("test", 2, 30*time.Second)
	b.now = func() time.Time { return now }

	assert.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	now = now.Add(31 * time.Second)
	assert.NoError(t, b.Allow(), "probe after cooldown")
	assert.Equal(t, StateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen, "only one probe at a time")

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("test", 1, time.Second)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	assert.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreaker_CancelFreesProbe(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("test", 1, time.Second)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	assert.NoError(t, b.Allow())
	b.Cancel()
	assert.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := New("test", 2, time.Minute)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_DisabledIsNil(t *testing.T) {
	b := New("off", 0, time.Minute)
	assert.Nil(t, b)
	assert.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}
