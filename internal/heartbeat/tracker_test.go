package heartbeat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_BeatThenOnline(t *testing.T) {
	tracker := NewTracker(time.Minute)

	assert.False(t, tracker.IsOnline("w1"))

	at := tracker.Beat("w1")
	assert.False(t, at.IsZero())
	assert.True(t, tracker.IsOnline("w1"))

	last, ok := tracker.LastSeen("w1")
	require.True(t, ok)
	assert.Equal(t, at, last)
}

func TestTracker_TimeoutMakesWorkerAbsent(t *testing.T) {
	tracker := NewTracker(time.Minute)
	base := time.Now()

	tracker.now = func() time.Time { return base }
	tracker.Beat("w1")

	tracker.now = func() time.Time { return base.Add(59 * time.Second) }
	assert.True(t, tracker.IsOnline("w1"))

	tracker.now = func() time.Time { return base.Add(61 * time.Second) }
	assert.False(t, tracker.IsOnline("w1"))

	_, ok := tracker.LastSeen("w1")
	assert.False(t, ok)
}

func TestTracker_SweepRemovesStaleEntries(t *testing.T) {
	tracker := NewTracker(time.Minute)
	base := time.Now()

	tracker.now = func() time.Time { return base }
	tracker.Beat("w1")
	tracker.Beat("w2")

	tracker.now = func() time.Time { return base.Add(30 * time.Second) }
	tracker.Beat("w3")

	tracker.now = func() time.Time { return base.Add(70 * time.Second) }
	removed := tracker.Sweep()
	assert.Equal(t, 2, removed)
	assert.True(t, tracker.IsOnline("w3"))
}

func TestTracker_BeatSweepsOpportunistically(t *testing.T) {
	tracker := NewTracker(time.Minute)
	base := time.Now()

	tracker.now = func() time.Time { return base }
	tracker.Beat("stale")

	tracker.now = func() time.Time { return base.Add(2 * time.Minute) }
	tracker.Beat("fresh")

	tracker.mu.RLock()
	_, staleKept := tracker.seen["stale"]
	tracker.mu.RUnlock()
	assert.False(t, staleKept)
}
