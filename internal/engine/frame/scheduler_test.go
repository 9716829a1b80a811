package frame

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestRequestRunsNextFrameOnly(t *testing.T) {
	s := NewScheduler(clockwork.NewFakeClock())

	calls := 0
	var loop Callback
	loop = func(time.Time) {
		calls++
		s.Request(loop)
	}
	s.Request(loop)

	assert.Equal(t, 1, s.RunFrame())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, s.Pending())

	s.RunFrame()
	s.RunFrame()
	assert.Equal(t, 3, calls)
}

func TestCancel(t *testing.T) {
	s := NewScheduler(clockwork.NewFakeClock())
	ran := false
	id := s.Request(func(time.Time) { ran = true })
	s.Cancel(id)
	s.Cancel(id)

	assert.Zero(t, s.RunFrame())
	assert.False(t, ran)
}

func TestFrameTimestampFromClock(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	s := NewScheduler(clock)

	var got []time.Time
	for range 3 {
		s.Request(func(now time.Time) { got = append(got, now) })
		s.RunFrame()
		clock.Advance(16 * time.Millisecond)
	}

	assert.Equal(t, []time.Time{
		start,
		start.Add(16 * time.Millisecond),
		start.Add(32 * time.Millisecond),
	}, got)
	assert.Equal(t, uint64(3), s.Frames())
	assert.Equal(t, uint64(3), s.Invoked())
}
