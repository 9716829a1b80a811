package weather

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Current(context.Context, float64, float64) (Snapshot, error) {
	return Snapshot{}, errors.New("offline")
}

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestPoller_TrackAndRefresh(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC))
	var fetches atomic.Int32
	p := NewPoller(Static{Condition: Rain, IsDay: true}, fc, time.Minute, nil, func(err error) {
		assert.NoError(t, err)
		fetches.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Track(40, -74)
	snap := receive(t, p.Updates())
	assert.Equal(t, Rain, snap.Condition)
	assert.Equal(t, 40.0, snap.Latitude)
	assert.Equal(t, fc.Now(), snap.ObservedAt)

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Minute)
	snap = receive(t, p.Updates())
	assert.Equal(t, -74.0, snap.Longitude)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestPoller_FailureKeepsQuiet(t *testing.T) {
	fc := clockwork.NewFakeClock()
	errs := make(chan error, 1)
	p := NewPoller(failingSource{}, fc, time.Minute, nil, func(err error) { errs <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Track(1, 2)
	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
	}

	select {
	case s := <-p.Updates():
		t.Fatalf("unexpected snapshot %+v", s)
	default:
	}
}
