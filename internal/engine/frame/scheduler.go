// Package frame provides a cooperative per-frame callback scheduler. The host
// loop calls RunFrame once per display refresh; components request a callback
// for the next frame and re-request from inside it to keep a loop running.
package frame

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// ID identifies a pending callback. Zero is never issued.
type ID uint64

// Callback receives the frame timestamp.
type Callback func(now time.Time)

type request struct {
	id ID
	cb Callback
}

// Scheduler queues callbacks for the next frame. It is not safe for
// concurrent use; everything runs on the host thread.
type Scheduler struct {
	clock   clockwork.Clock
	next    ID
	pending []request
	frames  uint64
	invoked uint64
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Request schedules cb for the next frame.
func (s *Scheduler) Request(cb Callback) ID {
	s.next++
	s.pending = append(s.pending, request{id: s.next, cb: cb})
	return s.next
}

// Cancel drops a pending callback. Unknown IDs are ignored.
func (s *Scheduler) Cancel(id ID) {
	for i, r := range s.pending {
		if r.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// RunFrame invokes the callbacks queued before this call, in request order.
// Callbacks requested while the frame runs wait for the next one. It returns
// the number of callbacks invoked.
func (s *Scheduler) RunFrame() int {
	batch := s.pending
	s.pending = nil
	s.frames++

	now := s.clock.Now()
	for _, r := range batch {
		r.cb(now)
	}
	s.invoked += uint64(len(batch))
	return len(batch)
}

// Frames returns how many times RunFrame was called.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// Invoked returns the total number of callbacks run.
func (s *Scheduler) Invoked() uint64 {
	return s.invoked
}
