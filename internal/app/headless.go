package app

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/overlay"
)

// HeadlessHost renders into accounting devices instead of a window. Push
// feeds it events from another goroutine, e.g. a signal handler.
type HeadlessHost struct {
	mu     sync.Mutex
	events []Event
	hidden bool

	width, height int
	clock         clockwork.Clock
	interval      time.Duration

	device   *gpu.Headless
	opened   int
	title    string
	presents int
	shapes   int
}

// NewHeadlessHost creates a host of the given size that paces Present to
// fps frames per second. fps <= 0 disables pacing.
func NewHeadlessHost(width, height int, clock clockwork.Clock, fps int) *HeadlessHost {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	h := &HeadlessHost{width: width, height: height, clock: clock}
	if fps > 0 {
		h.interval = time.Second / time.Duration(fps)
	}
	return h
}

// Size implements globe.Container.
func (h *HeadlessHost) Size() (int, int) {
	return h.width, h.height
}

// OpenSurface implements globe.Container.
func (h *HeadlessHost) OpenSurface() (gpu.Device, error) {
	h.device = gpu.NewHeadless()
	h.opened++
	return h.device, nil
}

// CloseSurface implements globe.Container.
func (h *HeadlessHost) CloseSurface(dev gpu.Device) {
	dev.Close()
}

// Push queues an event for the next Poll.
func (h *HeadlessHost) Push(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch ev.Kind {
	case EventResize:
		h.width, h.height = ev.Width, ev.Height
	case EventHidden:
		h.hidden = true
	case EventShown:
		h.hidden = false
	}
	h.events = append(h.events, ev)
}

// Poll implements Host. While hidden nothing is presented, so Poll takes
// over the pacing.
func (h *HeadlessHost) Poll() []Event {
	h.mu.Lock()
	hidden := h.hidden
	events := h.events
	h.events = nil
	h.mu.Unlock()
	if hidden && h.interval > 0 {
		h.clock.Sleep(h.interval)
	}
	return events
}

// Present implements Host.
func (h *HeadlessHost) Present(o *overlay.Overlay) {
	o.Draw(h)
	h.presents++
	if h.interval > 0 {
		h.clock.Sleep(h.interval)
	}
}

// FillRect implements overlay.Painter by counting.
func (h *HeadlessHost) FillRect(_, _, _, _ float32, _ overlay.Color) {
	h.shapes++
}

// FillCircle implements overlay.Painter by counting.
func (h *HeadlessHost) FillCircle(_, _, _, _ float32, _ overlay.Color) {
	h.shapes++
}

// SetTitle implements Host.
func (h *HeadlessHost) SetTitle(title string) {
	h.title = title
}

// Title returns the last title set.
func (h *HeadlessHost) Title() string {
	return h.title
}

// Device returns the most recently opened surface.
func (h *HeadlessHost) Device() *gpu.Headless {
	return h.device
}

// Opened counts surfaces opened so far.
func (h *HeadlessHost) Opened() int {
	return h.opened
}

// Presents counts presented frames.
func (h *HeadlessHost) Presents() int {
	return h.presents
}

// Shapes counts overlay shapes drawn across all frames.
func (h *HeadlessHost) Shapes() int {
	return h.shapes
}
