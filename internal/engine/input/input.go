// Package input translates SDL2 events into host events.
package input

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// EventType enumerates the events the host reacts to.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventHidden
	EventShown
	EventDeviceReset
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Width  int
	Height int
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to host events. A positive
// wait blocks up to that long for the first event, so an idle host sleeps
// instead of spinning. Returns true if the host should quit.
func (i *Input) Update(wait time.Duration) bool {
	i.events = i.events[:0]

	var event sdl.Event
	if wait > 0 {
		event = sdl.WaitEventTimeout(int(wait.Milliseconds()))
	} else {
		event = sdl.PollEvent()
	}
	quit := false
	for ; event != nil; event = sdl.PollEvent() {
		if i.translate(event) {
			quit = true
		}
	}
	return quit
}

func (i *Input) translate(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		case sdl.WINDOWEVENT_HIDDEN, sdl.WINDOWEVENT_MINIMIZED:
			i.events = append(i.events, Event{Type: EventHidden})
		case sdl.WINDOWEVENT_SHOWN, sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_EXPOSED:
			i.events = append(i.events, Event{Type: EventShown})
		}

	case *sdl.RenderEvent:
		if e.Type == sdl.RENDER_DEVICE_RESET {
			i.events = append(i.events, Event{Type: EventDeviceReset})
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			i.events = append(i.events, Event{
				Type: EventKeyDown,
				Key:  e.Keysym.Sym,
			})
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
