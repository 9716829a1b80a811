package main

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/app"
	"github.com/Faultbox/aetheria/internal/config"
	"github.com/Faultbox/aetheria/internal/engine/canvas"
	"github.com/Faultbox/aetheria/internal/engine/debug"
	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/input"
	"github.com/Faultbox/aetheria/internal/engine/renderer"
	"github.com/Faultbox/aetheria/internal/engine/window"
	"github.com/Faultbox/aetheria/internal/logger"
	"github.com/Faultbox/aetheria/internal/overlay"
)

var keyCommands = map[sdl.Keycode]app.Command{
	sdl.K_c: app.CycleCondition,
	sdl.K_l: app.CycleCity,
	sdl.K_n: app.ToggleDay,
	sdl.K_m: app.ToggleMute,
}

// desktop hosts the app in an SDL window.
type desktop struct {
	win    *window.Window
	input  *input.Input
	canvas *canvas.Canvas
	device *renderer.Device
	shots  *debug.Screenshots
	events []app.Event
	log    *zap.Logger

	hidden      bool
	captureNext bool
}

// hiddenWait bounds each event wait while the window is hidden.
const hiddenWait = 100 * time.Millisecond

func newDesktop(cfg *config.Config) (*desktop, error) {
	win, err := window.New(window.Config{
		Title:      "Aetheria",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, err
	}
	return &desktop{
		win:   win,
		input: input.New(),
		shots: debug.NewScreenshots(cfg.Debug.ScreenshotDir, "aetheria", nil),
		log:   logger.Named("desktop"),
	}, nil
}

func (d *desktop) Size() (int, int) {
	return d.win.Size()
}

func (d *desktop) OpenSurface() (gpu.Device, error) {
	dev, err := d.win.OpenSurface()
	if err != nil {
		return nil, err
	}
	d.device, _ = dev.(*renderer.Device)

	// The canvas lives on the window's context, so it outlives remounts.
	if d.canvas == nil {
		w, h := d.win.Size()
		c, err := canvas.New(w, h)
		if err != nil {
			d.log.Warn("overlay disabled", zap.Error(err))
		} else {
			d.canvas = c
		}
	}
	return dev, nil
}

func (d *desktop) CloseSurface(dev gpu.Device) {
	d.device = nil
	d.win.CloseSurface(dev)
}

func (d *desktop) Poll() []app.Event {
	d.events = d.events[:0]
	var wait time.Duration
	if d.hidden {
		wait = hiddenWait
	}
	d.input.Update(wait)
	for _, e := range d.input.Events() {
		switch e.Type {
		case input.EventQuit:
			d.events = append(d.events, app.Event{Kind: app.EventQuit})
		case input.EventWindowResize:
			w, h := d.win.Size()
			if d.canvas != nil {
				d.canvas.Resize(w, h)
			}
			d.events = append(d.events, app.Event{Kind: app.EventResize, Width: w, Height: h})
		case input.EventHidden:
			d.hidden = true
			d.events = append(d.events, app.Event{Kind: app.EventHidden})
		case input.EventShown:
			d.hidden = false
			d.events = append(d.events, app.Event{Kind: app.EventShown})
		case input.EventDeviceReset:
			d.log.Warn("graphics device reset")
			if d.device != nil {
				d.device.Lose()
			}
		case input.EventKeyDown:
			switch cmd, ok := keyCommands[e.Key]; {
			case e.Key == sdl.K_ESCAPE:
				d.events = append(d.events, app.Event{Kind: app.EventQuit})
			case e.Key == sdl.K_p:
				d.captureNext = true
			case ok:
				d.events = append(d.events, app.Event{Kind: app.EventCommand, Command: cmd})
			}
		}
	}
	return d.events
}

func (d *desktop) Present(o *overlay.Overlay) {
	if d.canvas != nil {
		d.canvas.Begin()
		o.Draw(painter{d.canvas})
		d.canvas.End()
	}
	if d.captureNext {
		d.captureNext = false
		d.capture()
	}
	d.win.SwapBuffers()
}

func (d *desktop) capture() {
	if d.device == nil {
		return
	}
	pixels, w, h := d.device.ReadPixels()
	name, err := d.shots.SaveGL(pixels, w, h)
	if err != nil {
		d.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	d.log.Info("screenshot saved", zap.String("file", name))
}

func (d *desktop) SetTitle(title string) {
	d.win.SetTitle(title)
}

func (d *desktop) Close() {
	if d.canvas != nil {
		d.canvas.Close()
	}
	d.win.Close()
}

// painter draws overlay shapes on the canvas.
type painter struct {
	c *canvas.Canvas
}

func (p painter) FillRect(x, y, w, h float32, col overlay.Color) {
	p.c.FillRect(x, y, w, h, canvas.Color(col))
}

func (p painter) FillCircle(cx, cy, r, blur float32, col overlay.Color) {
	p.c.FillCircle(cx, cy, r, blur, canvas.Color(col))
}
