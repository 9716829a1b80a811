// Package app runs the weather globe: it mounts the globe on a host surface,
// feeds it weather and user commands, and drives the shared frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/config"
	"github.com/Faultbox/aetheria/internal/engine/frame"
	"github.com/Faultbox/aetheria/internal/engine/texture"
	"github.com/Faultbox/aetheria/internal/globe"
	"github.com/Faultbox/aetheria/internal/logger"
	"github.com/Faultbox/aetheria/internal/observability"
	"github.com/Faultbox/aetheria/internal/overlay"
	"github.com/Faultbox/aetheria/internal/weather"
)

// maxRemounts bounds how often a faulted globe is rebuilt.
const maxRemounts = 3

// ErrTooManyFaults is returned by Step once the globe keeps faulting after
// maxRemounts rebuilds.
var ErrTooManyFaults = errors.New("app: globe keeps faulting")

// Command is a user action the host binds to a key.
type Command int

const (
	CycleCondition Command = iota + 1
	CycleCity
	ToggleDay
	ToggleMute
)

// EventKind enumerates host events.
type EventKind int

const (
	EventQuit EventKind = iota + 1
	EventResize
	EventHidden
	EventShown
	EventCommand
)

// Event is a host event. Width and Height are set for EventResize, Command
// for EventCommand.
type Event struct {
	Kind    EventKind
	Width   int
	Height  int
	Command Command
}

// Host is the platform side: the globe's container plus event polling and
// presentation.
type Host interface {
	globe.Container
	// Poll returns the events since the previous call. While the host is
	// hidden it may block briefly waiting for the next event.
	Poll() []Event
	// Present draws the overlay over the rendered frame and shows it. It is
	// not called while hidden.
	Present(o *overlay.Overlay)
	SetTitle(title string)
}

// Ambience is the sound side of the app.
type Ambience interface {
	Play(c weather.Condition)
	Thunder()
	SetMuted(muted bool)
	Muted() bool
}

// City is a preset location.
type City struct {
	Name     string
	Lat, Lng float64
}

// Cities are cycled by the CycleCity command.
var Cities = []City{
	{"New York", 40.7128, -74.0060},
	{"London", 51.5074, -0.1278},
	{"Tokyo", 35.6762, 139.6503},
	{"Sydney", -33.8688, 151.2093},
	{"Reykjavik", 64.1466, -21.9426},
	{"Cairo", 30.0444, 31.2357},
	{"Rio de Janeiro", -22.9068, -43.1729},
}

// Options wires an App. Config and Host are required.
type Options struct {
	Config  *config.Config
	Host    Host
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	// Fetcher loads globe textures; nil skips texture loading.
	Fetcher texture.Fetcher
	// Source polls live weather; nil keeps the configured condition.
	Source weather.Source
	// Audio is optional.
	Audio Ambience
}

// App owns the globe, the overlay and the frame loop.
type App struct {
	cfg     *config.Config
	host    Host
	clock   clockwork.Clock
	metrics *observability.Metrics
	audio   Ambience
	log     *zap.Logger

	sched   *frame.Scheduler
	loader  *texture.Loader
	globe   *globe.Manager
	overlay *overlay.Overlay
	poller  *weather.Poller

	condition weather.Condition
	city      int
	lat, lng  float64
	isDay     bool
	visible   bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	ready     <-chan struct{}
	revealed  bool
	mountedAt time.Time
	lastStats time.Time
	fault     error
	remounts  int
}

// New creates an app. Nothing is mounted until Start.
func New(opts Options) (*App, error) {
	if opts.Config == nil || opts.Host == nil {
		return nil, errors.New("app: config and host are required")
	}
	cfg := opts.Config
	cond, err := weather.Parse(cfg.Globe.Condition)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}

	a := &App{
		cfg:       cfg,
		host:      opts.Host,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
		audio:     opts.Audio,
		log:       logger.Named("app"),
		sched:     frame.NewScheduler(opts.Clock),
		condition: cond,
		city:      cityIndex(cfg.Globe.Latitude, cfg.Globe.Longitude),
		lat:       cfg.Globe.Latitude,
		lng:       cfg.Globe.Longitude,
		isDay:     cfg.Globe.IsDay,
		visible:   true,
	}

	if opts.Fetcher != nil {
		a.loader = texture.NewLoader(opts.Fetcher, cfg.Assets.FetchTimeout, logger.Named("texture"))
		a.loader.OnResult = a.metrics.TextureLoaded
	}

	var onThunder func()
	if a.audio != nil {
		onThunder = a.audio.Thunder
	}
	a.globe = globe.NewManager(globe.Options{
		Textures: globe.TextureURLs{
			Day:    cfg.Assets.EarthDay,
			Bump:   cfg.Assets.EarthBump,
			Water:  cfg.Assets.EarthWater,
			Night:  cfg.Assets.EarthNight,
			Clouds: cfg.Assets.Clouds,
		},
		Loader:            a.loader,
		Scheduler:         a.sched,
		Metrics:           a.metrics,
		Logger:            logger.Named("globe"),
		SpinPerFrame:      cfg.Globe.SpinPerFrame,
		CloudSpinPerFrame: cfg.Globe.CloudSpinPerFrame,
		OnFailure:         func(err error) { a.fault = err },
		OnThunder:         onThunder,
	})

	w, h := opts.Host.Size()
	a.overlay = overlay.New(w, h, nil, logger.Named("overlay"))

	if opts.Source != nil {
		a.poller = weather.NewPoller(opts.Source, opts.Clock, cfg.Weather.RefreshInterval,
			logger.Named("weather"), a.metrics.WeatherFetched)
	}
	return a, nil
}

func cityIndex(lat, lng float64) int {
	for i, c := range Cities {
		if math.Abs(c.Lat-lat) < 1e-3 && math.Abs(c.Lng-lng) < 1e-3 {
			return i
		}
	}
	return -1
}

// Start mounts the globe, starts the overlay and the weather poller.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if err := a.mount(); err != nil {
		a.cancel()
		return err
	}

	a.overlay.SetCondition(a.condition)
	a.overlay.Start(a.sched)

	if a.audio != nil {
		a.audio.SetMuted(a.cfg.Audio.Muted)
		a.audio.Play(a.condition)
	}

	if a.poller != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.poller.Run(a.ctx)
		}()
		a.poller.Track(a.lat, a.lng)
	}

	a.lastStats = a.clock.Now()
	a.updateTitle()
	a.log.Info("app started",
		zap.Stringer("condition", a.condition),
		zap.Float64("lat", a.lat),
		zap.Float64("lng", a.lng),
		zap.Bool("is_day", a.isDay))
	return nil
}

func (a *App) mount() error {
	ready, err := a.globe.Mount(a.ctx, a.host, a.isDay)
	if err != nil {
		return fmt.Errorf("mount globe: %w", err)
	}
	a.ready = ready
	a.revealed = false
	a.mountedAt = a.clock.Now()
	a.fault = nil

	a.globe.SetCondition(a.condition)
	if err := a.globe.SetLocation(a.lat, a.lng, a.isDay); err != nil {
		a.log.Warn("initial location rejected", zap.Error(err))
	}
	a.globe.SetVisible(a.visible)
	return nil
}

// Step runs one iteration of the host loop. It returns false once the
// host asked to quit.
func (a *App) Step() (bool, error) {
	for _, ev := range a.host.Poll() {
		if ev.Kind == EventQuit {
			return false, nil
		}
		a.handle(ev)
	}

	a.drainWeather()
	a.checkReady()

	a.sched.RunFrame()
	if a.fault != nil {
		if err := a.recoverGlobe(); err != nil {
			return false, err
		}
	}
	if a.visible {
		a.host.Present(a.overlay)
	}
	a.logStats()
	return true, nil
}

// Run steps until the host quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		running, err := a.Step()
		if err != nil || !running {
			return err
		}
	}
}

// Stop unmounts the globe and waits for background work to finish.
func (a *App) Stop() {
	a.overlay.Stop()
	if a.globe.Mounted() {
		if err := a.globe.Unmount(); err != nil {
			a.log.Error("globe release failed", zap.Error(err))
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	if a.loader != nil {
		a.loader.Wait()
	}
	a.log.Info("app stopped")
}

func (a *App) handle(ev Event) {
	switch ev.Kind {
	case EventResize:
		a.globe.Resize(ev.Width, ev.Height)
		a.overlay.Resize(ev.Width, ev.Height)
	case EventHidden:
		a.setVisible(false)
	case EventShown:
		a.setVisible(true)
	case EventCommand:
		a.command(ev.Command)
	}
}

func (a *App) setVisible(visible bool) {
	if visible == a.visible {
		return
	}
	a.visible = visible
	a.globe.SetVisible(visible)
	if visible {
		a.overlay.Start(a.sched)
	} else {
		a.overlay.Stop()
	}
	a.log.Debug("visibility changed", zap.Bool("visible", visible))
}

func (a *App) command(c Command) {
	switch c {
	case CycleCondition:
		a.setCondition(a.condition.Next())
	case CycleCity:
		a.city = (a.city + 1) % len(Cities)
		city := Cities[a.city]
		a.moveTo(city.Lat, city.Lng, a.isDay)
		if a.poller != nil {
			a.poller.Track(city.Lat, city.Lng)
		}
	case ToggleDay:
		a.moveTo(a.lat, a.lng, !a.isDay)
	case ToggleMute:
		if a.audio != nil {
			a.audio.SetMuted(!a.audio.Muted())
		}
	}
	a.updateTitle()
}

func (a *App) setCondition(c weather.Condition) {
	if c == a.condition {
		return
	}
	a.condition = c
	a.globe.SetCondition(c)
	a.overlay.SetCondition(c)
	if a.audio != nil {
		a.audio.Play(c)
	}
	a.log.Info("condition changed", zap.Stringer("condition", c))
}

func (a *App) moveTo(lat, lng float64, isDay bool) {
	if err := a.globe.SetLocation(lat, lng, isDay); err != nil {
		return
	}
	a.lat, a.lng, a.isDay = lat, lng, isDay
}

func (a *App) drainWeather() {
	if a.poller == nil {
		return
	}
	select {
	case s := <-a.poller.Updates():
		a.applySnapshot(s)
	default:
	}
}

func (a *App) applySnapshot(s weather.Snapshot) {
	if math.Abs(s.Latitude-a.lat) > 1e-3 || math.Abs(s.Longitude-a.lng) > 1e-3 {
		a.log.Debug("stale weather dropped", zap.Float64("lat", s.Latitude), zap.Float64("lng", s.Longitude))
		return
	}
	a.log.Info("weather update",
		zap.Stringer("condition", s.Condition),
		zap.Bool("is_day", s.IsDay),
		zap.Float64("temperature", s.Temperature),
		zap.Float64("wind_speed", s.WindSpeed),
		zap.String("wind_from", s.WindDirection))

	a.setCondition(s.Condition)
	if s.IsDay != a.isDay {
		a.moveTo(a.lat, a.lng, s.IsDay)
	}
	a.updateTitle()
}

func (a *App) checkReady() {
	if a.revealed {
		return
	}
	select {
	case <-a.ready:
		a.reveal("textures settled")
		return
	default:
	}
	if timeout := a.cfg.Globe.ReadyTimeout; timeout > 0 && a.clock.Since(a.mountedAt) >= timeout {
		a.reveal("ready timeout")
	}
}

func (a *App) reveal(reason string) {
	a.revealed = true
	a.log.Info("globe revealed",
		zap.String("reason", reason),
		zap.Duration("after", a.clock.Since(a.mountedAt)))
	a.updateTitle()
}

// Revealed reports whether the globe is shown: its textures settled or the
// ready timeout passed.
func (a *App) Revealed() bool {
	return a.revealed
}

// recoverGlobe rebuilds a globe whose loop faulted.
func (a *App) recoverGlobe() error {
	fault := a.fault
	a.remounts++
	if a.remounts > maxRemounts {
		return fmt.Errorf("%w: %w", ErrTooManyFaults, fault)
	}
	a.log.Warn("rebuilding globe", zap.Error(fault), zap.Int("attempt", a.remounts))
	if err := a.globe.Unmount(); err != nil {
		a.log.Error("globe release failed", zap.Error(err))
	}
	return a.mount()
}

func (a *App) logStats() {
	interval := a.cfg.Debug.LogStatsInterval
	if interval <= 0 || a.clock.Since(a.lastStats) < interval {
		return
	}
	a.lastStats = a.clock.Now()
	s := a.globe.Stats()
	a.log.Info("stats",
		zap.Uint64("frames", s.Frames),
		zap.Int("live_resources", s.Live),
		zap.Int("transitions", s.Transitions),
		zap.Bool("animating", s.Animating),
		zap.Int("particles", len(a.overlay.Particles())))
}

func (a *App) updateTitle() {
	place := fmt.Sprintf("%.2f, %.2f", a.lat, a.lng)
	if a.city >= 0 {
		place = Cities[a.city].Name
	}
	phase := "day"
	if !a.isDay {
		phase = "night"
	}
	title := fmt.Sprintf("Aetheria | %s | %s | %s", place, a.condition, phase)
	if !a.revealed {
		title += " | loading"
	}
	a.host.SetTitle(title)
}

// Globe exposes the globe manager.
func (a *App) Globe() *globe.Manager {
	return a.globe
}

// Overlay exposes the precipitation overlay.
func (a *App) Overlay() *overlay.Overlay {
	return a.overlay
}

// Condition returns the current condition.
func (a *App) Condition() weather.Condition {
	return a.condition
}

// Location returns the current location and daylight.
func (a *App) Location() (lat, lng float64, isDay bool) {
	return a.lat, a.lng, a.isDay
}
