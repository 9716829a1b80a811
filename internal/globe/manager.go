// Package globe is the weather globe engine: it builds the earth scene,
// keeps one weather effect under the location marker, choreographs the
// camera between locations and drives the render loop on a frame scheduler.
package globe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Faultbox/aetheria/internal/engine/camera"
	"github.com/Faultbox/aetheria/internal/engine/frame"
	"github.com/Faultbox/aetheria/internal/engine/gpu"
	"github.com/Faultbox/aetheria/internal/engine/scene"
	"github.com/Faultbox/aetheria/internal/engine/texture"
	"github.com/Faultbox/aetheria/internal/observability"
	"github.com/Faultbox/aetheria/internal/weather"
	"github.com/Faultbox/aetheria/pkg/math"
)

var (
	// ErrAlreadyMounted is returned by Mount while a scene is live.
	ErrAlreadyMounted = errors.New("globe: already mounted")
	// ErrNotMounted is returned by Unmount without a live scene.
	ErrNotMounted = errors.New("globe: not mounted")
)

const (
	fieldOfView = 45
	nearPlane   = 0.1
	farPlane    = 1000

	// Frame gaps above maxFrameGap (a hidden window, a debugger stop) are
	// replayed as one ordinary frame.
	maxFrameGap   = 0.5
	smoothedFrame = 1.0 / 30
	defaultSpin   = 0.0005
	defaultCloud  = 0.0003
)

// Container hosts the render surface. Each mount opens a fresh surface and
// closes it on unmount.
type Container interface {
	Size() (width, height int)
	OpenSurface() (gpu.Device, error)
	CloseSurface(dev gpu.Device)
}

// Options configures a Manager. Scheduler is required; the rest is optional.
type Options struct {
	Textures  TextureURLs
	Loader    *texture.Loader
	Scheduler *frame.Scheduler
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	Rand      *rand.Rand

	// Per-frame rotation of the earth and of the cloud shell, in radians.
	// Zero picks the defaults; negative disables the spin.
	SpinPerFrame      float32
	CloudSpinPerFrame float32

	// OnFailure runs once when a frame faults and the loop stops.
	OnFailure func(error)
	// OnThunder runs on every lightning strike of the storm effect.
	OnThunder func()
}

type location struct {
	lat, lng float64
	isDay    bool
	set      bool
}

// sceneState is everything one mount owns.
type sceneState struct {
	device   gpu.Device
	renderer *scene.Renderer
	registry *scene.Registry
	camera   *camera.Perspective
	body     *body
	marker   *Marker
	choreo   *Choreographer

	effect      *Effect
	effectStart time.Time

	disposer scene.Disposer

	ready     chan struct{}
	readyOnce sync.Once
	loading   int

	frameID   frame.ID
	looping   bool
	failed    bool
	lastFrame time.Time
}

// Manager owns the globe scene between Mount and Unmount. It is not safe
// for concurrent use: every method and every frame runs on the host thread.
type Manager struct {
	opts  Options
	sched *frame.Scheduler
	clock clockwork.Clock
	log   *zap.Logger
	rng   *rand.Rand

	state     *sceneState
	condition weather.Condition
	loc       location
	visible   bool
	err       error
}

// NewManager creates an unmounted manager.
func NewManager(opts Options) *Manager {
	if opts.Scheduler == nil {
		opts.Scheduler = frame.NewScheduler(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.SpinPerFrame == 0 {
		opts.SpinPerFrame = defaultSpin
	}
	if opts.CloudSpinPerFrame == 0 {
		opts.CloudSpinPerFrame = defaultCloud
	}
	opts.SpinPerFrame = max(opts.SpinPerFrame, 0)
	opts.CloudSpinPerFrame = max(opts.CloudSpinPerFrame, 0)

	return &Manager{
		opts:      opts,
		sched:     opts.Scheduler,
		clock:     opts.Scheduler.Clock(),
		log:       opts.Logger,
		rng:       opts.Rand,
		condition: weather.Clear,
		visible:   true,
	}
}

// Mount builds a new scene on a fresh surface of c and starts the render
// loop. The returned channel is closed once every globe texture has either
// loaded or failed.
func (m *Manager) Mount(ctx context.Context, c Container, isDay bool) (<-chan struct{}, error) {
	if m.state != nil {
		return nil, ErrAlreadyMounted
	}
	dev, err := c.OpenSurface()
	if err != nil {
		return nil, fmt.Errorf("globe: open surface: %w", err)
	}

	var obs scene.Observer
	if m.opts.Metrics != nil {
		obs = m.opts.Metrics
	}
	st := &sceneState{
		device:   dev,
		renderer: scene.NewRenderer(dev),
		registry: scene.NewRegistry(obs),
		camera:   camera.NewPerspective(fieldOfView, 1, nearPlane, farPlane),
		ready:    make(chan struct{}),
	}
	st.disposer.Defer(func() { c.CloseSurface(dev) })
	st.disposer.Defer(func() {
		if n := st.renderer.Close(); n > 0 {
			m.log.Warn("device objects outlived their resources", zap.Int("count", n))
		}
	})

	st.camera.Position = math.Vec3{Z: retreatDistance}
	st.camera.LookAt(math.Vec3{})

	st.body = buildBody(st.registry, m.opts.Textures, isDay, m.rng)
	st.marker = newMarker(st.registry)
	st.body.earth.Add(st.marker.Group)
	st.choreo = newChoreographer(st.camera, st.body, st.marker)

	var reclaimer scene.Reclaimer
	st.disposer.Defer(func() { reclaimer.Reclaim(st.body.root) })
	st.disposer.Defer(func() {
		if st.effect != nil {
			st.effect.Dispose()
		}
	})

	m.state = st
	m.err = nil
	m.Resize(c.Size())
	m.loadTextures(ctx, st)
	m.attachEffect(st)
	if m.loc.set {
		m.startTransition(st)
	}
	if m.visible {
		m.requestFrame(st)
	}

	w, h := st.renderer.Size()
	m.log.Info("globe mounted",
		zap.Bool("is_day", isDay),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("resources", st.registry.CreatedTotal()))
	return st.ready, nil
}

func (m *Manager) loadTextures(ctx context.Context, st *sceneState) {
	if m.opts.Loader == nil {
		st.markReady()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	st.disposer.Defer(cancel)

	for _, tex := range st.body.textures {
		if tex.URL == "" {
			continue
		}
		st.loading++
		m.opts.Loader.Load(ctx, tex.URL, func(img *image.RGBA, err error) {
			if err == nil && !tex.Disposed() {
				tex.SetImage(img)
			}
			st.loading--
			if st.loading == 0 {
				st.markReady()
				if m.state == st {
					m.log.Info("globe ready")
				}
			}
		})
	}
	if st.loading == 0 {
		st.markReady()
	}
}

func (st *sceneState) markReady() {
	st.readyOnce.Do(func() { close(st.ready) })
}

// Unmount stops the loop and releases everything the mount created.
// Release errors are returned after every release function has run.
func (m *Manager) Unmount() error {
	st := m.state
	if st == nil {
		return ErrNotMounted
	}
	m.state = nil
	m.stopLoop(st)
	st.choreo.Stop()

	err := st.disposer.Dispose()
	m.log.Info("globe unmounted",
		zap.Int("created", st.registry.CreatedTotal()),
		zap.Int("disposed", st.registry.DisposedTotal()),
		zap.Error(err))
	return err
}

// Mounted reports whether a scene is live.
func (m *Manager) Mounted() bool {
	return m.state != nil
}

// Err returns the fault that stopped the render loop of the current mount.
func (m *Manager) Err() error {
	return m.err
}

// Registry returns the resource registry of the current mount, or nil.
func (m *Manager) Registry() *scene.Registry {
	if m.state == nil {
		return nil
	}
	return m.state.registry
}

// Condition returns the condition whose effect is shown.
func (m *Manager) Condition() weather.Condition {
	return m.condition
}

// SetCondition swaps the weather effect under the marker. Setting the
// current condition again does nothing.
func (m *Manager) SetCondition(c weather.Condition) {
	if c == m.condition {
		return
	}
	m.condition = c
	if st := m.state; st != nil {
		m.attachEffect(st)
		if m.opts.Metrics != nil {
			m.opts.Metrics.ConditionChanges.Inc()
		}
	}
}

func (m *Manager) attachEffect(st *sceneState) {
	if st.effect != nil {
		st.effect.Dispose()
	}
	st.effect = Attach(st.marker.Pin, m.condition, st.registry, m.rng)
	st.effect.OnFlash = m.opts.OnThunder
	st.effectStart = m.clock.Now()

	m.log.Debug("weather effect attached",
		zap.Stringer("condition", m.condition),
		zap.Stringer("kind", st.effect.Kind))
}

// SetLocation moves the marker to lat/lng and starts the camera transition,
// superseding one still in flight. Invalid coordinates are rejected and the
// current orientation is kept.
func (m *Manager) SetLocation(lat, lng float64, isDay bool) error {
	if err := ValidateLocation(lat, lng); err != nil {
		m.log.Warn("location ignored", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		return err
	}
	m.loc = location{lat: lat, lng: lng, isDay: isDay, set: true}
	if st := m.state; st != nil {
		m.startTransition(st)
	}
	return nil
}

func (m *Manager) startTransition(st *sceneState) {
	st.choreo.Start(m.loc.lat, m.loc.lng, m.loc.isDay)
	if m.opts.Metrics != nil {
		m.opts.Metrics.Transitions.Inc()
	}
	m.log.Debug("transition started",
		zap.Float64("lat", m.loc.lat),
		zap.Float64("lng", m.loc.lng),
		zap.Bool("is_day", m.loc.isDay))
}

// Resize updates the camera aspect and the surface size. Non-positive sizes
// are ignored.
func (m *Manager) Resize(width, height int) {
	st := m.state
	if st == nil || width <= 0 || height <= 0 {
		return
	}
	st.camera.SetAspect(width, height)
	st.renderer.SetSize(width, height)
}

// SetVisible stops the loop while the host is hidden and resumes it when it
// is shown again. It never starts a second loop.
func (m *Manager) SetVisible(visible bool) {
	m.visible = visible
	st := m.state
	if st == nil || st.failed {
		return
	}
	if !visible {
		m.stopLoop(st)
		return
	}
	if st.frameID == 0 {
		m.requestFrame(st)
	}
}

func (m *Manager) requestFrame(st *sceneState) {
	st.frameID = m.sched.Request(func(now time.Time) { m.tick(st, now) })
	if !st.looping {
		st.looping = true
		st.lastFrame = time.Time{}
		if m.opts.Metrics != nil {
			m.opts.Metrics.ActiveLoops.Inc()
		}
	}
}

func (m *Manager) stopLoop(st *sceneState) {
	if st.frameID != 0 {
		m.sched.Cancel(st.frameID)
		st.frameID = 0
	}
	if st.looping {
		st.looping = false
		if m.opts.Metrics != nil {
			m.opts.Metrics.ActiveLoops.Dec()
		}
	}
}

func (m *Manager) tick(st *sceneState, now time.Time) {
	st.frameID = 0
	if m.state != st || st.failed {
		return
	}

	start := m.clock.Now()
	if err := m.runFrame(st, now); err != nil {
		m.fail(st, err)
		return
	}
	if m.opts.Metrics != nil {
		m.opts.Metrics.FramesRendered.Inc()
		m.opts.Metrics.FrameDuration.Observe(m.clock.Since(start).Seconds())
	}

	if m.visible {
		m.requestFrame(st)
	} else {
		m.stopLoop(st)
	}
}

func (m *Manager) runFrame(st *sceneState, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("globe: frame panicked: %v", r)
		}
	}()

	if m.opts.Loader != nil {
		m.opts.Loader.Drain()
	}

	var dt float64
	if !st.lastFrame.IsZero() {
		dt = max(now.Sub(st.lastFrame).Seconds(), 0)
		if dt > maxFrameGap {
			dt = smoothedFrame
		}
	}
	st.lastFrame = now

	b := st.body
	b.earth.Rotation.Y += m.opts.SpinPerFrame
	b.clouds.Rotation.Y += m.opts.CloudSpinPerFrame
	st.marker.Update(now)
	b.sunMesh.LookAt(st.camera.Position)
	if st.effect != nil {
		st.effect.Update(now.Sub(st.effectStart).Seconds())
	}
	st.choreo.Advance(dt)

	if err := st.renderer.Render(b.root, st.camera); err != nil {
		return fmt.Errorf("globe: render: %w", err)
	}
	return nil
}

// fail stops the loop of st for good. The scene stays in place so Unmount
// can still release it.
func (m *Manager) fail(st *sceneState, err error) {
	st.failed = true
	m.err = err
	m.stopLoop(st)

	m.log.Error("render loop stopped", zap.Error(err))
	if m.opts.Metrics != nil {
		m.opts.Metrics.FrameFailures.Inc()
	}
	if m.opts.OnFailure != nil {
		m.opts.OnFailure(err)
	}
}

// Stats is a snapshot for periodic logging.
type Stats struct {
	Mounted     bool
	Condition   weather.Condition
	Frames      uint64
	Live        int
	Transitions int
	Animating   bool
}

// Stats reports the state of the current mount.
func (m *Manager) Stats() Stats {
	s := Stats{Condition: m.condition}
	st := m.state
	if st == nil {
		return s
	}
	s.Mounted = true
	s.Frames = st.renderer.Frames()
	s.Live = st.registry.CreatedTotal() - st.registry.DisposedTotal()
	s.Transitions = st.choreo.Started()
	s.Animating = st.choreo.Active()
	return s
}
