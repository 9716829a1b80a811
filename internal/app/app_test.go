package app

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/aetheria/internal/config"
	"github.com/Faultbox/aetheria/internal/engine/texture"
	"github.com/Faultbox/aetheria/internal/weather"
)

type fakeAudio struct {
	plays    []weather.Condition
	thunders int
	muted    bool
}

func (f *fakeAudio) Play(c weather.Condition) { f.plays = append(f.plays, c) }
func (f *fakeAudio) Thunder()                 { f.thunders++ }
func (f *fakeAudio) SetMuted(muted bool)      { f.muted = muted }
func (f *fakeAudio) Muted() bool              { return f.muted }

type fixture struct {
	clock *clockwork.FakeClock
	host  *HeadlessHost
	audio *fakeAudio
	app   *App
}

func newFixture(t *testing.T, mutate func(*config.Config, *Options)) *fixture {
	t.Helper()
	f := &fixture{
		clock: clockwork.NewFakeClock(),
		audio: &fakeAudio{},
	}
	f.host = NewHeadlessHost(800, 600, f.clock, 0)

	cfg := config.Default()
	cfg.Globe.SpinPerFrame = -1
	cfg.Globe.CloudSpinPerFrame = -1
	cfg.Debug.LogStatsInterval = 0
	opts := Options{Config: cfg, Host: f.host, Clock: f.clock, Audio: f.audio}
	if mutate != nil {
		mutate(cfg, &opts)
	}

	a, err := New(opts)
	require.NoError(t, err)
	f.app = a
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(a.Stop)
	return f
}

func (f *fixture) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.clock.Advance(time.Second / 60)
		running, err := f.app.Step()
		require.NoError(t, err)
		require.True(t, running)
	}
}

func blockingFetcher() texture.Fetcher {
	return texture.FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

func TestNewRequiresConfigAndHost(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Globe.Condition = "Hail"
	_, err = New(Options{Config: cfg, Host: NewHeadlessHost(10, 10, nil, 0)})
	assert.ErrorIs(t, err, weather.ErrUnknownCondition)
}

func TestStartMountsAndRenders(t *testing.T) {
	f := newFixture(t, nil)
	f.step(t, 3)

	assert.True(t, f.app.Globe().Mounted())
	assert.Equal(t, 1, f.host.Opened())
	assert.Equal(t, 3, f.host.Device().Frames)
	assert.Equal(t, 3, f.host.Presents())
	assert.Equal(t, []weather.Condition{weather.Clear}, f.audio.plays)
	assert.True(t, f.app.Overlay().Running())
}

func TestRevealWithoutTextures(t *testing.T) {
	f := newFixture(t, nil)
	f.step(t, 1)

	assert.True(t, f.app.Revealed())
	assert.Equal(t, "Aetheria | New York | Clear | day", f.host.Title())
}

func TestRevealFallsBackToTimeout(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, o *Options) {
		o.Fetcher = blockingFetcher()
	})
	f.step(t, 2)
	require.False(t, f.app.Revealed())
	assert.Contains(t, f.host.Title(), "loading")

	f.clock.Advance(3500 * time.Millisecond)
	f.step(t, 1)
	assert.True(t, f.app.Revealed())
	assert.NotContains(t, f.host.Title(), "loading")
}

func TestCycleCondition(t *testing.T) {
	f := newFixture(t, nil)
	f.host.Push(Event{Kind: EventCommand, Command: CycleCondition})
	f.step(t, 1)

	want := weather.Clear.Next()
	assert.Equal(t, want, f.app.Condition())
	assert.Equal(t, want, f.app.Globe().Condition())
	assert.Equal(t, want, f.app.Overlay().Condition())
	assert.Equal(t, want, f.audio.plays[len(f.audio.plays)-1])
	assert.Contains(t, f.host.Title(), string(want))
}

func TestCycleCityStartsTransition(t *testing.T) {
	f := newFixture(t, nil)
	f.step(t, 1)
	before := f.app.Globe().Stats().Transitions

	f.host.Push(Event{Kind: EventCommand, Command: CycleCity})
	f.step(t, 1)

	lat, lng, isDay := f.app.Location()
	assert.Equal(t, Cities[1].Lat, lat)
	assert.Equal(t, Cities[1].Lng, lng)
	assert.True(t, isDay)
	assert.Equal(t, before+1, f.app.Globe().Stats().Transitions)
	assert.Contains(t, f.host.Title(), "London")
}

func TestCustomLocationCyclesFromFirstCity(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config, _ *Options) {
		cfg.Globe.Latitude, cfg.Globe.Longitude = 10, 20
	})
	f.step(t, 1)
	assert.Contains(t, f.host.Title(), "10.00, 20.00")

	f.host.Push(Event{Kind: EventCommand, Command: CycleCity})
	f.step(t, 1)
	assert.Contains(t, f.host.Title(), Cities[0].Name)
}

func TestToggleDayAndMute(t *testing.T) {
	f := newFixture(t, nil)
	f.host.Push(Event{Kind: EventCommand, Command: ToggleDay})
	f.host.Push(Event{Kind: EventCommand, Command: ToggleMute})
	f.step(t, 1)

	_, _, isDay := f.app.Location()
	assert.False(t, isDay)
	assert.True(t, f.audio.muted)
	assert.Contains(t, f.host.Title(), "night")
}

func TestResizeReachesGlobeAndOverlay(t *testing.T) {
	f := newFixture(t, nil)
	f.host.Push(Event{Kind: EventResize, Width: 1024, Height: 768})
	f.step(t, 1)

	w, h := f.host.Device().Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
	ow, oh := f.app.Overlay().Size()
	assert.Equal(t, float32(1024), ow)
	assert.Equal(t, float32(768), oh)
}

func TestHiddenPausesRendering(t *testing.T) {
	f := newFixture(t, nil)
	f.step(t, 2)
	dev := f.host.Device()
	steps := f.app.Overlay().Steps()

	presents := f.host.Presents()

	f.host.Push(Event{Kind: EventHidden})
	f.step(t, 5)
	assert.Equal(t, 2, dev.Frames)
	assert.False(t, f.app.Overlay().Running())
	assert.Equal(t, steps, f.app.Overlay().Steps())
	assert.Equal(t, presents, f.host.Presents(), "presented while hidden")

	f.host.Push(Event{Kind: EventShown})
	f.step(t, 3)
	assert.Equal(t, 5, dev.Frames)
	assert.True(t, f.app.Overlay().Running())
	assert.Equal(t, presents+3, f.host.Presents())
}

func TestQuitStopsStepping(t *testing.T) {
	f := newFixture(t, nil)
	f.host.Push(Event{Kind: EventQuit})
	running, err := f.app.Step()
	require.NoError(t, err)
	assert.False(t, running)
}

func TestWeatherSnapshotForCurrentLocation(t *testing.T) {
	f := newFixture(t, nil)
	lat, lng, _ := f.app.Location()

	f.app.applySnapshot(weather.Snapshot{Condition: weather.Snow, Latitude: 1, Longitude: 2, IsDay: false})
	assert.Equal(t, weather.Clear, f.app.Condition(), "stale snapshot applied")

	f.app.applySnapshot(weather.Snapshot{Condition: weather.Snow, Latitude: lat, Longitude: lng, IsDay: false})
	assert.Equal(t, weather.Snow, f.app.Condition())
	_, _, isDay := f.app.Location()
	assert.False(t, isDay)
}

func TestPollerFeedsCondition(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, o *Options) {
		o.Source = weather.Static{Condition: weather.Rain, IsDay: true}
	})

	require.Eventually(t, func() bool {
		if _, err := f.app.Step(); err != nil {
			return false
		}
		return f.app.Condition() == weather.Rain
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, weather.Rain, f.app.Overlay().Condition())

	f.step(t, 1)
	assert.Positive(t, f.host.Shapes(), "rain streaks drawn")
}

func TestFaultedGlobeIsRebuilt(t *testing.T) {
	f := newFixture(t, nil)
	f.step(t, 1)

	f.host.Device().Lose()
	f.step(t, 1)
	assert.Equal(t, 2, f.host.Opened())
	assert.True(t, f.app.Globe().Mounted())

	f.step(t, 2)
	assert.Equal(t, 2, f.host.Device().Frames)
}

func TestRepeatedFaultsGiveUp(t *testing.T) {
	f := newFixture(t, nil)
	var err error
	for i := 0; i <= maxRemounts; i++ {
		f.host.Device().Lose()
		f.clock.Advance(time.Second / 60)
		_, err = f.app.Step()
	}
	assert.ErrorIs(t, err, ErrTooManyFaults)
}

func TestStopReleasesScene(t *testing.T) {
	f := newFixture(t, func(_ *config.Config, o *Options) {
		o.Fetcher = blockingFetcher()
	})
	f.step(t, 2)
	dev := f.host.Device()

	f.app.Stop()
	assert.False(t, f.app.Globe().Mounted())
	assert.True(t, dev.Closed())
	assert.Zero(t, dev.LiveMeshes())
	assert.Zero(t, dev.LiveTextures())
	assert.False(t, f.app.Overlay().Running())
}
