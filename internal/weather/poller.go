package weather

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Poller fetches the weather for the tracked location on a fixed interval
// and hands each snapshot to the main loop through Updates. Fetches run on
// the Run goroutine; consumers apply snapshots on their own thread.
type Poller struct {
	source   Source
	clock    clockwork.Clock
	interval time.Duration
	logger   *zap.Logger
	onFetch  func(error)

	track   chan [2]float64
	updates chan Snapshot
}

// NewPoller creates a poller. onFetch, if set, observes every fetch outcome.
func NewPoller(src Source, clock clockwork.Clock, interval time.Duration, logger *zap.Logger, onFetch func(error)) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:   src,
		clock:    clock,
		interval: interval,
		logger:   logger,
		onFetch:  onFetch,
		track:    make(chan [2]float64, 1),
		updates:  make(chan Snapshot, 1),
	}
}

// Updates delivers the most recent snapshot. Older undelivered snapshots are dropped.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// Track switches the polled location and triggers an immediate fetch.
func (p *Poller) Track(lat, lng float64) {
	loc := [2]float64{lat, lng}
	select {
	case p.track <- loc:
	default:
		select {
		case <-p.track:
		default:
		}
		p.track <- loc
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	var (
		loc     [2]float64
		located bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case loc = <-p.track:
			located = true
		case <-ticker.Chan():
			if !located {
				continue
			}
		}
		p.fetch(ctx, loc[0], loc[1])
	}
}

func (p *Poller) fetch(ctx context.Context, lat, lng float64) {
	snap, err := p.source.Current(ctx, lat, lng)
	if p.onFetch != nil {
		p.onFetch(err)
	}
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("weather fetch failed",
				zap.Float64("lat", lat),
				zap.Float64("lng", lng),
				zap.Error(err))
		}
		return
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = p.clock.Now()
	}

	select {
	case p.updates <- snap:
	default:
		select {
		case <-p.updates:
		default:
		}
		p.updates <- snap
	}
}
