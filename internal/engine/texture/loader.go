package texture

import (
	"context"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Callback receives a load outcome on the thread that calls Drain.
// img is nil when err is non-nil.
type Callback func(img *image.RGBA, err error)

type result struct {
	url  string
	img  *image.RGBA
	err  error
	done Callback
}

// Loader fetches and decodes images on worker goroutines. Finished results
// queue up until Drain hands them to their callbacks, so GPU-facing state is
// only touched by the caller's thread.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *zap.Logger

	// OnResult observes every outcome, e.g. for metrics.
	OnResult func(ok bool)

	mu      sync.Mutex
	ready   []result
	pending int
	wg      sync.WaitGroup
}

// NewLoader creates a loader. A zero timeout means no per-load deadline.
func NewLoader(f Fetcher, timeout time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: f, timeout: timeout, logger: logger}
}

// Load starts fetching url. done runs during a later Drain.
func (l *Loader) Load(ctx context.Context, url string, done Callback) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		img, err := l.fetch(ctx, url)

		l.mu.Lock()
		l.ready = append(l.ready, result{url: url, img: img, err: err, done: done})
		l.mu.Unlock()
	}()
}

func (l *Loader) fetch(ctx context.Context, url string) (*image.RGBA, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	data, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Drain runs the callbacks of every finished load and returns how many ran.
func (l *Loader) Drain() int {
	l.mu.Lock()
	batch := l.ready
	l.ready = nil
	l.pending -= len(batch)
	l.mu.Unlock()

	for _, r := range batch {
		if r.err != nil {
			l.logger.Warn("texture load failed",
				zap.String("url", r.url),
				zap.Error(r.err))
		} else {
			l.logger.Debug("texture loaded",
				zap.String("url", r.url),
				zap.Int("width", r.img.Bounds().Dx()),
				zap.Int("height", r.img.Bounds().Dy()))
		}
		if l.OnResult != nil {
			l.OnResult(r.err == nil)
		}
		if r.done != nil {
			r.done(r.img, r.err)
		}
	}
	return len(batch)
}

// Pending returns the number of loads whose callbacks have not run yet.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Wait blocks until every started fetch has finished. Callbacks still need Drain.
func (l *Loader) Wait() {
	l.wg.Wait()
}
