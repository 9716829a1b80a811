// Package debug provides developer aids for the running engine.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
)

const stampLayout = "2006-01-02_15-04-05"

// Screenshots writes numbered PNG captures into a directory.
type Screenshots struct {
	dir    string
	prefix string
	clock  clockwork.Clock

	lastStamp string
	seq       int
}

// NewScreenshots creates a writer. An empty dir writes into the working
// directory.
func NewScreenshots(dir, prefix string, clock clockwork.Clock) *Screenshots {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Screenshots{dir: dir, prefix: prefix, clock: clock}
}

// SaveGL saves pixels read back from OpenGL: RGBA rows, bottom row first.
func (s *Screenshots) SaveGL(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("screenshot: empty frame %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("screenshot: pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return s.Save(img)
}

// Save encodes img as PNG and returns the file written.
func (s *Screenshots) Save(img image.Image) (string, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("screenshot: create dir: %w", err)
		}
	}

	name := s.nextName()
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("screenshot: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return name, nil
}

// nextName stamps the file with the clock; captures within one second get
// a sequence suffix.
func (s *Screenshots) nextName() string {
	stamp := s.clock.Now().Format(stampLayout)
	if stamp == s.lastStamp {
		s.seq++
	} else {
		s.lastStamp, s.seq = stamp, 0
	}

	name := fmt.Sprintf("%s_%s.png", s.prefix, stamp)
	if s.seq > 0 {
		name = fmt.Sprintf("%s_%s_%d.png", s.prefix, stamp, s.seq)
	}
	return filepath.Join(s.dir, name)
}
