package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	img, err := Decode(pngBytes(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 200, A: 255}, img.RGBAAt(3, 2))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestToRGBAScalesOversized(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, MaxSize+808, 10))
	dst := ToRGBA(src)
	assert.Equal(t, MaxSize, dst.Bounds().Dx())
	assert.Equal(t, 9, dst.Bounds().Dy())
}

func TestToRGBAOffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	src.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})
	dst := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), dst.Bounds())
	assert.Equal(t, uint8(255), dst.RGBAAt(0, 0).R)
}

func TestLoaderDrain(t *testing.T) {
	data := pngBytes(t, 2, 2)
	fetcher := FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if url == "bad" {
			return nil, errors.New("404")
		}
		return data, nil
	})

	var outcomes []bool
	l := NewLoader(fetcher, 0, nil)
	l.OnResult = func(ok bool) { outcomes = append(outcomes, ok) }

	var good *image.RGBA
	var badErr error
	l.Load(context.Background(), "good", func(img *image.RGBA, err error) {
		require.NoError(t, err)
		good = img
	})
	l.Load(context.Background(), "bad", func(img *image.RGBA, err error) {
		assert.Nil(t, img)
		badErr = err
	})
	assert.Equal(t, 2, l.Pending())

	// Nothing is applied until Drain.
	l.Wait()
	assert.Nil(t, good)

	assert.Equal(t, 2, l.Drain())
	assert.Equal(t, 0, l.Pending())
	assert.NotNil(t, good)
	assert.Error(t, badErr)
	assert.ElementsMatch(t, []bool{true, false}, outcomes)

	assert.Equal(t, 0, l.Drain())
}

func TestHTTPFetcher(t *testing.T) {
	data := pngBytes(t, 1, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := HTTPFetcher{Client: srv.Client()}
	got, err := f.Fetch(context.Background(), srv.URL+"/earth.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "status 404")
}

func TestHTTPFetcherFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clouds.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	f := HTTPFetcher{}
	got, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	got, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
