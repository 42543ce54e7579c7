package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	tu "github.com/benoitkugler/vformat/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encoded(t *testing.T, encode func(io.Writer, image.Image) error, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeRaster(t *testing.T) {
	img, err := Decode("a.png", encoded(t, png.Encode, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, Fl(40), img.Width)
	assert.Equal(t, Fl(20), img.Height)
	assert.Equal(t, Fl(2), img.Ratio)
	assert.NotNil(t, img.Pixels)

	img, err = Decode("a.bmp", encoded(t, bmp.Encode, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, "bmp", img.Format)
	assert.Equal(t, Fl(0.5), img.Ratio)
}

func TestDecodeSVG(t *testing.T) {
	for _, test := range []struct {
		svg           string
		width, height Fl
		ratio         Fl
	}{
		{`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="2"/>`, 4, 2, 2},
		{`<?xml version="1.0"?><svg width="1in" height="48px"></svg>`, 96, 48, 2},
		{`<svg viewBox="0 0 10 20" width="30"/>`, 30, 60, 0.5},
		{`<svg viewBox="0,0,10,20" height="10"/>`, 5, 10, 0.5},
		{`<svg viewBox="0 0 10 20"/>`, 0, 0, 0.5},
		{`<svg width="100%" height="50"/>`, 0, 50, 0},
	} {
		img, err := Decode("a.svg", []byte(test.svg))
		require.NoError(t, err, test.svg)
		assert.Equal(t, "svg", img.Format)
		assert.Nil(t, img.Pixels)
		assert.InDelta(t, test.width, img.Width, 1e-4, test.svg)
		assert.InDelta(t, test.height, img.Height, 1e-4, test.svg)
		assert.InDelta(t, test.ratio, img.Ratio, 1e-4, test.svg)
	}

	_, err := Decode("a.svg", []byte(`<html></html>`))
	assert.Error(t, err)
	_, err = Decode("a.txt", []byte(`not an image`))
	assert.Error(t, err)
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern.png"), encoded(t, png.Encode, 4, 4), 0o644))
	loader := NewLoader(FileFetcher(dir))

	img := loader.Image("pattern.png")
	require.NotNil(t, img)
	assert.Equal(t, Fl(4), img.Width)
	assert.Same(t, img, loader.Image("pattern.png"))

	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encoded(t, png.Encode, 2, 1))
	img = loader.Image(data)
	require.NotNil(t, img)
	assert.Equal(t, Fl(2), img.Width)

	capt := tu.CaptureLogs()
	assert.Nil(t, loader.Image("missing.png"))
	assert.Nil(t, loader.Image("missing.png")) // cached failure
	capt.CheckLogs(t, "missing.png")
}

func TestLoaderConcurrent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), encoded(t, png.Encode, 8, 8), 0o644))
	var fetches atomic.Int32
	files := FileFetcher(dir)
	loader := NewLoader(func(url string) (io.ReadCloser, error) {
		fetches.Add(1)
		return files(url)
	})

	var wg sync.WaitGroup
	results := make([]*Image, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = loader.Image("a.png")
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestStatic(t *testing.T) {
	img := &Image{Width: 10, Height: 10, Ratio: 1}
	s := Static{"a": img}
	assert.Same(t, img, s.Image("a"))
	assert.Nil(t, s.Image("b"))
}
