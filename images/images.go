// Package images provides the intrinsic size service used by the box
// builder and the layout for replaced elements.
//
// Decoding itself is delegated to the standard image decoders, extended
// with the webp and bmp formats.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/utils"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type Fl = utils.Fl

// Image is a decoded image, with its intrinsic dimensions
// in CSS pixels.
type Image struct {
	URL string
	// ID is stable for a given URL.
	ID uint64

	// Width and Height are 0 when the image has no
	// intrinsic dimension (like a SVG image without size).
	Width, Height Fl
	// Ratio is width / height, or 0 if unknown.
	Ratio Fl

	// Format is the name of the decoder ("png", "svg", ...)
	Format string
	// Pixels is nil for vector images.
	Pixels image.Image
}

// Provider resolves image URLs. Implementations must be safe for
// concurrent use, and return the same result for the same URL.
type Provider interface {
	// Image returns nil if the image is not available.
	Image(url string) *Image
}

// Fetcher returns the content of an URL.
type Fetcher func(url string) (io.ReadCloser, error)

// An error occured when loading an image.
// The image data is probably corrupted or in an invalid format.
func imageLoadingError(url string, err error) error {
	return fmt.Errorf("failed to load image at %q: %w", url, err)
}

// Loader is a [Provider] decoding the content returned by a [Fetcher].
// Results (including failures) are cached.
type Loader struct {
	fetch Fetcher
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*Image
}

// NewLoader returns a loader using [fetch], or [FileFetcher]
// relative to the working directory if [fetch] is nil.
func NewLoader(fetch Fetcher) *Loader {
	if fetch == nil {
		fetch = FileFetcher("")
	}
	return &Loader{fetch: fetch, cache: make(map[string]*Image)}
}

func (l *Loader) cached(url string) (*Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, in := l.cache[url]
	return img, in
}

// Image implements [Provider]. It is safe for concurrent use: an url
// is fetched once, and failures are logged once.
func (l *Loader) Image(url string) *Image {
	if img, in := l.cached(url); in {
		return img
	}
	v, _, _ := l.group.Do(url, func() (interface{}, error) {
		if img, in := l.cached(url); in {
			return img, nil
		}
		img, err := l.load(url)
		if err != nil {
			logger.WarningLogger.Printf("%s", err)
		}
		l.mu.Lock()
		l.cache[url] = img
		l.mu.Unlock()
		return img, nil
	})
	return v.(*Image)
}

func (l *Loader) load(url string) (*Image, error) {
	rc, err := l.fetch(url)
	if err != nil {
		return nil, imageLoadingError(url, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, imageLoadingError(url, err)
	}
	return Decode(url, content)
}

// Decode decodes a raster image, falling back to SVG.
func Decode(url string, content []byte) (*Image, error) {
	pixels, format, errRaster := image.Decode(bytes.NewReader(content))
	if errRaster == nil {
		bounds := pixels.Bounds()
		out := &Image{
			URL: url, ID: utils.Hash(url), Format: format, Pixels: pixels,
			Width: Fl(bounds.Dx()), Height: Fl(bounds.Dy()),
		}
		if out.Height != 0 {
			out.Ratio = out.Width / out.Height
		}
		return out, nil
	}

	// last chance: try SVG in case the content is not a raster image
	img, errSvg := decodeSVG(content)
	if errSvg != nil {
		return nil, imageLoadingError(url, errRaster)
	}
	img.URL, img.ID = url, utils.Hash(url)
	return img, nil
}

// FileFetcher reads local files, relative to [baseDir],
// and base64 data URLs.
func FileFetcher(baseDir string) Fetcher {
	return func(u string) (io.ReadCloser, error) {
		if strings.HasPrefix(u, "data:") {
			data, err := decodeDataURL(u)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		path := u
		if parsed, err := url.Parse(u); err == nil && parsed.Scheme == "file" {
			path = parsed.Path
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return os.Open(path)
	}
}

func decodeDataURL(u string) ([]byte, error) {
	header, data, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(data)
	}
	s, err := url.PathUnescape(data)
	return []byte(s), err
}

// Static is a [Provider] serving fixed images, mainly useful
// for tests.
type Static map[string]*Image

func (s Static) Image(url string) *Image { return s[url] }
