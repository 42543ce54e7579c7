package tree

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/vformat/config"
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/logger"
)

// Device describes the output medium, used by media queries
// and viewport-relative units.
type Device struct {
	// Width and Height are the viewport size, in CSS pixels.
	Width, Height    pr.Fl
	DevicePixelRatio pr.Fl
	// MediaType is "screen" or "print"
	MediaType string
	// ColorScheme is "light" or "dark"
	ColorScheme string
}

// NewDevice returns the device described by [cfg].
func NewDevice(cfg config.ViewportConfig) Device {
	return Device{
		Width:            pr.Fl(cfg.Width),
		Height:           pr.Fl(cfg.Height),
		DevicePixelRatio: pr.Fl(cfg.DevicePixelRatio),
		MediaType:        cfg.Media,
		ColorScheme:      cfg.ColorScheme,
	}
}

// DefaultDevice is a 800x600 light screen.
var DefaultDevice = Device{Width: 800, Height: 600, DevicePixelRatio: 1, MediaType: "screen", ColorScheme: "light"}

func (d Device) String() string {
	return fmt.Sprintf("%s %gx%g@%g %s", d.MediaType, d.Width, d.Height, d.DevicePixelRatio, d.ColorScheme)
}

// mediaKey identifies a query list for a device, for the media cache.
func mediaKey(d Device, query pa.MediaQueryList) string {
	return fmt.Sprintf("%s|%v", d, query)
}

// Matches returns true if [query] matches the device.
// An empty list always matches.
func (d Device) Matches(query pa.MediaQueryList) bool {
	if len(query) == 0 {
		return true
	}
	for _, q := range query {
		if d.matchesQuery(q) {
			return true
		}
	}
	return false
}

func (d Device) matchesQuery(q pa.MediaQuery) bool {
	ok := q.Type == "all" || q.Type == d.MediaType
	for _, f := range q.Features {
		if !ok {
			break
		}
		ok = d.matchesFeature(f)
	}
	if q.Not {
		return !ok
	}
	return ok
}

func (d Device) matchesFeature(f pa.MediaFeature) bool {
	value := pa.RemoveWhitespace(f.Value)
	switch f.Name {
	case "width", "min-width", "max-width":
		return compareLength(f.Name, d.Width, value)
	case "height", "min-height", "max-height":
		return compareLength(f.Name, d.Height, value)
	case "orientation":
		if len(value) != 1 {
			return false
		}
		landscape := d.Width > d.Height
		switch value[0].LowerValue() {
		case "landscape":
			return landscape
		case "portrait":
			return !landscape
		}
	case "prefers-color-scheme":
		return len(value) == 1 && value[0].LowerValue() == d.ColorScheme
	case "color":
		return true
	default:
		logger.WarningLogger.Printf("unsupported media feature %s", f.Name)
	}
	return false
}

// compareLength evaluates a (min-|max-)(width|height) feature.
// Only absolute lengths are supported.
func compareLength(name string, actual pr.Fl, value []pa.Token) bool {
	if len(value) != 1 {
		return false
	}
	var px pr.Fl
	switch t := value[0]; t.Kind {
	case pa.Dimension:
		factor, ok := pr.LengthsToPixels[pr.NewUnit(t.Unit)]
		if !ok {
			return false
		}
		px = pr.Fl(t.Num) * factor
	case pa.Number:
		if t.Num != 0 {
			return false
		}
	default:
		return false
	}
	switch {
	case strings.HasPrefix(name, "min-"):
		return actual >= px
	case strings.HasPrefix(name, "max-"):
		return actual <= px
	default:
		return actual == px
	}
}
