package text

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer is the font metrics service used by the layout.
// Implementations must be safe for concurrent use and
// return stable results.
type Measurer interface {
	// Metrics returns the vertical metrics of the font.
	Metrics(fd FontDescription) LineMetrics
	// Advance returns the width of [text], without letter
	// or word spacing.
	Advance(fd FontDescription, text string) Fl
}

// Width returns the advance of [text], including the letter
// and word spacings of [ts].
func Width(m Measurer, ts *TextStyle, text string) Fl {
	if text == "" {
		return 0
	}
	w := m.Advance(ts.FontDescription, text)
	if ts.LetterSpacing != 0 {
		w += ts.LetterSpacing * Fl(utf8.RuneCountInString(text))
	}
	if ts.WordSpacing != 0 {
		w += ts.WordSpacing * Fl(strings.Count(text, " "))
	}
	return w
}

// FixedMeasurer uses square glyphs of [Ratio] em
// (1 if zero), with an ascent of 0.8em and a descent of 0.2em.
// It is mainly useful for tests.
type FixedMeasurer struct {
	Ratio Fl
}

func (fm FixedMeasurer) Metrics(fd FontDescription) LineMetrics {
	return LineMetrics{Ascent: 0.8 * fd.Size, Descent: 0.2 * fd.Size}
}

func (fm FixedMeasurer) Advance(fd FontDescription, text string) Fl {
	ratio := fm.Ratio
	if ratio == 0 {
		ratio = 1
	}
	return Fl(utf8.RuneCountInString(text)) * ratio * fd.Size
}

type fontVariant uint8

const (
	regular fontVariant = iota
	bold
	italic
	boldItalic
	mono
	monoBold
	nbVariants
)

var variantsData = [nbVariants][]byte{
	regular:    goregular.TTF,
	bold:       gobold.TTF,
	italic:     goitalic.TTF,
	boldItalic: gobolditalic.TTF,
	mono:       gomono.TTF,
	monoBold:   gomonobold.TTF,
}

func variantFor(fd FontDescription) fontVariant {
	isBold, isItalic := fd.Weight >= 600, fd.Style != FSNormal
	for _, family := range fd.Family {
		family = strings.ToLower(family)
		if family == "monospace" || strings.Contains(family, "mono") || strings.Contains(family, "courier") {
			if isBold {
				return monoBold
			}
			return mono
		}
	}
	switch {
	case isBold && isItalic:
		return boldItalic
	case isBold:
		return bold
	case isItalic:
		return italic
	default:
		return regular
	}
}

type faceKey struct {
	variant fontVariant
	size    Fl
}

// font.Face implementations are not safe for concurrent use
type lockedFace struct {
	mu   sync.Mutex
	face font.Face
}

// GoFontMeasurer measures text with the Go fonts, selecting
// the variant from the family, weight and style.
// Sizes are in CSS pixels.
type GoFontMeasurer struct {
	fonts [nbVariants]*opentype.Font

	mu    sync.Mutex
	faces map[faceKey]*lockedFace
}

// NewGoFontMeasurer parses the embedded Go fonts.
func NewGoFontMeasurer() (*GoFontMeasurer, error) {
	out := &GoFontMeasurer{faces: make(map[faceKey]*lockedFace)}
	for i, data := range variantsData {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, err
		}
		out.fonts[i] = f
	}
	return out, nil
}

func (gm *GoFontMeasurer) face(fd FontDescription) *lockedFace {
	key := faceKey{variantFor(fd), fd.Size}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if f := gm.faces[key]; f != nil {
		return f
	}
	// 72 DPI: one point is one pixel
	face, err := opentype.NewFace(gm.fonts[key.variant], &opentype.FaceOptions{
		Size: float64(fd.Size), DPI: 72, Hinting: font.HintingNone,
	})
	if err != nil {
		face = nil
	}
	out := &lockedFace{face: face}
	gm.faces[key] = out
	return out
}

func toFl(v fixed.Int26_6) Fl { return Fl(v) / 64 }

func (gm *GoFontMeasurer) Metrics(fd FontDescription) LineMetrics {
	if fd.Size <= 0 {
		return LineMetrics{}
	}
	f := gm.face(fd)
	if f.face == nil {
		return FixedMeasurer{}.Metrics(fd)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face.Metrics()
	ascent, descent := toFl(m.Ascent), toFl(m.Descent)
	return LineMetrics{Ascent: ascent, Descent: descent, LineGap: max(toFl(m.Height)-ascent-descent, 0)}
}

func (gm *GoFontMeasurer) Advance(fd FontDescription, text string) Fl {
	if fd.Size <= 0 || text == "" {
		return 0
	}
	f := gm.face(fd)
	if f.face == nil {
		return FixedMeasurer{Ratio: 0.5}.Advance(fd, text)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return toFl(font.MeasureString(f.face, text))
}

// NewFace returns a new face for [fd], owned by the caller.
func (gm *GoFontMeasurer) NewFace(fd FontDescription) (font.Face, error) {
	return opentype.NewFace(gm.fonts[variantFor(fd)], &opentype.FaceOptions{
		Size: float64(fd.Size), DPI: 72, Hinting: font.HintingNone,
	})
}
