package backend

import (
	"strings"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/text"
)

// TextDrawing exposes the positionned glyphs to draw, in a
// backend independent manner.
type TextDrawing struct {
	Runs []TextRun

	Color pr.RGBA
	X, Y  Fl // origin of the first run, on the baseline
}

// TextRun is a serie of glyphs with constant font.
type TextRun struct {
	Font   text.FontDescription
	Glyphs []TextGlyph
}

// TextGlyph stores a glyph and its advance.
type TextGlyph struct {
	Rune     rune
	XAdvance Fl // how much to move after drawing
}

// Text returns the characters of the runs.
func (td TextDrawing) Text() string {
	var b strings.Builder
	for _, run := range td.Runs {
		for _, g := range run.Glyphs {
			b.WriteRune(g.Rune)
		}
	}
	return b.String()
}

// Advance returns the total advance of the runs.
func (td TextDrawing) Advance() Fl {
	var w Fl
	for _, run := range td.Runs {
		for _, g := range run.Glyphs {
			w += g.XAdvance
		}
	}
	return w
}

// NewTextRun splits [s] into glyphs, measured with [m], and
// spaced according to [ts].
func NewTextRun(m text.Measurer, ts *text.TextStyle, s string) TextRun {
	run := TextRun{Font: ts.FontDescription, Glyphs: make([]TextGlyph, 0, len(s))}
	for _, r := range s {
		adv := m.Advance(ts.FontDescription, string(r)) + ts.LetterSpacing
		if r == ' ' {
			adv += ts.WordSpacing
		}
		run.Glyphs = append(run.Glyphs, TextGlyph{Rune: r, XAdvance: adv})
	}
	return run
}
