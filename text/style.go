package text

import (
	"strings"

	"github.com/benoitkugler/textlayout/language"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/utils"
)

type Fl = utils.Fl

type LineMetrics struct {
	// Distance from the baseline to the logical top of a line of text.
	Ascent Fl
	// Distance from the baseline to the logical bottom of a line of text,
	// as a positive number.
	Descent Fl
	// Suggested gap between two lines.
	LineGap Fl
}

// Height returns the logical height of a line of text.
func (lm LineMetrics) Height() Fl { return lm.Ascent + lm.Descent + lm.LineGap }

type FontStyle uint8

const (
	FSNormal FontStyle = iota
	FSItalic
	FSOblique
)

func newFontStyle(k pr.Keyword) FontStyle {
	switch k {
	case kw.Italic:
		return FSItalic
	case kw.Oblique:
		return FSOblique
	default:
		return FSNormal
	}
}

// FontDescription stores the settings influencing
// font resolution and metrics.
type FontDescription struct {
	Family []string
	Style  FontStyle
	Weight uint16
	Size   Fl
}

// fingerprint includes the size if [includeSize] is true.
func (fd FontDescription) fingerprint(includeSize bool) uint64 {
	f := utils.NewFingerprint().String(strings.Join(fd.Family, ",")).Int(int(fd.Style)).Int(int(fd.Weight))
	if includeSize {
		f.Float(fd.Size)
	}
	return f.Sum()
}

type Whitespace uint8

const (
	WNormal Whitespace = iota
	WNowrap
	WPre
	WPreWrap
	WPreLine
)

func newWhiteSpace(k pr.Keyword) Whitespace {
	switch k {
	case kw.NoWrap:
		return WNowrap
	case kw.Pre:
		return WPre
	case kw.PreWrap:
		return WPreWrap
	case kw.PreLine:
		return WPreLine
	default:
		return WNormal
	}
}

// TextWrap returns true if the "white-space" property allows wrapping
func (ws Whitespace) TextWrap() bool {
	return ws == WNormal || ws == WPreWrap || ws == WPreLine
}

// SpaceCollapse returns true if sequences of spaces are collapsed.
func (ws Whitespace) SpaceCollapse() bool {
	return ws == WNormal || ws == WNowrap || ws == WPreLine
}

// TextStyle exposes the subset of a [pr.Style]
// required to measure and break text.
type TextStyle struct {
	FontDescription

	Lang       language.Language
	WhiteSpace Whitespace
	Transform  pr.Keyword

	WordSpacing   Fl
	LetterSpacing Fl // 0 for 'normal'
}

// NewTextStyle extracts the text properties of [style].
func NewTextStyle(style *pr.Style) *TextStyle {
	var out TextStyle

	out.Family = style.GetFontFamily()
	out.Style = newFontStyle(style.GetFontStyle())
	out.Weight = uint16(style.GetFontWeight())
	out.Size = style.GetFontSize().Value

	out.Lang = style.Lang
	out.WhiteSpace = newWhiteSpace(style.GetWhiteSpace())
	out.Transform = style.GetTextTransform()

	if ws := style.GetWordSpacing(); !ws.IsKeyword() {
		out.WordSpacing = ws.Value
	}
	if ls := style.GetLetterSpacing(); !ls.IsKeyword() {
		out.LetterSpacing = ls.Value
	}
	return &out
}
