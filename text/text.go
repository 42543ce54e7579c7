// Package text implements the text services used by the box builder
// and the inline layout: font measurement, white space processing,
// text transformation and segmentation at break opportunities.
//
// Shaping is out of scope: a [Measurer] only provides advances
// and vertical metrics.
package text

import (
	"strings"
	"unicode/utf8"

	"github.com/benoitkugler/textlayout/language"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

const tabSize = 8

// ProcessWhitespace applies the white space processing rules of [ws].
// If [afterSpace] is true, the text follows a collapsible space
// (in a previous text run), and leading spaces are removed.
func ProcessWhitespace(s string, ws Whitespace, afterSpace bool) string {
	if !ws.SpaceCollapse() {
		return expandTabs(strings.ReplaceAll(s, "\r\n", "\n"))
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	keepNewlines := ws == WPreLine

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	lastWasSpace := afterSpace
	for _, r := range s {
		switch r {
		case '\n':
			if keepNewlines {
				// spaces around a newline are removed
				pendingSpace = false
				b.WriteByte('\n')
				lastWasSpace = true
				continue
			}
			pendingSpace = true
		case ' ', '\t', '\r', '\f':
			pendingSpace = true
		default:
			if pendingSpace && !lastWasSpace {
				b.WriteByte(' ')
			}
			pendingSpace = false
			lastWasSpace = false
			b.WriteRune(r)
		}
	}
	if pendingSpace && !lastWasSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	column := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := tabSize - column%tabSize
			b.WriteString(strings.Repeat(" ", n))
			column += n
		case '\n':
			b.WriteRune(r)
			column = 0
		default:
			b.WriteRune(r)
			column++
		}
	}
	return b.String()
}

// Transform applies the text-transform property.
func Transform(s string, transform pr.Keyword, lang language.Language) string {
	tag := xlang.Und
	if lang != "" {
		if t, err := xlang.Parse(string(lang)); err == nil {
			tag = t
		}
	}
	switch transform {
	case kw.Uppercase:
		return cases.Upper(tag).String(s)
	case kw.Lowercase:
		return cases.Lower(tag).String(s)
	case kw.Capitalize:
		return cases.Title(tag, cases.NoLower).String(s)
	default:
		return s
	}
}

// Segment is a piece of text without break opportunities,
// followed by a break opportunity.
type Segment struct {
	// Text does not include the trailing spaces.
	Text string
	// Space is the run of spaces following Text. Collapsible
	// spaces hang at the end of a line.
	Space string
	// Forced is true when a line break must follow.
	Forced bool
}

// Segments splits [s], which must have been processed
// by [ProcessWhitespace], at the break opportunities allowed by [ws].
func Segments(s string, ws Whitespace) []Segment {
	var out []Segment
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		forced := i != len(lines)-1
		if !ws.TextWrap() {
			out = append(out, Segment{Text: line, Forced: forced})
			continue
		}
		segs := splitSpaces(line)
		if len(segs) == 0 {
			segs = []Segment{{}}
		}
		segs[len(segs)-1].Forced = forced
		out = append(out, segs...)
	}
	// an empty trailing segment carries no information
	if n := len(out); n > 0 && out[n-1] == (Segment{}) {
		out = out[:n-1]
	}
	return out
}

func splitSpaces(line string) []Segment {
	var out []Segment
	for len(line) != 0 {
		word := strings.IndexByte(line, ' ')
		if word == -1 {
			out = append(out, Segment{Text: line})
			break
		}
		end := word
		for end < len(line) && line[end] == ' ' {
			end++
		}
		out = append(out, Segment{Text: line[:word], Space: line[word:end]})
		line = line[end:]
	}
	return out
}

// IsCollapsibleSpace returns true if [s] only contains
// spaces and newlines, and [ws] collapses spaces.
func IsCollapsibleSpace(s string, ws Whitespace) bool {
	if !ws.SpaceCollapse() {
		return false
	}
	return strings.Trim(s, " \n\t\r\f") == ""
}

// Strut returns the used value of line-height and the baseline
// position (from the top of the line), for a line containing
// only text with [ts] style.
func Strut(m Measurer, ts *TextStyle, lineHeight pr.Value) (height, baseline Fl) {
	if ts.Size == 0 {
		return 0, 0
	}
	metrics := m.Metrics(ts.FontDescription)
	contentHeight := metrics.Ascent + metrics.Descent
	if lineHeight.S == "normal" {
		height = metrics.Height()
		return height, metrics.Ascent + metrics.LineGap/2
	}
	height = lineHeight.Value
	if lineHeight.Unit == pr.Scalar {
		height *= ts.Size
	}
	// half-leading
	return height, metrics.Ascent + (height-contentHeight)/2
}

// Runes returns the number of runes of [s].
func Runes(s string) int { return utf8.RuneCountInString(s) }
