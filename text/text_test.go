package text

import (
	"sync"
	"testing"

	"github.com/benoitkugler/textlayout/language"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sansFonts = pr.Strings{"DejaVu Sans", "sans"}
	monoFonts = pr.Strings{"DejaVu Sans Mono", "monospace"}
)

func newStyle(props pr.Properties) *pr.Style {
	style := pr.NewInitialStyle()
	style.UpdateWith(props)
	return style
}

func TestProcessWhitespace(t *testing.T) {
	for _, test := range []struct {
		in         string
		ws         Whitespace
		afterSpace bool
		exp        string
	}{
		{"  a \n\t b  ", WNormal, false, " a b "},
		{"  a \n\t b  ", WNormal, true, "a b "},
		{"a\n\nb", WNowrap, false, "a b"},
		{"a  \n  b \n", WPreLine, false, "a\nb\n"},
		{" a\tb\r\n", WPre, false, " a      b\n"},
		{"ab\tc", WPreWrap, false, "ab      c"},
		{"", WNormal, false, ""},
	} {
		assert.Equal(t, test.exp, ProcessWhitespace(test.in, test.ws, test.afterSpace), "%q", test.in)
	}
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []Segment{
		{Text: "a", Space: " "}, {Text: "bc", Space: " "}, {Text: "d"},
	}, Segments("a bc d", WNormal))

	assert.Equal(t, []Segment{{Text: "a bc d"}}, Segments("a bc d", WNowrap))

	assert.Equal(t, []Segment{
		{Text: "a b", Forced: true}, {Text: "", Forced: true}, {Text: "c"},
	}, Segments("a b\n\nc", WPre))

	assert.Equal(t, []Segment{
		{Text: "a", Space: "  "}, {Text: "b", Forced: true},
	}, Segments("a  b\n", WPreWrap))

	assert.Empty(t, Segments("", WNormal))
}

func TestIsCollapsibleSpace(t *testing.T) {
	assert.True(t, IsCollapsibleSpace(" \n ", WNormal))
	assert.True(t, IsCollapsibleSpace("", WNormal))
	assert.False(t, IsCollapsibleSpace(" a ", WNormal))
	assert.False(t, IsCollapsibleSpace("  ", WPre))
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "HELLO WORLD", Transform("hello world", kw.Uppercase, ""))
	assert.Equal(t, "hello", Transform("HeLLo", kw.Lowercase, ""))
	assert.Equal(t, "Hello WOrld", Transform("hello wOrld", kw.Capitalize, ""))
	assert.Equal(t, "hello", Transform("hello", kw.None, ""))
	// language sensitive
	assert.Equal(t, "İ", Transform("i", kw.Uppercase, language.NewLanguage("tr")))
}

func TestNewTextStyle(t *testing.T) {
	style := newStyle(pr.Properties{
		pr.PFontFamily:    monoFonts,
		pr.PFontWeight:    pr.Int(700),
		pr.PFontStyle:     kw.Italic,
		pr.PFontSize:      pr.FToV(20),
		pr.PWhiteSpace:    kw.PreWrap,
		pr.PLetterSpacing: pr.FToV(2),
	})
	ts := NewTextStyle(style)
	assert.Equal(t, FontDescription{Family: []string(monoFonts), Style: FSItalic, Weight: 700, Size: 20}, ts.FontDescription)
	assert.Equal(t, WPreWrap, ts.WhiteSpace)
	assert.Equal(t, Fl(2), ts.LetterSpacing)
	assert.Equal(t, Fl(0), ts.WordSpacing)

	assert.True(t, WPreWrap.TextWrap())
	assert.False(t, WPreWrap.SpaceCollapse())
	assert.False(t, WNowrap.TextWrap())
	assert.True(t, WNowrap.SpaceCollapse())
}

func TestFixedMeasurer(t *testing.T) {
	fd := FontDescription{Size: 10}
	assert.Equal(t, Fl(30), FixedMeasurer{}.Advance(fd, "abc"))
	assert.Equal(t, Fl(15), FixedMeasurer{Ratio: 0.5}.Advance(fd, "abc"))
	assert.Equal(t, Fl(10), FixedMeasurer{}.Metrics(fd).Height())

	ts := &TextStyle{FontDescription: fd, LetterSpacing: 1, WordSpacing: 5}
	assert.Equal(t, Fl(30+3+5), Width(FixedMeasurer{}, ts, "a b"))
	assert.Equal(t, Fl(0), Width(FixedMeasurer{}, ts, ""))
}

func TestGoFontMeasurer(t *testing.T) {
	m, err := NewGoFontMeasurer()
	require.NoError(t, err)

	fd := FontDescription{Family: []string(sansFonts), Weight: 400, Size: 16}
	w1 := m.Advance(fd, "Hello")
	assert.Positive(t, w1)
	assert.Equal(t, w1, m.Advance(fd, "Hello")) // stable
	assert.Greater(t, m.Advance(fd, "Hello world"), w1)

	big := fd
	big.Size = 32
	assert.InDelta(t, 2*w1, m.Advance(big, "Hello"), 1)

	metrics := m.Metrics(fd)
	assert.Positive(t, metrics.Ascent)
	assert.Positive(t, metrics.Descent)
	assert.Greater(t, metrics.Ascent, metrics.Descent)

	// monospace: every glyph has the same advance
	mono := FontDescription{Family: []string(monoFonts), Size: 16}
	assert.InDelta(t, m.Advance(mono, "iii"), m.Advance(mono, "MMM"), 1e-3)

	assert.Equal(t, Fl(0), m.Advance(FontDescription{Size: 0}, "a"))
}

func TestGoFontMeasurerConcurrent(t *testing.T) {
	m, err := NewGoFontMeasurer()
	require.NoError(t, err)

	fd := FontDescription{Size: 12}
	exp := m.Advance(fd, "concurrent")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				assert.Equal(t, exp, m.Advance(fd, "concurrent"))
			}
		}()
	}
	wg.Wait()
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, regular, variantFor(FontDescription{Weight: 400}))
	assert.Equal(t, bold, variantFor(FontDescription{Weight: 700}))
	assert.Equal(t, italic, variantFor(FontDescription{Weight: 400, Style: FSOblique}))
	assert.Equal(t, boldItalic, variantFor(FontDescription{Weight: 600, Style: FSItalic}))
	assert.Equal(t, monoBold, variantFor(FontDescription{Family: []string{"Courier New"}, Weight: 800}))
}

func TestStrut(t *testing.T) {
	ts := &TextStyle{FontDescription: FontDescription{Size: 10}}
	m := FixedMeasurer{}

	h, b := Strut(m, ts, pr.SToV("normal"))
	assert.Equal(t, Fl(10), h)
	assert.Equal(t, Fl(8), b)

	h, b = Strut(m, ts, pr.Value{Dimension: pr.NewDim(2, pr.Scalar)})
	assert.Equal(t, Fl(20), h)
	assert.Equal(t, Fl(13), b)

	h, b = Strut(m, ts, pr.FToV(6))
	assert.Equal(t, Fl(6), h)
	assert.Equal(t, Fl(6), b)

	h, _ = Strut(m, &TextStyle{}, pr.FToV(6))
	assert.Equal(t, Fl(0), h)
}
