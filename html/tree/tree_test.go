package tree

import (
	"testing"

	"github.com/benoitkugler/vformat/config"
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/dom"
	tu "github.com/benoitkugler/vformat/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestIncrementalAttributeChange(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`.big { font-size: 40px } .big span { color: lime }`, pa.Author)
	doc, r := resolverFor(t, `<div id=a><span id=s>x</span></div><div id=b><span id=t>y</span></div>`, sheet)
	changed := r.ResolveAll()
	assert.NotEmpty(t, changed)

	// nothing to do
	assert.Empty(t, r.ResolveAll())

	a, s := byID(t, doc, "a"), byID(t, doc, "s")
	require.NoError(t, doc.SetAttribute(a, "class", "big"))
	changed = r.ResolveAll()
	assert.Equal(t, []dom.NodeID{a, s}, changed)
	assert.Equal(t, pr.FToV(40), r.Style(s, "").GetFontSize())
	assert.Equal(t, color("lime"), r.Style(s, "").GetColor())

	// the other subtree is untouched
	assert.Equal(t, pr.FToV(16), r.Style(byID(t, doc, "t"), "").GetFontSize())
}

func TestIncrementalUnchangedStyle(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc, r := resolverFor(t, `<div id=a><span id=s>x</span></div>`)
	r.ResolveAll()
	require.NoError(t, doc.SetAttribute(byID(t, doc, "a"), "data-x", "1"))
	// re-matched, but with the same computed values
	assert.Empty(t, r.ResolveAll())
}

func TestIncrementalNodeAdded(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`p { color: lime }`, pa.Author)
	doc, r := resolverFor(t, `<div id=a></div>`, sheet)
	r.ResolveAll()

	p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	id, err := doc.AppendChild(byID(t, doc, "a"), p)
	require.NoError(t, err)

	assert.Equal(t, []dom.NodeID{id}, r.ResolveAll())
	assert.Equal(t, color("lime"), r.Style(id, "").GetColor())

	require.NoError(t, doc.RemoveChild(id))
	assert.Empty(t, r.ResolveAll())
	assert.Nil(t, r.Style(id, ""))
}

func TestIncrementalSiblings(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`li:first-child { color: lime } .x + li { color: red }`, pa.Author)
	require.True(t, sheet.siblings)
	doc, r := resolverFor(t, `<ul id=u><li id=a>a</li><li id=b>b</li></ul>`, sheet)
	a, b := byID(t, doc, "a"), byID(t, doc, "b")
	assert.Equal(t, color("lime"), r.Style(a, "").GetColor())

	require.NoError(t, doc.SetAttribute(a, "class", "x"))
	assert.Equal(t, color("red"), r.Style(b, "").GetColor())

	li := &html.Node{Type: html.ElementNode, Data: "li", DataAtom: atom.Li}
	first, err := doc.InsertBefore(byID(t, doc, "u"), li, a)
	require.NoError(t, err)
	assert.Equal(t, color("lime"), r.Style(first, "").GetColor())
	assert.Equal(t, pr.Black, r.Style(a, "").GetColor())
}

func TestSheetsAddRemove(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc, r := resolverFor(t, `<p id=p>a</p>`)
	p := byID(t, doc, "p")
	assert.Equal(t, pr.Black, r.Style(p, "").GetColor())

	sheet := NewSheetString(`p { color: lime }`, pa.Author)
	r.AddSheet(sheet)
	assert.Equal(t, color("lime"), r.Style(p, "").GetColor())

	assert.True(t, r.RemoveSheet(sheet))
	assert.False(t, r.RemoveSheet(sheet))
	assert.False(t, r.RemoveSheet(UAStylesheet))
	assert.Equal(t, pr.Black, r.Style(p, "").GetColor())
}

func TestMediaQueries(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		@media print { p { color: red } }
		@media screen and (min-width: 600px) { p { color: lime } }
		@media (max-width: 599px) { p { color: blue } }
		@media (orientation: portrait) { p { font-style: italic } }
		@media (prefers-color-scheme: dark) { p { background-color: black } }
	`, pa.Author)
	doc, r := resolverFor(t, `<p id=p>a</p>`, sheet)
	p := byID(t, doc, "p")

	assert.Equal(t, color("lime"), r.Style(p, "").GetColor())
	assert.Equal(t, kw.Normal, r.Style(p, "").GetFontStyle())

	r.SetDevice(NewDevice(config.ViewportConfig{Width: 400, Height: 800, DevicePixelRatio: 1, Media: "screen", ColorScheme: "dark"}))
	style := r.Style(p, "")
	assert.Equal(t, color("blue"), style.GetColor())
	assert.Equal(t, kw.Italic, style.GetFontStyle())
	assert.Equal(t, color("black"), style.GetBackgroundColor())

	r.SetDevice(NewDevice(config.ViewportConfig{Width: 800, Height: 600, DevicePixelRatio: 1, Media: "print", ColorScheme: "light"}))
	assert.Equal(t, color("red"), r.Style(p, "").GetColor())
}

func TestDeviceMatches(t *testing.T) {
	capt := tu.CaptureLogs()
	d := DefaultDevice
	for _, test := range []struct {
		query string
		exp   bool
	}{
		{"all", true},
		{"screen", true},
		{"print", false},
		{"not print", true},
		{"print, screen", true},
		{"(min-width: 800px)", true},
		{"(min-width: 801px)", false},
		{"(width: 8.33333in)", false},
		{"(max-height: 600px)", true},
		{"screen and (orientation: landscape)", true},
		{"(grid)", false},
	} {
		q := pa.ParseMediaQueryList(pa.Tokenize(test.query))
		assert.Equal(t, test.exp, d.Matches(q), test.query)
	}
	capt.CheckLogs(t, "grid")
}

func TestViewportUnitsFollowDevice(t *testing.T) {
	sheet := NewSheetString(`p { width: 50vw }`, pa.Author)
	doc, r := resolverFor(t, `<p id=p>a</p>`, sheet)
	p := byID(t, doc, "p")
	assert.Equal(t, pr.FToV(400), r.Style(p, "").GetWidth())

	r.SetDevice(NewDevice(config.ViewportConfig{Width: 1000, Height: 600, DevicePixelRatio: 1, Media: "screen", ColorScheme: "light"}))
	assert.Equal(t, pr.FToV(500), r.Style(p, "").GetWidth())
}

func TestPresentationalHints(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`.w { width: 20px }`, pa.Author)
	doc, r := resolverFor(t, `
		<img id=i width=100 height="50%">
		<img id=w class=w width=100>
		<table id=t bgcolor=red border=2 cellspacing=4><tr><td id=c align=center nowrap>x</td></tr></table>
	`, sheet)

	img := r.Style(byID(t, doc, "i"), "")
	assert.Equal(t, pr.FToV(100), img.GetWidth())
	assert.Equal(t, pr.PercToV(50), img.GetHeight())

	// author rules win over hints
	assert.Equal(t, pr.FToV(20), r.Style(byID(t, doc, "w"), "").GetWidth())

	table := r.Style(byID(t, doc, "t"), "")
	assert.Equal(t, color("red"), table.GetBackgroundColor())
	assert.Equal(t, pr.FToV(2), table.GetBorderTopWidth())
	assert.Equal(t, pr.Point{pr.NewDim(4, pr.Px), pr.NewDim(4, pr.Px)}, table.GetBorderSpacing())

	cell := r.Style(byID(t, doc, "c"), "")
	assert.Equal(t, kw.Center, cell.GetTextAlign())
	assert.Equal(t, kw.NoWrap, cell.GetWhiteSpace())
}

func TestHTMLLength(t *testing.T) {
	for _, test := range []struct {
		in  string
		exp string
		ok  bool
	}{
		{"12", "12px", true},
		{"12px", "12px", true},
		{"2.5", "2.5px", true},
		{"30%", "30%", true},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
	} {
		got, ok := htmlLength(test.in)
		assert.Equal(t, test.ok, ok, test.in)
		assert.Equal(t, test.exp, got, test.in)
	}
}

func TestPageDescriptors(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		@page { size: a4; margin: 1cm }
		@media print { @page { margin-left: 2cm } }
	`, pa.Author)
	_, r := resolverFor(t, `<p>a</p>`, sheet)

	pd := r.PageDescriptors()
	assert.Equal(t, pr.PageSizes["a4"], pd.Size)
	assert.Equal(t, pr.NewDim(1, pr.Cm).ToValue(), pd.Margin[pr.SLeft])

	r.SetDevice(NewDevice(config.ViewportConfig{Width: 800, Height: 600, DevicePixelRatio: 1, Media: "print", ColorScheme: "light"}))
	pd = r.PageDescriptors()
	assert.Equal(t, pr.NewDim(2, pr.Cm).ToValue(), pd.Margin[pr.SLeft])
}

func TestStyleSharing(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	caches := NewCaches(config.NewDefaultConfig().Cache)
	doc := parseDoc(t, `<ul id=u><li>a</li><li>b</li><li class=x>c</li></ul>`)
	r := NewResolver(doc, nil, DefaultDevice, caches)
	defer r.Close()

	items := doc.Children(byID(t, doc, "u"))
	require.Len(t, items, 3)
	// same inputs: the style is shared
	assert.Same(t, r.Style(items[0], ""), r.Style(items[1], ""))
	// attributes are part of the key
	assert.NotSame(t, r.Style(items[0], ""), r.Style(items[2], ""))
	assert.True(t, r.Style(items[0], "").Equal(r.Style(items[2], "")))

	assert.Positive(t, caches.Styles.Stats().Hits)
}

func TestClose(t *testing.T) {
	doc, r := resolverFor(t, `<p id=p>a</p>`)
	r.ResolveAll()
	r.Close()
	require.NoError(t, doc.SetAttribute(byID(t, doc, "p"), "class", "x"))
	assert.Empty(t, r.dirty)
}
