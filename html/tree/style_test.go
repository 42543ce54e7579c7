package tree

import (
	"testing"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/dom"
	tu "github.com/benoitkugler/vformat/utils/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(html)
	require.NoError(t, err)
	return doc
}

// byID returns the element with the given id attribute.
func byID(t *testing.T, doc *dom.Document, id string) dom.NodeID {
	t.Helper()
	found := dom.None
	doc.Walk(doc.Root(), func(n dom.NodeID) bool {
		if v, ok := doc.Attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return found == dom.None
	})
	require.NotEqual(t, dom.None, found, id)
	return found
}

func resolverFor(t *testing.T, html string, sheets ...*Sheet) (*dom.Document, *Resolver) {
	t.Helper()
	doc := parseDoc(t, html)
	r := NewResolver(doc, sheets, DefaultDevice, nil)
	t.Cleanup(r.Close)
	return doc, r
}

func color(s string) pr.Color { return validation.ParseColorString(s) }

func TestDeclarationPrecedence(t *testing.T) {
	assert.Less(t, declarationPrecedence(pa.UserAgent, false), declarationPrecedence(pa.User, false))
	assert.Less(t, declarationPrecedence(pa.User, false), declarationPrecedence(pa.Author, false))
	assert.Less(t, declarationPrecedence(pa.Author, false), declarationPrecedence(pa.Author, true))
	assert.Less(t, declarationPrecedence(pa.Author, true), declarationPrecedence(pa.User, true))
	assert.Less(t, declarationPrecedence(pa.User, true), declarationPrecedence(pa.UserAgent, true))
}

func TestUserAgentImportant(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	ua := NewSheetString(`p { color: lime !important; font-style: italic }`, pa.UserAgent)
	user := NewSheetString(`p { color: red !important }`, pa.User)
	author := NewSheetString(`p { color: red !important; font-style: normal }`, pa.Author)
	doc, r := resolverFor(t, `<p id=p>a</p>`, ua, user, author)

	// important user agent declarations win over every origin
	assert.Equal(t, color("lime"), r.Style(byID(t, doc, "p"), "").GetColor())
	// normal ones still lose
	assert.Equal(t, kw.Normal, r.Style(byID(t, doc, "p"), "").GetFontStyle())
}

func TestCascadeOrder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	author := NewSheetString(`
		p { color: red }
		p { color: blue }
		#id { color: lime }
		p { color: red }
		.user { background-color: red !important }
		.attr { color: red }
	`, pa.Author)
	user := NewSheetString(`
		.user { background-color: lime !important }
		p { font-style: italic }
		em { font-style: normal }
	`, pa.User)

	doc, r := resolverFor(t, `
		<p id=p1>a</p>
		<p id=id>b</p>
		<p class=user id=u>d</p>
		<p class=attr id=s style="color: lime">e</p>
		<em id=em>f</em>
	`, author, user)

	// source order
	assert.Equal(t, color("red"), r.Style(byID(t, doc, "p1"), "").GetColor())
	// specificity wins over order
	assert.Equal(t, color("lime"), r.Style(byID(t, doc, "id"), "").GetColor())
	// user important wins over author important
	assert.Equal(t, color("lime"), r.Style(byID(t, doc, "u"), "").GetBackgroundColor())
	// user rules apply when no author rule is set
	assert.Equal(t, kw.Italic, r.Style(byID(t, doc, "p1"), "").GetFontStyle())
	// style attribute wins over selectors
	assert.Equal(t, color("lime"), r.Style(byID(t, doc, "s"), "").GetColor())
	// user wins over user agent
	assert.Equal(t, kw.Normal, r.Style(byID(t, doc, "em"), "").GetFontStyle())
}

func TestImportantBeatsSpecificity(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`.imp { color: yellow !important } #x.imp { color: red }`, pa.Author)
	doc, r := resolverFor(t, `<p id=x class=imp>c</p>`, sheet)
	assert.Equal(t, color("yellow"), r.Style(byID(t, doc, "x"), "").GetColor())
}

func TestUserAgentDefaults(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc, r := resolverFor(t, `<body><h1 id=h>T</h1><ul><li id=li>a</li></ul><span id=s>s</span><div hidden id=hd></div></body>`)

	body := r.Style(doc.Parent(byID(t, doc, "h")), "")
	assert.Equal(t, pr.FToV(8), body.GetMarginTop())
	assert.Equal(t, pr.Display{Outer: "block", Inner: "flow"}, body.GetDisplay())

	h1 := r.Style(byID(t, doc, "h"), "")
	assert.Equal(t, pr.FToV(32), h1.GetFontSize())
	assert.Equal(t, pr.Int(700), h1.GetFontWeight())
	assert.InDelta(t, 0.67*32, h1.GetMarginTop().Value, 1e-4)

	li := r.Style(byID(t, doc, "li"), "")
	assert.True(t, li.GetDisplay().ListItem)

	assert.Equal(t, pr.Display{Outer: "inline", Inner: "flow"}, r.Style(byID(t, doc, "s"), "").GetDisplay())
	assert.True(t, r.Style(byID(t, doc, "hd"), "").GetDisplay().IsNone())
}

func TestInheritance(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		div { color: lime; border-color: red; font-size: 20px; margin-left: 2em; border-left-style: solid }
		span { margin-left: inherit; border-left-color: currentColor; color: inherit }
		em { color: initial; font-size: unset; margin-left: unset }
	`, pa.Author)
	doc, r := resolverFor(t, `<div id=d><span id=s>a</span><em id=e>b</em></div>`, sheet)

	div := r.Style(byID(t, doc, "d"), "")
	assert.Equal(t, pr.FToV(40), div.GetMarginLeft())
	assert.Equal(t, pr.FToV(3), div.GetBorderLeftWidth())
	assert.Equal(t, pr.FToV(0), div.GetBorderTopWidth()) // style none

	span := r.Style(byID(t, doc, "s"), "")
	assert.Equal(t, color("lime"), span.GetColor())
	assert.Equal(t, pr.FToV(20), span.GetFontSize())
	assert.Equal(t, pr.FToV(40), span.GetMarginLeft()) // computed value is inherited
	assert.Equal(t, color("lime"), span.GetBorderLeftColor())

	em := r.Style(byID(t, doc, "e"), "")
	assert.Equal(t, pr.Black, em.GetColor())
	assert.Equal(t, pr.FToV(20), em.GetFontSize())
	assert.Equal(t, pr.FToV(0), em.GetMarginLeft())
	// the initial currentColor uses the element color
	assert.Equal(t, pr.Black, em.GetBorderTopColor())
}

func TestComputedLengths(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		html { font-size: 10px }
		div { font-size: 2em; width: 50%; height: 1in; padding-left: 2rem; margin-top: 10vw; margin-bottom: 10vh;
			  line-height: 150%; text-indent: 1vmin; letter-spacing: 1vmax; border-spacing: 1em 2px }
		p { font-size: 150%; line-height: 1.5 }
		span { font-size: larger; font-weight: bolder }
		small { font-size: smaller; font-weight: lighter }
	`, pa.Author)
	doc, r := resolverFor(t, `<div id=d><p id=p><span id=s>a</span><small id=sm>b</small></p></div>`, sheet)

	div := r.Style(byID(t, doc, "d"), "")
	assert.Equal(t, pr.FToV(20), div.GetFontSize())
	assert.Equal(t, pr.PercToV(50), div.GetWidth())
	assert.Equal(t, pr.FToV(96), div.GetHeight())
	assert.Equal(t, pr.FToV(20), div.GetPaddingLeft())
	assert.Equal(t, pr.FToV(80), div.GetMarginTop())
	assert.Equal(t, pr.FToV(60), div.GetMarginBottom())
	assert.Equal(t, pr.FToV(30), div.GetLineHeight())
	assert.Equal(t, pr.FToV(6), div.GetTextIndent())
	assert.Equal(t, pr.FToV(8), div.GetLetterSpacing())
	assert.Equal(t, pr.Point{pr.NewDim(20, pr.Px), pr.NewDim(2, pr.Px)}, div.GetBorderSpacing())

	p := r.Style(byID(t, doc, "p"), "")
	assert.Equal(t, pr.FToV(30), p.GetFontSize())
	assert.Equal(t, pr.NewDim(1.5, pr.Scalar).ToValue(), p.GetLineHeight())

	span := r.Style(byID(t, doc, "s"), "")
	assert.Equal(t, pr.FToV(32), span.GetFontSize()) // xx-large
	assert.Equal(t, pr.Int(700), span.GetFontWeight())
	// numbers are inherited as numbers
	assert.Equal(t, pr.NewDim(1.5, pr.Scalar).ToValue(), span.GetLineHeight())

	small := r.Style(byID(t, doc, "sm"), "")
	assert.Equal(t, pr.FToV(24), small.GetFontSize()) // x-large
	assert.Equal(t, pr.Int(100), small.GetFontWeight())
}

func TestDisplayBlockification(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		.float { float: left }
		.abs { position: absolute; float: right }
		.flex { display: flex }
		.table-cell { display: table-cell; float: left }
		html { display: inline }
	`, pa.Author)
	doc, r := resolverFor(t, `<div>
		<span id=f class=float>a</span>
		<span id=a class=abs>b</span>
		<div class=flex><span id=item>c</span><b id=ib style="display: inline-block">d</b></div>
		<span id=tc class=table-cell>e</span>
	</div>`, sheet)

	block := pr.Display{Outer: "block", Inner: "flow"}
	assert.Equal(t, block, r.Style(doc.Root(), "").GetDisplay())
	assert.Equal(t, block, r.Style(byID(t, doc, "f"), "").GetDisplay())

	abs := r.Style(byID(t, doc, "a"), "")
	assert.Equal(t, block, abs.GetDisplay())
	assert.Equal(t, kw.None, abs.GetFloat())

	assert.Equal(t, block, r.Style(byID(t, doc, "item"), "").GetDisplay())
	assert.Equal(t, pr.Display{Outer: "block", Inner: "flow-root"}, r.Style(byID(t, doc, "ib"), "").GetDisplay())
	assert.Equal(t, block, r.Style(byID(t, doc, "tc"), "").GetDisplay())
}

func TestPseudoElements(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		p::before { content: "[" attr(title) "]"; color: lime }
		p::after { content: none }
		div::after { content: "x"; display: none }
	`, pa.Author)
	doc, r := resolverFor(t, `<p id=p title=T>a</p><q id=q>b</q><div id=d></div>`, sheet)

	p := byID(t, doc, "p")
	before := r.Style(p, Before)
	require.NotNil(t, before)
	assert.Equal(t, pr.Contents{
		{Type: "string", Value: "["},
		{Type: "string", Value: "T"},
		{Type: "string", Value: "]"},
	}, before.GetContent())
	assert.Equal(t, color("lime"), before.GetColor())
	assert.Nil(t, r.Style(p, After))
	// elements never have content
	assert.Empty(t, r.Style(p, "").GetContent())

	q := byID(t, doc, "q")
	require.NotNil(t, r.Style(q, Before))
	assert.Equal(t, pr.Contents{{Type: "open-quote"}}, r.Style(q, Before).GetContent())
	assert.Equal(t, pr.Contents{{Type: "close-quote"}}, r.Style(q, After).GetContent())

	assert.Nil(t, r.Style(byID(t, doc, "d"), After))
}

func TestTextNodeStyle(t *testing.T) {
	sheet := NewSheetString(`p { color: lime }`, pa.Author)
	doc, r := resolverFor(t, `<p id=p>text</p>`, sheet)
	p := byID(t, doc, "p")
	text := doc.Children(p)[0]
	require.True(t, doc.IsText(text))
	assert.Same(t, r.Style(p, ""), r.Style(text, ""))
}

func TestInvalidDeclarationsDiscarded(t *testing.T) {
	capt := tu.CaptureLogs()
	sheet := NewSheetString(`p { color: lime; color: 12px; width: -3px; margin-left: 5px }`, pa.Author)
	logs := capt.Logs()
	assert.Len(t, logs, 2)

	doc, r := resolverFor(t, `<p id=p>a</p>`, sheet)
	p := r.Style(byID(t, doc, "p"), "")
	assert.Equal(t, color("lime"), p.GetColor())
	assert.Equal(t, pr.SToV("auto"), p.GetWidth())
	assert.Equal(t, pr.FToV(5), p.GetMarginLeft())
}

func TestEveryPropertyComputed(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	doc, r := resolverFor(t, `<p id=p>a</p>`)
	for _, node := range []dom.NodeID{doc.Root(), byID(t, doc, "p")} {
		style := r.Style(node, "")
		for p := pr.KnownProp(1); p < pr.NbProps; p++ {
			assert.NotNil(t, style.Properties[p], p.String())
		}
	}
}

func TestDeterminism(t *testing.T) {
	html := `<div class=a><p style="margin: 1em 2%">x</p><span>y</span></div>`
	sheet := NewSheetString(`.a { --c: lime; color: var(--c) } p { padding: 3px }`, pa.Author)

	_, r1 := resolverFor(t, html, sheet)
	_, r2 := resolverFor(t, html, sheet)
	r1.ResolveAll()
	r2.ResolveAll()
	require.Equal(t, len(r1.styles), len(r2.styles))
	for id, s := range r1.styles {
		assert.Equal(t, s.fingerprint, r2.styles[id].fingerprint)
	}
}
