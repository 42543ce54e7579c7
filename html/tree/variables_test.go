package tree

import (
	"testing"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	tu "github.com/benoitkugler/vformat/utils/testutils"
	"github.com/stretchr/testify/assert"
)

func TestVariables(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		html { --size: 10px; --main: lime }
		div { --size: 2em; font-size: var(--size); color: var(--main) }
		p { margin: var(--size) 0 var(--undefined, 3px) }
		span { --late: var(--early); --early: 5px; padding-left: var(--late) }
	`, pa.Author)
	doc, r := resolverFor(t, `<div id=d><p id=p>a<span id=s>b</span></p></div>`, sheet)

	div := r.Style(byID(t, doc, "d"), "")
	assert.Equal(t, pr.FToV(32), div.GetFontSize())
	assert.Equal(t, color("lime"), div.GetColor())

	// variables are substituted as tokens, then computed on the element
	p := r.Style(byID(t, doc, "p"), "")
	assert.Equal(t, pr.FToV(64), p.GetMarginTop())
	assert.Equal(t, pr.FToV(0), p.GetMarginRight())
	assert.Equal(t, pr.FToV(3), p.GetMarginBottom())
	assert.Equal(t, pr.FToV(0), p.GetMarginLeft())

	// declaration order does not matter
	s := r.Style(byID(t, doc, "s"), "")
	assert.Equal(t, pr.FToV(5), s.GetPaddingLeft())
}

func TestVariablesCycle(t *testing.T) {
	capt := tu.CaptureLogs()

	sheet := NewSheetString(`
		html { color: lime; --a: 1px }
		div {
			--a: var(--b); --b: var(--a, 2px);
			--self: var(--self);
			color: var(--b);
			margin-left: var(--self);
			padding-left: var(--missing);
			--ok: 4px;
			padding-right: var(--ok);
		}
	`, pa.Author)
	doc, r := resolverFor(t, `<div id=d>a</div>`, sheet)

	div := r.Style(byID(t, doc, "d"), "")
	// invalid at computed-value time: unset
	assert.Equal(t, color("lime"), div.GetColor()) // inherited
	assert.Equal(t, pr.FToV(0), div.GetMarginLeft())
	assert.Equal(t, pr.FToV(0), div.GetPaddingLeft())
	assert.Equal(t, pr.FToV(4), div.GetPaddingRight())

	// cyclic variables are removed, even with a fallback
	_, hasA := div.Variables["--a"]
	_, hasB := div.Variables["--b"]
	assert.False(t, hasA)
	assert.False(t, hasB)

	assert.Len(t, capt.Logs(), 3)
}

func TestVariablesInShorthand(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		div { --border: 2px solid red; border-top: var(--border); --flex: 2 3 10px; flex: var(--flex) }
	`, pa.Author)
	doc, r := resolverFor(t, `<div id=d>a</div>`, sheet)

	div := r.Style(byID(t, doc, "d"), "")
	assert.Equal(t, pr.FToV(2), div.GetBorderTopWidth())
	assert.Equal(t, color("red"), div.GetBorderTopColor())
	assert.Equal(t, pr.Float(2), div.GetFlexGrow())
	assert.Equal(t, pr.Float(3), div.GetFlexShrink())
	assert.Equal(t, pr.FToV(10), div.GetFlexBasis())
}

func TestVariablesInheritance(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	sheet := NewSheetString(`
		div { --x: 7px }
		p { --x: initial; margin-left: var(--x, 1px) }
		span { --x: inherit; margin-left: var(--x) }
	`, pa.Author)
	doc, r := resolverFor(t, `<div><p id=p>a</p><span id=s>b</span></div>`, sheet)

	assert.Equal(t, pr.FToV(1), r.Style(byID(t, doc, "p"), "").GetMarginLeft())
	assert.Equal(t, pr.FToV(7), r.Style(byID(t, doc, "s"), "").GetMarginLeft())
}

func TestParseVar(t *testing.T) {
	name, fallback, hasFallback, ok := parseVar(pa.Tokenize("--a, 1px 2px"))
	assert.True(t, ok)
	assert.True(t, hasFallback)
	assert.Equal(t, "--a", name)
	assert.Equal(t, " 1px 2px", pa.Serialize(fallback))

	_, _, hasFallback, ok = parseVar(pa.Tokenize("--b"))
	assert.True(t, ok)
	assert.False(t, hasFallback)

	_, _, _, ok = parseVar(pa.Tokenize("a"))
	assert.False(t, ok)
	_, _, _, ok = parseVar(pa.Tokenize("--a 2px"))
	assert.False(t, ok)
}
