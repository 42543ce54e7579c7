package document

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/benoitkugler/vformat/backend"
	"github.com/benoitkugler/vformat/config"
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/html/tree"
	tu "github.com/benoitkugler/vformat/utils/testutils"
	"github.com/benoitkugler/vformat/utils/testutils/tracer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// with the FixedMeasurer, glyphs are 16px squares and lines are 16px high
const baseSheet = "body { margin: 0 }"

func newTestPipeline(t *testing.T, cfg *config.Config, opts Options, content string, sheets ...string) (*Pipeline, *dom.Document) {
	t.Helper()

	doc, err := dom.ParseString(content)
	require.NoError(t, err)
	ss := []*tree.Sheet{tree.NewSheetString(baseSheet, pa.Author)}
	for _, css := range sheets {
		ss = append(ss, tree.NewSheetString(css, pa.Author))
	}
	p := NewPipeline(doc, ss, cfg, opts)
	t.Cleanup(p.Close)
	return p, doc
}

func renderFrame(t *testing.T, content string, sheets ...string) *Frame {
	t.Helper()
	p, _ := newTestPipeline(t, nil, Options{}, content, sheets...)
	frame, err := p.Render(context.Background())
	require.NoError(t, err)
	return frame
}

func findNode(t *testing.T, doc *dom.Document, id string) dom.NodeID {
	t.Helper()
	out := dom.None
	doc.Walk(doc.Root(), func(n dom.NodeID) bool {
		if v, ok := doc.Attr(n, "id"); ok && v == id {
			out = n
			return false
		}
		return true
	})
	require.NotEqual(t, dom.None, out, "no element with id %q", id)
	return out
}

// fragmentOf returns the first fragment of the element with the given id.
func fragmentOf(t *testing.T, frame *Frame, id string) fragments.FragmentID {
	t.Helper()
	node := findNode(t, frame.Boxes.Document(), id)
	frags := frame.Fragments.FragmentsOf(frame.Boxes.BoxFor(node))
	require.NotEmpty(t, frags)
	return frags[0]
}

func ops(page backend.Page) []backend.Op {
	out := make([]backend.Op, len(page.Commands))
	for i, c := range page.Commands {
		out[i] = c.Op
	}
	return out
}

func texts(page backend.Page) []string {
	var out []string
	for _, c := range page.Commands {
		if c.Op == backend.OpText {
			out = append(out, c.Text.Text())
		}
	}
	return out
}

var (
	red   = pr.RGBA{R: 1, A: 1}
	blue  = pr.RGBA{B: 1, A: 1}
	black = pr.RGBA{A: 1}
)

func TestPaintOrder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div>text</div>`,
		"div { background-color: red; border: 2px solid blue }")
	require.NoError(t, frame.List.Validate())
	require.Len(t, frame.List.Pages, 1)
	page := frame.List.Pages[0]

	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpFillRect,
		backend.OpBorder, backend.OpBorder, backend.OpBorder, backend.OpBorder,
		backend.OpText,
	})
	bg := page.Commands[0]
	assert.Equal(t, red, bg.Color)
	assert.Equal(t, backend.Rect{Width: 800, Height: 20}, bg.Rect)

	top, right, bottom, left := page.Commands[1].Border, page.Commands[2].Border, page.Commands[3].Border, page.Commands[4].Border
	assert.Equal(t, backend.Rect{Width: 800, Height: 2}, top.Strip)
	assert.True(t, top.Horizontal)
	assert.Equal(t, backend.Rect{X: 798, Y: 2, Width: 2, Height: 16}, right.Strip)
	assert.False(t, right.Horizontal)
	assert.Equal(t, backend.Rect{Y: 18, Width: 800, Height: 2}, bottom.Strip)
	assert.Equal(t, backend.Rect{Y: 2, Width: 2, Height: 16}, left.Strip)
	assert.Equal(t, blue, left.Color)
	assert.Equal(t, backend.Solid, left.Style)

	txt := page.Commands[5].Text
	assert.Equal(t, "text", txt.Text())
	assert.Equal(t, black, txt.Color)
	assert.Equal(t, backend.Fl(2), txt.X)
	assert.Equal(t, backend.Fl(64), txt.Advance())
	assert.Greater(t, txt.Y, backend.Fl(2)) // on the baseline
	assert.Less(t, txt.Y, backend.Fl(18))
}

func TestBorderStyles(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div></div>`,
		`div { height: 10px; border-width: 3px; border-style: dashed none double hidden; border-color: red }`)
	page := frame.List.Pages[0]
	var styles []backend.LineStyle
	for _, c := range page.Commands {
		if c.Op == backend.OpBorder {
			styles = append(styles, c.Border.Style)
		}
	}
	// none and hidden borders have a null width
	tu.AssertEqual(t, styles, []backend.LineStyle{backend.Dashed, backend.Double})
}

func TestCanvasBackground(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<p>a</p>`, "body { background-color: red; height: 100px }")
	page := frame.List.Pages[0]
	var fills []backend.Command
	for _, c := range page.Commands {
		if c.Op == backend.OpFillRect {
			fills = append(fills, c)
		}
	}
	// the body background is propagated to the whole page, and not painted twice
	require.Len(t, fills, 1)
	assert.Equal(t, backend.Rect{Width: page.Width, Height: page.Height}, fills[0].Rect)
	assert.Equal(t, red, fills[0].Color)
	assert.Equal(t, backend.Fl(800), page.Width)
	assert.Equal(t, backend.Fl(600), page.Height)
}

func TestVisibilityHidden(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div>a</div><p>b</p>`,
		"div { visibility: hidden; background-color: red; border: 1px solid red }")
	page := frame.List.Pages[0]
	tu.AssertEqual(t, ops(page), []backend.Op{backend.OpText})
	tu.AssertEqual(t, texts(page), []string{"b"})

	// the hidden box still takes its place
	txt := page.Commands[0].Text
	assert.Greater(t, txt.Y, backend.Fl(18))
}

func TestOverflowClip(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div>text text</div>`,
		"div { overflow: hidden; width: 50px; height: 20px; padding: 2px; border: 1px solid red }")
	require.NoError(t, frame.List.Validate())
	page := frame.List.Pages[0]
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpPushStackingContext,
		backend.OpBorder, backend.OpBorder, backend.OpBorder, backend.OpBorder,
		backend.OpPushClip,
		backend.OpText, backend.OpText,
		backend.OpPopClip,
		backend.OpPopStackingContext,
	})
	// border box, then padding box
	assert.Equal(t, backend.Rect{Width: 56, Height: 26}, page.Commands[0].Rect)
	assert.Equal(t, backend.Rect{X: 1, Y: 1, Width: 54, Height: 24}, page.Commands[5].Rect)
}

func TestOpacity(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div id=half>a</div><div id=none>b</div>`,
		"#half { opacity: 0.5 } #none { opacity: 0 }")
	require.NoError(t, frame.List.Validate())
	page := frame.List.Pages[0]
	// the invisible context is skipped
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpPushStackingContext,
		backend.OpPushOpacity, backend.OpText, backend.OpPopOpacity,
		backend.OpPopStackingContext,
	})
	assert.Equal(t, backend.Fl(0.5), page.Commands[1].Alpha)
	assert.Equal(t, int32(fragmentOf(t, frame, "half")), page.Commands[1].Source)
	assert.Equal(t, page.Commands[0].Source, page.Commands[4].Source)
}

func TestTransforms(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div id=translate></div><div id=rotate></div><div id=flat></div>`,
		`div { width: 100px; height: 100px }
		#translate { transform: translate(10px, 50%) }
		#rotate { transform: rotate(90deg) }
		#flat { transform: scale(0); background-color: red }`)
	require.NoError(t, frame.List.Validate())
	page := frame.List.Pages[0]
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpPushStackingContext, backend.OpPushTransform, backend.OpPopTransform, backend.OpPopStackingContext,
		backend.OpPushStackingContext, backend.OpPushTransform, backend.OpPopTransform, backend.OpPopStackingContext,
	})

	mt := page.Commands[1].Transform
	assert.Equal(t, backend.Fl(10), mt.E)
	assert.Equal(t, backend.Fl(50), mt.F)
	assert.Equal(t, backend.Fl(1), mt.A)

	// around the center of the second div, at y = 100
	mt = page.Commands[5].Transform
	x, y := mt.Apply(0, 100)
	assert.InDelta(t, 100, x, 1e-3)
	assert.InDelta(t, 100, y, 1e-3)
	x, y = mt.Apply(50, 150)
	assert.InDelta(t, 50, x, 1e-3)
	assert.InDelta(t, 150, y, 1e-3)
}

func TestFilters(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div id=filtered>a</div><div id=plain>b</div>`,
		"#filtered { filter: blur(1em) grayscale(50%); opacity: 0.5 }")
	require.NoError(t, frame.List.Validate())
	page := frame.List.Pages[0]
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpPushStackingContext, backend.OpPushOpacity, backend.OpPushFilter,
		backend.OpText,
		backend.OpPopFilter, backend.OpPopOpacity, backend.OpPopStackingContext,
		backend.OpText,
	})
	tu.AssertEqual(t, page.Commands[2].Filters, pr.Filters{
		{Name: "blur", Amount: pr.NewDim(16, pr.Px)},
		{Name: "grayscale", Amount: pr.NewDim(0.5, pr.Scalar)},
	})
	tu.AssertEqual(t, texts(page), []string{"a", "b"})

	var buf bytes.Buffer
	frame.List.Replay(tracer.NewDrawer(&buf))
	assert.Contains(t, buf.String(), "PushFilter : blur(16px) grayscale(0.5)")
	assert.Contains(t, buf.String(), "PopStackingContext")
}

func TestNestedStackingContexts(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div id=outer><div id=inner>a</div></div>`,
		"#outer { position: relative; z-index: 1 } #inner { position: relative; z-index: 2 }")
	require.NoError(t, frame.List.Validate())
	page := frame.List.Pages[0]
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpPushStackingContext, backend.OpPushStackingContext,
		backend.OpText,
		backend.OpPopStackingContext, backend.OpPopStackingContext,
	})
	assert.Equal(t, int32(fragmentOf(t, frame, "outer")), page.Commands[0].Source)
	assert.Equal(t, int32(fragmentOf(t, frame, "inner")), page.Commands[1].Source)
}

func TestPaintParallelism(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	assert.Equal(t, 1, paintParallelism(1, 100000))
	assert.Equal(t, 1, paintParallelism(50, 2*paintGrain-1)) // many small pages
	assert.Equal(t, min(procs, 2), paintParallelism(50, 2*paintGrain))
	assert.Equal(t, min(procs, 3), paintParallelism(3, 100*paintGrain))
}

func TestZIndexPainting(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `
		<div style="position: absolute; z-index: 2">a</div>
		<div style="position: absolute; z-index: 1">b</div>
		<div style="position: absolute; z-index: -1">c</div>
		<p>d</p>
		<div style="position: relative">e</div>
		<div style="float: left">f</div>
		<p>g</p>`)
	page := frame.List.Pages[0]
	// negative contexts, in-flow inline content (after floats),
	// positioned boxes in tree order, positive contexts
	tu.AssertEqual(t, texts(page), []string{"c", "f", "d", "g", "e", "b", "a"})
}

func TestInlineContent(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<p>ab <span>cd</span> <em>ef</em></p>`,
		"p { margin: 0 } span { background-color: blue } em { position: relative }")
	page := frame.List.Pages[0]
	tu.AssertEqual(t, texts(page), []string{"ab ", "cd", " ", "ef"})
	// the span background is painted with the line
	tu.AssertEqual(t, ops(page), []backend.Op{
		backend.OpText, backend.OpFillRect, backend.OpText, backend.OpText, backend.OpText,
	})
	assert.Equal(t, backend.Rect{X: 48, Width: 32, Height: 16}, page.Commands[1].Rect)
}

func TestAnchors(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<div id=top style="height: 4px"></div><p id=second style="margin: 10px 5px">x</p><span id=inline>a</span>`)
	tu.AssertEqual(t, frame.List.Pages[0].Anchors, []backend.Anchor{
		{Name: "top", X: 0, Y: 0},
		{Name: "second", X: 5, Y: 14},
		{Name: "inline", X: 0, Y: 40},
	})
}

func TestPaginatedDisplayList(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	cfg := config.NewDefaultConfig()
	cfg.Layout.Paginate = true
	p, _ := newTestPipeline(t, cfg, Options{}, `
		<div id=first style="height: 80px">a</div>
		<div id=second style="height: 50px; break-inside: avoid">b</div>`,
		"@page { size: 200px 100px; margin: 0 }")
	frame, err := p.Render(context.Background())
	require.NoError(t, err)
	require.NoError(t, frame.List.Validate())

	require.Len(t, frame.List.Pages, 2)
	for _, page := range frame.List.Pages {
		assert.Equal(t, backend.Fl(200), page.Width)
		assert.Equal(t, backend.Fl(100), page.Height)
	}
	tu.AssertEqual(t, texts(frame.List.Pages[0]), []string{"a"})
	tu.AssertEqual(t, texts(frame.List.Pages[1]), []string{"b"})
	// page coordinates
	assert.Less(t, frame.List.Pages[1].Commands[0].Text.Y, backend.Fl(16))
	tu.AssertEqual(t, frame.List.Pages[1].Anchors, []backend.Anchor{{Name: "second"}})

	var buf bytes.Buffer
	frame.List.Replay(tracer.NewDrawer(&buf))
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "AddPage : 200.00 100.00"))
	assert.Contains(t, out, "CreateAnchors : 2")
	assert.Contains(t, out, `DrawText : `)
}

func TestDisplayListIsDeterministic(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	const content = `<div style="position: relative; z-index: 1; opacity: 0.5">
		<p style="float: right; width: 20px">f</p>
		<p>lorem ipsum <span style="display: inline-block; overflow: hidden">dolor</span></p>
	</div>
	<table><tr><td>a</td><td style="background-color: red">b</td></tr></table>`

	var dumps []string
	for range 3 {
		frame := renderFrame(t, content)
		require.NoError(t, frame.List.Validate())
		var buf bytes.Buffer
		require.NoError(t, frame.List.Dump(&buf))
		dumps = append(dumps, buf.String())
	}
	assert.Equal(t, dumps[0], dumps[1])
	assert.Equal(t, dumps[0], dumps[2])
	assert.Contains(t, dumps[0], "PushOpacity 0.5")
}
