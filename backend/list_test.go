package backend

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/text"
)

var red = pr.RGBA{R: 1, A: 1}

func sampleList() *List {
	return &List{Pages: []Page{{
		Width: 100, Height: 50,
		Commands: []Command{
			{Op: OpFillRect, Rect: Rect{Width: 100, Height: 50}, Color: red, Source: 1},
			{Op: OpPushOpacity, Alpha: 0.5},
			{Op: OpPushClip, Rect: Rect{X: 10, Y: 10, Width: 20, Height: 20}},
			{Op: OpText, Text: TextDrawing{X: 10, Y: 22, Runs: []TextRun{{Glyphs: []TextGlyph{{'a', 8}, {'b', 8}}}}}},
			{Op: OpPopClip},
			{Op: OpPopOpacity},
			{Op: OpPushStackingContext, Rect: Rect{Width: 100, Height: 2}},
			{Op: OpPushTransform, Transform: matrix.Translation(5, 5)},
			{Op: OpPushFilter, Filters: pr.Filters{{Name: "grayscale", Amount: pr.NewDim(1, pr.Scalar)}}},
			{Op: OpBorder, Border: Border{Strip: Rect{Width: 100, Height: 2}, Horizontal: true, Style: Dashed, Color: red}},
			{Op: OpPopFilter},
			{Op: OpPopTransform},
			{Op: OpPopStackingContext},
		},
		Anchors: []Anchor{{Name: "top"}},
	}}}
}

func TestValidate(t *testing.T) {
	l := sampleList()
	assert.NoError(t, l.Validate())
	assert.Equal(t, 13, l.Len())

	for _, test := range []struct {
		commands []Command
		errors   int
	}{
		{[]Command{{Op: OpPopClip}}, 1},
		{[]Command{{Op: OpPushClip}}, 1},
		{[]Command{{Op: OpPushClip}, {Op: OpPushOpacity, Alpha: 1}}, 2},
		{[]Command{{Op: OpPushClip}, {Op: OpPopOpacity}}, 1},
		{[]Command{{Op: OpFillRect, Rect: Rect{Width: Fl(math.Inf(1))}}}, 1},
		{[]Command{{Op: OpText, Text: TextDrawing{Y: Fl(math.NaN())}}}, 1},
		{[]Command{{Op: OpPushOpacity, Alpha: 2}, {Op: OpPopOpacity}}, 1},
		{[]Command{{Op: OpPushTransform, Transform: matrix.Scaling(0, 1)}, {Op: OpPopTransform}}, 1},
		{[]Command{{Op: OpPushFilter}, {Op: OpPopFilter}}, 1},
		{[]Command{{Op: OpPushFilter, Filters: pr.Filters{
			{Name: "blur", Amount: pr.NewDim(-1, pr.Px)},
			{Name: "opacity", Amount: pr.NewDim(Fl(math.NaN()), pr.Scalar)},
		}}, {Op: OpPopFilter}}, 2},
		{[]Command{{Op: OpPushStackingContext}, {Op: OpPushFilter, Filters: pr.Filters{{Name: "blur"}}}, {Op: OpPopStackingContext}}, 2},
		{[]Command{{Op: OpPushStackingContext, Rect: Rect{Height: Fl(math.Inf(-1))}}, {Op: OpPopStackingContext}}, 1},
	} {
		l := &List{Pages: []Page{{Commands: test.commands}}}
		err := l.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformed))
		assert.Len(t, multierr.Errors(err), test.errors, test.commands)
	}
}

type recorder struct {
	ops     []string
	anchors [][]Anchor
}

func (r *recorder) AddPage(width, height Fl) Replayer {
	r.ops = append(r.ops, "page")
	return r
}
func (r *recorder) CreateAnchors(anchors [][]Anchor) { r.anchors = anchors }
func (r *recorder) FillRect(Rect, pr.RGBA)           { r.ops = append(r.ops, "fill") }
func (r *recorder) StrokeBorder(Border)              { r.ops = append(r.ops, "border") }
func (r *recorder) DrawText(TextDrawing)             { r.ops = append(r.ops, "text") }
func (r *recorder) DrawImage(*images.Image, Rect)    { r.ops = append(r.ops, "image") }
func (r *recorder) PushClip(Rect)                    { r.ops = append(r.ops, "clip") }
func (r *recorder) PopClip()                         { r.ops = append(r.ops, "/clip") }
func (r *recorder) PushTransform(matrix.Transform)   { r.ops = append(r.ops, "transform") }
func (r *recorder) PopTransform()                    { r.ops = append(r.ops, "/transform") }
func (r *recorder) PushOpacity(Fl)                   { r.ops = append(r.ops, "opacity") }
func (r *recorder) PopOpacity()                      { r.ops = append(r.ops, "/opacity") }
func (r *recorder) PushFilter(pr.Filters)            { r.ops = append(r.ops, "filter") }
func (r *recorder) PopFilter()                       { r.ops = append(r.ops, "/filter") }
func (r *recorder) PushStackingContext(Rect)         { r.ops = append(r.ops, "context") }
func (r *recorder) PopStackingContext()              { r.ops = append(r.ops, "/context") }

func TestReplay(t *testing.T) {
	var r recorder
	sampleList().Replay(&r)
	assert.Equal(t, []string{
		"page", "fill", "opacity", "clip", "text", "/clip", "/opacity",
		"context", "transform", "filter", "border", "/filter", "/transform", "/context",
	}, r.ops)
	assert.Equal(t, [][]Anchor{{{Name: "top"}}}, r.anchors)
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleList().Dump(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"page 0: 100 x 50",
		"  FillRect (0, 0, 100, 50) rgba(1,0,0,1)",
		"  PushOpacity 0.5",
		"    PushClip (10, 10, 20, 20)",
		`      Text (10, 22) "ab" rgba(0,0,0,0)`,
		"    PopClip",
		"  PopOpacity",
		"  PushStackingContext (0, 0, 100, 2)",
		"    PushTransform [1 0 0 1 5 5]",
		"      PushFilter grayscale(1)",
		"        Border (0, 0, 100, 2) dashed rgba(1,0,0,1)",
		"      PopFilter",
		"    PopTransform",
		"  PopStackingContext",
	}, lines)
}

func TestNewLineStyle(t *testing.T) {
	for _, test := range []struct {
		k     pr.Keyword
		style LineStyle
		ok    bool
	}{
		{kw.None, 0, false},
		{kw.Hidden, 0, false},
		{kw.Solid, Solid, true},
		{kw.Dashed, Dashed, true},
		{kw.Dotted, Dotted, true},
		{kw.Double, Double, true},
		{kw.Groove, Solid, true},
	} {
		style, ok := NewLineStyle(test.k)
		assert.Equal(t, test.ok, ok, test.k)
		if ok {
			assert.Equal(t, test.style, style, test.k)
		}
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	assert.Equal(t, Rect{X: 5, Y: 5, Width: 5, Height: 5}, a.Intersect(Rect{X: 5, Y: 5, Width: 10, Height: 10}))
	assert.True(t, a.Intersect(Rect{X: 20, Width: 1, Height: 1}).IsEmpty())
}

func TestNewTextRun(t *testing.T) {
	ts := &text.TextStyle{LetterSpacing: 1, WordSpacing: 4}
	ts.Size = 10
	run := NewTextRun(text.FixedMeasurer{}, ts, "a b")
	require.Len(t, run.Glyphs, 3)
	assert.Equal(t, Fl(11), run.Glyphs[0].XAdvance)
	assert.Equal(t, Fl(15), run.Glyphs[1].XAdvance)
	td := TextDrawing{Runs: []TextRun{run}}
	assert.Equal(t, "a b", td.Text())
	assert.Equal(t, Fl(37), td.Advance())
}
