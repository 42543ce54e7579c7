package layout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/vformat/config"
	pr "github.com/benoitkugler/vformat/css/properties"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

//  Tests for grid layout.

func TestGridFlexibleTracks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="g" style="display: grid; width: 400px; grid-template-columns: 100px 1fr 2fr">
			<div id="a"></div><div id="b"></div><div id="c"></div>
		</div>
	`)
	tu.AssertEqual(t, widths(l, "a", "b", "c"), []Fl{100, 100, 200})
	tu.AssertEqual(t, xs(l, "a", "b", "c"), []Fl{0, 100, 200})
	assert.Equal(t, Fl(0), l.frag("g").Height)
}

func TestGridAutoPlacementAndGaps(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="g" style="display: grid; grid-template-columns: 50px 50px; column-gap: 10px; row-gap: 5px">
			<div id="a" style="height: 20px"></div>
			<div id="b"></div>
			<div id="c" style="height: 10px"></div>
		</div>
	`)
	a, b, c := l.frag("a"), l.frag("b"), l.frag("c")
	assert.Equal(t, Fl(60), b.AbsX)
	assert.Equal(t, Fl(0), b.AbsY)
	// b is stretched to the height of its row
	assert.Equal(t, a.Height, b.Height)
	assert.Equal(t, Fl(0), c.AbsX)
	assert.Equal(t, Fl(25), c.AbsY)
	assert.Equal(t, Fl(35), l.frag("g").Height)
}

func TestGridExplicitPlacement(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div style="display: grid; width: 300px; grid-template-columns: 1fr 1fr 1fr">
			<div id="wide" style="grid-column: 2 / 4; height: 10px"></div>
			<div id="first" style="grid-column: 1; grid-row: 2; height: 10px"></div>
			<div id="auto" style="height: 10px"></div>
		</div>
	`)
	wide := l.frag("wide")
	assert.Equal(t, Fl(100), wide.AbsX)
	assert.Equal(t, Fl(200), wide.Width)
	first := l.frag("first")
	assert.Equal(t, Fl(0), first.AbsX)
	assert.Equal(t, Fl(10), first.AbsY)
	// sparse packing: the cursor does not go back to the first row
	auto := l.frag("auto")
	assert.Equal(t, Fl(100), auto.AbsX)
	assert.Equal(t, Fl(10), auto.AbsY)
}

func TestGridAlignSelf(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div style="display: grid; grid-template-columns: 50px 50px 50px">
			<div style="height: 40px"></div>
			<div id="center" style="height: 10px; align-self: center"></div>
			<div id="end" style="height: 10px; align-self: end"></div>
		</div>
	`)
	assert.Equal(t, Fl(15), l.frag("center").AbsY)
	assert.Equal(t, Fl(30), l.frag("end").AbsY)
}

func TestGridContentSizedColumns(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div style="display: grid; width: 200px; grid-template-columns: auto 1fr">
			<div id="a">ab</div><div id="b"></div>
		</div>
	`)
	tu.AssertEqual(t, widths(l, "a", "b"), []Fl{32, 168})
}

func TestGridPlacementLimits(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="g" style="display: grid; width: 100px">
			<div id="a" style="grid-column: span 1000000000; grid-row: 2000000000; height: 10px"></div>
			<div id="b" style="grid-row: -2000000000; height: 10px"></div>
		</div>
	`)
	// a is clamped to the last row, spanning every column
	a, b := l.frag("a"), l.frag("b")
	assert.Equal(t, Fl(0), b.AbsY)
	assert.Equal(t, Fl(10), a.AbsY)
	assert.LessOrEqual(t, a.Width, Fl(100))
	assert.Equal(t, Fl(20), l.frag("g").Height)
}

func TestGridSpanClamping(t *testing.T) {
	for _, test := range []struct {
		start, end pr.GridLine
		explicit   int
		line, span int
		placed     bool
	}{
		{pr.GridLine{Line: 2}, pr.GridLine{Line: 4}, 3, 1, 2, true},
		{pr.GridLine{Line: 1 << 30}, pr.GridLine{Auto: true}, 0, pr.MaxGridLines - 1, 1, true},
		{pr.GridLine{Line: 1}, pr.GridLine{Span: 1 << 30}, 0, 0, pr.MaxGridLines, true},
		{pr.GridLine{Line: -(1 << 30)}, pr.GridLine{Auto: true}, 5, 0, 1, true},
		{pr.GridLine{Span: 1 << 30}, pr.GridLine{Auto: true}, 0, 0, pr.MaxGridLines, false},
	} {
		line, span, placed := gridSpan(test.start, test.end, test.explicit)
		assert.Equal(t, test.line, line, test.start)
		assert.Equal(t, test.span, span, test.start)
		assert.Equal(t, test.placed, placed, test.start)
	}
}

func TestGridPlacementBudget(t *testing.T) {
	var items strings.Builder
	for range 200 {
		items.WriteString(`<div style="grid-column: span 1000"></div>`)
	}
	bt := buildBoxes(t, `<div style="display: grid">`+items.String()+`</div>`)
	opts := Options{Config: config.LayoutConfig{MaxSteps: 100}}
	_, err := Layout(context.Background(), bt, bt.Root, NewConstraintSpace(800, 600), opts)
	assert.True(t, errors.Is(err, ErrBudgetExceeded))
}
