package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/html/fragments"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

//  Tests for multi-column layout.

func TestColumnsBalanced(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="mc" style="columns: 2; column-gap: 20px; width: 220px">
			<div id="a" style="height: 50px"></div>
			<div id="b" style="height: 50px"></div>
		</div>
		<div id="after" style="height: 10px"></div>
	`)
	mc := l.frag("mc")
	require.Len(t, mc.Children, 2)
	for i, c := range mc.Children {
		col := l.frags.Fragment(c)
		assert.Equal(t, fragments.ColumnK, col.Kind)
		assert.Equal(t, i, col.Index)
		assert.Equal(t, Fl(100), col.Width)
	}
	assert.InDelta(t, 50, mc.Height, 0.5)
	a, b := l.frag("a"), l.frag("b")
	assert.Equal(t, Fl(0), a.AbsX)
	assert.Equal(t, Fl(120), b.AbsX)
	assert.Equal(t, Fl(0), b.AbsY)
	assert.Equal(t, mc.Height, l.frag("after").AbsY)
}

func TestColumnsSplitContent(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="mc" style="column-count: 3; column-gap: 0; width: 300px">
			<div id="a" style="height: 90px"></div>
		</div>
	`)
	// the block is fragmented across the columns
	parts := l.fragsOf("a")
	require.Len(t, parts, 3)
	for i, p := range parts {
		assert.InDelta(t, 30, p.Height, 0.5)
		assert.Equal(t, Fl(100*i), p.AbsX)
		assert.Equal(t, i, p.Index)
	}
}

func TestColumnsWidth(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, test := range []struct {
		style string
		count int
		width Fl
	}{
		{"column-width: 100px; column-gap: 0", 4, 100},
		{"column-width: 150px; column-gap: 10px", 2, 195},
		{"columns: 3 100px; column-gap: 0", 3, 400.0 / 3},
	} {
		l := render(t, `<div id="mc" style="width: 400px; `+test.style+`"><div style="height: 1px"></div></div>`)
		count, width, _ := usedColumns(l.boxes.Box(l.box("mc")).Style, 400)
		assert.Equal(t, test.count, count, test.style)
		assert.InDelta(t, test.width, width, 1e-6, test.style)
	}
}

func TestColumnsNormalGap(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	// a normal gap is 1em
	l := render(t, `<div id="mc" style="columns: 2; width: 216px"><div style="height: 1px"></div></div>`)
	_, width, gap := usedColumns(l.boxes.Box(l.box("mc")).Style, 216)
	assert.Equal(t, Fl(16), gap)
	assert.Equal(t, Fl(100), width)
}
