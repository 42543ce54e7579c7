package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tu "github.com/benoitkugler/vformat/utils/testutils"
)

//  Tests for table layout.

const tableSheet = "table { border-spacing: 0 } td, th { padding: 0 }"

func TestTableAutoLayout(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table id="t"><tr><td id="a">a</td><td id="b">bbb</td></tr></table>
		<table id="w" style="width: 200px"><tr><td id="c">a</td><td id="d">bbb</td></tr></table>
	`, tableSheet)
	// shrink to fit
	assert.Equal(t, Fl(64), l.frag("t").Width)
	tu.AssertEqual(t, widths(l, "a", "b"), []Fl{16, 48})
	tu.AssertEqual(t, xs(l, "a", "b"), []Fl{0, 16})

	// the extra width is distributed in proportion to the max widths
	assert.Equal(t, Fl(200), l.frag("w").Width)
	tu.AssertEqual(t, widths(l, "c", "d"), []Fl{50, 150})
}

func TestTableFixedLayout(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table style="table-layout: fixed; width: 200px">
			<tr><td id="a" style="width: 50px">aaaaaaaa</td><td id="b"></td><td id="c"></td></tr>
			<tr><td id="d" style="width: 150px"></td><td></td><td></td></tr>
		</table>
	`, tableSheet)
	// only the first row is used
	tu.AssertEqual(t, widths(l, "a", "b", "c", "d"), []Fl{50, 75, 75, 50})
}

func TestTableSpacingAndRows(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table id="t" style="border-spacing: 10px 5px">
			<tr><td id="a">a</td><td id="b">bbb</td></tr>
			<tr><td id="c" style="height: 30px">c</td><td id="d">d</td></tr>
		</table>
	`, "td { padding: 0 }")
	assert.Equal(t, Fl(16+48+30), l.frag("t").Width)
	tu.AssertEqual(t, xs(l, "a", "b"), []Fl{10, 36})
	assert.Equal(t, Fl(5), l.frag("a").AbsY)
	assert.Equal(t, Fl(5+16+5), l.frag("c").AbsY)
	// cells are stretched to their row
	assert.Equal(t, Fl(30), l.frag("d").Height)
	assert.Equal(t, Fl(5+16+5+30+5), l.frag("t").Height)
}

func TestTableSpans(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table>
			<tr><td id="span" colspan="2">aaaa</td><td id="tall" rowspan="2" style="vertical-align: top">t</td></tr>
			<tr><td id="a">a</td><td id="b">b</td></tr>
		</table>
	`, tableSheet)
	span, a, b := l.frag("span"), l.frag("a"), l.frag("b")
	assert.Equal(t, a.Width+b.Width, span.Width)
	assert.Equal(t, Fl(64), span.Width)
	assert.Equal(t, Fl(32), l.frag("tall").Height)
	assert.Equal(t, span.Width, l.frag("tall").AbsX)
}

func TestTableVerticalAlign(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table><tr>
			<td style="height: 48px"></td>
			<td style="vertical-align: top"><span id="top">a</span></td>
			<td style="vertical-align: middle"><span id="middle">a</span></td>
			<td style="vertical-align: bottom"><span id="bottom">a</span></td>
		</tr></table>
	`, tableSheet)
	assert.Equal(t, Fl(0), l.frag("top").AbsY)
	assert.Equal(t, Fl(16), l.frag("middle").AbsY)
	assert.Equal(t, Fl(32), l.frag("bottom").AbsY)
}

func TestTableCollapsedBorders(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table id="t" style="border-collapse: collapse; border: 4px solid">
			<tr><td style="border: 2px solid; width: 20px"></td><td style="border: 6px solid; width: 20px"></td></tr>
		</table>
	`, tableSheet)
	tf := l.frag("t")
	// half of the widest border on each side
	assert.Equal(t, Fl(3), tf.Border[0])
	assert.Equal(t, Fl(3), tf.Border[1])
	assert.Equal(t, Fl(3), tf.Border[2])
	assert.Equal(t, Fl(2), tf.Border[3])
}

func TestTableCaption(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<table id="t"><caption id="cap">c</caption><tr><td>a</td></tr></table>
	`, tableSheet)
	cap, tf := l.frag("cap"), l.frag("t")
	assert.Equal(t, Fl(0), cap.AbsY)
	assert.Equal(t, Fl(16), tf.AbsY)
	assert.Equal(t, Fl(16), tf.Height)
}

func TestTableHeaderRepeated(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := paginate(t, Page{Width: 200, Height: 100}, `
		<table>
			<thead><tr><td id="h">H</td></tr></thead>
			<tr><td id="r1">1</td></tr><tr><td>2</td></tr><tr><td>3</td></tr>
			<tr><td>4</td></tr><tr><td id="r5">5</td></tr><tr><td id="r6">6</td></tr>
		</table>
	`, tableSheet, "td { height: 20px }")
	require.Len(t, l.frags.Pages(), 2)
	headers := l.fragsOf("h")
	require.Len(t, headers, 2)
	assert.Equal(t, 0, l.pageOf(headers[0]))
	assert.Equal(t, 1, l.pageOf(headers[1]))
	// the header comes first on each page
	assert.Less(t, headers[1].AbsY, l.frag("r5").AbsY)
	assert.Equal(t, 1, l.pageOf(l.frag("r5")))
	assert.Equal(t, 0, l.pageOf(l.frag("r1")))
}
