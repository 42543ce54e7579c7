package layout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/config"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/fragments"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

//  Tests for pagination.

// pageOf returns the index of the page containing [f].
func (l laidOut) pageOf(f *fragments.Fragment) int {
	l.t.Helper()
	for f.Parent != fragments.NoFragment {
		parent := l.frags.Fragment(f.Parent)
		if parent.Kind == fragments.PageK {
			return parent.Index
		}
		f = parent
	}
	l.t.Fatal("fragment outside of a page")
	return -1
}

func TestPageFromDescriptors(t *testing.T) {
	page := PageFromDescriptors(validation.PageDescriptors{}, 800, 600)
	assert.Equal(t, Page{Width: 800, Height: 600, Margin: fragments.Sides{75, 75, 75, 75}}, page)
	w, h := page.Area()
	assert.Equal(t, Fl(650), w)
	assert.Equal(t, Fl(450), h)

	var pd validation.PageDescriptors
	pd.Size = pr.Point{{Value: 1, Unit: pr.In}, {Value: 2, Unit: pr.In}}
	pd.Margin[pr.STop] = pr.Value{Dimension: pr.Dimension{Value: 10, Unit: pr.Perc}}
	pd.Margin[pr.SLeft] = pr.FToV(5)
	pd.Margin[pr.SRight] = pr.SToV("auto")
	page = PageFromDescriptors(pd, 800, 600)
	assert.Equal(t, Fl(96), page.Width)
	assert.Equal(t, Fl(192), page.Height)
	// percentages refer to the width of the page
	assert.InDelta(t, 9.6, page.Margin[pr.STop], 1e-6)
	assert.Equal(t, Fl(75), page.Margin[pr.SRight])
	assert.Equal(t, Fl(5), page.Margin[pr.SLeft])
}

func TestPaginateBlocks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := paginate(t, Page{Width: 200, Height: 100}, `
		<body id="body">
			<div id="a" style="height: 30px"></div>
			<div id="b" style="height: 30px"></div>
			<div id="c" style="height: 30px"></div>
			<div id="d" style="height: 30px"></div>
			<div id="e" style="height: 30px"></div>
		</body>
	`)
	pages := l.frags.Pages()
	require.Len(t, pages, 2)
	for i, p := range pages {
		page := l.frags.Fragment(p)
		assert.Equal(t, fragments.PageK, page.Kind)
		assert.Equal(t, i, page.Index)
		assert.Equal(t, Fl(200), page.Width)
		assert.Equal(t, Fl(100), page.Height)
	}
	assert.Equal(t, 0, l.pageOf(l.frag("c")))
	assert.Equal(t, 1, l.pageOf(l.frag("d")))

	// the content height is conserved across the fragments
	body := l.fragsOf("body")
	require.Len(t, body, 2)
	assert.Equal(t, Fl(90), body[0].Height)
	assert.Equal(t, Fl(60), body[1].Height)
	assert.True(t, body[0].SkipEnd)
	assert.True(t, body[1].SkipStart)
	assert.Equal(t, 1, body[1].Index)
}

func TestPaginateFixedHeight(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := paginate(t, Page{Width: 200, Height: 100}, `<div id="a" style="height: 250px"></div>`)
	require.Len(t, l.frags.Pages(), 3)
	var heights []Fl
	for _, f := range l.fragsOf("a") {
		heights = append(heights, f.Height)
	}
	tu.AssertEqual(t, heights, []Fl{100, 100, 50})
}

func TestPaginateForcedBreaks(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := paginate(t, Page{Width: 200, Height: 100}, `
		<div id="a" style="height: 10px"></div>
		<div id="b" style="height: 10px; break-before: page"></div>
		<div id="c" style="height: 10px; break-after: page"></div>
		<div id="d" style="height: 10px"></div>
	`)
	require.Len(t, l.frags.Pages(), 3)
	assert.Equal(t, 0, l.pageOf(l.frag("a")))
	assert.Equal(t, 1, l.pageOf(l.frag("b")))
	assert.Equal(t, 1, l.pageOf(l.frag("c")))
	assert.Equal(t, 2, l.pageOf(l.frag("d")))
	// pages are stacked
	assert.Equal(t, Fl(100), l.frags.Fragment(l.frags.Pages()[1]).AbsY)
}

func TestPaginateAvoidBreakInside(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := paginate(t, Page{Width: 200, Height: 100}, `
		<div id="a" style="height: 60px"></div>
		<div id="b" style="break-inside: avoid"><div style="height: 30px"></div><div style="height: 30px"></div></div>
	`)
	require.Len(t, l.frags.Pages(), 2)
	// b is moved to the next page instead of being split
	assert.Equal(t, 1, l.pageOf(l.frag("b")))
	assert.Equal(t, Fl(60), l.frag("b").Height)
}

func TestPaginateMargins(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	page := Page{Width: 200, Height: 100, Margin: fragments.Sides{10, 10, 10, 10}}
	l := paginate(t, page, `<div id="a" style="height: 100px"></div>`)
	frags := l.fragsOf("a")
	require.Len(t, frags, 2)
	assert.Equal(t, Fl(80), frags[0].Height)
	assert.Equal(t, Fl(10), frags[0].AbsX)
	assert.Equal(t, Fl(10), frags[0].AbsY)
	assert.Equal(t, Fl(180), frags[0].Width)
	assert.Equal(t, Fl(20), frags[1].Height)
	assert.Equal(t, Fl(110), frags[1].AbsY)
}

func TestPaginateFragmentLimit(t *testing.T) {
	bt := buildBoxes(t, `<div style="height: 1000px"></div>`)
	opts := Options{Config: config.LayoutConfig{MaxFragments: 3}}
	_, err := Paginate(context.Background(), bt, bt.Root, Page{Width: 100, Height: 100}, opts)
	assert.True(t, errors.Is(err, ErrFragmentLimit))
}

func TestPaginateColumns(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	// the columns are filled up to the page height, then continue on the next page
	l := paginate(t, Page{Width: 220, Height: 100}, `
		<div id="mc" style="columns: 2; column-gap: 20px">
			<div style="height: 150px"></div><div style="height: 150px"></div>
		</div>
	`)
	require.Len(t, l.frags.Pages(), 2)
	mc := l.fragsOf("mc")
	require.Len(t, mc, 2)
	assert.Equal(t, Fl(100), mc[0].Height)
	assert.Len(t, mc[0].Children, 2)
	// the rest is balanced
	assert.InDelta(t, 50, mc[1].Height, 0.5)
}

// boxFrags returns the box fragments of the element with the
// given id, without its line boxes.
func (l laidOut) boxFrags(id string) []*fragments.Fragment {
	var out []*fragments.Fragment
	for _, f := range l.fragsOf(id) {
		if f.Kind == fragments.BoxK {
			out = append(out, f)
		}
	}
	return out
}

// texts returns the text runs of the tree, in order.
func texts(frags *fragments.Tree) []string {
	var out []string
	frags.Walk(frags.Root, func(id fragments.FragmentID) bool {
		if f := frags.Fragment(id); f.Kind == fragments.TextK {
			out = append(out, f.Text)
		}
		return true
	})
	return out
}

// words returns a paragraph of [n] one letter words, one per line.
func words(id string, n int) string {
	letters := make([]string, n)
	for i := range letters {
		letters[i] = string(rune('a' + i%26))
	}
	return `<p id="` + id + `" style="margin: 0; width: 16px">` + strings.Join(letters, " ") + `</p>`
}

func TestPaginateLines(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	content := words("p", 20)
	l := paginate(t, Page{Width: 200, Height: 100}, content)
	// 6 lines of 16px per page
	require.Len(t, l.frags.Pages(), 4)
	var lines []int
	for i, f := range l.boxFrags("p") {
		assert.Equal(t, i, l.pageOf(f))
		assert.Equal(t, i, f.Index)
		lines = append(lines, len(f.Children))
	}
	tu.AssertEqual(t, lines, []int{6, 6, 6, 2})

	// no text is lost or duplicated at the breaks
	continuous := render(t, content)
	tu.AssertEqual(t, texts(l.frags), texts(continuous.frags))
}

func TestPaginateFixedHeightWithBrokenContent(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	content := `<div id="d" style="height: 500px">` + words("p", 20) + `</div>`
	l := paginate(t, Page{Width: 200, Height: 100}, content)
	require.Len(t, l.frags.Pages(), 5)
	var heights []Fl
	for i, f := range l.boxFrags("d") {
		assert.Equal(t, i, l.pageOf(f))
		heights = append(heights, f.Height)
	}
	// the fixed height is spread over the pages, and never overflows them
	tu.AssertEqual(t, heights, []Fl{100, 100, 100, 100, 100})
	assert.Len(t, l.boxFrags("p"), 4)

	continuous := render(t, content)
	tu.AssertEqual(t, texts(l.frags), texts(continuous.frags))
}

func TestPaginateOrphansWidows(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	linesPerPage := func(l laidOut) []int {
		var out []int
		for _, f := range l.boxFrags("p") {
			out = append(out, len(f.Children))
		}
		return out
	}
	page := Page{Width: 200, Height: 100}

	// 8 lines: 6 fit on the first page, but 3 widows are required
	l := paginate(t, page, words("p", 8), "p { widows: 3 }")
	tu.AssertEqual(t, linesPerPage(l), []int{5, 3})
	l = paginate(t, page, words("p", 8), "p { widows: 1 }")
	tu.AssertEqual(t, linesPerPage(l), []int{6, 2})

	// only one line fits after the spacer
	spacer := `<div style="height: 70px"></div>`
	l = paginate(t, page, spacer+words("p", 4))
	assert.Equal(t, 1, l.pageOf(l.boxFrags("p")[0]))
	tu.AssertEqual(t, linesPerPage(l), []int{4})
	l = paginate(t, page, spacer+words("p", 4), "p { orphans: 1; widows: 1 }")
	tu.AssertEqual(t, linesPerPage(l), []int{1, 3})
}

func TestPaginateTimeBudget(t *testing.T) {
	// millions of pages
	bt := buildBoxes(t, `<div style="height: 100000000px"></div>`)
	opts := Options{Config: config.LayoutConfig{Budget: 20 * time.Millisecond}}
	start := time.Now()
	frags, err := Paginate(context.Background(), bt, bt.Root, Page{Width: 100, Height: 1}, opts)
	assert.True(t, errors.Is(err, ErrBudgetExceeded))
	assert.Nil(t, frags)
	assert.Less(t, time.Since(start), 5*time.Second)
}
