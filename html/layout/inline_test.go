package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/html/fragments"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

// lines returns the line fragments of [id], and their text.
func (l laidOut) lines(id string) []string {
	l.t.Helper()
	var out []string
	for _, c := range l.frag(id).Children {
		line := l.frags.Fragment(c)
		if line.Kind != fragments.LineK {
			continue
		}
		text := ""
		l.frags.Walk(c, func(f fragments.FragmentID) bool {
			if fr := l.frags.Fragment(f); fr.Kind == fragments.TextK {
				text += fr.Text
			}
			return true
		})
		out = append(out, text)
	}
	return out
}

func TestLineBreaking(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="narrow" style="width: 80px">aaa bbb ccc</div>
		<div id="wider" style="width: 120px">aaa bbb ccc</div>
		<div id="nowrap" style="width: 80px; white-space: nowrap">aaa bbb ccc</div>
		<div id="br">a<br>b</div>
		<div id="long" style="width: 20px">abcdef</div>
	`)
	assert.Equal(t, Fl(48), l.frag("narrow").Height)
	assert.Equal(t, []string{"aaa", "bbb", "ccc"}, l.lines("narrow"))
	assert.Equal(t, Fl(32), l.frag("wider").Height)
	assert.Equal(t, Fl(16), l.frag("nowrap").Height)
	assert.Equal(t, Fl(32), l.frag("br").Height)
	// a word longer than the line overflows
	assert.Equal(t, Fl(16), l.frag("long").Height)
}

func TestTrailingSpaces(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `<div id="d" style="width: 80px; text-align: right">aaa bbb</div>`)
	lines := l.lines("d")
	require.Len(t, lines, 2)
	for _, c := range l.frag("d").Children {
		line := l.frags.Fragment(c)
		// the space at the break is removed: the text ends at the right edge
		var right Fl
		l.frags.Walk(c, func(f fragments.FragmentID) bool {
			if fr := l.frags.Fragment(f); fr.Kind == fragments.TextK {
				right = max(right, fr.AbsX+fr.Width)
			}
			return true
		})
		assert.Equal(t, Fl(80), right, line)
	}
}

func TestTextAlign(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div style="width: 100px; text-align: center"><span id="c">ab</span></div>
		<div style="width: 100px; text-align: right"><span id="r">ab</span></div>
		<div style="width: 100px"><span id="l">ab</span></div>
	`)
	assert.Equal(t, Fl(34), l.frag("c").AbsX)
	assert.Equal(t, Fl(68), l.frag("r").AbsX)
	assert.Equal(t, Fl(0), l.frag("l").AbsX)
	assert.Equal(t, Fl(32), l.frag("l").Width)
}

func TestLineHeight(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="px" style="line-height: 30px">a</div>
		<div id="scalar" style="line-height: 2">a<br>b</div>
	`)
	assert.Equal(t, Fl(30), l.frag("px").Height)
	assert.Equal(t, Fl(64), l.frag("scalar").Height)
}

func TestInlineBlock(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `
		<div id="d" style="width: 200px">
			<span id="ib" style="display: inline-block; width: 50px; height: 30px"></span><span id="after">ab</span>
		</div>
	`)
	ib := l.frag("ib")
	assert.Equal(t, Fl(50), ib.Width)
	assert.Equal(t, Fl(30), ib.Height)
	assert.Equal(t, Fl(50), l.frag("after").AbsX)
	// the line is tall enough for the inline-block
	assert.GreaterOrEqual(t, l.frag("d").Height, Fl(30))
}

func TestInlineBoxSplit(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	l := render(t, `<div style="width: 50px"><span id="s" style="padding: 0 2px">aa bb</span></div>`)
	parts := l.fragsOf("s")
	require.Len(t, parts, 2)
	// decorations are suppressed at the break
	assert.True(t, parts[0].SkipEnd)
	assert.True(t, parts[1].SkipStart)
	assert.Equal(t, 0, parts[0].Index)
	assert.Equal(t, 1, parts[1].Index)
	assert.Less(t, parts[0].AbsY, parts[1].AbsY)
}
