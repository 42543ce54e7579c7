package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

// Layout for multi-column containers.
// See https://www.w3.org/TR/css-multicol-1/

// number of rounds used to balance the columns
const balanceRounds = 12

// usedColumns returns the number and the width of the columns,
// for a content box of width [available].
// See https://www.w3.org/TR/css-multicol-1/#pseudo-algorithm
func usedColumns(style *pr.Style, available Fl) (int, Fl, Fl) {
	gap := columnGap(style, available)
	count := style.GetColumnCount()
	width, hasWidth := resolveOnePercentage(style.GetColumnWidth(), available)
	var n int
	switch {
	case !hasWidth:
		n = max(1, count.Int)
	case count.Auto:
		n = max(1, int((available+gap)/(width+gap)))
	default:
		n = max(1, min(count.Int, int((available+gap)/(width+gap))))
	}
	w := max(0, (available+gap)/Fl(n)-gap)
	return n, w, gap
}

// columnRun is the content laid out in a sequence of columns.
type columnRun struct {
	columns []result
	token   *BreakToken // nil when the content is complete
	height  Fl          // tallest column
}

// fillColumns lays out the content of [id] in at most [count] columns
// of the given [width] and [height], starting at [token].
// When [count] is 0, the columns are not limited.
func (lc *layoutContext) fillColumns(id BoxID, width, height Fl, count int, token *BreakToken) columnRun {
	var run columnRun
	for {
		space := NewConstraintSpace(width, utils.Inf)
		space.FixedWidth = width
		space.contentOnly = true
		space.Columns = true
		space.FragmentainerTop = true
		space.BlockBudget = height
		lc.budget.enter()
		res := lc.blockContainerLayout(id, space, newFloatContext(), nil, token)
		run.columns = append(run.columns, res)
		run.height = max(run.height, res.node.Y+res.node.Height)
		token = res.token
		if token == nil || (count > 0 && len(run.columns) == count) {
			run.token = token
			return run
		}
	}
}

// balance returns the smallest column height such that the content
// fits in [count] columns, up to [limit].
func (lc *layoutContext) balance(id BoxID, width Fl, count int, limit Fl, token *BreakToken) columnRun {
	single := lc.fillColumns(id, width, utils.Inf, 1, token)
	total := single.height
	if count == 1 || total == 0 {
		if utils.IsFinite(limit) && total > limit {
			return lc.fillColumns(id, width, limit, count, token)
		}
		return single
	}
	lo, hi := total/Fl(count), min(total, limit)
	best := lc.fillColumns(id, width, hi, count, token)
	if best.token != nil {
		// the content does not fit: the columns are filled up to the limit
		return best
	}
	for range balanceRounds {
		if hi-lo < 0.5 {
			break
		}
		mid := (lo + hi) / 2
		run := lc.fillColumns(id, width, mid, count, token)
		if run.token == nil {
			best, hi = run, mid
		} else {
			lo = mid
		}
	}
	return best
}

// columnsLayout lays out a multi-column container, balancing the content
// across its columns. The columns are broken at the end of the
// fragmentainer, the content continuing on the next fragment.
func (lc *layoutContext) columnsLayout(id BoxID, space ConstraintSpace, token *BreakToken) result {
	box := lc.box(id)
	style := box.Style
	lc.budget.checkIndex(token.index())
	m := resolvePercentages(style, space.PercentWidth, space.PercentHeight)
	lc.blockWidth(id, &m, space)
	if space.FixedHeight >= 0 {
		m.height = max(0, space.FixedHeight-m.decorationHeight())
	}
	if token != nil {
		m.margin[pr.STop], m.border[pr.STop], m.padding[pr.STop] = 0, 0, 0
	}
	count, width, gap := usedColumns(style, m.width)

	contentX, contentY := m.border[pr.SLeft]+m.padding[pr.SLeft], m.border[pr.STop]+m.padding[pr.STop]
	limit := utils.Inf
	if m.height != -1 {
		limit = m.height
		if token != nil {
			limit = max(0, m.height-token.Consumed)
		}
	}
	if space.fragmenting() {
		limit = min(limit, max(0, space.BlockBudget-m.margin[pr.STop]-contentY-m.border[pr.SBottom]-m.padding[pr.SBottom]))
	}
	var inner *BreakToken
	if token != nil {
		inner = token.Inner
	}
	if space.fragmenting() && limit <= 0 && !space.FragmentainerTop {
		return result{pushed: true}
	}
	run := lc.balance(id, width, count, limit, inner)
	if run.token != nil && !space.fragmenting() {
		// overflow columns are added in the inline direction
		rest := lc.fillColumns(id, width, run.height, 0, run.token)
		run.columns = append(run.columns, rest.columns...)
		run.token = nil
	}
	if traceMode {
		traceLogger.Dump(fmt.Sprintf("columns %s: %d x %g, height %g", lc.tree.Tag(id), len(run.columns), width, run.height))
	}

	if run.token != nil {
		m.margin[pr.SBottom], m.border[pr.SBottom], m.padding[pr.SBottom] = 0, 0, 0
	}
	height := run.height
	if m.height != -1 {
		height = limit
	} else if run.token == nil {
		height = m.clampHeight(height)
	}
	node := &Node{
		Kind: fragments.BoxK, Box: id, Style: style,
		X: m.margin[pr.SLeft], Y: m.margin[pr.STop],
		Width:  m.width + m.decorationWidth(),
		Height: height + m.border.Vertical() + m.padding.Vertical(),
		Margin: m.margin, Border: m.border, Padding: m.padding,
		Index:     token.index(),
		SkipStart: token != nil, SkipEnd: run.token != nil,
	}
	var absolutes []pendingAbs
	for i, col := range run.columns {
		x := contentX + Fl(i)*(width+gap)
		column := &Node{
			Kind: fragments.ColumnK, Box: boxes.NoBox,
			X: x, Y: contentY, Width: width, Height: height,
			Index: i,
		}
		for _, c := range col.node.Children {
			column.Children = append(column.Children, c.Translate(0, col.node.Y))
		}
		if !node.HasBaseline && col.node.HasBaseline {
			node.Baseline, node.HasBaseline = contentY+col.node.Y+col.node.Baseline, true
		}
		node.Children = append(node.Children, column)
		absolutes = append(absolutes, col.translatedAbsolutes(x, contentY+col.node.Y)...)
	}
	node, absolutes = lc.placeAbsolutes(id, node, absolutes)
	out := result{node: node, absolutes: absolutes, after: []Fl{m.margin[pr.SBottom]}}
	if run.token != nil {
		var consumed Fl
		if token != nil {
			consumed = token.Consumed
		}
		out.token = &BreakToken{Box: id, Inner: run.token, Index: node.Index, Consumed: consumed + height}
		out.after = nil
	}
	return out
}
