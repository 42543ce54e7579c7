package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

// Layout for grid containers and grid items.
// Named lines and areas are not supported.
// See https://drafts.csswg.org/css-grid-2/#layout-algorithm

type gridItem struct {
	id BoxID
	m  boxMetrics
	// 0-based start lines and spans, in the column and row axis
	col, row         int
	colSpan, rowSpan int

	res result
}

type gridTrack struct {
	size        pr.TrackSize
	base, limit Fl
	flex        Fl // fr factor, 0 for non flexible tracks
	pos         Fl
}

func (t *gridTrack) isIntrinsicMin() bool {
	return t.size.Min.IsKeyword() || t.size.Min.Unit == pr.Fr
}

func (t *gridTrack) isIntrinsicMax() bool { return t.size.Max.IsKeyword() }

// gridLine resolves a line against an explicit grid of [explicit] tracks,
// returning a 0-based line index, or false for auto and span lines.
func gridLine(l pr.GridLine, explicit int) (int, bool) {
	if l.Auto || l.Span > 0 || l.Line == 0 {
		return 0, false
	}
	if l.Line > 0 {
		return min(l.Line, pr.MaxGridLines) - 1, true
	}
	return max(0, explicit+1+max(l.Line, -pr.MaxGridLines)), true
}

// gridSpan resolves the position of an item in one axis.
// It returns the start line, the span, and false if the position
// must be found by the auto-placement algorithm.
// Items never extend beyond [pr.MaxGridLines] tracks.
func gridSpan(start, end pr.GridLine, explicit int) (int, int, bool) {
	s, span, ok := resolveGridSpan(start, end, explicit)
	s = min(s, pr.MaxGridLines-1)
	span = max(1, min(span, pr.MaxGridLines-s))
	return s, span, ok
}

func resolveGridSpan(start, end pr.GridLine, explicit int) (int, int, bool) {
	s, sok := gridLine(start, explicit)
	e, eok := gridLine(end, explicit)
	switch {
	case sok && eok:
		if e < s {
			s, e = e, s
		}
		if e == s {
			e = s + 1
		}
		return s, e - s, true
	case sok:
		return s, max(1, end.Span), true
	case eok:
		span := max(1, start.Span)
		return max(0, e-span), span, true
	}
	return 0, max(1, start.Span, end.Span), false
}

// gridOccupancy stores the areas used by placed items,
// as [major, minor, majorSpan, minorSpan] in the auto-flow direction.
// Each query is a budget step, so that pathological placements
// are bounded by the layout budget.
type gridOccupancy struct {
	areas  [][4]int
	budget *budget
}

func (g *gridOccupancy) free(major, minor, majorSpan, minorSpan int) bool {
	g.budget.enter()
	for _, a := range g.areas {
		if major < a[0]+a[2] && a[0] < major+majorSpan && minor < a[1]+a[3] && a[1] < minor+minorSpan {
			return false
		}
	}
	return true
}

func (g *gridOccupancy) fill(major, minor, majorSpan, minorSpan int) {
	g.budget.enter()
	g.areas = append(g.areas, [4]int{major, minor, majorSpan, minorSpan})
}

// placeGridItems runs the placement algorithm, returning the items
// and the number of columns and rows of the implicit grid.
// See https://drafts.csswg.org/css-grid-2/#auto-placement-algo
func (lc *layoutContext) placeGridItems(id BoxID) ([]*gridItem, int, int) {
	style := lc.box(id).Style
	explicitCols := min(len(style.GetGridTemplateColumns()), pr.MaxGridLines)
	explicitRows := min(len(style.GetGridTemplateRows()), pr.MaxGridLines)
	columnFlow := style.GetGridAutoFlow() == kw.Column

	type placement struct {
		it                   *gridItem
		major, minor         int
		majorSpan, minorSpan int
		majorOk, minorOk     bool
	}
	var items []placement
	for _, c := range lc.box(id).Children {
		cs := lc.box(c).Style
		if lc.box(c).IsAbsolutelyPositioned() {
			continue
		}
		col, colSpan, colOk := gridSpan(cs.GetGridColumnStart(), cs.GetGridColumnEnd(), explicitCols)
		row, rowSpan, rowOk := gridSpan(cs.GetGridRowStart(), cs.GetGridRowEnd(), explicitRows)
		p := placement{it: &gridItem{id: c}}
		if columnFlow {
			p.major, p.majorSpan, p.majorOk = col, colSpan, colOk
			p.minor, p.minorSpan, p.minorOk = row, rowSpan, rowOk
		} else {
			p.major, p.majorSpan, p.majorOk = row, rowSpan, rowOk
			p.minor, p.minorSpan, p.minorOk = col, colSpan, colOk
		}
		items = append(items, p)
	}

	// the number of tracks in the minor axis is fixed before auto placement
	minorCount := explicitCols
	if columnFlow {
		minorCount = explicitRows
	}
	for _, p := range items {
		if p.minorOk {
			minorCount = max(minorCount, p.minor+p.minorSpan)
		} else {
			minorCount = max(minorCount, p.minorSpan)
		}
	}
	minorCount = max(minorCount, 1)

	occupied := &gridOccupancy{budget: lc.budget}
	// 1. position anything that is not auto-positioned
	for i := range items {
		if p := &items[i]; p.majorOk && p.minorOk {
			occupied.fill(p.major, p.minor, p.majorSpan, p.minorSpan)
		}
	}
	// 2. process the items locked to a given row (column)
	for i := range items {
		p := &items[i]
		if !p.majorOk || p.minorOk {
			continue
		}
		p.minor = 0
		for p.minor+p.minorSpan <= minorCount && !occupied.free(p.major, p.minor, p.majorSpan, p.minorSpan) {
			p.minor++
		}
		if p.minor+p.minorSpan > minorCount { // no room: overlap the first cells
			p.minor = 0
		}
		p.minorOk = true
		occupied.fill(p.major, p.minor, p.majorSpan, p.minorSpan)
	}
	// 3. position the remaining items
	var cursorMajor, cursorMinor int
	for i := range items {
		p := &items[i]
		if p.majorOk {
			continue
		}
		if p.minorOk {
			if p.minor < cursorMinor {
				cursorMajor++
			}
			cursorMinor = p.minor
			for !occupied.free(cursorMajor, p.minor, p.majorSpan, p.minorSpan) {
				cursorMajor++
			}
		} else {
			for {
				if cursorMinor+p.minorSpan > minorCount {
					cursorMajor, cursorMinor = cursorMajor+1, 0
					continue
				}
				if occupied.free(cursorMajor, cursorMinor, p.majorSpan, p.minorSpan) {
					break
				}
				cursorMinor++
			}
			p.minor = cursorMinor
		}
		p.major, p.majorOk, p.minorOk = cursorMajor, true, true
		occupied.fill(p.major, p.minor, p.majorSpan, p.minorSpan)
		cursorMinor = p.minor + p.minorSpan
	}

	out := make([]*gridItem, len(items))
	majorCount := explicitRows
	if columnFlow {
		majorCount = explicitCols
	}
	for i, p := range items {
		majorCount = max(majorCount, p.major+p.majorSpan)
		it := p.it
		if columnFlow {
			it.col, it.colSpan, it.row, it.rowSpan = p.major, p.majorSpan, p.minor, p.minorSpan
		} else {
			it.row, it.rowSpan, it.col, it.colSpan = p.major, p.majorSpan, p.minor, p.minorSpan
		}
		out[i] = it
	}
	if columnFlow {
		return out, majorCount, minorCount
	}
	return out, minorCount, majorCount
}

// newTracks returns [n] tracks, from the template and the auto tracks.
func newTracks(template, auto pr.TrackList, n int) []gridTrack {
	out := make([]gridTrack, n)
	autoTrack := pr.TrackSize{Min: pr.SToV("auto"), Max: pr.SToV("auto")}
	for i := range out {
		switch {
		case i < len(template):
			out[i].size = template[i]
		case len(auto) != 0:
			out[i].size = auto[(i-len(template))%len(auto)]
		default:
			out[i].size = autoTrack
		}
		if out[i].size.IsFlexible() {
			out[i].flex = out[i].size.Max.Value
		}
	}
	return out
}

// trackContribution is the size needed by an item in one axis.
type trackContribution struct {
	start, span      int
	minSize, maxSize Fl
}

// sizeTracks runs the track sizing algorithm in one axis, for an
// [available] size which may be infinite.
// See https://drafts.csswg.org/css-grid-2/#algo-track-sizing
func (lc *layoutContext) sizeTracks(tracks []gridTrack, items []trackContribution, available, gap Fl, stretch bool) {
	refer := available
	// 1.1 Initialize track sizes.
	for i := range tracks {
		t := &tracks[i]
		t.base, t.limit = 0, utils.Inf
		if v, ok := resolveOnePercentage(t.size.Min, refer); ok && t.size.Min.Unit != pr.Fr {
			t.base = v
		}
		if v, ok := resolveOnePercentage(t.size.Max, refer); ok && t.size.Max.Unit != pr.Fr {
			t.limit = max(v, t.base)
		} else if t.flex > 0 {
			t.limit = t.base
		}
	}

	spansFlexible := func(c trackContribution) bool {
		for i := c.start; i < c.start+c.span; i++ {
			if tracks[i].flex > 0 {
				return true
			}
		}
		return false
	}

	// 1.2 Resolve intrinsic track sizes.
	// 1.2.2 Size tracks to fit non-spanning items.
	for _, c := range items {
		if c.span != 1 || spansFlexible(c) {
			continue
		}
		t := &tracks[c.start]
		if t.isIntrinsicMin() {
			if t.size.Min.S == "max-content" {
				t.base = max(t.base, c.maxSize)
			} else {
				t.base = max(t.base, c.minSize)
			}
		}
		if t.isIntrinsicMax() {
			contribution := c.maxSize
			if t.size.Max.S == "min-content" {
				contribution = c.minSize
			}
			if utils.IsFinite(t.limit) {
				t.limit = max(t.limit, contribution)
			} else {
				t.limit = contribution
			}
		}
	}
	// 1.2.3 Increase sizes to accommodate items spanning content-sized tracks.
	for _, c := range items {
		if c.span == 1 || spansFlexible(c) {
			continue
		}
		var sum Fl
		var intrinsic []int
		for i := c.start; i < c.start+c.span; i++ {
			sum += tracks[i].base
			if tracks[i].isIntrinsicMin() {
				intrinsic = append(intrinsic, i)
			}
		}
		sum += gap * Fl(c.span-1)
		if extra := c.minSize - sum; extra > 0 && len(intrinsic) != 0 {
			share := extra / Fl(len(intrinsic))
			for _, i := range intrinsic {
				tracks[i].base += share
			}
		}
		var sumLimits Fl
		for i := c.start; i < c.start+c.span; i++ {
			if l := tracks[i].limit; utils.IsFinite(l) {
				sumLimits += l
			} else {
				sumLimits += tracks[i].base
			}
		}
		sumLimits += gap * Fl(c.span-1)
		if extra := c.maxSize - sumLimits; extra > 0 {
			var n int
			for i := c.start; i < c.start+c.span; i++ {
				if tracks[i].isIntrinsicMax() {
					n++
				}
			}
			for i := c.start; i < c.start+c.span && n > 0; i++ {
				if t := &tracks[i]; t.isIntrinsicMax() {
					if !utils.IsFinite(t.limit) {
						t.limit = t.base
					}
					t.limit += extra / Fl(n)
				}
			}
		}
	}
	// 1.2.5 Fix infinite growth limits.
	for i := range tracks {
		t := &tracks[i]
		if !utils.IsFinite(t.limit) {
			t.limit = t.base
		}
		t.limit = max(t.limit, t.base)
	}

	gaps := gap * Fl(max(0, len(tracks)-1))
	free := func() Fl {
		s := available - gaps
		for _, t := range tracks {
			s -= t.base
		}
		return s
	}

	// 1.3 Maximize tracks.
	if !utils.IsFinite(available) {
		for i := range tracks {
			if tracks[i].flex == 0 {
				tracks[i].base = tracks[i].limit
			}
		}
	} else {
		for range lc.cfg.FlexMaxRounds {
			f := free()
			var growable []int
			for i, t := range tracks {
				if t.flex == 0 && t.base < t.limit {
					growable = append(growable, i)
				}
			}
			if f <= 0 || len(growable) == 0 {
				break
			}
			share := f / Fl(len(growable))
			for _, i := range growable {
				t := &tracks[i]
				t.base = min(t.limit, t.base+share)
			}
		}
	}

	// 1.4 Expand flexible tracks.
	var sumFlex Fl
	for _, t := range tracks {
		sumFlex += t.flex
	}
	if sumFlex > 0 {
		var frSize Fl
		if utils.IsFinite(available) {
			inflexible := make([]bool, len(tracks))
			for range lc.cfg.FlexMaxRounds {
				leftover := available - gaps
				var flex Fl
				for i, t := range tracks {
					if t.flex == 0 || inflexible[i] {
						leftover -= t.base
					} else {
						flex += t.flex
					}
				}
				frSize = max(0, leftover) / max(flex, 1)
				changed := false
				for i, t := range tracks {
					if t.flex > 0 && !inflexible[i] && t.base > t.flex*frSize {
						inflexible[i], changed = true, true
					}
				}
				if !changed {
					break
				}
			}
		} else {
			for _, t := range tracks {
				if t.flex > 0 {
					frSize = max(frSize, t.base/max(t.flex, 1))
				}
			}
			for _, c := range items {
				var flex, fixed Fl
				for i := c.start; i < c.start+c.span; i++ {
					if tracks[i].flex > 0 {
						flex += tracks[i].flex
					} else {
						fixed += tracks[i].base
					}
				}
				if flex > 0 {
					frSize = max(frSize, (c.maxSize-fixed-gap*Fl(c.span-1))/max(flex, 1))
				}
			}
		}
		for i := range tracks {
			if t := &tracks[i]; t.flex > 0 {
				t.base = max(t.base, t.flex*frSize)
			}
		}
	}

	// 1.5 Expand stretched auto tracks.
	if f := free(); stretch && utils.IsFinite(f) && f > 0 {
		var auto []int
		for i, t := range tracks {
			if t.size.Max.IsAuto() {
				auto = append(auto, i)
			}
		}
		for _, i := range auto {
			tracks[i].base += f / Fl(len(auto))
		}
	}

	var pos Fl
	for i := range tracks {
		tracks[i].pos = pos
		pos += tracks[i].base + gap
	}
}

// span returns the size of the tracks [start, start+span), with the gaps.
func trackSpan(tracks []gridTrack, start, span int, gap Fl) Fl {
	var s Fl
	for i := start; i < start+span && i < len(tracks); i++ {
		s += tracks[i].base
	}
	return s + gap*Fl(span-1)
}

func gridGaps(style *pr.Style, width, height Fl) (Fl, Fl) {
	colGap := columnGap(style, width)
	if style.GetColumnGap().S == "normal" {
		colGap = 0
	}
	return colGap, rowGap(style, height)
}

func (lc *layoutContext) gridLayout(id BoxID, space ConstraintSpace) result {
	box := lc.box(id)
	style := box.Style
	m := resolvePercentages(style, space.PercentWidth, space.PercentHeight)
	lc.blockWidth(id, &m, space)
	if space.FixedHeight >= 0 {
		m.height = max(0, space.FixedHeight-m.decorationHeight())
	}
	height := m.height
	if height != -1 {
		height = m.clampHeight(height)
	}
	heightRef := utils.Inf
	if height != -1 {
		heightRef = height
	}
	colGap, rGap := gridGaps(style, m.width, heightRef)

	items, nCols, nRows := lc.placeGridItems(id)
	columns := newTracks(style.GetGridTemplateColumns(), style.GetGridAutoColumns(), nCols)
	rows := newTracks(style.GetGridTemplateRows(), style.GetGridAutoRows(), nRows)
	stretchCols := style.GetJustifyContent() == kw.Normal || style.GetJustifyContent() == kw.Stretch
	stretchRows := style.GetAlignContent() == kw.Normal || style.GetAlignContent() == kw.Stretch

	// column sizing, from the intrinsic widths measured in parallel
	contribs := make([]trackContribution, len(items))
	lc.parallelFor(len(items), func(i int) BoxID { return items[i].id }, func(i int) {
		it := items[i]
		contribs[i] = trackContribution{
			start: it.col, span: it.colSpan,
			minSize: lc.intrinsicWidth(it.id, minContent),
			maxSize: lc.intrinsicWidth(it.id, maxContent),
		}
	})
	lc.sizeTracks(columns, contribs, m.width, colGap, stretchCols)

	// row sizing, from the heights of the items laid out in their columns
	lc.parallelFor(len(items), func(i int) BoxID { return items[i].id }, func(i int) {
		it := items[i]
		it.m = resolvePercentages(lc.box(it.id).Style, m.width, heightRef)
		width := trackSpan(columns, it.col, it.colSpan, colGap)
		it.res = lc.layoutGridItem(it, width, -1)
		h := it.res.node.MarginHeight()
		contribs[i] = trackContribution{start: it.row, span: it.rowSpan, minSize: h, maxSize: h}
	})
	availRows := utils.Inf
	if height != -1 {
		availRows = height
	}
	lc.sizeTracks(rows, contribs, availRows, rGap, stretchRows && height != -1)

	if height == -1 {
		height = m.clampHeight(trackSpan(rows, 0, len(rows), rGap))
	}

	node := &Node{
		Kind: fragments.BoxK, Box: id, Style: style,
		X: m.margin[pr.SLeft], Y: m.margin[pr.STop],
		Width:  m.width + m.decorationWidth(),
		Height: height + m.decorationHeight(),
		Margin: m.margin, Border: m.border, Padding: m.padding,
	}
	contentX, contentY := m.border[pr.SLeft]+m.padding[pr.SLeft], m.border[pr.STop]+m.padding[pr.STop]

	// final layout, stretched to the grid areas
	nodes := make([]*Node, len(items))
	lc.parallelFor(len(items), func(i int) BoxID { return items[i].id }, func(i int) {
		it := items[i]
		width := trackSpan(columns, it.col, it.colSpan, colGap)
		areaHeight := trackSpan(rows, it.row, it.rowSpan, rGap)
		if lc.isGridStretched(it, style) {
			it.res = lc.layoutGridItem(it, width, areaHeight)
		}
		n := it.res.node
		x := contentX + columns[min(it.col, len(columns)-1)].pos + n.Margin[pr.SLeft]
		y := contentY + rows[min(it.row, len(rows)-1)].pos + n.Margin[pr.STop]
		switch lc.gridAlign(lc.box(it.id).Style, style) {
		case kw.Center:
			y += (areaHeight - n.MarginHeight()) / 2
		case kw.FlexEnd, kw.End:
			y += areaHeight - n.MarginHeight()
		}
		nodes[i] = lc.applyRelative(it.id, n.At(x, y), m.width, heightRef)
	})
	var absolutes []pendingAbs
	for _, c := range box.Children {
		if cb := lc.box(c); cb.IsAbsolutelyPositioned() {
			absolutes = append(absolutes, pendingAbs{box: c, x: contentX, y: contentY, fixed: cb.Style.GetPosition() == kw.Fixed})
		}
	}
	for i, n := range nodes {
		node.Children = append(node.Children, n)
		absolutes = append(absolutes, items[i].res.translatedAbsolutes(n.X, n.Y)...)
		if !node.HasBaseline && n.HasBaseline {
			node.Baseline, node.HasBaseline = n.Y+n.Baseline, true
		}
	}
	if traceMode {
		traceLogger.Dump(fmt.Sprintf("grid %s: %d columns, %d rows", lc.tree.Tag(id), len(columns), len(rows)))
	}
	node, absolutes = lc.placeAbsolutes(id, node, absolutes)
	return result{node: node, after: []Fl{m.margin[pr.SBottom]}, absolutes: absolutes}
}

func (lc *layoutContext) gridAlign(item, container *pr.Style) pr.Keyword {
	if a := item.GetAlignSelf(); a != kw.Auto {
		return a
	}
	return container.GetAlignItems()
}

func (lc *layoutContext) isGridStretched(it *gridItem, container *pr.Style) bool {
	a := lc.gridAlign(lc.box(it.id).Style, container)
	return (a == kw.Stretch || a == kw.Normal) && it.m.height == -1 &&
		!it.m.marginAuto[pr.STop] && !it.m.marginAuto[pr.SBottom]
}

// layoutGridItem lays out an item in an area of the given width,
// and height (or -1).
func (lc *layoutContext) layoutGridItem(it *gridItem, width, height Fl) result {
	space := NewConstraintSpace(width, utils.Inf)
	if height >= 0 {
		space.PercentHeight = height
	}
	if it.m.width == -1 && !it.m.marginAuto[pr.SLeft] && !it.m.marginAuto[pr.SRight] {
		space.FixedWidth = max(0, width-it.m.margin.Horizontal())
	} else {
		space.ShrinkToFit = true
	}
	if height >= 0 {
		space.FixedHeight = max(0, height-it.m.margin.Vertical())
	}
	return lc.independentLayout(it.id, space, nil)
}

// gridIntrinsicWidth returns the preferred width of the content of
// a grid container: the sum of its column sizes.
func (lc *layoutContext) gridIntrinsicWidth(id BoxID, mode sizingMode) Fl {
	style := lc.box(id).Style
	items, nCols, _ := lc.placeGridItems(id)
	columns := newTracks(style.GetGridTemplateColumns(), style.GetGridAutoColumns(), nCols)
	contribs := make([]trackContribution, len(items))
	for i, it := range items {
		w := lc.intrinsicWidth(it.id, mode)
		contribs[i] = trackContribution{start: it.col, span: it.colSpan, minSize: w, maxSize: w}
	}
	colGap, _ := gridGaps(style, 0, 0)
	lc.sizeTracks(columns, contribs, utils.Inf, colGap, false)
	return trackSpan(columns, 0, len(columns), colGap)
}
