package layout

import (
	"fmt"
	"sort"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/utils"
	"go.uber.org/zap"
)

// Layout for flex containers and flex-items.
// See https://www.w3.org/TR/css-flexbox-1/#layout-algorithm

type flexItem struct {
	id    BoxID
	m     boxMetrics
	order int

	grow, shrink Fl
	// content box sizes in the main axis
	baseSize, hypothetical Fl
	minMain, maxMain       Fl
	target                 Fl
	frozen                 bool
	violation              Fl

	// sums of the margins (auto margins as zero) and of the
	// borders and paddings, in the main and cross axis
	mainMargins, mainDeco   Fl
	crossMargins, crossDeco Fl

	align pr.Keyword
	res   result
	// cross size of the border box, and baseline of the margin box
	cross    Fl
	baseline Fl
	// position of the margin box in the line
	mainPos, crossPos Fl
}

// outerTarget returns the outer main size of the item.
func (it *flexItem) outerTarget() Fl { return it.target + it.mainDeco + it.mainMargins }

func (it *flexItem) outerHypothetical() Fl { return it.hypothetical + it.mainDeco + it.mainMargins }

type flexLine struct {
	items []*flexItem
	cross Fl
	// maximum baseline of the baseline aligned items
	baseline Fl
	pos      Fl
}

func (f flexLine) sum() Fl {
	var s Fl
	for _, it := range f.items {
		s += it.outerHypothetical()
	}
	return s
}

func (f flexLine) allFrozen() bool {
	for _, it := range f.items {
		if !it.frozen {
			return false
		}
	}
	return true
}

// flexContainer groups the used values of a flex container.
type flexContainer struct {
	lc                *layoutContext
	id                BoxID
	m                 boxMetrics
	row               bool
	wrap              bool
	gapMain, gapCross Fl
	// content box size; -1 for an indefinite height
	width, height Fl
	space         ConstraintSpace
}

func (fc *flexContainer) availableMain() Fl {
	if fc.row {
		return fc.width
	}
	if fc.height == -1 {
		return utils.Inf
	}
	return fc.height
}

func (lc *layoutContext) flexLayout(id BoxID, space ConstraintSpace) result {
	box := lc.box(id)
	style := box.Style
	fc := &flexContainer{
		lc: lc, id: id, space: space,
		m:    resolvePercentages(style, space.PercentWidth, space.PercentHeight),
		row:  isFlexRow(style),
		wrap: style.GetFlexWrap() != kw.NoWrap,
	}
	m := &fc.m
	lc.blockWidth(id, m, space)
	if space.FixedHeight >= 0 {
		m.height = max(0, space.FixedHeight-m.decorationHeight())
	}
	fc.width, fc.height = m.width, m.height
	if fc.height != -1 {
		fc.height = m.clampHeight(fc.height)
	}
	colGap, rGap := columnGap(style, fc.width), rowGap(style, fc.height)
	if style.GetColumnGap().S == "normal" {
		colGap = 0
	}
	if fc.row {
		fc.gapMain, fc.gapCross = colGap, rGap
	} else {
		fc.gapMain, fc.gapCross = rGap, colGap
	}

	// Step 1 is done when building the boxes: in-flow children are blockified
	var items []*flexItem
	var absolutes []pendingAbs
	contentX, contentY := m.border[pr.SLeft]+m.padding[pr.SLeft], m.border[pr.STop]+m.padding[pr.STop]
	for _, c := range box.Children {
		cb := lc.box(c)
		if cb.IsAbsolutelyPositioned() {
			absolutes = append(absolutes, pendingAbs{box: c, x: contentX, y: contentY, fixed: cb.Style.GetPosition() == kw.Fixed})
			continue
		}
		items = append(items, &flexItem{id: c, order: int(cb.Style.GetOrder())})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })

	// Step 2 and 3: flex base size and hypothetical main size
	lc.parallelFor(len(items), func(i int) BoxID { return items[i].id }, func(i int) { fc.baseSize(items[i]) })

	// Step 4 and 5: collect the items into flex lines
	lines := fc.collectLines(items)

	// Step 6: resolve the flexible lengths
	for _, line := range lines {
		fc.resolveFlexibleLengths(line)
	}

	// Step 7: hypothetical cross size, by laying out the items with
	// their used main size
	lc.parallelFor(len(items), func(i int) BoxID { return items[i].id }, func(i int) { fc.layoutItem(items[i], -1) })

	// Step 8: cross size of the lines
	fc.lineCrossSizes(lines)

	// Step 9: stretch the lines (align-content: stretch)
	containerCross := fc.containerCross(lines)
	fc.alignContent(lines, containerCross)

	// Step 11: stretched items
	var stretched []*flexItem
	for _, line := range lines {
		for _, it := range line.items {
			if fc.isStretched(it) {
				it.cross = line.cross - it.crossMargins
				stretched = append(stretched, it)
			}
		}
	}
	lc.parallelFor(len(stretched), func(i int) BoxID { return stretched[i].id }, func(i int) {
		fc.layoutItem(stretched[i], stretched[i].cross)
	})

	// Step 12 and 13: main and cross axis alignment
	for _, line := range lines {
		fc.justify(line)
		fc.alignItems(line)
	}

	// Step 15: size of the container
	if fc.row {
		if fc.height == -1 {
			fc.height = m.clampHeight(containerCross)
		}
	} else if fc.height == -1 {
		var main Fl
		for _, line := range lines {
			for _, it := range line.items {
				main = max(main, it.mainPos+it.outerTarget())
			}
		}
		fc.height = m.clampHeight(main)
	}

	node := &Node{
		Kind: fragments.BoxK, Box: id, Style: style,
		X: m.margin[pr.SLeft], Y: m.margin[pr.STop],
		Width:  fc.width + m.decorationWidth(),
		Height: fc.height + m.decorationHeight(),
		Margin: m.margin, Border: m.border, Padding: m.padding,
	}
	reverseMain := style.GetFlexDirection() == kw.RowReverse || style.GetFlexDirection() == kw.ColumnReverse
	reverseCross := style.GetFlexWrap() == kw.WrapReverse
	for _, line := range lines {
		for _, it := range line.items {
			main, cross := it.mainPos, line.pos+it.crossPos
			mainSize, crossSize := it.outerTarget(), it.cross+it.crossMargins
			if reverseMain {
				main = fc.mainSize() - main - mainSize
			}
			if reverseCross {
				cross = fc.crossSize() - cross - crossSize
			}
			var x, y Fl
			if fc.row {
				x, y = main, cross
			} else {
				x, y = cross, main
			}
			n := it.res.node
			x += contentX + n.Margin[pr.SLeft]
			y += contentY + n.Margin[pr.STop]
			child := lc.applyRelative(it.id, n.At(x, y), fc.width, fc.height)
			node.Children = append(node.Children, child)
			absolutes = append(absolutes, it.res.translatedAbsolutes(x, y)...)
			if !node.HasBaseline && n.HasBaseline {
				node.Baseline, node.HasBaseline = y+n.Baseline, true
			}
		}
	}
	if traceMode {
		traceLogger.Dump(fmt.Sprintf("flex %s: %d items on %d lines", lc.tree.Tag(id), len(items), len(lines)))
	}
	node, absolutes = lc.placeAbsolutes(id, node, absolutes)
	return result{node: node, after: []Fl{m.margin[pr.SBottom]}, absolutes: absolutes}
}

func (fc *flexContainer) mainSize() Fl {
	if fc.row {
		return fc.width
	}
	return fc.height
}

func (fc *flexContainer) crossSize() Fl {
	if fc.row {
		return fc.height
	}
	return fc.width
}

// baseSize computes the flex base size and the hypothetical main size.
// See https://www.w3.org/TR/css-flexbox-1/#algo-main-item
func (fc *flexContainer) baseSize(it *flexItem) {
	lc := fc.lc
	style := lc.box(it.id).Style
	cbHeight := utils.Inf
	if fc.height != -1 {
		cbHeight = fc.height
	}
	it.m = resolvePercentages(style, fc.width, cbHeight)
	m := &it.m
	it.grow, it.shrink = Fl(style.GetFlexGrow()), Fl(style.GetFlexShrink())
	it.align = style.GetAlignSelf()
	if it.align == kw.Auto {
		it.align = lc.box(fc.id).Style.GetAlignItems()
	}

	var specified Fl
	if fc.row {
		it.mainMargins, it.mainDeco = m.margin.Horizontal(), m.decorationWidth()
		it.crossMargins, it.crossDeco = m.margin.Vertical(), m.decorationHeight()
		specified = m.width
		it.minMain, it.maxMain = m.minWidth, m.maxWidth
	} else {
		it.mainMargins, it.mainDeco = m.margin.Vertical(), m.decorationHeight()
		it.crossMargins, it.crossDeco = m.margin.Horizontal(), m.decorationWidth()
		specified = m.height
		it.minMain, it.maxMain = m.minHeight, m.maxHeight
	}

	basis := style.GetFlexBasis()
	it.baseSize = -1
	if !basis.IsAuto() && basis.S != "content" {
		if v, ok := resolveOnePercentage(basis, fc.availableMain()); ok {
			it.baseSize = v
			if style.GetBoxSizing() == kw.BorderBox {
				it.baseSize = max(0, v-it.mainDeco)
			}
		}
	}
	if it.baseSize == -1 && basis.IsAuto() {
		it.baseSize = specified
	}
	if it.baseSize == -1 { // content size
		it.baseSize = fc.contentMainSize(it, maxContent)
	}

	// automatic minimum size
	autoMin := (fc.row && m.minWidthAuto) || (!fc.row && m.minHeightAuto)
	if autoMin && style.GetOverflow() == kw.Visible {
		contentMin := fc.contentMainSize(it, minContent)
		if specified != -1 {
			contentMin = min(contentMin, specified)
		}
		it.minMain = min(contentMin, it.maxMain)
	}
	it.hypothetical = utils.Clamp(it.baseSize, it.minMain, it.maxMain)
}

// contentMainSize returns the content size of the item in the main axis.
func (fc *flexContainer) contentMainSize(it *flexItem, mode sizingMode) Fl {
	lc := fc.lc
	if fc.row {
		return lc.intrinsicContentWidth(it.id, mode)
	}
	// column: lay out the item with its cross size to get its height
	width := fc.width - it.crossMargins
	space := NewConstraintSpace(fc.width, utils.Inf)
	if it.m.width == -1 && fc.isStretchAligned(it) {
		space.FixedWidth = max(0, width)
	} else {
		space.ShrinkToFit = true
	}
	res := lc.independentLayout(it.id, space, nil)
	return res.node.Height - it.mainDeco
}

// collectLines distributes the items on lines.
// See https://www.w3.org/TR/css-flexbox-1/#algo-line-break
func (fc *flexContainer) collectLines(items []*flexItem) []flexLine {
	if !fc.wrap || len(items) == 0 {
		return []flexLine{{items: items}}
	}
	avail := fc.availableMain()
	var lines []flexLine
	var current flexLine
	var used Fl
	for _, it := range items {
		size := it.outerHypothetical()
		if len(current.items) != 0 && used+fc.gapMain+size > avail {
			lines = append(lines, current)
			current, used = flexLine{}, 0
		}
		if len(current.items) != 0 {
			used += fc.gapMain
		}
		current.items = append(current.items, it)
		used += size
	}
	return append(lines, current)
}

// resolveFlexibleLengths distributes the free space of a line, in at
// most FlexMaxRounds rounds of freezing.
// See https://www.w3.org/TR/css-flexbox-1/#resolve-flexible-lengths
func (fc *flexContainer) resolveFlexibleLengths(line flexLine) {
	avail := fc.availableMain()
	gaps := fc.gapMain * Fl(max(0, len(line.items)-1))
	// 9.7.1
	if !utils.IsFinite(avail) {
		for _, it := range line.items {
			it.target, it.frozen = it.hypothetical, true
		}
		return
	}
	avail -= gaps
	growing := line.sum() < avail

	// 9.7.2: size inflexible items
	for _, it := range line.items {
		it.target, it.frozen = it.hypothetical, false
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		if factor == 0 || (growing && it.baseSize > it.hypothetical) || (!growing && it.baseSize < it.hypothetical) {
			it.frozen = true
		}
	}

	// 9.7.3: initial free space
	free := func() Fl {
		s := avail
		for _, it := range line.items {
			if it.frozen {
				s -= it.target + it.mainDeco + it.mainMargins
			} else {
				s -= it.baseSize + it.mainDeco + it.mainMargins
			}
		}
		return s
	}
	initial := free()

	// 9.7.4: loop
	rounds := 0
	for ; rounds < fc.lc.cfg.FlexMaxRounds && !line.allFrozen(); rounds++ {
		remaining := free()
		var sumFactors Fl
		for _, it := range line.items {
			if !it.frozen {
				if growing {
					sumFactors += it.grow
				} else {
					sumFactors += it.shrink
				}
			}
		}
		if sumFactors < 1 {
			if v := initial * sumFactors; utils.Abs(v) < utils.Abs(remaining) {
				remaining = v
			}
		}

		// 9.7.4.c: distribute
		if remaining != 0 {
			var sumScaled Fl
			for _, it := range line.items {
				if !it.frozen {
					sumScaled += it.shrink * it.baseSize
				}
			}
			for _, it := range line.items {
				if it.frozen {
					continue
				}
				if growing {
					it.target = it.baseSize + remaining*it.grow/sumFactors
				} else if sumScaled > 0 {
					it.target = it.baseSize + remaining*(it.shrink*it.baseSize)/sumScaled
				}
			}
		} else {
			for _, it := range line.items {
				if !it.frozen {
					it.target = it.baseSize
				}
			}
		}

		// 9.7.4.d: fix min and max violations
		var total Fl
		for _, it := range line.items {
			if it.frozen {
				continue
			}
			clamped := utils.Clamp(it.target, it.minMain, it.maxMain)
			clamped = max(0, clamped)
			it.violation = clamped - it.target
			it.target = clamped
			total += it.violation
		}

		// 9.7.4.e: freeze over-flexed items
		for _, it := range line.items {
			if it.frozen {
				continue
			}
			switch {
			case total == 0:
				it.frozen = true
			case total > 0 && it.violation > 0:
				it.frozen = true
			case total < 0 && it.violation < 0:
				it.frozen = true
			}
		}
	}
	if !line.allFrozen() {
		logger.WarningLogger.Log("flex lengths did not converge",
			zap.String("box", fc.lc.tree.Tag(fc.id)), zap.Int("rounds", rounds))
	}
	// 9.7.5: use the last distribution
	for _, it := range line.items {
		it.frozen = true
	}
}

// isStretchAligned returns true for items stretched in the cross axis,
// if their cross size is auto.
func (fc *flexContainer) isStretchAligned(it *flexItem) bool {
	return it.align == kw.Stretch || it.align == kw.Normal
}

func (fc *flexContainer) isStretched(it *flexItem) bool {
	if !fc.isStretchAligned(it) {
		return false
	}
	if fc.row {
		return it.m.height == -1 && !it.m.marginAuto[pr.STop] && !it.m.marginAuto[pr.SBottom]
	}
	return it.m.width == -1 && !it.m.marginAuto[pr.SLeft] && !it.m.marginAuto[pr.SRight]
}

// layoutItem lays out the item with its used main size, and a
// cross size (border box) or -1.
func (fc *flexContainer) layoutItem(it *flexItem, cross Fl) {
	cbHeight := utils.Inf
	if fc.height != -1 {
		cbHeight = fc.height
	}
	space := NewConstraintSpace(fc.width, cbHeight)
	if fc.row {
		space.FixedWidth = it.target + it.mainDeco
		space.FixedHeight = cross
	} else {
		space.FixedHeight = it.target + it.mainDeco
		switch {
		case cross >= 0:
			space.FixedWidth = cross
		case fc.isStretched(it):
			space.FixedWidth = max(0, fc.width-it.crossMargins)
		default:
			space.ShrinkToFit = true
		}
	}
	it.res = fc.lc.independentLayout(it.id, space, nil)
	n := it.res.node
	if fc.row {
		it.cross = n.Height
		it.baseline = n.Margin[pr.STop] + n.Height
		if n.HasBaseline {
			it.baseline = n.Margin[pr.STop] + n.Baseline
		}
	} else {
		it.cross = n.Width
	}
}

// lineCrossSizes computes the cross size of each line.
// See https://www.w3.org/TR/css-flexbox-1/#algo-cross-line
func (fc *flexContainer) lineCrossSizes(lines []flexLine) {
	if len(lines) == 1 && !fc.wrap {
		if c := fc.crossSize(); c != -1 {
			lines[0].cross = c
			fc.setBaselines(&lines[0])
			return
		}
	}
	for i := range lines {
		line := &lines[i]
		fc.setBaselines(line)
		var maxDescent Fl
		for _, it := range line.items {
			outer := it.cross + it.crossMargins
			if fc.row && it.align == kw.Baseline {
				maxDescent = max(maxDescent, outer-it.baseline)
				continue
			}
			line.cross = max(line.cross, outer)
		}
		line.cross = max(line.cross, line.baseline+maxDescent)
	}
}

func (fc *flexContainer) setBaselines(line *flexLine) {
	if !fc.row {
		return
	}
	for _, it := range line.items {
		if it.align == kw.Baseline {
			line.baseline = max(line.baseline, it.baseline)
		}
	}
}

func (fc *flexContainer) containerCross(lines []flexLine) Fl {
	if c := fc.crossSize(); c != -1 {
		return c
	}
	var s Fl
	for i, line := range lines {
		if i > 0 {
			s += fc.gapCross
		}
		s += line.cross
	}
	if fc.row {
		return fc.m.clampHeight(s)
	}
	return s
}

// alignContent positions the lines in the cross axis.
// See https://www.w3.org/TR/css-flexbox-1/#align-content-property
func (fc *flexContainer) alignContent(lines []flexLine, containerCross Fl) {
	var used Fl
	for i, line := range lines {
		if i > 0 {
			used += fc.gapCross
		}
		used += line.cross
	}
	free := containerCross - used
	align := fc.lc.box(fc.id).Style.GetAlignContent()
	if !fc.wrap {
		// single-line containers stretch their line
		lines[0].cross = max(lines[0].cross, containerCross)
		return
	}
	pos, between := Fl(0), fc.gapCross
	n := Fl(len(lines))
	switch align {
	case kw.FlexEnd, kw.End:
		pos = free
	case kw.Center:
		pos = free / 2
	case kw.SpaceBetween:
		if len(lines) > 1 && free > 0 {
			between += free / (n - 1)
		}
	case kw.SpaceAround:
		if free > 0 {
			pos = free / n / 2
			between += free / n
		}
	case kw.SpaceEvenly:
		if free > 0 {
			pos = free / (n + 1)
			between += free / (n + 1)
		}
	case kw.Stretch, kw.Normal:
		if free > 0 {
			for i := range lines {
				lines[i].cross += free / n
			}
		}
	}
	for i := range lines {
		lines[i].pos = pos
		pos += lines[i].cross + between
	}
}

// justify positions the items in the main axis.
// See https://www.w3.org/TR/css-flexbox-1/#justify-content-property
func (fc *flexContainer) justify(line flexLine) {
	free := fc.mainSize()
	if free == -1 {
		free = 0
		for _, it := range line.items {
			free += it.outerTarget()
		}
	}
	var autoMargins int
	for i, it := range line.items {
		free -= it.outerTarget()
		if i > 0 {
			free -= fc.gapMain
		}
		if fc.row {
			autoMargins += boolInt(it.m.marginAuto[pr.SLeft]) + boolInt(it.m.marginAuto[pr.SRight])
		} else {
			autoMargins += boolInt(it.m.marginAuto[pr.STop]) + boolInt(it.m.marginAuto[pr.SBottom])
		}
	}
	pos, between := Fl(0), fc.gapMain
	n := Fl(len(line.items))
	if autoMargins > 0 && free > 0 {
		// auto margins absorb the free space
		share := free / Fl(autoMargins)
		for _, it := range line.items {
			before, after := it.m.marginAuto[pr.SLeft], it.m.marginAuto[pr.SRight]
			if !fc.row {
				before, after = it.m.marginAuto[pr.STop], it.m.marginAuto[pr.SBottom]
			}
			if before {
				pos += share
			}
			it.mainPos = pos
			pos += it.outerTarget() + between
			if after {
				pos += share
			}
		}
		return
	}
	switch fc.lc.box(fc.id).Style.GetJustifyContent() {
	case kw.FlexEnd, kw.End, kw.Right:
		pos = free
	case kw.Center:
		pos = free / 2
	case kw.SpaceBetween:
		if len(line.items) > 1 && free > 0 {
			between += free / (n - 1)
		}
	case kw.SpaceAround:
		if free > 0 {
			pos = free / n / 2
			between += free / n
		}
	case kw.SpaceEvenly:
		if free > 0 {
			pos = free / (n + 1)
			between += free / (n + 1)
		}
	}
	for _, it := range line.items {
		it.mainPos = pos
		pos += it.outerTarget() + between
	}
}

// alignItems positions the items in the cross axis of their line.
func (fc *flexContainer) alignItems(line flexLine) {
	for _, it := range line.items {
		outer := it.cross + it.crossMargins
		free := line.cross - outer
		before, after := it.m.marginAuto[pr.STop], it.m.marginAuto[pr.SBottom]
		if !fc.row {
			before, after = it.m.marginAuto[pr.SLeft], it.m.marginAuto[pr.SRight]
		}
		switch {
		case before && after:
			it.crossPos = max(0, free/2)
		case before:
			it.crossPos = max(0, free)
		case after:
			it.crossPos = 0
		default:
			switch it.align {
			case kw.FlexEnd, kw.End:
				it.crossPos = free
			case kw.Center:
				it.crossPos = free / 2
			case kw.Baseline:
				if fc.row {
					it.crossPos = line.baseline - it.baseline
				}
			default:
				it.crossPos = 0
			}
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// flexIntrinsicWidth returns the preferred width of the content of a
// flex container.
func (lc *layoutContext) flexIntrinsicWidth(id BoxID, mode sizingMode) Fl {
	box := lc.box(id)
	row := isFlexRow(box.Style)
	wrap := box.Style.GetFlexWrap() != kw.NoWrap
	gap := columnGap(box.Style, 0)
	if box.Style.GetColumnGap().S == "normal" {
		gap = 0
	}
	var sum, largest Fl
	n := 0
	for _, c := range box.Children {
		if lc.box(c).IsAbsolutelyPositioned() {
			continue
		}
		w := lc.intrinsicWidth(c, mode)
		sum += w
		largest = max(largest, w)
		n++
	}
	if !row || (mode == minContent && wrap) {
		return largest
	}
	return sum + gap*Fl(max(0, n-1))
}
