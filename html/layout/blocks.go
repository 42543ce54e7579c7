package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/text"
	"github.com/benoitkugler/vformat/utils"
)

// Page breaking and layout for block-level and block-container boxes.

// floatContext locates a layout call in its block formatting context.
type floatContext struct {
	bfc *bfcState
	// x is the left of the content box of the containing block and y
	// the origin of the layout call (the top of the pending margins),
	// in the coordinates of the formatting context root.
	x, y Fl
}

func newFloatContext() floatContext { return floatContext{bfc: newBFC()} }

// Return the amount of collapsed margin for a list of adjoining margins.
func collapseMargin(adjoiningMargins []Fl) Fl {
	var maxPos, minNeg Fl
	for _, m := range adjoiningMargins {
		if m > maxPos {
			maxPos = m
		} else if m < minNeg {
			minNeg = m
		}
	}
	return maxPos + minNeg
}

// appendMargin returns a new list, leaving [list] untouched.
func appendMargin(list []Fl, m Fl) []Fl {
	out := make([]Fl, len(list), len(list)+1)
	copy(out, list)
	return append(out, m)
}

// blockWidth resolves the used width and the horizontal margins of
// a block-level box, updating [m].
// See https://www.w3.org/TR/CSS21/visudet.html#blockwidth
func (lc *layoutContext) blockWidth(id BoxID, m *boxMetrics, space ConstraintSpace) {
	if space.FixedWidth >= 0 {
		m.width = max(0, space.FixedWidth-m.decorationWidth())
		return
	}
	cbWidth := space.AvailableWidth
	if m.width == -1 {
		available := cbWidth - m.margin.Horizontal() - m.decorationWidth()
		if space.ShrinkToFit {
			m.width = lc.shrinkToFit(id, available)
		} else {
			m.width = max(0, available)
		}
	}
	m.width = m.clampWidth(m.width)
	if space.ShrinkToFit {
		return
	}
	remaining := cbWidth - m.width - m.decorationWidth() - m.margin.Horizontal()
	switch left, right := m.marginAuto[pr.SLeft], m.marginAuto[pr.SRight]; {
	case left && right:
		if remaining > 0 {
			m.margin[pr.SLeft] = remaining / 2
			m.margin[pr.SRight] = remaining / 2
		}
	case left:
		m.margin[pr.SLeft] = max(0, remaining)
	case right:
		m.margin[pr.SRight] = max(0, remaining)
	default: // over-constrained
		m.margin[pr.SRight] += remaining
	}
}

// isParallel returns true for the in-flow block containers whose
// break values propagate to their first and last children.
func (lc *layoutContext) isParallel(id BoxID) bool {
	box := lc.box(id)
	return box.IsInFlowBlockLevel() && box.Type == boxes.BlockT && !isMulticol(box.Style)
}

func (lc *layoutContext) firstInFlow(children []BoxID, reverse bool) BoxID {
	for i := range children {
		c := children[i]
		if reverse {
			c = children[len(children)-1-i]
		}
		if b := lc.box(c); b.IsInFlowBlockLevel() || b.Type == boxes.LineT {
			return c
		}
	}
	return boxes.NoBox
}

var breakPriorities = map[[2]pr.Keyword]bool{
	{kw.Page, kw.Auto}:          true,
	{kw.Page, kw.Avoid}:         true,
	{kw.Page, kw.AvoidPage}:     true,
	{kw.Page, kw.AvoidColumn}:   true,
	{kw.Column, kw.Auto}:        true,
	{kw.Column, kw.Avoid}:       true,
	{kw.Column, kw.AvoidPage}:   true,
	{kw.Column, kw.AvoidColumn}: true,
	{kw.Avoid, kw.Auto}:         true,
	{kw.AvoidPage, kw.Auto}:     true,
	{kw.AvoidColumn, kw.Auto}:   true,
}

// breakBetween returns the break value between two adjacent siblings,
// combining the break-after values of [before] and its last children
// with the break-before values of [after] and its first children.
// "left" and "right" take priority over everything, "page" and "column"
// over "avoid", which takes priority over "auto".
// See https://drafts.csswg.org/css-break-3/#forced-breaks
func (lc *layoutContext) breakBetween(before, after BoxID) pr.Keyword {
	var values []pr.Keyword
	for id := before; id != boxes.NoBox && lc.isParallel(id); {
		values = append(values, lc.box(id).Style.GetBreakAfter())
		id = lc.firstInFlow(lc.box(id).Children, true)
	}
	// tree order
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	for id := after; id != boxes.NoBox && lc.isParallel(id); {
		values = append(values, lc.box(id).Style.GetBreakBefore())
		id = lc.firstInFlow(lc.box(id).Children, false)
	}
	out := kw.Auto
	for _, v := range values {
		if v == kw.Left || v == kw.Right || breakPriorities[[2]pr.Keyword{v, out}] {
			out = v
		}
	}
	return out
}

// forcedBreak returns true for break values forcing a break in [space].
func forcedBreak(v pr.Keyword, space ConstraintSpace) bool {
	switch v {
	case kw.Page, kw.Left, kw.Right:
		return true
	case kw.Column:
		return space.Columns
	}
	return false
}

// avoidBreak returns true for break values avoiding a break in [space].
func avoidBreak(v pr.Keyword, space ConstraintSpace) bool {
	switch v {
	case kw.Avoid, kw.AvoidPage:
		return true
	case kw.AvoidColumn:
		return space.Columns
	}
	return false
}

// flowSnapshot is the state of a block container before the layout
// of one of its in-flow children, used to break before it.
type flowSnapshot struct {
	child       int
	nodes, abs  int
	floats      int
	cursor      Fl
	pending     []Fl
	top         Fl
	topResolved bool
	placedAny   bool
}

// blockState is the state of the layout of one fragment of a
// block container.
type blockState struct {
	lc    *layoutContext
	id    BoxID
	box   *boxes.Box
	space ConstraintSpace
	token *BreakToken
	fc    floatContext
	m     boxMetrics

	newContext bool
	// content left, relative to the border box, and in the BFC
	contentX, contentXB Fl
	percentHeight       Fl

	// children are positioned with X relative to the border box,
	// and Y in the origin coordinates
	children  []*Node
	absolutes []pendingAbs
	marker    BoxID

	cursor      Fl
	pending     []Fl
	top         Fl
	topResolved bool
	// placedAny is true when in-flow content has been placed
	// in the fragment
	placedAny bool
	firstLine Fl // top of the first line, for the outside marker
	hasLine   bool

	history []flowSnapshot
	out     *BreakToken
	pushed  bool
}

func (b *blockState) resolveTop(y Fl) {
	if !b.topResolved {
		b.top, b.topResolved = y, true
	}
}

func (b *blockState) snapshot(child int) {
	b.history = append(b.history, flowSnapshot{
		child: child, nodes: len(b.children), abs: len(b.absolutes), floats: len(b.fc.bfc.floats),
		cursor: b.cursor, pending: b.pending, top: b.top, topResolved: b.topResolved, placedAny: b.placedAny,
	})
}

func (b *blockState) restore(s flowSnapshot) {
	b.children = b.children[:s.nodes]
	b.absolutes = b.absolutes[:s.abs]
	b.fc.bfc.floats = b.fc.bfc.floats[:s.floats]
	b.cursor, b.pending, b.top, b.topResolved, b.placedAny = s.cursor, s.pending, s.top, s.topResolved, s.placedAny
}

// canBreak returns true if a break may be introduced at this point:
// some content has been placed before, or the fragmentainer already
// holds content.
func (b *blockState) canBreak() bool { return b.placedAny || !b.space.FragmentainerTop }

// breakBefore introduces a break before the child of the snapshot [k],
// looking for an earlier allowed break point when breaks
// are to be avoided. When nothing has been placed before, the
// whole box is pushed to the next fragmentainer.
func (b *blockState) breakBefore(k int) {
	children := b.box.Children
	for j := k; j >= 0; j-- {
		s := b.history[j]
		if !s.placedAny {
			break
		}
		prev := b.lc.firstInFlowBefore(children, s.child)
		if prev != boxes.NoBox && avoidBreak(b.lc.breakBetween(prev, children[s.child]), b.space) {
			continue
		}
		b.restore(s)
		b.out = &BreakToken{Box: b.id, Child: s.child}
		return
	}
	// no allowed break point
	s := b.history[k]
	b.restore(s)
	if !s.placedAny {
		b.pushed = true
		return
	}
	b.out = &BreakToken{Box: b.id, Child: s.child}
}

func (lc *layoutContext) firstInFlowBefore(children []BoxID, i int) BoxID {
	return lc.firstInFlow(children[:i], true)
}

func (lc *layoutContext) indexOf(children []BoxID, id BoxID) int {
	for i, c := range children {
		if c == id {
			return i
		}
	}
	return -1
}

// blockContainerLayout lays out a fragment of the block container [id],
// in normal flow, starting after the pending margins [adjoining] and at
// the position given by [token].
//
// See https://www.w3.org/TR/CSS21/visudet.html#normal-block
func (lc *layoutContext) blockContainerLayout(id BoxID, space ConstraintSpace, fc floatContext, adjoining []Fl, token *BreakToken) result {
	lc.budget.enter()
	box := lc.box(id)
	lc.budget.checkIndex(token.index())

	b := &blockState{
		lc: lc, id: id, box: box, space: space, token: token,
		m:          resolvePercentages(box.Style, space.PercentWidth, space.PercentHeight),
		newContext: establishesBFC(box) || box.Parent == boxes.NoBox,
		marker:     boxes.NoBox,
	}
	m := &b.m
	if space.contentOnly {
		*m = boxMetrics{width: -1, height: -1, maxWidth: utils.Inf, maxHeight: utils.Inf}
		b.newContext = true
	}
	if border, ok := lc.collapsed.Load(id); ok {
		m.border = border.(fragments.Sides)
	}
	lc.blockWidth(id, m, space)
	if space.FixedHeight >= 0 {
		m.height = max(0, space.FixedHeight-m.decorationHeight())
	}
	if token != nil {
		m.margin[pr.STop], m.border[pr.STop], m.padding[pr.STop] = 0, 0, 0
	}

	b.fc = fc
	if b.newContext {
		b.fc = newFloatContext()
	}
	b.contentX = m.border[pr.SLeft] + m.padding[pr.SLeft]
	b.contentXB = b.fc.x + m.margin[pr.SLeft] + b.contentX
	b.percentHeight = utils.Inf
	if m.height != -1 {
		b.percentHeight = m.height
	}

	b.pending = appendMargin(adjoining, m.margin[pr.STop])
	if b.newContext || m.border[pr.STop] != 0 || m.padding[pr.STop] != 0 {
		b.resolveTop(collapseMargin(b.pending))
		b.pending = nil
		b.cursor = b.top + m.border[pr.STop] + m.padding[pr.STop]
	}

	start := 0
	var inner *BreakToken
	if token != nil {
		start, inner = token.Child, token.Inner
	}
	children := box.Children
	for i := start; i < len(children) && b.out == nil && !b.pushed; i++ {
		c := children[i]
		var childToken *BreakToken
		if i == start {
			childToken = inner
		}
		cb := lc.box(c)
		switch {
		case cb.IsAbsolutelyPositioned():
			b.absolutes = append(b.absolutes, pendingAbs{
				box: c, x: b.contentX, y: b.cursor + collapseMargin(b.pending),
				fixed: cb.Style.GetPosition() == kw.Fixed,
			})
		case cb.IsFloated():
			b.layoutFloat(c)
		case cb.IsOutsideMarker():
			b.marker = c
		case cb.Type == boxes.LineT:
			b.snapshot(i)
			b.layoutLines(i, c, token != nil && i == start)
		default:
			b.snapshot(i)
			b.layoutBlockChild(i, c, childToken)
		}
		if b.out != nil || b.pushed {
			break
		}
		// forced breaks between siblings
		if space.fragmenting() && (cb.IsInFlowBlockLevel() || cb.Type == boxes.LineT) {
			next := lc.firstInFlow(children[i+1:], false)
			if next != boxes.NoBox && forcedBreak(lc.breakBetween(c, next), space) {
				b.out = &BreakToken{Box: id, Child: lc.indexOf(children, next)}
			}
		}
	}
	if b.pushed {
		return result{pushed: true}
	}
	return b.finish()
}

func (b *blockState) layoutFloat(c BoxID) {
	lc := b.lc
	space := NewConstraintSpace(b.m.width, b.percentHeight)
	space.ShrinkToFit = true
	res := lc.independentLayout(c, space, nil)
	n := res.node
	y := b.cursor + collapseMargin(b.pending)
	yB := max(b.fc.y+y, b.fc.bfc.clearance(lc.box(c).Style.GetClear()))
	left := lc.box(c).Style.GetFloat() == kw.Left
	xB, yB := b.fc.bfc.place(left, n.MarginWidth(), n.MarginHeight(), yB, b.contentXB, b.contentXB+b.m.width)
	x := xB - b.contentXB + b.contentX + n.Margin[pr.SLeft]
	yy := yB - b.fc.y + n.Margin[pr.STop]
	node := lc.applyRelative(c, n.At(x, yy), b.m.width, b.percentHeight)
	b.children = append(b.children, node)
	b.absolutes = append(b.absolutes, res.translatedAbsolutes(x, yy)...)
}

func (b *blockState) layoutBlockChild(i int, c BoxID, childToken *BreakToken) {
	lc := b.lc
	cb := lc.box(c)
	cm := resolvePercentages(cb.Style, b.m.width, b.percentHeight)

	// clearance
	if clearB := b.fc.bfc.clearance(cb.Style.GetClear()); childToken == nil && utils.IsFinite(clearB) {
		clear := clearB - b.fc.y
		hypothetical := b.cursor + collapseMargin(appendMargin(b.pending, cm.margin[pr.STop]))
		if clear > hypothetical {
			b.resolveTop(b.cursor + collapseMargin(b.pending))
			b.cursor = clear - cm.margin[pr.STop]
			b.pending = nil
		}
	}

	width, dx := b.m.width, Fl(0)
	if establishesBFC(cb) && len(b.fc.bfc.floats) != 0 {
		// formatting context roots do not overlap floats
		y := b.fc.y + b.cursor + collapseMargin(appendMargin(b.pending, cm.margin[pr.STop]))
		l, r := b.fc.bfc.band(y, 1, b.contentXB, b.contentXB+b.m.width)
		width, dx = r-l, l-b.contentXB
	}

	space := b.space.child(width, b.percentHeight)
	space.BlockBudget = b.space.BlockBudget - b.cursor
	space.FragmentainerTop = b.space.FragmentainerTop && !b.placedAny
	space.AvoidBreaks = b.space.AvoidBreaks || cb.Style.GetBreakInside() == kw.Avoid
	if !b.space.fragmenting() {
		space = space.unfragmented()
	}
	res := lc.blockLevelLayout(c, space, floatContext{bfc: b.fc.bfc, x: b.contentXB + dx, y: b.fc.y + b.cursor}, b.pending, childToken)
	k := len(b.history) - 1
	if res.pushed {
		b.breakBefore(k)
		return
	}
	y := b.cursor + res.node.Y
	if b.space.fragmenting() && b.canBreak() && !res.collapsedThrough {
		overflow := res.token == nil && y+res.node.Height > b.space.BlockBudget+1e-3
		avoided := res.token != nil && cb.Style.GetBreakInside() == kw.Avoid
		if (overflow || avoided) && b.placedAny {
			b.breakBefore(k)
			return
		}
		if overflow && !b.space.FragmentainerTop {
			b.breakBefore(k)
			return
		}
	}
	if !res.collapsedThrough {
		b.resolveTop(y)
		b.cursor = y + res.node.Height
		b.placedAny = true
	}
	b.pending = res.after
	x := b.contentX + dx + res.node.X
	node := lc.applyRelative(c, res.node.At(x, y), b.m.width, b.percentHeight)
	b.children = append(b.children, node)
	b.absolutes = append(b.absolutes, res.translatedAbsolutes(x, y)...)
	if res.token != nil {
		b.out = &BreakToken{Box: b.id, Child: i, Inner: res.token}
	}
}

type lineRecord struct {
	item, line int
	nodes, abs int
	floats     int
	cursor     Fl
}

// layoutLines lays out the line box [c], applying orphans and widows
// when the lines are fragmented.
func (b *blockState) layoutLines(i int, c BoxID, resumed bool) {
	lc := b.lc
	st := lc.newInlineState(c, b.box.Style, b.m.width, b.percentHeight)
	item, line := 0, 0
	if resumed {
		item, line = b.token.Item, b.token.Line
	}
	fc := floatContext{bfc: b.fc.bfc, x: b.contentXB, y: b.fc.y}
	orphans, widows := int(b.box.Style.GetOrphans()), int(b.box.Style.GetWidows())

	var records []lineRecord
	for !st.done(item) {
		y := b.cursor + collapseMargin(b.pending)
		rec := lineRecord{item: item, line: line, nodes: len(b.children), abs: len(b.absolutes), floats: len(b.fc.bfc.floats), cursor: b.cursor}
		res := st.layoutLine(item, line, y, fc)
		if res.node != nil {
			if b.space.fragmenting() && y+res.height > b.space.BlockBudget+1e-3 && b.canBreak() {
				floats := b.fc.bfc.floats
				b.fc.bfc.floats = floats[:rec.floats]
				if b.breakLines(i, st, records, rec, orphans, widows) {
					return
				}
				b.fc.bfc.floats = floats
			}
			b.resolveTop(y)
			b.pending = nil
			if !b.hasLine {
				b.firstLine, b.hasLine = y, true
			}
			b.children = append(b.children, res.node.Translate(b.contentX, 0))
			b.cursor = y + res.height
			b.placedAny = true
			records = append(records, rec)
		}
		for _, f := range res.floats {
			b.children = append(b.children, lc.applyRelative(f.Box, f.Translate(b.contentX, 0), b.m.width, b.percentHeight))
		}
		for _, a := range res.absolutes {
			a.x += b.contentX
			b.absolutes = append(b.absolutes, a)
		}
		item = res.end
		line++
	}
}

// breakLines breaks before the line [next], which does not fit.
// It returns false when the line must be placed anyway.
func (b *blockState) breakLines(i int, st *inlineState, records []lineRecord, next lineRecord, orphans, widows int) bool {
	k := len(b.history) - 1
	placed := len(records)
	if placed < orphans {
		if b.history[k].placedAny || !b.space.FragmentainerTop {
			b.breakBefore(k)
			if b.out != nil && b.out.Child == i {
				b.out.Item, b.out.Line = b.lineStart()
			}
			return true
		}
		if placed == 0 {
			return false
		}
	} else if remaining := st.countLines(next.item, next.line); remaining < widows {
		if back := widows - remaining; placed-back >= orphans {
			next = records[placed-back]
			b.truncateLines(next)
		}
	}
	b.out = &BreakToken{Box: b.id, Child: i, Item: next.item, Line: next.line}
	return true
}

// lineStart returns the position of the line box at the start of the fragment.
func (b *blockState) lineStart() (int, int) {
	if b.token != nil && b.token.Child == b.out.Child {
		return b.token.Item, b.token.Line
	}
	return 0, 0
}

func (b *blockState) truncateLines(rec lineRecord) {
	b.children = b.children[:rec.nodes]
	b.absolutes = b.absolutes[:rec.abs]
	b.fc.bfc.floats = b.fc.bfc.floats[:rec.floats]
	b.cursor = rec.cursor
}

// finish resolves the height of the box and builds its fragment.
func (b *blockState) finish() result {
	lc, m := b.lc, &b.m
	if b.out != nil {
		m.margin[pr.SBottom], m.border[pr.SBottom], m.padding[pr.SBottom] = 0, 0, 0
	}
	var out result
	if !b.topResolved {
		empty := b.out == nil && !b.newContext && m.border[pr.SBottom] == 0 && m.padding[pr.SBottom] == 0 &&
			m.height <= 0 && m.minHeight == 0 && b.token == nil
		b.resolveTop(collapseMargin(b.pending))
		if empty {
			// the top and bottom margins are adjoining
			out.collapsedThrough = true
			out.after = appendMargin(b.pending, m.margin[pr.SBottom])
		}
		b.pending = nil
		b.cursor = b.top
	}
	contentTop := b.top + m.border[pr.STop] + m.padding[pr.STop]

	collapseBottom := !out.collapsedThrough && b.out == nil && !b.newContext &&
		m.border[pr.SBottom] == 0 && m.padding[pr.SBottom] == 0 && m.height == -1
	contentBottom := b.cursor
	switch {
	case out.collapsedThrough:
	case collapseBottom:
		out.after = appendMargin(b.pending, m.margin[pr.SBottom])
	default:
		contentBottom += collapseMargin(b.pending)
		if b.out == nil {
			out.after = []Fl{m.margin[pr.SBottom]}
		}
	}
	if b.newContext {
		// floats are contained by formatting context roots
		contentBottom = max(contentBottom, b.fc.bfc.bottom())
	}
	var consumed Fl
	if b.token != nil {
		consumed = b.token.Consumed
	}
	height := max(0, contentBottom-contentTop)
	if m.height != -1 {
		height = max(0, m.height-consumed)
		if b.space.fragmenting() {
			limit := b.space.BlockBudget - contentTop
			switch {
			case b.out != nil:
				// broken by its content: the rest of the fixed
				// height goes to the next fragments
				height = min(height, max(0, limit))
			case height > limit && limit > 0:
				// fixed heights are fragmented too
				b.out = &BreakToken{Box: b.id, Child: len(b.box.Children)}
				m.margin[pr.SBottom], m.border[pr.SBottom], m.padding[pr.SBottom] = 0, 0, 0
				height, out.after = limit, nil
			}
		}
	} else if b.token == nil && b.out == nil {
		height = m.clampHeight(height)
	}

	node := &Node{
		Kind: fragments.BoxK, Box: b.id, Style: b.box.Style,
		X: m.margin[pr.SLeft], Y: b.top,
		Width:  m.width + m.decorationWidth(),
		Height: height + m.border.Vertical() + m.padding.Vertical(),
		Margin: m.margin, Border: m.border, Padding: m.padding,
		Index:     b.token.index(),
		SkipStart: b.token != nil, SkipEnd: b.out != nil,
	}
	node.Children = make([]*Node, len(b.children))
	for i, c := range b.children {
		node.Children[i] = c.Translate(0, -b.top)
		if !node.HasBaseline && c.HasBaseline && (c.Kind == fragments.LineK || (c.Kind == fragments.BoxK && lc.box(c.Box).IsInFlowBlockLevel())) {
			node.Baseline, node.HasBaseline = c.Y-b.top+c.Baseline, true
		}
	}
	if b.marker != boxes.NoBox && b.token == nil {
		node.Children = append(node.Children, b.markerNode(contentTop))
	}
	if traceMode {
		traceLogger.Dump(fmt.Sprintf("block %s: top %g height %g (%d children)", lc.tree.Tag(b.id), b.top, node.Height, len(node.Children)))
	}

	abs := make([]pendingAbs, len(b.absolutes))
	for i, a := range b.absolutes {
		a.y -= b.top
		abs[i] = a
	}
	if b.space.contentOnly {
		out.absolutes = abs
	} else {
		node, out.absolutes = lc.placeAbsolutes(b.id, node, abs)
	}

	if b.out != nil {
		b.out.Index = node.Index
		b.out.Consumed = consumed + height
		out.after = nil
	}
	out.node = node
	out.token = b.out
	return out
}

// markerNode places the outside list marker at the left of the first line.
func (b *blockState) markerNode(contentTop Fl) *Node {
	lc := b.lc
	marker := lc.box(b.marker)
	ts := lc.textStyle(marker.Style)
	metrics := lc.measure.Metrics(ts.FontDescription)
	w := text.Width(lc.measure, ts, marker.Text)
	y := contentTop
	if b.hasLine {
		y = b.firstLine
	}
	a, _ := lc.strut(marker.Style)
	y += a - metrics.Ascent
	gap := marker.Style.GetFontSize().Value / 2
	return &Node{
		Kind: fragments.TextK, Box: b.marker, Style: marker.Style,
		X: b.contentX - w - gap, Y: y - b.top,
		Width: w, Height: metrics.Ascent + metrics.Descent,
		Baseline: metrics.Ascent, HasBaseline: true,
		Text: marker.Text,
	}
}
