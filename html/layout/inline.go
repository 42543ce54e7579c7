package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/text"
)

type itemKind uint8

const (
	itemText itemKind = iota
	itemOpen          // start of an inline box
	itemClose         // end of an inline box
	itemAtomic
	itemBreak
	itemFloat
	itemAbsolute
)

// inlineItem is an unbreakable piece of inline content.
type inlineItem struct {
	kind itemKind
	box  BoxID

	// text items: a word and the following spaces
	text, space       string
	width, spaceWidth Fl
	collapsible       bool
	// forced is true when a line break must follow the item
	forced bool
	// breakAfter is true for a break opportunity after the item
	breakAfter bool

	// decoration is the margin, border and padding of the start
	// (end) side of an inline box, for itemOpen (itemClose)
	decoration Fl

	atomic result
}

// advance returns the width used by the item, without its trailing spaces.
func (it *inlineItem) advance() Fl {
	switch it.kind {
	case itemText:
		return it.width
	case itemOpen, itemClose:
		return it.decoration
	case itemAtomic:
		return it.atomic.node.MarginWidth()
	}
	return 0
}

// hasContent returns false for items which do not make a line
// box exist on their own.
func (it *inlineItem) hasContent() bool {
	switch it.kind {
	case itemText:
		return it.text != "" || (it.space != "" && !it.collapsible)
	case itemAtomic, itemBreak:
		return true
	case itemOpen, itemClose:
		return it.decoration != 0
	}
	return false
}

// inlineItems flattens the content of the line box [line].
// Atomic inlines are laid out with a containing block of width [cbWidth],
// unless [measure] is not nil, in which case only their intrinsic
// size is computed.
func (lc *layoutContext) inlineItems(line BoxID, cbWidth, cbHeight Fl, measure *sizingMode) []inlineItem {
	var items []inlineItem
	markBreakBefore := func() {
		if n := len(items); n != 0 && (items[n-1].kind == itemText || items[n-1].kind == itemAtomic) {
			items[n-1].breakAfter = true
		}
	}
	var walk func(id BoxID)
	walk = func(id BoxID) {
		box := lc.box(id)
		switch {
		case box.IsAbsolutelyPositioned():
			items = append(items, inlineItem{kind: itemAbsolute, box: id})
		case box.IsFloated():
			items = append(items, inlineItem{kind: itemFloat, box: id})
		case box.Type == boxes.TextT:
			ts := lc.textStyle(box.Style)
			for _, seg := range text.Segments(box.Text, ts.WhiteSpace) {
				items = append(items, inlineItem{
					kind: itemText, box: id,
					text: seg.Text, space: seg.Space,
					width:       text.Width(lc.measure, ts, seg.Text),
					spaceWidth:  text.Width(lc.measure, ts, seg.Space),
					collapsible: ts.WhiteSpace.SpaceCollapse(),
					forced:      seg.Forced,
					breakAfter:  seg.Forced || (seg.Space != "" && ts.WhiteSpace.TextWrap()),
				})
			}
		case box.Type == boxes.LineBreakT:
			items = append(items, inlineItem{kind: itemBreak, box: id, forced: true, breakAfter: true})
		case box.Type == boxes.InlineT:
			m := resolvePercentages(box.Style, cbWidth, cbHeight)
			open := inlineItem{kind: itemOpen, box: id}
			if !box.SkipStart {
				open.decoration = m.margin[pr.SLeft] + m.border[pr.SLeft] + m.padding[pr.SLeft]
			}
			items = append(items, open)
			for _, c := range box.Children {
				walk(c)
			}
			close := inlineItem{kind: itemClose, box: id}
			if !box.SkipEnd {
				close.decoration = m.margin[pr.SRight] + m.border[pr.SRight] + m.padding[pr.SRight]
			}
			items = append(items, close)
		default: // atomic inline
			markBreakBefore()
			it := inlineItem{kind: itemAtomic, box: id, breakAfter: true}
			if measure != nil {
				w := lc.intrinsicWidth(id, *measure)
				it.atomic = result{node: &Node{Width: w}}
			} else {
				space := NewConstraintSpace(cbWidth, cbHeight)
				space.ShrinkToFit = true
				it.atomic = lc.independentLayout(id, space, nil)
			}
			items = append(items, it)
		}
	}
	for _, c := range lc.box(line).Children {
		walk(c)
	}
	return items
}

// nextLineEnd returns the end of the line starting at [start], for a
// line of width [avail], with greedy line breaking.
func nextLineEnd(items []inlineItem, start int, avail, indent Fl) int {
	const epsilon = 1e-3
	x := indent
	lastBreak := -1
	hasContent := false
	for i := start; i < len(items); i++ {
		it := &items[i]
		w := it.advance()
		if hasContent && x+w > avail+epsilon && lastBreak >= start {
			return lastBreak + 1
		}
		x += w
		if it.hasContent() {
			hasContent = true
		}
		if it.forced {
			return i + 1
		}
		if it.breakAfter {
			lastBreak = i
		}
		if hasContent || !it.collapsible {
			x += it.spaceWidth
		}
	}
	return len(items)
}

// inlineFrame is the part of an inline box (or of the line itself)
// laid out on one line.
type inlineFrame struct {
	box   BoxID
	style *pr.Style
	m     boxMetrics

	x0, x1             Fl // border box, in line coordinates
	skipStart, skipEnd bool

	// ascent and descent of the font, for the content area
	ascent, descent Fl
	// ascent and descent of the strut, with half-leading
	strutA, strutD Fl
	// shift is the baseline offset from the parent frame, positive
	// upward, and baseline the position of the baseline from the top
	// of the line
	shift, baseline Fl
	valign          pr.Value

	children []*placedItem
}

type placedItem struct {
	node  *Node // leaf, with X in line coordinates
	frame *inlineFrame

	// ascent and descent of the margin box
	ascent, descent Fl
	shift           Fl
	valign          pr.Value
	// edge is the top of the margin box of top and bottom aligned
	// items, in line coordinates
	edge Fl
}

// lineResult is one line box.
type lineResult struct {
	node   *Node // nil for an empty line
	height Fl
	end    int

	// floats positioned in the container origin coordinates
	floats    []*Node
	absolutes []pendingAbs
}

// inlineState lays out the lines of one line box.
type inlineState struct {
	lc        *layoutContext
	line      BoxID
	container *pr.Style
	items     []inlineItem

	width, percentHeight Fl
	indent               Fl
	align                pr.Keyword

	// strut of the block container
	strutA, strutD Fl

	// open inline boxes before [stackPos]
	stack    []BoxID
	stackPos int
	parts    map[BoxID]int
}

func (lc *layoutContext) newInlineState(line BoxID, container *pr.Style, width, percentHeight Fl) *inlineState {
	st := &inlineState{
		lc: lc, line: line, container: container,
		width: width, percentHeight: percentHeight,
		items: lc.inlineItems(line, width, percentHeight, nil),
		parts: make(map[BoxID]int),
	}
	st.indent = resolveOrZero(container.GetTextIndent(), width)
	st.align = container.GetTextAlign()
	st.strutA, st.strutD = lc.strut(container)
	return st
}

// strut returns the ascent and descent of the line strut of [style],
// including the half-leading.
func (lc *layoutContext) strut(style *pr.Style) (Fl, Fl) {
	height, baseline := text.Strut(lc.measure, lc.textStyle(style), style.GetLineHeight())
	return baseline, height - baseline
}

// openAt returns the inline boxes open before the item [pos].
func (st *inlineState) openAt(pos int) []BoxID {
	if pos < st.stackPos {
		st.stack, st.stackPos = nil, 0
	}
	for ; st.stackPos < pos; st.stackPos++ {
		switch it := st.items[st.stackPos]; it.kind {
		case itemOpen:
			st.stack = append(st.stack, it.box)
		case itemClose:
			if n := len(st.stack); n != 0 {
				st.stack = st.stack[:n-1]
			}
		}
	}
	return append([]BoxID(nil), st.stack...)
}

// countLines returns the number of lines starting at [start].
func (st *inlineState) countLines(start, lineIndex int) int {
	n := 0
	for start < len(st.items) {
		indent := Fl(0)
		if lineIndex+n == 0 {
			indent = st.indent
		}
		start = nextLineEnd(st.items, start, st.width, indent)
		n++
	}
	return n
}

func (st *inlineState) done(pos int) bool { return pos >= len(st.items) }

// layoutLine lays out the line starting at the item [start].
// [y] is the top of the line in the container origin coordinates,
// [fc] positions the origin in the block formatting context.
func (st *inlineState) layoutLine(start, lineIndex int, y Fl, fc floatContext) lineResult {
	lc := st.lc
	lc.budget.enter()

	// available width, taking floats into account
	left, right := fc.bfc.band(fc.y+y, st.strutA+st.strutD, fc.x, fc.x+st.width)
	avail := right - left
	offsetX := left - fc.x

	indent := Fl(0)
	if lineIndex == 0 {
		indent = st.indent
	}
	end := nextLineEnd(st.items, start, avail, indent)
	out := lineResult{end: end}

	open := st.openAt(start)
	items := st.items[start:end]

	// trailing collapsible spaces hang
	lastContent := -1
	for i := range items {
		if items[i].hasContent() {
			lastContent = i
		}
	}

	root := &inlineFrame{box: st.line, style: st.container, strutA: st.strutA, strutD: st.strutD}
	frames := []*inlineFrame{root}
	for _, id := range open {
		f := st.newFrame(id)
		f.skipStart = true
		f.x0 = 0
		frames[len(frames)-1].children = append(frames[len(frames)-1].children, &placedItem{frame: f})
		frames = append(frames, f)
	}

	// justification
	lastLine := end >= len(st.items) || (end > start && st.items[end-1].forced)
	var extra Fl
	if st.align == kw.Justify && !lastLine {
		natural, spaces := st.naturalWidth(items, lastContent, indent)
		if spaces > 0 && avail > natural {
			extra = (avail - natural) / Fl(spaces)
		}
	}

	x := indent
	hasContent := false
	var pendingFloats []inlineItem
	var lastText *Node
	for i := range items {
		it := &items[i]
		current := frames[len(frames)-1]
		trailing := i >= lastContent
		switch it.kind {
		case itemText:
			if !hasContent && it.text == "" && it.collapsible {
				continue // leading spaces
			}
			ts := lc.textStyle(lc.box(it.box).Style)
			s, w := it.text, it.width
			if !trailing || !it.collapsible {
				s += it.space
				w += it.spaceWidth
				if it.space != "" && !trailing {
					w += extra
				}
			}
			if s == "" {
				continue
			}
			if n := len(current.children); n != 0 && lastText != nil && lastText.Box == it.box && extra == 0 && current.children[n-1].node == lastText {
				lastText.Text += s
				lastText.Width += w
			} else {
				metrics := lc.measure.Metrics(ts.FontDescription)
				lastText = &Node{
					Kind: fragments.TextK, Box: it.box, Style: lc.box(it.box).Style,
					X: x, Width: w, Height: metrics.Ascent + metrics.Descent,
					Baseline: metrics.Ascent, HasBaseline: true,
					Text: s, Index: st.part(it.box),
				}
				current.children = append(current.children, &placedItem{
					node: lastText, ascent: current.strutA, descent: current.strutD,
				})
			}
			x += w
			hasContent = hasContent || it.hasContent()
		case itemOpen:
			f := st.newFrame(it.box)
			f.x0 = x + f.m.margin[pr.SLeft]
			if lc.box(it.box).SkipStart {
				f.x0 = x
				f.skipStart = true
			}
			current.children = append(current.children, &placedItem{frame: f})
			frames = append(frames, f)
			x += it.decoration
			lastText = nil
		case itemClose:
			x += it.decoration
			if len(frames) > 1 {
				f := frames[len(frames)-1]
				f.skipEnd = lc.box(it.box).SkipEnd
				f.x1 = x - f.m.margin[pr.SRight]
				if f.skipEnd {
					f.x1 = x
				}
				frames = frames[:len(frames)-1]
			}
			lastText = nil
		case itemAtomic:
			n := it.atomic.node
			a := n.Margin[pr.STop] + n.Height
			if n.HasBaseline {
				a = n.Margin[pr.STop] + n.Baseline
			}
			node := n.At(x+n.Margin[pr.SLeft], 0)
			current.children = append(current.children, &placedItem{
				node: node, ascent: a, descent: n.MarginHeight() - a,
				valign: lc.box(it.box).Style.GetVerticalAlign(),
			})
			out.absolutes = append(out.absolutes, it.atomic.translatedAbsolutes(node.X, 0)...)
			x += n.MarginWidth()
			hasContent = true
			lastText = nil
		case itemBreak:
			hasContent = true
		case itemFloat:
			pendingFloats = append(pendingFloats, *it)
		case itemAbsolute:
			out.absolutes = append(out.absolutes, pendingAbs{
				box: it.box, x: x, y: 0,
				fixed: lc.box(it.box).Style.GetPosition() == kw.Fixed,
			})
		}
	}
	// close the frames still open
	for len(frames) > 1 {
		f := frames[len(frames)-1]
		f.skipEnd = true
		f.x1 = x
		frames = frames[:len(frames)-1]
	}

	if hasContent {
		lineHeight, baseline := st.alignVertically(root)
		free := avail - x
		dx := offsetX
		switch st.align {
		case kw.Right, kw.End:
			dx += free
		case kw.Center:
			dx += free / 2
		}
		node := &Node{
			Kind: fragments.LineK, Box: st.line, Style: st.container,
			X: dx, Y: y, Width: x, Height: lineHeight,
			Baseline: baseline, HasBaseline: true,
			Index: lineIndex,
		}
		node.Children = st.buildNodes(root, 0, 0)
		out.node = node
		out.height = lineHeight
		for i := range out.absolutes {
			out.absolutes[i].x += dx
			out.absolutes[i].y += y
		}
	} else {
		for i := range out.absolutes {
			out.absolutes[i].x += offsetX
			out.absolutes[i].y += y
		}
	}

	// floats start at the top of the line when they fit beside its content
	for _, it := range pendingFloats {
		out.floats = append(out.floats, st.placeFloat(it.box, y, out.height, x, avail, fc, &out))
	}
	return out
}

func (st *inlineState) part(id BoxID) int {
	i := st.parts[id]
	st.parts[id] = i + 1
	return i
}

func (st *inlineState) newFrame(id BoxID) *inlineFrame {
	style := st.lc.box(id).Style
	metrics := st.lc.measure.Metrics(st.lc.textStyle(style).FontDescription)
	f := &inlineFrame{
		box: id, style: style,
		m:      resolvePercentages(style, st.width, st.percentHeight),
		ascent: metrics.Ascent, descent: metrics.Descent,
		valign: style.GetVerticalAlign(),
	}
	f.strutA, f.strutD = st.lc.strut(style)
	return f
}

// naturalWidth returns the width of the line content, and the number
// of expandable spaces.
func (st *inlineState) naturalWidth(items []inlineItem, lastContent int, indent Fl) (Fl, int) {
	w, spaces := indent, 0
	started := false
	for i := range items {
		it := &items[i]
		if it.kind == itemText && !started && it.text == "" && it.collapsible {
			continue
		}
		started = started || it.hasContent()
		w += it.advance()
		if i < lastContent {
			w += it.spaceWidth
			if it.kind == itemText && it.space != "" {
				spaces++
			}
		}
	}
	return w, spaces
}

// verticalShift returns the baseline offset (positive upward) of an
// element with the given ascent and descent, inside [parent].
func verticalShift(valign pr.Value, parent *inlineFrame, ascent, descent Fl, lineHeight Fl) Fl {
	fontSize := parent.style.GetFontSize().Value
	switch valign.S {
	case "", "baseline", "top", "bottom":
		if valign.S == "" {
			if valign.Unit == pr.Perc {
				return valign.Value * lineHeight / 100
			}
			return valign.Value
		}
		return 0
	case "sub":
		return -fontSize / 5
	case "super":
		return fontSize / 3
	case "middle":
		// align the middle with the baseline plus half the x-height
		return fontSize/4 - (ascent-descent)/2
	case "text-top":
		return parent.ascent - ascent
	case "text-bottom":
		return descent - parent.descent
	}
	return 0
}

// alignVertically computes the baselines of the frames and items,
// returning the line height and the baseline of the root.
func (st *inlineState) alignVertically(root *inlineFrame) (Fl, Fl) {
	maxA, maxD := root.strutA, root.strutD
	var edgeAligned []*placedItem // top and bottom
	var visit func(f *inlineFrame, shift Fl)
	visit = func(f *inlineFrame, shift Fl) {
		for _, c := range f.children {
			if c.frame != nil {
				sub := c.frame
				sub.shift = verticalShift(sub.valign, f, sub.strutA, sub.strutD, sub.strutA+sub.strutD)
				total := shift + sub.shift
				maxA, maxD = max(maxA, sub.strutA+total), max(maxD, sub.strutD-total)
				visit(sub, total)
				continue
			}
			if c.valign.S == "top" || c.valign.S == "bottom" {
				edgeAligned = append(edgeAligned, c)
				continue
			}
			c.shift = verticalShift(c.valign, f, c.ascent, c.descent, f.strutA+f.strutD)
			total := shift + c.shift
			maxA, maxD = max(maxA, c.ascent+total), max(maxD, c.descent-total)
		}
	}
	visit(root, 0)
	height := maxA + maxD
	for _, c := range edgeAligned {
		height = max(height, c.ascent+c.descent)
	}
	baseline := maxA
	for _, c := range edgeAligned {
		if c.valign.S == "bottom" {
			c.edge = height - c.ascent - c.descent
		}
	}
	root.baseline = baseline
	return height, baseline
}

// buildNodes converts the frame [f] into fragments, positioned relative
// to the border box of the parent frame at (px, py), in line coordinates.
func (st *inlineState) buildNodes(f *inlineFrame, px, py Fl) []*Node {
	var out []*Node
	for _, c := range f.children {
		if c.frame != nil {
			sub := c.frame
			sub.baseline = f.baseline - sub.shift
			node := st.frameNode(sub)
			node.Children = st.buildNodes(sub, node.X, node.Y)
			out = append(out, node.At(node.X-px, node.Y-py))
			continue
		}
		top := f.baseline - c.shift - c.ascent // margin box
		if c.valign.S == "top" || c.valign.S == "bottom" {
			top = c.edge
		}
		n := c.node
		y := top + n.Margin[pr.STop]
		if n.Kind == fragments.TextK {
			y = f.baseline - c.shift - n.Baseline
		}
		out = append(out, n.At(n.X-px, y-py))
	}
	return out
}

func (st *inlineState) frameNode(f *inlineFrame) *Node {
	border, padding := f.m.border, f.m.padding
	margin := f.m.margin
	if f.skipStart {
		border[pr.SLeft], padding[pr.SLeft], margin[pr.SLeft] = 0, 0, 0
	}
	if f.skipEnd {
		border[pr.SRight], padding[pr.SRight], margin[pr.SRight] = 0, 0, 0
	}
	contentTop := f.baseline - f.ascent
	y := contentTop - padding[pr.STop] - border[pr.STop]
	return &Node{
		Kind: fragments.BoxK, Box: f.box, Style: f.style,
		X: f.x0, Y: y,
		Width:  max(0, f.x1-f.x0),
		Height: f.ascent + f.descent + padding.Vertical() + border.Vertical(),
		Margin: margin, Border: border, Padding: padding,
		Baseline: f.baseline - y, HasBaseline: true,
		SkipStart: f.skipStart, SkipEnd: f.skipEnd,
		Index: st.part(f.box),
	}
}

// placeFloat lays out a float found in a line, starting at [lineY]
// (in the container origin coordinates). The float is moved below
// the line when it does not fit beside its content.
func (st *inlineState) placeFloat(id BoxID, lineY, lineHeight, contentWidth, avail Fl, fc floatContext, line *lineResult) *Node {
	lc := st.lc
	space := NewConstraintSpace(st.width, st.percentHeight)
	space.ShrinkToFit = true
	res := lc.independentLayout(id, space, nil)
	n := res.node
	w, h := n.MarginWidth(), n.MarginHeight()
	y := lineY
	if contentWidth+w > avail {
		y += lineHeight
	}
	left := lc.box(id).Style.GetFloat() == kw.Left
	xB, yB := fc.bfc.place(left, w, h, fc.y+y, fc.x, fc.x+st.width)
	if y == lineY && left && line.node != nil {
		// the float takes the place at the start of the line
		line.node = line.node.Translate(w, 0)
	}
	x, yy := xB-fc.x+n.Margin[pr.SLeft], yB-fc.y+n.Margin[pr.STop]
	line.absolutes = append(line.absolutes, res.translatedAbsolutes(x, yy)...)
	return n.At(x, yy)
}

func (st *inlineState) String() string {
	return fmt.Sprintf("inline content of %s (%d items)", st.lc.tree.Tag(st.line), len(st.items))
}
