package layout

import (
	"slices"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
)

// ---------------------- Absolutely positioned boxes management. ----------------

// Absolutely positioned boxes are laid out once their containing block
// is known: they bubble up from their static position as [pendingAbs]
// until an ancestor with "position" other than static is found, or
// up to the page for fixed boxes.

// placeAbsolutes lays out the boxes of [abs] whose containing block
// is the padding box of [node], the fragment of [id]. It returns the
// (possibly new) node, and the boxes waiting for an other containing block.
func (lc *layoutContext) placeAbsolutes(id BoxID, node *Node, abs []pendingAbs) (*Node, []pendingAbs) {
	if len(abs) == 0 || lc.box(id).Style.GetPosition() == kw.Static {
		return node, abs
	}
	var local, rest []pendingAbs
	for _, a := range abs {
		if a.fixed {
			rest = append(rest, a)
		} else {
			local = append(local, a)
		}
	}
	if len(local) == 0 {
		return node, rest
	}
	x, y := node.Border[pr.SLeft], node.Border[pr.STop]
	w, h := node.Width-node.Border.Horizontal(), node.Height-node.Border.Vertical()
	nodes, fixed := lc.layoutAbsolutes(local, x, y, w, h)
	out := *node
	out.Children = append(slices.Clip(node.Children), nodes...)
	return &out, append(rest, fixed...)
}

// layoutAbsolutes lays out [abs] in the containing block (x, y, w, h).
// Static positions and the containing block are in the coordinates of
// the same fragment. Fixed boxes found inside are returned, relative to
// the same fragment.
func (lc *layoutContext) layoutAbsolutes(abs []pendingAbs, x, y, w, h Fl) ([]*Node, []pendingAbs) {
	nodes := make([]*Node, len(abs))
	nested := make([][]pendingAbs, len(abs))
	lc.parallelFor(len(abs), func(i int) BoxID { return abs[i].box }, func(i int) {
		res := lc.absoluteLayout(abs[i], x, y, w, h)
		nodes[i] = res.node
		nested[i] = res.translatedAbsolutes(res.node.X, res.node.Y)
	})
	var fixed []pendingAbs
	for _, l := range nested {
		fixed = append(fixed, l...)
	}
	return nodes, fixed
}

// layoutInitialAbsolutes lays out the boxes bubbling up to the initial
// containing block (x, y, w, h), including the fixed boxes found inside them.
func (lc *layoutContext) layoutInitialAbsolutes(abs []pendingAbs, x, y, w, h Fl) []*Node {
	var out []*Node
	for len(abs) != 0 {
		var nodes []*Node
		nodes, abs = lc.layoutAbsolutes(abs, x, y, w, h)
		out = append(out, nodes...)
	}
	return out
}

// absoluteLayout lays out one absolutely positioned box.
// The returned node is positioned in the coordinates of the fragment
// holding the containing block (x, y, w, h).
// See https://www.w3.org/TR/CSS21/visudet.html#abs-non-replaced-width
func (lc *layoutContext) absoluteLayout(a pendingAbs, x, y, w, h Fl) result {
	box := lc.box(a.box)
	style := box.Style
	m := resolvePercentages(style, w, h)
	left, hasLeft := resolveOnePercentage(style.GetLeft(), w)
	right, hasRight := resolveOnePercentage(style.GetRight(), w)
	top, hasTop := resolveOnePercentage(style.GetTop(), h)
	bottom, hasBottom := resolveOnePercentage(style.GetBottom(), h)

	width, height := m.width, m.height
	if box.Type == boxes.ReplacedT {
		width, height = lc.replacedSize(a.box, width, height, w)
	}
	if width == -1 {
		available := w - left - right - m.margin.Horizontal() - m.decorationWidth()
		if hasLeft && hasRight {
			width = max(0, available)
		} else {
			width = lc.shrinkToFit(a.box, available)
		}
	}
	width = m.clampWidth(width)
	if height == -1 && hasTop && hasBottom {
		height = max(0, h-top-bottom-m.margin.Vertical()-m.decorationHeight())
	}

	// auto margins center the box when the offsets are known
	if hasLeft && hasRight {
		free := w - left - right - width - m.decorationWidth() - m.margin.Horizontal()
		switch l, r := m.marginAuto[pr.SLeft], m.marginAuto[pr.SRight]; {
		case l && r:
			if free > 0 {
				m.margin[pr.SLeft], m.margin[pr.SRight] = free/2, free/2
			}
		case l:
			m.margin[pr.SLeft] = free
		case r:
			m.margin[pr.SRight] = free
		}
	}

	space := NewConstraintSpace(w, h)
	space.FixedWidth = width + m.decorationWidth()
	if height != -1 {
		space.FixedHeight = m.clampHeight(height) + m.decorationHeight()
	}
	res := lc.independentLayout(a.box, space, nil)
	node := res.node

	var nx, ny Fl
	switch {
	case hasLeft:
		nx = x + left + m.margin[pr.SLeft]
	case hasRight:
		nx = x + w - right - m.margin[pr.SRight] - node.Width
	default:
		nx = a.x + m.margin[pr.SLeft]
	}
	switch {
	case hasTop:
		ny = y + top + m.margin[pr.STop]
	case hasBottom:
		ny = y + h - bottom - m.margin[pr.SBottom] - node.Height
	default:
		ny = a.y + m.margin[pr.STop]
	}
	node = node.At(nx, ny)
	node.Margin = m.margin
	res.node = node
	return res
}
