package document

import (
	"slices"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
)

// StackingContext groups the fragments painted together, following
// the painting order of CSS 2.1 Appendix E.
//
// Real contexts are created by positioned boxes with a z-index, and boxes
// with an opacity, a transform, a filter or a clipping overflow. Positioned boxes with an
// auto z-index, floats and atomic inlines are painted atomically as
// "pseudo" contexts: their own positioned descendants belong to the
// parent context.
type StackingContext struct {
	frag   fragments.FragmentID
	zIndex int
	// real is false for pseudo contexts and for the root
	real bool

	// blocksAndCells are the block-level descendants and the table
	// internal boxes, in tree order.
	blocksAndCells []fragments.FragmentID
	floats         []*StackingContext

	negativeZContexts []*StackingContext
	zeroZContexts     []*StackingContext
	positiveZContexts []*StackingContext

	// atomics are the inline-level pseudo contexts, painted
	// in the middle of their line.
	atomics map[fragments.FragmentID]*StackingContext
	// detached are the descendants painted by an other context.
	detached map[fragments.FragmentID]bool
}

// createsStackingContext returns true for the fragments
// starting a real stacking context.
func createsStackingContext(style *pr.Style) bool {
	if style == nil {
		return false
	}
	if style.GetPosition() != kw.Static && !style.GetZIndex().Auto {
		return true
	}
	return style.GetOpacity() < 1 || len(style.GetTransform()) != 0 ||
		len(style.GetFilter()) != 0 || style.GetOverflow() != kw.Visible
}

// NewStackingContext builds the stacking context tree rooted at [root],
// usually a page fragment.
func NewStackingContext(tree *fragments.Tree, root fragments.FragmentID) *StackingContext {
	return newStackingContext(tree, root, nil)
}

// newStackingContext builds the context of [id]. [parentContexts] is nil for
// real contexts, or the list receiving the descendant contexts of a pseudo context.
func newStackingContext(tree *fragments.Tree, id fragments.FragmentID, parentContexts *[]*StackingContext) *StackingContext {
	sc := &StackingContext{
		frag:     id,
		atomics:  make(map[fragments.FragmentID]*StackingContext),
		detached: make(map[fragments.FragmentID]bool),
	}
	f := tree.Fragment(id)
	if f.Style != nil && f.Style.GetPosition() != kw.Static && !f.Style.GetZIndex().Auto {
		sc.zIndex = f.Style.GetZIndex().Int
	}

	var children []*StackingContext
	contexts := parentContexts
	if contexts == nil {
		contexts = &children
	}
	for _, child := range f.Children {
		sc.dispatch(tree, child, contexts)
	}

	for _, child := range children {
		switch {
		case child.zIndex < 0:
			sc.negativeZContexts = append(sc.negativeZContexts, child)
		case child.zIndex > 0:
			sc.positiveZContexts = append(sc.positiveZContexts, child)
		default:
			sc.zeroZContexts = append(sc.zeroZContexts, child)
		}
	}
	byZ := func(a, b *StackingContext) int { return a.zIndex - b.zIndex }
	slices.SortStableFunc(sc.negativeZContexts, byZ)
	slices.SortStableFunc(sc.positiveZContexts, byZ)
	return sc
}

func (sc *StackingContext) dispatch(tree *fragments.Tree, id fragments.FragmentID, contexts *[]*StackingContext) {
	f := tree.Fragment(id)
	switch f.Kind {
	case fragments.LineK, fragments.ColumnK:
		for _, child := range f.Children {
			sc.dispatch(tree, child, contexts)
		}
		return
	case fragments.TextK:
		return
	}

	var box *boxes.Box
	if f.Box != boxes.NoBox {
		box = tree.Boxes.Box(f.Box)
	}
	style := f.Style

	switch {
	case createsStackingContext(style):
		sc.detached[id] = true
		child := newStackingContext(tree, id, nil)
		child.real = true
		*contexts = append(*contexts, child)
	case style != nil && style.GetPosition() != kw.Static:
		sc.detached[id] = true
		// sub contexts go after the pseudo context
		index := len(*contexts)
		pseudo := newStackingContext(tree, id, contexts)
		*contexts = slices.Insert(*contexts, index, pseudo)
	case box != nil && box.IsFloated():
		sc.detached[id] = true
		sc.floats = append(sc.floats, newStackingContext(tree, id, contexts))
	case box != nil && box.IsAtomicInline():
		sc.atomics[id] = newStackingContext(tree, id, contexts)
	default:
		if box != nil && (box.IsBlockLevel() || box.Type.IsTableInternal()) {
			sc.blocksAndCells = append(sc.blocksAndCells, id)
		}
		for _, child := range f.Children {
			sc.dispatch(tree, child, contexts)
		}
	}
}
