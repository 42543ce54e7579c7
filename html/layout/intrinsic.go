package layout

import (
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/utils"
)

// Preferred widths, used for shrink-to-fit, table columns,
// flex and grid items.
//
// See https://drafts.csswg.org/css-sizing-3/#intrinsic-sizes

type sizingMode uint8

const (
	minContent sizingMode = iota
	maxContent
)

func (m sizingMode) String() string {
	if m == minContent {
		return "min-content"
	}
	return "max-content"
}

type passKey struct {
	id   BoxID
	mode sizingMode
}

// intrinsicWidth returns the min-content or max-content contribution
// of [id]: its outer width, margins included.
// Percentages are cyclic here, and resolved as auto.
func (lc *layoutContext) intrinsicWidth(id BoxID, mode sizingMode) Fl {
	key := passKey{id, mode}
	if v, ok := lc.intrinsics.Load(key); ok {
		return v.(Fl)
	}
	compute := func() Fl { return lc.computeIntrinsicWidth(id, mode) }
	var w Fl
	if lc.cache != nil {
		w = lc.cache.intrinsicSize(lc, id, mode, compute)
	} else {
		w = compute()
	}
	lc.intrinsics.Store(key, w)
	return w
}

func (lc *layoutContext) computeIntrinsicWidth(id BoxID, mode sizingMode) Fl {
	lc.budget.enter()
	box := lc.box(id)
	m := resolvePercentages(box.Style, utils.Inf, utils.Inf)
	w := m.width
	if w == -1 {
		w = lc.intrinsicContentWidth(id, mode)
	}
	w = m.clampWidth(w)
	return w + m.decorationWidth() + m.margin.Horizontal()
}

// intrinsicContentWidth returns the preferred width of the content of [id],
// ignoring its own width properties.
func (lc *layoutContext) intrinsicContentWidth(id BoxID, mode sizingMode) Fl {
	box := lc.box(id)
	switch ContextKindOf(box) {
	case ReplacedContext:
		w, _ := lc.replacedSize(id, -1, -1, utils.Inf)
		return w
	case FlexContext:
		return lc.flexIntrinsicWidth(id, mode)
	case GridContext:
		return lc.gridIntrinsicWidth(id, mode)
	case TableContext:
		return lc.tableIntrinsicWidth(id, mode)
	case MulticolContext:
		count, gap := columnCountAndGap(box.Style)
		return Fl(count)*lc.flowIntrinsicWidth(id, mode) + Fl(count-1)*gap
	case InlineContext:
		return lc.inlineIntrinsicWidth(id, mode, box.Style)
	default:
		return lc.flowIntrinsicWidth(id, mode)
	}
}

// flowIntrinsicWidth is the preferred width of the children of a
// block container.
func (lc *layoutContext) flowIntrinsicWidth(id BoxID, mode sizingMode) Fl {
	box := lc.box(id)
	var out, floats Fl
	for _, c := range box.Children {
		cb := lc.box(c)
		switch {
		case cb.IsAbsolutelyPositioned(), cb.IsOutsideMarker():
		case cb.Type == boxes.LineT:
			out = max(out, lc.inlineIntrinsicWidth(c, mode, box.Style))
		case cb.IsFloated():
			w := lc.intrinsicWidth(c, mode)
			if mode == maxContent {
				// floats may sit side by side
				floats += w
				out = max(out, floats)
			} else {
				out = max(out, w)
			}
		default:
			out = max(out, lc.intrinsicWidth(c, mode))
		}
	}
	return out
}

// inlineIntrinsicWidth is the preferred width of the line box [line]:
// the longest unbreakable run for min-content, and the longest
// line between forced breaks for max-content.
func (lc *layoutContext) inlineIntrinsicWidth(line BoxID, mode sizingMode, container *pr.Style) Fl {
	items := lc.inlineItems(line, utils.Inf, utils.Inf, &mode)
	indent := resolveOrZero(container.GetTextIndent(), 0)
	var out Fl
	if mode == minContent {
		run := indent
		for i := range items {
			it := &items[i]
			if it.kind == itemFloat {
				out = max(out, lc.intrinsicWidth(it.box, mode))
				continue
			}
			run += it.advance()
			if it.breakAfter || it.forced {
				out = max(out, run)
				run = 0
			} else {
				run += it.spaceWidth
			}
		}
		return max(out, run)
	}
	line_, trailing := indent, Fl(0)
	started := false
	for i := range items {
		it := &items[i]
		if it.kind == itemFloat {
			line_ += lc.intrinsicWidth(it.box, mode)
			continue
		}
		if !started && it.kind == itemText && it.text == "" && it.collapsible {
			continue
		}
		started = started || it.hasContent()
		line_ += it.advance() + it.spaceWidth
		trailing = 0
		if it.collapsible {
			trailing = it.spaceWidth
		}
		if it.forced {
			out = max(out, line_-trailing)
			line_, trailing, started = 0, 0, false
		}
	}
	return max(out, line_-trailing)
}

// shrinkToFit returns the content width of [id] for an [available] width:
// min(max(min-content, available), max-content).
// See https://www.w3.org/TR/CSS21/visudet.html#shrink-to-fit-float
func (lc *layoutContext) shrinkToFit(id BoxID, available Fl) Fl {
	minW := lc.intrinsicContentWidth(id, minContent)
	maxW := lc.intrinsicContentWidth(id, maxContent)
	return max(0, min(max(minW, available), maxW))
}

// columnCountAndGap returns the used number of columns and gap,
// for an infinite available width.
func columnCountAndGap(style *pr.Style) (int, Fl) {
	count := 1
	if c := style.GetColumnCount(); !c.Auto {
		count = max(1, c.Int)
	}
	return count, columnGap(style, 0)
}

// columnGap resolves column-gap, "normal" being 1em.
func columnGap(style *pr.Style, cbWidth Fl) Fl {
	gap := style.GetColumnGap()
	if gap.S == "normal" {
		return style.GetFontSize().Value
	}
	return resolveOrZero(gap, cbWidth)
}

// rowGap resolves row-gap, "normal" being 0.
func rowGap(style *pr.Style, cbHeight Fl) Fl {
	gap := style.GetRowGap()
	if gap.S == "normal" {
		return 0
	}
	return resolveOrZero(gap, cbHeight)
}

// isFlexRow returns true for row flex containers.
func isFlexRow(style *pr.Style) bool {
	d := style.GetFlexDirection()
	return d == kw.Row || d == kw.RowReverse
}
