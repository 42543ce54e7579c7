package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

// Resolve percentages into fixed values.

// Compute a used length value from a computed length value.
// It returns false for auto values, and for percentages of an
// indefinite size, which behave as auto.
func resolveOnePercentage(value pr.Value, referTo Fl) (Fl, bool) {
	if value.IsKeyword() {
		return 0, false
	}
	if value.Unit == pr.Perc {
		if !utils.IsFinite(referTo) {
			return 0, false
		}
		return value.Value * referTo / 100, true
	}
	return value.Value, true
}

// resolveOrZero returns zero for auto values.
func resolveOrZero(value pr.Value, referTo Fl) Fl {
	v, _ := resolveOnePercentage(value, referTo)
	return v
}

// boxMetrics are the used values of the box model properties.
// Sizes are content box sizes, with -1 for auto.
type boxMetrics struct {
	margin, border, padding fragments.Sides
	marginAuto              [4]bool

	width, height Fl
	minWidth      Fl
	maxWidth      Fl // Inf for none
	minHeight     Fl
	maxHeight     Fl

	// minWidthAuto and minHeightAuto are used by flex items
	minWidthAuto, minHeightAuto bool
}

// resolvePercentages returns the used values of [style], for a containing
// block of the given size ([utils.Inf] for an indefinite size).
// Margins and paddings refer to the width of the containing block.
func resolvePercentages(style *pr.Style, cbWidth, cbHeight Fl) boxMetrics {
	var m boxMetrics
	for side := pr.STop; side <= pr.SLeft; side++ {
		margin := style.Properties[pr.Margin(side)].(pr.Value)
		m.margin[side] = resolveOrZero(margin, cbWidth)
		m.marginAuto[side] = margin.IsAuto()
		m.padding[side] = max(0, resolveOrZero(style.Properties[pr.Padding(side)].(pr.Value), cbWidth))
		m.border[side] = style.Properties[pr.BorderWidth(side)].(pr.Value).Value
	}

	m.width = -1
	if w, ok := resolveOnePercentage(style.GetWidth(), cbWidth); ok {
		m.width = max(0, w)
	}
	m.height = -1
	if h, ok := resolveOnePercentage(style.GetHeight(), cbHeight); ok {
		m.height = max(0, h)
	}
	minWidth := style.GetMinWidth()
	m.minWidthAuto = minWidth.IsAuto()
	m.minWidth = max(0, resolveOrZero(minWidth, cbWidth))
	minHeight := style.GetMinHeight()
	m.minHeightAuto = minHeight.IsAuto()
	m.minHeight = max(0, resolveOrZero(minHeight, cbHeight))
	m.maxWidth = utils.Inf
	if v, ok := resolveOnePercentage(style.GetMaxWidth(), cbWidth); ok {
		m.maxWidth = max(0, v)
	}
	m.maxHeight = utils.Inf
	if v, ok := resolveOnePercentage(style.GetMaxHeight(), cbHeight); ok {
		m.maxHeight = max(0, v)
	}

	if style.GetBoxSizing() == kw.BorderBox {
		dw, dh := m.border.Horizontal()+m.padding.Horizontal(), m.border.Vertical()+m.padding.Vertical()
		if m.width != -1 {
			m.width = max(0, m.width-dw)
		}
		if m.height != -1 {
			m.height = max(0, m.height-dh)
		}
		m.minWidth, m.maxWidth = max(0, m.minWidth-dw), max(0, m.maxWidth-dw)
		m.minHeight, m.maxHeight = max(0, m.minHeight-dh), max(0, m.maxHeight-dh)
	}

	if traceMode {
		traceLogger.Dump(fmt.Sprintf("resolvePercentages: %g %g -> width %g height %g", cbWidth, cbHeight, m.width, m.height))
	}
	return m
}

// decorationWidth returns the horizontal border and padding.
func (m *boxMetrics) decorationWidth() Fl { return m.border.Horizontal() + m.padding.Horizontal() }

// decorationHeight returns the vertical border and padding.
func (m *boxMetrics) decorationHeight() Fl { return m.border.Vertical() + m.padding.Vertical() }

// clampWidth applies max-width, then min-width.
func (m *boxMetrics) clampWidth(w Fl) Fl { return utils.Clamp(w, m.minWidth, m.maxWidth) }

// clampHeight applies max-height, then min-height.
func (m *boxMetrics) clampHeight(h Fl) Fl { return utils.Clamp(h, m.minHeight, m.maxHeight) }

// applyRelative moves [node] by the offsets of a relatively positioned box.
// See https://www.w3.org/TR/CSS21/visuren.html#relative-positioning
func (lc *layoutContext) applyRelative(id BoxID, node *Node, cbWidth, cbHeight Fl) *Node {
	style := lc.box(id).Style
	if style.GetPosition() != kw.Relative {
		return node
	}
	var dx, dy Fl
	if left, ok := resolveOnePercentage(style.GetLeft(), cbWidth); ok {
		dx = left
	} else if right, ok := resolveOnePercentage(style.GetRight(), cbWidth); ok {
		dx = -right
	}
	if top, ok := resolveOnePercentage(style.GetTop(), cbHeight); ok {
		dy = top
	} else if bottom, ok := resolveOnePercentage(style.GetBottom(), cbHeight); ok {
		dy = -bottom
	}
	if dx == 0 && dy == 0 {
		return node
	}
	return node.Translate(dx, dy)
}
