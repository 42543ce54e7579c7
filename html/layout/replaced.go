package layout

import (
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

// Default size of replaced elements without intrinsic dimension.
const (
	defaultReplacedWidth  = 300
	defaultReplacedHeight = 150
)

// replacedSize returns the used content size of the replaced box [id],
// given its specified [width] and [height] (-1 for auto).
// See https://www.w3.org/TR/CSS21/visudet.html#inline-replaced-width
func (lc *layoutContext) replacedSize(id BoxID, width, height, cbWidth Fl) (Fl, Fl) {
	box := lc.box(id)
	var iw, ih, ratio Fl
	if img := box.Image; img != nil {
		iw, ih, ratio = img.Width, img.Height, img.Ratio
		if ratio == 0 && iw > 0 && ih > 0 {
			ratio = iw / ih
		}
	}
	switch {
	case width == -1 && height == -1:
		switch {
		case iw > 0:
			width = iw
			if ih > 0 {
				height = ih
			} else if ratio > 0 {
				height = width / ratio
			} else {
				height = defaultReplacedHeight
			}
		case ih > 0 && ratio > 0:
			height, width = ih, ih*ratio
		case ratio > 0:
			width = defaultReplacedWidth
			if utils.IsFinite(cbWidth) {
				width = cbWidth
			}
			height = width / ratio
		default:
			width, height = defaultReplacedWidth, defaultReplacedHeight
			if ih > 0 {
				height = ih
			}
		}
	case width == -1:
		switch {
		case ratio > 0:
			width = height * ratio
		case iw > 0:
			width = iw
		default:
			width = defaultReplacedWidth
		}
	case height == -1:
		switch {
		case ratio > 0:
			height = width / ratio
		case ih > 0:
			height = ih
		default:
			height = defaultReplacedHeight
		}
	}
	return width, height
}

// replacedLayout lays out a replaced box, with no fragmentation.
func (lc *layoutContext) replacedLayout(id BoxID, space ConstraintSpace) result {
	box := lc.box(id)
	m := resolvePercentages(box.Style, space.PercentWidth, space.PercentHeight)
	width, height := m.width, m.height
	if space.FixedWidth >= 0 {
		width = max(0, space.FixedWidth-m.decorationWidth())
	}
	if space.FixedHeight >= 0 {
		height = max(0, space.FixedHeight-m.decorationHeight())
	}
	width, height = lc.replacedSize(id, width, height, space.AvailableWidth)
	width, height = m.clampWidth(width), m.clampHeight(height)

	m.width = width
	if !space.ShrinkToFit && box.IsInFlowBlockLevel() {
		lc.blockWidth(id, &m, space) // auto margins
	}

	node := &Node{
		Kind: fragments.ReplacedK, Box: id, Style: box.Style,
		X: m.margin[pr.SLeft], Y: m.margin[pr.STop],
		Width:  width + m.decorationWidth(),
		Height: height + m.decorationHeight(),
		Margin: m.margin, Border: m.border, Padding: m.padding,
		Image: box.Image,
	}
	return result{node: node, after: []Fl{m.margin[pr.SBottom]}}
}
