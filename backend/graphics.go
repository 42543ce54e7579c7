// Package backend defines the display list produced from a fragment tree,
// and the interface of the targets it is replayed on.
//
// The display list is a flat sequence of paint commands, in paint order,
// which does not refer to the fragment tree anymore: it may be kept,
// inspected and replayed on several outputs (raster image, debug tracer).
package backend

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/utils"
)

type Fl = utils.Fl

// Rect is an axis aligned rectangle, in CSS pixels,
// with the y axis growing downward.
type Rect struct {
	X, Y, Width, Height Fl
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the intersection of [r] and [o], which may be empty.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.Width, o.X+o.Width), min(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: max(0, x1-x0), Height: max(0, y1-y0)}
}

func (r Rect) isFinite() bool {
	return utils.IsFinite(r.X) && utils.IsFinite(r.Y) && utils.IsFinite(r.Width) && utils.IsFinite(r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X, r.Y, r.Width, r.Height)
}

// LineStyle is the style of a border side.
type LineStyle uint8

const (
	Solid LineStyle = iota
	Dashed
	Dotted
	Double
)

var lineStyleNames = [...]string{
	Solid:  "solid",
	Dashed: "dashed",
	Dotted: "dotted",
	Double: "double",
}

func (s LineStyle) String() string {
	if int(s) < len(lineStyleNames) {
		return lineStyleNames[s]
	}
	return fmt.Sprintf("<unknown LineStyle %d>", s)
}

// NewLineStyle maps a border-style keyword to a line style.
// The 3D styles (groove, ridge, inset, outset) are painted as solid lines.
// It returns false for the styles which are not painted.
func NewLineStyle(k pr.Keyword) (LineStyle, bool) {
	switch k {
	case kw.None, kw.Hidden, 0:
		return 0, false
	case kw.Dashed:
		return Dashed, true
	case kw.Dotted:
		return Dotted, true
	case kw.Double:
		return Double, true
	default:
		return Solid, true
	}
}

// Border is one side of a border, painted as a strip.
type Border struct {
	Strip Rect
	// Horizontal is true for the top and bottom sides.
	Horizontal bool
	Style      LineStyle
	Color      pr.RGBA
}

// Replayer is the target of the display list commands.
//
// Push and Pop methods are always well nested: a Pop call
// matches the last Push call of the same kind.
type Replayer interface {
	// FillRect paints the rectangle with an uniform color.
	FillRect(r Rect, color pr.RGBA)

	// StrokeBorder paints one side of a border.
	StrokeBorder(b Border)

	// DrawText paints a run of glyphs, using the color of the drawing.
	DrawText(text TextDrawing)

	// DrawImage paints the image, scaled to fill [r].
	DrawImage(img *images.Image, r Rect)

	// PushClip intersects the current clip region with [r]
	// until the matching PopClip.
	PushClip(r Rect)
	PopClip()

	// PushTransform applies [mt] as an additional transformation,
	// after the existing one, until the matching PopTransform.
	PushTransform(mt matrix.Transform)
	PopTransform()

	// PushOpacity starts a group, composited with the
	// given alpha (in [0, 1]) by the matching PopOpacity.
	PushOpacity(alpha Fl)
	PopOpacity()

	// PushFilter starts a group, whose content is modified by the
	// filter functions, in order, by the matching PopFilter.
	PushFilter(filters pr.Filters)
	PopFilter()

	// PushStackingContext marks the start of the content of a stacking
	// context, whose border box is [bounds], until the matching
	// PopStackingContext. Replayers are free to ignore it.
	PushStackingContext(bounds Rect)
	PopStackingContext()
}
