package properties

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benoitkugler/vformat/css/properties/keywords"
)

type Unit uint8

const ( // zero field corresponds to null content
	Scalar Unit = iota + 1 // means no unit, but a valid value
	Perc                   // percentage (%)
	Em
	Ex
	Ch
	Rem
	Vw
	Vh
	Vmin
	Vmax
	Px
	Pt
	Pc
	In
	Cm
	Mm
	Q
	Fr

	Deg
	Rad
	Grad
	Turn
)

var unitNames = [...]string{
	Scalar: "", Perc: "%", Em: "em", Ex: "ex", Ch: "ch", Rem: "rem",
	Vw: "vw", Vh: "vh", Vmin: "vmin", Vmax: "vmax",
	Px: "px", Pt: "pt", Pc: "pc", In: "in", Cm: "cm", Mm: "mm", Q: "q", Fr: "fr",
	Deg: "deg", Rad: "rad", Grad: "grad", Turn: "turn",
}

// NewUnit returns 0 for unknown units. [s] must be lower case.
func NewUnit(s string) Unit {
	for u, name := range unitNames {
		if u != 0 && u != int(Scalar) && name == s {
			return Unit(u)
		}
	}
	return 0
}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "?"
}

// IsAbsolute returns true for units with a fixed ratio to pixels.
func (u Unit) IsAbsolute() bool { return u >= Px && u <= Q }

// IsFontRelative returns true for em, ex, ch and rem.
func (u Unit) IsFontRelative() bool { return u >= Em && u <= Rem }

// IsViewport returns true for vw, vh, vmin and vmax.
func (u Unit) IsViewport() bool { return u >= Vw && u <= Vmax }

// IsLength returns true for every length unit, excluding percentages.
func (u Unit) IsLength() bool { return u >= Em && u <= Q }

// IsAngle returns true for angle units.
func (u Unit) IsAngle() bool { return u >= Deg }

type Dimension struct {
	Value Fl
	Unit  Unit
}

func NewDim(v Fl, u Unit) Dimension { return Dimension{Value: v, Unit: u} }

func (d Dimension) String() string {
	if d.Unit == 0 {
		return "<nil>"
	}
	return strconv.FormatFloat(float64(d.Value), 'g', -1, 32) + d.Unit.String()
}

// ToValue wraps [d] in a Value.
func (d Dimension) ToValue() Value { return Value{Dimension: d} }

// Value is either a keyword (like "auto" or "none") or a dimension.
type Value struct {
	S string
	Dimension
}

// SToV returns a keyword Value.
func SToV(s string) Value { return Value{S: s} }

// FToV returns a pixel Value.
func FToV(f Fl) Value { return Value{Dimension: Dimension{Value: f, Unit: Px}} }

// PercToV returns a percentage Value.
func PercToV(f Fl) Value { return Value{Dimension: Dimension{Value: f, Unit: Perc}} }

func (v Value) String() string {
	if v.S != "" {
		return v.S
	}
	return v.Dimension.String()
}

func (v Value) IsAuto() bool { return v.S == "auto" }
func (v Value) IsNone() bool { return v.S == "none" }

// IsKeyword returns true for keyword values.
func (v Value) IsKeyword() bool { return v.S != "" }

type Float Fl

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }

type Int int

func (i Int) String() string { return strconv.Itoa(int(i)) }

// IntOrAuto is used by z-index and column-count.
type IntOrAuto struct {
	Auto bool
	Int  int
}

func (i IntOrAuto) String() string {
	if i.Auto {
		return "auto"
	}
	return strconv.Itoa(i.Int)
}

type Strings []string

func (ss Strings) String() string { return strings.Join(ss, ", ") }

// Point is a pair of dimensions, like border-spacing
// or transform-origin.
type Point [2]Dimension

func (p Point) String() string { return p[0].String() + " " + p[1].String() }

// RGBA has components in the [0, 1] range.
type RGBA struct {
	R, G, B, A Fl
}

// IsTransparent returns true for a null alpha.
func (c RGBA) IsTransparent() bool { return c.A <= 0 }

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%g,%g,%g,%g)", c.R, c.G, c.B, c.A)
}

type ColorType uint8

const (
	ColorInvalid ColorType = iota
	ColorCurrentColor
	ColorRGBA
)

type Color struct {
	Type ColorType
	RGBA RGBA
}

var (
	CurrentColor = Color{Type: ColorCurrentColor}
	Transparent  = Color{Type: ColorRGBA}
	Black        = Color{Type: ColorRGBA, RGBA: RGBA{A: 1}}
)

func NewColor(r, g, b, a Fl) Color {
	return Color{Type: ColorRGBA, RGBA: RGBA{R: r, G: g, B: b, A: a}}
}

func (c Color) String() string {
	switch c.Type {
	case ColorCurrentColor:
		return "currentColor"
	case ColorRGBA:
		return c.RGBA.String()
	default:
		return "<invalid color>"
	}
}

// Display is the computed value of the display property,
// split into its outer and inner types.
type Display struct {
	// Outer is "block", "inline", or empty for internal table
	// boxes and for "none" and "contents".
	Outer string
	// Inner is one of "flow", "flow-root", "flex", "grid", "table",
	// an internal table type ("table-row", "table-cell", ...),
	// "none" or "contents".
	Inner    string
	ListItem bool
}

func (d Display) String() string {
	var parts []string
	if d.Outer != "" {
		parts = append(parts, d.Outer)
	}
	parts = append(parts, d.Inner)
	if d.ListItem {
		parts = append(parts, "list-item")
	}
	return strings.Join(parts, " ")
}

func (d Display) IsNone() bool { return d.Inner == "none" }

func (d Display) IsContents() bool { return d.Inner == "contents" }

func (d Display) IsBlockLevel() bool { return d.Outer == "block" }

func (d Display) IsInlineLevel() bool { return d.Outer == "inline" }

// IsTableInternal returns true for the display types only valid
// inside a table (rows, cells, columns, captions).
func (d Display) IsTableInternal() bool {
	return strings.HasPrefix(d.Inner, "table-")
}

// IsInlineFlow returns true for "display: inline".
func (d Display) IsInlineFlow() bool { return d.Outer == "inline" && d.Inner == "flow" }

// Blockify returns the block-level equivalent of [d], as required for floats,
// absolutely positioned boxes, the root element and flex or grid items.
func (d Display) Blockify() Display {
	switch {
	case d.IsNone(), d.IsContents():
		return d
	case d.IsTableInternal():
		return Display{Outer: "block", Inner: "flow"}
	default:
		return Display{Outer: "block", Inner: d.Inner, ListItem: d.ListItem}
	}
}

// TransformFunction is one function of a transform list.
// Lengths are in pixels after computation, angles in radians.
type TransformFunction struct {
	Name string
	Args []Dimension
}

func (tf TransformFunction) String() string {
	args := make([]string, len(tf.Args))
	for i, a := range tf.Args {
		args[i] = a.String()
	}
	return tf.Name + "(" + strings.Join(args, ",") + ")"
}

type Transforms []TransformFunction

func (ts Transforms) String() string {
	if len(ts) == 0 {
		return "none"
	}
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// FilterFunction is one function of a filter list.
// Amount is a scalar for opacity() and grayscale(), a length for blur().
type FilterFunction struct {
	Name   string
	Amount Dimension
}

func (f FilterFunction) String() string { return f.Name + "(" + f.Amount.String() + ")" }

type Filters []FilterFunction

func (fs Filters) String() string {
	if len(fs) == 0 {
		return "none"
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Image is the value of background-image. An empty URL means "none".
type Image struct {
	URL string
}

func (im Image) String() string {
	if im.URL == "" {
		return "none"
	}
	return "url(" + im.URL + ")"
}

// ContentItem is one part of the content property.
type ContentItem struct {
	// Type is "string", "attr", "counter", "open-quote" or "close-quote"
	Type string
	// Value is the text of a string, the name of an attribute
	// or the name of a counter.
	Value string
}

// Contents is the value of the content property.
// An empty list means "none" (the computed value of "normal" for
// pseudo-elements).
type Contents []ContentItem

func (cs Contents) String() string {
	if len(cs) == 0 {
		return "none"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Type + ":" + c.Value
	}
	return strings.Join(parts, " ")
}

// TrackSize is one track of a grid template, a compact form of
// either a single breadth V (with Min == Max) or minmax(Min, Max).
// Flexible breadths use the Fr unit.
type TrackSize struct {
	Min, Max Value
}

func (t TrackSize) String() string {
	if t.Min == t.Max {
		return t.Min.String()
	}
	return "minmax(" + t.Min.String() + "," + t.Max.String() + ")"
}

// IsFlexible returns true for fr max breadths.
func (t TrackSize) IsFlexible() bool { return t.Max.S == "" && t.Max.Unit == Fr }

// TrackList is the value of grid-template-rows/columns
// and grid-auto-rows/columns. An empty list means "none".
type TrackList []TrackSize

func (tl TrackList) String() string {
	if len(tl) == 0 {
		return "none"
	}
	parts := make([]string, len(tl))
	for i, t := range tl {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// MaxGridLines bounds the lines and spans of grid placements:
// larger values are clamped, as allowed by css-grid §7.1.
const MaxGridLines = 1000

// GridLine is the value of grid-row-start and friends.
type GridLine struct {
	Auto bool
	// Line is a 1-based index, negative values counting from the end.
	Line int
	// Span is > 0 for "span <n>"
	Span int
}

func (g GridLine) String() string {
	switch {
	case g.Auto:
		return "auto"
	case g.Span > 0:
		return "span " + strconv.Itoa(g.Span)
	default:
		return strconv.Itoa(g.Line)
	}
}

// Keyword is the computed value of keyword properties, like position.
type Keyword = keywords.Keyword
