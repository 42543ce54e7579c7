// Package keywords efficiently stores the CSS identifiers used
// as computed values of keyword properties.
package keywords

// Keyword efficiently stores CSS keywords
type Keyword uint8

const (
	_ Keyword = iota
	Absolute
	Auto
	Avoid
	AvoidColumn
	AvoidPage
	Baseline
	BorderBox
	Both
	Bottom
	Capitalize
	Center
	Circle
	Clip
	Collapse
	Column
	ColumnReverse
	ContentBox
	Dashed
	Decimal
	Dense
	Disc
	Dotted
	Double
	End
	Fixed
	FlexEnd
	FlexStart
	Groove
	Hidden
	HorizontalTB
	Inset
	Inside
	Italic
	Justify
	Left
	Lowercase
	Middle
	None
	Normal
	NoWrap
	Oblique
	Outset
	Outside
	Page
	Pre
	PreLine
	PreWrap
	Relative
	Ridge
	Right
	Row
	RowReverse
	Scroll
	Separate
	Solid
	SpaceAround
	SpaceBetween
	SpaceEvenly
	Square
	Start
	Static
	Sticky
	Stretch
	Sub
	Super
	TextBottom
	TextTop
	Top
	Uppercase
	VerticalLR
	VerticalRL
	Visible
	Wrap
	WrapReverse

	nbKeywords
)

var names = [nbKeywords]string{
	Absolute:      "absolute",
	Auto:          "auto",
	Avoid:         "avoid",
	AvoidColumn:   "avoid-column",
	AvoidPage:     "avoid-page",
	Baseline:      "baseline",
	BorderBox:     "border-box",
	Both:          "both",
	Bottom:        "bottom",
	Capitalize:    "capitalize",
	Center:        "center",
	Circle:        "circle",
	Clip:          "clip",
	Collapse:      "collapse",
	Column:        "column",
	ColumnReverse: "column-reverse",
	ContentBox:    "content-box",
	Dashed:        "dashed",
	Decimal:       "decimal",
	Dense:         "dense",
	Disc:          "disc",
	Dotted:        "dotted",
	Double:        "double",
	End:           "end",
	Fixed:         "fixed",
	FlexEnd:       "flex-end",
	FlexStart:     "flex-start",
	Groove:        "groove",
	Hidden:        "hidden",
	HorizontalTB:  "horizontal-tb",
	Inset:         "inset",
	Inside:        "inside",
	Italic:        "italic",
	Justify:       "justify",
	Left:          "left",
	Lowercase:     "lowercase",
	Middle:        "middle",
	None:          "none",
	Normal:        "normal",
	NoWrap:        "nowrap",
	Oblique:       "oblique",
	Outset:        "outset",
	Outside:       "outside",
	Page:          "page",
	Pre:           "pre",
	PreLine:       "pre-line",
	PreWrap:       "pre-wrap",
	Relative:      "relative",
	Ridge:         "ridge",
	Right:         "right",
	Row:           "row",
	RowReverse:    "row-reverse",
	Scroll:        "scroll",
	Separate:      "separate",
	Solid:         "solid",
	SpaceAround:   "space-around",
	SpaceBetween:  "space-between",
	SpaceEvenly:   "space-evenly",
	Square:        "square",
	Start:         "start",
	Static:        "static",
	Sticky:        "sticky",
	Stretch:       "stretch",
	Sub:           "sub",
	Super:         "super",
	TextBottom:    "text-bottom",
	TextTop:       "text-top",
	Top:           "top",
	Uppercase:     "uppercase",
	VerticalLR:    "vertical-lr",
	VerticalRL:    "vertical-rl",
	Visible:       "visible",
	Wrap:          "wrap",
	WrapReverse:   "wrap-reverse",
}

var fromNames = func() map[string]Keyword {
	out := make(map[string]Keyword, len(names))
	for k, s := range names {
		if s != "" {
			out[s] = Keyword(k)
		}
	}
	return out
}()

// NewKeyword returns 0 for unknown keywords.
// [s] must be lower case.
func NewKeyword(s string) Keyword { return fromNames[s] }

func (k Keyword) String() string {
	if k < nbKeywords {
		return names[k]
	}
	return ""
}

// IsIn returns true if [k] is one of [l].
func (k Keyword) IsIn(l ...Keyword) bool {
	for _, v := range l {
		if k == v {
			return true
		}
	}
	return false
}
