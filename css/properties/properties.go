package properties

import kw "github.com/benoitkugler/vformat/css/properties/keywords"

// This file is used to generate typed accessors
//go:generate go run gen/gen.go

const (
	_ KnownProp = iota
	PDisplay
	PPosition
	PFloat
	PClear
	PTop
	PRight
	PBottom
	PLeft
	PZIndex

	// the following properties are grouped by side,
	// in the [top, right, bottom, left] order,
	// so that, if side in an index (0, 1, 2 or 3),
	// the property is a PBorderTopColor + side * 5
	// DO NOT CHANGE the order
	PBorderTopColor
	PBorderTopStyle
	PBorderTopWidth
	PMarginTop
	PPaddingTop

	PBorderRightColor
	PBorderRightStyle
	PBorderRightWidth
	PMarginRight
	PPaddingRight

	PBorderBottomColor
	PBorderBottomStyle
	PBorderBottomWidth
	PMarginBottom
	PPaddingBottom

	PBorderLeftColor
	PBorderLeftStyle
	PBorderLeftWidth
	PMarginLeft
	PPaddingLeft

	PBorderCollapse
	PBorderSpacing

	PWidth
	PHeight
	PMinWidth
	PMinHeight
	PMaxWidth
	PMaxHeight
	PBoxSizing

	PColor
	PBackgroundColor
	PBackgroundImage
	POpacity
	PVisibility
	POverflow
	PTransform
	PTransformOrigin
	PFilter

	PFontFamily
	PFontSize
	PFontStyle
	PFontWeight
	PLineHeight
	PLetterSpacing
	PWordSpacing
	PTextAlign
	PTextIndent
	PTextTransform
	PWhiteSpace
	PVerticalAlign
	PWritingMode

	PListStylePosition
	PListStyleType
	PContent

	PFlexDirection
	PFlexWrap
	PFlexGrow
	PFlexShrink
	PFlexBasis
	PJustifyContent
	PAlignItems
	PAlignSelf
	PAlignContent
	POrder
	PRowGap
	PColumnGap

	PGridTemplateColumns
	PGridTemplateRows
	PGridAutoColumns
	PGridAutoRows
	PGridAutoFlow
	PGridColumnStart
	PGridColumnEnd
	PGridRowStart
	PGridRowEnd

	PTableLayout
	PColumnCount
	PColumnWidth

	PBreakBefore
	PBreakAfter
	PBreakInside
	POrphans
	PWidows

	NbProps
)

// Side is an index in the [top, right, bottom, left] order.
type Side uint8

const (
	STop Side = iota
	SRight
	SBottom
	SLeft
)

// BorderColor returns the border-*-color property for [side].
func BorderColor(side Side) KnownProp { return PBorderTopColor + KnownProp(side)*5 }

// BorderStyle returns the border-*-style property for [side].
func BorderStyle(side Side) KnownProp { return PBorderTopStyle + KnownProp(side)*5 }

// BorderWidth returns the border-*-width property for [side].
func BorderWidth(side Side) KnownProp { return PBorderTopWidth + KnownProp(side)*5 }

// Margin returns the margin-* property for [side].
func Margin(side Side) KnownProp { return PMarginTop + KnownProp(side)*5 }

// Padding returns the padding-* property for [side].
func Padding(side Side) KnownProp { return PPaddingTop + KnownProp(side)*5 }

var (
	zeroPixelsValue = FToV(0)
	autoValue       = SToV("auto")
	autoTrack       = TrackList{{Min: autoValue, Max: autoValue}}
)

// InitialValues stores the default values for the CSS properties.
var InitialValues = Properties{
	// CSS 2.1: https://www.w3.org/TR/CSS21/propidx.html
	PDisplay:  Display{Outer: "inline", Inner: "flow"},
	PPosition: kw.Static,
	PFloat:    kw.None,
	PClear:    kw.None,
	PTop:      autoValue,
	PRight:    autoValue,
	PBottom:   autoValue,
	PLeft:     autoValue,
	PZIndex:   IntOrAuto{Auto: true},

	PBorderTopColor:    CurrentColor,
	PBorderRightColor:  CurrentColor,
	PBorderBottomColor: CurrentColor,
	PBorderLeftColor:   CurrentColor,
	PBorderTopStyle:    kw.None,
	PBorderRightStyle:  kw.None,
	PBorderBottomStyle: kw.None,
	PBorderLeftStyle:   kw.None,
	PBorderTopWidth:    FToV(3), // computed value for "medium"
	PBorderRightWidth:  FToV(3),
	PBorderBottomWidth: FToV(3),
	PBorderLeftWidth:   FToV(3),
	PMarginTop:         zeroPixelsValue,
	PMarginRight:       zeroPixelsValue,
	PMarginBottom:      zeroPixelsValue,
	PMarginLeft:        zeroPixelsValue,
	PPaddingTop:        zeroPixelsValue,
	PPaddingRight:      zeroPixelsValue,
	PPaddingBottom:     zeroPixelsValue,
	PPaddingLeft:       zeroPixelsValue,
	PBorderCollapse:    kw.Separate,
	PBorderSpacing:     Point{Dimension{Unit: Px}, Dimension{Unit: Px}},

	PWidth:     autoValue,
	PHeight:    autoValue,
	PMinWidth:  autoValue,
	PMinHeight: autoValue,
	PMaxWidth:  SToV("none"),
	PMaxHeight: SToV("none"),
	PBoxSizing: kw.ContentBox,

	PColor:           Black, // chosen by the user agent
	PBackgroundColor: Transparent,
	PBackgroundImage: Image{},
	POpacity:         Float(1),
	PVisibility:      kw.Visible,
	POverflow:        kw.Visible,
	PTransform:       Transforms(nil),
	PTransformOrigin: Point{{Value: 50, Unit: Perc}, {Value: 50, Unit: Perc}},
	PFilter:          Filters(nil),

	PFontFamily:     Strings{"serif"}, // depends on user agent
	PFontSize:       FToV(16),         // actual value for "medium"
	PFontStyle:      kw.Normal,
	PFontWeight:     Int(400),
	PLineHeight:     SToV("normal"),
	PLetterSpacing:  SToV("normal"),
	PWordSpacing:    zeroPixelsValue,
	PTextAlign:      kw.Start,
	PTextIndent:     zeroPixelsValue,
	PTextTransform:  kw.None,
	PWhiteSpace:     kw.Normal,
	PVerticalAlign:  SToV("baseline"),
	PWritingMode:    kw.HorizontalTB,
	PListStyleType:  kw.Disc,
	PContent:        Contents(nil),
	PFlexDirection:  kw.Row,
	PFlexWrap:       kw.NoWrap,
	PFlexGrow:       Float(0),
	PFlexShrink:     Float(1),
	PFlexBasis:      autoValue,
	PJustifyContent: kw.FlexStart,
	PAlignItems:     kw.Stretch,
	PAlignSelf:      kw.Auto,
	PAlignContent:   kw.Stretch,
	POrder:          Int(0),
	PRowGap:         SToV("normal"),
	PColumnGap:      SToV("normal"),

	PListStylePosition: kw.Outside,

	// Grid Layout (CR): https://www.w3.org/TR/css-grid-1/
	PGridTemplateColumns: TrackList(nil),
	PGridTemplateRows:    TrackList(nil),
	PGridAutoColumns:     autoTrack,
	PGridAutoRows:        autoTrack,
	PGridAutoFlow:        kw.Row,
	PGridColumnStart:     GridLine{Auto: true},
	PGridColumnEnd:       GridLine{Auto: true},
	PGridRowStart:        GridLine{Auto: true},
	PGridRowEnd:          GridLine{Auto: true},

	PTableLayout: kw.Auto,
	PColumnCount: IntOrAuto{Auto: true},
	PColumnWidth: autoValue,

	// Fragmentation (CR): https://www.w3.org/TR/css-break-3/
	PBreakBefore: kw.Auto,
	PBreakAfter:  kw.Auto,
	PBreakInside: kw.Auto,
	POrphans:     Int(2),
	PWidows:      Int(2),
}

// SetK is a set of properties.
type SetK map[KnownProp]struct{}

func NewSetK(props ...KnownProp) SetK {
	out := make(SetK, len(props))
	for _, p := range props {
		out[p] = struct{}{}
	}
	return out
}

func (s SetK) Has(p KnownProp) bool {
	_, ok := s[p]
	return ok
}

// Inherited stores the properties inherited by default.
var Inherited = NewSetK(
	PBorderCollapse,
	PBorderSpacing,
	PColor,
	PVisibility,
	PFontFamily,
	PFontSize,
	PFontStyle,
	PFontWeight,
	PLineHeight,
	PLetterSpacing,
	PWordSpacing,
	PTextAlign,
	PTextIndent,
	PTextTransform,
	PWhiteSpace,
	PWritingMode,
	PListStylePosition,
	PListStyleType,
	POrphans,
	PWidows,
)
