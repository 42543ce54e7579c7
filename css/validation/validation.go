// Package validation expands shorthands and validates property values,
// turning the raw declarations of a stylesheet into typed values.
//
// See http://www.w3.org/TR/CSS21/propidx.html and various CSS3 modules.
//
// Invalid declarations are discarded one by one: they never invalidate
// the whole block. Declarations using var() are kept as [pr.VarTokens],
// and validated after substitution.
package validation

import (
	"errors"
	"fmt"
	"math"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/logger"
)

var ErrInvalidValue = errors.New("invalid or unsupported values for a known CSS property")

type Token = pa.Token

// Declaration is the input form of a CSS property,
// possibly containing variables.
type Declaration struct {
	// Name is zero for custom properties
	Name pr.KnownProp
	// Var is the name of a custom property, with leading --
	Var       string
	Value     pr.DeclaredValue
	Important bool
}

func (d Declaration) String() string {
	name := d.Var
	if d.Name != 0 {
		name = d.Name.String()
	}
	return name + ": " + d.Value.String()
}

type validator func(tokens []Token) pr.CssProperty // dont support var()

var validators = [pr.NbProps]validator{
	pr.PDisplay:  display,
	pr.PPosition: keywordValidator(kw.Static, kw.Relative, kw.Absolute, kw.Fixed, kw.Sticky),
	pr.PFloat:    keywordValidator(kw.Left, kw.Right, kw.None),
	pr.PClear:    keywordValidator(kw.Left, kw.Right, kw.Both, kw.None),
	pr.PTop:      lengthPercOrAuto,
	pr.PRight:    lengthPercOrAuto,
	pr.PBottom:   lengthPercOrAuto,
	pr.PLeft:     lengthPercOrAuto,
	pr.PZIndex:   intOrAuto,

	pr.PBorderTopColor:    otherColors,
	pr.PBorderRightColor:  otherColors,
	pr.PBorderBottomColor: otherColors,
	pr.PBorderLeftColor:   otherColors,
	pr.PBorderTopStyle:    borderStyle,
	pr.PBorderRightStyle:  borderStyle,
	pr.PBorderBottomStyle: borderStyle,
	pr.PBorderLeftStyle:   borderStyle,
	pr.PBorderTopWidth:    borderWidth,
	pr.PBorderRightWidth:  borderWidth,
	pr.PBorderBottomWidth: borderWidth,
	pr.PBorderLeftWidth:   borderWidth,
	pr.PMarginTop:         lengthPercOrAuto,
	pr.PMarginRight:       lengthPercOrAuto,
	pr.PMarginBottom:      lengthPercOrAuto,
	pr.PMarginLeft:        lengthPercOrAuto,
	pr.PPaddingTop:        positiveLengthPerc,
	pr.PPaddingRight:      positiveLengthPerc,
	pr.PPaddingBottom:     positiveLengthPerc,
	pr.PPaddingLeft:       positiveLengthPerc,
	pr.PBorderCollapse:    keywordValidator(kw.Collapse, kw.Separate),
	pr.PBorderSpacing:     borderSpacing,

	pr.PWidth:     widthHeight,
	pr.PHeight:    widthHeight,
	pr.PMinWidth:  widthHeight,
	pr.PMinHeight: widthHeight,
	pr.PMaxWidth:  maxWidthHeight,
	pr.PMaxHeight: maxWidthHeight,
	pr.PBoxSizing: keywordValidator(kw.ContentBox, kw.BorderBox),

	pr.PColor:           otherColors,
	pr.PBackgroundColor: otherColors,
	pr.PBackgroundImage: backgroundImage,
	pr.POpacity:         opacity,
	pr.PVisibility:      keywordValidator(kw.Visible, kw.Hidden, kw.Collapse),
	pr.POverflow:        keywordValidator(kw.Visible, kw.Hidden, kw.Scroll, kw.Auto, kw.Clip),
	pr.PTransform:       transform,
	pr.PTransformOrigin: transformOrigin,
	pr.PFilter:          filter,

	pr.PFontFamily:     fontFamily,
	pr.PFontSize:       fontSize,
	pr.PFontStyle:      keywordValidator(kw.Normal, kw.Italic, kw.Oblique),
	pr.PFontWeight:     fontWeight,
	pr.PLineHeight:     lineHeight,
	pr.PLetterSpacing:  spacing,
	pr.PWordSpacing:    spacing,
	pr.PTextAlign:      keywordValidator(kw.Left, kw.Right, kw.Center, kw.Justify, kw.Start, kw.End),
	pr.PTextIndent:     lengthPerc,
	pr.PTextTransform:  keywordValidator(kw.None, kw.Uppercase, kw.Lowercase, kw.Capitalize),
	pr.PWhiteSpace:     keywordValidator(kw.Normal, kw.Pre, kw.NoWrap, kw.PreWrap, kw.PreLine),
	pr.PVerticalAlign:  verticalAlign,
	pr.PWritingMode:    keywordValidator(kw.HorizontalTB, kw.VerticalRL, kw.VerticalLR),
	pr.PListStyleType:  keywordValidator(kw.Disc, kw.Circle, kw.Square, kw.Decimal, kw.None),
	pr.PContent:        content,
	pr.PFlexDirection:  keywordValidator(kw.Row, kw.RowReverse, kw.Column, kw.ColumnReverse),
	pr.PFlexWrap:       keywordValidator(kw.NoWrap, kw.Wrap, kw.WrapReverse),
	pr.PFlexGrow:       flexGrowShrink,
	pr.PFlexShrink:     flexGrowShrink,
	pr.PFlexBasis:      flexBasis,
	pr.PJustifyContent: keywordValidator(kw.FlexStart, kw.FlexEnd, kw.Center, kw.SpaceBetween, kw.SpaceAround, kw.SpaceEvenly, kw.Start, kw.End, kw.Left, kw.Right, kw.Normal, kw.Stretch),
	pr.PAlignItems:     keywordValidator(kw.Stretch, kw.FlexStart, kw.FlexEnd, kw.Center, kw.Baseline, kw.Start, kw.End, kw.Normal),
	pr.PAlignSelf:      keywordValidator(kw.Auto, kw.Stretch, kw.FlexStart, kw.FlexEnd, kw.Center, kw.Baseline, kw.Start, kw.End, kw.Normal),
	pr.PAlignContent:   keywordValidator(kw.Stretch, kw.FlexStart, kw.FlexEnd, kw.Center, kw.SpaceBetween, kw.SpaceAround, kw.SpaceEvenly, kw.Start, kw.End, kw.Normal),
	pr.POrder:          integer,
	pr.PRowGap:         gap,
	pr.PColumnGap:      gap,

	pr.PListStylePosition: keywordValidator(kw.Inside, kw.Outside),

	pr.PGridTemplateColumns: gridTemplate,
	pr.PGridTemplateRows:    gridTemplate,
	pr.PGridAutoColumns:     gridAuto,
	pr.PGridAutoRows:        gridAuto,
	pr.PGridAutoFlow:        gridAutoFlow,
	pr.PGridColumnStart:     gridLine,
	pr.PGridColumnEnd:       gridLine,
	pr.PGridRowStart:        gridLine,
	pr.PGridRowEnd:          gridLine,

	pr.PTableLayout: keywordValidator(kw.Auto, kw.Fixed),
	pr.PColumnCount: columnCount,
	pr.PColumnWidth: columnWidth,

	pr.PBreakBefore: breakBeforeAfter,
	pr.PBreakAfter:  breakBeforeAfter,
	pr.PBreakInside: keywordValidator(kw.Auto, kw.Avoid, kw.AvoidPage, kw.AvoidColumn),
	pr.POrphans:     positiveInteger,
	pr.PWidows:      positiveInteger,
}

// Validate validates one declaration, expanding shorthands.
// Custom properties are stored as raw tokens.
func Validate(decl pa.Declaration) ([]Declaration, error) {
	tokens := decl.Value
	if decl.IsCustom() {
		return []Declaration{{Var: decl.Name, Value: pr.RawTokens(tokens), Important: decl.Important}}, nil
	}

	if expander, ok := expanders[decl.Name]; ok {
		props, err := expander(decl.Name, tokens)
		if err != nil {
			return nil, fmt.Errorf("invalid shorthand %s: %w", decl.Name, err)
		}
		out := make([]Declaration, len(props))
		for i, p := range props {
			out[i] = Declaration{Name: p.name, Value: p.property, Important: decl.Important}
		}
		return out, nil
	}

	prop, ok := pr.PropsFromNames[decl.Name]
	if !ok {
		return nil, fmt.Errorf("unknown property %s", decl.Name)
	}
	value, err := validateNonShorthand(prop, tokens)
	if err != nil {
		return nil, err
	}
	return []Declaration{{Name: prop, Value: value, Important: decl.Important}}, nil
}

// PreprocessDeclarations validates a declaration block, filtering unsupported
// properties or invalid values, and expanding shorthand properties.
//
// Properties containing var() tokens are not validated yet.
func PreprocessDeclarations(declarations []pa.Declaration) []Declaration {
	var out []Declaration
	for _, decl := range declarations {
		validated, err := Validate(decl)
		if err != nil {
			logger.WarningLogger.Printf("Ignored `%s`: %s", decl, err)
			continue
		}
		out = append(out, validated...)
	}
	return out
}

// Default validator for non-shorthand properties.
func validateNonShorthand(prop pr.KnownProp, tokens []Token) (pr.DeclaredValue, error) {
	if HasVar(tokens) {
		// Found CSS variable, return pending-substitution values.
		return pr.VarTokens{Tokens: tokens}, nil
	}
	if d := pr.NewDefaultValue(getSingleKeyword(pa.RemoveWhitespace(tokens))); d != 0 {
		return d, nil
	}
	return ValidateKnown(prop, tokens)
}

// ValidateKnown validate one known, non shortand, property,
// whose value does not use var().
func ValidateKnown(prop pr.KnownProp, tokens []Token) (pr.CssProperty, error) {
	if prop <= 0 || prop >= pr.NbProps || validators[prop] == nil {
		return nil, fmt.Errorf("property %s not supported", prop)
	}
	value := validators[prop](pa.RemoveWhitespace(tokens))
	if value == nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidValue, prop, pa.Serialize(tokens))
	}
	return value, nil
}

// HasVar returns true if a var() function is found,
// at any nesting level.
func HasVar(tokens []Token) bool {
	for _, token := range tokens {
		if token.Kind == pa.Function && token.Value == "var" {
			return true
		}
		if len(token.Children) != 0 && HasVar(token.Children) {
			return true
		}
	}
	return false
}

// If `token` is an identifier, return its lower name.
// Otherwise return empty string.
func getKeyword(token Token) string {
	if token.Kind == pa.Ident {
		return token.LowerValue()
	}
	return ""
}

// If `tokens` is a 1-element list of identifier, return its name.
// Otherwise return empty string.
func getSingleKeyword(tokens []Token) string {
	if len(tokens) == 1 {
		return getKeyword(tokens[0])
	}
	return ""
}

// getLength returns a zero Dimension (with 0 unit) if [token] is not a valid length.
func getLength(token Token, negative, percentage bool) pr.Dimension {
	switch token.Kind {
	case pa.Percentage:
		if percentage && (negative || token.Num >= 0) {
			return pr.NewDim(pr.Fl(token.Num), pr.Perc)
		}
	case pa.Dimension:
		unit := pr.NewUnit(token.Unit)
		if unit.IsLength() && (negative || token.Num >= 0) {
			return pr.NewDim(pr.Fl(token.Num), unit)
		}
	case pa.Number:
		if token.Num == 0 {
			return pr.NewDim(0, pr.Px)
		}
	}
	return pr.Dimension{}
}

// Return the value in radians of an <angle> token.
func getAngle(token Token) (pr.Fl, bool) {
	if token.Kind == pa.Dimension {
		unit := pr.NewUnit(token.Unit)
		if unit.IsAngle() {
			return pr.Fl(token.Num) * pr.AnglesToRadians[unit], true
		}
	}
	if token.Kind == pa.Number && token.Num == 0 {
		return 0, true
	}
	return 0, false
}

func getInteger(token Token) (int, bool) {
	if token.Kind == pa.Number && token.IsInt {
		return int(token.Num), true
	}
	return 0, false
}

func getNumber(token Token) (pr.Fl, bool) {
	if token.Kind == pa.Number && !math.IsInf(token.Num, 0) {
		return pr.Fl(token.Num), true
	}
	return 0, false
}

func keywordValidator(allowed ...kw.Keyword) validator {
	return func(tokens []Token) pr.CssProperty {
		k := kw.NewKeyword(getSingleKeyword(tokens))
		if k != 0 && k.IsIn(allowed...) {
			return k
		}
		return nil
	}
}

func display(tokens []Token) pr.CssProperty {
	keyword := getSingleKeyword(tokens)
	switch keyword {
	case "none", "contents":
		return pr.Display{Inner: keyword}
	case "table-caption", "table-row-group", "table-cell",
		"table-header-group", "table-footer-group", "table-row",
		"table-column-group", "table-column":
		return pr.Display{Inner: keyword}
	case "inline-table", "inline-flex", "inline-grid":
		return pr.Display{Outer: "inline", Inner: keyword[7:]}
	case "inline-block":
		return pr.Display{Outer: "inline", Inner: "flow-root"}
	}

	var (
		outside, inside string
		listItem        bool
	)
	for _, token := range tokens {
		switch value := getKeyword(token); value {
		case "block", "inline":
			if outside != "" {
				return nil
			}
			outside = value
		case "flow", "flow-root", "table", "flex", "grid":
			if inside != "" {
				return nil
			}
			inside = value
		case "list-item":
			if listItem {
				return nil
			}
			listItem = true
		default:
			return nil
		}
	}

	if outside == "" {
		outside = "block"
	}
	if inside == "" {
		inside = "flow"
	}
	if listItem && inside != "flow" && inside != "flow-root" {
		return nil
	}
	return pr.Display{Outer: outside, Inner: inside, ListItem: listItem}
}

func lengthPercOrAuto(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "auto" {
		return pr.SToV("auto")
	}
	if l := getLength(tokens[0], true, true); l.Unit != 0 {
		return l.ToValue()
	}
	return nil
}

func lengthPerc(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if l := getLength(tokens[0], true, true); l.Unit != 0 {
			return l.ToValue()
		}
	}
	return nil
}

func positiveLengthPerc(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if l := getLength(tokens[0], false, true); l.Unit != 0 {
			return l.ToValue()
		}
	}
	return nil
}

func widthHeight(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	switch k := getKeyword(tokens[0]); k {
	case "auto", "min-content", "max-content", "fit-content":
		return pr.SToV(k)
	}
	return positiveLengthPerc(tokens)
}

func maxWidthHeight(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	switch k := getKeyword(tokens[0]); k {
	case "none", "min-content", "max-content", "fit-content":
		return pr.SToV(k)
	}
	return positiveLengthPerc(tokens)
}

func intOrAuto(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "auto" {
		return pr.IntOrAuto{Auto: true}
	}
	if v, ok := getInteger(tokens[0]); ok {
		return pr.IntOrAuto{Int: v}
	}
	return nil
}

func integer(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if v, ok := getInteger(tokens[0]); ok {
			return pr.Int(v)
		}
	}
	return nil
}

func positiveInteger(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if v, ok := getInteger(tokens[0]); ok && v >= 1 {
			return pr.Int(v)
		}
	}
	return nil
}

// color is accepted for every color property. For the color property,
// currentColor is resolved as "inherit" during the computation.
func otherColors(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if c := ParseColor(tokens[0]); c.Type != pr.ColorInvalid {
			return c
		}
	}
	return nil
}

func borderStyle(tokens []Token) pr.CssProperty {
	return keywordValidator(kw.None, kw.Hidden, kw.Solid, kw.Dashed, kw.Dotted,
		kw.Double, kw.Groove, kw.Ridge, kw.Inset, kw.Outset)(tokens)
}

func borderWidth(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if l := getLength(tokens[0], false, false); l.Unit != 0 {
		return l.ToValue()
	}
	if k := getKeyword(tokens[0]); k == "thin" || k == "medium" || k == "thick" {
		return pr.SToV(k)
	}
	return nil
}

func borderSpacing(tokens []Token) pr.CssProperty {
	var lengths []pr.Dimension
	for _, token := range tokens {
		l := getLength(token, false, false)
		if l.Unit == 0 {
			return nil
		}
		lengths = append(lengths, l)
	}
	switch len(lengths) {
	case 1:
		return pr.Point{lengths[0], lengths[0]}
	case 2:
		return pr.Point{lengths[0], lengths[1]}
	}
	return nil
}

func backgroundImage(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "none" {
		return pr.Image{}
	}
	if tokens[0].Kind == pa.URL && tokens[0].Value != "" {
		return pr.Image{URL: tokens[0].Value}
	}
	return nil
}

func opacity(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	var v pr.Fl
	switch t := tokens[0]; t.Kind {
	case pa.Number:
		v = pr.Fl(t.Num)
	case pa.Percentage:
		v = pr.Fl(t.Num / 100)
	default:
		return nil
	}
	return pr.Float(math.Min(1, math.Max(0, float64(v))))
}

func transform(tokens []Token) pr.CssProperty {
	if getSingleKeyword(tokens) == "none" {
		return pr.Transforms(nil)
	}
	var out pr.Transforms
	for _, token := range tokens {
		if token.Kind != pa.Function {
			return nil
		}
		f, ok := transformFunction(token)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// filter supports the none keyword and the opacity(), grayscale()
// and blur() functions.
func filter(tokens []Token) pr.CssProperty {
	if getSingleKeyword(tokens) == "none" {
		return pr.Filters(nil)
	}
	var out pr.Filters
	for _, token := range tokens {
		if token.Kind != pa.Function {
			return nil
		}
		f, ok := filterFunction(token)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func filterFunction(token Token) (pr.FilterFunction, bool) {
	args := pa.RemoveWhitespace(token.Children)
	if len(args) > 1 {
		return pr.FilterFunction{}, false
	}
	out := pr.FilterFunction{Name: token.Value}
	switch token.Value {
	case "opacity", "grayscale":
		out.Amount = pr.NewDim(1, pr.Scalar)
		if len(args) == 0 {
			return out, true
		}
		var v pr.Fl
		switch t := args[0]; t.Kind {
		case pa.Number:
			v = pr.Fl(t.Num)
		case pa.Percentage:
			v = pr.Fl(t.Num / 100)
		default:
			return out, false
		}
		if v < 0 || math.IsNaN(float64(v)) {
			return out, false
		}
		out.Amount = pr.NewDim(min(v, 1), pr.Scalar)
	case "blur":
		out.Amount = pr.NewDim(0, pr.Px)
		if len(args) == 0 {
			return out, true
		}
		l := getLength(args[0], false, false)
		if l.Unit == 0 {
			return out, false
		}
		out.Amount = l
	default:
		return out, false
	}
	return out, true
}

func transformFunction(token Token) (pr.TransformFunction, bool) {
	var args []Token
	for _, part := range pa.SplitOnComma(token.Children) {
		part = pa.RemoveWhitespace(part)
		if len(part) != 1 {
			return pr.TransformFunction{}, false
		}
		args = append(args, part[0])
	}
	name := token.Value
	out := pr.TransformFunction{Name: name}
	switch name {
	case "rotate", "skewx", "skewy":
		if len(args) != 1 {
			return out, false
		}
		a, ok := getAngle(args[0])
		if !ok {
			return out, false
		}
		out.Args = []pr.Dimension{pr.NewDim(a, pr.Rad)}
	case "skew":
		if len(args) != 1 && len(args) != 2 {
			return out, false
		}
		for _, arg := range args {
			a, ok := getAngle(arg)
			if !ok {
				return out, false
			}
			out.Args = append(out.Args, pr.NewDim(a, pr.Rad))
		}
		if len(out.Args) == 1 {
			out.Args = append(out.Args, pr.NewDim(0, pr.Rad))
		}
	case "translate", "translatex", "translatey":
		if len(args) == 0 || len(args) > 2 || (name != "translate" && len(args) != 1) {
			return out, false
		}
		for _, arg := range args {
			l := getLength(arg, true, true)
			if l.Unit == 0 {
				return out, false
			}
			out.Args = append(out.Args, l)
		}
		switch name {
		case "translatex":
			out = pr.TransformFunction{Name: "translate", Args: []pr.Dimension{out.Args[0], pr.ZeroPixels}}
		case "translatey":
			out = pr.TransformFunction{Name: "translate", Args: []pr.Dimension{pr.ZeroPixels, out.Args[0]}}
		default:
			if len(out.Args) == 1 {
				out.Args = append(out.Args, pr.ZeroPixels)
			}
		}
	case "scale", "scalex", "scaley":
		if len(args) == 0 || len(args) > 2 || (name != "scale" && len(args) != 1) {
			return out, false
		}
		for _, arg := range args {
			v, ok := getNumber(arg)
			if !ok {
				return out, false
			}
			out.Args = append(out.Args, pr.NewDim(v, pr.Scalar))
		}
		one := pr.NewDim(1, pr.Scalar)
		switch name {
		case "scalex":
			out = pr.TransformFunction{Name: "scale", Args: []pr.Dimension{out.Args[0], one}}
		case "scaley":
			out = pr.TransformFunction{Name: "scale", Args: []pr.Dimension{one, out.Args[0]}}
		default:
			if len(out.Args) == 1 {
				out.Args = append(out.Args, out.Args[0])
			}
		}
	case "matrix":
		if len(args) != 6 {
			return out, false
		}
		for _, arg := range args {
			v, ok := getNumber(arg)
			if !ok {
				return out, false
			}
			out.Args = append(out.Args, pr.NewDim(v, pr.Scalar))
		}
	default:
		return out, false
	}
	return out, true
}

var positionKeywords = map[string]struct {
	dim        pr.Dimension
	horizontal bool
	vertical   bool
}{
	"left":   {pr.NewDim(0, pr.Perc), true, false},
	"right":  {pr.NewDim(100, pr.Perc), true, false},
	"top":    {pr.NewDim(0, pr.Perc), false, true},
	"bottom": {pr.NewDim(100, pr.Perc), false, true},
	"center": {pr.NewDim(50, pr.Perc), true, true},
}

// transformOrigin accepts one or two <position> components.
func transformOrigin(tokens []Token) pr.CssProperty {
	center := pr.NewDim(50, pr.Perc)
	switch len(tokens) {
	case 1:
		if k, ok := positionKeywords[getKeyword(tokens[0])]; ok {
			if k.vertical && !k.horizontal {
				return pr.Point{center, k.dim}
			}
			return pr.Point{k.dim, center}
		}
		if l := getLength(tokens[0], true, true); l.Unit != 0 {
			return pr.Point{l, center}
		}
	case 2:
		k1, ok1 := positionKeywords[getKeyword(tokens[0])]
		k2, ok2 := positionKeywords[getKeyword(tokens[1])]
		if ok1 && ok2 {
			if k1.horizontal && k2.vertical {
				return pr.Point{k1.dim, k2.dim}
			}
			if k1.vertical && k2.horizontal {
				return pr.Point{k2.dim, k1.dim}
			}
			return nil
		}
		x, y := getLength(tokens[0], true, true), getLength(tokens[1], true, true)
		if ok1 && k1.horizontal {
			x = k1.dim
		}
		if ok2 && k2.vertical {
			y = k2.dim
		}
		if x.Unit != 0 && y.Unit != 0 {
			return pr.Point{x, y}
		}
	}
	return nil
}

func fontFamily(tokens []Token) pr.CssProperty {
	var out pr.Strings
	for _, part := range pa.SplitOnComma(tokens) {
		if len(part) == 1 && part[0].Kind == pa.String {
			out = append(out, part[0].Value)
			continue
		}
		var name string
		for i, token := range part {
			if token.Kind != pa.Ident {
				return nil
			}
			if i > 0 {
				name += " "
			}
			name += token.Value
		}
		if name == "" {
			return nil
		}
		out = append(out, name)
	}
	return out
}

func fontSize(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	k := getKeyword(tokens[0])
	if _, ok := pr.FontSizeKeywords[k]; ok || k == "smaller" || k == "larger" {
		return pr.SToV(k)
	}
	return positiveLengthPerc(tokens)
}

// fontWeight returns an Int for absolute weights, and a
// keyword Value for "bolder" and "lighter", resolved during computation.
func fontWeight(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	switch k := getKeyword(tokens[0]); k {
	case "normal":
		return pr.Int(400)
	case "bold":
		return pr.Int(700)
	case "bolder", "lighter":
		return pr.SToV(k)
	}
	if v, ok := getNumber(tokens[0]); ok && v >= 1 && v <= 1000 {
		return pr.Int(v)
	}
	return nil
}

func lineHeight(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "normal" {
		return pr.SToV("normal")
	}
	if v, ok := getNumber(tokens[0]); ok && v >= 0 {
		return pr.NewDim(v, pr.Scalar).ToValue()
	}
	return positiveLengthPerc(tokens)
}

// letter-spacing and word-spacing
func spacing(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "normal" {
		return pr.SToV("normal")
	}
	if l := getLength(tokens[0], true, false); l.Unit != 0 {
		return l.ToValue()
	}
	return nil
}

func verticalAlign(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	switch k := getKeyword(tokens[0]); k {
	case "baseline", "sub", "super", "top", "text-top", "middle", "bottom", "text-bottom":
		return pr.SToV(k)
	}
	return lengthPerc(tokens)
}

func content(tokens []Token) pr.CssProperty {
	switch getSingleKeyword(tokens) {
	case "normal", "none":
		return pr.Contents(nil)
	}
	var out pr.Contents
	for _, token := range tokens {
		switch token.Kind {
		case pa.String:
			out = append(out, pr.ContentItem{Type: "string", Value: token.Value})
		case pa.Ident:
			switch k := token.LowerValue(); k {
			case "open-quote", "close-quote":
				out = append(out, pr.ContentItem{Type: k})
			default:
				return nil
			}
		case pa.Function:
			args := pa.RemoveWhitespace(token.Children)
			if len(args) < 1 || args[0].Kind != pa.Ident {
				return nil
			}
			switch token.Value {
			case "attr":
				if len(args) != 1 {
					return nil
				}
				out = append(out, pr.ContentItem{Type: "attr", Value: args[0].LowerValue()})
			case "counter":
				out = append(out, pr.ContentItem{Type: "counter", Value: args[0].Value})
			default:
				return nil
			}
		default:
			return nil
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func flexGrowShrink(tokens []Token) pr.CssProperty {
	if len(tokens) == 1 {
		if v, ok := getNumber(tokens[0]); ok && v >= 0 {
			return pr.Float(v)
		}
	}
	return nil
}

func flexBasis(tokens []Token) pr.CssProperty {
	if getSingleKeyword(tokens) == "content" {
		return pr.SToV("content")
	}
	return widthHeight(tokens)
}

func gap(tokens []Token) pr.CssProperty {
	if getSingleKeyword(tokens) == "normal" {
		return pr.SToV("normal")
	}
	return positiveLengthPerc(tokens)
}

func columnCount(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "auto" {
		return pr.IntOrAuto{Auto: true}
	}
	if v, ok := getInteger(tokens[0]); ok && v >= 1 {
		return pr.IntOrAuto{Int: v}
	}
	return nil
}

func columnWidth(tokens []Token) pr.CssProperty {
	if len(tokens) != 1 {
		return nil
	}
	if getKeyword(tokens[0]) == "auto" {
		return pr.SToV("auto")
	}
	if l := getLength(tokens[0], false, false); l.Unit != 0 {
		return l.ToValue()
	}
	return nil
}

func breakBeforeAfter(tokens []Token) pr.CssProperty {
	switch k := getSingleKeyword(tokens); k {
	case "always", "left", "right", "recto", "verso":
		return kw.Page
	default:
		return keywordValidator(kw.Auto, kw.Avoid, kw.Page, kw.Column, kw.AvoidPage, kw.AvoidColumn)(tokens)
	}
}
