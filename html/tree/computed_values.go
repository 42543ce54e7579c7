package tree

import (
	"math"
	"strings"

	"github.com/benoitkugler/textlayout/language"
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/logger"
)

// Convert *specified* property values (the result of the cascade and
// inheritance) into *computed* values (that are inherited).

var (
	// http://www.w3.org/TR/CSS21/fonts.html#propdef-font-weight
	fontWeightRelative = struct {
		bolder, lighter map[int]int
	}{
		bolder: map[int]int{
			100: 400,
			200: 400,
			300: 400,
			400: 700,
			500: 700,
			600: 900,
			700: 900,
			800: 900,
			900: 900,
		},
		lighter: map[int]int{
			100: 100,
			200: 100,
			300: 100,
			400: 100,
			500: 100,
			600: 400,
			700: 400,
			800: 700,
			900: 700,
		},
	}

	keywordsValues []pr.Fl

	// Maps property names to functions returning the computed values.
	// Properties without entry keep their specified value.
	computerFunctions = [pr.NbProps]computerFunc{
		pr.PTop:           length,
		pr.PRight:         length,
		pr.PBottom:        length,
		pr.PLeft:          length,
		pr.PMarginTop:     length,
		pr.PMarginRight:   length,
		pr.PMarginBottom:  length,
		pr.PMarginLeft:    length,
		pr.PPaddingTop:    length,
		pr.PPaddingRight:  length,
		pr.PPaddingBottom: length,
		pr.PPaddingLeft:   length,
		pr.PWidth:         length,
		pr.PHeight:        length,
		pr.PMinWidth:      length,
		pr.PMinHeight:     length,
		pr.PMaxWidth:      length,
		pr.PMaxHeight:     length,
		pr.PTextIndent:    length,
		pr.PFlexBasis:     length,
		pr.PColumnWidth:   length,
		pr.PRowGap:        length,
		pr.PColumnGap:     length,
		pr.PLetterSpacing: length,
		pr.PWordSpacing:   length,
		pr.PVerticalAlign: length,

		pr.PBorderTopWidth:    borderWidth,
		pr.PBorderRightWidth:  borderWidth,
		pr.PBorderBottomWidth: borderWidth,
		pr.PBorderLeftWidth:   borderWidth,

		pr.PBorderSpacing:   point,
		pr.PTransformOrigin: point,
		pr.PTransform:       transforms,
		pr.PFilter:          filters,

		pr.PFontSize:   fontSize,
		pr.PFontWeight: fontWeight,
		pr.PLineHeight: lineHeight,
		pr.PContent:    content,

		pr.PGridTemplateColumns: tracks,
		pr.PGridTemplateRows:    tracks,
		pr.PGridAutoColumns:     tracks,
		pr.PGridAutoRows:        tracks,
	}
)

func init() {
	if pr.InitialValues.GetBorderTopWidth().Value != pr.BorderWidthKeywords["medium"] {
		panic("border-top-width and medium should be the same !")
	}

	keywordsValues = make([]pr.Fl, len(pr.FontSizeKeywordsOrder))
	for i, k := range pr.FontSizeKeywordsOrder {
		keywordsValues[i] = pr.FontSizeKeywords[k]
	}
}

type computerFunc = func(*computer, pr.KnownProp, pr.CssProperty) pr.CssProperty

// computer holds the context needed to compute the values
// of one element or pseudo-element.
type computer struct {
	device Device
	doc    *dom.Document
	// node is the element, or the originating element of a pseudo-element
	node   dom.NodeID
	pseudo string

	parent       *pr.Style // nil for the root element
	rootFontSize pr.Fl

	style *pr.Style // being computed
}

func (c *computer) fontSize() pr.Fl { return c.style.GetFontSize().Value }

// computeStyle applies inheritance, initial values, var() substitution and
// value computation to the cascaded declarations.
func (c *computer) computeStyle(cascaded *cascadedStyle) *pr.Style {
	var parentVars map[string]pr.RawTokens
	if c.parent != nil {
		parentVars = c.parent.Variables
	}
	c.style = &pr.Style{
		Properties: make(pr.Properties, pr.NbProps),
		Variables:  computeVariables(cascaded.vars, parentVars),
	}

	// font-size is needed by every other length, and color by currentColor
	c.computeProperty(pr.PFontSize, cascaded.props[pr.PFontSize].value)
	c.computeProperty(pr.PColor, cascaded.props[pr.PColor].value)
	for p := pr.KnownProp(1); p < pr.NbProps; p++ {
		if p == pr.PFontSize || p == pr.PColor {
			continue
		}
		c.computeProperty(p, cascaded.props[p].value)
	}

	c.fixup()
	c.computeLang()
	return c.style
}

// computeProperty resolves the CSS-wide keywords and var() for [prop],
// then computes its value.
func (c *computer) computeProperty(prop pr.KnownProp, declared pr.DeclaredValue) {
	if vt, ok := declared.(pr.VarTokens); ok {
		declared = c.resolvePending(prop, vt)
	}

	var specified pr.CssProperty
	switch value := declared.(type) {
	case nil:
		c.style.Properties[prop] = c.defaultValue(prop, prop.IsInherited())
		return
	case pr.DefaultValue:
		switch value {
		case pr.Inherit:
			c.style.Properties[prop] = c.defaultValue(prop, true)
		case pr.Initial:
			c.style.Properties[prop] = c.defaultValue(prop, false)
		default:
			c.style.Properties[prop] = c.defaultValue(prop, prop.IsInherited())
		}
		return
	case pr.CssProperty:
		specified = value
	}

	if fn := computerFunctions[prop]; fn != nil {
		specified = fn(c, prop, specified)
	}
	c.style.Properties[prop] = specified
}

// defaultValue returns the inherited value or the initial value.
// Inherited values are already computed.
func (c *computer) defaultValue(prop pr.KnownProp, inherit bool) pr.CssProperty {
	if inherit && c.parent != nil {
		return c.parent.Properties[prop]
	}
	return pr.InitialValues[prop]
}

// resolvePending substitutes the variables and validates the result.
// Invalid values at computed-value time behave as "unset".
func (c *computer) resolvePending(prop pr.KnownProp, vt pr.VarTokens) pr.DeclaredValue {
	tokens, ok := substituteValue(vt.Tokens, c.style.Variables)
	if !ok {
		logger.WarningLogger.Printf("Unresolved variable in %s: %s", prop, vt.Tokens)
		return pr.Unset
	}
	if d := pr.NewDefaultValue(getSingleIdent(tokens)); d != 0 {
		return d
	}
	var (
		value pr.DeclaredValue
		err   error
	)
	if vt.Shorthand != "" {
		value, err = validation.ExpandValidatePending(prop, vt.Shorthand, tokens)
	} else {
		value, err = validation.ValidateKnown(prop, tokens)
	}
	if err != nil {
		logger.WarningLogger.Printf("Ignored `%s: %s` at computed-value time: %s", prop, pa.Serialize(tokens), err)
		return pr.Unset
	}
	return value
}

// fixup applies the computations depending on several properties,
// whatever the source of their values.
func (c *computer) fixup() {
	props := c.style.Properties

	// currentColor
	color := props.GetColor()
	if color.Type == pr.ColorCurrentColor {
		if c.parent != nil {
			color = c.parent.GetColor()
		} else {
			color = pr.InitialValues.GetColor()
		}
		props.SetColor(color)
	}
	for _, p := range [...]pr.KnownProp{pr.PBackgroundColor, pr.PBorderTopColor, pr.PBorderRightColor, pr.PBorderBottomColor, pr.PBorderLeftColor} {
		if props[p].(pr.Color).Type == pr.ColorCurrentColor {
			props[p] = color
		}
	}

	// border width
	for side := pr.STop; side <= pr.SLeft; side++ {
		style := props[pr.BorderStyle(side)].(pr.Keyword)
		if style == kw.None || style == kw.Hidden {
			props[pr.BorderWidth(side)] = pr.FToV(0)
		}
	}

	// position, float and display
	// See http://www.w3.org/TR/CSS21/visuren.html#dis-pos-flo
	display := props.GetDisplay()
	if display.IsNone() {
		return
	}
	position := props.GetPosition()
	if position == kw.Absolute || position == kw.Fixed {
		props.SetFloat(kw.None)
		display = display.Blockify()
	} else if props.GetFloat() != kw.None || c.parent == nil {
		display = display.Blockify()
	} else if c.parent != nil {
		if inner := c.parent.GetDisplay().Inner; inner == "flex" || inner == "grid" {
			display = display.Blockify()
		}
	}
	if c.parent == nil && display.IsContents() {
		display = pr.Display{Outer: "block", Inner: "flow"}
	}
	props.SetDisplay(display)
}

func (c *computer) computeLang() {
	if lang, ok := c.doc.Attr(c.node, "lang"); ok && c.pseudo == "" {
		c.style.Lang = language.NewLanguage(lang)
	} else if c.parent != nil {
		c.style.Lang = c.parent.Lang
	}
}

// toPixels returns the computed value of a length, keeping
// percentages and keywords.
func (c *computer) toPixels(d pr.Dimension, fontSize pr.Fl) pr.Dimension {
	unit := d.Unit
	switch {
	case unit == pr.Px, unit == pr.Perc, unit == pr.Scalar, unit == 0, unit == pr.Fr, unit.IsAngle():
		return d
	case unit.IsAbsolute():
		return pr.NewDim(d.Value*pr.LengthsToPixels[unit], pr.Px)
	case unit == pr.Em:
		return pr.NewDim(d.Value*fontSize, pr.Px)
	case unit == pr.Ex, unit == pr.Ch:
		// no font metrics at this stage: use the usual 0.5em approximation
		return pr.NewDim(d.Value*fontSize*0.5, pr.Px)
	case unit == pr.Rem:
		return pr.NewDim(d.Value*c.rootFontSize, pr.Px)
	case unit == pr.Vw:
		return pr.NewDim(d.Value*c.device.Width/100, pr.Px)
	case unit == pr.Vh:
		return pr.NewDim(d.Value*c.device.Height/100, pr.Px)
	case unit == pr.Vmin:
		return pr.NewDim(d.Value*min(c.device.Width, c.device.Height)/100, pr.Px)
	case unit == pr.Vmax:
		return pr.NewDim(d.Value*max(c.device.Width, c.device.Height)/100, pr.Px)
	}
	return d
}

// Compute a length value.
func length(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	v, ok := value.(pr.Value)
	if !ok || v.IsKeyword() {
		return value
	}
	return c.toPixels(v.Dimension, c.fontSize()).ToValue()
}

// Compute the “border-*-width“ properties.
// The style is handled in [computer.fixup].
func borderWidth(c *computer, name pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	v := value.(pr.Value)
	if bw, in := pr.BorderWidthKeywords[v.S]; in {
		return pr.FToV(bw)
	}
	return length(c, name, v)
}

// point is used by border-spacing and transform-origin
func point(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	p := value.(pr.Point)
	fs := c.fontSize()
	return pr.Point{c.toPixels(p[0], fs), c.toPixels(p[1], fs)}
}

// Compute the “transform“ property: lengths are converted to pixels,
// angles are already in radians.
func transforms(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	ts := value.(pr.Transforms)
	if len(ts) == 0 {
		return ts
	}
	out := make(pr.Transforms, len(ts))
	fs := c.fontSize()
	for i, t := range ts {
		args := make([]pr.Dimension, len(t.Args))
		for j, a := range t.Args {
			args[j] = c.toPixels(a, fs)
		}
		out[i] = pr.TransformFunction{Name: t.Name, Args: args}
	}
	return out
}

// Compute the “filter“ property: blur radii are converted to pixels.
func filters(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	fs := value.(pr.Filters)
	if len(fs) == 0 {
		return fs
	}
	out := make(pr.Filters, len(fs))
	fontSize := c.fontSize()
	for i, f := range fs {
		out[i] = pr.FilterFunction{Name: f.Name, Amount: c.toPixels(f.Amount, fontSize)}
	}
	return out
}

func tracks(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	tl := value.(pr.TrackList)
	if len(tl) == 0 {
		return tl
	}
	out := make(pr.TrackList, len(tl))
	fs := c.fontSize()
	for i, t := range tl {
		out[i] = t
		if !t.Min.IsKeyword() {
			out[i].Min = c.toPixels(t.Min.Dimension, fs).ToValue()
		}
		if !t.Max.IsKeyword() {
			out[i].Max = c.toPixels(t.Max.Dimension, fs).ToValue()
		}
	}
	return out
}

// Compute the “font-size“ property, relative to the parent.
func fontSize(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	v := value.(pr.Value)
	parentFontSize := pr.InitialValues.GetFontSize().Value
	if c.parent != nil {
		parentFontSize = c.parent.GetFontSize().Value
	}

	if fs, in := pr.FontSizeKeywords[v.S]; in {
		return pr.FToV(fs)
	}
	switch v.S {
	case "larger":
		for _, fs := range keywordsValues {
			if fs > parentFontSize {
				return pr.FToV(fs)
			}
		}
		return pr.FToV(parentFontSize * 1.2)
	case "smaller":
		for i := len(keywordsValues) - 1; i >= 0; i-- {
			if keywordsValues[i] < parentFontSize {
				return pr.FToV(keywordsValues[i])
			}
		}
		return pr.FToV(parentFontSize * 0.8)
	}

	switch v.Unit {
	case pr.Perc:
		return pr.FToV(v.Value * parentFontSize / 100)
	case pr.Rem:
		// the root element resolves rem against the initial value
		if c.parent == nil {
			return pr.FToV(v.Value * parentFontSize)
		}
	}
	return c.toPixels(v.Dimension, parentFontSize).ToValue()
}

// Compute the “font-weight“ property.
func fontWeight(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	v, ok := value.(pr.Value)
	if !ok { // already an Int
		return value
	}
	parentWeight := int(pr.InitialValues.GetFontWeight())
	if c.parent != nil {
		parentWeight = int(c.parent.GetFontWeight())
	}
	// the tables use multiples of 100
	rounded := int(math.Round(float64(parentWeight)/100)) * 100
	rounded = min(max(rounded, 100), 900)
	switch v.S {
	case "bolder":
		return pr.Int(fontWeightRelative.bolder[rounded])
	case "lighter":
		return pr.Int(fontWeightRelative.lighter[rounded])
	}
	return pr.Int(parentWeight)
}

// Compute the “line-height“ property: numbers are kept (and inherited as such),
// percentages and lengths are converted to pixels.
func lineHeight(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	v := value.(pr.Value)
	switch {
	case v.IsKeyword(), v.Unit == pr.Scalar:
		return v
	case v.Unit == pr.Perc:
		return pr.FToV(v.Value * c.fontSize() / 100)
	default:
		return c.toPixels(v.Dimension, c.fontSize()).ToValue()
	}
}

// Compute the “content“ property. It only applies to pseudo-elements,
// and attr() is replaced by the attribute of the originating element.
func content(c *computer, _ pr.KnownProp, value pr.CssProperty) pr.CssProperty {
	cs := value.(pr.Contents)
	if c.pseudo == "" || len(cs) == 0 {
		return pr.Contents(nil)
	}
	out := make(pr.Contents, 0, len(cs))
	for _, item := range cs {
		if item.Type == "attr" {
			v, _ := c.doc.Attr(c.node, strings.ToLower(item.Value))
			item = pr.ContentItem{Type: "string", Value: v}
		}
		out = append(out, item)
	}
	return out
}
