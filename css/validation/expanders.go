package validation

import (
	"errors"
	"fmt"
	"strings"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/utils"
)

type namedProperty struct {
	name     pr.KnownProp
	property pr.DeclaredValue
}

type expandedProperties []namedProperty

type expander func(name string, tokens []Token) (expandedProperties, error)

var expanders map[string]expander

func init() {
	expandBorderSide := genericExpander("-width", "-style", "-color")(_expandBorderSide)
	expanders = map[string]expander{
		"margin":        expandFourSides,
		"padding":       expandFourSides,
		"border-width":  expandFourSides,
		"border-style":  expandFourSides,
		"border-color":  expandFourSides,
		"inset":         expandFourSides,
		"border":        expandBorder,
		"border-top":    expandBorderSide,
		"border-right":  expandBorderSide,
		"border-bottom": expandBorderSide,
		"border-left":   expandBorderSide,
		"flex":          genericExpander("-grow", "-shrink", "-basis")(_expandFlex),
		"flex-flow":     genericExpander("flex-direction", "flex-wrap")(_expandFlexFlow),
		"gap":           genericExpander("row-gap", "column-gap")(_expandGap),
		"grid-row":      genericExpander("-start", "-end")(_expandGridColumnRow),
		"grid-column":   genericExpander("-start", "-end")(_expandGridColumnRow),
		"grid-area":     genericExpander("grid-row-start", "grid-column-start", "grid-row-end", "grid-column-end")(_expandGridArea),
		"grid-template": genericExpander("-rows", "-columns")(_expandGridTemplate),
		"columns":       genericExpander("column-width", "column-count")(_expandColumns),
		"list-style":    genericExpander("-type", "-position")(_expandListStyle),
		"background":    genericExpander("-color", "-image")(_expandBackground),
		"font":          genericExpander("-style", "-weight", "-size", "line-height", "-family")(_expandFont),
	}
}

// ExpandValidatePending expands the shorthand [shorthand], whose var()
// have been substituted in [tokens], and returns the value for [prop].
func ExpandValidatePending(prop pr.KnownProp, shorthand string, tokens []Token) (pr.DeclaredValue, error) {
	exp, ok := expanders[shorthand]
	if !ok {
		return nil, fmt.Errorf("unknown shorthand %s", shorthand)
	}
	props, err := exp(shorthand, tokens)
	if err != nil {
		return nil, err
	}
	for _, expanded := range props {
		if expanded.name == prop {
			return expanded.property, nil
		}
	}
	return nil, fmt.Errorf("missing key %s in expanded property", prop)
}

// expandedName resolves a suffix like "-top" against its shorthand.
func expandedName(shorthand, name string) string {
	if strings.HasPrefix(name, "-") {
		return shorthand + name
	}
	return name
}

type namedTokens struct {
	name   string
	tokens []Token
}

type beforeGeneric = func(name string, tokens []Token) ([]namedTokens, error)

// Decorator helping expanders to handle CSS-wide keywords and var().
// Wrap an expander so that it does not have to handle these cases,
// and can just yield name suffixes. Missing suffixes get the initial value.
func genericExpander(expandedNames ...string) func(beforeGeneric) expander {
	known := utils.NewSet(expandedNames...)
	return func(wrapped beforeGeneric) expander {
		return func(shorthand string, tokens []Token) (expandedProperties, error) {
			out := make(expandedProperties, 0, len(expandedNames))

			if HasVar(tokens) {
				for _, name := range expandedNames {
					prop := pr.PropsFromNames[expandedName(shorthand, name)]
					out = append(out, namedProperty{prop, pr.VarTokens{Shorthand: shorthand, Tokens: tokens}})
				}
				return out, nil
			}

			tokens = pa.RemoveWhitespace(tokens)
			if d := pr.NewDefaultValue(getSingleKeyword(tokens)); d != 0 {
				for _, name := range expandedNames {
					out = append(out, namedProperty{pr.PropsFromNames[expandedName(shorthand, name)], d})
				}
				return out, nil
			}

			result, err := wrapped(shorthand, tokens)
			if err != nil {
				return nil, err
			}
			results := make(map[string][]Token, len(result))
			for _, nt := range result {
				if !known.Has(nt.name) {
					return nil, fmt.Errorf("unknown expanded property %s", nt.name)
				}
				if _, isIn := results[nt.name]; isIn {
					return nil, fmt.Errorf("got multiple %s values in a %s shorthand",
						strings.Trim(nt.name, "-"), shorthand)
				}
				results[nt.name] = nt.tokens
			}

			for _, name := range expandedNames {
				prop := pr.PropsFromNames[expandedName(shorthand, name)]
				ts, ok := results[name]
				if !ok {
					out = append(out, namedProperty{prop, pr.Initial})
					continue
				}
				value, err := ValidateKnown(prop, ts)
				if err != nil {
					return nil, err
				}
				out = append(out, namedProperty{prop, value})
			}
			return out, nil
		}
	}
}

// Expand properties setting a token for the four sides of a box.
// "margin", "padding", "border-width", "border-style", "border-color", "inset"
func expandFourSides(name string, tokens []Token) (out expandedProperties, err error) {
	var expandedNames [4]pr.KnownProp
	for i, suffix := range [4]string{"-top", "-right", "-bottom", "-left"} {
		var newName string
		switch {
		case name == "inset":
			newName = suffix[1:]
		case strings.HasPrefix(name, "border-"):
			// eg. border-color becomes border-*-color, not border-color-*
			newName = "border" + suffix + name[len("border"):]
		default:
			newName = name + suffix
		}
		expandedNames[i] = pr.PropsFromNames[newName]
	}

	if HasVar(tokens) {
		for _, prop := range expandedNames {
			out = append(out, namedProperty{prop, pr.VarTokens{Shorthand: name, Tokens: tokens}})
		}
		return out, nil
	}

	tokens = pa.RemoveWhitespace(tokens)
	if d := pr.NewDefaultValue(getSingleKeyword(tokens)); d != 0 {
		for _, prop := range expandedNames {
			out = append(out, namedProperty{prop, d})
		}
		return out, nil
	}

	// Make sure we have 4 tokens
	switch len(tokens) {
	case 1:
		tokens = []Token{tokens[0], tokens[0], tokens[0], tokens[0]}
	case 2:
		tokens = []Token{tokens[0], tokens[1], tokens[0], tokens[1]} // (bottom, left) defaults to (top, right)
	case 3:
		tokens = append(tokens, tokens[1]) // left defaults to right
	case 4:
	default:
		return nil, fmt.Errorf("expected 1 to 4 token components got %d", len(tokens))
	}

	for index, prop := range expandedNames {
		value, err := ValidateKnown(prop, tokens[index:index+1])
		if err != nil {
			return nil, err
		}
		out = append(out, namedProperty{prop, value})
	}
	return out, nil
}

// Expand the “border-*“ shorthand properties.
//
//	See http://www.w3.org/TR/CSS21/box.html#propdef-border-top
func _expandBorderSide(_ string, tokens []Token) ([]namedTokens, error) {
	var out []namedTokens
	for _, token := range tokens {
		var suffix string
		switch {
		case otherColors([]Token{token}) != nil:
			suffix = "-color"
		case borderWidth([]Token{token}) != nil:
			suffix = "-width"
		case borderStyle([]Token{token}) != nil:
			suffix = "-style"
		default:
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{name: suffix, tokens: []Token{token}})
	}
	return out, nil
}

// Expand the “border“ shorthand property, setting the four sides.
//
//	See http://www.w3.org/TR/CSS21/box.html#propdef-border
func expandBorder(_ string, tokens []Token) (out expandedProperties, err error) {
	side := expanders["border-top"]
	for _, s := range [4]string{"top", "right", "bottom", "left"} {
		name := "border-" + s
		props, err := side(name, tokens)
		if err != nil {
			return nil, err
		}
		for i := range props {
			if vt, ok := props[i].property.(pr.VarTokens); ok {
				vt.Shorthand = "border"
				props[i].property = vt
			}
		}
		out = append(out, props...)
	}
	return out, nil
}

// Expand the “flex“ property.
func _expandFlex(_ string, tokens []Token) ([]namedTokens, error) {
	var (
		grow   = pa.Token{Kind: pa.Number, Num: 1, IsInt: true}
		shrink = pa.Token{Kind: pa.Number, Num: 1, IsInt: true}
		basis  = pa.Token{Kind: pa.Ident, Value: "auto"}
	)
	keyword := getSingleKeyword(tokens)
	switch keyword {
	case "none":
		grow = pa.Token{Kind: pa.Number, Num: 0, IsInt: true}
		shrink = grow
	case "auto":
	default:
		var (
			growFound, shrinkFound, basisFound bool
		)
		basis = pa.Token{Kind: pa.Dimension, Num: 0, Unit: "px", IsInt: true}
		for i, token := range tokens {
			if _, isNumber := getNumber(token); isNumber {
				switch {
				case !growFound:
					grow, growFound = token, true
				case !shrinkFound:
					shrink, shrinkFound = token, true
				default:
					return nil, ErrInvalidValue
				}
				continue
			}
			if basisFound || flexBasis([]Token{token}) == nil {
				return nil, ErrInvalidValue
			}
			// <basis> must come before or after both numbers
			if growFound && !shrinkFound && i != len(tokens)-1 {
				return nil, ErrInvalidValue
			}
			basis, basisFound = token, true
		}
		if !growFound && !basisFound {
			return nil, ErrInvalidValue
		}
	}
	return []namedTokens{
		{name: "-grow", tokens: []Token{grow}},
		{name: "-shrink", tokens: []Token{shrink}},
		{name: "-basis", tokens: []Token{basis}},
	}, nil
}

// Expand the “flex-flow“ property.
func _expandFlexFlow(_ string, tokens []Token) (out []namedTokens, err error) {
	if len(tokens) != 1 && len(tokens) != 2 {
		return nil, ErrInvalidValue
	}
	for _, token := range tokens {
		ts := []Token{token}
		switch {
		case validators[pr.PFlexDirection](ts) != nil:
			out = append(out, namedTokens{name: "flex-direction", tokens: ts})
		case validators[pr.PFlexWrap](ts) != nil:
			out = append(out, namedTokens{name: "flex-wrap", tokens: ts})
		default:
			return nil, ErrInvalidValue
		}
	}
	return out, nil
}

// Expand the “gap“ property : <row-gap> <column-gap>?
func _expandGap(_ string, tokens []Token) ([]namedTokens, error) {
	switch len(tokens) {
	case 1:
		return []namedTokens{{"row-gap", tokens}, {"column-gap", tokens}}, nil
	case 2:
		return []namedTokens{{"row-gap", tokens[:1]}, {"column-gap", tokens[1:]}}, nil
	}
	return nil, ErrInvalidValue
}

// splitOnSlash splits [tokens] on "/" delimiters.
func splitOnSlash(tokens []Token) [][]Token {
	parts := [][]Token{nil}
	for _, token := range tokens {
		if token.Kind == pa.Delim && token.Value == "/" {
			parts = append(parts, nil)
			continue
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], token)
	}
	return parts
}

// Expand the “grid-row“ and “grid-column“ properties.
// A missing end is "auto".
func _expandGridColumnRow(_ string, tokens []Token) ([]namedTokens, error) {
	parts := splitOnSlash(tokens)
	if len(parts) > 2 || len(parts[0]) == 0 || (len(parts) == 2 && len(parts[1]) == 0) {
		return nil, ErrInvalidValue
	}
	out := []namedTokens{{"-start", parts[0]}}
	if len(parts) == 2 {
		out = append(out, namedTokens{"-end", parts[1]})
	}
	return out, nil
}

// Expand the “grid-area“ property : row-start / column-start / row-end / column-end
func _expandGridArea(_ string, tokens []Token) ([]namedTokens, error) {
	parts := splitOnSlash(tokens)
	if len(parts) > 4 {
		return nil, ErrInvalidValue
	}
	names := [4]string{"grid-row-start", "grid-column-start", "grid-row-end", "grid-column-end"}
	var out []namedTokens
	for i, part := range parts {
		if len(part) == 0 {
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{names[i], part})
	}
	return out, nil
}

// Expand the “grid-template“ property : <rows> / <columns>
// Template areas are not supported.
func _expandGridTemplate(_ string, tokens []Token) ([]namedTokens, error) {
	if getSingleKeyword(tokens) == "none" {
		return []namedTokens{{"-rows", tokens}, {"-columns", tokens}}, nil
	}
	parts := splitOnSlash(tokens)
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return nil, ErrInvalidValue
	}
	return []namedTokens{{"-rows", parts[0]}, {"-columns", parts[1]}}, nil
}

// Expand the “columns“ property.
func _expandColumns(_ string, tokens []Token) (out []namedTokens, err error) {
	if len(tokens) == 2 && getKeyword(tokens[0]) == "auto" {
		tokens = reverse(tokens)
	}
	for _, token := range tokens {
		ts := []Token{token}
		var name string
		if v := columnWidth(ts); v != nil && getKeyword(token) != "auto" {
			name = "column-width"
		} else if columnCount(ts) != nil {
			name = "column-count"
		} else {
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{name: name, tokens: ts})
	}
	if len(tokens) == 0 || len(tokens) > 2 {
		return nil, ErrInvalidValue
	}
	return out, nil
}

// Expand the “list-style“ shorthand property. Images are not supported.
//
//	See http://www.w3.org/TR/CSS21/generate.html#propdef-list-style
func _expandListStyle(_ string, tokens []Token) (out []namedTokens, err error) {
	for _, token := range tokens {
		ts := []Token{token}
		var suffix string
		switch {
		case validators[pr.PListStylePosition](ts) != nil:
			suffix = "-position"
		case validators[pr.PListStyleType](ts) != nil:
			suffix = "-type"
		default:
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{name: suffix, tokens: ts})
	}
	return out, nil
}

// Expand the “background“ shorthand property, restricted
// to a single layer of color and image.
func _expandBackground(_ string, tokens []Token) (out []namedTokens, err error) {
	for _, token := range tokens {
		ts := []Token{token}
		switch {
		case otherColors(ts) != nil:
			out = append(out, namedTokens{name: "-color", tokens: ts})
		case backgroundImage(ts) != nil:
			out = append(out, namedTokens{name: "-image", tokens: ts})
		default:
			return nil, errors.New("unsupported background layer")
		}
	}
	return out, nil
}

func reverse(a []Token) []Token {
	n := len(a)
	out := make([]Token, n)
	for i := range a {
		out[n-1-i] = a[i]
	}
	return out
}

// Expand the “font“ shorthand property.
//
//	https://www.w3.org/TR/css-fonts-3/#font-prop
func _expandFont(_ string, tokens []Token) ([]namedTokens, error) {
	switch getSingleKeyword(tokens) {
	case "caption", "icon", "menu", "message-box", "small-caption", "status-bar":
		return nil, errors.New("system fonts are not supported")
	}
	var (
		out   []namedTokens
		token Token
	)
	// Make `tokens` a stack
	tokens = reverse(tokens)
	// Values for font-style and font-weight can come in any order
	// and are all optional.
	hasBroken := false
	for i := 0; i < 2; i++ {
		if len(tokens) == 0 {
			return nil, ErrInvalidValue
		}
		token, tokens = tokens[len(tokens)-1], tokens[:len(tokens)-1]
		ts := []Token{token}
		if getKeyword(token) == "normal" {
			// Unspecified properties get their initial value,
			// which is "normal" here.
			continue
		}
		var suffix string
		if validators[pr.PFontStyle](ts) != nil {
			suffix = "-style"
		} else if fontWeight(ts) != nil {
			suffix = "-weight"
		} else {
			hasBroken = true
			break
		}
		out = append(out, namedTokens{name: suffix, tokens: ts})
	}
	if !hasBroken {
		if len(tokens) == 0 {
			return nil, ErrInvalidValue
		}
		token, tokens = tokens[len(tokens)-1], tokens[:len(tokens)-1]
	}

	// Then font-size is mandatory
	if fontSize([]Token{token}) == nil {
		return nil, errors.New("font-size is mandatory for short font attribute")
	}
	out = append(out, namedTokens{name: "-size", tokens: []Token{token}})

	// Then line-height is optional, but font-family is not so the list
	// must not be empty yet
	if len(tokens) == 0 {
		return nil, errors.New("font-family is mandatory for short font attribute")
	}
	token, tokens = tokens[len(tokens)-1], tokens[:len(tokens)-1]
	if token.Kind == pa.Delim && token.Value == "/" {
		if len(tokens) == 0 {
			return nil, ErrInvalidValue
		}
		token, tokens = tokens[len(tokens)-1], tokens[:len(tokens)-1]
		if lineHeight([]Token{token}) == nil {
			return nil, ErrInvalidValue
		}
		out = append(out, namedTokens{name: "line-height", tokens: []Token{token}})
	} else {
		// We pop()ed a font-family, add it back
		tokens = append(tokens, token)
	}
	// Reverse the stack to get normal list
	tokens = reverse(tokens)
	if fontFamily(tokens) == nil {
		return nil, ErrInvalidValue
	}
	out = append(out, namedTokens{name: "-family", tokens: tokens})
	return out, nil
}
