package validation

import (
	"fmt"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/logger"
)

// Validate descriptors of @page rules.
// See https://www.w3.org/TR/css-page-3/#page-size-prop

// PageDescriptors stores the values found in @page rules.
// Zero values mean "not specified".
type PageDescriptors struct {
	// Size is the page size, with an auto size for
	// the zero value.
	Size pr.Point
	// Margin is indexed by [pr.Side]
	Margin [4]pr.Value
}

// HasSize returns false for "size: auto".
func (pd PageDescriptors) HasSize() bool { return pd.Size[0].Unit != 0 }

// ParsePage validates the declarations of @page rules, later
// declarations overriding earlier ones. Invalid descriptors are logged
// and ignored.
func ParsePage(declarations []pa.Declaration) PageDescriptors {
	var out PageDescriptors
	for _, decl := range declarations {
		tokens := pa.RemoveWhitespace(decl.Value)
		var err error
		switch decl.Name {
		case "size":
			var size pr.Point
			size, err = pageSize(tokens)
			if err == nil {
				out.Size = size
			}
		case "margin":
			var props expandedProperties
			props, err = expandFourSides("margin", tokens)
			if err == nil {
				for i, p := range props {
					if v, ok := p.property.(pr.Value); ok {
						out.Margin[i] = v
					}
				}
			}
		case "margin-top", "margin-right", "margin-bottom", "margin-left":
			prop := pr.PropsFromNames[decl.Name]
			var v pr.CssProperty
			v, err = ValidateKnown(prop, tokens)
			if err == nil {
				for side := pr.STop; side <= pr.SLeft; side++ {
					if pr.Margin(side) == prop {
						out.Margin[side] = v.(pr.Value)
					}
				}
			}
		default:
			err = fmt.Errorf("unsupported @page descriptor %s", decl.Name)
		}
		if err != nil {
			logger.WarningLogger.Printf("Ignored `%s` in @page: %s", decl, err)
		}
	}
	return out
}

// pageSize accepts auto | <length>{1,2} | <page-size> || [ portrait | landscape ]
func pageSize(tokens []Token) (pr.Point, error) {
	var (
		size        pr.Point
		orientation string
	)
	switch len(tokens) {
	case 1, 2:
	default:
		return size, ErrInvalidValue
	}
	if getSingleKeyword(tokens) == "auto" {
		return size, nil
	}

	var lengths []pr.Dimension
	for _, token := range tokens {
		if l := getLength(token, false, false); l.Unit != 0 {
			lengths = append(lengths, l)
			continue
		}
		keyword := getKeyword(token)
		if ps, ok := pr.PageSizes[keyword]; ok && size[0].Unit == 0 {
			size = ps
			continue
		}
		if (keyword == "portrait" || keyword == "landscape") && orientation == "" {
			orientation = keyword
			continue
		}
		return pr.Point{}, ErrInvalidValue
	}

	switch {
	case len(lengths) == 1 && len(tokens) == 1:
		size = pr.Point{lengths[0], lengths[0]}
	case len(lengths) == 2:
		size = pr.Point{lengths[0], lengths[1]}
	case len(lengths) != 0:
		return pr.Point{}, ErrInvalidValue
	}

	if size[0].Unit == 0 { // only an orientation
		size = pr.PageSizes["a4"]
	}
	if orientation == "landscape" {
		size[0], size[1] = size[1], size[0]
	}
	return size, nil
}
