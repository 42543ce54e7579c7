package validation

import (
	"math"
	"strconv"

	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/image/colornames"
)

// ParseColor parses a <color> value, returning an
// invalid color (zero Type) on failure.
func ParseColor(token Token) pr.Color {
	switch token.Kind {
	case pa.Ident:
		switch name := token.LowerValue(); name {
		case "currentcolor":
			return pr.CurrentColor
		case "transparent":
			return pr.Transparent
		default:
			if c, ok := colornames.Map[name]; ok {
				return pr.NewColor(pr.Fl(c.R)/255, pr.Fl(c.G)/255, pr.Fl(c.B)/255, 1)
			}
		}
	case pa.Hash:
		return parseHexColor(token.Value)
	case pa.Function:
		args := pa.RemoveWhitespace(token.Children)
		switch token.Value {
		case "rgb", "rgba":
			return parseRGB(args)
		case "hsl", "hsla":
			return parseHSL(args)
		}
	}
	return pr.Color{}
}

// ParseColorString is a convenience function for constant colors.
func ParseColorString(s string) pr.Color {
	tokens := pa.RemoveWhitespace(pa.Tokenize(s))
	if len(tokens) != 1 {
		return pr.Color{}
	}
	return ParseColor(tokens[0])
}

func parseHexColor(s string) pr.Color {
	var digits []uint64
	switch len(s) {
	case 3, 4:
		for i := range s {
			v, err := strconv.ParseUint(s[i:i+1], 16, 8)
			if err != nil {
				return pr.Color{}
			}
			digits = append(digits, v*17)
		}
	case 6, 8:
		for i := 0; i < len(s); i += 2 {
			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return pr.Color{}
			}
			digits = append(digits, v)
		}
	default:
		return pr.Color{}
	}
	alpha := pr.Fl(1)
	if len(digits) == 4 {
		alpha = pr.Fl(digits[3]) / 255
	}
	return pr.NewColor(pr.Fl(digits[0])/255, pr.Fl(digits[1])/255, pr.Fl(digits[2])/255, alpha)
}

// colorArgs accepts both the legacy comma separated syntax and the
// space separated one (with an optional "/ alpha").
func colorArgs(args []Token) ([]Token, bool) {
	var out []Token
	for i, arg := range args {
		if arg.Kind == pa.Comma || (arg.Kind == pa.Delim && arg.Value == "/") {
			if i == 0 || i == len(args)-1 {
				return nil, false
			}
			continue
		}
		out = append(out, arg)
	}
	return out, len(out) == 3 || len(out) == 4
}

func parseAlpha(args []Token) (pr.Fl, bool) {
	if len(args) < 4 {
		return 1, true
	}
	switch a := args[3]; a.Kind {
	case pa.Number:
		return pr.Fl(math.Min(1, math.Max(0, a.Num))), true
	case pa.Percentage:
		return pr.Fl(math.Min(1, math.Max(0, a.Num/100))), true
	}
	return 0, false
}

func parseRGB(args []Token) pr.Color {
	args, ok := colorArgs(args)
	if !ok {
		return pr.Color{}
	}
	var rgb [3]pr.Fl
	for i, arg := range args[:3] {
		switch arg.Kind {
		case pa.Number:
			rgb[i] = pr.Fl(math.Min(255, math.Max(0, arg.Num)) / 255)
		case pa.Percentage:
			rgb[i] = pr.Fl(math.Min(100, math.Max(0, arg.Num)) / 100)
		default:
			return pr.Color{}
		}
	}
	alpha, ok := parseAlpha(args)
	if !ok {
		return pr.Color{}
	}
	return pr.NewColor(rgb[0], rgb[1], rgb[2], alpha)
}

func parseHSL(args []Token) pr.Color {
	args, ok := colorArgs(args)
	if !ok {
		return pr.Color{}
	}
	var hue float64
	switch h := args[0]; {
	case h.Kind == pa.Number:
		hue = h.Num / 360
	case h.Kind == pa.Dimension && pr.NewUnit(h.Unit).IsAngle():
		hue = h.Num * float64(pr.AnglesToRadians[pr.NewUnit(h.Unit)]) / (2 * math.Pi)
	default:
		return pr.Color{}
	}
	hue -= math.Floor(hue)
	if args[1].Kind != pa.Percentage || args[2].Kind != pa.Percentage {
		return pr.Color{}
	}
	sat := math.Min(1, math.Max(0, args[1].Num/100))
	light := math.Min(1, math.Max(0, args[2].Num/100))
	alpha, ok := parseAlpha(args)
	if !ok {
		return pr.Color{}
	}
	r, g, b := css.HSL2RGB(hue, sat, light)
	return pr.NewColor(pr.Fl(r), pr.Fl(g), pr.Fl(b), alpha)
}
