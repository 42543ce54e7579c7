package images

import (
	"bytes"
	"encoding/xml"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var reSeparators = regexp.MustCompile("[ \n\r\t,]+")

// Normalize a string corresponding to an array of various values.
func normalize(str string) string {
	str = strings.ReplaceAll(str, "E", "e")
	str = reSeparators.ReplaceAllString(str, " ")
	return strings.TrimSpace(str)
}

// units to pixels
var svgUnits = map[string]Fl{
	"px": 1,
	"pt": 4. / 3,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"":   1,
}

// parseSVGLength returns false for percentages and invalid lengths.
func parseSVGLength(s string) (Fl, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+' || r == 'e')
	})
	num, unit := s, ""
	if i >= 0 {
		num, unit = s[:i], s[i:]
	}
	factor, ok := svgUnits[unit]
	if !ok || num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 32)
	if err != nil {
		return 0, false
	}
	return Fl(f) * factor, true
}

// parseViewBox returns nil if [s] is invalid.
func parseViewBox(s string) []Fl {
	var out []Fl
	for _, position := range strings.Split(normalize(s), " ") {
		f, err := strconv.ParseFloat(position, 32)
		if err != nil {
			return nil
		}
		out = append(out, Fl(f))
	}
	if len(out) != 4 {
		return nil
	}
	return out
}

// decodeSVG only reads the root element, to compute the
// intrinsic size: drawing SVG is not supported.
func decodeSVG(content []byte) (*Image, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, errors.New("missing svg root element")
		}
		var width, height, viewBox string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				width = attr.Value
			case "height":
				height = attr.Value
			case "viewBox":
				viewBox = attr.Value
			}
		}
		return SVGIntrinsicSize(width, height, viewBox), nil
	}
}

// SVGIntrinsicSize returns a vector image whose dimensions are given
// by the attributes of a <svg> element.
func SVGIntrinsicSize(width, height, viewBox string) *Image {
	out := &Image{Format: "svg"}
	w, hasW := parseSVGLength(width)
	h, hasH := parseSVGLength(height)
	if hasW && hasH {
		out.Width, out.Height = w, h
		if h != 0 {
			out.Ratio = w / h
		}
		return out
	}
	if vb := parseViewBox(viewBox); vb != nil && vb[2] != 0 && vb[3] != 0 {
		out.Ratio = vb[2] / vb[3]
		if hasW {
			out.Width, out.Height = w, w/out.Ratio
		} else if hasH {
			out.Width, out.Height = h*out.Ratio, h
		}
	} else if hasW {
		out.Width = w
	} else if hasH {
		out.Height = h
	}
	return out
}
