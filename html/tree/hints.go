package tree

import (
	"strconv"
	"strings"

	pa "github.com/benoitkugler/vformat/css/parser"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/dom"
	"golang.org/x/net/html/atom"
)

// See https://html.spec.whatwg.org/multipage/rendering.html#presentational-hints

// presentationalHints returns the declarations implied by the
// attributes of [node]. They are cascaded as author declarations
// with a zero specificity, before any author rule.
func presentationalHints(doc *dom.Document, node dom.NodeID) []validation.Declaration {
	var sb strings.Builder
	attr := func(name string) string {
		v, _ := doc.Attr(node, name)
		return strings.TrimSpace(v)
	}
	dimension := func(prop, value string) {
		if l, ok := htmlLength(value); ok {
			sb.WriteString(prop + ":" + l + ";")
		}
	}

	switch doc.Atom(node) {
	case atom.Img, atom.Canvas, atom.Video, atom.Iframe, atom.Embed, atom.Object:
		dimension("width", attr("width"))
		dimension("height", attr("height"))
	case atom.Table:
		dimension("width", attr("width"))
		dimension("height", attr("height"))
		if c := attr("bgcolor"); c != "" {
			sb.WriteString("background-color:" + c + ";")
		}
		if b := attr("border"); b != "" {
			if n, err := strconv.Atoi(b); err == nil && n >= 0 {
				sb.WriteString("border-width:" + strconv.Itoa(n) + "px;border-style:outset;")
			}
		}
		if s := attr("cellspacing"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n >= 0 {
				sb.WriteString("border-spacing:" + strconv.Itoa(n) + "px;")
			}
		}
	case atom.Td, atom.Th:
		dimension("width", attr("width"))
		dimension("height", attr("height"))
		if c := attr("bgcolor"); c != "" {
			sb.WriteString("background-color:" + c + ";")
		}
		if _, ok := doc.Attr(node, "nowrap"); ok {
			sb.WriteString("white-space:nowrap;")
		}
		textAlign(&sb, attr("align"))
	case atom.Tr, atom.Tbody, atom.Thead, atom.Tfoot:
		if c := attr("bgcolor"); c != "" {
			sb.WriteString("background-color:" + c + ";")
		}
		textAlign(&sb, attr("align"))
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Caption:
		textAlign(&sb, attr("align"))
	case atom.Body:
		if c := attr("bgcolor"); c != "" {
			sb.WriteString("background-color:" + c + ";")
		}
		if c := attr("text"); c != "" {
			sb.WriteString("color:" + c + ";")
		}
	case atom.Font:
		if c := attr("color"); c != "" {
			sb.WriteString("color:" + c + ";")
		}
	case atom.Hr:
		dimension("width", attr("width"))
		if s := attr("size"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				sb.WriteString("height:" + strconv.Itoa(n) + "px;")
			}
		}
	case atom.Ol:
		switch attr("type") {
		case "1":
			sb.WriteString("list-style-type:decimal;")
		}
	case atom.Ul:
		switch strings.ToLower(attr("type")) {
		case "disc", "circle", "square":
			sb.WriteString("list-style-type:" + strings.ToLower(attr("type")) + ";")
		}
	}
	if sb.Len() == 0 {
		return nil
	}
	return validation.PreprocessDeclarations(pa.ParseDeclarations(sb.String()))
}

func textAlign(sb *strings.Builder, align string) {
	switch a := strings.ToLower(align); a {
	case "left", "right", "center", "justify":
		sb.WriteString("text-align:" + a + ";")
	case "middle":
		sb.WriteString("text-align:center;")
	}
}

// htmlLength parses a non negative dimension attribute,
// either a number of pixels or a percentage.
func htmlLength(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if strings.HasSuffix(s, "%") {
		if v, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil && v >= 0 {
			return strconv.FormatFloat(v, 'g', -1, 64) + "%", true
		}
		return "", false
	}
	s = strings.TrimSuffix(s, "px")
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
		return strconv.FormatFloat(v, 'g', -1, 64) + "px", true
	}
	return "", false
}
