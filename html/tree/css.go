package tree

import (
	_ "embed"
	"sync/atomic"

	pa "github.com/benoitkugler/vformat/css/parser"
	"github.com/benoitkugler/vformat/css/selector"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/logger"
)

//go:embed ua.css
var uaCSS string

// UAStylesheet is the default user agent stylesheet.
var UAStylesheet = NewSheet(pa.ParseString(uaCSS, pa.UserAgent))

var sheetIDs atomic.Uint32

// Sheet is a stylesheet ready for the cascade: selectors are compiled
// and declarations validated once.
type Sheet struct {
	Origin pa.Origin
	rules  []rule
	pages  []pa.PageRule
	id     uint32
	// siblings is true if one selector depends on the
	// siblings of the matched element
	siblings bool
}

type rule struct {
	selector     selector.Selector
	declarations []validation.Declaration
	media        []pa.MediaQueryList
	// order is the rule position in its sheet
	order int
}

// NewSheet compiles the rules of [sheet]. Rules with an invalid selector
// are ignored, with a warning.
func NewSheet(sheet *pa.Stylesheet) *Sheet {
	out := &Sheet{Origin: sheet.Origin, pages: sheet.PageRules, id: sheetIDs.Add(1)}
	for _, r := range sheet.Rules {
		group, err := selector.Compile(r.Selector)
		if err != nil {
			logger.WarningLogger.Printf("Invalid or unsupported selector '%s', %s", r.Selector, err)
			continue
		}
		declarations := validation.PreprocessDeclarations(r.Declarations)
		if len(declarations) == 0 {
			continue
		}
		for _, sel := range group {
			out.rules = append(out.rules, rule{selector: sel, declarations: declarations, media: r.Media, order: r.Order})
			out.siblings = out.siblings || sel.DependsOnSiblings()
		}
	}
	return out
}

// NewSheetString is a convenience wrapper around [NewSheet].
func NewSheetString(css string, origin pa.Origin) *Sheet {
	return NewSheet(pa.ParseString(css, origin))
}

// PageRules returns the @page rules of the sheet.
func (s *Sheet) PageRules() []pa.PageRule { return s.pages }
