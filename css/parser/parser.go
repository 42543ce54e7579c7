// Package parser turns CSS source into the data consumed by the style
// resolver: an ordered list of rules, each with a selector, a declaration
// block and the origin of its stylesheet.
//
// Tokenizing is delegated to github.com/tdewolff/parse/v2/css. This package
// only groups the grammar events into rules and converts the flat tokens into
// nested component values.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/vformat/logger"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
)

// Origin is the cascade origin of a stylesheet.
type Origin uint8

const (
	UserAgent Origin = iota
	User
	Author
)

func (o Origin) String() string {
	switch o {
	case UserAgent:
		return "user-agent"
	case User:
		return "user"
	case Author:
		return "author"
	default:
		return "<invalid origin>"
	}
}

// Declaration is one "name: value [!important]" item.
type Declaration struct {
	// Name is lower case, except for custom properties
	// which are case sensitive.
	Name      string
	Value     []Token
	Important bool
}

// IsCustom returns true for custom properties (--name).
func (d Declaration) IsCustom() bool { return strings.HasPrefix(d.Name, "--") }

func (d Declaration) String() string {
	s := d.Name + ": " + Serialize(d.Value)
	if d.Important {
		s += " !important"
	}
	return s
}

// Rule is a style rule: a selector list and its declarations.
type Rule struct {
	Selector     string
	Declarations []Declaration
	// Media is the list of the enclosing @media conditions,
	// which must all match. Empty for unconditional rules.
	Media []MediaQueryList
	// Order is the position of the rule in its stylesheet.
	Order int
}

// PageRule is a @page rule.
type PageRule struct {
	Declarations []Declaration
	Media        []MediaQueryList
}

// Stylesheet is a parsed stylesheet, tagged with its origin.
type Stylesheet struct {
	Origin    Origin
	Rules     []Rule
	PageRules []PageRule
	// Imports lists the @import URLs, which are not fetched.
	Imports []string

	errs error
}

// Err returns the parse errors found while reading the stylesheet,
// combined with multierr. These errors have been recovered from.
func (s *Stylesheet) Err() error { return s.errs }

// ParseStylesheet parses [data]. Parse errors never abort: the invalid
// constructs are skipped and reported by Stylesheet.Err.
func ParseStylesheet(data []byte, origin Origin) *Stylesheet {
	sheet := &Stylesheet{Origin: origin}
	p := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	sheet.parseRules(p, nil, false)
	if sheet.errs != nil {
		logger.WarningLogger.Printf("recovered CSS errors: %s", sheet.errs)
	}
	return sheet
}

// ParseString is a convenience wrapper around ParseStylesheet.
func ParseString(s string, origin Origin) *Stylesheet {
	return ParseStylesheet([]byte(s), origin)
}

// parseRules reads rules until the end of input or, if [nested], until
// the end of the current at-rule block.
func (sheet *Stylesheet) parseRules(p *css.Parser, media []MediaQueryList, nested bool) {
	lastErrOffset := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.HasParseError() { // end of input or read error
				if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
					sheet.errs = multierr.Append(sheet.errs, err)
				}
				return
			}
			if p.Offset() == lastErrOffset {
				return
			}
			lastErrOffset = p.Offset()
			sheet.errs = multierr.Append(sheet.errs, p.Err())
		case css.EndAtRuleGrammar:
			if nested {
				return
			}
		case css.BeginRulesetGrammar:
			selector := selectorText(data, p.Values())
			decls := sheet.parseDeclarationBlock(p, css.EndRulesetGrammar)
			sheet.Rules = append(sheet.Rules, Rule{
				Selector:     selector,
				Declarations: decls,
				Media:        media,
				Order:        len(sheet.Rules),
			})
		case css.BeginAtRuleGrammar:
			prelude, _ := convert(p.Values())
			switch string(data) {
			case "@media":
				query := ParseMediaQueryList(trimWhitespace(prelude))
				inner := append(append([]MediaQueryList(nil), media...), query)
				sheet.parseRules(p, inner, true)
			case "@page":
				decls := sheet.parseDeclarationBlock(p, css.EndAtRuleGrammar)
				sheet.PageRules = append(sheet.PageRules, PageRule{Declarations: decls, Media: media})
			default:
				logger.WarningLogger.Printf("unsupported at-rule %s ignored", data)
				skipAtRule(p)
			}
		case css.AtRuleGrammar:
			if string(data) == "@import" {
				values, _ := convert(p.Values())
				for _, v := range values {
					if v.Kind == URL || v.Kind == String {
						sheet.Imports = append(sheet.Imports, v.Value)
						break
					}
				}
			} else {
				logger.WarningLogger.Printf("unsupported at-rule %s ignored", data)
			}
		}
	}
}

// skipAtRule consumes an unsupported at-rule block.
func skipAtRule(p *css.Parser) {
	depth := 0
	for {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.HasParseError() {
				return
			}
		case css.BeginAtRuleGrammar:
			depth++
		case css.EndAtRuleGrammar:
			if depth == 0 {
				return
			}
			depth--
		}
	}
}

func (sheet *Stylesheet) parseDeclarationBlock(p *css.Parser, end css.GrammarType) []Declaration {
	var out []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case end:
			return out
		case css.ErrorGrammar:
			if !p.HasParseError() {
				return out
			}
			sheet.errs = multierr.Append(sheet.errs, p.Err())
		case css.DeclarationGrammar:
			if decl, ok := newDeclaration(string(data), p.Values()); ok {
				out = append(out, decl)
			}
		case css.CustomPropertyGrammar:
			out = append(out, newCustomProperty(string(data), p.Values()))
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			// nested rules are not supported
			sheet.errs = multierr.Append(sheet.errs, fmt.Errorf("unexpected nested rule %s", data))
			skipAtRule(p)
		}
	}
}

func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

func newDeclaration(name string, raw []css.Token) (Declaration, bool) {
	values, _ := convert(raw)
	values, important := splitImportant(trimWhitespace(values))
	if len(values) == 0 {
		return Declaration{}, false
	}
	return Declaration{Name: strings.ToLower(name), Value: values, Important: important}, true
}

func newCustomProperty(name string, raw []css.Token) Declaration {
	var text strings.Builder
	for _, v := range raw {
		text.Write(v.Data)
	}
	values, important := splitImportant(trimWhitespace(Tokenize(text.String())))
	return Declaration{Name: name, Value: values, Important: important}
}

// splitImportant removes a trailing "!important".
func splitImportant(values []Token) ([]Token, bool) {
	n := len(values)
	if n >= 2 && values[n-1].IsIdent("important") && values[n-2].Kind == Delim && values[n-2].Value == "!" {
		return trimWhitespace(values[:n-2]), true
	}
	return values, false
}

// ParseDeclarations parses the content of a style attribute.
func ParseDeclarations(s string) []Declaration {
	p := css.NewParser(parse.NewInputString(s), true)
	var out []Declaration
	lastErrOffset := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !p.HasParseError() || p.Offset() == lastErrOffset {
				return out
			}
			lastErrOffset = p.Offset()
			logger.WarningLogger.Printf("invalid style attribute %q: %s", s, p.Err())
		case css.DeclarationGrammar:
			if decl, ok := newDeclaration(string(data), p.Values()); ok {
				out = append(out, decl)
			}
		case css.CustomPropertyGrammar:
			out = append(out, newCustomProperty(string(data), p.Values()))
		}
	}
}
