// Package selector compiles CSS selectors, using github.com/andybalholm/cascadia
// for the parsing and the matching.
//
// A rule selector is a comma separated list: each member keeps its own
// specificity and pseudo-element, since the cascade sorts declarations
// per matching selector.
package selector

import (
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Specificity is the (a, b, c) triple of a selector.
type Specificity = cascadia.Specificity

// Selector is one complex selector of a selector list.
type Selector struct {
	sel  cascadia.Sel
	text string
	// siblings is true if matching may change when
	// the siblings of the element change
	siblings bool
}

// Match returns true if the selector matches [n].
// For selectors with a pseudo-element, the originating
// element is matched.
func (s Selector) Match(n *html.Node) bool { return s.sel.Match(n) }

func (s Selector) Specificity() Specificity { return s.sel.Specificity() }

// PseudoElement returns "before", "after", ..., or an empty string.
func (s Selector) PseudoElement() string { return s.sel.PseudoElement() }

func (s Selector) String() string { return s.text }

// DependsOnSiblings returns true if the selector uses a sibling
// combinator or a structural pseudo-class.
func (s Selector) DependsOnSiblings() bool { return s.siblings }

// Group is a compiled selector list.
type Group []Selector

// Match returns true if one of the selectors matches [n].
func (g Group) Match(n *html.Node) bool {
	for _, s := range g {
		if s.Match(n) {
			return true
		}
	}
	return false
}

var (
	compiledLock sync.Mutex
	compiled     = map[string]Group{}
)

// Compile parses the selector list [s]. Compiled groups are shared, since the
// same selectors are often found in several stylesheets.
func Compile(s string) (Group, error) {
	s = strings.TrimSpace(s)

	compiledLock.Lock()
	g, ok := compiled[s]
	compiledLock.Unlock()
	if ok {
		return g, nil
	}

	sels, err := cascadia.ParseGroupWithPseudoElements(s)
	if err != nil {
		return nil, err
	}
	g = make(Group, len(sels))
	for i, sel := range sels {
		text := sel.String()
		g[i] = Selector{sel: sel, text: text, siblings: usesSiblings(text)}
	}

	compiledLock.Lock()
	compiled[s] = g
	compiledLock.Unlock()
	return g, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s string) Group {
	g, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return g
}

var structuralPseudos = [...]string{
	":first-child", ":last-child", ":only-child", ":nth-",
	":first-of-type", ":last-of-type", ":only-of-type", ":empty",
}

// usesSiblings inspects the serialized selector, where combinators
// are written outside of brackets and quotes.
func usesSiblings(text string) bool {
	for _, p := range structuralPseudos {
		if strings.Contains(text, p) {
			return true
		}
	}
	depth, quote := 0, byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case depth == 0 && (c == '+' || c == '~'):
			return true
		}
	}
	return false
}
