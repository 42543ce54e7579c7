package tree

import (
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/css/selector"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/utils"
)

// Pseudo-elements generating boxes.
const (
	Before = "before"
	After  = "after"
)

// Return the precedence for a declaration.
// Precedence values have no meaning unless compared to each other.
// Important declarations reverse the order of the origins.
func declarationPrecedence(origin pa.Origin, important bool) uint8 {
	// See https://www.w3.org/TR/css-cascade-4/#cascade-origin
	switch {
	case origin == pa.UserAgent && !important:
		return 1
	case origin == pa.User && !important:
		return 2
	case origin == pa.Author && !important:
		return 3
	case origin == pa.Author: // && important
		return 4
	case origin == pa.User: // && important
		return 5
	default: // user agent important
		return 6
	}
}

type weight struct {
	precedence uint8
	// styleAttr is true for the declarations of the style attribute,
	// which win over any selector of the same precedence
	styleAttr   bool
	specificity selector.Specificity
	// order is the source order: sheet index, then rule order
	sheet, order int
}

// less returns true if [w] loses against [other].
func (w weight) less(other weight) bool {
	if w.precedence != other.precedence {
		return w.precedence < other.precedence
	}
	if w.styleAttr != other.styleAttr {
		return other.styleAttr
	}
	if w.specificity != other.specificity {
		return w.specificity.Less(other.specificity)
	}
	if w.sheet != other.sheet {
		return w.sheet < other.sheet
	}
	return w.order < other.order
}

type weightedValue struct {
	value  pr.DeclaredValue
	weight weight
}

// cascadedStyle stores the winning declaration of each property.
type cascadedStyle struct {
	props [pr.NbProps]weightedValue
	vars  map[string]weightedValue
}

func (cs *cascadedStyle) add(decl validation.Declaration, w weight) {
	if decl.Name == 0 {
		if cs.vars == nil {
			cs.vars = make(map[string]weightedValue)
		}
		if current, ok := cs.vars[decl.Var]; !ok || !w.less(current.weight) {
			cs.vars[decl.Var] = weightedValue{value: decl.Value, weight: w}
		}
		return
	}
	current := cs.props[decl.Name]
	if current.value == nil || !w.less(current.weight) {
		cs.props[decl.Name] = weightedValue{value: decl.Value, weight: w}
	}
}

func (cs *cascadedStyle) addAll(decls []validation.Declaration, origin pa.Origin, w weight) {
	for _, decl := range decls {
		w.precedence = declarationPrecedence(origin, decl.Important)
		cs.add(decl, w)
	}
}

// matchedRule identifies a rule for the style sharing cache.
type matchedRule struct {
	sheet uint32
	index int
}

// matchResult groups the cascaded declarations of an element
// and of its pseudo-elements.
type matchResult struct {
	element *cascadedStyle
	pseudos map[string]*cascadedStyle
	// rules are the matched rules, in sheet order
	rules []matchedRule
}

func (m *matchResult) forPseudo(pseudo string) *cascadedStyle {
	if pseudo == "" {
		return m.element
	}
	if m.pseudos == nil {
		m.pseudos = make(map[string]*cascadedStyle)
	}
	cs := m.pseudos[pseudo]
	if cs == nil {
		cs = new(cascadedStyle)
		m.pseudos[pseudo] = cs
	}
	return cs
}

// match collects the declarations applying to [node], from the active rules,
// the presentational hints and the style attribute.
func (r *Resolver) match(node dom.NodeID) *matchResult {
	out := &matchResult{element: new(cascadedStyle)}
	htmlNode := r.doc.Node(node)

	for sheetIndex, sheet := range r.sheets {
		for _, ruleIndex := range r.activeRules(sheetIndex) {
			rule := sheet.rules[ruleIndex]
			if !rule.selector.Match(htmlNode) {
				continue
			}
			out.rules = append(out.rules, matchedRule{sheet: sheet.id, index: ruleIndex})
			w := weight{specificity: rule.selector.Specificity(), sheet: sheetIndex + 1, order: rule.order}
			out.forPseudo(rule.selector.PseudoElement()).addAll(rule.declarations, sheet.Origin, w)
		}
	}

	// presentational hints come before any author rule,
	// so they use the lowest author weight.
	if hints := presentationalHints(r.doc, node); len(hints) != 0 {
		out.element.addAll(hints, pa.Author, weight{sheet: 0, order: -1})
	}

	if attr, ok := r.doc.Attr(node, "style"); ok {
		out.element.addAll(r.styleAttribute(attr), pa.Author, weight{styleAttr: true})
	}
	return out
}

// styleAttribute parses and validates the content of a style attribute,
// memoizing the result.
func (r *Resolver) styleAttribute(content string) []validation.Declaration {
	if decls, ok := r.styleAttrs[content]; ok {
		return decls
	}
	decls := validation.PreprocessDeclarations(pa.ParseDeclarations(content))
	r.styleAttrs[content] = decls
	return decls
}

// activeRules returns the indices of the rules of the sheet
// whose media queries match the device.
func (r *Resolver) activeRules(sheetIndex int) []int {
	if r.active == nil {
		r.active = make([][]int, len(r.sheets))
		for i, sheet := range r.sheets {
			r.active[i] = r.computeActiveRules(sheet)
		}
	}
	return r.active[sheetIndex]
}

func (r *Resolver) computeActiveRules(sheet *Sheet) []int {
	var out []int
	for i, rule := range sheet.rules {
		if r.mediaMatches(rule.media) {
			out = append(out, i)
		}
	}
	return out
}

// mediaMatches returns true if every list matches.
func (r *Resolver) mediaMatches(lists []pa.MediaQueryList) bool {
	for _, list := range lists {
		key := mediaKey(r.device, list)
		ok, _ := r.caches.Media.GetOrCompute(key, func() (bool, error) {
			return r.device.Matches(list), nil
		})
		if !ok {
			return false
		}
	}
	return true
}

// sharingKey identifies the inputs of the computation of a style.
// Two nodes with the same key have the same computed style.
func (r *Resolver) sharingKey(node dom.NodeID, pseudo string, parent *styleEntry, isRoot bool, rules []matchedRule) uint64 {
	f := utils.NewFingerprint().String(pseudo).Bool(isRoot).String(r.doc.Tag(node))
	if parent != nil {
		f.Uint64(parent.fingerprint)
	}
	f.Float(r.rootFontSize)
	f.Int(len(rules))
	for _, rule := range rules {
		f.Uint64(uint64(rule.sheet)).Int(rule.index)
	}
	if n := r.doc.Node(node); n != nil {
		for _, a := range n.Attr {
			f.String(a.Key).String(a.Val)
		}
	}
	return f.Sum()
}
