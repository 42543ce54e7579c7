package tree

import (
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
)

// variables computes the custom properties of one element.
//
// Values are substituted lazily, so that the order of declaration does
// not matter. Variables involved in a reference cycle are
// guaranteed-invalid, as are variables referencing an invalid
// one without fallback: they are removed from the computed map.
type variables struct {
	declared  map[string]weightedValue
	inherited map[string]pr.RawTokens

	computed map[string]pr.RawTokens
	invalid  map[string]bool

	// stack of the variables being resolved
	stack []string
	// cyclic marks the variables found in a cycle
	cyclic map[string]bool
}

// computeVariables returns the computed custom properties, starting
// from the values inherited from the parent.
func computeVariables(declared map[string]weightedValue, inherited map[string]pr.RawTokens) map[string]pr.RawTokens {
	if len(declared) == 0 {
		return inherited
	}
	vs := variables{
		declared:  declared,
		inherited: inherited,
		computed:  make(map[string]pr.RawTokens, len(inherited)+len(declared)),
		invalid:   map[string]bool{},
		cyclic:    map[string]bool{},
	}
	for name := range declared {
		vs.resolve(name)
	}
	out := make(map[string]pr.RawTokens, len(inherited)+len(declared))
	for name, value := range inherited {
		if _, isDeclared := declared[name]; !isDeclared {
			out[name] = value
		}
	}
	for name, value := range vs.computed {
		out[name] = value
	}
	return out
}

// resolve returns the computed value of [name], or false
// for the guaranteed-invalid value.
func (vs *variables) resolve(name string) (pr.RawTokens, bool) {
	if v, ok := vs.computed[name]; ok {
		return v, true
	}
	if vs.invalid[name] {
		return nil, false
	}
	for i, pending := range vs.stack {
		if pending == name {
			for _, n := range vs.stack[i:] {
				vs.cyclic[n] = true
			}
			return nil, false
		}
	}

	decl, isDeclared := vs.declared[name]
	if !isDeclared {
		v, ok := vs.inherited[name]
		return v, ok
	}

	var raw pr.RawTokens
	switch value := decl.value.(type) {
	case pr.RawTokens:
		raw = value
	default:
		return nil, false
	}
	switch getSingleIdent(raw) {
	case "initial":
		vs.invalid[name] = true
		return nil, false
	case "inherit", "unset":
		// custom properties are inherited
		v, ok := vs.inherited[name]
		if ok {
			vs.computed[name] = v
		} else {
			vs.invalid[name] = true
		}
		return v, ok
	}

	vs.stack = append(vs.stack, name)
	substituted, ok := vs.substitute(raw)
	vs.stack = vs.stack[:len(vs.stack)-1]

	if !ok || vs.cyclic[name] {
		vs.invalid[name] = true
		return nil, false
	}
	vs.computed[name] = substituted
	return substituted, true
}

// substitute replaces the var() functions found in [tokens],
// at any nesting level. It returns false if a reference can't be resolved.
func (vs *variables) substitute(tokens []pa.Token) ([]pa.Token, bool) {
	var out []pa.Token
	for _, token := range tokens {
		if token.Kind == pa.Function && token.Value == "var" {
			name, fallback, hasFallback, ok := parseVar(token.Children)
			if !ok {
				return nil, false
			}
			value, ok := vs.resolve(name)
			if !ok {
				if !hasFallback {
					return nil, false
				}
				value, ok = vs.substitute(fallback)
				if !ok {
					return nil, false
				}
			}
			out = append(out, value...)
			continue
		}
		if len(token.Children) != 0 {
			children, ok := vs.substitute(token.Children)
			if !ok {
				return nil, false
			}
			token.Children = children
		}
		out = append(out, token)
	}
	return out, true
}

// parseVar splits the arguments of var(--name, fallback).
func parseVar(args []pa.Token) (name string, fallback []pa.Token, hasFallback, ok bool) {
	i := 0
	for i < len(args) && args[i].Kind == pa.Whitespace {
		i++
	}
	if i >= len(args) || args[i].Kind != pa.Ident || len(args[i].Value) < 3 || args[i].Value[:2] != "--" {
		return "", nil, false, false
	}
	name = args[i].Value
	i++
	for i < len(args) && args[i].Kind == pa.Whitespace {
		i++
	}
	if i == len(args) {
		return name, nil, false, true
	}
	if args[i].Kind != pa.Comma {
		return "", nil, false, false
	}
	return name, args[i+1:], true, true
}

// substituteValue resolves the var() references of a pending declaration,
// using the computed custom properties of the element.
func substituteValue(value pr.RawTokens, computed map[string]pr.RawTokens) ([]pa.Token, bool) {
	vs := variables{inherited: computed, invalid: map[string]bool{}, cyclic: map[string]bool{}}
	return vs.substitute(value)
}

func getSingleIdent(tokens []pa.Token) string {
	tokens = pa.RemoveWhitespace(tokens)
	if len(tokens) == 1 && tokens[0].Kind == pa.Ident {
		return tokens[0].LowerValue()
	}
	return ""
}
