// This package defines the types needed to handle the supported CSS properties.
// There are 3 groups of types for a property, separated by 2 steps : cascading and computation.
// Schematically, the style computation is :
//
//	[]parser.Token (validation)-> DeclaredValue (cascade, var() and computation)-> CssProperty
//
// A computed [Style] always holds a value for every [KnownProp].
package properties

import (
	"github.com/benoitkugler/textlayout/language"
	"github.com/benoitkugler/vformat/css/parser"
	"github.com/benoitkugler/vformat/utils"
)

type Fl = utils.Fl

// DeclaredValue is the most general CSS input for a property,
// one of:
//   - the special "initial", "inherit" or "unset" keywords.
//   - a validated [CssProperty]
//   - [VarTokens] (containing var() tokens), pending validation
type DeclaredValue interface {
	String() string
}

// CssProperty is the final form of a css input, a.k.a. the computed value.
// Default values and "var()" have been resolved, and the raw stream of tokens has been
// validated.
type CssProperty interface {
	String() string
}

type DefaultValue uint8

const (
	Inherit DefaultValue = iota + 1
	Initial
	// Unset behaves like Inherit for inherited properties and
	// like Initial for the others.
	Unset
)

// NewDefaultValue returns 0 if [s] is not a CSS-wide keyword.
func NewDefaultValue(s string) DefaultValue {
	switch s {
	case "inherit":
		return Inherit
	case "initial":
		return Initial
	case "unset":
		return Unset
	}
	return 0
}

func (d DefaultValue) String() string {
	switch d {
	case Inherit:
		return "<inherit>"
	case Initial:
		return "<initial>"
	case Unset:
		return "<unset>"
	default:
		return "invalid value"
	}
}

type RawTokens []parser.Token

func (rt RawTokens) String() string { return parser.Serialize(rt) }

// VarTokens is the declared value of a property
// using var(). Validation is delayed until the variables
// are known.
type VarTokens struct {
	// Shorthand is the name of the shorthand declaring the property, or empty.
	Shorthand string
	Tokens    RawTokens
}

func (v VarTokens) String() string {
	if v.Shorthand != "" {
		return v.Shorthand + ": " + v.Tokens.String()
	}
	return v.Tokens.String()
}

// KnownProp efficiently encode a supported CSS property
type KnownProp uint8

func (p KnownProp) String() string {
	if int(p) < len(propsNames) {
		return propsNames[p]
	}
	return ""
}

// IsInherited returns true for properties inherited by default.
func (p KnownProp) IsInherited() bool { return Inherited.Has(p) }

// Properties is a general container for computed properties.
//
// In addition to the generic acces, an attempt to provide a "type safe" way is provided through the
// GetXXX and SetXXX methods. It relies on the convention than all the keys should be present,
// and values never be nil.
type Properties map[KnownProp]CssProperty

// Copy return a shallow copy.
func (p Properties) Copy() Properties {
	out := make(Properties, len(p))
	for name, v := range p {
		out[name] = v
	}
	return out
}

// UpdateWith merge the entries from `other` to `p`.
func (p Properties) UpdateWith(other Properties) {
	for k, v := range other {
		p[k] = v
	}
}

// Style is the computed style of an element, a pseudo-element
// or an anonymous box.
type Style struct {
	Properties

	// Variables stores the computed custom properties, inherited
	// from the parent.
	Variables map[string]RawTokens

	// Lang is the computed language, from the lang attribute.
	Lang language.Language
}

// NewInitialStyle returns a style with every property set to its initial value.
func NewInitialStyle() *Style {
	return &Style{Properties: InitialValues.Copy()}
}

// InheritFrom returns a style for an anonymous box, which
// inherits the inherited properties of [parent] and uses
// initial values for the others.
func InheritFrom(parent *Style) *Style {
	out := NewInitialStyle()
	if parent == nil {
		return out
	}
	for p := range Inherited {
		out.Properties[p] = parent.Properties[p]
	}
	out.Variables = parent.Variables
	out.Lang = parent.Lang
	return out
}

// Fingerprint returns a hash of the computed values,
// which is stable across runs.
func (s *Style) Fingerprint() uint64 {
	f := utils.NewFingerprint()
	for p := KnownProp(1); p < NbProps; p++ {
		if v := s.Properties[p]; v != nil {
			f.String(v.String())
		} else {
			f.String("")
		}
	}
	f.String(string(s.Lang))
	return f.Sum()
}

// Equal returns true if all the computed properties (excluding variables) are the same.
func (s *Style) Equal(other *Style) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.Lang != other.Lang {
		return false
	}
	for p := KnownProp(1); p < NbProps; p++ {
		v1, v2 := s.Properties[p], other.Properties[p]
		if (v1 == nil) != (v2 == nil) || (v1 != nil && v1.String() != v2.String()) {
			return false
		}
	}
	return true
}
