package parser

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Kind is the type of a component value.
type Kind uint8

const (
	Ident Kind = iota
	// Function has its arguments in Children, Value is the lower case name
	Function
	AtKeyword
	// Hash value is stored without the leading '#'
	Hash
	// String value is unquoted
	String
	// URL value is the unquoted content of url()
	URL
	// Delim is any other single character, like '/', '!' or '+'
	Delim
	Number
	Percentage
	Dimension
	Whitespace
	Comma
	Colon
	// ParenBlock is a ( ) block, with its content in Children
	ParenBlock
	// BracketBlock is a [ ] block, with its content in Children
	BracketBlock
	// Bad is used for invalid input (bad strings, unbalanced blocks)
	Bad
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Function:
		return "function"
	case AtKeyword:
		return "at-keyword"
	case Hash:
		return "hash"
	case String:
		return "string"
	case URL:
		return "url"
	case Delim:
		return "delim"
	case Number:
		return "number"
	case Percentage:
		return "percentage"
	case Dimension:
		return "dimension"
	case Whitespace:
		return "whitespace"
	case Comma:
		return "comma"
	case Colon:
		return "colon"
	case ParenBlock:
		return "()"
	case BracketBlock:
		return "[]"
	default:
		return "bad"
	}
}

// Token is a CSS component value. Function and block tokens are nested.
type Token struct {
	Kind  Kind
	Value string
	// Num is the numeric value of Number, Percentage and Dimension tokens
	Num float64
	// Unit is the lower case unit of Dimension tokens
	Unit string
	// IsInt is true for numbers written without fraction or exponent
	IsInt    bool
	Children []Token
}

// IsIdent returns true for an identifier matching [s], ASCII case insensitive.
func (t Token) IsIdent(s string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Value, s)
}

// LowerValue returns the value, in ASCII lower case.
func (t Token) LowerValue() string { return strings.ToLower(t.Value) }

// String serializes the token back to CSS.
func (t Token) String() string {
	switch t.Kind {
	case Function:
		return t.Value + "(" + Serialize(t.Children) + ")"
	case ParenBlock:
		return "(" + Serialize(t.Children) + ")"
	case BracketBlock:
		return "[" + Serialize(t.Children) + "]"
	case AtKeyword:
		return "@" + t.Value
	case Hash:
		return "#" + t.Value
	case String:
		return strconv.Quote(t.Value)
	case URL:
		return "url(" + t.Value + ")"
	case Number:
		return formatNum(t.Num)
	case Percentage:
		return formatNum(t.Num) + "%"
	case Dimension:
		return formatNum(t.Num) + t.Unit
	case Whitespace:
		return " "
	case Comma:
		return ","
	case Colon:
		return ":"
	default:
		return t.Value
	}
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Serialize joins the serialization of the tokens.
func Serialize(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// Tokenize splits [s] into component values, nesting functions and blocks.
func Tokenize(s string) []Token {
	l := css.NewLexer(parse.NewInputString(s))
	var raw []css.Token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt == css.CommentToken {
			continue
		}
		raw = append(raw, css.Token{TokenType: tt, Data: parse.Copy(data)})
	}
	out, _ := convert(raw)
	return out
}

// convert builds nested tokens from the flat tdewolff tokens.
// It returns the number of input tokens consumed, stopping at an
// unmatched closing parenthesis or bracket.
func convert(raw []css.Token) ([]Token, int) {
	var out []Token
	for i := 0; i < len(raw); i++ {
		t := raw[i]
		data := string(t.Data)
		switch t.TokenType {
		case css.IdentToken, css.CustomPropertyNameToken:
			out = append(out, Token{Kind: Ident, Value: data})
		case css.FunctionToken:
			children, n := convert(raw[i+1:])
			i += n
			name := strings.ToLower(strings.TrimSuffix(data, "("))
			out = append(out, Token{Kind: Function, Value: name, Children: trimWhitespace(children)})
		case css.LeftParenthesisToken:
			children, n := convert(raw[i+1:])
			i += n
			out = append(out, Token{Kind: ParenBlock, Children: trimWhitespace(children)})
		case css.LeftBracketToken:
			children, n := convert(raw[i+1:])
			i += n
			out = append(out, Token{Kind: BracketBlock, Children: trimWhitespace(children)})
		case css.RightParenthesisToken, css.RightBracketToken:
			return out, i + 1
		case css.AtKeywordToken:
			out = append(out, Token{Kind: AtKeyword, Value: strings.TrimPrefix(data, "@")})
		case css.HashToken:
			out = append(out, Token{Kind: Hash, Value: strings.TrimPrefix(data, "#")})
		case css.StringToken:
			out = append(out, Token{Kind: String, Value: unquote(data)})
		case css.URLToken:
			out = append(out, Token{Kind: URL, Value: unquoteURL(data)})
		case css.NumberToken:
			out = append(out, numberToken(Number, data, ""))
		case css.PercentageToken:
			out = append(out, numberToken(Percentage, strings.TrimSuffix(data, "%"), ""))
		case css.DimensionToken:
			num, unit := splitDimension(data)
			out = append(out, numberToken(Dimension, num, unit))
		case css.WhitespaceToken:
			if len(out) != 0 && out[len(out)-1].Kind != Whitespace {
				out = append(out, Token{Kind: Whitespace})
			}
		case css.CommaToken:
			out = append(out, Token{Kind: Comma})
		case css.ColonToken:
			out = append(out, Token{Kind: Colon})
		case css.CommentToken:
		case css.BadStringToken, css.BadURLToken:
			out = append(out, Token{Kind: Bad, Value: data})
		default:
			out = append(out, Token{Kind: Delim, Value: data})
		}
	}
	return out, len(raw)
}

func numberToken(kind Kind, num, unit string) Token {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Token{Kind: Bad, Value: num + unit}
	}
	isInt := !strings.ContainsAny(num, ".eE")
	return Token{Kind: kind, Num: f, Unit: strings.ToLower(unit), IsInt: isInt}
}

func splitDimension(s string) (num, unit string) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	// exponent, but not the "e" of a unit like "em"
	if i+1 < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if s[j] == '+' || s[j] == '-' {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	return s[:i], s[i:]
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		if s[len(s)-1] == s[0] {
			return s[1 : len(s)-1]
		}
		return s[1:]
	}
	return s
}

func unquoteURL(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i != -1 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ")")
	return unquote(strings.TrimSpace(s))
}

func trimWhitespace(tokens []Token) []Token {
	for len(tokens) != 0 && tokens[0].Kind == Whitespace {
		tokens = tokens[1:]
	}
	for len(tokens) != 0 && tokens[len(tokens)-1].Kind == Whitespace {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// RemoveWhitespace returns the tokens without whitespace.
func RemoveWhitespace(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != Whitespace {
			out = append(out, t)
		}
	}
	return out
}

// SplitOnComma splits [tokens] at the top level commas.
func SplitOnComma(tokens []Token) [][]Token {
	var (
		out     [][]Token
		current []Token
	)
	for _, t := range tokens {
		if t.Kind == Comma {
			out = append(out, trimWhitespace(current))
			current = nil
			continue
		}
		current = append(current, t)
	}
	return append(out, trimWhitespace(current))
}
