package parser

import "strings"

// MediaFeature is a "(name: value)" or "(name)" test.
type MediaFeature struct {
	Name  string
	Value []Token
}

// MediaQuery is one query of a comma separated list.
type MediaQuery struct {
	Not bool
	// Type is the media type, "all" when omitted
	Type     string
	Features []MediaFeature
}

// MediaQueryList matches if one of its queries match.
// An empty list always matches.
type MediaQueryList []MediaQuery

// notAll is used in place of invalid queries, which never match.
var notAll = MediaQuery{Not: true, Type: "all"}

// ParseMediaQueryList parses the prelude of a @media rule,
// or the media attribute of <style> and <link> elements.
func ParseMediaQueryList(tokens []Token) MediaQueryList {
	if len(tokens) == 0 {
		return nil
	}
	var out MediaQueryList
	for _, part := range SplitOnComma(tokens) {
		out = append(out, parseMediaQuery(RemoveWhitespace(part)))
	}
	return out
}

func parseMediaQuery(tokens []Token) MediaQuery {
	if len(tokens) == 0 {
		return notAll
	}
	q := MediaQuery{Type: "all"}
	i := 0
	if tokens[0].Kind == Ident {
		switch strings.ToLower(tokens[0].Value) {
		case "not":
			q.Not = true
			i++
		case "only":
			i++
		}
		if i < len(tokens) && tokens[i].Kind == Ident {
			q.Type = strings.ToLower(tokens[i].Value)
			i++
		} else if i > 0 {
			return notAll
		}
	} else if tokens[0].Kind != ParenBlock {
		return notAll
	}
	expectAnd := i > 0
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if expectAnd {
			if !t.IsIdent("and") {
				return notAll
			}
			expectAnd = false
			continue
		}
		if t.Kind != ParenBlock {
			return notAll
		}
		feature, ok := parseMediaFeature(t.Children)
		if !ok {
			return notAll
		}
		q.Features = append(q.Features, feature)
		expectAnd = true
	}
	if tokens[len(tokens)-1].IsIdent("and") {
		return notAll
	}
	return q
}

func parseMediaFeature(tokens []Token) (MediaFeature, bool) {
	tokens = RemoveWhitespace(tokens)
	if len(tokens) == 0 || tokens[0].Kind != Ident {
		return MediaFeature{}, false
	}
	name := strings.ToLower(tokens[0].Value)
	if len(tokens) == 1 {
		return MediaFeature{Name: name}, true
	}
	if tokens[1].Kind != Colon || len(tokens) < 3 {
		return MediaFeature{}, false
	}
	return MediaFeature{Name: name, Value: tokens[2:]}, true
}
