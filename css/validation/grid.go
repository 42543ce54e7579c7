package validation

import (
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
)

// maximum number of tracks created by repeat()
const maxRepeat = 1000

// getTrackBreadth parses <track-breadth> :
// <length-percentage [0,∞]> | <flex [0,∞]> | min-content | max-content | auto
func getTrackBreadth(token Token) (pr.Value, bool) {
	switch k := getKeyword(token); k {
	case "auto", "min-content", "max-content":
		return pr.SToV(k), true
	}
	if token.Kind == pa.Dimension && token.Unit == "fr" && token.Num >= 0 {
		return pr.NewDim(pr.Fl(token.Num), pr.Fr).ToValue(), true
	}
	if l := getLength(token, false, true); l.Unit != 0 {
		return l.ToValue(), true
	}
	return pr.Value{}, false
}

// getTrackSize parses <track-size> : <track-breadth> | minmax(<inflexible-breadth>, <track-breadth>)
func getTrackSize(token Token) (pr.TrackSize, bool) {
	if token.Kind == pa.Function && token.Value == "minmax" {
		args := pa.SplitOnComma(pa.RemoveWhitespace(token.Children))
		if len(args) != 2 || len(args[0]) != 1 || len(args[1]) != 1 {
			return pr.TrackSize{}, false
		}
		min, ok1 := getTrackBreadth(args[0][0])
		max, ok2 := getTrackBreadth(args[1][0])
		if !ok1 || !ok2 || min.Unit == pr.Fr {
			return pr.TrackSize{}, false
		}
		return pr.TrackSize{Min: min, Max: max}, true
	}
	v, ok := getTrackBreadth(token)
	if !ok {
		return pr.TrackSize{}, false
	}
	if v.Unit == pr.Fr {
		// a flexible breadth alone has an automatic minimum
		return pr.TrackSize{Min: pr.SToV("auto"), Max: v}, true
	}
	return pr.TrackSize{Min: v, Max: v}, true
}

func gridTemplate(tokens []Token) pr.CssProperty {
	if getSingleKeyword(tokens) == "none" {
		return pr.TrackList(nil)
	}
	var out pr.TrackList
	for _, token := range tokens {
		if token.Kind == pa.Function && token.Value == "repeat" {
			tracks, ok := expandRepeat(token)
			if !ok {
				return nil
			}
			out = append(out, tracks...)
			continue
		}
		// line names are accepted but ignored
		if token.Kind == pa.BracketBlock {
			continue
		}
		ts, ok := getTrackSize(token)
		if !ok {
			return nil
		}
		out = append(out, ts)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// repeat(<integer [1,∞]>, <track-size>+)
func expandRepeat(token Token) (pr.TrackList, bool) {
	args := pa.SplitOnComma(token.Children)
	if len(args) != 2 {
		return nil, false
	}
	countTokens, tracks := pa.RemoveWhitespace(args[0]), pa.RemoveWhitespace(args[1])
	if len(countTokens) != 1 {
		return nil, false
	}
	count, ok := getInteger(countTokens[0])
	if !ok || count < 1 || count > maxRepeat {
		return nil, false
	}
	var pattern pr.TrackList
	for _, t := range tracks {
		if t.Kind == pa.BracketBlock {
			continue
		}
		ts, ok := getTrackSize(t)
		if !ok {
			return nil, false
		}
		pattern = append(pattern, ts)
	}
	if len(pattern) == 0 {
		return nil, false
	}
	total := min(count*len(pattern), pr.MaxGridLines)
	out := make(pr.TrackList, total)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out, true
}

func gridAuto(tokens []Token) pr.CssProperty {
	var out pr.TrackList
	for _, token := range tokens {
		ts, ok := getTrackSize(token)
		if !ok {
			return nil
		}
		out = append(out, ts)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// gridAutoFlow accepts [row | column] || dense. Dense packing is not
// supported and falls back to the sparse algorithm.
func gridAutoFlow(tokens []Token) pr.CssProperty {
	var (
		direction kw.Keyword
		dense     bool
	)
	for _, token := range tokens {
		switch getKeyword(token) {
		case "row":
			if direction != 0 {
				return nil
			}
			direction = kw.Row
		case "column":
			if direction != 0 {
				return nil
			}
			direction = kw.Column
		case "dense":
			if dense {
				return nil
			}
			dense = true
		default:
			return nil
		}
	}
	if direction == 0 {
		if !dense {
			return nil
		}
		direction = kw.Row
	}
	return direction
}

// gridLine accepts auto | <integer> | span <integer>.
// Named lines are not supported.
func gridLine(tokens []Token) pr.CssProperty {
	switch len(tokens) {
	case 1:
		if getKeyword(tokens[0]) == "auto" {
			return pr.GridLine{Auto: true}
		}
		if v, ok := gridInteger(tokens[0]); ok && v != 0 {
			return pr.GridLine{Line: v}
		}
	case 2:
		spanFirst := getKeyword(tokens[0]) == "span"
		if !spanFirst && getKeyword(tokens[1]) != "span" {
			return nil
		}
		number := tokens[1]
		if !spanFirst {
			number = tokens[0]
		}
		if v, ok := gridInteger(number); ok && v > 0 {
			return pr.GridLine{Span: v}
		}
	}
	return nil
}

// gridInteger clamps the integer to [-MaxGridLines, MaxGridLines].
func gridInteger(token Token) (int, bool) {
	if token.Kind != pa.Number || !token.IsInt {
		return 0, false
	}
	return int(max(-pr.MaxGridLines, min(pr.MaxGridLines, token.Num))), true
}
