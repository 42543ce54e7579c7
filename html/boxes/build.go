package boxes

import (
	"strconv"
	"strings"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/text"
)

// Styles gives the computed styles of a document. It is implemented
// by the style resolver.
type Styles interface {
	// Style returns nil for pseudo-elements generating no box.
	Style(node dom.NodeID, pseudo string) *pr.Style
}

type anonKey struct {
	parent  *pr.Style
	display pr.Display
}

type builder struct {
	doc    *dom.Document
	styles Styles
	images images.Provider
	tree   *Tree

	anonStyles map[anonKey]*pr.Style

	// lastSpace is true when the previous text of the current
	// inline formatting context ends with a collapsible space
	lastSpace  bool
	quoteDepth int
	// list item counters, by parent element
	counters map[dom.NodeID]int
	ordinals map[dom.NodeID]int
}

// Build creates the box tree of [doc], without image support.
func Build(doc *dom.Document, styles Styles) *Tree { return BuildWith(doc, styles, nil) }

// BuildWith creates the box tree of [doc], using [imgs]
// to resolve replaced elements. [imgs] may be nil.
//
// A root element with display: none gives an empty tree.
func BuildWith(doc *dom.Document, styles Styles, imgs images.Provider) *Tree {
	logger.ProgressLogger.Printf("Creating formatting structure")

	b := builder{
		doc:        doc,
		styles:     styles,
		images:     imgs,
		tree:       &Tree{doc: doc, Root: NoBox, principal: make(map[dom.NodeID]BoxID)},
		anonStyles: make(map[anonKey]*pr.Style),
		counters:   make(map[dom.NodeID]int),
		ordinals:   make(map[dom.NodeID]int),
	}
	if root := doc.Root(); root != dom.None {
		// the root element is always blockified
		if ids := b.elementToBoxes(root); len(ids) != 0 {
			b.tree.Root = ids[0]
			b.tree.boxes[ids[0]].Parent = NoBox
		}
	}
	b.tree.compact()
	b.tree.computeFingerprints()
	return b.tree
}

func typeFor(display pr.Display) BoxType {
	switch display.Inner {
	case "flex":
		return FlexT
	case "grid":
		return GridT
	case "table":
		return TableT
	case "table-row-group", "table-header-group", "table-footer-group":
		return TableRowGroupT
	case "table-row":
		return TableRowT
	case "table-column-group":
		return TableColumnGroupT
	case "table-column":
		return TableColumnT
	case "table-cell":
		return TableCellT
	case "table-caption":
		return TableCaptionT
	}
	if display.IsInlineFlow() && !display.ListItem {
		return InlineT
	}
	return BlockT
}

func (b *builder) newBox(typ BoxType, style *pr.Style, node dom.NodeID, pseudo string) BoxID {
	id := BoxID(len(b.tree.boxes))
	b.tree.boxes = append(b.tree.boxes, Box{
		Type: typ, Style: style, Node: node, Pseudo: pseudo,
		Parent: NoBox, Colspan: 1, Rowspan: 1,
	})
	return id
}

func (b *builder) newAnonymous(typ BoxType, style *pr.Style) BoxID {
	id := b.newBox(typ, style, dom.None, "")
	b.tree.boxes[id].Anonymous = true
	return id
}

// anonymousStyle returns a style inheriting from [parent], with
// the given display. Styles are shared.
func (b *builder) anonymousStyle(parent *pr.Style, display pr.Display) *pr.Style {
	key := anonKey{parent, display}
	if s := b.anonStyles[key]; s != nil {
		return s
	}
	s := pr.InheritFrom(parent)
	s.SetDisplay(display)
	b.anonStyles[key] = s
	return s
}

func (b *builder) setChildren(id BoxID, children []BoxID) {
	b.tree.boxes[id].Children = children
}

// elementToBoxes converts an element and its children into a box tree,
// returning zero, one or several boxes.
func (b *builder) elementToBoxes(node dom.NodeID) []BoxID {
	style := b.styles.Style(node, "")
	if style == nil {
		return nil
	}
	display := style.GetDisplay()
	if display.IsNone() {
		return nil
	}
	if display.IsContents() {
		// the box is elided, its children are promoted
		return b.childrenBoxes(node, style)
	}
	if handler := htmlHandlers[b.doc.Atom(node)]; handler != nil {
		if ids, handled := handler(b, node, style); handled {
			return ids
		}
	}
	return b.defaultBoxes(node, style)
}

func (b *builder) defaultBoxes(node dom.NodeID, style *pr.Style) []BoxID {
	display := style.GetDisplay()
	typ := typeFor(display)
	id := b.newBox(typ, style, node, "")
	b.tree.principal[node] = id
	if typ == TableCellT {
		b.tree.boxes[id].Colspan = integerAttribute(b.doc, node, "colspan", 1, 1000)
		b.tree.boxes[id].Rowspan = integerAttribute(b.doc, node, "rowspan", 1, 65534)
	}

	if typ != InlineT {
		b.lastSpace = false
	}
	var marker []BoxID
	if display.ListItem {
		marker = b.markerBox(node, style)
	}
	children := append(marker, b.childrenBoxes(node, style)...)
	if typ != InlineT {
		b.lastSpace = false
	}

	b.setChildren(id, children)
	b.finish(id)
	return []BoxID{id}
}

// childrenBoxes returns the boxes for the ::before pseudo-element,
// the children of [node], and the ::after pseudo-element.
func (b *builder) childrenBoxes(node dom.NodeID, style *pr.Style) []BoxID {
	var out []BoxID
	out = append(out, b.pseudoBoxes(node, "before")...)
	for _, child := range b.doc.Children(node) {
		if b.doc.IsText(child) {
			out = append(out, b.textBoxes(node, "", style, b.doc.Text(child))...)
		} else {
			out = append(out, b.elementToBoxes(child)...)
		}
	}
	out = append(out, b.pseudoBoxes(node, "after")...)
	return out
}

// textBoxes processes the white space of [s], returning at most one box.
func (b *builder) textBoxes(node dom.NodeID, pseudo string, style *pr.Style, s string) []BoxID {
	ts := text.NewTextStyle(style)
	s = text.ProcessWhitespace(s, ts.WhiteSpace, b.lastSpace)
	if s == "" {
		return nil
	}
	s = text.Transform(s, ts.Transform, ts.Lang)
	b.lastSpace = ts.WhiteSpace.SpaceCollapse() && strings.HasSuffix(s, " ")

	id := b.newBox(TextT, style, node, pseudo)
	b.tree.boxes[id].Text = s
	return []BoxID{id}
}

// pseudoBoxes builds the ::before or ::after pseudo-element
// of [node], using its content property.
func (b *builder) pseudoBoxes(node dom.NodeID, pseudo string) []BoxID {
	style := b.styles.Style(node, pseudo)
	if style == nil {
		return nil
	}
	display := style.GetDisplay()
	if display.IsNone() {
		return nil
	}
	content := b.contentText(node, style.GetContent())
	if display.IsContents() {
		return b.textBoxes(node, pseudo, style, content)
	}
	typ := typeFor(display)
	if typ.IsTableInternal() || typ == TableT {
		// generated content is text: use a block or inline box
		typ = BlockT
		if display.Outer == "inline" {
			typ = InlineT
		}
	}
	id := b.newBox(typ, style, node, pseudo)
	if typ != InlineT {
		b.lastSpace = false
	}
	b.setChildren(id, b.textBoxes(node, pseudo, style, content))
	if typ != InlineT {
		b.lastSpace = false
	}
	b.finish(id)
	return []BoxID{id}
}

// contentText evaluates the items of the content property.
func (b *builder) contentText(node dom.NodeID, content pr.Contents) string {
	var sb strings.Builder
	for _, item := range content {
		switch item.Type {
		case "string":
			sb.WriteString(item.Value)
		case "open-quote":
			if b.quoteDepth%2 == 0 {
				sb.WriteString("“")
			} else {
				sb.WriteString("‘")
			}
			b.quoteDepth++
		case "close-quote":
			b.quoteDepth = max(b.quoteDepth-1, 0)
			if b.quoteDepth%2 == 0 {
				sb.WriteString("”")
			} else {
				sb.WriteString("’")
			}
		case "counter":
			// only the implicit list-item counter is supported
			value := 0
			if item.Value == "list-item" {
				value = b.ordinals[node]
			}
			sb.WriteString(strconv.Itoa(value))
		}
	}
	return sb.String()
}

// listOrdinal updates and returns the list-item counter of [node].
func (b *builder) listOrdinal(node dom.NodeID) int {
	parent := b.doc.Parent(node)
	value, isSet := b.counters[parent]
	if !isSet {
		value = integerAttribute(b.doc, parent, "start", -1<<31, 1<<31-1)
		if _, hasStart := b.doc.Attr(parent, "start"); !hasStart {
			value = 1
		}
	} else {
		value++
	}
	if v, ok := b.doc.Attr(node, "value"); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			value = i
		}
	}
	b.counters[parent] = value
	b.ordinals[node] = value
	return value
}

func markerText(listStyle pr.Keyword, ordinal int) string {
	switch listStyle {
	case kw.Disc:
		return "• "
	case kw.Circle:
		return "◦ "
	case kw.Square:
		return "▪ "
	case kw.Decimal:
		return strconv.Itoa(ordinal) + ". "
	default:
		return ""
	}
}

// markerBox returns the marker of a list item, which is a text box.
func (b *builder) markerBox(node dom.NodeID, style *pr.Style) []BoxID {
	ordinal := b.listOrdinal(node)
	s := markerText(style.GetListStyleType(), ordinal)
	if s == "" {
		return nil
	}
	markerStyle := b.anonymousStyle(style, pr.Display{Outer: "inline", Inner: "flow"})
	id := b.newBox(TextT, markerStyle, node, "marker")
	b.tree.boxes[id].Marker = true
	b.tree.boxes[id].Text = s
	return []BoxID{id}
}
