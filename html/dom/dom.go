// Package dom wraps a document parsed by golang.org/x/net/html into an
// arena, where each node is identified by a stable NodeID.
//
// The underlying *html.Node tree is kept, since selector matching works on
// it, but every traversal used by the style resolver and the box builder
// goes through indices, so that incremental invalidation is a simple index
// lookup.
//
// Mutations (node added or removed, attribute or text changed) must be done
// through the Document methods, which notify the registered listeners.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/vformat/logger"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeID identifies a node of a Document. IDs are never reused.
type NodeID int32

// None is the invalid NodeID.
const None NodeID = -1

// Document is an arena of HTML nodes.
// It is not safe for concurrent mutations.
type Document struct {
	nodes []*html.Node // nil for removed nodes
	ids   map[*html.Node]NodeID
	root  NodeID

	listeners  map[int]Listener
	nextListen int

	generation uint64
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("invalid html input: %w", err)
	}
	return FromNode(root), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) { return Parse(strings.NewReader(s)) }

// FromNode registers the tree rooted at [n]. If [n] is a document node,
// its <html> element is used as root.
func FromNode(n *html.Node) *Document {
	doc := &Document{ids: make(map[*html.Node]NodeID), root: None, listeners: map[int]Listener{}}
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				n = c
				break
			}
		}
	}
	doc.root = doc.register(n)
	return doc
}

// register adds [n] and its descendants, in tree order.
func (doc *Document) register(n *html.Node) NodeID {
	if !isRelevant(n) {
		return None
	}
	id := NodeID(len(doc.nodes))
	doc.nodes = append(doc.nodes, n)
	doc.ids[n] = id
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		doc.register(c)
	}
	return id
}

func (doc *Document) unregister(n *html.Node) {
	if id, ok := doc.ids[n]; ok {
		doc.nodes[id] = nil
		delete(doc.ids, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		doc.unregister(c)
	}
}

// comments and doctypes are invisible to the rendering
func isRelevant(n *html.Node) bool {
	return n.Type == html.ElementNode || n.Type == html.TextNode
}

// Root returns the root element (usually <html>).
func (doc *Document) Root() NodeID { return doc.root }

// Len returns the size of the arena, including removed slots.
func (doc *Document) Len() int { return len(doc.nodes) }

// Generation is incremented by every mutation.
func (doc *Document) Generation() uint64 { return doc.generation }

// Node returns the underlying node, or nil if [id] has been removed.
func (doc *Document) Node(id NodeID) *html.Node {
	if id < 0 || int(id) >= len(doc.nodes) {
		return nil
	}
	return doc.nodes[id]
}

// ID returns the id of [n], or None.
func (doc *Document) ID(n *html.Node) NodeID {
	if id, ok := doc.ids[n]; ok {
		return id
	}
	return None
}

// Parent returns the parent element, or None for the root.
func (doc *Document) Parent(id NodeID) NodeID {
	n := doc.Node(id)
	if n == nil || id == doc.root {
		return None
	}
	return doc.ID(n.Parent)
}

// Children returns the element and text children of [id].
func (doc *Document) Children(id NodeID) []NodeID {
	n := doc.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if cid, ok := doc.ids[c]; ok {
			out = append(out, cid)
		}
	}
	return out
}

// NextElementSiblings returns the elements following [id].
func (doc *Document) NextElementSiblings(id NodeID) []NodeID {
	n := doc.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, doc.ID(c))
		}
	}
	return out
}

func (doc *Document) IsElement(id NodeID) bool {
	n := doc.Node(id)
	return n != nil && n.Type == html.ElementNode
}

func (doc *Document) IsText(id NodeID) bool {
	n := doc.Node(id)
	return n != nil && n.Type == html.TextNode
}

// Tag returns the lower case tag name of an element, or "".
func (doc *Document) Tag(id NodeID) string {
	if n := doc.Node(id); n != nil && n.Type == html.ElementNode {
		return n.Data
	}
	return ""
}

// Atom returns the atom of an element tag, or 0.
func (doc *Document) Atom(id NodeID) atom.Atom {
	if n := doc.Node(id); n != nil && n.Type == html.ElementNode {
		return n.DataAtom
	}
	return 0
}

// Attr returns the value of the attribute [key].
func (doc *Document) Attr(id NodeID, key string) (string, bool) {
	n := doc.Node(id)
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns the content of a text node, or "".
func (doc *Document) Text(id NodeID) string {
	if n := doc.Node(id); n != nil && n.Type == html.TextNode {
		return n.Data
	}
	return ""
}

// TextContent returns the concatenation of the descendant text nodes.
func (doc *Document) TextContent(id NodeID) string {
	var sb strings.Builder
	doc.Walk(id, func(n NodeID) bool {
		sb.WriteString(doc.Text(n))
		return true
	})
	return sb.String()
}

// Walk calls [fn] on [id] and its descendants, in tree order.
// Returning false skips the descendants of the current node.
func (doc *Document) Walk(id NodeID, fn func(NodeID) bool) {
	if doc.Node(id) == nil {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range doc.Children(id) {
		doc.Walk(c, fn)
	}
}

// Ancestors returns the ancestors of [id], from the parent to the root.
func (doc *Document) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := doc.Parent(id); p != None; p = doc.Parent(p) {
		out = append(out, p)
	}
	return out
}

// ------------------------------- mutations -------------------------------

// AppendChild inserts [n] (and its descendants) as last child of [parent].
func (doc *Document) AppendChild(parent NodeID, n *html.Node) (NodeID, error) {
	return doc.InsertBefore(parent, n, None)
}

// InsertBefore inserts [n] before [ref], or at the end if [ref] is None.
func (doc *Document) InsertBefore(parent NodeID, n *html.Node, ref NodeID) (NodeID, error) {
	p := doc.Node(parent)
	if p == nil || p.Type != html.ElementNode {
		return None, fmt.Errorf("invalid parent node %d", parent)
	}
	if n.Parent != nil {
		return None, fmt.Errorf("node already has a parent")
	}
	var refNode *html.Node
	if ref != None {
		refNode = doc.Node(ref)
		if refNode == nil || refNode.Parent != p {
			return None, fmt.Errorf("invalid reference node %d", ref)
		}
	}
	p.InsertBefore(n, refNode)
	id := doc.register(n)
	doc.notify(Mutation{Kind: NodeAdded, Node: id, Parent: parent})
	return id, nil
}

// RemoveChild detaches [id] and its descendants. Their ids become invalid.
func (doc *Document) RemoveChild(id NodeID) error {
	n := doc.Node(id)
	if n == nil || id == doc.root {
		return fmt.Errorf("can't remove node %d", id)
	}
	parent := doc.Parent(id)
	doc.unregister(n)
	n.Parent.RemoveChild(n)
	doc.notify(Mutation{Kind: NodeRemoved, Node: id, Parent: parent})
	return nil
}

// SetAttribute adds or updates an attribute of an element.
func (doc *Document) SetAttribute(id NodeID, key, value string) error {
	n := doc.Node(id)
	if n == nil || n.Type != html.ElementNode {
		return fmt.Errorf("invalid element %d", id)
	}
	key = strings.ToLower(key)
	found := false
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == value {
				return nil
			}
			n.Attr[i].Val = value
			found = true
			break
		}
	}
	if !found {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	}
	doc.notify(Mutation{Kind: AttributeChanged, Node: id, Parent: doc.Parent(id), Attr: key})
	return nil
}

// RemoveAttribute removes an attribute, if present.
func (doc *Document) RemoveAttribute(id NodeID, key string) {
	n := doc.Node(id)
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			doc.notify(Mutation{Kind: AttributeChanged, Node: id, Parent: doc.Parent(id), Attr: key})
			return
		}
	}
}

// SetText changes the content of a text node.
func (doc *Document) SetText(id NodeID, text string) error {
	n := doc.Node(id)
	if n == nil || n.Type != html.TextNode {
		return fmt.Errorf("invalid text node %d", id)
	}
	if n.Data == text {
		return nil
	}
	n.Data = text
	doc.notify(Mutation{Kind: TextChanged, Node: id, Parent: doc.Parent(id)})
	return nil
}

func (doc *Document) notify(m Mutation) {
	doc.generation++
	m.Generation = doc.generation
	logger.ProgressLogger.Printf("DOM mutation: %s on node %d", m.Kind, m.Node)
	for i := 0; i < doc.nextListen; i++ {
		if l, ok := doc.listeners[i]; ok {
			l(m)
		}
	}
}

// Subscribe registers [l] for the mutations. It returns a function
// to unsubscribe.
func (doc *Document) Subscribe(l Listener) (unsubscribe func()) {
	key := doc.nextListen
	doc.nextListen++
	doc.listeners[key] = l
	return func() { delete(doc.listeners, key) }
}
