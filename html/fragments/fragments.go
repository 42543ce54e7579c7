// Package fragments implements the fragment tree: the geometry
// computed by the layout for each box. One box may generate several
// fragments, when it is split across lines, columns or pages.
//
// The layout produces immutable [Node] subtrees, which may be shared
// between several layout passes. [Flatten] stores a final
// subtree into a [Tree], an arena with absolute positions, used by the
// display list builder.
package fragments

import (
	"fmt"
	"strings"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/utils"
)

type Fl = utils.Fl

type Kind uint8

const (
	// BoxK is the fragment of a block container, an inline box,
	// a flex, grid or table box.
	BoxK Kind = iota
	// LineK is a line box, owned by the block container.
	LineK
	// TextK is a text run, with no children.
	TextK
	ReplacedK
	// ColumnK is one column of a multi-column container.
	ColumnK
	// PageK is the root fragment of one page.
	PageK
	// RootK is the root of a paginated tree, whose children are pages.
	RootK
)

var kindNames = [...]string{
	BoxK:      "Box",
	LineK:     "Line",
	TextK:     "Text",
	ReplacedK: "Replaced",
	ColumnK:   "Column",
	PageK:     "Page",
	RootK:     "Root",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Sides stores the top, right, bottom and left values of
// margins, borders or paddings.
type Sides [4]Fl

func (s Sides) Horizontal() Fl { return s[pr.SRight] + s[pr.SLeft] }

func (s Sides) Vertical() Fl { return s[pr.STop] + s[pr.SBottom] }

// Node is a fragment produced by the layout. Nodes must not be modified
// once returned by a layout function: use [Node.At] to position a copy.
type Node struct {
	Kind Kind
	// Box is the box generating the fragment, or NoBox
	// for pages and columns.
	Box   boxes.BoxID
	Style *pr.Style

	// X and Y are the position of the border box, relative to the
	// border box of the parent fragment.
	X, Y          Fl
	Width, Height Fl // border box size

	Margin, Border, Padding Sides

	// Baseline is the position of the first baseline, from the top
	// of the border box. It is zero when the fragment has no baseline.
	Baseline    Fl
	HasBaseline bool

	Text  string // TextK only
	Image *images.Image

	// Index is the fragmentation index of the fragment among the
	// fragments of its box.
	Index int
	// SkipStart and SkipEnd are set when the start (end) decorations
	// are suppressed at a break.
	SkipStart, SkipEnd bool

	Children []*Node
}

// At returns a shallow copy of [n] positioned at (x, y).
func (n *Node) At(x, y Fl) *Node {
	c := *n
	c.X, c.Y = x, y
	return &c
}

// Translate returns a shallow copy of [n] moved by (dx, dy).
func (n *Node) Translate(dx, dy Fl) *Node { return n.At(n.X+dx, n.Y+dy) }

// ContentX returns the position of the content box, relative to the border box.
func (n *Node) ContentX() Fl { return n.Border[pr.SLeft] + n.Padding[pr.SLeft] }

// ContentY returns the position of the content box, relative to the border box.
func (n *Node) ContentY() Fl { return n.Border[pr.STop] + n.Padding[pr.STop] }

// ContentWidth returns the width of the content box.
func (n *Node) ContentWidth() Fl {
	return max(0, n.Width-n.Border.Horizontal()-n.Padding.Horizontal())
}

// ContentHeight returns the height of the content box.
func (n *Node) ContentHeight() Fl {
	return max(0, n.Height-n.Border.Vertical()-n.Padding.Vertical())
}

// MarginWidth returns the width of the margin box.
func (n *Node) MarginWidth() Fl { return n.Width + n.Margin.Horizontal() }

// MarginHeight returns the height of the margin box.
func (n *Node) MarginHeight() Fl { return n.Height + n.Margin.Vertical() }

// Rebase returns a deep copy of [n] whose box references are moved
// by [delta]. It is used to reuse a subtree laid out for an other box
// with the same content.
func (n *Node) Rebase(delta boxes.BoxID) *Node {
	if delta == 0 {
		return n
	}
	c := *n
	if c.Box != boxes.NoBox {
		c.Box += delta
	}
	if len(n.Children) != 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Rebase(delta)
		}
	}
	return &c
}

// Count returns the number of fragments in the subtree.
func (n *Node) Count() int {
	out := 1
	for _, c := range n.Children {
		out += c.Count()
	}
	return out
}

// FragmentID identifies a fragment in its [Tree].
type FragmentID int32

const NoFragment FragmentID = -1

// Fragment is a [Node] stored in a [Tree].
type Fragment struct {
	Kind  Kind
	Box   boxes.BoxID
	Style *pr.Style

	// X and Y are relative to the parent border box.
	X, Y          Fl
	Width, Height Fl
	// AbsX and AbsY are the position of the border box in the
	// coordinates of the root fragment.
	AbsX, AbsY Fl

	Margin, Border, Padding Sides
	Baseline                Fl
	HasBaseline             bool

	Text  string
	Image *images.Image

	Index              int
	SkipStart, SkipEnd bool

	Parent   FragmentID
	Children []FragmentID
}

// Tree is the read-only result of a layout pass.
type Tree struct {
	Boxes *boxes.Tree
	Root  FragmentID

	frags []Fragment
	byBox map[boxes.BoxID][]FragmentID
	// Warnings is the number of non-finite values replaced by zero.
	Warnings int
}

// Flatten stores the subtree [root] into a new tree.
// Non-finite or negative sizes are replaced by zero.
func Flatten(bt *boxes.Tree, root *Node) *Tree {
	t := &Tree{Boxes: bt, Root: NoFragment, byBox: make(map[boxes.BoxID][]FragmentID)}
	if root == nil {
		return t
	}
	t.frags = make([]Fragment, 0, root.Count())
	t.Root = t.add(root, NoFragment, 0, 0)
	if t.Warnings != 0 {
		logger.WarningLogger.Printf("%d non finite fragment geometries replaced by zero", t.Warnings)
	}
	return t
}

func (t *Tree) finite(v Fl) Fl {
	v, fixed := utils.Finite(v)
	if fixed {
		t.Warnings++
	}
	return v
}

func (t *Tree) size(v Fl) Fl {
	v = t.finite(v)
	if v < 0 {
		t.Warnings++
		return 0
	}
	return v
}

func (t *Tree) add(n *Node, parent FragmentID, parentX, parentY Fl) FragmentID {
	id := FragmentID(len(t.frags))
	f := Fragment{
		Kind: n.Kind, Box: n.Box, Style: n.Style,
		X: t.finite(n.X), Y: t.finite(n.Y),
		Width: t.size(n.Width), Height: t.size(n.Height),
		Margin: n.Margin, Border: n.Border, Padding: n.Padding,
		Baseline: t.finite(n.Baseline), HasBaseline: n.HasBaseline,
		Text: n.Text, Image: n.Image,
		Index: n.Index, SkipStart: n.SkipStart, SkipEnd: n.SkipEnd,
		Parent: parent,
	}
	f.AbsX, f.AbsY = parentX+f.X, parentY+f.Y
	t.frags = append(t.frags, f)
	if n.Box != boxes.NoBox {
		t.byBox[n.Box] = append(t.byBox[n.Box], id)
	}
	children := make([]FragmentID, len(n.Children))
	for i, c := range n.Children {
		children[i] = t.add(c, id, f.AbsX, f.AbsY)
	}
	t.frags[id].Children = children
	return id
}

// Len returns the number of fragments.
func (t *Tree) Len() int { return len(t.frags) }

// Fragment returns the fragment [id], which must be valid.
func (t *Tree) Fragment(id FragmentID) *Fragment { return &t.frags[id] }

// FragmentsOf returns the fragments of [box], ordered by fragmentation index.
func (t *Tree) FragmentsOf(box boxes.BoxID) []FragmentID { return t.byBox[box] }

// Walk calls [fn] on [id] and its descendants, in tree order.
// Returning false skips the descendants of the current fragment.
func (t *Tree) Walk(id FragmentID, fn func(FragmentID) bool) {
	if id == NoFragment || !fn(id) {
		return
	}
	for _, c := range t.frags[id].Children {
		t.Walk(c, fn)
	}
}

// Dump returns a textual representation of the subtree rooted at [id].
func (t *Tree) Dump(id FragmentID) string {
	var sb strings.Builder
	var visit func(id FragmentID, indent int)
	visit = func(id FragmentID, indent int) {
		f := &t.frags[id]
		sb.WriteString(strings.Repeat("  ", indent))
		tag := ""
		if f.Box != boxes.NoBox && t.Boxes != nil {
			tag = t.Boxes.Tag(f.Box) + " "
		}
		fmt.Fprintf(&sb, "%s%s (%g, %g) %gx%g", tag, f.Kind, f.X, f.Y, f.Width, f.Height)
		if f.Kind == TextK {
			fmt.Fprintf(&sb, " %q", f.Text)
		}
		sb.WriteByte('\n')
		for _, c := range f.Children {
			visit(c, indent+1)
		}
	}
	if id != NoFragment {
		visit(id, 0)
	}
	return sb.String()
}

// Pages returns the page fragments of a paginated tree,
// or the root for a continuous one.
func (t *Tree) Pages() []FragmentID {
	if t.Root == NoFragment {
		return nil
	}
	if root := &t.frags[t.Root]; root.Kind == RootK {
		return root.Children
	}
	return []FragmentID{t.Root}
}
