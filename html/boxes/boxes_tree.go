// Package boxes implements the box tree: the formatting structure
// generated from the styled document, before layout.
//
// Boxes are stored in an arena owned by a [Tree], and identified by
// a [BoxID]. The tree is strict: the only back reference is the
// originating document node.
package boxes

import (
	"fmt"
	"strings"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/utils"
)

// BoxID identifies a box in its [Tree].
type BoxID int32

// NoBox is the invalid BoxID.
const NoBox BoxID = -1

// BoxType is the closed set of box variants.
type BoxType uint8

const (
	// BlockT is a block container: block, list-item, inline-block,
	// flow-root and the anonymous block wrappers.
	BlockT BoxType = iota
	// LineT holds the inline-level content of a block container.
	// It is split into line fragments by the layout.
	LineT
	InlineT
	TextT
	// LineBreakT is a forced line break (<br>).
	LineBreakT
	ReplacedT
	FlexT
	GridT
	TableT
	TableRowGroupT
	TableRowT
	TableColumnGroupT
	TableColumnT
	TableCellT
	TableCaptionT
)

var typeNames = [...]string{
	BlockT:            "Block",
	LineT:             "Line",
	InlineT:           "Inline",
	TextT:             "Text",
	LineBreakT:        "LineBreak",
	ReplacedT:         "Replaced",
	FlexT:             "Flex",
	GridT:             "Grid",
	TableT:            "Table",
	TableRowGroupT:    "TableRowGroup",
	TableRowT:         "TableRow",
	TableColumnGroupT: "TableColumnGroup",
	TableColumnT:      "TableColumn",
	TableCellT:        "TableCell",
	TableCaptionT:     "TableCaption",
}

func (t BoxType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("BoxType(%d)", t)
}

// IsBlockContainer returns true for boxes whose children are either
// block-level boxes or a single line box.
func (t BoxType) IsBlockContainer() bool {
	return t == BlockT || t == TableCellT || t == TableCaptionT
}

// IsTableInternal returns true for the boxes only valid in a table.
func (t BoxType) IsTableInternal() bool {
	return t >= TableRowGroupT && t <= TableCaptionT
}

type Box struct {
	Type  BoxType
	Style *pr.Style
	// Node is the originating element, or dom.None for anonymous boxes.
	// Text boxes use the node of the parent element.
	Node dom.NodeID
	// Pseudo is "before", "after" or "marker" for generated content
	Pseudo string

	Parent   BoxID
	Children []BoxID

	// Text is the processed text of TextT boxes.
	Text string
	// Image is the content of replaced boxes, never nil.
	Image *images.Image

	Colspan, Rowspan int

	Anonymous bool
	// Marker is true for the list marker of a list item.
	Marker bool
	// SkipStart and SkipEnd are set on the parts of an inline box split
	// around a block-level box, when the left (right) decorations
	// belong to another part.
	SkipStart, SkipEnd bool
}

// IsOutOfFlow returns true for floats and absolutely positioned boxes.
func (b *Box) IsOutOfFlow() bool {
	return b.IsFloated() || b.IsAbsolutelyPositioned()
}

func (b *Box) IsFloated() bool {
	return b.Style.GetFloat() != kw.None
}

// IsAbsolutelyPositioned returns true for absolute and fixed positions.
func (b *Box) IsAbsolutelyPositioned() bool {
	return b.Style.GetPosition().IsIn(kw.Absolute, kw.Fixed)
}

// IsOutsideMarker returns true for markers positioned
// outside of the principal box.
func (b *Box) IsOutsideMarker() bool {
	return b.Marker && b.Style.GetListStylePosition() != kw.Inside
}

// IsInlineLevel returns true for boxes participating in an inline
// formatting context.
func (b *Box) IsInlineLevel() bool {
	switch b.Type {
	case InlineT, TextT, LineBreakT:
		return true
	case LineT:
		return false
	}
	return b.Style.GetDisplay().Outer == "inline"
}

// IsBlockLevel returns true for boxes participating in a block
// formatting context.
func (b *Box) IsBlockLevel() bool {
	if b.Type.IsTableInternal() || b.Type == LineT {
		return false
	}
	return !b.IsInlineLevel()
}

// IsInFlowBlockLevel returns true for the block-level boxes which are
// neither floated, absolutely positioned nor outside markers.
func (b *Box) IsInFlowBlockLevel() bool {
	return b.IsBlockLevel() && !b.IsOutOfFlow() && !b.IsOutsideMarker()
}

// IsAtomicInline returns true for inline-level boxes laid out as
// a single unit: inline-block, inline replaced, inline-flex, ...
func (b *Box) IsAtomicInline() bool {
	switch b.Type {
	case InlineT, TextT, LineBreakT, LineT:
		return false
	}
	return b.IsInlineLevel()
}

// IsHeader and IsFooter are valid for row groups.
func (b *Box) IsHeader() bool { return b.Style.GetDisplay().Inner == "table-header-group" }
func (b *Box) IsFooter() bool { return b.Style.GetDisplay().Inner == "table-footer-group" }

// Tree is the box tree of a document.
// It is immutable once built, and safe for concurrent reads.
type Tree struct {
	doc   *dom.Document
	boxes []Box
	Root  BoxID

	principal    map[dom.NodeID]BoxID
	fingerprints []uint64
}

// Len returns the number of boxes.
func (t *Tree) Len() int { return len(t.boxes) }

// Box returns the box [id], which must be valid.
func (t *Tree) Box(id BoxID) *Box { return &t.boxes[id] }

// Children returns the children of [id].
func (t *Tree) Children(id BoxID) []BoxID { return t.boxes[id].Children }

// Document returns the document the tree was built from.
func (t *Tree) Document() *dom.Document { return t.doc }

// BoxFor returns the principal box generated by [node], or NoBox.
func (t *Tree) BoxFor(node dom.NodeID) BoxID {
	if id, ok := t.principal[node]; ok {
		return id
	}
	return NoBox
}

// Fingerprint returns a hash of the subtree rooted at [id]:
// its structure, computed styles and content.
// Two subtrees with the same fingerprint have the same layout
// under the same constraints.
func (t *Tree) Fingerprint(id BoxID) uint64 { return t.fingerprints[id] }

// Walk calls [fn] on [id] and its descendants, in tree order.
// Returning false skips the descendants of the current box.
func (t *Tree) Walk(id BoxID, fn func(BoxID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range t.boxes[id].Children {
		t.Walk(c, fn)
	}
}

// Tag returns the tag of the box element, or its parent element
// for anonymous boxes.
func (t *Tree) Tag(id BoxID) string {
	for ; id != NoBox; id = t.boxes[id].Parent {
		if n := t.boxes[id].Node; n != dom.None {
			return t.doc.Tag(n)
		}
	}
	return ""
}

// compact drops the boxes unreachable from the root, and renumbers
// the others in preorder. The subtree of a box [id] then occupies the
// range [id, id+n), with the same relative layout for all the subtrees
// with the same fingerprint.
func (t *Tree) compact() {
	if t.Root == NoBox {
		t.boxes = nil
		clear(t.principal)
		return
	}
	newIDs := make([]BoxID, len(t.boxes))
	for i := range newIDs {
		newIDs[i] = NoBox
	}
	order := make([]BoxID, 0, len(t.boxes))
	t.Walk(t.Root, func(id BoxID) bool {
		newIDs[id] = BoxID(len(order))
		order = append(order, id)
		return true
	})

	boxes := make([]Box, len(order))
	for i, old := range order {
		box := t.boxes[old]
		children := make([]BoxID, len(box.Children))
		for j, c := range box.Children {
			children[j] = newIDs[c]
		}
		box.Children = children
		if box.Parent != NoBox {
			box.Parent = newIDs[box.Parent]
		}
		boxes[i] = box
	}
	for node, id := range t.principal {
		if newIDs[id] == NoBox {
			delete(t.principal, node)
		} else {
			t.principal[node] = newIDs[id]
		}
	}
	t.boxes = boxes
	t.Root = 0
}

// SubtreeEnd returns the first box after the subtree rooted at [id],
// so that the subtree is [id, SubtreeEnd(id)).
func (t *Tree) SubtreeEnd(id BoxID) BoxID {
	for {
		children := t.boxes[id].Children
		if len(children) == 0 {
			return id + 1
		}
		id = children[len(children)-1]
	}
}

func (t *Tree) computeFingerprints() {
	t.fingerprints = make([]uint64, len(t.boxes))
	styles := make(map[*pr.Style]uint64)
	var visit func(id BoxID) uint64
	visit = func(id BoxID) uint64 {
		box := &t.boxes[id]
		sf, ok := styles[box.Style]
		if !ok {
			sf = box.Style.Fingerprint()
			styles[box.Style] = sf
		}
		f := utils.NewFingerprint().Int(int(box.Type)).Uint64(sf).String(box.Text).
			Int(box.Colspan).Int(box.Rowspan).
			Bool(box.Marker).Bool(box.SkipStart).Bool(box.SkipEnd)
		if img := box.Image; img != nil {
			f.Uint64(img.ID).Float(img.Width).Float(img.Height).Float(img.Ratio)
		}
		for _, c := range box.Children {
			f.Uint64(visit(c))
		}
		t.fingerprints[id] = f.Sum()
		return t.fingerprints[id]
	}
	if t.Root != NoBox {
		visit(t.Root)
	}
}

// Dump returns a textual representation of the subtree rooted at [id],
// one box per line.
func (t *Tree) Dump(id BoxID) string {
	var sb strings.Builder
	var visit func(id BoxID, indent int)
	visit = func(id BoxID, indent int) {
		box := &t.boxes[id]
		sb.WriteString(strings.Repeat("  ", indent))
		fmt.Fprintf(&sb, "%s %s", t.Tag(id), box.Type)
		if box.Pseudo != "" {
			sb.WriteString(" ::" + box.Pseudo)
		}
		if box.Anonymous {
			sb.WriteString(" (anon)")
		}
		if box.Type == TextT {
			fmt.Fprintf(&sb, " %q", box.Text)
		}
		sb.WriteByte('\n')
		for _, c := range box.Children {
			visit(c, indent+1)
		}
	}
	if id != NoBox {
		visit(id, 0)
	}
	return sb.String()
}
