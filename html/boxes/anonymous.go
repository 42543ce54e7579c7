package boxes

import (
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/text"
)

var (
	anonBlockDisplay    = pr.Display{Outer: "block", Inner: "flow"}
	anonRowGroupDisplay = pr.Display{Inner: "table-row-group"}
	anonRowDisplay      = pr.Display{Inner: "table-row"}
	anonCellDisplay     = pr.Display{Inner: "table-cell"}
	anonColGroupDisplay = pr.Display{Inner: "table-column-group"}
)

// finish fixes the children of [id], adding anonymous boxes so that
// the tree is well formed:
//   - a block container has either only block-level children or a
//     single line box (besides out-of-flow boxes and outside markers)
//   - table parts have the expected parents
//   - flex and grid items are block-level
func (b *builder) finish(id BoxID) {
	children := b.tree.boxes[id].Children
	switch b.tree.boxes[id].Type {
	case TableT:
		children = b.fixTable(id, children)
	case TableRowGroupT:
		children = b.wrapRuns(id, b.dropWhitespace(children), func(c *Box) bool { return c.Type == TableRowT },
			TableRowT, anonRowDisplay)
	case TableRowT:
		children = b.wrapRuns(id, b.dropWhitespace(children), func(c *Box) bool { return c.Type == TableCellT },
			TableCellT, anonCellDisplay)
	case TableColumnGroupT:
		var cols []BoxID
		for _, c := range children {
			if b.tree.boxes[c].Type == TableColumnT {
				cols = append(cols, c)
			}
		}
		children = cols
	case TableColumnT:
		children = nil
	case FlexT, GridT:
		children = b.fixItems(id, children)
	case BlockT, TableCellT, TableCaptionT:
		children = b.wrapMisparented(id, children)
		children = b.fixBlock(id, children)
	case InlineT:
		children = b.wrapMisparented(id, children)
	}
	b.setChildren(id, children)
	for _, c := range children {
		b.tree.boxes[c].Parent = id
	}
}

// isWhitespace returns true for text boxes made of collapsible spaces.
func (b *builder) isWhitespace(id BoxID) bool {
	box := &b.tree.boxes[id]
	if box.Type != TextT || box.Marker {
		return false
	}
	return text.IsCollapsibleSpace(box.Text, text.NewTextStyle(box.Style).WhiteSpace)
}

func (b *builder) dropWhitespace(children []BoxID) []BoxID {
	out := children[:0:0]
	for _, c := range children {
		if !b.isWhitespace(c) {
			out = append(out, c)
		}
	}
	return out
}

// ignorable returns true for inline content which does not
// generate a line: collapsible spaces, empty inlines and
// out-of-flow boxes.
func (b *builder) ignorable(id BoxID) bool {
	box := &b.tree.boxes[id]
	if box.IsOutOfFlow() && box.Type != TextT {
		return true
	}
	switch box.Type {
	case TextT:
		return b.isWhitespace(id)
	case InlineT:
		for _, c := range box.Children {
			if !b.ignorable(c) {
				return false
			}
		}
		return true
	}
	return false
}

// wrapRuns wraps the maximal runs of children not accepted by [isProper]
// into anonymous boxes of type [typ].
func (b *builder) wrapRuns(parent BoxID, children []BoxID, isProper func(*Box) bool, typ BoxType, display pr.Display) []BoxID {
	var (
		out []BoxID
		run []BoxID
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		wrapper := b.newAnonymous(typ, b.anonymousStyle(b.tree.boxes[parent].Style, display))
		b.setChildren(wrapper, run)
		b.finish(wrapper)
		out = append(out, wrapper)
		run = nil
	}
	for _, c := range children {
		if isProper(&b.tree.boxes[c]) {
			flush()
			out = append(out, c)
		} else {
			run = append(run, c)
		}
	}
	flush()
	return out
}

// fixTable ensures the children of a table are captions,
// column groups and row groups.
func (b *builder) fixTable(id BoxID, children []BoxID) []BoxID {
	children = b.dropWhitespace(children)
	isTablePart := func(c *Box) bool {
		switch c.Type {
		case TableCaptionT, TableRowGroupT, TableRowT, TableColumnGroupT, TableColumnT:
			return true
		}
		return false
	}
	children = b.wrapRuns(id, children, isTablePart, TableRowT, anonRowDisplay)
	children = b.wrapRuns(id, children, func(c *Box) bool { return c.Type != TableRowT }, TableRowGroupT, anonRowGroupDisplay)
	return b.wrapRuns(id, children, func(c *Box) bool { return c.Type != TableColumnT }, TableColumnGroupT, anonColGroupDisplay)
}

// fixItems wraps the runs of inline-level content of a flex or grid
// container into anonymous block items.
func (b *builder) fixItems(id BoxID, children []BoxID) []BoxID {
	isInlineContent := func(c *Box) bool {
		switch c.Type {
		case TextT, InlineT, LineBreakT:
			return true
		}
		return false
	}
	var out, run []BoxID
	flush := func() {
		if len(run) == 0 {
			return
		}
		allIgnorable := true
		for _, c := range run {
			allIgnorable = allIgnorable && b.ignorable(c)
		}
		if !allIgnorable {
			wrapper := b.newAnonymous(BlockT, b.anonymousStyle(b.tree.boxes[id].Style, anonBlockDisplay))
			b.setChildren(wrapper, run)
			b.finish(wrapper)
			out = append(out, wrapper)
		}
		run = nil
	}
	for _, c := range children {
		if isInlineContent(&b.tree.boxes[c]) {
			run = append(run, c)
		} else {
			flush()
			out = append(out, c)
		}
	}
	flush()
	return out
}

// wrapMisparented wraps the runs of table-internal boxes found outside
// of a table into anonymous tables. Spaces between such boxes are removed.
func (b *builder) wrapMisparented(id BoxID, children []BoxID) []BoxID {
	isInternal := func(c BoxID) bool { return b.tree.boxes[c].Type.IsTableInternal() }

	var out []BoxID
	for i := 0; i < len(children); {
		if !isInternal(children[i]) {
			out = append(out, children[i])
			i++
			continue
		}
		// find the end of the run, skipping spaces between internal boxes
		end := i
		for j := i + 1; j < len(children); j++ {
			if isInternal(children[j]) {
				end = j
			} else if !b.isWhitespace(children[j]) {
				break
			}
		}
		display := pr.Display{Outer: "block", Inner: "table"}
		if b.tree.boxes[id].Type == InlineT {
			display.Outer = "inline"
		}
		table := b.newAnonymous(TableT, b.anonymousStyle(b.tree.boxes[id].Style, display))
		b.setChildren(table, b.dropWhitespace(children[i:end+1]))
		b.finish(table)
		out = append(out, table)
		i = end + 1
	}
	return out
}

func (b *builder) containsBlock(id BoxID) bool {
	for _, c := range b.tree.boxes[id].Children {
		child := &b.tree.boxes[c]
		if child.IsInFlowBlockLevel() || (child.Type == InlineT && b.containsBlock(c)) {
			return true
		}
	}
	return false
}

// splitInline splits the inline box [id] around its in-flow block-level
// descendants, returning an alternation of inline parts and blocks.
// The first part reuses [id].
func (b *builder) splitInline(id BoxID) []BoxID {
	var (
		parts   []BoxID
		current []BoxID
		inlines []BoxID
	)
	flush := func() {
		part := id
		if len(inlines) != 0 {
			src := b.tree.boxes[id]
			part = b.newBox(InlineT, src.Style, src.Node, src.Pseudo)
			b.tree.boxes[part].Anonymous = src.Anonymous
		}
		b.setChildren(part, current)
		for _, c := range current {
			b.tree.boxes[c].Parent = part
		}
		inlines = append(inlines, part)
		parts = append(parts, part)
		current = nil
	}
	for _, c := range b.tree.boxes[id].Children {
		child := &b.tree.boxes[c]
		switch {
		case child.IsInFlowBlockLevel():
			flush()
			parts = append(parts, c)
		case child.Type == InlineT && b.containsBlock(c):
			for _, p := range b.splitInline(c) {
				if b.tree.boxes[p].IsInFlowBlockLevel() {
					flush()
					parts = append(parts, p)
				} else {
					current = append(current, p)
				}
			}
		default:
			current = append(current, c)
		}
	}
	flush()

	for i, part := range inlines {
		b.tree.boxes[part].SkipStart = i > 0
		b.tree.boxes[part].SkipEnd = i < len(inlines)-1
	}
	// drop the empty parts
	out := parts[:0]
	for _, p := range parts {
		box := &b.tree.boxes[p]
		if box.Type == InlineT && len(box.Children) == 0 && p != id {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fixBlock ensures a block container has either block-level children
// or a single line box.
func (b *builder) fixBlock(id BoxID, children []BoxID) []BoxID {
	var flat []BoxID
	for _, c := range children {
		if b.tree.boxes[c].Type == InlineT && b.containsBlock(c) {
			flat = append(flat, b.splitInline(c)...)
		} else {
			flat = append(flat, c)
		}
	}

	hasBlock := false
	for _, c := range flat {
		hasBlock = hasBlock || b.tree.boxes[c].IsInFlowBlockLevel()
	}

	var out, run []BoxID
	// flush wraps the inline content of run in a line, or an
	// anonymous block containing a line.
	flush := func(inBlock bool) {
		if len(run) == 0 {
			return
		}
		allIgnorable := true
		for _, c := range run {
			allIgnorable = allIgnorable && b.ignorable(c)
		}
		if allIgnorable {
			for _, c := range run {
				if box := &b.tree.boxes[c]; box.Type != TextT && box.IsOutOfFlow() {
					out = append(out, c)
				}
			}
		} else if inBlock {
			wrapper := b.newAnonymous(BlockT, b.anonymousStyle(b.tree.boxes[id].Style, anonBlockDisplay))
			b.setChildren(wrapper, run)
			b.finish(wrapper)
			out = append(out, wrapper)
		} else {
			out = append(out, b.newLine(id, run))
		}
		run = nil
	}
	for _, c := range flat {
		box := &b.tree.boxes[c]
		switch {
		case box.IsOutsideMarker():
			flush(hasBlock)
			out = append(out, c)
		case box.IsInFlowBlockLevel():
			flush(true)
			out = append(out, c)
		default:
			run = append(run, c)
		}
	}
	flush(hasBlock)
	return out
}

func (b *builder) newLine(parent BoxID, content []BoxID) BoxID {
	line := b.newAnonymous(LineT, b.anonymousStyle(b.tree.boxes[parent].Style, anonBlockDisplay))
	b.setChildren(line, content)
	for _, c := range content {
		b.tree.boxes[c].Parent = line
	}
	return line
}
