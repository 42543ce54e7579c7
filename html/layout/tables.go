package layout

import (
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

// Layout for tables and internal table boxes.
// See https://www.w3.org/TR/CSS21/tables.html

type tableCell struct {
	id             BoxID
	row, col       int // first slot
	rowspan, colsp int
	minW, maxW     Fl // border box widths
	res            result
	baseline       Fl
}

type tableRow struct {
	id    BoxID
	group int // index in tableGrid.groups
	cells []*tableCell
	// specified height, and used height and position
	minHeight Fl
	height    Fl
	baseline  Fl
	// breakable is false when a rowspan from an earlier row crosses
	// the top of the row
	breakable bool
}

type tableGroup struct {
	id               BoxID
	header, footer   bool
	firstRow, nbRows int
}

// tableGrid is the slot grid of a table.
type tableGrid struct {
	groups  []tableGroup
	rows    []tableRow
	cells   []*tableCell
	columns []BoxID // column boxes, possibly shorter than the grid
	nbCols  int

	captions []BoxID
}

func (g *tableGrid) cellBox(i int) BoxID { return g.cells[i].id }

// buildTableGrid assigns the cells to the slots of the table, with
// the header moved first and the footer last.
// See https://html.spec.whatwg.org/multipage/tables.html#forming-a-table
func (lc *layoutContext) buildTableGrid(id BoxID) *tableGrid {
	g := &tableGrid{}
	var header, footer BoxID = boxes.NoBox, boxes.NoBox
	var bodies []BoxID
	for _, c := range lc.box(id).Children {
		cb := lc.box(c)
		switch cb.Type {
		case boxes.TableCaptionT:
			g.captions = append(g.captions, c)
		case boxes.TableColumnGroupT:
			for _, col := range cb.Children {
				span := max(1, lc.box(col).Colspan)
				for range span {
					g.columns = append(g.columns, col)
				}
			}
		case boxes.TableRowGroupT:
			switch {
			case cb.IsHeader() && header == boxes.NoBox:
				header = c
			case cb.IsFooter() && footer == boxes.NoBox:
				footer = c
			default:
				bodies = append(bodies, c)
			}
		}
	}
	var ordered []BoxID
	if header != boxes.NoBox {
		ordered = append(ordered, header)
	}
	ordered = append(ordered, bodies...)
	if footer != boxes.NoBox {
		ordered = append(ordered, footer)
	}

	for gi, groupID := range ordered {
		group := tableGroup{id: groupID, header: groupID == header, footer: groupID == footer, firstRow: len(g.rows)}
		rowIDs := lc.box(groupID).Children
		group.nbRows = len(rowIDs)
		// slots used by rowspans, relative to the group
		occupied := make(map[[2]int]bool)
		for ri, rowID := range rowIDs {
			row := tableRow{id: rowID, group: gi, breakable: true}
			m := resolvePercentages(lc.box(rowID).Style, utils.Inf, utils.Inf)
			row.minHeight = max(0, m.height)
			for c := 0; c < g.nbCols; c++ {
				if occupied[[2]int{ri, c}] {
					row.breakable = false
				}
			}
			col := 0
			for _, cellID := range lc.box(rowID).Children {
				cell := lc.box(cellID)
				for occupied[[2]int{ri, col}] {
					col++
				}
				rowspan := cell.Rowspan
				if rowspan <= 0 || ri+rowspan > len(rowIDs) {
					rowspan = len(rowIDs) - ri
				}
				colspan := max(1, cell.Colspan)
				tc := &tableCell{id: cellID, row: len(g.rows), col: col, rowspan: rowspan, colsp: colspan}
				for r := ri; r < ri+rowspan; r++ {
					for c := col; c < col+colspan; c++ {
						occupied[[2]int{r, c}] = true
					}
				}
				row.cells = append(row.cells, tc)
				g.cells = append(g.cells, tc)
				col += colspan
				g.nbCols = max(g.nbCols, col)
			}
			g.rows = append(g.rows, row)
		}
		g.groups = append(g.groups, group)
	}
	g.nbCols = max(g.nbCols, len(g.columns))
	return g
}

// borderSpacing returns the horizontal and vertical spacing,
// zero in the collapsing border model.
func borderSpacing(style *pr.Style) (Fl, Fl) {
	if style.GetBorderCollapse() == kw.Collapse {
		return 0, 0
	}
	sp := style.GetBorderSpacing()
	return sp[0].Value, sp[1].Value
}

func sideWidth(style *pr.Style, side pr.Side) Fl {
	return style.Properties[pr.BorderWidth(side)].(pr.Value).Value
}

// collapseBorders resolves the borders in the collapsing model: each
// edge uses the widest of the adjoining borders, and each side of the
// edge uses half of it. It returns the borders of the table.
// See https://www.w3.org/TR/CSS21/tables.html#collapsing-borders
func (lc *layoutContext) collapseBorders(table BoxID, g *tableGrid) fragments.Sides {
	tableStyle := lc.box(table).Style
	nbRows := len(g.rows)
	// slot -> cell
	slots := make(map[[2]int]*tableCell)
	for _, c := range g.cells {
		for r := c.row; r < c.row+c.rowspan; r++ {
			for col := c.col; col < c.col+c.colsp; col++ {
				slots[[2]int{r, col}] = c
			}
		}
	}
	var tableBorder fragments.Sides
	for _, c := range g.cells {
		style := lc.box(c.id).Style
		var border fragments.Sides
		for side := pr.STop; side <= pr.SLeft; side++ {
			w := sideWidth(style, side)
			opposite := (side + 2) % 4
			var neighbors []*tableCell
			edge := false
			switch side {
			case pr.STop:
				edge = c.row == 0
				for col := c.col; col < c.col+c.colsp; col++ {
					neighbors = append(neighbors, slots[[2]int{c.row - 1, col}])
				}
			case pr.SBottom:
				edge = c.row+c.rowspan >= nbRows
				for col := c.col; col < c.col+c.colsp; col++ {
					neighbors = append(neighbors, slots[[2]int{c.row + c.rowspan, col}])
				}
			case pr.SLeft:
				edge = c.col == 0
				for r := c.row; r < c.row+c.rowspan; r++ {
					neighbors = append(neighbors, slots[[2]int{r, c.col - 1}])
				}
			case pr.SRight:
				edge = c.col+c.colsp >= g.nbCols
				for r := c.row; r < c.row+c.rowspan; r++ {
					neighbors = append(neighbors, slots[[2]int{r, c.col + c.colsp}])
				}
			}
			for _, n := range neighbors {
				if n != nil {
					w = max(w, sideWidth(lc.box(n.id).Style, opposite))
				}
			}
			if edge {
				w = max(w, sideWidth(tableStyle, side))
				tableBorder[side] = max(tableBorder[side], w/2)
			}
			border[side] = w / 2
		}
		lc.collapsed.Store(c.id, border)
	}
	return tableBorder
}

// measureColumns computes the minimum and maximum width of the columns.
func (lc *layoutContext) measureColumns(g *tableGrid, tableWidth Fl) ([]Fl, []Fl) {
	lc.parallelFor(len(g.cells), g.cellBox, func(i int) {
		c := g.cells[i]
		style := lc.box(c.id).Style
		m := resolvePercentages(style, tableWidth, utils.Inf)
		if border, ok := lc.collapsed.Load(c.id); ok {
			m.border = border.(fragments.Sides)
		}
		dec := m.decorationWidth()
		c.minW = lc.intrinsicContentWidth(c.id, minContent) + dec
		c.maxW = max(c.minW, lc.intrinsicContentWidth(c.id, maxContent)+dec)
		if m.width != -1 {
			c.minW = max(c.minW, m.width+dec)
			c.maxW = max(c.minW, m.width+dec)
		}
	})
	minW, maxW := make([]Fl, g.nbCols), make([]Fl, g.nbCols)
	for i, col := range g.columns {
		if w, ok := resolveOnePercentage(lc.box(col).Style.GetWidth(), tableWidth); ok {
			minW[i], maxW[i] = w, w
		}
	}
	for _, c := range g.cells {
		if c.colsp == 1 {
			minW[c.col] = max(minW[c.col], c.minW)
			maxW[c.col] = max(maxW[c.col], c.maxW)
		}
	}
	// spanning cells distribute their excess over the spanned columns
	for _, c := range g.cells {
		if c.colsp == 1 {
			continue
		}
		distribute := func(widths []Fl, target Fl) {
			var sum Fl
			for i := c.col; i < c.col+c.colsp; i++ {
				sum += widths[i]
			}
			if extra := target - sum; extra > 0 {
				for i := c.col; i < c.col+c.colsp; i++ {
					if sum > 0 {
						widths[i] += extra * widths[i] / sum
					} else {
						widths[i] += extra / Fl(c.colsp)
					}
				}
			}
		}
		distribute(minW, c.minW)
		distribute(maxW, c.maxW)
	}
	for i := range maxW {
		maxW[i] = max(maxW[i], minW[i])
	}
	return minW, maxW
}

// columnWidths returns the used column widths, for a table whose
// grid has the given content width (-1 for auto) and available width.
// See https://www.w3.org/TR/CSS21/tables.html#width-layout
func (lc *layoutContext) columnWidths(table BoxID, g *tableGrid, width, available, hSpacing Fl) ([]Fl, Fl) {
	spacing := hSpacing * Fl(g.nbCols+1)
	style := lc.box(table).Style
	if style.GetTableLayout() == kw.Fixed && width != -1 {
		return lc.fixedColumnWidths(g, width, spacing), width
	}
	minW, maxW := lc.measureColumns(g, available)
	var sumMin, sumMax Fl
	for i := range minW {
		sumMin += minW[i]
		sumMax += maxW[i]
	}
	used := width
	if used == -1 {
		used = min(available, sumMax+spacing)
	}
	used = max(used, sumMin+spacing)
	avail := used - spacing
	out := make([]Fl, g.nbCols)
	switch {
	case avail >= sumMax:
		for i := range out {
			switch {
			case sumMax > 0:
				out[i] = maxW[i] + (avail-sumMax)*maxW[i]/sumMax
			default:
				out[i] = avail / Fl(len(out))
			}
		}
	case sumMax > sumMin:
		ratio := (avail - sumMin) / (sumMax - sumMin)
		for i := range out {
			out[i] = minW[i] + (maxW[i]-minW[i])*ratio
		}
	default:
		copy(out, minW)
	}
	return out, used
}

// fixedColumnWidths uses the columns and the cells of the first row.
// See https://www.w3.org/TR/CSS21/tables.html#fixed-table-layout
func (lc *layoutContext) fixedColumnWidths(g *tableGrid, width, spacing Fl) []Fl {
	out := make([]Fl, g.nbCols)
	for i := range out {
		out[i] = -1
	}
	for i, col := range g.columns {
		if w, ok := resolveOnePercentage(lc.box(col).Style.GetWidth(), width); ok {
			out[i] = w
		}
	}
	if len(g.rows) != 0 {
		for _, c := range g.rows[0].cells {
			m := resolvePercentages(lc.box(c.id).Style, width, utils.Inf)
			if m.width == -1 || out[c.col] != -1 {
				continue
			}
			w := m.width + m.decorationWidth()
			for i := c.col; i < c.col+c.colsp; i++ {
				out[i] = w / Fl(c.colsp)
			}
		}
	}
	remaining, auto := width-spacing, 0
	for _, w := range out {
		if w == -1 {
			auto++
		} else {
			remaining -= w
		}
	}
	for i, w := range out {
		if w == -1 {
			out[i] = max(0, remaining) / Fl(auto)
		}
	}
	return out
}

// tableLayout lays out a table box, breaking between rows when fragmented.
// Headers and footers are repeated on each fragment.
func (lc *layoutContext) tableLayout(id BoxID, space ConstraintSpace, token *BreakToken) result {
	box := lc.box(id)
	style := box.Style
	lc.budget.checkIndex(token.index())
	m := resolvePercentages(style, space.PercentWidth, space.PercentHeight)
	g := lc.buildTableGrid(id)
	if style.GetBorderCollapse() == kw.Collapse {
		m.border = lc.collapseBorders(id, g)
		m.padding = fragments.Sides{}
	}
	if token != nil {
		m.margin[pr.STop] = 0
	}
	hs, vs := borderSpacing(style)

	width := -1 * Fl(1)
	if m.width != -1 {
		width = m.width + m.decorationWidth()
	}
	if space.FixedWidth >= 0 {
		width = space.FixedWidth
	}
	available := space.AvailableWidth - m.margin.Horizontal()
	dec := m.decorationWidth()
	gridWidth := width
	if gridWidth != -1 {
		gridWidth = max(0, width-dec)
	}
	columns, used := lc.columnWidths(id, g, gridWidth, max(0, available-dec), hs)
	colX := make([]Fl, len(columns)+1)
	x := hs
	for i, w := range columns {
		colX[i] = x
		x += w + hs
	}
	colX[len(columns)] = x

	m.width = used
	space.ShrinkToFit = false
	if box.IsInFlowBlockLevel() {
		sp := space
		sp.FixedWidth = -1
		m.minWidth, m.maxWidth = 0, utils.Inf
		lc.blockWidth(id, &m, sp) // auto margins
	}

	// cells are laid out with their used width
	cellWidth := func(c *tableCell) Fl {
		return colX[c.col+c.colsp-1] + columns[c.col+c.colsp-1] - colX[c.col]
	}
	lc.parallelFor(len(g.cells), g.cellBox, func(i int) {
		c := g.cells[i]
		sp := NewConstraintSpace(used, utils.Inf)
		sp.FixedWidth = cellWidth(c)
		c.res = lc.blockContainerLayout(c.id, sp, newFloatContext(), nil, nil)
		c.baseline = c.res.node.Height
		if c.res.node.HasBaseline {
			c.baseline = c.res.node.Baseline
		}
	})
	lc.rowHeights(g, vs)

	// captions
	var captions []*Node
	var captionsHeight Fl
	if token == nil {
		for _, c := range g.captions {
			sp := NewConstraintSpace(m.width+m.decorationWidth(), utils.Inf)
			res := lc.blockContainerLayout(c, sp, newFloatContext(), nil, nil)
			n := res.node
			captionsHeight += n.Margin[pr.STop]
			captions = append(captions, n.At(n.X, captionsHeight))
			captionsHeight += n.Height + n.Margin[pr.SBottom]
		}
		for i, n := range captions {
			captions[i] = n.Translate(0, -captionsHeight)
		}
	}

	// rows placed in this fragment
	first := g.firstBodyRow()
	if token != nil {
		first = token.Rows
	}
	end, repeatable := g.lastBodyRow(), g.rowsHeight(g.headerRows(), vs)+g.rowsHeight(g.footerRows(), vs)
	top := m.margin[pr.STop] + captionsHeight + m.border[pr.STop] + m.padding[pr.STop]
	budget := space.BlockBudget - top - repeatable - vs - m.border[pr.SBottom] - m.padding[pr.SBottom]
	next := end
	if space.fragmenting() {
		var h Fl
		for r := first; r < end; r++ {
			h += g.rows[r].height + vs
			if h <= budget+1e-3 {
				continue
			}
			// break before the last row starting a new rowspan block
			next = r
			for next > first && !g.rows[next].breakable {
				next--
			}
			if next == first && !space.FragmentainerTop {
				return result{pushed: true}
			}
			if next == first {
				next = max(r, first+1) // the fragmentainer must make progress
			}
			break
		}
	}

	if next < end {
		m.margin[pr.SBottom] = 0
	}
	node := &Node{
		Kind: fragments.BoxK, Box: id, Style: style,
		X: m.margin[pr.SLeft], Y: m.margin[pr.STop] + captionsHeight,
		Margin: m.margin, Border: m.border, Padding: m.padding,
		Width:     m.width + m.decorationWidth(),
		Index:     token.index(),
		SkipStart: token != nil, SkipEnd: next < end,
	}
	node.Children = append(node.Children, captions...)
	contentX, contentY := m.border[pr.SLeft]+m.padding[pr.SLeft], m.border[pr.STop]+m.padding[pr.STop]
	y := contentY + vs
	var absolutes []pendingAbs
	placeGroup := func(gr tableGroup, from, to int) {
		if from >= to {
			return
		}
		groupNode := &Node{
			Kind: fragments.BoxK, Box: gr.id, Style: lc.box(gr.id).Style,
			X: contentX, Y: y, Width: colX[len(columns)],
		}
		var gy Fl
		for r := from; r < to; r++ {
			row := &g.rows[r]
			rowNode := &Node{
				Kind: fragments.BoxK, Box: row.id, Style: lc.box(row.id).Style,
				X: 0, Y: gy, Width: colX[len(columns)], Height: row.height,
				Baseline: row.baseline, HasBaseline: true,
			}
			for _, c := range row.cells {
				h := g.spanHeight(c, vs)
				cell := lc.alignCell(c, h, row.baseline)
				rowNode.Children = append(rowNode.Children, cell.At(colX[c.col], 0))
				absolutes = append(absolutes, c.res.translatedAbsolutes(contentX+colX[c.col], y+gy)...)
			}
			groupNode.Children = append(groupNode.Children, rowNode)
			gy += row.height + vs
		}
		groupNode.Height = max(0, gy-vs)
		node.Children = append(node.Children, groupNode)
		y += gy
		if !node.HasBaseline && len(groupNode.Children) != 0 {
			node.Baseline, node.HasBaseline = groupNode.Y+groupNode.Children[0].Baseline, true
		}
	}
	for _, gr := range g.groups {
		from, to := gr.firstRow, gr.firstRow+gr.nbRows
		if !gr.header && !gr.footer {
			from, to = max(from, first), min(to, next)
		}
		placeGroup(gr, from, to)
	}
	contentHeight := y - contentY
	if m.height != -1 && token == nil && next == end {
		contentHeight = max(contentHeight, m.height)
	}
	node.Height = contentHeight + m.border.Vertical() + m.padding.Vertical()
	if traceMode {
		traceLogger.Dump(fmt.Sprintf("table %s: %d columns, rows [%d, %d)", lc.tree.Tag(id), len(columns), first, next))
	}

	for _, c := range box.Children {
		if cb := lc.box(c); cb.IsAbsolutelyPositioned() {
			absolutes = append(absolutes, pendingAbs{box: c, x: contentX, y: contentY, fixed: cb.Style.GetPosition() == kw.Fixed})
		}
	}
	node, absolutes = lc.placeAbsolutes(id, node, absolutes)
	out := result{node: node, after: []Fl{m.margin[pr.SBottom]}, absolutes: absolutes}
	if next < end {
		out.token = &BreakToken{Box: id, Rows: next, Index: node.Index}
		out.after = nil
	}
	return out
}

// rowHeights resolves the height and baseline of the rows.
func (lc *layoutContext) rowHeights(g *tableGrid, vs Fl) {
	for i := range g.rows {
		row := &g.rows[i]
		row.height = row.minHeight
		for _, c := range row.cells {
			if lc.cellVerticalAlign(c) == "baseline" {
				row.baseline = max(row.baseline, c.baseline)
			}
		}
		for _, c := range row.cells {
			if c.rowspan != 1 {
				continue
			}
			h := c.res.node.Height
			if lc.cellVerticalAlign(c) == "baseline" {
				h += row.baseline - c.baseline
			}
			row.height = max(row.height, h)
		}
	}
	// rowspans extend their last row
	for _, c := range g.cells {
		if c.rowspan == 1 {
			continue
		}
		if extra := c.res.node.Height - g.spanHeight(c, vs); extra > 0 {
			g.rows[c.row+c.rowspan-1].height += extra
		}
	}
}

func (lc *layoutContext) cellVerticalAlign(c *tableCell) string {
	v := lc.box(c.id).Style.GetVerticalAlign()
	switch v.S {
	case "top", "middle", "bottom":
		return v.S
	}
	return "baseline"
}

// alignCell stretches the cell to its rows, and aligns its content vertically.
func (lc *layoutContext) alignCell(c *tableCell, height, rowBaseline Fl) *Node {
	n := c.res.node
	var dy Fl
	free := height - n.Height
	switch lc.cellVerticalAlign(c) {
	case "middle":
		dy = free / 2
	case "bottom":
		dy = free
	case "baseline":
		dy = rowBaseline - c.baseline
	}
	out := *n
	out.Height = height
	out.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		out.Children[i] = child.Translate(0, dy)
	}
	if out.HasBaseline {
		out.Baseline += dy
	}
	return &out
}

func (g *tableGrid) spanHeight(c *tableCell, vs Fl) Fl {
	var h Fl
	for r := c.row; r < c.row+c.rowspan && r < len(g.rows); r++ {
		h += g.rows[r].height
	}
	return h + vs*Fl(c.rowspan-1)
}

func (g *tableGrid) headerRows() []tableRow {
	if len(g.groups) != 0 && g.groups[0].header {
		gr := g.groups[0]
		return g.rows[gr.firstRow : gr.firstRow+gr.nbRows]
	}
	return nil
}

func (g *tableGrid) footerRows() []tableRow {
	if n := len(g.groups); n != 0 && g.groups[n-1].footer {
		gr := g.groups[n-1]
		return g.rows[gr.firstRow : gr.firstRow+gr.nbRows]
	}
	return nil
}

func (g *tableGrid) firstBodyRow() int { return len(g.headerRows()) }

func (g *tableGrid) lastBodyRow() int { return len(g.rows) - len(g.footerRows()) }

func (g *tableGrid) rowsHeight(rows []tableRow, vs Fl) Fl {
	var h Fl
	for _, r := range rows {
		h += r.height + vs
	}
	return h
}

// tableIntrinsicWidth returns the preferred width of the content of a
// table: the sum of its columns.
func (lc *layoutContext) tableIntrinsicWidth(id BoxID, mode sizingMode) Fl {
	style := lc.box(id).Style
	g := lc.buildTableGrid(id)
	if style.GetBorderCollapse() == kw.Collapse {
		lc.collapseBorders(id, g)
	}
	hs, _ := borderSpacing(style)
	minW, maxW := lc.measureColumns(g, utils.Inf)
	widths := maxW
	if mode == minContent {
		widths = minW
	}
	s := hs * Fl(g.nbCols+1)
	for _, w := range widths {
		s += w
	}
	var captions Fl
	for _, c := range g.captions {
		captions = max(captions, lc.intrinsicWidth(c, mode))
	}
	return max(s, captions)
}
