// Package layout transforms a box tree into a fragment tree, by breaking
// boxes across lines, columns and pages, and determining the size and
// position of each fragment.
//
// The entry points are [Layout], for a continuous media, and [Paginate].
// Layout is dispatched on the formatting context established by each
// box (see [ContextKind]). Every formatting context takes a box and a
// [ConstraintSpace] and returns an immutable fragment subtree: the box
// tree is never mutated, so that layout passes may run concurrently and
// their results may be cached.
package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/benoitkugler/vformat/config"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/text"
	"github.com/benoitkugler/vformat/utils"
	"github.com/benoitkugler/vformat/utils/testutils/tracer"
	"go.uber.org/zap"
)

// if true, dump each laid out fragment tree to a file
const traceMode = false

var traceLogger tracer.Tracer // used only when traceMode is true

func init() {
	if traceMode {
		traceLogger = tracer.NewTracer(filepath.Join(os.TempDir(), "trace_go.txt"))
	}
}

type Fl = utils.Fl

// used when the configuration does not bound the sizing loops
const defaultMaxRounds = 16

type (
	BoxID = boxes.BoxID
	Node  = fragments.Node
)

// ContextKind is the formatting context established by a box.
type ContextKind uint8

const (
	// FlowContext is a block container: block, inline-block,
	// table cell or caption.
	FlowContext ContextKind = iota
	// InlineContext is the content of a line box, laid out by its
	// block container.
	InlineContext
	FlexContext
	GridContext
	TableContext
	MulticolContext
	ReplacedContext
	// InternalContext is used by the boxes laid out by their
	// parent context: inline boxes, text, table parts.
	InternalContext
)

var contextNames = [...]string{
	FlowContext:     "flow",
	InlineContext:   "inline",
	FlexContext:     "flex",
	GridContext:     "grid",
	TableContext:    "table",
	MulticolContext: "multicol",
	ReplacedContext: "replaced",
	InternalContext: "internal",
}

func (k ContextKind) String() string {
	if int(k) < len(contextNames) {
		return contextNames[k]
	}
	return fmt.Sprintf("ContextKind(%d)", k)
}

// ContextKindOf returns the formatting context established by [box].
func ContextKindOf(box *boxes.Box) ContextKind {
	switch box.Type {
	case boxes.BlockT, boxes.TableCellT, boxes.TableCaptionT:
		if box.Type == boxes.BlockT && isMulticol(box.Style) {
			return MulticolContext
		}
		return FlowContext
	case boxes.LineT:
		return InlineContext
	case boxes.FlexT:
		return FlexContext
	case boxes.GridT:
		return GridContext
	case boxes.TableT:
		return TableContext
	case boxes.ReplacedT:
		return ReplacedContext
	case boxes.InlineT, boxes.TextT, boxes.LineBreakT,
		boxes.TableRowGroupT, boxes.TableRowT, boxes.TableColumnGroupT, boxes.TableColumnT:
		return InternalContext
	default:
		panic(fmt.Sprintf("unexpected box type %s", box.Type))
	}
}

func isMulticol(style *pr.Style) bool {
	return !style.GetColumnCount().Auto || !style.GetColumnWidth().IsAuto()
}

// establishesBFC returns true if the block container [box]
// establishes a new block formatting context.
// See https://www.w3.org/TR/CSS2/visuren.html#block-formatting
func establishesBFC(box *boxes.Box) bool {
	if box.Type != boxes.BlockT {
		return true
	}
	display := box.Style.GetDisplay()
	return box.IsFloated() ||
		box.IsAbsolutelyPositioned() ||
		display.Outer == "inline" ||
		display.Inner == "flow-root" ||
		box.Style.GetOverflow() != kw.Visible
}

// Options tunes a layout pass.
type Options struct {
	// Measurer is the text measurement service.
	// It defaults to [text.FixedMeasurer].
	Measurer text.Measurer
	Config   config.LayoutConfig
	// Cache is optional. When provided, the layout of formatting
	// context roots is reused between passes.
	Cache *Cache
}

// BreakToken records where the layout of a box stopped,
// at a fragmentation break.
type BreakToken struct {
	Box BoxID
	// Child is the index of the child to resume from.
	Child int
	// Inner is the token of the child [Child], or nil
	// to start it from the beginning.
	Inner *BreakToken
	// Item is the index of the first inline item, when [Child]
	// is a line box, and Line the number of lines already laid out.
	Item, Line int
	// Index is the number of fragments of [Box] already laid out.
	Index int
	// Consumed is the block size of [Box] already laid out.
	Consumed Fl
	// Rows is used by tables, for the index of the first row of
	// the row group [Child].
	Rows int
}

func (bt *BreakToken) index() int {
	if bt == nil {
		return 0
	}
	return bt.Index + 1
}

// pendingAbs is an absolutely positioned box waiting for its
// containing block.
type pendingAbs struct {
	box BoxID
	// static position of the margin box, relative to the border box
	// of the fragment holding the pendingAbs
	x, y  Fl
	fixed bool
}

// result is the output of the layout of one box.
type result struct {
	// node is the border box. Its X position includes the left margin,
	// its Y position is the offset of the border box from the top of
	// the pending margins.
	node *Node
	// after are the margins adjoining the bottom of the box
	after []Fl
	// collapsedThrough is true when the top and bottom margins of an
	// empty box are adjoining.
	collapsedThrough bool

	// token is nil when the box is complete.
	token *BreakToken
	// pushed is true when nothing could be placed in the current
	// fragmentainer and the box must move to the next one.
	pushed bool

	absolutes []pendingAbs
}

func (r result) translatedAbsolutes(dx, dy Fl) []pendingAbs {
	out := make([]pendingAbs, len(r.absolutes))
	for i, a := range r.absolutes {
		a.x += dx
		a.y += dy
		out[i] = a
	}
	return out
}

// rebase shifts the box references of a cached result.
func (r result) rebase(delta BoxID) result {
	if delta == 0 {
		return r
	}
	r.node = r.node.Rebase(delta)
	abs := make([]pendingAbs, len(r.absolutes))
	for i, a := range r.absolutes {
		a.box += delta
		abs[i] = a
	}
	r.absolutes = abs
	return r
}

type layoutContext struct {
	tree    *boxes.Tree
	measure text.Measurer
	cfg     config.LayoutConfig
	cache   *Cache
	budget  *budget

	// initial containing block
	viewportWidth, viewportHeight Fl

	textStyles sync.Map // *pr.Style -> *text.TextStyle
	intrinsics sync.Map // passKey -> Fl
	// collapsed borders of table cells, as BoxID -> fragments.Sides
	collapsed sync.Map
}

func newLayoutContext(ctx context.Context, bt *boxes.Tree, opts Options, viewportWidth, viewportHeight Fl) *layoutContext {
	lc := &layoutContext{
		tree:           bt,
		measure:        opts.Measurer,
		cfg:            opts.Config,
		cache:          opts.Cache,
		budget:         newBudget(ctx, opts.Config),
		viewportWidth:  viewportWidth,
		viewportHeight: viewportHeight,
	}
	if lc.measure == nil {
		lc.measure = text.FixedMeasurer{}
	}
	if lc.cfg.FlexMaxRounds <= 0 {
		lc.cfg.FlexMaxRounds = defaultMaxRounds
	}
	return lc
}

func (lc *layoutContext) box(id BoxID) *boxes.Box { return lc.tree.Box(id) }

func (lc *layoutContext) textStyle(style *pr.Style) *text.TextStyle {
	if ts, ok := lc.textStyles.Load(style); ok {
		return ts.(*text.TextStyle)
	}
	ts, _ := lc.textStyles.LoadOrStore(style, text.NewTextStyle(style))
	return ts.(*text.TextStyle)
}

// Layout lays out the subtree [root] in a continuous media,
// returning a tree whose root is a page fragment of the viewport size
// (growing with the content).
//
// [space] is the initial containing block. Resource limit errors
// ([ErrBudgetExceeded], [ErrFragmentLimit], or the error of [ctx])
// abort the layout and are returned with a nil tree.
func Layout(ctx context.Context, bt *boxes.Tree, root BoxID, space ConstraintSpace, opts Options) (_ *fragments.Tree, err error) {
	if root == boxes.NoBox {
		return fragments.Flatten(bt, nil), nil
	}
	lc := newLayoutContext(ctx, bt, opts, space.AvailableWidth, space.AvailableHeight)
	defer recoverAbort(&err)

	logger.ProgressLogger.Printf("Step 4 - Creating layout - Continuous")
	lc.budget.enter()

	page := lc.layoutRootPage(root, space, fragments.Sides{}, nil, true)

	out := fragments.Flatten(bt, page.node)
	logger.ProgressLogger.Log("layout done",
		zap.Int("fragments", out.Len()), zap.Int64("steps", lc.budget.Steps()))
	if traceMode {
		traceLogger.DumpTree(out, "layout done")
	}
	return out, nil
}

// layoutRootPage lays out the root element on a page whose page area
// is [space], surrounded by [margin], and places the positioned boxes
// bubbling up to the initial containing block. When [grow] is true,
// the page height is extended to the content.
func (lc *layoutContext) layoutRootPage(root BoxID, space ConstraintSpace, margin fragments.Sides, token *BreakToken, grow bool) result {
	res := lc.layoutBlockLevelRoot(root, space, token)
	if res.pushed { // nothing fits: the root is forced on the page
		space.BlockBudget = utils.Inf
		res = lc.layoutBlockLevelRoot(root, space, token)
	}

	areaHeight := space.AvailableHeight
	if !utils.IsFinite(areaHeight) {
		areaHeight = 0
	}
	rootNode := res.node
	if grow {
		areaHeight = max(areaHeight, rootNode.Y+rootNode.Height+rootNode.Margin[pr.SBottom])
	}
	ox, oy := margin[pr.SLeft], margin[pr.STop]
	page := &Node{
		Kind: fragments.PageK, Box: boxes.NoBox,
		Width:    space.AvailableWidth + margin.Horizontal(),
		Height:   areaHeight + margin.Vertical(),
		Margin:   margin,
		Children: []*Node{rootNode.Translate(ox, oy)},
	}
	// the initial containing block is the page area
	abs := lc.layoutInitialAbsolutes(res.translatedAbsolutes(ox+rootNode.X, oy+rootNode.Y), ox, oy, space.AvailableWidth, areaHeight)
	page.Children = append(page.Children, abs...)
	return result{node: page, token: res.token}
}

// layoutBlockLevelRoot lays out the root element, which
// establishes a block formatting context.
func (lc *layoutContext) layoutBlockLevelRoot(root BoxID, space ConstraintSpace, token *BreakToken) result {
	space.FragmentainerTop = true
	var res result
	if lc.box(root).Type.IsBlockContainer() && ContextKindOf(lc.box(root)) == FlowContext {
		res = lc.blockContainerLayout(root, space, newFloatContext(), nil, token)
	} else {
		res = lc.independentLayout(root, space, token)
	}
	if res.node.Y < res.node.Margin[pr.STop] { // margins of the root never collapse with the page
		res.node = res.node.At(res.node.X, res.node.Margin[pr.STop])
	}
	res.node = lc.applyRelative(root, res.node, space.AvailableWidth, space.PercentHeight)
	return res
}

// independentLayout lays out a box establishing an independent
// formatting context: its layout does not depend on the outside,
// except for the constraint space. Results are cached when
// no fragmentation is involved.
func (lc *layoutContext) independentLayout(id BoxID, space ConstraintSpace, token *BreakToken) result {
	if lc.cache == nil || token != nil || space.fragmenting() {
		return lc.formattingContextLayout(id, space, token)
	}
	return lc.cache.layout(lc, id, space)
}

// formattingContextLayout dispatches on the context kind of [id].
func (lc *layoutContext) formattingContextLayout(id BoxID, space ConstraintSpace, token *BreakToken) result {
	lc.budget.enter()
	box := lc.box(id)
	switch kind := ContextKindOf(box); kind {
	case FlowContext:
		return lc.blockContainerLayout(id, space, newFloatContext(), nil, token)
	case MulticolContext:
		return lc.columnsLayout(id, space, token)
	case FlexContext:
		return lc.flexLayout(id, space)
	case GridContext:
		return lc.gridLayout(id, space)
	case TableContext:
		return lc.tableLayout(id, space, token)
	case ReplacedContext:
		return lc.replacedLayout(id, space)
	case InlineContext, InternalContext:
		panic(fmt.Sprintf("box %s (%s) does not establish a formatting context", lc.tree.Tag(id), box.Type))
	default:
		panic(fmt.Sprintf("unexpected context kind %s", kind))
	}
}

// blockLevelLayout lays out the in-flow block-level child [id] of a
// block container, after the pending margins [adjoining].
func (lc *layoutContext) blockLevelLayout(id BoxID, space ConstraintSpace, fc floatContext, adjoining []Fl, token *BreakToken) result {
	box := lc.box(id)
	if ContextKindOf(box) == FlowContext && !establishesBFC(box) {
		return lc.blockContainerLayout(id, space, fc, adjoining, token)
	}
	res := lc.independentLayout(id, space, token)
	if res.pushed {
		return res
	}
	// independent contexts do not collapse margins with their children
	if token == nil {
		ownTop := res.node.Margin[pr.STop]
		res.node = res.node.At(res.node.X, collapseMargin(appendMargin(adjoining, ownTop))+res.node.Y-ownTop)
	}
	res.after = []Fl{res.node.Margin[pr.SBottom]}
	if res.token != nil {
		res.after = nil
	}
	return res
}
