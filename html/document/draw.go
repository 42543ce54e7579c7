// Package document turns fragment trees into display lists, and drives
// the whole formatting pipeline: style resolution, box generation,
// layout and painting.
package document

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/benoitkugler/vformat/backend"
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/text"
	"github.com/benoitkugler/vformat/utils"
)

type Fl = utils.Fl

// DrawOptions are the services used while painting.
type DrawOptions struct {
	// Measurer computes the glyph advances. It should be the one used
	// for the layout, and defaults to [text.FixedMeasurer].
	Measurer text.Measurer
	// Images resolves background images. It may be nil.
	Images images.Provider
}

// BuildDisplayList paints [frags] with the default options.
func BuildDisplayList(frags *fragments.Tree) *backend.List {
	return BuildDisplayListWith(frags, DrawOptions{})
}

// BuildDisplayListWith returns the display list of [frags], with one
// page per page fragment. Pages are painted concurrently when
// they hold enough fragments.
func BuildDisplayListWith(frags *fragments.Tree, opts DrawOptions) *backend.List {
	if opts.Measurer == nil {
		opts.Measurer = text.FixedMeasurer{}
	}
	pages := frags.Pages()
	out := &backend.List{Pages: make([]backend.Page, len(pages))}

	var g errgroup.Group
	g.SetLimit(paintParallelism(len(pages), frags.Len()))
	for i, page := range pages {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = paintPanic{value: r, stack: debug.Stack()}
				}
			}()
			out.Pages[i] = paintPage(frags, page, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// resume on the calling goroutine, where the pipeline recovers
		panic(err)
	}
	return out
}

// paintGrain is the minimal number of fragments
// painted by each goroutine.
const paintGrain = 256

// paintParallelism returns the number of goroutines painting
// [pages] pages holding [frags] fragments in total.
func paintParallelism(pages, frags int) int {
	if pages < 2 || frags < 2*paintGrain {
		return 1
	}
	return max(1, min(runtime.GOMAXPROCS(0), pages, frags/paintGrain))
}

// paintPanic is a panic raised while painting a page,
// captured on the painting goroutine.
type paintPanic struct {
	value interface{}
	stack []byte
}

func (p paintPanic) Error() string { return fmt.Sprintf("painting: %v", p.value) }

// painter accumulates the commands of one page.
type painter struct {
	tree *fragments.Tree
	opts DrawOptions

	// page origin, in tree coordinates
	ox, oy Fl

	// canvasSource is the fragment whose background
	// is painted on the whole page.
	canvasSource fragments.FragmentID

	textStyles map[*pr.Style]*text.TextStyle
	commands   []backend.Command
}

func paintPage(tree *fragments.Tree, id fragments.FragmentID, opts DrawOptions) backend.Page {
	f := tree.Fragment(id)
	p := painter{
		tree: tree, opts: opts,
		ox: f.AbsX, oy: f.AbsY,
		canvasSource: fragments.NoFragment,
		textStyles:   make(map[*pr.Style]*text.TextStyle),
	}
	p.paintCanvas(f)
	p.paintContext(NewStackingContext(tree, id))
	return backend.Page{
		Width: f.Width, Height: f.Height,
		Commands: p.commands,
		Anchors:  collectAnchors(tree, id),
	}
}

func (p *painter) emit(source fragments.FragmentID, c backend.Command) {
	c.Source = int32(source)
	p.commands = append(p.commands, c)
}

// borderBox returns the border box of [f], in page coordinates.
func (p *painter) borderBox(f *fragments.Fragment) backend.Rect {
	return backend.Rect{X: f.AbsX - p.ox, Y: f.AbsY - p.oy, Width: f.Width, Height: f.Height}
}

func (p *painter) paddingBox(f *fragments.Fragment) backend.Rect {
	r := p.borderBox(f)
	r.X += f.Border[pr.SLeft]
	r.Y += f.Border[pr.STop]
	r.Width = max(0, r.Width-f.Border.Horizontal())
	r.Height = max(0, r.Height-f.Border.Vertical())
	return r
}

func (p *painter) contentBox(f *fragments.Fragment) backend.Rect {
	r := p.paddingBox(f)
	r.X += f.Padding[pr.SLeft]
	r.Y += f.Padding[pr.STop]
	r.Width = max(0, r.Width-f.Padding.Horizontal())
	r.Height = max(0, r.Height-f.Padding.Vertical())
	return r
}

func isVisible(style *pr.Style) bool {
	return style != nil && style.GetVisibility() == kw.Visible
}

// paintCanvas fills the page with the background of the root element,
// or of the body if the root has none.
func (p *painter) paintCanvas(page *fragments.Fragment) {
	if len(page.Children) == 0 {
		return
	}
	rootID := page.Children[0]
	root := p.tree.Fragment(rootID)
	source := rootID
	if root.Style == nil || root.Style.GetBackgroundColor().RGBA.IsTransparent() {
		source = fragments.NoFragment
		for _, child := range root.Children {
			c := p.tree.Fragment(child)
			if c.Box != boxes.NoBox && p.tree.Boxes.Tag(c.Box) == "body" {
				source = child
				break
			}
		}
	}
	if source == fragments.NoFragment {
		return
	}
	f := p.tree.Fragment(source)
	color := f.Style.GetBackgroundColor().RGBA
	if color.IsTransparent() {
		return
	}
	p.canvasSource = source
	p.emit(source, backend.Command{
		Op:    backend.OpFillRect,
		Rect:  backend.Rect{Width: page.Width, Height: page.Height},
		Color: color,
	})
}

// paintContext paints a stacking context, in the order of CSS 2.1 Appendix E.
func (p *painter) paintContext(sc *StackingContext) {
	f := p.tree.Fragment(sc.frag)
	var pops []backend.Op

	if f.Style != nil && f.Kind != fragments.PageK {
		mt, hasTransform := p.transformOf(f)
		alpha := Fl(f.Style.GetOpacity())
		if (hasTransform && mt.Determinant() == 0) || alpha <= 0 {
			return // nothing visible
		}
		if sc.real {
			p.emit(sc.frag, backend.Command{Op: backend.OpPushStackingContext, Rect: p.borderBox(f)})
			pops = append(pops, backend.OpPopStackingContext)
		}
		if hasTransform {
			p.emit(sc.frag, backend.Command{Op: backend.OpPushTransform, Transform: mt})
			pops = append(pops, backend.OpPopTransform)
		}
		if alpha < 1 {
			p.emit(sc.frag, backend.Command{Op: backend.OpPushOpacity, Alpha: alpha})
			pops = append(pops, backend.OpPopOpacity)
		}
		if filters := f.Style.GetFilter(); len(filters) != 0 {
			p.emit(sc.frag, backend.Command{Op: backend.OpPushFilter, Filters: filters})
			pops = append(pops, backend.OpPopFilter)
		}
	}

	if f.Kind != fragments.PageK {
		p.paintBackgroundAndBorder(sc.frag)
	}
	if f.Style != nil && f.Kind != fragments.PageK && f.Style.GetOverflow() != kw.Visible {
		p.emit(sc.frag, backend.Command{Op: backend.OpPushClip, Rect: p.paddingBox(f)})
		pops = append(pops, backend.OpPopClip)
	}

	for _, child := range sc.negativeZContexts {
		p.paintContext(child)
	}
	for _, block := range sc.blocksAndCells {
		p.paintBackgroundAndBorder(block)
	}
	for _, float := range sc.floats {
		p.paintContext(float)
	}
	p.paintInlineContent(sc, sc.frag)
	for _, block := range sc.blocksAndCells {
		p.paintInlineContent(sc, block)
	}
	for _, child := range sc.zeroZContexts {
		p.paintContext(child)
	}
	for _, child := range sc.positiveZContexts {
		p.paintContext(child)
	}

	p.closeGroups(sc.frag, pops)
}

func (p *painter) closeGroups(source fragments.FragmentID, pops []backend.Op) {
	for i := len(pops) - 1; i >= 0; i-- {
		p.emit(source, backend.Command{Op: pops[i]})
	}
}

func (p *painter) paintBackgroundAndBorder(id fragments.FragmentID) {
	f := p.tree.Fragment(id)
	if !isVisible(f.Style) {
		return
	}
	if id != p.canvasSource {
		if color := f.Style.GetBackgroundColor().RGBA; !color.IsTransparent() {
			if r := p.borderBox(f); !r.IsEmpty() {
				p.emit(id, backend.Command{Op: backend.OpFillRect, Rect: r, Color: color})
			}
		}
	}
	p.paintBackgroundImage(id, f)
	p.paintBorders(id, f)
}

// paintBackgroundImage draws the image once, at its intrinsic
// size, from the top left corner of the padding box.
func (p *painter) paintBackgroundImage(id fragments.FragmentID, f *fragments.Fragment) {
	url := f.Style.GetBackgroundImage().URL
	if url == "" || p.opts.Images == nil {
		return
	}
	img := p.opts.Images.Image(url)
	if img == nil {
		return
	}
	clip := p.borderBox(f)
	if clip.IsEmpty() {
		return
	}
	dst := p.paddingBox(f)
	if img.Width > 0 && img.Height > 0 {
		dst.Width, dst.Height = img.Width, img.Height
	}
	p.emit(id, backend.Command{Op: backend.OpPushClip, Rect: clip})
	p.emit(id, backend.Command{Op: backend.OpImage, Rect: dst, Image: img})
	p.emit(id, backend.Command{Op: backend.OpPopClip})
}

func (p *painter) paintBorders(id fragments.FragmentID, f *fragments.Fragment) {
	r := p.borderBox(f)
	bt, br, bb, bl := f.Border[pr.STop], f.Border[pr.SRight], f.Border[pr.SBottom], f.Border[pr.SLeft]
	strips := [4]backend.Rect{
		pr.STop:    {X: r.X, Y: r.Y, Width: r.Width, Height: bt},
		pr.SRight:  {X: r.X + r.Width - br, Y: r.Y + bt, Width: br, Height: r.Height - bt - bb},
		pr.SBottom: {X: r.X, Y: r.Y + r.Height - bb, Width: r.Width, Height: bb},
		pr.SLeft:   {X: r.X, Y: r.Y + bt, Width: bl, Height: r.Height - bt - bb},
	}
	for side, strip := range strips {
		if strip.IsEmpty() {
			continue
		}
		s := pr.Side(side)
		style, ok := backend.NewLineStyle(f.Style.Properties[pr.BorderStyle(s)].(pr.Keyword))
		if !ok {
			continue
		}
		color := f.Style.Properties[pr.BorderColor(s)].(pr.Color).RGBA
		if color.IsTransparent() {
			continue
		}
		p.emit(id, backend.Command{Op: backend.OpBorder, Border: backend.Border{
			Strip:      strip,
			Horizontal: s == pr.STop || s == pr.SBottom,
			Style:      style,
			Color:      color,
		}})
	}
}

// paintInlineContent paints the lines of [id], and its replaced content.
func (p *painter) paintInlineContent(sc *StackingContext, id fragments.FragmentID) {
	f := p.tree.Fragment(id)
	if f.Kind == fragments.ReplacedK {
		p.paintReplaced(id, f)
		return
	}
	for _, child := range f.Children {
		c := p.tree.Fragment(child)
		switch c.Kind {
		case fragments.LineK:
			for _, item := range c.Children {
				p.paintInlineLevel(sc, item)
			}
		case fragments.TextK: // outside markers
			p.paintText(child, c)
		case fragments.ColumnK:
			p.paintInlineContent(sc, child)
		}
	}
}

func (p *painter) paintInlineLevel(sc *StackingContext, id fragments.FragmentID) {
	if sc.detached[id] {
		return
	}
	if atomic := sc.atomics[id]; atomic != nil {
		p.paintContext(atomic)
		return
	}
	f := p.tree.Fragment(id)
	switch f.Kind {
	case fragments.TextK:
		p.paintText(id, f)
	case fragments.ReplacedK:
		p.paintBackgroundAndBorder(id)
		p.paintReplaced(id, f)
	default: // inline box
		p.paintBackgroundAndBorder(id)
		for _, child := range f.Children {
			p.paintInlineLevel(sc, child)
		}
	}
}

func (p *painter) paintReplaced(id fragments.FragmentID, f *fragments.Fragment) {
	if f.Image == nil || !isVisible(f.Style) {
		return
	}
	r := p.contentBox(f)
	if r.IsEmpty() {
		return
	}
	p.emit(id, backend.Command{Op: backend.OpImage, Rect: r, Image: f.Image})
}

func (p *painter) textStyle(style *pr.Style) *text.TextStyle {
	ts, ok := p.textStyles[style]
	if !ok {
		ts = text.NewTextStyle(style)
		p.textStyles[style] = ts
	}
	return ts
}

// paintText emits the glyphs of a text fragment, on its baseline.
func (p *painter) paintText(id fragments.FragmentID, f *fragments.Fragment) {
	if f.Text == "" || !isVisible(f.Style) {
		return
	}
	color := f.Style.GetColor().RGBA
	if color.IsTransparent() {
		return
	}
	p.emit(id, backend.Command{Op: backend.OpText, Text: backend.TextDrawing{
		Runs:  []backend.TextRun{backend.NewTextRun(p.opts.Measurer, p.textStyle(f.Style), f.Text)},
		Color: color,
		X:     f.AbsX - p.ox,
		Y:     f.AbsY - p.oy + f.Baseline,
	}})
}

// resolveLength resolves [d] against [ref] for percentages.
func resolveLength(d pr.Dimension, ref Fl) Fl {
	if d.Unit == pr.Perc {
		return d.Value * ref / 100
	}
	return d.Value
}

// transformOf returns the transformation of the border box of [f],
// around its transform-origin, in page coordinates.
func (p *painter) transformOf(f *fragments.Fragment) (matrix.Transform, bool) {
	ts := f.Style.GetTransform()
	if len(ts) == 0 {
		return matrix.Transform{}, false
	}
	mt := matrix.Identity()
	for _, t := range ts {
		mt = matrix.Mul(mt, transformFunction(t, f.Width, f.Height))
	}
	origin := f.Style.GetTransformOrigin()
	ox := f.AbsX - p.ox + resolveLength(origin[0], f.Width)
	oy := f.AbsY - p.oy + resolveLength(origin[1], f.Height)
	return matrix.Around(mt, ox, oy), true
}

func transformFunction(t pr.TransformFunction, width, height Fl) matrix.Transform {
	arg := func(i int) Fl {
		if i < len(t.Args) {
			return t.Args[i].Value
		}
		return 0
	}
	switch t.Name {
	case "translate":
		if len(t.Args) != 2 {
			break
		}
		return matrix.Translation(resolveLength(t.Args[0], width), resolveLength(t.Args[1], height))
	case "scale":
		return matrix.Scaling(arg(0), arg(1))
	case "rotate":
		return matrix.Rotation(arg(0))
	case "skewx":
		return matrix.Skew(arg(0), 0)
	case "skewy":
		return matrix.Skew(0, arg(0))
	case "skew":
		return matrix.Skew(arg(0), arg(1))
	case "matrix":
		return matrix.New(arg(0), arg(1), arg(2), arg(3), arg(4), arg(5))
	}
	return matrix.Identity()
}

// collectAnchors returns the position of the first fragment of each
// element with an id attribute, relative to the page [page].
func collectAnchors(tree *fragments.Tree, page fragments.FragmentID) []backend.Anchor {
	if tree.Boxes == nil {
		return nil
	}
	doc := tree.Boxes.Document()
	pf := tree.Fragment(page)
	var out []backend.Anchor
	seen := make(map[string]bool)
	tree.Walk(page, func(id fragments.FragmentID) bool {
		f := tree.Fragment(id)
		if f.Box == boxes.NoBox || f.Index != 0 || (f.Kind != fragments.BoxK && f.Kind != fragments.ReplacedK) {
			return true
		}
		box := tree.Boxes.Box(f.Box)
		if box.Anonymous || box.Pseudo != "" || box.Type == boxes.TextT {
			return true
		}
		name, ok := doc.Attr(box.Node, "id")
		if !ok || name == "" || seen[name] {
			return true
		}
		seen[name] = true
		out = append(out, backend.Anchor{Name: name, X: f.AbsX - pf.AbsX, Y: f.AbsY - pf.AbsY})
		return true
	})
	return out
}
