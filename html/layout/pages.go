package layout

import (
	"context"
	"fmt"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/logger"
	"go.uber.org/zap"
)

// Layout for pages.
// See https://www.w3.org/TR/css-page-3/

// Page is the geometry of the pages of a paginated media.
type Page struct {
	Width, Height Fl // page box
	Margin        fragments.Sides
}

// Area returns the size of the page area.
func (p Page) Area() (Fl, Fl) {
	return max(0, p.Width-p.Margin.Horizontal()), max(0, p.Height-p.Margin.Vertical())
}

// default font size used for font relative lengths in @page rules
const pageFontSize = 16

func pageLength(v pr.Dimension, referTo Fl) (Fl, bool) {
	switch u := v.Unit; {
	case u == pr.Px:
		return v.Value, true
	case u == pr.Perc:
		return v.Value * referTo / 100, true
	case u.IsAbsolute():
		return v.Value * pr.LengthsToPixels[u], true
	case u.IsFontRelative():
		return v.Value * pageFontSize, true
	}
	return 0, false
}

// PageFromDescriptors resolves the @page descriptors, using
// [width] and [height] for an auto size.
// Margins default to 75px (about 2cm) when paginating.
func PageFromDescriptors(pd validation.PageDescriptors, width, height Fl) Page {
	page := Page{Width: width, Height: height}
	if pd.HasSize() {
		if w, ok := pageLength(pd.Size[0], 0); ok {
			page.Width = w
		}
		if h, ok := pageLength(pd.Size[1], 0); ok {
			page.Height = h
		}
	}
	for side := pr.STop; side <= pr.SLeft; side++ {
		page.Margin[side] = 75
		if v := pd.Margin[side]; v.Unit != 0 {
			// margins refer to the width of the page box
			if l, ok := pageLength(v.Dimension, page.Width); ok {
				page.Margin[side] = l
			}
		}
	}
	return page
}

// Paginate lays out the subtree [root] on pages of the given geometry,
// returning a tree whose root is a [fragments.RootK] fragment, with
// one [fragments.PageK] child per page.
//
// Errors are the same as for [Layout].
func Paginate(ctx context.Context, bt *boxes.Tree, root BoxID, page Page, opts Options) (_ *fragments.Tree, err error) {
	out := &Node{Kind: fragments.RootK, Box: boxes.NoBox, Width: page.Width}
	if root == boxes.NoBox {
		return fragments.Flatten(bt, out), nil
	}
	areaWidth, areaHeight := page.Area()
	lc := newLayoutContext(ctx, bt, opts, areaWidth, areaHeight)
	defer recoverAbort(&err)

	logger.ProgressLogger.Printf("Step 4 - Creating layout - Page %g x %g", page.Width, page.Height)
	space := NewConstraintSpace(areaWidth, areaHeight).WithBudget(areaHeight)
	var token *BreakToken
	for index := 0; ; index++ {
		lc.budget.enter()
		lc.budget.checkIndex(index)
		res := lc.layoutRootPage(root, space, page.Margin, token, false)
		node := res.node
		node.Index = index
		node.Y = out.Height // pages are stacked
		out.Children = append(out.Children, node)
		out.Height += node.Height
		if traceMode {
			traceLogger.Dump(fmt.Sprintf("page %d: %d fragments", index, node.Count()))
		}
		if res.token == nil {
			break
		}
		token = res.token
	}

	tree := fragments.Flatten(bt, out)
	logger.ProgressLogger.Log("pagination done",
		zap.Int("pages", len(out.Children)), zap.Int("fragments", tree.Len()),
		zap.Int64("steps", lc.budget.Steps()))
	return tree, nil
}
