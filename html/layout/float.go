package layout

import (
	"math"

	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/utils"
)

// placedFloat is the margin box of a float, in the coordinates of the
// content box of the block formatting context root.
type placedFloat struct {
	left       bool
	x, y, w, h Fl
}

func (f placedFloat) bottom() Fl { return f.y + f.h }

// bfcState stores the floats of a block formatting context.
type bfcState struct {
	floats []placedFloat
}

func newBFC() *bfcState { return &bfcState{} }

// band returns the horizontal range free of floats for a line
// (or a block) spanning [y, y+h), inside [left, right].
func (b *bfcState) band(y, h, left, right Fl) (Fl, Fl) {
	for _, f := range b.floats {
		if f.y >= y+max(h, 0.01) || f.bottom() <= y {
			continue
		}
		if f.left {
			left = max(left, f.x+f.w)
		} else {
			right = min(right, f.x)
		}
	}
	return left, max(left, right)
}

// clearance returns the position below the floats cleared by
// [clear], or -Inf.
func (b *bfcState) clearance(clear pr.Keyword) Fl {
	out := Fl(math.Inf(-1))
	if clear == kw.None {
		return out
	}
	for _, f := range b.floats {
		if clear == kw.Both || (clear == kw.Left && f.left) || (clear == kw.Right && !f.left) {
			out = max(out, f.bottom())
		}
	}
	return out
}

// bottom returns the bottom of the lowest float, or -Inf.
func (b *bfcState) bottom() Fl { return b.clearance(kw.Both) }

// place finds the position of a float margin box of size [w] x [h],
// whose top may not be above [y], in the range [left, right].
// See https://www.w3.org/TR/CSS21/visuren.html#float-rules
func (b *bfcState) place(left bool, w, h, y, cbLeft, cbRight Fl) (Fl, Fl) {
	// the top of a float may not be higher than the top of earlier floats
	for _, f := range b.floats {
		y = max(y, f.y)
	}
	for range len(b.floats) + 1 {
		l, r := b.band(y, h, cbLeft, cbRight)
		fits := r-l >= w
		if fits || !b.intersects(y, h) {
			x := l
			if !left {
				x = r - w
			}
			b.floats = append(b.floats, placedFloat{left: left, x: x, y: y, w: w, h: h})
			return x, y
		}
		// move below the first float ending in the band
		next := utils.Inf
		for _, f := range b.floats {
			if f.bottom() > y && f.y < y+max(h, 0.01) {
				next = min(next, f.bottom())
			}
		}
		y = next
	}
	x := cbLeft
	if !left {
		x = cbRight - w
	}
	b.floats = append(b.floats, placedFloat{left: left, x: x, y: y, w: w, h: h})
	return x, y
}

func (b *bfcState) intersects(y, h Fl) bool {
	for _, f := range b.floats {
		if f.y < y+max(h, 0.01) && f.bottom() > y {
			return true
		}
	}
	return false
}
