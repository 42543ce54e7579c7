package tracer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/vformat/backend"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
)

// implements a logging backend, used for debugging

var (
	_ backend.Document = &Drawer{}
	_ backend.Replayer = &Drawer{}
)

type Drawer struct {
	out    io.Writer
	indent int
}

func NewDrawerNoOp() *Drawer { return &Drawer{out: io.Discard} }

// NewDrawer writes to [out].
func NewDrawer(out io.Writer) *Drawer { return &Drawer{out: out} }

// NewDrawerFile panics if an error occurs.
func NewDrawerFile(outFile string) *Drawer {
	f, err := os.Create(outFile)
	if err != nil {
		panic(err)
	}

	return &Drawer{out: f}
}

type fl = backend.Fl

func (dr *Drawer) printf(f string, args ...interface{}) {
	fmt.Fprintf(dr.out, strings.Repeat("  ", dr.indent)+f+"\n", args...)
}

func color(c pr.RGBA) string {
	return fmt.Sprintf("%.2f %.2f %.2f %.2f", c.R, c.G, c.B, c.A)
}

func (dr *Drawer) AddPage(width, height fl) backend.Replayer {
	dr.indent = 0
	dr.printf("AddPage : %.2f %.2f", width, height)
	dr.indent = 1
	return dr
}

func (dr *Drawer) CreateAnchors(anchors [][]backend.Anchor) {
	dr.indent = 0
	n := 0
	for _, page := range anchors {
		n += len(page)
	}
	dr.printf("CreateAnchors : %d", n)
}

func (dr *Drawer) FillRect(r backend.Rect, c pr.RGBA) {
	dr.printf("FillRect : %.2f %.2f %.2f %.2f (%s)", r.X, r.Y, r.Width, r.Height, color(c))
}

func (dr *Drawer) StrokeBorder(b backend.Border) {
	r := b.Strip
	dr.printf("StrokeBorder : %.2f %.2f %.2f %.2f %s (%s)", r.X, r.Y, r.Width, r.Height, b.Style, color(b.Color))
}

func (dr *Drawer) DrawText(text backend.TextDrawing) {
	dr.printf("DrawText : %.2f %.2f %q", text.X, text.Y, text.Text())
}

func (dr *Drawer) DrawImage(img *images.Image, r backend.Rect) {
	name := "<nil>"
	if img != nil {
		name = img.Format
	}
	dr.printf("DrawImage : %s %.2f %.2f %.2f %.2f", name, r.X, r.Y, r.Width, r.Height)
}

func (dr *Drawer) PushClip(r backend.Rect) {
	dr.printf("PushClip : %.2f %.2f %.2f %.2f", r.X, r.Y, r.Width, r.Height)
	dr.indent++
}

func (dr *Drawer) PopClip() {
	dr.indent--
	dr.printf("PopClip")
}

func (dr *Drawer) PushTransform(mt matrix.Transform) {
	dr.printf("PushTransform : %.2f %.2f %.2f %.2f %.2f %.2f", mt.A, mt.B, mt.C, mt.D, mt.E, mt.F)
	dr.indent++
}

func (dr *Drawer) PopTransform() {
	dr.indent--
	dr.printf("PopTransform")
}

func (dr *Drawer) PushOpacity(alpha fl) {
	dr.printf("PushOpacity : %.2f", alpha)
	dr.indent++
}

func (dr *Drawer) PopOpacity() {
	dr.indent--
	dr.printf("PopOpacity")
}

func (dr *Drawer) PushFilter(filters pr.Filters) {
	dr.printf("PushFilter : %s", filters)
	dr.indent++
}

func (dr *Drawer) PopFilter() {
	dr.indent--
	dr.printf("PopFilter")
}

func (dr *Drawer) PushStackingContext(r backend.Rect) {
	dr.printf("PushStackingContext : %.2f %.2f %.2f %.2f", r.X, r.Y, r.Width, r.Height)
	dr.indent++
}

func (dr *Drawer) PopStackingContext() {
	dr.indent--
	dr.printf("PopStackingContext")
}
