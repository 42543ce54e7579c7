// Package raster replays display lists on images, using
// the github.com/fogleman/gg 2D renderer.
package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/benoitkugler/vformat/backend"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/text"
)

type Fl = backend.Fl

var (
	_ backend.Document = (*Output)(nil)
	_ backend.Replayer = (*Canvas)(nil)
)

// Output is a [backend.Document] producing one image per page.
type Output struct {
	// Scale is the number of device pixels per CSS pixel.
	Scale Fl

	fonts *text.GoFontMeasurer
	faces map[string]font.Face

	pages   []*Canvas
	anchors [][]backend.Anchor
}

// NewOutput returns an output with the given device pixel ratio
// (1 if zero). Text is drawn with the Go fonts.
func NewOutput(scale Fl) (*Output, error) {
	fonts, err := text.NewGoFontMeasurer()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	if scale <= 0 {
		scale = 1
	}
	return &Output{Scale: scale, fonts: fonts, faces: make(map[string]font.Face)}, nil
}

func (o *Output) face(fd text.FontDescription) font.Face {
	key := fmt.Sprintf("%s|%d|%d|%g", strings.Join(fd.Family, ","), fd.Style, fd.Weight, fd.Size)
	if f, ok := o.faces[key]; ok {
		return f
	}
	f, err := o.fonts.NewFace(fd)
	if err != nil {
		f = nil
	}
	o.faces[key] = f
	return f
}

func (o *Output) AddPage(width, height Fl) backend.Replayer {
	w := max(1, int(math.Ceil(float64(width*o.Scale))))
	h := max(1, int(math.Ceil(float64(height*o.Scale))))
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(float64(o.Scale), float64(o.Scale))
	c := &Canvas{out: o, dc: dc, ctm: []matrix.Transform{matrix.Scaling(o.Scale, o.Scale)}}
	o.pages = append(o.pages, c)
	return c
}

func (o *Output) CreateAnchors(anchors [][]backend.Anchor) { o.anchors = anchors }

// Anchors returns the anchors registered by the last replay.
func (o *Output) Anchors() [][]backend.Anchor { return o.anchors }

// Pages returns the images of the pages painted so far.
func (o *Output) Pages() []image.Image {
	out := make([]image.Image, len(o.pages))
	for i, p := range o.pages {
		out[i] = p.dc.Image()
	}
	return out
}

// WritePNG encodes the pages, stacked vertically, as a PNG image.
func (o *Output) WritePNG(w io.Writer) error {
	pages := o.Pages()
	if len(pages) == 0 {
		return errors.New("no page to encode")
	}
	var width, height int
	for _, p := range pages {
		b := p.Bounds()
		width, height = max(width, b.Dx()), height+b.Dy()
	}
	dc := gg.NewContext(width, height)
	y := 0
	for _, p := range pages {
		dc.DrawImage(p, 0, y)
		y += p.Bounds().Dy()
	}
	return dc.EncodePNG(w)
}

// Canvas paints the commands of one page.
type Canvas struct {
	out *Output
	dc  *gg.Context

	// ctm is the stack of device transformations,
	// used to initialize the opacity layers
	ctm    []matrix.Transform
	layers []layer
}

type layer struct {
	parent  *gg.Context
	alpha   Fl
	filters pr.Filters
}

func (c *Canvas) setColor(color pr.RGBA) {
	c.dc.SetRGBA(float64(color.R), float64(color.G), float64(color.B), float64(color.A))
}

func (c *Canvas) FillRect(r backend.Rect, color pr.RGBA) {
	c.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	c.setColor(color)
	c.dc.Fill()
}

func (c *Canvas) StrokeBorder(b backend.Border) {
	r := b.Strip
	switch b.Style {
	case backend.Double:
		if b.Horizontal {
			third := r.Height / 3
			c.FillRect(backend.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: third}, b.Color)
			c.FillRect(backend.Rect{X: r.X, Y: r.Y + 2*third, Width: r.Width, Height: third}, b.Color)
		} else {
			third := r.Width / 3
			c.FillRect(backend.Rect{X: r.X, Y: r.Y, Width: third, Height: r.Height}, b.Color)
			c.FillRect(backend.Rect{X: r.X + 2*third, Y: r.Y, Width: third, Height: r.Height}, b.Color)
		}
	case backend.Dashed, backend.Dotted:
		thickness := r.Width
		x0, y0, x1, y1 := r.X+r.Width/2, r.Y, r.X+r.Width/2, r.Y+r.Height
		if b.Horizontal {
			thickness = r.Height
			x0, y0, x1, y1 = r.X, r.Y+r.Height/2, r.X+r.Width, r.Y+r.Height/2
		}
		dash := 3 * thickness
		if b.Style == backend.Dotted {
			dash = thickness
		}
		c.dc.Push()
		c.dc.SetLineWidth(float64(thickness))
		c.dc.SetDash(float64(dash), float64(dash))
		c.dc.SetLineCapButt()
		c.dc.DrawLine(float64(x0), float64(y0), float64(x1), float64(y1))
		c.setColor(b.Color)
		c.dc.Stroke()
		c.dc.Pop()
	default:
		c.FillRect(r, b.Color)
	}
}

func (c *Canvas) DrawText(td backend.TextDrawing) {
	c.setColor(td.Color)
	x := td.X
	for _, run := range td.Runs {
		face := c.out.face(run.Font)
		if face != nil {
			c.dc.SetFontFace(face)
		}
		for _, g := range run.Glyphs {
			if face != nil && g.Rune != ' ' {
				c.dc.DrawString(string(g.Rune), float64(x), float64(td.Y))
			}
			x += g.XAdvance
		}
	}
}

func (c *Canvas) DrawImage(img *images.Image, r backend.Rect) {
	if img == nil || img.Pixels == nil || r.IsEmpty() {
		return
	}
	b := img.Pixels.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	c.dc.Push()
	c.dc.Translate(float64(r.X), float64(r.Y))
	c.dc.Scale(float64(r.Width)/float64(b.Dx()), float64(r.Height)/float64(b.Dy()))
	c.dc.DrawImage(img.Pixels, -b.Min.X, -b.Min.Y)
	c.dc.Pop()
}

func (c *Canvas) PushClip(r backend.Rect) {
	c.dc.Push()
	c.dc.DrawRectangle(float64(r.X), float64(r.Y), float64(r.Width), float64(r.Height))
	c.dc.Clip()
}

func (c *Canvas) PopClip() { c.dc.Pop() }

// applyTransform applies [mt] on [dc], which only exposes
// elementary transformations.
func applyTransform(dc *gg.Context, mt matrix.Transform) {
	d := mt.Decompose()
	dc.Translate(float64(d.TX), float64(d.TY))
	dc.Rotate(float64(d.Angle))
	dc.Shear(float64(d.Shear), 0)
	dc.Scale(float64(d.SX), float64(d.SY))
}

func (c *Canvas) PushTransform(mt matrix.Transform) {
	c.dc.Push()
	applyTransform(c.dc, mt)
	c.ctm = append(c.ctm, matrix.Mul(c.ctm[len(c.ctm)-1], mt))
}

func (c *Canvas) PopTransform() {
	c.dc.Pop()
	c.ctm = c.ctm[:len(c.ctm)-1]
}

func (c *Canvas) pushLayer(l layer) {
	l.parent = c.dc
	dc := gg.NewContext(c.dc.Width(), c.dc.Height())
	applyTransform(dc, c.ctm[len(c.ctm)-1])
	c.layers = append(c.layers, l)
	c.dc = dc
}

// popLayer applies the effects of the current layer and
// composites it on its parent.
func (c *Canvas) popLayer() {
	l := c.layers[len(c.layers)-1]
	c.layers = c.layers[:len(c.layers)-1]
	img := c.dc.Image().(*image.RGBA)
	for _, f := range l.filters {
		applyFilter(img, f, c.out.Scale)
	}
	if l.alpha != 1 {
		multiplyAlpha(img, l.alpha)
	}
	c.dc = l.parent
	c.dc.Push()
	c.dc.Identity()
	c.dc.DrawImage(img, 0, 0)
	c.dc.Pop()
}

// PushOpacity redirects the drawing to a new transparent layer.
func (c *Canvas) PushOpacity(alpha Fl) { c.pushLayer(layer{alpha: alpha}) }

// PopOpacity composites the current layer on its parent.
func (c *Canvas) PopOpacity() { c.popLayer() }

// PushFilter redirects the drawing to a new transparent layer,
// filtered when popped.
func (c *Canvas) PushFilter(filters pr.Filters) { c.pushLayer(layer{alpha: 1, filters: filters}) }

func (c *Canvas) PopFilter() { c.popLayer() }

// Stacking contexts are already flattened in painting order.
func (c *Canvas) PushStackingContext(backend.Rect) {}

func (c *Canvas) PopStackingContext() {}

// multiplyAlpha scales the premultiplied components of [img].
func multiplyAlpha(img *image.RGBA, alpha Fl) {
	for i, v := range img.Pix {
		img.Pix[i] = uint8(Fl(v) * alpha)
	}
}

// applyFilter modifies [img] in place. Blur radii are in CSS pixels,
// converted with [scale].
func applyFilter(img *image.RGBA, f pr.FilterFunction, scale Fl) {
	switch f.Name {
	case "opacity":
		multiplyAlpha(img, min(1, max(0, f.Amount.Value)))
	case "grayscale":
		grayscale(img, min(1, max(0, f.Amount.Value)))
	case "blur":
		radius := int(math.Round(float64(f.Amount.Value * scale)))
		boxBlur(img, radius)
	}
}

// grayscale moves each pixel toward its luminance. Premultiplied
// components may be combined directly since the operation is linear.
func grayscale(img *image.RGBA, amount Fl) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r, g, b := Fl(img.Pix[i]), Fl(img.Pix[i+1]), Fl(img.Pix[i+2])
		lum := 0.2126*r + 0.7152*g + 0.0722*b
		img.Pix[i] = uint8(r + amount*(lum-r))
		img.Pix[i+1] = uint8(g + amount*(lum-g))
		img.Pix[i+2] = uint8(b + amount*(lum-b))
	}
}

// boxBlur averages the pixels of [img] over a square of side 2*radius+1,
// with one horizontal and one vertical pass.
func boxBlur(img *image.RGBA, radius int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if radius <= 0 || w == 0 || h == 0 {
		return
	}
	radius = min(radius, max(w, h))
	tmp := make([]uint8, len(img.Pix))
	blurPass(tmp, img.Pix, w, h, 4, img.Stride, radius)
	blurPass(img.Pix, tmp, h, w, img.Stride, 4, radius)
}

// blurPass blurs [n] lines of [length] pixels of [src] into [dst].
// [step] is the distance between two pixels of a line and [lineStep]
// the distance between two lines.
func blurPass(dst, src []uint8, length, n, step, lineStep, radius int) {
	window := 2*radius + 1
	for line := 0; line < n; line++ {
		base := line * lineStep
		for ch := 0; ch < 4; ch++ {
			var sum int
			at := func(i int) int {
				i = min(length-1, max(0, i))
				return int(src[base+i*step+ch])
			}
			for i := -radius; i <= radius; i++ {
				sum += at(i)
			}
			for i := 0; i < length; i++ {
				dst[base+i*step+ch] = uint8(sum / window)
				sum += at(i+radius+1) - at(i-radius)
			}
		}
	}
}
