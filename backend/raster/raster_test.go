package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/backend"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/text"
)

var (
	red  = pr.RGBA{R: 1, A: 1}
	blue = pr.RGBA{B: 1, A: 1}
)

func rgba(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func replay(t *testing.T, scale Fl, commands ...backend.Command) image.Image {
	t.Helper()
	out, err := NewOutput(scale)
	require.NoError(t, err)
	list := &backend.List{Pages: []backend.Page{{Width: 20, Height: 20, Commands: commands}}}
	require.NoError(t, list.Validate())
	list.Replay(out)
	pages := out.Pages()
	require.Len(t, pages, 1)
	return pages[0]
}

var (
	white      = color.RGBA{255, 255, 255, 255}
	pureRed    = color.RGBA{255, 0, 0, 255}
	pureBlue   = color.RGBA{0, 0, 255, 255}
	halfRedOnW = color.RGBA{255, 127, 127, 255}
)

func assertClose(t *testing.T, exp, got color.RGBA) {
	t.Helper()
	for _, p := range [][2]uint8{{exp.R, got.R}, {exp.G, got.G}, {exp.B, got.B}, {exp.A, got.A}} {
		assert.InDelta(t, p[0], p[1], 2, "expected %v, got %v", exp, got)
	}
}

func TestFillRect(t *testing.T) {
	img := replay(t, 1, backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{X: 5, Y: 5, Width: 10, Height: 10}, Color: red})
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	assertClose(t, white, rgba(img, 2, 2))
	assertClose(t, pureRed, rgba(img, 10, 10))
	assertClose(t, white, rgba(img, 16, 16))
}

func TestScale(t *testing.T) {
	img := replay(t, 2, backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 5, Height: 5}, Color: blue})
	assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())
	assertClose(t, pureBlue, rgba(img, 9, 9))
	assertClose(t, white, rgba(img, 11, 11))
}

func TestClip(t *testing.T) {
	img := replay(t, 1,
		backend.Command{Op: backend.OpPushClip, Rect: backend.Rect{Width: 10, Height: 20}},
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 20, Height: 20}, Color: red},
		backend.Command{Op: backend.OpPopClip},
	)
	assertClose(t, pureRed, rgba(img, 5, 5))
	assertClose(t, white, rgba(img, 15, 5))
}

func TestTransform(t *testing.T) {
	img := replay(t, 1,
		backend.Command{Op: backend.OpPushTransform, Transform: matrix.Translation(10, 10)},
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 5, Height: 5}, Color: red},
		backend.Command{Op: backend.OpPopTransform},
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 5, Height: 5}, Color: blue},
	)
	assertClose(t, pureRed, rgba(img, 12, 12))
	assertClose(t, pureBlue, rgba(img, 2, 2))
	assertClose(t, white, rgba(img, 7, 7))
}

func TestOpacity(t *testing.T) {
	img := replay(t, 1,
		backend.Command{Op: backend.OpPushOpacity, Alpha: 0.5},
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 10, Height: 10}, Color: red},
		// overlapping content of the group is not blended twice
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 10, Height: 10}, Color: red},
		backend.Command{Op: backend.OpPopOpacity},
	)
	assertClose(t, halfRedOnW, rgba(img, 5, 5))
	assertClose(t, white, rgba(img, 15, 15))
}

func TestFilters(t *testing.T) {
	filter := func(name string, amount pr.Dimension) backend.Command {
		return backend.Command{Op: backend.OpPushFilter, Filters: pr.Filters{{Name: name, Amount: amount}}}
	}
	fill := backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 10, Height: 20}, Color: red}
	pop := backend.Command{Op: backend.OpPopFilter}

	img := replay(t, 1, filter("opacity", pr.NewDim(0.5, pr.Scalar)), fill, pop)
	assertClose(t, halfRedOnW, rgba(img, 5, 5))

	img = replay(t, 1, filter("grayscale", pr.NewDim(1, pr.Scalar)), fill, pop)
	assertClose(t, color.RGBA{54, 54, 54, 255}, rgba(img, 5, 5))
	assertClose(t, white, rgba(img, 15, 5))

	img = replay(t, 1, filter("blur", pr.NewDim(2, pr.Px)), fill, pop)
	assertClose(t, pureRed, rgba(img, 2, 10))
	assertClose(t, color.RGBA{255, 153, 153, 255}, rgba(img, 10, 10))
	assertClose(t, white, rgba(img, 18, 10))
}

func TestStackingContextIsTransparent(t *testing.T) {
	img := replay(t, 1,
		backend.Command{Op: backend.OpPushStackingContext, Rect: backend.Rect{Width: 20, Height: 20}},
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 10, Height: 10}, Color: red},
		backend.Command{Op: backend.OpPopStackingContext},
	)
	assertClose(t, pureRed, rgba(img, 5, 5))
	assertClose(t, white, rgba(img, 15, 15))
}

func TestBoxBlur(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 1))
	img.Pix[2*4+3] = 250
	boxBlur(img, 1)
	var alphas []uint8
	for x := 0; x < 5; x++ {
		alphas = append(alphas, img.Pix[x*4+3])
	}
	assert.Equal(t, []uint8{0, 83, 83, 83, 0}, alphas)

	boxBlur(img, 0) // no-op
	assert.Equal(t, uint8(83), img.Pix[1*4+3])
}

func TestBorders(t *testing.T) {
	img := replay(t, 1,
		backend.Command{Op: backend.OpBorder, Border: backend.Border{
			Strip: backend.Rect{Width: 20, Height: 3}, Horizontal: true, Style: backend.Double, Color: red,
		}},
		backend.Command{Op: backend.OpBorder, Border: backend.Border{
			Strip: backend.Rect{Y: 10, Width: 4, Height: 10}, Style: backend.Solid, Color: blue,
		}},
	)
	assertClose(t, pureRed, rgba(img, 10, 0))
	assertClose(t, white, rgba(img, 10, 1)) // the gap of the double line
	assertClose(t, pureRed, rgba(img, 10, 2))
	assertClose(t, pureBlue, rgba(img, 2, 15))
}

func TestDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetRGBA(0, 0, color.RGBA{0, 0, 255, 255})
	img := replay(t, 1,
		backend.Command{Op: backend.OpFillRect, Rect: backend.Rect{Width: 20, Height: 20}, Color: red},
		backend.Command{Op: backend.OpImage, Rect: backend.Rect{Width: 10, Height: 10}, Image: &images.Image{Pixels: src, Width: 2, Height: 2}},
		// vector images are skipped
		backend.Command{Op: backend.OpImage, Rect: backend.Rect{X: 10, Width: 10, Height: 10}, Image: &images.Image{Width: 2, Height: 2}},
	)
	assertClose(t, pureBlue, rgba(img, 2, 2))
	assertClose(t, white, rgba(img, 7, 7))
	assertClose(t, pureRed, rgba(img, 15, 5))
}

func fontOf(size Fl) text.FontDescription {
	return text.FontDescription{Family: []string{"sans-serif"}, Weight: 400, Size: size}
}

func TestTextAndPNG(t *testing.T) {
	out, err := NewOutput(1)
	require.NoError(t, err)
	list := &backend.List{Pages: []backend.Page{
		{Width: 40, Height: 20, Commands: []backend.Command{{Op: backend.OpText, Text: backend.TextDrawing{
			X: 2, Y: 15, Color: pr.RGBA{A: 1},
			Runs: []backend.TextRun{{Font: fontOf(16), Glyphs: []backend.TextGlyph{{Rune: 'H', XAdvance: 12}, {Rune: 'I', XAdvance: 6}}}},
		}}}},
		{Width: 30, Height: 10, Anchors: []backend.Anchor{{Name: "second"}}},
	}}
	list.Replay(out)

	pages := out.Pages()
	require.Len(t, pages, 2)
	dark := 0
	b := pages[0].Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if rgba(pages[0], x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 10)
	assert.Equal(t, [][]backend.Anchor{nil, {{Name: "second"}}}, out.Anchors())

	var buf bytes.Buffer
	require.NoError(t, out.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), decoded.Bounds())
}

func TestWritePNGEmpty(t *testing.T) {
	out, err := NewOutput(0)
	require.NoError(t, err)
	assert.Equal(t, Fl(1), out.Scale)
	assert.Error(t, out.WritePNG(&bytes.Buffer{}))
}
