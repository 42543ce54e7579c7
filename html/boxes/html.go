package boxes

import (
	"strconv"
	"strings"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/logger"
	"golang.org/x/net/html/atom"
)

// handlerFunction returns handled = false to use the default
// box generation.
type handlerFunction = func(b *builder, node dom.NodeID, style *pr.Style) (boxes []BoxID, handled bool)

// htmlHandlers map a tag to a callback creating the boxes needed.
var htmlHandlers map[atom.Atom]handlerFunction

func init() {
	htmlHandlers = map[atom.Atom]handlerFunction{
		atom.Img:      handleImg,
		atom.Embed:    handleEmbed,
		atom.Object:   handleObject,
		atom.Canvas:   handlePlaceholder,
		atom.Video:    handlePlaceholder,
		atom.Iframe:   handlePlaceholder,
		atom.Svg:      handleSVG,
		atom.Br:       handleBr,
		atom.Colgroup: handleColgroup,
		atom.Col:      handleCol,
	}
}

// Wrap an image in a replaced box.
//
// That box is either block-level or inline-level, depending on what the
// element should be.
func (b *builder) makeReplacedBox(node dom.NodeID, style *pr.Style, image *images.Image) BoxID {
	id := b.newBox(ReplacedT, style, node, "")
	b.tree.boxes[id].Image = image
	b.tree.principal[node] = id
	b.lastSpace = false
	return id
}

func (b *builder) fetchImage(src string) *images.Image {
	if src == "" || b.images == nil {
		return nil
	}
	return b.images.Image(src)
}

// Handle <img> elements, return either an image or the alt-text.
// See: http://www.w3.org/TR/html5/embedded-content-1.html#the-img-element
func handleImg(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	src, _ := b.doc.Attr(node, "src")
	if image := b.fetchImage(strings.TrimSpace(src)); image != nil {
		return []BoxID{b.makeReplacedBox(node, style, image)}, true
	}
	// Invalid image, use the alt-text.
	if alt, _ := b.doc.Attr(node, "alt"); alt != "" {
		id := b.newBox(typeFor(style.GetDisplay()), style, node, "")
		b.tree.principal[node] = id
		b.setChildren(id, b.textBoxes(node, "", style, alt))
		b.finish(id)
		return []BoxID{id}, true
	}
	// The element represents nothing
	return nil, true
}

// Handle <embed> elements, return either an image or nothing.
// See: https://www.w3.org/TR/html5/embedded-content-0.html#the-embed-element
func handleEmbed(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	src, _ := b.doc.Attr(node, "src")
	if image := b.fetchImage(strings.TrimSpace(src)); image != nil {
		return []BoxID{b.makeReplacedBox(node, style, image)}, true
	}
	// No fallback.
	return nil, true
}

// Handle <object> elements, return either an image or the fallback
// content.
// See: https://www.w3.org/TR/html5/embedded-content-0.html#the-object-element
func handleObject(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	data, _ := b.doc.Attr(node, "data")
	if image := b.fetchImage(strings.TrimSpace(data)); image != nil {
		return []BoxID{b.makeReplacedBox(node, style, image)}, true
	}
	// The element’s children are the fallback.
	return nil, false
}

// default size of <canvas>, <video> and <iframe>
const placeholderWidth, placeholderHeight = 300, 150

// Handle the elements whose content is not supported: a zero content
// placeholder is used, with the default object size (or the poster
// of a video).
func handlePlaceholder(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	if poster, _ := b.doc.Attr(node, "poster"); poster != "" {
		if image := b.fetchImage(poster); image != nil {
			return []BoxID{b.makeReplacedBox(node, style, image)}, true
		}
	}
	placeholder := &images.Image{
		Format: "placeholder",
		Width:  placeholderWidth, Height: placeholderHeight,
		Ratio: placeholderWidth / placeholderHeight,
	}
	return []BoxID{b.makeReplacedBox(node, style, placeholder)}, true
}

// handle the inline <svg> elements, whose size is given by
// their attributes
func handleSVG(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	width, _ := b.doc.Attr(node, "width")
	height, _ := b.doc.Attr(node, "height")
	viewBox, _ := b.doc.Attr(node, "viewBox")
	image := images.SVGIntrinsicSize(width, height, viewBox)
	if image.Width == 0 && image.Height == 0 && image.Ratio == 0 {
		logger.WarningLogger.Printf("Inline SVG without size ignored")
		return nil, true
	}
	return []BoxID{b.makeReplacedBox(node, style, image)}, true
}

func handleBr(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	if !style.GetDisplay().IsInlineFlow() {
		return nil, false
	}
	id := b.newBox(LineBreakT, style, node, "")
	b.tree.principal[node] = id
	b.lastSpace = true
	return []BoxID{id}, true
}

// Handle the “span“ attribute.
func handleColgroup(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	ids := b.defaultBoxes(node, style)
	if len(ids) != 1 || b.tree.boxes[ids[0]].Type != TableColumnGroupT {
		return ids, true
	}
	group := ids[0]
	if len(b.tree.boxes[group].Children) == 0 {
		span := integerAttribute(b.doc, node, "span", 1, 1000)
		children := make([]BoxID, span)
		colStyle := b.anonymousStyle(style, pr.Display{Inner: "table-column"})
		for i := range children {
			children[i] = b.newAnonymous(TableColumnT, colStyle)
		}
		b.setChildren(group, children)
		b.finish(group)
	}
	return ids, true
}

// Handle the “span“ attribute.
func handleCol(b *builder, node dom.NodeID, style *pr.Style) ([]BoxID, bool) {
	ids := b.defaultBoxes(node, style)
	if len(ids) != 1 || b.tree.boxes[ids[0]].Type != TableColumnT {
		return ids, true
	}
	// Generate multiple boxes
	// http://lists.w3.org/Archives/Public/www-style/2011Nov/0293.html
	span := integerAttribute(b.doc, node, "span", 1, 1000)
	for range span - 1 {
		ids = append(ids, b.newBox(TableColumnT, style, node, ""))
	}
	return ids, true
}

// integerAttribute returns the value of [attr], clamped to [minimum, maximum],
// or [minimum] if the attribute is missing or invalid.
func integerAttribute(doc *dom.Document, node dom.NodeID, attr string, minimum, maximum int) int {
	value, ok := doc.Attr(node, attr)
	if !ok {
		return minimum
	}
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return minimum
	}
	return min(max(v, minimum), maximum)
}
