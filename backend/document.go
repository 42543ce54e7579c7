package backend

// Anchor is a named target of a page: an element
// with an id attribute.
type Anchor struct {
	Name string
	// Origin at the top-left of the page
	X, Y Fl
}

// Document is the target of a whole display list,
// consisting in one or more pages.
type Document interface {
	// AddPage creates a new page with the given dimensions and returns
	// it to be paint on.
	AddPage(width, height Fl) Replayer

	// CreateAnchors register a list of anchors per page.
	// `anchors` is a 0-based list, meaning anchors in page 1 are at index 0.
	// It is called after all the pages have been created and painted.
	CreateAnchors(anchors [][]Anchor)
}
