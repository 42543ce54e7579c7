package backend

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"

	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/matrix"
	"github.com/benoitkugler/vformat/utils"
)

// Op identifies the kind of a display list command.
type Op uint8

const (
	OpFillRect Op = iota
	OpBorder
	OpText
	OpImage

	OpPushClip
	OpPopClip
	OpPushTransform
	OpPopTransform
	OpPushOpacity
	OpPopOpacity
	OpPushFilter
	OpPopFilter
	OpPushStackingContext
	OpPopStackingContext
)

var opNames = [...]string{
	OpFillRect:      "FillRect",
	OpBorder:        "Border",
	OpText:          "Text",
	OpImage:         "Image",
	OpPushClip:      "PushClip",
	OpPopClip:       "PopClip",
	OpPushTransform: "PushTransform",
	OpPopTransform:  "PopTransform",
	OpPushOpacity:   "PushOpacity",
	OpPopOpacity:    "PopOpacity",
	OpPushFilter:    "PushFilter",
	OpPopFilter:     "PopFilter",

	OpPushStackingContext: "PushStackingContext",
	OpPopStackingContext:  "PopStackingContext",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// isPush returns the matching pop operation.
func (op Op) isPush() (Op, bool) {
	switch op {
	case OpPushClip, OpPushTransform, OpPushOpacity, OpPushFilter, OpPushStackingContext:
		return op + 1, true
	}
	return 0, false
}

func (op Op) isPop() bool {
	switch op {
	case OpPopClip, OpPopTransform, OpPopOpacity, OpPopFilter, OpPopStackingContext:
		return true
	}
	return false
}

// Command is one paint operation. Only the fields
// relevant for [Op] are used.
type Command struct {
	Op Op

	Rect      Rect // fill, image, clip, stacking context bounds
	Color     pr.RGBA
	Border    Border
	Text      TextDrawing
	Image     *images.Image
	Transform matrix.Transform
	Alpha     Fl
	Filters   pr.Filters

	// Source is the fragment which emitted the command, or -1.
	Source int32
}

func (c Command) String() string {
	switch c.Op {
	case OpFillRect:
		return fmt.Sprintf("%s %s %s", c.Op, c.Rect, formatColor(c.Color))
	case OpBorder:
		return fmt.Sprintf("%s %s %s %s", c.Op, c.Border.Strip, c.Border.Style, formatColor(c.Border.Color))
	case OpText:
		return fmt.Sprintf("%s (%g, %g) %q %s", c.Op, c.Text.X, c.Text.Y, c.Text.Text(), formatColor(c.Text.Color))
	case OpImage:
		url := ""
		if c.Image != nil {
			url = c.Image.URL
		}
		return fmt.Sprintf("%s %s %s", c.Op, c.Rect, url)
	case OpPushClip, OpPushStackingContext:
		return fmt.Sprintf("%s %s", c.Op, c.Rect)
	case OpPushTransform:
		t := c.Transform
		return fmt.Sprintf("%s [%g %g %g %g %g %g]", c.Op, t.A, t.B, t.C, t.D, t.E, t.F)
	case OpPushOpacity:
		return fmt.Sprintf("%s %g", c.Op, c.Alpha)
	case OpPushFilter:
		return fmt.Sprintf("%s %s", c.Op, c.Filters)
	default:
		return c.Op.String()
	}
}

func formatColor(c pr.RGBA) string {
	return fmt.Sprintf("rgba(%g,%g,%g,%g)", c.R, c.G, c.B, c.A)
}

// Page is the display list of one page (or of the whole
// viewport for continuous media).
type Page struct {
	Width, Height Fl
	Commands      []Command
	// Anchors are the named targets of the page.
	Anchors []Anchor
}

// List is a replayable display list.
type List struct {
	Pages []Page
}

// Len returns the total number of commands.
func (l *List) Len() int {
	n := 0
	for _, p := range l.Pages {
		n += len(p.Commands)
	}
	return n
}

// ErrMalformed is returned by [List.Validate].
var ErrMalformed = errors.New("malformed display list")

// Validate checks that the push and pop commands are well nested,
// and that the geometry is finite. All the problems found are returned.
func (l *List) Validate() error {
	var errs error
	for i, page := range l.Pages {
		errs = multierr.Append(errs, page.validate(i))
	}
	return errs
}

func (p *Page) validate(index int) error {
	var (
		errs  error
		stack []Op
	)
	fail := func(j int, format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: page %d, command %d: %s", ErrMalformed, index, j, fmt.Sprintf(format, args...)))
	}
	for j, c := range p.Commands {
		if pop, ok := c.Op.isPush(); ok {
			stack = append(stack, pop)
		} else if c.Op.isPop() {
			if len(stack) == 0 {
				fail(j, "unmatched %s", c.Op)
				continue
			}
			if expected := stack[len(stack)-1]; expected != c.Op {
				fail(j, "%s while expecting %s", c.Op, expected)
			}
			stack = stack[:len(stack)-1]
		}
		switch c.Op {
		case OpFillRect, OpImage, OpPushClip, OpPushStackingContext:
			if !c.Rect.isFinite() {
				fail(j, "non finite rectangle %s", c.Rect)
			}
		case OpBorder:
			if !c.Border.Strip.isFinite() {
				fail(j, "non finite border %s", c.Border.Strip)
			}
		case OpText:
			if !utils.IsFinite(c.Text.X) || !utils.IsFinite(c.Text.Y) {
				fail(j, "non finite text origin")
			}
		case OpPushOpacity:
			if !(c.Alpha >= 0 && c.Alpha <= 1) {
				fail(j, "invalid opacity %g", c.Alpha)
			}
		case OpPushTransform:
			if c.Transform.Determinant() == 0 {
				fail(j, "singular transform")
			}
		case OpPushFilter:
			if len(c.Filters) == 0 {
				fail(j, "empty filter")
			}
			for _, f := range c.Filters {
				if v := f.Amount.Value; !utils.IsFinite(v) || v < 0 {
					fail(j, "invalid filter %s", f)
				}
			}
		}
	}
	for range stack {
		fail(len(p.Commands), "unclosed group")
	}
	return errs
}

// Replay plays the commands on [r]. The list must be valid.
func (p *Page) Replay(r Replayer) {
	for _, c := range p.Commands {
		switch c.Op {
		case OpFillRect:
			r.FillRect(c.Rect, c.Color)
		case OpBorder:
			r.StrokeBorder(c.Border)
		case OpText:
			r.DrawText(c.Text)
		case OpImage:
			r.DrawImage(c.Image, c.Rect)
		case OpPushClip:
			r.PushClip(c.Rect)
		case OpPopClip:
			r.PopClip()
		case OpPushTransform:
			r.PushTransform(c.Transform)
		case OpPopTransform:
			r.PopTransform()
		case OpPushOpacity:
			r.PushOpacity(c.Alpha)
		case OpPopOpacity:
			r.PopOpacity()
		case OpPushFilter:
			r.PushFilter(c.Filters)
		case OpPopFilter:
			r.PopFilter()
		case OpPushStackingContext:
			r.PushStackingContext(c.Rect)
		case OpPopStackingContext:
			r.PopStackingContext()
		}
	}
}

// Replay creates one page per display list page on [doc],
// and plays the commands on it.
func (l *List) Replay(doc Document) {
	anchors := make([][]Anchor, len(l.Pages))
	for i := range l.Pages {
		page := &l.Pages[i]
		page.Replay(doc.AddPage(page.Width, page.Height))
		anchors[i] = page.Anchors
	}
	doc.CreateAnchors(anchors)
}

// Dump writes a textual representation of the list, with
// groups indented.
func (l *List) Dump(w io.Writer) error {
	for i, page := range l.Pages {
		if _, err := fmt.Fprintf(w, "page %d: %g x %g\n", i, page.Width, page.Height); err != nil {
			return err
		}
		depth := 1
		for _, c := range page.Commands {
			if c.Op.isPop() {
				depth = max(1, depth-1)
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), c); err != nil {
				return err
			}
			if _, ok := c.Op.isPush(); ok {
				depth++
			}
		}
	}
	return nil
}
