// Package tracer provides functions to dump the current layout tree,
// which may be used in debug mode.
package tracer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/utils"
)

type Tracer struct {
	out io.Writer
}

// NewTracer panics if an error occurs.
func NewTracer(outFile string) Tracer {
	f, err := os.Create(outFile)
	if err != nil {
		panic(err)
	}

	return Tracer{out: f}
}

// NewTracerWriter writes to [out].
func NewTracerWriter(out io.Writer) Tracer { return Tracer{out: out} }

// FormatFloat rounds [v] to one decimal.
func FormatFloat(v utils.Fl) string {
	return strconv.FormatFloat(float64(utils.RoundPrec(v, 1)), 'g', -1, 32)
}

func (t Tracer) Dump(line string) {
	fmt.Fprintln(t.out, line)
}

// DumpTree prints the fragments of [tree], one per line, indented
// by depth, with their absolute position and size.
func (t Tracer) DumpTree(tree *fragments.Tree, context string) {
	fmt.Fprintln(t.out, context)

	if tree.Root == fragments.NoFragment {
		fmt.Fprintln(t.out)
		return
	}

	var printer func(id fragments.FragmentID, indent int)
	printer = func(id fragments.FragmentID, indent int) {
		f := tree.Fragment(id)
		fmt.Fprint(t.out, strings.Repeat(" ", indent))
		fmt.Fprintf(t.out, "%s %s: %s %s %s %s\n", f.Kind, tree.Boxes.Tag(f.Box),
			FormatFloat(f.AbsX),
			FormatFloat(f.AbsY),
			FormatFloat(f.Width),
			FormatFloat(f.Height),
		)
		if f.Kind == fragments.TextK {
			fmt.Fprintln(t.out, strings.Repeat(" ", indent+1)+f.Text)
		}

		for _, child := range f.Children {
			printer(child, indent+1)
		}
	}

	printer(tree.Root, 0)

	fmt.Fprintln(t.out)
}
