package layout

import (
	pr "github.com/benoitkugler/vformat/css/properties"
	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/benoitkugler/vformat/utils"
)

// ConstraintSpace is the input of the layout of one box.
// It is passed by value, and never mutated.
type ConstraintSpace struct {
	// AvailableWidth is the width of the containing block.
	AvailableWidth Fl
	// AvailableHeight is the height of the containing block,
	// or [utils.Inf] when it depends on the content.
	AvailableHeight Fl
	// PercentWidth and PercentHeight are used to resolve percentages,
	// [utils.Inf] meaning an indefinite size.
	PercentWidth, PercentHeight Fl

	// WritingMode only supports horizontal-tb.
	WritingMode pr.Keyword

	// BlockBudget is the block size left in the current fragmentainer,
	// measured from the top of the pending margins. It is [utils.Inf]
	// when the content is not fragmented.
	BlockBudget Fl
	// FragmentainerTop is true when nothing has been placed before
	// in the fragmentainer: some content must be placed to ensure progress.
	FragmentainerTop bool
	// AvoidBreaks is set inside boxes with "break-inside: avoid".
	AvoidBreaks bool
	// Columns is set inside a multi-column container, where column
	// breaks are forced.
	Columns bool

	// FixedWidth and FixedHeight are border box sizes imposed by the
	// parent formatting context (stretched items, table cells), or -1.
	FixedWidth, FixedHeight Fl
	// ShrinkToFit resolves an auto width to the content width
	// instead of the available width.
	ShrinkToFit bool

	// contentOnly lays out the content of a block container in a
	// column: its own margins, borders, paddings and sizes are ignored.
	contentOnly bool
}

// NewConstraintSpace returns the space of a containing block of the given
// size, with no fragmentation. [height] may be [utils.Inf].
func NewConstraintSpace(width, height Fl) ConstraintSpace {
	return ConstraintSpace{
		AvailableWidth: width, AvailableHeight: height,
		PercentWidth: width, PercentHeight: height,
		WritingMode: kw.HorizontalTB,
		BlockBudget: utils.Inf,
		FixedWidth:  -1, FixedHeight: -1,
	}
}

// WithBudget returns a copy of [cs] fragmented every [budget].
func (cs ConstraintSpace) WithBudget(budget Fl) ConstraintSpace {
	cs.BlockBudget = budget
	return cs
}

func (cs ConstraintSpace) fragmenting() bool { return utils.IsFinite(cs.BlockBudget) }

// child returns the space for a child whose containing block is
// the content box of the current box.
func (cs ConstraintSpace) child(width, height Fl) ConstraintSpace {
	out := NewConstraintSpace(width, height)
	out.BlockBudget = cs.BlockBudget
	out.FragmentainerTop = cs.FragmentainerTop
	out.AvoidBreaks = cs.AvoidBreaks
	out.Columns = cs.Columns
	return out
}

// unfragmented returns a copy of [cs] without fragmentation.
func (cs ConstraintSpace) unfragmented() ConstraintSpace {
	cs.BlockBudget = utils.Inf
	cs.FragmentainerTop = false
	cs.AvoidBreaks = false
	return cs
}

// fingerprint hashes the fields used by a layout pass without
// fragmentation.
func (cs ConstraintSpace) fingerprint() uint64 {
	return utils.NewFingerprint().
		Float(cs.AvailableWidth).Float(cs.AvailableHeight).
		Float(cs.PercentWidth).Float(cs.PercentHeight).
		Int(int(cs.WritingMode)).
		Float(cs.FixedWidth).Float(cs.FixedHeight).
		Bool(cs.ShrinkToFit).Sum()
}
