package document

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benoitkugler/vformat/backend"
	"github.com/benoitkugler/vformat/config"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/html/boxes"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/html/fragments"
	"github.com/benoitkugler/vformat/html/layout"
	"github.com/benoitkugler/vformat/html/tree"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/text"
)

// ErrInternal is returned when a step of the pipeline panics.
// It denotes a bug, not an invalid input.
var ErrInternal = errors.New("internal error")

// Options are the services used by a [Pipeline].
type Options struct {
	// Measurer defaults to [text.FixedMeasurer].
	Measurer text.Measurer
	// Images may be nil, in which case images are never loaded.
	Images images.Provider
}

// Frame is the output of a successful rendering.
type Frame struct {
	// Generation is incremented by each successful rendering.
	Generation int

	Boxes     *boxes.Tree
	Fragments *fragments.Tree
	List      *backend.List

	// Changed are the fragments whose geometry or paint-relevant
	// style changed since the previous frame, in tree order.
	// For the first frame, every fragment is reported.
	Changed []fragments.FragmentID
	// Removed is the number of fragments of the previous frame
	// with no counterpart in this one.
	Removed int

	Elapsed time.Duration

	snapshot map[fragmentKey]fragmentState
}

// Pipeline renders a document, keeping its caches alive between two
// renderings, so that the work after a mutation is proportional
// to the change.
//
// A Pipeline is safe for concurrent use, but renderings are serialized.
// The document must not be mutated during [Pipeline.Render].
type Pipeline struct {
	cfg      config.Config
	opts     Options
	resolver *tree.Resolver
	cache    *layout.Cache

	mu   sync.Mutex
	last *Frame
}

// NewPipeline returns a pipeline rendering [doc] with the user agent
// stylesheet and [sheets], for the device described by [cfg].
// [cfg] may be nil to use the defaults.
func NewPipeline(doc *dom.Document, sheets []*tree.Sheet, cfg *config.Config, opts Options) *Pipeline {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if opts.Measurer == nil {
		opts.Measurer = text.FixedMeasurer{}
	}
	return &Pipeline{
		cfg:      *cfg,
		opts:     opts,
		resolver: tree.NewResolver(doc, sheets, tree.NewDevice(cfg.Viewport), tree.NewCaches(cfg.Cache)),
		cache:    layout.NewCache(cfg.Cache),
	}
}

// Resolver gives access to the style resolver, to add or remove
// stylesheets, or to change the device.
func (p *Pipeline) Resolver() *tree.Resolver { return p.resolver }

// Close releases the document subscription.
func (p *Pipeline) Close() { p.resolver.Close() }

// Frame returns the last successful frame, or nil.
func (p *Pipeline) Frame() *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Render resolves the styles, builds the boxes, lays them out and paints
// the result.
//
// On failure, the last successful frame (which may be nil) is returned
// along with the error, and is kept as the current frame. Errors are
// either resource limits ([layout.ErrBudgetExceeded], [layout.ErrFragmentLimit],
// the error of [ctx]) or [ErrInternal].
func (p *Pipeline) Render(ctx context.Context) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	frame, err := p.render(ctx)
	if err != nil {
		logger.ProgressLogger.Log("rendering failed, keeping the previous frame",
			zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return p.last, err
	}
	frame.Elapsed = time.Since(start)
	if p.last != nil {
		frame.Generation = p.last.Generation + 1
	}
	frame.Changed, frame.Removed = diffFrames(p.last, frame)
	p.last = frame

	p.cache.LogStats()
	logger.ProgressLogger.Log("frame rendered",
		zap.Int("generation", frame.Generation),
		zap.Int("fragments", frame.Fragments.Len()),
		zap.Int("commands", frame.List.Len()),
		zap.Int("changed", len(frame.Changed)),
		zap.Duration("elapsed", frame.Elapsed))
	return frame, nil
}

func (p *Pipeline) render(ctx context.Context) (_ *Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if pp, ok := r.(paintPanic); ok {
				stack = pp.stack
			}
			logger.L().Error("panic while rendering", zap.Any("value", r), zap.ByteString("stack", stack))
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	changed := p.resolver.ResolveAll()
	logger.ProgressLogger.Log("styles resolved", zap.Int("restyled", len(changed)))

	bt := boxes.BuildWith(p.resolver.Document(), p.resolver, p.opts.Images)
	lopts := layout.Options{Measurer: p.opts.Measurer, Config: p.cfg.Layout, Cache: p.cache}
	device := p.resolver.Device()

	var frags *fragments.Tree
	if p.cfg.Layout.Paginate {
		page := layout.PageFromDescriptors(p.resolver.PageDescriptors(), device.Width, device.Height)
		frags, err = layout.Paginate(ctx, bt, bt.Root, page, lopts)
	} else {
		frags, err = layout.Layout(ctx, bt, bt.Root, layout.NewConstraintSpace(device.Width, device.Height), lopts)
	}
	if err != nil {
		return nil, err
	}

	list := BuildDisplayListWith(frags, DrawOptions{Measurer: p.opts.Measurer, Images: p.opts.Images})
	if err := list.Validate(); err != nil {
		// a malformed list is a bug of the painter
		return nil, multierr.Append(ErrInternal, err)
	}
	return &Frame{Boxes: bt, Fragments: frags, List: list}, nil
}

// fragmentKey matches the fragments of two layouts of the same document.
type fragmentKey struct {
	node   dom.NodeID
	pseudo string
	kind   fragments.Kind
	index  int
	// nth distinguishes fragments sharing the other fields,
	// like anonymous boxes
	nth int
}

// fragmentState are the properties of a fragment which
// affect its painting.
type fragmentState struct {
	x, y, width, height fragments.Fl
	text                string
	style               uint64
	image               string
}

func snapshot(frags *fragments.Tree) (map[fragmentKey]fragmentState, []fragmentKey) {
	out := make(map[fragmentKey]fragmentState, frags.Len())
	keys := make([]fragmentKey, frags.Len())
	counts := make(map[fragmentKey]int)
	styles := make(map[*pr.Style]uint64)
	frags.Walk(frags.Root, func(id fragments.FragmentID) bool {
		f := frags.Fragment(id)
		key := fragmentKey{node: dom.None, kind: f.Kind, index: f.Index}
		if f.Box != boxes.NoBox {
			box := frags.Boxes.Box(f.Box)
			key.node, key.pseudo = box.Node, box.Pseudo
		}
		key.nth = counts[key]
		counts[fragmentKey{node: key.node, pseudo: key.pseudo, kind: key.kind, index: key.index}]++

		state := fragmentState{x: f.AbsX, y: f.AbsY, width: f.Width, height: f.Height, text: f.Text}
		if f.Style != nil {
			fp, ok := styles[f.Style]
			if !ok {
				fp = f.Style.Fingerprint()
				styles[f.Style] = fp
			}
			state.style = fp
		}
		if f.Image != nil {
			state.image = f.Image.URL
		}
		out[key] = state
		keys[id] = key
		return true
	})
	return out, keys
}

// diffFrames computes the invalidation events of [next], and stores
// its snapshot.
func diffFrames(previous, next *Frame) (changed []fragments.FragmentID, removed int) {
	snap, keys := snapshot(next.Fragments)
	next.snapshot = snap
	for id, key := range keys {
		if previous != nil {
			if old, ok := previous.snapshot[key]; ok && old == snap[key] {
				continue
			}
		}
		changed = append(changed, fragments.FragmentID(id))
	}
	if previous != nil {
		for key := range previous.snapshot {
			if _, ok := snap[key]; !ok {
				removed++
			}
		}
	}
	return changed, removed
}
