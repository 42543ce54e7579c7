// Package tree implements the style resolver: selector matching, cascade,
// var() substitution and value computation, for every element of
// a [dom.Document] and its ::before and ::after pseudo-elements.
//
// Styles are resolved incrementally: the resolver listens to the document
// mutations and only recomputes the dirty elements, their descendants
// (and, when a stylesheet uses sibling-dependent selectors, the affected
// siblings). Computed styles are shared between elements with the same
// inputs through a generational cache: they must not be mutated.
package tree

import (
	"maps"
	"slices"

	"github.com/benoitkugler/vformat/cache"
	"github.com/benoitkugler/vformat/config"
	pa "github.com/benoitkugler/vformat/css/parser"
	pr "github.com/benoitkugler/vformat/css/properties"
	"github.com/benoitkugler/vformat/css/validation"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/utils"
)

// Caches are the memoization tables of the resolver.
// They are owned by one document.
type Caches struct {
	// Styles is keyed by the fingerprint of the inputs of a computation.
	Styles *cache.Generational[uint64, *pr.Style]
	// Media is keyed by the device and the query list.
	Media *cache.Generational[string, bool]
}

// NewCaches allocates the caches described by [cfg].
func NewCaches(cfg config.CacheConfig) *Caches {
	return &Caches{
		Styles: cache.NewGenerational[uint64, *pr.Style](cfg.Shards, cfg.StyleEntries),
		Media:  cache.NewGenerational[string, bool](cfg.Shards, cfg.MediaEntries),
	}
}

type styleEntry struct {
	style *pr.Style
	// fingerprint includes the computed variables
	fingerprint uint64
}

type nodeStyles struct {
	styleEntry
	pseudos map[string]styleEntry
}

// Resolver computes and stores the styles of a document.
// It is not safe for concurrent use.
type Resolver struct {
	doc    *dom.Document
	sheets []*Sheet // UAStylesheet first
	device Device
	caches *Caches

	styles      map[dom.NodeID]*nodeStyles
	dirty       map[dom.NodeID]bool
	fullRestyle bool

	// active rule indices, per sheet, lazily computed
	active       [][]int
	styleAttrs   map[string][]validation.Declaration
	rootFontSize pr.Fl

	unsubscribe func()
}

// NewResolver returns a resolver for [doc], using the user agent stylesheet
// followed by [sheets]. [caches] may be nil to use the default sizes.
// The resolver subscribes to the document mutations, see [Resolver.Close].
func NewResolver(doc *dom.Document, sheets []*Sheet, device Device, caches *Caches) *Resolver {
	if caches == nil {
		caches = NewCaches(config.NewDefaultConfig().Cache)
	}
	r := &Resolver{
		doc:          doc,
		sheets:       append([]*Sheet{UAStylesheet}, sheets...),
		device:       device,
		caches:       caches,
		styles:       make(map[dom.NodeID]*nodeStyles),
		dirty:        make(map[dom.NodeID]bool),
		fullRestyle:  true,
		styleAttrs:   make(map[string][]validation.Declaration),
		rootFontSize: pr.InitialValues.GetFontSize().Value,
	}
	r.unsubscribe = doc.Subscribe(r.Invalidate)
	return r
}

// Close stops listening to the document mutations.
func (r *Resolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Document returns the resolved document.
func (r *Resolver) Document() *dom.Document { return r.doc }

// Device returns the current device.
func (r *Resolver) Device() Device { return r.device }

// Style returns the computed style of [node]. Text nodes use the style
// of their parent element. [pseudo] is empty for the element itself, or
// one of [Before] and [After]: nil is returned if the pseudo-element
// generates no box.
//
// Pending invalidations are resolved first.
func (r *Resolver) Style(node dom.NodeID, pseudo string) *pr.Style {
	if r.fullRestyle || len(r.dirty) != 0 {
		r.ResolveAll()
	}
	if r.doc.IsText(node) {
		node = r.doc.Parent(node)
	}
	ns := r.styles[node]
	if ns == nil || r.doc.Node(node) == nil {
		return nil
	}
	if pseudo == "" {
		return ns.style
	}
	if e, ok := ns.pseudos[pseudo]; ok {
		return e.style
	}
	return nil
}

// ResolveAll computes the styles of the dirty elements, and returns
// the elements whose style (or pseudo-element style) changed, in tree order.
func (r *Resolver) ResolveAll() []dom.NodeID {
	root := r.doc.Root()
	if root == dom.None {
		return nil
	}
	logger.ProgressLogger.Printf("Resolving styles (full: %v, dirty: %d)", r.fullRestyle, len(r.dirty))

	var changed []dom.NodeID
	r.resolveNode(root, nil, false, &changed)

	r.fullRestyle = false
	clear(r.dirty)
	for id := range r.styles {
		if r.doc.Node(id) == nil {
			delete(r.styles, id)
		}
	}
	return changed
}

// resolveNode computes the style of [node] if needed, then visits its children.
// [force] is true when the parent style changed.
func (r *Resolver) resolveNode(node dom.NodeID, parent *styleEntry, force bool, changed *[]dom.NodeID) {
	if !r.doc.IsElement(node) {
		return
	}
	current := r.styles[node]
	if force || r.fullRestyle || current == nil || r.dirty[node] {
		computed := r.computeNode(node, parent)
		if !computed.sameAs(current) {
			*changed = append(*changed, node)
			force = true
		}
		r.styles[node] = computed
		current = computed
	}
	for _, child := range r.doc.Children(node) {
		r.resolveNode(child, &current.styleEntry, force, changed)
	}
}

func (ns *nodeStyles) sameAs(other *nodeStyles) bool {
	if other == nil || ns.fingerprint != other.fingerprint || len(ns.pseudos) != len(other.pseudos) {
		return false
	}
	for name, e := range ns.pseudos {
		if o, ok := other.pseudos[name]; !ok || o.fingerprint != e.fingerprint {
			return false
		}
	}
	return true
}

func (r *Resolver) computeNode(node dom.NodeID, parent *styleEntry) *nodeStyles {
	matched := r.match(node)
	isRoot := parent == nil

	out := &nodeStyles{styleEntry: r.computeCached(node, "", parent, isRoot, matched.rules, matched.element)}
	if isRoot {
		r.rootFontSize = out.style.GetFontSize().Value
	}
	for _, pseudo := range [...]string{Before, After} {
		cascaded := matched.pseudos[pseudo]
		if cascaded == nil {
			continue
		}
		e := r.computeCached(node, pseudo, &out.styleEntry, false, matched.rules, cascaded)
		// content: none or normal generates no box
		if len(e.style.GetContent()) == 0 || e.style.GetDisplay().IsNone() {
			continue
		}
		if out.pseudos == nil {
			out.pseudos = make(map[string]styleEntry, 2)
		}
		out.pseudos[pseudo] = e
	}
	return out
}

// computeCached computes a style, sharing the result between elements
// with the same inputs.
func (r *Resolver) computeCached(node dom.NodeID, pseudo string, parent *styleEntry, isRoot bool,
	rules []matchedRule, cascaded *cascadedStyle,
) styleEntry {
	key := r.sharingKey(node, pseudo, parent, isRoot, rules)
	style, _ := r.caches.Styles.GetOrCompute(key, func() (*pr.Style, error) {
		c := computer{device: r.device, doc: r.doc, node: node, pseudo: pseudo, rootFontSize: r.rootFontSize}
		if parent != nil {
			c.parent = parent.style
		}
		return c.computeStyle(cascaded), nil
	})
	return styleEntry{style: style, fingerprint: styleFingerprint(style)}
}

// styleFingerprint extends [pr.Style.Fingerprint] with the variables,
// which are inherited by the children.
func styleFingerprint(s *pr.Style) uint64 {
	f := utils.NewFingerprint().Uint64(s.Fingerprint())
	for _, name := range slices.Sorted(maps.Keys(s.Variables)) {
		f.String(name).String(s.Variables[name].String())
	}
	return f.Sum()
}

// Invalidate marks the elements affected by [m]. It is registered
// as a document listener by [NewResolver].
func (r *Resolver) Invalidate(m dom.Mutation) {
	siblings := r.usesSiblingSelectors()
	switch m.Kind {
	case dom.NodeAdded:
		if siblings && m.Parent != dom.None {
			r.markSubtree(m.Parent)
		} else {
			r.markSubtree(m.Node)
		}
	case dom.NodeRemoved:
		// removed styles are dropped by ResolveAll
		if siblings && m.Parent != dom.None {
			r.markSubtree(m.Parent)
		}
	case dom.AttributeChanged:
		r.markSubtree(m.Node)
		if siblings {
			for _, s := range r.doc.NextElementSiblings(m.Node) {
				r.markSubtree(s)
			}
		}
	case dom.TextChanged:
		// text does not change the style of elements
	}
}

func (r *Resolver) markSubtree(node dom.NodeID) {
	r.doc.Walk(node, func(id dom.NodeID) bool {
		if r.doc.IsElement(id) {
			r.dirty[id] = true
		}
		return true
	})
}

func (r *Resolver) usesSiblingSelectors() bool {
	for _, s := range r.sheets {
		if s.siblings {
			return true
		}
	}
	return false
}

// AddSheet appends an author or user stylesheet, and schedules
// a full restyle.
func (r *Resolver) AddSheet(sheet *Sheet) {
	r.sheets = append(r.sheets, sheet)
	r.sheetsChanged()
}

// RemoveSheet removes [sheet], returning false if it was not used.
// The user agent stylesheet can't be removed.
func (r *Resolver) RemoveSheet(sheet *Sheet) bool {
	for i, s := range r.sheets {
		if i != 0 && s == sheet {
			r.sheets = slices.Delete(r.sheets, i, i+1)
			r.sheetsChanged()
			return true
		}
	}
	return false
}

func (r *Resolver) sheetsChanged() {
	r.active = nil
	r.fullRestyle = true
	r.caches.Styles.Advance()
}

// SetDevice changes the device, used by media queries
// and viewport units, and schedules a full restyle.
func (r *Resolver) SetDevice(device Device) {
	if device == r.device {
		return
	}
	r.device = device
	r.active = nil
	r.fullRestyle = true
	r.caches.Styles.Advance()
	r.caches.Media.Advance()
}

// PageDescriptors returns the cascaded descriptors of the @page rules
// matching the device.
func (r *Resolver) PageDescriptors() validation.PageDescriptors {
	var decls []pa.Declaration
	for _, sheet := range r.sheets {
		for _, page := range sheet.PageRules() {
			if r.mediaMatches(page.Media) {
				decls = append(decls, page.Declarations...)
			}
		}
	}
	return validation.ParsePage(decls)
}
