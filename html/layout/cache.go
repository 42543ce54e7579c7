package layout

import (
	"github.com/benoitkugler/vformat/cache"
	"github.com/benoitkugler/vformat/config"
	"github.com/benoitkugler/vformat/logger"
	"go.uber.org/zap"
)

// layoutKey identifies a layout pass of a formatting context root:
// the content of the subtree and the constraints, but not the box
// identity, so that identical subtrees share their layout.
type layoutKey struct {
	content uint64 // box fingerprint
	space   uint64
}

type cachedLayout struct {
	root BoxID // the box the result was computed for
	res  result
}

// intrinsicKey identifies an intrinsic size measurement.
type intrinsicKey struct {
	content uint64
	mode    sizingMode
}

// Cache stores the results of completed layout passes of independent
// formatting contexts, and the intrinsic sizes of boxes.
// It is owned by one document generation: call [Cache.Advance] when the
// document or the text measurer changes in a way not reflected by the
// box fingerprints.
type Cache struct {
	layouts   *cache.Generational[layoutKey, cachedLayout]
	intrinsic *cache.Generational[intrinsicKey, Fl]
}

// NewCache returns an empty cache, sized by [cfg].
func NewCache(cfg config.CacheConfig) *Cache {
	return &Cache{
		layouts:   cache.NewGenerational[layoutKey, cachedLayout](cfg.Shards, cfg.LayoutEntries),
		intrinsic: cache.NewGenerational[intrinsicKey, Fl](cfg.Shards, cfg.LayoutEntries),
	}
}

// Advance invalidates all the entries.
func (c *Cache) Advance() {
	c.layouts.Advance()
	c.intrinsic.Advance()
}

// Stats returns the statistics of the layout entries.
func (c *Cache) Stats() cache.Stats { return c.layouts.Stats() }

// LogStats logs the cache statistics.
func (c *Cache) LogStats() {
	st := c.Stats()
	logger.ProgressLogger.Log("layout cache",
		zap.Int("entries", st.Len), zap.Uint64("hits", st.Hits),
		zap.Uint64("misses", st.Misses), zap.Float64("hit_rate", st.HitRate()))
}

// layout returns the cached layout of [id], computing it if needed.
// The result computed for an other box with the same content is rebased:
// box identifiers are allocated in preorder, so that two identical
// subtrees only differ by a constant offset.
func (c *Cache) layout(lc *layoutContext, id BoxID, space ConstraintSpace) result {
	key := layoutKey{content: lc.tree.Fingerprint(id), space: space.fingerprint()}
	v, err := c.layouts.GetOrCompute(key, func() (out cachedLayout, err error) {
		defer recoverAll(&err)
		return cachedLayout{root: id, res: lc.formattingContextLayout(id, space, nil)}, nil
	})
	if err != nil {
		rethrow(err)
	}
	return v.res.rebase(id - v.root)
}

// intrinsicSize returns the cached intrinsic size of [id].
func (c *Cache) intrinsicSize(lc *layoutContext, id BoxID, mode sizingMode, compute func() Fl) Fl {
	key := intrinsicKey{content: lc.tree.Fingerprint(id), mode: mode}
	v, err := c.intrinsic.GetOrCompute(key, func() (out Fl, err error) {
		defer recoverAll(&err)
		return compute(), nil
	})
	if err != nil {
		rethrow(err)
	}
	return v
}
