package document

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/config"
	"github.com/benoitkugler/vformat/html/layout"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/text"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

func TestPipelineFrames(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	p, _ := newTestPipeline(t, nil, Options{}, `<p>Hello</p><p>World</p>`)
	assert.Nil(t, p.Frame())

	first, err := p.Render(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, p.Frame())
	assert.Equal(t, 0, first.Generation)
	// everything is new
	assert.Len(t, first.Changed, first.Fragments.Len())
	assert.Zero(t, first.Removed)

	second, err := p.Render(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, p.Frame())
	assert.Equal(t, 1, second.Generation)
	assert.Empty(t, second.Changed)
	assert.Zero(t, second.Removed)
	tu.AssertEqual(t, texts(second.List.Pages[0]), texts(first.List.Pages[0]))
}

func TestPipelineInvalidation(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	p, doc := newTestPipeline(t, nil, Options{}, `
		<div id=a style="height: 10px"></div>
		<div id=b style="height: 10px"></div>
		<div id=c style="height: 10px"></div>`)
	_, err := p.Render(context.Background())
	require.NoError(t, err)

	require.NoError(t, doc.SetAttribute(findNode(t, doc, "b"), "style", "height: 30px"))
	frame, err := p.Render(context.Background())
	require.NoError(t, err)

	contains := func(id string) bool { return slices.Contains(frame.Changed, fragmentOf(t, frame, id)) }
	assert.False(t, contains("a"))
	assert.True(t, contains("b"))  // resized
	assert.True(t, contains("c"))  // moved
	assert.Zero(t, frame.Removed)

	require.NoError(t, doc.RemoveChild(findNode(t, doc, "c")))
	frame, err = p.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Removed)
	assert.False(t, slices.Contains(frame.Changed, fragmentOf(t, frame, "a")))
}

func TestPipelineColorChange(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	p, doc := newTestPipeline(t, nil, Options{}, `<p id=a>a</p><p id=b>b</p>`)
	_, err := p.Render(context.Background())
	require.NoError(t, err)

	// same geometry, different paint
	require.NoError(t, doc.SetAttribute(findNode(t, doc, "b"), "style", "color: red"))
	frame, err := p.Render(context.Background())
	require.NoError(t, err)
	assert.True(t, slices.Contains(frame.Changed, fragmentOf(t, frame, "b")))
	assert.False(t, slices.Contains(frame.Changed, fragmentOf(t, frame, "a")))
}

func TestPipelineBudgetKeepsPreviousFrame(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	cfg := config.NewDefaultConfig()
	cfg.Layout.MaxSteps = 1
	p, _ := newTestPipeline(t, cfg, Options{}, `<div><div><p>a</p></div></div>`)
	frame, err := p.Render(context.Background())
	assert.ErrorIs(t, err, layout.ErrBudgetExceeded)
	assert.Nil(t, frame)
	assert.Nil(t, p.Frame())

	p, _ = newTestPipeline(t, nil, Options{}, `<p>a</p>`)
	first, err := p.Render(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frame, err = p.Render(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, first, frame)
	assert.Same(t, first, p.Frame())
}

func TestPipelineTimeBudgetOnPathologicalPages(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	cfg := config.NewDefaultConfig()
	cfg.Layout.Paginate = true
	cfg.Layout.Budget = 50 * time.Millisecond
	cfg.Layout.MaxSteps, cfg.Layout.MaxFragments = 0, 0 // only the deadline applies
	p, doc := newTestPipeline(t, cfg, Options{}, `<div id=a style="height: 10px"></div>`, "@page { size: 100px 1px; margin: 0 }")
	first, err := p.Render(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.List.Pages, 10)

	// millions of one pixel pages
	require.NoError(t, doc.SetAttribute(findNode(t, doc, "a"), "style", "height: 100000000px"))
	frame, err := p.Render(context.Background())
	assert.ErrorIs(t, err, layout.ErrBudgetExceeded)
	assert.Same(t, first, frame)
	assert.Same(t, first, p.Frame())
}

type panicMeasurer struct{ text.FixedMeasurer }

func (panicMeasurer) Advance(text.FontDescription, string) text.Fl { panic("broken measurer") }

func TestPipelineRecoversPanics(t *testing.T) {
	logs := tu.CaptureLogs()

	p, _ := newTestPipeline(t, nil, Options{Measurer: panicMeasurer{}}, `<p>some text</p>`)
	frame, err := p.Render(context.Background())
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Contains(t, err.Error(), "broken measurer")
	assert.Nil(t, frame)

	logs.CheckLogs(t, "panic while rendering")
}

type panicProvider struct{}

func (panicProvider) Image(url string) *images.Image { panic("broken provider: " + url) }

func TestPipelineRecoversPaintPanics(t *testing.T) {
	logs := tu.CaptureLogs()

	p, doc := newTestPipeline(t, nil, Options{Images: panicProvider{}}, `<div id=a style="height: 10px"></div><p>b</p>`)
	first, err := p.Render(context.Background())
	require.NoError(t, err)

	// background images are only loaded by the painter
	require.NoError(t, doc.SetAttribute(findNode(t, doc, "a"), "style", "height: 10px; background-image: url(x.png)"))
	frame, err := p.Render(context.Background())
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Contains(t, err.Error(), "broken provider: x.png")
	assert.Same(t, first, frame)
	assert.Same(t, first, p.Frame())

	logs.CheckLogs(t, "panic while rendering")
}
