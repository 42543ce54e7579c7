package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/html/fragments"
	tu "github.com/benoitkugler/vformat/utils/testutils"
)

// Test CSS stacking contexts.

type serializedStacking struct {
	Tag            string
	BlocksAndCells []string
	Floats         []string
	ZeroZs         []serializedStacking
}

func serializeStacking(frags *fragments.Tree, context *StackingContext) serializedStacking {
	tag := func(id fragments.FragmentID) string { return frags.Boxes.Tag(frags.Fragment(id).Box) }
	out := serializedStacking{Tag: tag(context.frag)}
	for _, b := range context.blocksAndCells {
		out.BlocksAndCells = append(out.BlocksAndCells, tag(b))
	}
	for _, f := range context.floats {
		out.Floats = append(out.Floats, tag(f.frag))
	}
	for _, c := range context.zeroZContexts {
		out.ZeroZs = append(out.ZeroZs, serializeStacking(frags, c))
	}
	return out
}

func pageContext(t *testing.T, frame *Frame) *StackingContext {
	t.Helper()
	pages := frame.Fragments.Pages()
	require.NotEmpty(t, pages)
	return NewStackingContext(frame.Fragments, pages[0])
}

func TestNested(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	for _, data := range []struct {
		source   string
		contexts serializedStacking
	}{
		{
			`
      <p id=lorem></p>
      <div style="position: relative">
        <p id=lipsum></p>
      </div>`,
			serializedStacking{
				"", []string{"html", "body", "p"}, nil, []serializedStacking{
					{"div", []string{"p"}, nil, nil},
				},
			},
		},
		{
			`
      <div style="position: relative">
        <p style="position: relative"></p>
      </div>`,
			serializedStacking{
				"", []string{"html", "body"}, nil, []serializedStacking{
					{"div", nil, nil, nil},
					{"p", nil, nil, nil},
				},
			},
		},
		{
			`
      <div style="opacity: 0.5">
        <p style="position: relative"></p>
      </div>`,
			serializedStacking{
				"", []string{"html", "body"}, nil, []serializedStacking{
					{"div", nil, nil, []serializedStacking{
						{"p", nil, nil, nil},
					}},
				},
			},
		},
		{
			`<article style="float: left"><p></p></article><section></section>`,
			serializedStacking{
				"", []string{"html", "body", "section"}, []string{"article"}, nil,
			},
		},
	} {
		frame := renderFrame(t, data.source)
		tu.AssertEqual(t, serializeStacking(frame.Fragments, pageContext(t, frame)), data.contexts)
	}
}

func TestZIndexOrder(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `
		<div id=a style="position: absolute; z-index: 2"></div>
		<div id=b style="position: absolute; z-index: -1"></div>
		<div id=c style="position: absolute; z-index: 1"></div>
		<div id=d style="position: absolute; z-index: -3"></div>
		<div id=e style="position: absolute; z-index: 1"></div>
		<div id=f style="position: absolute; z-index: 0"></div>
	`)
	sc := pageContext(t, frame)
	ids := func(contexts []*StackingContext) []string {
		var out []string
		for _, c := range contexts {
			box := frame.Boxes.Box(frame.Fragments.Fragment(c.frag).Box)
			id, _ := frame.Boxes.Document().Attr(box.Node, "id")
			out = append(out, id)
		}
		return out
	}
	assert.Equal(t, []string{"d", "b"}, ids(sc.negativeZContexts))
	assert.Equal(t, []string{"f"}, ids(sc.zeroZContexts))
	// stable for equal z-index
	assert.Equal(t, []string{"c", "e", "a"}, ids(sc.positiveZContexts))
}

func TestInlineBlockContexts(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `<body>Some text: <span style="display: inline-block">a</span><span style="display: inline-block; position: relative">b</span>`)
	sc := pageContext(t, frame)

	// the inline-block is painted with its line ...
	require.Len(t, sc.atomics, 1)
	for id, atomic := range sc.atomics {
		assert.Equal(t, id, atomic.frag)
		assert.Equal(t, "span", frame.Boxes.Tag(frame.Fragments.Fragment(id).Box))
	}
	// ... but the positioned one is in a sub-context
	require.Len(t, sc.zeroZContexts, 1)
	assert.True(t, sc.detached[sc.zeroZContexts[0].frag])
	assert.Equal(t, "span", frame.Boxes.Tag(frame.Fragments.Fragment(sc.zeroZContexts[0].frag).Box))
}

func TestCreatesStackingContext(t *testing.T) {
	defer tu.CaptureLogs().AssertNoLogs(t)

	frame := renderFrame(t, `
		<div id=static></div>
		<div id=relative style="position: relative"></div>
		<div id=zindex style="position: relative; z-index: 0"></div>
		<div id=opacity style="opacity: 0.9"></div>
		<div id=transform style="transform: scale(2)"></div>
		<div id=overflow style="overflow: hidden"></div>
		<div id=filter style="filter: grayscale()"></div>
		<div id=zstatic style="z-index: 3"></div>
	`)
	for id, exp := range map[string]bool{
		"static": false, "relative": false, "zindex": true, "opacity": true,
		"transform": true, "overflow": true, "filter": true, "zstatic": false,
	} {
		f := frame.Fragments.Fragment(fragmentOf(t, frame, id))
		assert.Equal(t, exp, createsStackingContext(f.Style), id)
	}
}
