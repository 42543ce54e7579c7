package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestParse(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE html><p class="a">Hello <em>world</em></p><!-- comment -->`)
	require.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "html", doc.Tag(root))
	assert.Equal(t, None, doc.Parent(root))

	var tags []string
	doc.Walk(root, func(id NodeID) bool {
		if doc.IsElement(id) {
			tags = append(tags, doc.Tag(id))
		}
		return true
	})
	assert.Equal(t, []string{"html", "head", "body", "p", "em"}, tags)

	body := doc.Children(root)[1]
	p := doc.Children(body)[0]
	assert.Equal(t, atom.P, doc.Atom(p))
	class, ok := doc.Attr(p, "class")
	assert.True(t, ok)
	assert.Equal(t, "a", class)
	assert.Equal(t, "Hello world", doc.TextContent(p))
	assert.Equal(t, []NodeID{body, root}, doc.Ancestors(p))
}

func TestMutations(t *testing.T) {
	doc, err := ParseString(`<div id="d"><span>a</span></div>`)
	require.NoError(t, err)

	var got []Mutation
	unsubscribe := doc.Subscribe(func(m Mutation) { got = append(got, m) })

	body := doc.Children(doc.Root())[1]
	div := doc.Children(body)[0]

	require.NoError(t, doc.SetAttribute(div, "class", "x"))
	require.NoError(t, doc.SetAttribute(div, "class", "x")) // no change, no event

	added, err := doc.AppendChild(div, &html.Node{Type: html.ElementNode, Data: "b", DataAtom: atom.B})
	require.NoError(t, err)
	assert.Equal(t, div, doc.Parent(added))

	span := doc.Children(div)[0]
	text := doc.Children(span)[0]
	require.NoError(t, doc.SetText(text, "b"))
	require.NoError(t, doc.RemoveChild(span))
	assert.Nil(t, doc.Node(span))
	assert.Nil(t, doc.Node(text))
	assert.Equal(t, []NodeID{added}, doc.Children(div))

	kinds := make([]MutationKind, len(got))
	for i, m := range got {
		kinds[i] = m.Kind
	}
	assert.Equal(t, []MutationKind{AttributeChanged, NodeAdded, TextChanged, NodeRemoved}, kinds)
	assert.Equal(t, uint64(4), doc.Generation())
	assert.Equal(t, div, got[3].Parent)

	unsubscribe()
	doc.RemoveAttribute(div, "class")
	assert.Len(t, got, 4)

	assert.Error(t, doc.RemoveChild(doc.Root()))
	_, err = doc.AppendChild(text, &html.Node{Type: html.TextNode})
	assert.Error(t, err)
}
