package xpathadapter

import (
	"testing"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tomark/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecedingItems(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.dom")
	defer teardown()
	//
	root, err := dom.Parse(`<ol start="3"><li>a</li><!-- x --><li>b</li><li>c</li></ol>`)
	require.NoError(t, err)
	ol := root.FirstChild
	require.True(t, dom.IsElement(ol, "ol"))
	expr := xpath.MustCompile("count(preceding-sibling::li)")
	var counts []int
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if dom.IsElement(li, "li") {
			counts = append(counts, Count(expr, root, li))
		}
	}
	assert.Equal(t, []int{0, 1, 2}, counts)
}

func TestSelectElements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.dom")
	defer teardown()
	//
	root, err := dom.Parse(`<p id="a">one</p><p>two <b>bold</b></p>`)
	require.NoError(t, err)
	nav := NewNavigator(root)
	iter := xpath.MustCompile("//p").Select(nav)
	var texts []string
	for iter.MoveNext() {
		n, err := CurrentNode(iter.Current())
		require.NoError(t, err)
		texts = append(texts, dom.TextContent(n))
	}
	assert.Equal(t, []string{"one", "two bold"}, texts)
	//
	v := xpath.MustCompile("string(//p/@id)").Evaluate(NewNavigator(root))
	assert.Equal(t, "a", v)
}
