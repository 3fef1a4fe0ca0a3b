package rules

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tomark/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func constant(s string) Converter {
	return func(Context, *html.Node, string) string { return s }
}

func firstElement(t *testing.T, root *html.Node, tag string) *html.Node {
	w := dom.NewWalker(root)
	for n := w.Advance(); n != nil; n = w.Advance() {
		if dom.IsElement(n, tag) {
			return n
		}
	}
	t.Fatalf("no <%s> in test document", tag)
	return nil
}

func TestLongestChainWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	rs := NewRuleSet(map[string]Converter{
		"P":            constant("P"),
		"BLOCKQUOTE P": constant("BLOCKQUOTE P"),
		"LI P":         constant("LI P"),
	})
	root, err := dom.Parse("<blockquote><p>x</p></blockquote><p>y</p><ul><li><p>z</p></li></ul>")
	require.NoError(t, err)
	bq := root.FirstChild
	assert.Equal(t, "BLOCKQUOTE P", rs.Convert(root, bq.FirstChild, ""))
	assert.Equal(t, "P", rs.Convert(root, bq.NextSibling, ""))
	li := firstElement(t, root, "li")
	assert.Equal(t, "LI P", rs.Convert(root, li.FirstChild, ""))
}

func TestLookupStopsAtRoot(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	rs := NewRuleSet(map[string]Converter{
		"P":       constant("P"),
		"DIV P":   constant("DIV P"),
		"SPAN EM": constant("SPAN EM"),
	})
	root, err := dom.Parse("<p>x</p>")
	require.NoError(t, err)
	// the synthetic root is a <div>, but must not take part in matching
	assert.Equal(t, "P", rs.Convert(root, root.FirstChild, ""))
}

func TestLaterRegistrationReplaces(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	rs := NewRuleSet(map[string]Converter{"EM, I": constant("old")})
	rs.AddRule("I", constant("new"))
	root, err := dom.Parse("<i>a</i><em>b</em>")
	require.NoError(t, err)
	assert.Equal(t, "new", rs.Convert(root, root.FirstChild, ""))
	assert.Equal(t, "old", rs.Convert(root, root.LastChild, ""))
}

func TestFactoryDoesNotAlias(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	base := NewRuleSet(map[string]Converter{"LI P": constant("base")})
	derived := Factory(base, map[string]Converter{"B": constant("bold")})
	derived.AddRule("LI P", constant("derived"))
	base.AddRule("B", constant("base bold"))
	root, err := dom.Parse("<ul><li><p>x</p></li></ul><b>y</b>")
	require.NoError(t, err)
	p := firstElement(t, root, "p")
	b := root.LastChild
	assert.Equal(t, "base", base.Convert(root, p, ""))
	assert.Equal(t, "derived", derived.Convert(root, p, ""))
	assert.Equal(t, "base bold", base.Convert(root, b, ""))
	assert.Equal(t, "bold", derived.Convert(root, b, ""))
}

func TestPassThroughAndFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	rs := NewRuleSet(map[string]Converter{"SPAN": constant("span")})
	root, err := dom.Parse(`<span data-tomark-pass="" class="k">x</span><u>y</u>`)
	require.NoError(t, err)
	assert.Equal(t, `<span class="k">X</span>`, rs.Convert(root, root.FirstChild, "X"))
	assert.Equal(t, "<u>Y</u>", rs.Convert(root, root.LastChild, "Y"))
}

func TestSelectorIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	rs := NewRuleSet(map[string]Converter{
		"TR TD, TR TH": constant(""),
		"TD BR":        constant(""),
		"P":            constant(""),
	})
	assert.True(t, rs.HasRule("TR TD"))
	assert.True(t, rs.HasRule("tr th"))
	assert.False(t, rs.HasRule("TD"))
	assert.Equal(t, []string{"TR TD"}, rs.Selectors("td"))
	assert.Equal(t, []string{"P", "TD BR", "TR TD", "TR TH"}, rs.Selectors(""))
	mixed := Factory(rs, nil)
	assert.Equal(t, rs.Selectors(""), mixed.Selectors(""))
}
