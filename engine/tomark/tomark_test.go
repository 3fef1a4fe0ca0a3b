package tomark

import (
	"html"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tomark/dom"
	"github.com/npillmayer/tomark/engine/rules"
	"github.com/npillmayer/tomark/mdast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"
)

func TestToMarkGFM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	for i, x := range []struct {
		html, md string
	}{
		{"", ""},
		{"<p>Hello <b>World</b></p>", "Hello **World**"},
		{"<h2>Title</h2><p>text</p>", "## Title\n\ntext"},
		{"<p><em>a</em> and <i></i>b</p>", "*a* and b"},
		{"<p># not a heading</p>", "\\# not a heading"},
		{`<p><a href="http://x.org" title="T">see [1]</a></p>`, `[see \[1\]](http://x.org "T")`},
		{`<img src="a.png" alt="x">`, "![x](a.png)"},
		{"<p>a <code>x*y</code></p>", "a `x*y`"},
		{`<p><code data-backticks="2">a`+"`"+`b</code></p>`, "``a`b``"},
		{"<blockquote><p>x</p><p>y</p></blockquote>", "> x\n> \n> y"},
		{"<ul><li>a</li><li>b</li></ul>", "* a\n* b"},
		{`<ol start="3"><li>a</li><li>b</li></ol>`, "3. a\n4. b"},
		{"<ul><li>a<ul><li>b</li></ul></li></ul>", "* a\n    * b"},
		{"<ul><li><p>a</p><p>b</p></li></ul>", "* a\n\n    b"},
		{"<p>x</p><hr><p>y</p>", "x\n\n- - -\n\ny"},
		{"<p><del>gone</del></p>", "~~gone~~"},
		{"<p>a <del>b</del> c</p>", "a ~~b~~ c"},
		{"<p>a <s>b</s>, c</p>", "a ~~b~~, c"},
		{"<p>x <u>y</u> <kbd>z</kbd> w</p>", "x <u>y</u> <kbd>z</kbd> w"},
		{"<p>a<br>b</p>", "a\nb"},
		{"<p>a <span>b</span></p>", "a <span>b</span>"},
	} {
		assert.Equal(t, x.md, ToMark(x.html), "test case #%d: %q", i, x.html)
	}
}

// Text escaped by ToMark must read back as the same literal text.
func TestEscapedTextReadsBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	parser := mdast.NewParser(true)
	for _, s := range []string{
		"* a", "- item", "+ item", "2. x", "1) a", "# a", "> quote",
		"_a_", "a *b* c", "~~s~~", "`code`", "```",
		"[a](b)", "[a]: /u", "a | b", "<div>", `\*`,
	} {
		md := ToMark("<p>" + html.EscapeString(s) + "</p>")
		root, err := parser.Parse([]byte(md))
		require.NoError(t, err, md)
		require.Len(t, root.Children, 1, "%q as %q", s, md)
		assert.Equal(t, mdast.KindParagraph, root.Children[0].Kind, "%q as %q", s, md)
		assert.Equal(t, s, mdast.PlainText(root), "%q as %q", s, md)
	}
}

func TestTaskLists(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	classed := `<ul><li class="task-list-item checked">done</li><li class="task-list-item">todo</li></ul>`
	assert.Equal(t, "* [x] done\n* [ ] todo", ToMark(classed))
	boxed := `<ul><li><input checked="" disabled="" type="checkbox"> done</li>` +
		`<li><input disabled="" type="checkbox"> todo</li></ul>`
	assert.Equal(t, "* [x] done\n* [ ] todo", ToMark(boxed))
	loose := `<ul><li><p><input checked="" disabled="" type="checkbox"> done</p></li>` +
		`<li><p><input disabled="" type="checkbox"> todo</p></li></ul>`
	assert.Equal(t, "* [x] done\n\n* [ ] todo", ToMark(loose))
	other := `<ul><li>a <input type="text"> b</li></ul>`
	assert.Equal(t, `* a <input type="text"/> b`, ToMark(other))
}

func TestFencedCode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	h := "<pre><code class=\"language-go\">a := 1\n\n\nb\n</code></pre>"
	assert.Equal(t, "```go\na := 1\n\n\nb\n```", ToMark(h))
	h = "<pre><code>x\n\n\ny</code></pre>"
	assert.Equal(t, "    x\n    \n    \n    y", ToMark(h, WithGFM(false)))
}

func TestTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	h := `<table><thead><tr><th align="center">A</th></tr></thead>` +
		`<tbody><tr><td>1</td></tr></tbody></table>`
	assert.Equal(t, "| A |\n| :---: |\n| 1 |", ToMark(h))
	h = `<table><thead><tr><th style="text-align: right">Name</th><th>Value</th></tr></thead>` +
		`<tbody><tr><td>a<br>b</td><td>x</td></tr></tbody></table>`
	assert.Equal(t, "| Name | Value |\n| ---: | ----- |\n| a<br>b | x |", ToMark(h))
}

func TestRulePrecedenceRaw(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	rs := rules.NewRuleSet(map[string]rules.Converter{
		"TEXT_NODE":    convertText,
		"P":            convertParagraph,
		"BLOCKQUOTE P": convertQuoteParagraph,
		"BLOCKQUOTE":   convertBlockQuote,
	})
	root, err := dom.Parse("<blockquote><p>x</p></blockquote>")
	require.NoError(t, err)
	assert.Equal(t, "\n\n> x\n\n", Render(root, rs))
}

func TestFinalize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	assert.Equal(t, "a\n\nb", Finalize("\n\na\n\n\n\nb  \n\n", false))
	assert.Equal(t, "a\n\nb", Finalize("a\n \n \n b", false))
	assert.Equal(t, "x\n\n\ny", Finalize("x"+rules.LineFeedReplacement+rules.LineFeedReplacement+
		rules.LineFeedReplacement+"y", false))
	assert.Equal(t, "a  \nb", Finalize("a  \nb", false))
	assert.Equal(t, "a\nb", Finalize("a  \nb", true))
}

func TestOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.engine")
	defer teardown()
	//
	conf := testconfig.Conf{ConfigKeyGFM: false}
	assert.Equal(t, "a  \nb", ToMark("<p>a<br>b</p>", FromConfig(conf)))
	assert.Equal(t, "<del>x</del>", ToMark("<del>x</del>", FromConfig(conf)))
	custom := rules.Factory(GFM, map[string]rules.Converter{
		"HR": func(rules.Context, *xhtml.Node, string) string { return "\n\n***\n\n" },
	})
	assert.Equal(t, "***", ToMark("<hr>", WithRenderer(custom)))
	assert.Equal(t, "- - -", ToMark("<hr>"))
}
