package convert

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tomark/core"
	"github.com/npillmayer/tomark/doctree"
	"github.com/npillmayer/tomark/mdast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, name string, attrs doctree.Attrs, content ...*doctree.Node) *doctree.Node {
	n, err := doctree.Basic.Node(name, attrs, content...)
	require.NoError(t, err)
	return n
}

func para(t *testing.T, content ...*doctree.Node) *doctree.Node {
	return node(t, doctree.NodeParagraph, nil, content...)
}

func txt(s string, marks ...doctree.MarkType) *doctree.Node {
	var mm []doctree.Mark
	for _, m := range marks {
		mm = doctree.AddMark(mm, doctree.Mark{Type: m})
	}
	return doctree.Basic.Text(s, mm...)
}

func names(nodes []*doctree.Node) []string {
	n := make([]string, len(nodes))
	for i, x := range nodes {
		n[i] = x.Name()
	}
	return n
}

func TestSoftBreakExpansion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	c := NewConvertor(nil, DefaultOptions())
	plain, err := c.ToDocument([]byte("ab"))
	require.NoError(t, err)
	assert.Len(t, plain.Content, 1)
	for _, src := range []string{"a<br>b", "a\nb"} {
		doc, err := c.ToDocument([]byte(src))
		require.NoError(t, err)
		t.Logf("\n%s", doc)
		require.Len(t, doc.Content, 3, src)
		assert.Equal(t, "a", doc.Content[0].TextContent())
		assert.Equal(t, 0, doc.Content[1].ChildCount())
		assert.Equal(t, "b", doc.Content[2].TextContent())
		md, err := c.ToMarkdownText(doc)
		require.NoError(t, err)
		assert.Equal(t, "a\n\nb", md)
	}
}

func TestBlankBetweenParagraphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	c := NewConvertor(nil, DefaultOptions())
	doc, err := c.ToDocument([]byte("a\n\nb\n\n# h\n\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"paragraph", "paragraph", "paragraph", "heading", "paragraph"},
		names(doc.Content))
	assert.Equal(t, 0, doc.Content[1].ChildCount())
	lead := doc.Content[0]
	lead.Content = append([]*doctree.Node{node(t, doctree.NodeLineBreak, nil)}, lead.Content...)
	split, err := c.splitAtBreaks(lead)
	require.NoError(t, err)
	require.Len(t, split, 2)
	assert.Equal(t, 0, split[0].ChildCount())
	assert.Equal(t, "a", split[1].TextContent())
}

const roundTripSource = "# Title\n\n" +
	"Some **bold** and *emph* text with `code` and a [link](http://x.org \"T\").\n\n" +
	"- one\n- two\n  - nested\n\n" +
	"1. first\n2. second\n\n" +
	"> quote\n\n" +
	"```go\nx := 1\n```\n\n" +
	"| a | b |\n|:--|--:|\n| 1 | 2 |\n\n" +
	"- [x] done\n- [ ] open\n"

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	c := NewConvertor(nil, DefaultOptions())
	doc, err := c.ToDocument([]byte(roundTripSource))
	require.NoError(t, err)
	t.Logf("\n%s", doc)
	md, err := c.ToMarkdownText(doc)
	require.NoError(t, err)
	t.Logf("\n%s", md)
	again, err := c.ToDocument([]byte(md))
	require.NoError(t, err)
	assert.True(t, doctree.Equal(doc, again), "tree changed in round trip:\n%s", again)
	md2, err := c.ToMarkdownText(again)
	require.NoError(t, err)
	assert.Equal(t, md, md2)
	//
	assert.Contains(t, md, "- [x] done")
	assert.Contains(t, md, "| :--- | ---: |")
	assert.Contains(t, md, "```go\nx := 1\n```")
	assert.Contains(t, md, "- two\n  - nested")
}

func TestHTMLRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	c := NewConvertor(nil, DefaultOptions())
	for _, src := range []string{
		"# T\n\nSome *text*.\n\n- a\n- b\n",
		"a ~~b~~ c\n",
		"x *y* ~~z~~ **w**\n",
		"- [x] a\n- [ ] b\n",
		"- [x] a\n\n- [ ] b\n",
	} {
		html, err := c.MarkdownToHTML([]byte(src))
		require.NoError(t, err)
		md := c.HTMLToMarkdown(html)
		t.Logf("\n%s\n%s", html, md)
		d1, err := c.ToDocument([]byte(src))
		require.NoError(t, err)
		d2, err := c.ToDocument([]byte(md))
		require.NoError(t, err)
		assert.True(t, doctree.Equal(d1, d2), "%q via %q:\n%s\n%s", src, md, d1, d2)
	}
	assert.Equal(t, "**a**", c.HTMLToMarkdown("<p><strong>a</strong></p>"))
}

func TestInlineMarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	toMd := NewToMarkdown()
	link := doctree.Mark{Type: doctree.MarkLink, Attrs: doctree.Attrs{"href": "/"}}
	img := node(t, doctree.NodeImage, doctree.Attrs{"src": "i.png", "alt": "alt"})
	img.Marks = []doctree.Mark{link}
	strong := doctree.Mark{Type: doctree.MarkStrong}
	linked := func(s string, marks ...doctree.Mark) *doctree.Node {
		n := txt(s)
		n.Marks = marks
		return n
	}
	cases := []struct {
		content []*doctree.Node
		md      string
	}{
		{[]*doctree.Node{txt("a "), txt("b ", doctree.MarkStrong), txt("c")}, "a **b** c"},
		{[]*doctree.Node{txt("x", doctree.MarkStrong, doctree.MarkEmph)}, "***x***"},
		{[]*doctree.Node{txt("a`b", doctree.MarkCode)}, "``a`b``"},
		{[]*doctree.Node{txt("*not emph*")}, `\*not emph\*`},
		{[]*doctree.Node{txt("a &amp; b")}, `a \&amp; b`},
		{[]*doctree.Node{txt("a"), node(t, doctree.NodeHardBreak, nil), txt("b")}, "a\\\nb"},
		{[]*doctree.Node{txt("a"), node(t, doctree.NodeLineBreak, nil), txt("b")}, "a\nb"},
		{[]*doctree.Node{img}, "[![alt](i.png)](/)"},
		{[]*doctree.Node{txt("a", doctree.MarkStrike)}, "~~a~~"},
		{[]*doctree.Node{txt("a ", doctree.MarkStrike), txt("b", doctree.MarkStrike, doctree.MarkStrong),
			txt(" c")}, "~~a **b**~~ c"},
		{[]*doctree.Node{txt("a ", doctree.MarkEmph), txt("b", doctree.MarkEmph, doctree.MarkStrong)}, "*a **b***"},
		{[]*doctree.Node{txt("a", doctree.MarkStrong, doctree.MarkEmph), txt(" b", doctree.MarkEmph)}, "***a** b*"},
		{[]*doctree.Node{linked("a", link), linked("b", link)}, "[a](/)[b](/)"},
		{[]*doctree.Node{linked("a ", link), linked("b", link, strong), txt(" c")}, "[a **b**](/) c"},
	}
	for _, c := range cases {
		doc := node(t, doctree.NodeDoc, nil, para(t, c.content...))
		md, err := toMd.Convert(doc)
		require.NoError(t, err)
		assert.Equal(t, c.md, md)
	}
}

func TestBlocksToMarkdown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	toMd := NewToMarkdown()
	item := func(s string) *doctree.Node {
		return node(t, doctree.NodeListItem, nil, para(t, txt(s)))
	}
	doc := node(t, doctree.NodeDoc, nil,
		node(t, doctree.NodeHeading, doctree.Attrs{"level": 2},
			txt("a"), node(t, doctree.NodeLineBreak, nil), txt("b")),
		para(t, txt("p")),
		para(t),
		para(t, txt("q")),
		node(t, doctree.NodeBulletList, nil, item("x")),
		node(t, doctree.NodeBulletList, nil, item("y")),
		node(t, doctree.NodeOrderedList, doctree.Attrs{"order": 3}, item("z")),
		node(t, doctree.NodeCodeBlock, nil, txt("indented")),
		node(t, doctree.NodeThematicBreak, nil),
		node(t, doctree.NodeTable, nil,
			node(t, doctree.NodeTableBody, nil,
				node(t, doctree.NodeTableRow, nil,
					node(t, doctree.NodeTableBodyCell, nil, txt("a|b")),
					node(t, doctree.NodeTableBodyCell, doctree.Attrs{"align": "center"}, txt("c", doctree.MarkCode))))),
	)
	md, err := toMd.Convert(doc)
	require.NoError(t, err)
	assert.Equal(t, "## a<br>b\n\np\n\nq\n\n- x\n\n* y\n\n3. z\n\n    indented\n\n***\n\n"+
		"|  |  |\n| --- | :---: |\n| a\\|b | `c` |", md)
}

func TestReferences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	ast := mdast.NewNode(mdast.KindDocument,
		mdast.NewNode(mdast.KindParagraph,
			&mdast.Node{Kind: mdast.KindLink, Label: "Foo", Children: []*mdast.Node{mdast.NewText("x")}},
			mdast.NewText(" "),
			&mdast.Node{Kind: mdast.KindImage, Label: "img", Children: []*mdast.Node{mdast.NewText("alt")}},
			mdast.NewText(" "),
			&mdast.Node{Kind: mdast.KindLink, Label: "missing", Children: []*mdast.Node{mdast.NewText("y")}},
		),
		&mdast.Node{Kind: mdast.KindDefinition, Label: "foo", Destination: "/u", Title: "t"},
		&mdast.Node{Kind: mdast.KindDefinition, Label: "IMG", Destination: "/i.png"},
	)
	doc, err := NewToTree(nil).Convert(ast)
	require.NoError(t, err)
	t.Logf("\n%s", doc)
	require.Len(t, doc.Content, 1)
	p := doc.Content[0]
	require.True(t, doctree.HasMark(p.Content[0].Marks, doctree.MarkLink))
	assert.Equal(t, "/u", p.Content[0].Marks[0].Attrs["href"])
	assert.Equal(t, "t", p.Content[0].Marks[0].Attrs["title"])
	require.True(t, p.Content[2].Is(doctree.NodeImage))
	assert.Equal(t, "/i.png", p.Content[2].AttrString("src"))
	assert.Equal(t, "alt", p.Content[2].AttrString("alt"))
	assert.Equal(t, "x  [y][missing]", p.TextContent())
}

func TestLinkAttributes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	conf := testconfig.Conf{
		ConfigKeyGFM:        false,
		ConfigKeyLinkTarget: "_blank",
	}
	opts := OptionsFromConfig(conf)
	assert.False(t, opts.GFM)
	c := NewConvertor(nil, opts)
	doc, err := c.ToDocument([]byte("[a](/b) ~~c~~"))
	require.NoError(t, err)
	p := doc.Content[0]
	require.True(t, doctree.HasMark(p.Content[0].Marks, doctree.MarkLink))
	assert.Equal(t, "_blank", p.Content[0].Marks[0].Attrs["target"])
	assert.False(t, doctree.HasMark(p.Content[len(p.Content)-1].Marks, doctree.MarkStrike))
	assert.True(t, DefaultOptions().GFM)
}

func TestUnsupportedKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.convert")
	defer teardown()
	//
	_, err := NewToTree(nil).Convert(mdast.NewNode(mdast.KindDocument, mdast.NewNode(mdast.KindCount)))
	assert.True(t, errors.Is(err, core.ErrUnsupportedNodeKind))
	assert.Equal(t, core.EUNSUPPORTED, core.Code(err))
	footnote := &doctree.Node{Type: &doctree.NodeType{Name: "footnote", Group: doctree.GroupBlock}}
	_, err = NewToMarkdown().Convert(node(t, doctree.NodeDoc, nil, footnote))
	assert.True(t, errors.Is(err, core.ErrUnsupportedNodeKind))
	//
	doc, err := NewToTree(nil).Convert(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.ChildCount())
	md, err := NewToMarkdown().Convert(nil)
	require.NoError(t, err)
	assert.Equal(t, "", md)
}
