package doctree

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tomark/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWithDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.doctree")
	defer teardown()
	//
	h, err := Basic.Node(NodeHeading, Attrs{"level": 3}, Basic.Text("Title"))
	require.NoError(t, err)
	assert.Equal(t, 3, h.AttrInt("level", 0))
	assert.Equal(t, "Title", h.TextContent())
	ol, err := Basic.Node(NodeOrderedList, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ol.AttrInt("order", 0))
}

func TestSchemaErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.doctree")
	defer teardown()
	//
	_, err := Basic.Node("footnote", nil)
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = Basic.Node(NodeThematicBreak, nil, Basic.Text("x"))
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = NewSchema([]NodeSpec{{Name: "doc"}}, nil)
	assert.Error(t, err)
	_, err = NewSchema([]NodeSpec{{Name: "text", Text: true}, {Name: "text", Text: true}}, nil)
	assert.Error(t, err)
}

func TestMarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.doctree")
	defer teardown()
	//
	link := Mark{Type: MarkLink, Attrs: Attrs{"href": "x"}}
	marks := AddMark(nil, Mark{Type: MarkCode})
	marks = AddMark(marks, Mark{Type: MarkEmph})
	marks = AddMark(marks, link)
	marks = AddMark(marks, Mark{Type: MarkEmph})
	require.Len(t, marks, 3)
	assert.Equal(t, []MarkType{MarkLink, MarkEmph, MarkCode},
		[]MarkType{marks[0].Type, marks[1].Type, marks[2].Type})
	assert.True(t, HasMark(marks, MarkCode))
	assert.False(t, link.Eq(Mark{Type: MarkLink, Attrs: Attrs{"href": "y"}}))
	assert.True(t, Basic.HasMark(MarkStrike))
}

func TestEqual(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.doctree")
	defer teardown()
	//
	build := func(text string) *Node {
		p, _ := Basic.Node(NodeParagraph, nil, Basic.Text(text, Mark{Type: MarkStrong}))
		doc, _ := Basic.Node(NodeDoc, nil, p)
		return doc
	}
	assert.True(t, Equal(build("a"), build("a")))
	assert.False(t, Equal(build("a"), build("b")))
	t.Logf("\n%s", build("a"))
}
