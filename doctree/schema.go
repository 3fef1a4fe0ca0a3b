package doctree

import (
	"github.com/npillmayer/tomark/core"
)

// Group classifies node types.
type Group string

// Node type groups.
const (
	GroupBlock  Group = "block"
	GroupInline Group = "inline"
)

// Node type names of the Basic schema.
const (
	NodeDoc           = "doc"
	NodeParagraph     = "paragraph"
	NodeText          = "text"
	NodeHeading       = "heading"
	NodeCodeBlock     = "codeBlock"
	NodeBulletList    = "bulletList"
	NodeOrderedList   = "orderedList"
	NodeListItem      = "listItem"
	NodeBlockQuote    = "blockQuote"
	NodeImage         = "image"
	NodeThematicBreak = "thematicBreak"
	NodeLineBreak     = "lineBreak"
	NodeHardBreak     = "hardBreak"
	NodeHTMLBlock     = "htmlBlock"
	NodeHTMLInline    = "htmlInline"
	NodeTable         = "table"
	NodeTableHead     = "tableHead"
	NodeTableBody     = "tableBody"
	NodeTableRow      = "tableRow"
	NodeTableHeadCell = "tableHeadCell"
	NodeTableBodyCell = "tableBodyCell"
)

// NodeSpec declares a node type.
type NodeSpec struct {
	Name      string
	Group     Group
	Leaf      bool  // nodes of this type have no content
	Text      bool  // nodes of this type are text nodes
	Textblock bool  // content is inline
	Defaults  Attrs // default attributes
}

// NodeType is a registered node type.
type NodeType struct {
	Name      string
	Group     Group
	IsLeaf    bool
	IsText    bool
	Textblock bool
	defaults  Attrs
	schema    *Schema
}

// Schema returns the schema t is registered with.
func (t *NodeType) Schema() *Schema {
	return t.schema
}

// Create creates a node of type t. attrs are merged over the type's
// defaults. Leaf types do not accept content.
func (t *NodeType) Create(attrs Attrs, content []*Node, marks []Mark) (*Node, error) {
	if t.IsLeaf && len(content) > 0 {
		return nil, core.Error(core.EINVALID, "node type %s does not accept content", t.Name)
	}
	n := &Node{Type: t, Marks: marks}
	if len(t.defaults) > 0 || len(attrs) > 0 {
		n.Attrs = make(Attrs, len(t.defaults)+len(attrs))
		for k, v := range t.defaults {
			n.Attrs[k] = v
		}
		for k, v := range attrs {
			n.Attrs[k] = v
		}
	}
	if len(content) > 0 {
		n.Content = make([]*Node, len(content))
		copy(n.Content, content)
	}
	return n, nil
}

// Schema is a registry of node types and mark types.
type Schema struct {
	nodes map[string]*NodeType
	marks map[MarkType]bool
	text  *NodeType
}

// NewSchema creates a schema from node and mark declarations. Node type
// names must be unique, and exactly one text type must be declared.
func NewSchema(nodes []NodeSpec, marks []MarkType) (*Schema, error) {
	s := &Schema{
		nodes: make(map[string]*NodeType, len(nodes)),
		marks: make(map[MarkType]bool, len(marks)),
	}
	for _, spec := range nodes {
		if _, dup := s.nodes[spec.Name]; dup {
			return nil, core.Error(core.EINVALID, "duplicate node type %q", spec.Name)
		}
		t := &NodeType{
			Name:      spec.Name,
			Group:     spec.Group,
			IsLeaf:    spec.Leaf || spec.Text,
			IsText:    spec.Text,
			Textblock: spec.Textblock,
			defaults:  spec.Defaults,
			schema:    s,
		}
		if t.IsText {
			if s.text != nil {
				return nil, core.Error(core.EINVALID, "second text node type %q", spec.Name)
			}
			s.text = t
		}
		s.nodes[spec.Name] = t
	}
	if s.text == nil {
		return nil, core.Error(core.EINVALID, "schema declares no text node type")
	}
	for _, m := range marks {
		s.marks[m] = true
	}
	return s, nil
}

// MustSchema is like NewSchema, but panics on error.
func MustSchema(nodes []NodeSpec, marks []MarkType) *Schema {
	s, err := NewSchema(nodes, marks)
	if err != nil {
		panic(err)
	}
	return s
}

// NodeType looks up a node type by name.
func (s *Schema) NodeType(name string) (*NodeType, bool) {
	t, ok := s.nodes[name]
	return t, ok
}

// HasMark is true if mark type m is declared by the schema.
func (s *Schema) HasMark(m MarkType) bool {
	return s.marks[m]
}

// Node creates a node of the type called name.
func (s *Schema) Node(name string, attrs Attrs, content ...*Node) (*Node, error) {
	t, ok := s.nodes[name]
	if !ok {
		tracer().Errorf("unknown node type %q", name)
		return nil, core.Error(core.EMISSING, "node type %q", name)
	}
	return t.Create(attrs, content, nil)
}

// Text creates a text node.
func (s *Schema) Text(text string, marks ...Mark) *Node {
	return &Node{Type: s.text, Text: text, Marks: marks}
}

// Basic is the schema for CommonMark and GFM documents.
var Basic = MustSchema([]NodeSpec{
	{Name: NodeDoc, Group: GroupBlock},
	{Name: NodeParagraph, Group: GroupBlock, Textblock: true},
	{Name: NodeText, Group: GroupInline, Text: true},
	{Name: NodeHeading, Group: GroupBlock, Textblock: true, Defaults: Attrs{"level": 1}},
	{Name: NodeCodeBlock, Group: GroupBlock, Defaults: Attrs{"language": ""}},
	{Name: NodeBulletList, Group: GroupBlock},
	{Name: NodeOrderedList, Group: GroupBlock, Defaults: Attrs{"order": 1}},
	{Name: NodeListItem, Group: GroupBlock},
	{Name: NodeBlockQuote, Group: GroupBlock},
	{Name: NodeImage, Group: GroupInline, Leaf: true},
	{Name: NodeThematicBreak, Group: GroupBlock, Leaf: true},
	{Name: NodeLineBreak, Group: GroupInline, Leaf: true},
	{Name: NodeHardBreak, Group: GroupInline, Leaf: true},
	{Name: NodeHTMLBlock, Group: GroupBlock},
	{Name: NodeHTMLInline, Group: GroupInline, Leaf: true},
	{Name: NodeTable, Group: GroupBlock},
	{Name: NodeTableHead, Group: GroupBlock},
	{Name: NodeTableBody, Group: GroupBlock},
	{Name: NodeTableRow, Group: GroupBlock},
	{Name: NodeTableHeadCell, Group: GroupBlock, Textblock: true},
	{Name: NodeTableBodyCell, Group: GroupBlock, Textblock: true},
}, []MarkType{MarkLink, MarkStrong, MarkEmph, MarkStrike, MarkCode})
