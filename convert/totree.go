package convert

import (
	"regexp"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/tomark/core"
	"github.com/npillmayer/tomark/doctree"
	"github.com/npillmayer/tomark/mdast"
	"golang.org/x/text/cases"
)

// treeHandler converts a Markdown AST node. The node's children have
// already been converted to content.
type treeHandler func(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error)

// ToTree converts Markdown ASTs to document trees.
type ToTree struct {
	schema    *doctree.Schema
	linkAttrs doctree.Attrs
	handlers  [mdast.KindCount]treeHandler
}

// NewToTree creates a converter producing nodes of schema. If schema is
// nil, doctree.Basic is used.
func NewToTree(schema *doctree.Schema) *ToTree {
	if schema == nil {
		schema = doctree.Basic
	}
	t := &ToTree{schema: schema}
	t.handlers = [mdast.KindCount]treeHandler{
		mdast.KindDocument:      treeBlock(doctree.NodeDoc),
		mdast.KindParagraph:     treeBlock(doctree.NodeParagraph),
		mdast.KindHeading:       treeHeading,
		mdast.KindThematicBreak: treeBlock(doctree.NodeThematicBreak),
		mdast.KindBlockQuote:    treeBlock(doctree.NodeBlockQuote),
		mdast.KindList:          treeList,
		mdast.KindItem:          treeItem,
		mdast.KindCodeBlock:     treeCodeBlock,
		mdast.KindHTMLBlock:     treeHTMLBlock,
		mdast.KindTable:         treeBlock(doctree.NodeTable),
		mdast.KindTableHead:     treeTableHead,
		mdast.KindTableBody:     treeBlock(doctree.NodeTableBody),
		mdast.KindTableRow:      treeBlock(doctree.NodeTableRow),
		mdast.KindTableCell:     treeTableCell,
		mdast.KindDefinition:    treeDefinition,
		mdast.KindText:          treeText,
		mdast.KindSoftBreak:     treeBlock(doctree.NodeLineBreak),
		mdast.KindLineBreak:     treeBlock(doctree.NodeHardBreak),
		mdast.KindEmph:          treeMark(doctree.MarkEmph),
		mdast.KindStrong:        treeMark(doctree.MarkStrong),
		mdast.KindStrike:        treeMark(doctree.MarkStrike),
		mdast.KindCode:          treeCode,
		mdast.KindLink:          treeLink,
		mdast.KindImage:         treeImage,
		mdast.KindHTMLInline:    treeHTMLInline,
	}
	return t
}

// SetLinkAttributes sets attributes to add to every link mark, e.g.
// a target.
func (t *ToTree) SetLinkAttributes(attrs doctree.Attrs) {
	t.linkAttrs = attrs
}

// Convert converts the AST below root to a document tree. A nil root
// results in an empty document. If the AST contains a node of a kind
// without conversion, an error wrapping core.ErrUnsupportedNodeKind is
// returned.
func (t *ToTree) Convert(root *mdast.Node) (*doctree.Node, error) {
	if root == nil {
		return t.schema.Node(doctree.NodeDoc, nil)
	}
	s := &treeState{
		schema:    t.schema,
		linkAttrs: t.linkAttrs,
		defs:      make(map[string]*mdast.Node),
		refs:      make(map[*doctree.Node]*mdast.Node),
	}
	content, err := t.fold(s, root)
	if err != nil {
		return nil, err
	}
	var doc *doctree.Node
	if len(content) == 1 && content[0].Is(doctree.NodeDoc) {
		doc = content[0]
	} else if doc, err = t.schema.Node(doctree.NodeDoc, nil, content...); err != nil {
		return nil, err
	}
	s.resolve(doc)
	tracer().Debugf("converted Markdown AST, %d definitions, %d references",
		len(s.defs), len(s.refs))
	return doc, nil
}

// foldFrame holds an AST node waiting for its children to be converted.
type foldFrame struct {
	node    *mdast.Node
	next    int
	content []*doctree.Node
}

// fold converts the AST below root bottom-up into a draft tree.
func (t *ToTree) fold(s *treeState, root *mdast.Node) ([]*doctree.Node, error) {
	var result []*doctree.Node
	stack := arraystack.New()
	stack.Push(&foldFrame{node: root})
	for !stack.Empty() {
		top, _ := stack.Peek()
		f := top.(*foldFrame)
		if f.next < len(f.node.Children) {
			stack.Push(&foldFrame{node: f.node.Children[f.next]})
			f.next++
			continue
		}
		stack.Pop()
		kind := f.node.Kind
		if kind >= mdast.KindCount || t.handlers[kind] == nil {
			tracer().Errorf("no conversion for Markdown node kind %s", kind)
			return nil, core.UnsupportedNodeKind(kind)
		}
		nodes, err := t.handlers[kind](s, f.node, f.content)
		if err != nil {
			return nil, err
		}
		if parent, ok := stack.Peek(); ok {
			p := parent.(*foldFrame)
			p.content = append(p.content, nodes...)
		} else {
			result = nodes
		}
	}
	return result, nil
}

// --- Handlers --------------------------------------------------------------

type treeState struct {
	schema    *doctree.Schema
	linkAttrs doctree.Attrs
	defs      map[string]*mdast.Node        // link definitions by normalized label
	refs      map[*doctree.Node]*mdast.Node // placeholders
}

func (s *treeState) create(name string, attrs doctree.Attrs, content []*doctree.Node) ([]*doctree.Node, error) {
	n, err := s.schema.Node(name, attrs, content...)
	if err != nil {
		return nil, err
	}
	return []*doctree.Node{n}, nil
}

func treeBlock(name string) treeHandler {
	return func(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
		return s.create(name, nil, content)
	}
}

func treeHeading(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	return s.create(doctree.NodeHeading, doctree.Attrs{"level": n.Level}, content)
}

func treeList(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if n.Ordered {
		return s.create(doctree.NodeOrderedList, doctree.Attrs{"order": n.Start}, content)
	}
	return s.create(doctree.NodeBulletList, nil, content)
}

func treeItem(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	var attrs doctree.Attrs
	if n.Task {
		attrs = doctree.Attrs{"task": true, "checked": n.Checked}
	}
	return s.create(doctree.NodeListItem, attrs, content)
}

func treeCodeBlock(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	attrs := doctree.Attrs{}
	if fields := strings.Fields(n.Info); len(fields) > 0 {
		attrs["language"] = fields[0]
	}
	if n.FenceChar != 0 {
		attrs["fenceChar"] = string(n.FenceChar)
		attrs["fence"] = n.FenceLength
	}
	return s.create(doctree.NodeCodeBlock, attrs, s.literal(n.Literal))
}

func treeHTMLBlock(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	return s.create(doctree.NodeHTMLBlock, nil, s.literal(n.Literal))
}

// literal returns a text node for the content of a code or HTML block,
// without the final line ending.
func (s *treeState) literal(lit string) []*doctree.Node {
	lit = strings.TrimSuffix(lit, "\n")
	if lit == "" {
		return nil
	}
	return []*doctree.Node{s.schema.Text(lit)}
}

// treeTableHead turns the cells of the head row into head cells.
func treeTableHead(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	headCell, ok := s.schema.NodeType(doctree.NodeTableHeadCell)
	if !ok {
		return nil, core.UnsupportedNodeKind(n.Kind)
	}
	for _, row := range content {
		for _, cell := range row.Content {
			cell.Type = headCell
		}
	}
	return s.create(doctree.NodeTableHead, nil, content)
}

func treeTableCell(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	var attrs doctree.Attrs
	if n.Align != mdast.AlignNone {
		attrs = doctree.Attrs{"align": n.Align.String()}
	}
	return s.create(doctree.NodeTableBodyCell, attrs, content)
}

// treeDefinition records a link definition. The first definition of a label
// wins.
func treeDefinition(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	label := normalizeLabel(n.Label)
	if _, exists := s.defs[label]; !exists {
		s.defs[label] = n
	}
	return nil, nil
}

func treeText(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if n.Literal == "" {
		return nil, nil
	}
	return []*doctree.Node{s.schema.Text(n.Literal)}, nil
}

func treeMark(t doctree.MarkType) treeHandler {
	return func(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
		addMark(content, doctree.Mark{Type: t})
		return content, nil
	}
}

func treeCode(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if n.Literal == "" {
		return nil, nil
	}
	return []*doctree.Node{s.schema.Text(n.Literal, doctree.Mark{Type: doctree.MarkCode})}, nil
}

func treeLink(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if n.IsReference() {
		return s.placeholder(n, content), nil
	}
	addMark(content, s.linkMark(n.Destination, n.Title))
	return content, nil
}

func treeImage(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if n.IsReference() {
		return s.placeholder(n, content), nil
	}
	return s.create(doctree.NodeImage, imageAttrs(n, n.Destination, n.Title), nil)
}

func imageAttrs(n *mdast.Node, src, title string) doctree.Attrs {
	attrs := doctree.Attrs{"src": src, "alt": mdast.PlainText(n)}
	if title != "" {
		attrs["title"] = title
	}
	return attrs
}

var breakTag = regexp.MustCompile(`(?i)^<br\s*/?>$`)

func treeHTMLInline(s *treeState, n *mdast.Node, content []*doctree.Node) ([]*doctree.Node, error) {
	if breakTag.MatchString(strings.TrimSpace(n.Literal)) {
		return s.create(doctree.NodeLineBreak, nil, nil)
	}
	return s.create(doctree.NodeHTMLInline, doctree.Attrs{"html": n.Literal}, nil)
}

func (s *treeState) linkMark(href, title string) doctree.Mark {
	attrs := doctree.Attrs{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	for k, v := range s.linkAttrs {
		attrs[k] = v
	}
	return doctree.Mark{Type: doctree.MarkLink, Attrs: attrs}
}

// addMark adds m to nodes, including the content of placeholders.
func addMark(nodes []*doctree.Node, m doctree.Mark) {
	stack := append([]*doctree.Node(nil), nodes...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n.Marks = doctree.AddMark(n.Marks, m)
		if n.Type == placeholderType {
			stack = append(stack, n.Content...)
		}
	}
}

// --- References ------------------------------------------------------------

// placeholderType is the type of draft nodes standing in for reference
// links and images. It is not part of any schema.
var placeholderType = &doctree.NodeType{Name: "#reference", Group: doctree.GroupInline}

func (s *treeState) placeholder(n *mdast.Node, content []*doctree.Node) []*doctree.Node {
	p := &doctree.Node{Type: placeholderType, Content: content}
	s.refs[p] = n
	return []*doctree.Node{p}
}

// resolve replaces all placeholders of the draft tree below doc.
func (s *treeState) resolve(doc *doctree.Node) {
	if len(s.refs) == 0 {
		return
	}
	doctree.Walk(doc, func(n *doctree.Node) bool {
		for hasPlaceholder(n.Content) {
			var content []*doctree.Node
			for _, c := range n.Content {
				if c.Type == placeholderType {
					content = append(content, s.resolveReference(c)...)
				} else {
					content = append(content, c)
				}
			}
			n.Content = content
		}
		return true
	})
}

func hasPlaceholder(nodes []*doctree.Node) bool {
	for _, n := range nodes {
		if n.Type == placeholderType {
			return true
		}
	}
	return false
}

// resolveReference returns the nodes replacing placeholder p. A reference
// without a matching definition is restored as literal text.
func (s *treeState) resolveReference(p *doctree.Node) []*doctree.Node {
	ref := s.refs[p]
	def, found := s.defs[normalizeLabel(ref.Label)]
	if ref.Kind == mdast.KindImage {
		if found {
			img, err := s.schema.Node(doctree.NodeImage, imageAttrs(ref, def.Destination, def.Title))
			if err == nil {
				img.Marks = p.Marks
				return []*doctree.Node{img}
			}
		}
		return []*doctree.Node{s.schema.Text("!["+mdast.PlainText(ref)+"]"+s.labelSuffix(ref), p.Marks...)}
	}
	if found {
		addMark(p.Content, s.linkMark(def.Destination, def.Title))
		return p.Content
	}
	tracer().Infof("no definition for link reference [%s]", ref.Label)
	nodes := make([]*doctree.Node, 0, len(p.Content)+2)
	nodes = append(nodes, s.schema.Text("[", p.Marks...))
	nodes = append(nodes, p.Content...)
	return append(nodes, s.schema.Text("]"+s.labelSuffix(ref), p.Marks...))
}

// labelSuffix is the explicit label of a full reference, or "" for a
// shortcut reference.
func (s *treeState) labelSuffix(ref *mdast.Node) string {
	if normalizeLabel(ref.Label) == normalizeLabel(mdast.PlainText(ref)) {
		return ""
	}
	return "[" + ref.Label + "]"
}

// normalizeLabel case-folds a link label and collapses its whitespace.
func normalizeLabel(label string) string {
	return strings.Join(strings.Fields(cases.Fold().String(label)), " ")
}
