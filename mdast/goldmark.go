package mdast

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/npillmayer/tomark/core"
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Parser reads Markdown source into a Markdown AST.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a parser. With gfm set, tables, strikethrough, task
// lists and bare-URL links are recognized.
func NewParser(gfm bool) *Parser {
	opts := []goldmark.Option{goldmark.WithRendererOptions(html.WithUnsafe())}
	if gfm {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return &Parser{md: goldmark.New(opts...)}
}

// Parse reads source and returns the document node of its AST. Link
// definitions are appended to the document as Definition nodes, ordered
// by label. An error is returned only if the source contains a construct
// which has no counterpart in this AST.
func (p *Parser) Parse(source []byte) (*Node, error) {
	pc := parser.NewContext()
	groot := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	b := &builder{source: source}
	root, err := b.build(groot)
	if err != nil {
		return nil, err
	}
	refs := pc.References()
	sort.Slice(refs, func(i, j int) bool {
		return bytes.Compare(refs[i].Label(), refs[j].Label()) < 0
	})
	for _, ref := range refs {
		root.Append(&Node{
			Kind:        KindDefinition,
			Label:       string(ref.Label()),
			Destination: string(ref.Destination()),
			Title:       string(ref.Title()),
		})
	}
	tracer().Debugf("parsed %d bytes of Markdown, %d link definitions", len(source), len(refs))
	return root, nil
}

// RenderHTML writes the HTML rendering of source to w. Raw HTML contained
// in source is passed through.
func (p *Parser) RenderHTML(source []byte, w io.Writer) error {
	if err := p.md.Convert(source, w); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot render Markdown as HTML")
	}
	return nil
}

type entry struct {
	node    *Node // may be nil for goldmark nodes without counterpart
	trailer *Node // appended after node, e.g. a line break
}

type builder struct {
	source []byte
	stack  []entry
	root   *Node
}

func (b *builder) build(groot gast.Node) (*Node, error) {
	err := gast.Walk(groot, func(gn gast.Node, entering bool) (gast.WalkStatus, error) {
		if entering {
			e, status, err := b.enter(gn)
			if err != nil {
				return gast.WalkStop, err
			}
			b.stack = append(b.stack, e)
			return status, nil
		}
		e := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		if e.node != nil && e.node.Kind == KindTable {
			restructureTable(e.node)
		}
		b.attach(e.node, e.trailer)
		return gast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if b.root == nil {
		b.root = NewNode(KindDocument)
	}
	return b.root, nil
}

func (b *builder) attach(nodes ...*Node) {
	var parent *Node
	for i := len(b.stack) - 1; i >= 0 && parent == nil; i-- {
		parent = b.stack[i].node
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if parent == nil {
			b.root = n
			continue
		}
		if last := len(parent.Children) - 1; n.Kind == KindText && last >= 0 &&
			parent.Children[last].Kind == KindText {
			prev := parent.Children[last] // coalesce adjacent text
			prev.Literal += n.Literal
			prev.Span.Stop = n.Span.Stop
			continue
		}
		parent.Append(n)
	}
}

func (b *builder) enter(gn gast.Node) (entry, gast.WalkStatus, error) {
	n := &Node{}
	if gn.Type() != gast.TypeInline && gn.Lines().Len() > 0 {
		lines := gn.Lines()
		n.Span = Span{lines.At(0).Start, lines.At(lines.Len() - 1).Stop}
	}
	switch g := gn.(type) {
	case *gast.Document:
		n.Kind = KindDocument
	case *gast.Paragraph, *gast.TextBlock:
		n.Kind = KindParagraph
	case *gast.Heading:
		n.Kind = KindHeading
		n.Level = g.Level
	case *gast.ThematicBreak:
		n.Kind = KindThematicBreak
	case *gast.Blockquote:
		n.Kind = KindBlockQuote
	case *gast.List:
		n.Kind = KindList
		n.Ordered = g.IsOrdered()
		n.Start = g.Start
		n.Tight = g.IsTight
		n.Delimiter = g.Marker
	case *gast.ListItem:
		n.Kind = KindItem
	case *gast.CodeBlock:
		n.Kind = KindCodeBlock
		n.Literal = b.lines(g.Lines())
	case *gast.FencedCodeBlock:
		n.Kind = KindCodeBlock
		n.Literal = b.lines(g.Lines())
		if g.Info != nil {
			n.Info = string(b.unescape(g.Info.Segment.Value(b.source)))
		}
		n.FenceChar, n.FenceLength = b.fence(g)
		return entry{node: n}, gast.WalkSkipChildren, nil
	case *gast.HTMLBlock:
		n.Kind = KindHTMLBlock
		n.Literal = b.lines(g.Lines())
		if g.HasClosure() {
			n.Literal += string(g.ClosureLine.Value(b.source))
		}
	case *gast.Text:
		return b.text(g), gast.WalkContinue, nil
	case *gast.String:
		n.Kind = KindText
		n.Literal = string(g.Value)
	case *gast.CodeSpan:
		n.Kind = KindCode
		n.Literal, n.FenceLength = b.codeSpan(g)
		return entry{node: n}, gast.WalkSkipChildren, nil
	case *gast.Emphasis:
		n.Kind = KindEmph
		if g.Level >= 2 {
			n.Kind = KindStrong
		}
	case *gast.Link:
		n.Kind = KindLink
		n.Destination = string(g.Destination)
		n.Title = string(g.Title)
	case *gast.Image:
		n.Kind = KindImage
		n.Destination = string(g.Destination)
		n.Title = string(g.Title)
	case *gast.AutoLink:
		n.Kind = KindLink
		n.Destination = string(g.URL(b.source))
		n.Append(NewText(string(g.Label(b.source))))
		return entry{node: n}, gast.WalkSkipChildren, nil
	case *gast.RawHTML:
		n.Kind = KindHTMLInline
		var buf bytes.Buffer
		for i := 0; i < g.Segments.Len(); i++ {
			seg := g.Segments.At(i)
			buf.Write(seg.Value(b.source))
		}
		n.Literal = buf.String()
	case *east.Table:
		n.Kind = KindTable
	case *east.TableHeader:
		n.Kind = KindTableHead
	case *east.TableRow:
		n.Kind = KindTableRow
	case *east.TableCell:
		n.Kind = KindTableCell
		n.Align = alignment(g.Alignment)
	case *east.Strikethrough:
		n.Kind = KindStrike
	case *east.TaskCheckBox:
		for i := len(b.stack) - 1; i >= 0; i-- {
			if item := b.stack[i].node; item != nil && item.Kind == KindItem {
				item.Task = true
				item.Checked = g.IsChecked
				break
			}
		}
		return entry{}, gast.WalkSkipChildren, nil
	default:
		tracer().Errorf("no Markdown AST kind for goldmark node %s", gn.Kind().String())
		return entry{}, gast.WalkStop, core.UnsupportedNodeKind(gn.Kind().String())
	}
	return entry{node: n}, gast.WalkContinue, nil
}

func (b *builder) text(g *gast.Text) entry {
	var e entry
	value := g.Segment.Value(b.source)
	if g.SoftLineBreak() || g.HardLineBreak() {
		value = bytes.TrimRight(value, " \t")
	}
	if g.IsRaw() {
		e.node = NewText(string(value))
	} else {
		e.node = NewText(string(b.unescape(value)))
	}
	e.node.Span = Span{g.Segment.Start, g.Segment.Stop}
	if e.node.Literal == "" {
		e.node = nil
	}
	if g.HardLineBreak() {
		e.trailer = NewNode(KindLineBreak)
	} else if g.SoftLineBreak() {
		e.trailer = NewNode(KindSoftBreak)
	}
	return e
}

func (b *builder) unescape(value []byte) []byte {
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}

func (b *builder) lines(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(b.source))
	}
	return buf.String()
}

// codeSpan concatenates the content of a code span, with line endings
// turned into spaces, and counts the backticks delimiting it.
func (b *builder) codeSpan(g *gast.CodeSpan) (string, int) {
	var buf bytes.Buffer
	start := -1
	for c := g.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gast.Text:
			if start < 0 {
				start = t.Segment.Start
			}
			v := t.Segment.Value(b.source)
			if bytes.HasSuffix(v, []byte("\n")) {
				buf.Write(v[:len(v)-1])
				buf.WriteByte(' ')
			} else {
				buf.Write(v)
			}
		case *gast.String:
			buf.Write(t.Value)
		}
	}
	i := start - 1
	if i >= 0 && b.source[i] == ' ' { // stripped padding space
		i--
	}
	ticks := 0
	for ; i >= 0 && b.source[i] == '`'; i-- {
		ticks++
	}
	if ticks == 0 {
		ticks = 1
	}
	return buf.String(), ticks
}

// fence finds the opening fence of a fenced code block in the source.
func (b *builder) fence(g *gast.FencedCodeBlock) (byte, int) {
	pos := -1
	if g.Info != nil {
		pos = g.Info.Segment.Start
	} else if g.Lines().Len() > 0 {
		pos = g.Lines().At(0).Start - 1 // line feed of the fence line
		if pos > 0 && b.source[pos-1] == '\r' {
			pos--
		}
	}
	if pos < 0 || pos > len(b.source) {
		return '`', 3
	}
	i := pos
	for i > 0 && b.source[i-1] != '\n' {
		i--
	}
	for i < len(b.source) && b.source[i] == ' ' {
		i++
	}
	if i >= len(b.source) || (b.source[i] != '`' && b.source[i] != '~') {
		return '`', 3
	}
	char, cnt := b.source[i], 0
	for i < len(b.source) && b.source[i] == char {
		cnt++
		i++
	}
	if cnt < 3 {
		return '`', 3
	}
	return char, cnt
}

// restructureTable regroups a table's children into a head, holding the
// header row, and a body holding all other rows.
func restructureTable(table *Node) {
	var head, body *Node
	for _, ch := range table.Children {
		switch ch.Kind {
		case KindTableHead:
			row := NewNode(KindTableRow, ch.Children...)
			head = NewNode(KindTableHead, row)
			head.Span = ch.Span
		case KindTableRow:
			if body == nil {
				body = NewNode(KindTableBody)
			}
			body.Append(ch)
		}
	}
	table.Children = nil
	if head != nil {
		table.Append(head)
	}
	if body != nil {
		table.Append(body)
	}
}

func alignment(a east.Alignment) Align {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	}
	return AlignNone
}

// PlainText concatenates the literals of all text and code nodes below n.
func PlainText(n *Node) string {
	var b strings.Builder
	Walk(n, func(x *Node) bool {
		switch x.Kind {
		case KindText, KindCode:
			b.WriteString(x.Literal)
		case KindSoftBreak, KindLineBreak:
			b.WriteByte(' ')
		}
		return true
	})
	return b.String()
}
