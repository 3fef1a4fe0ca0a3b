package mdast

import (
	"fmt"
	"strings"
)

// Kind is the kind of a Markdown AST node.
type Kind uint8

// The node kinds of a Markdown AST.
const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindThematicBreak
	KindBlockQuote
	KindList
	KindItem
	KindCodeBlock
	KindHTMLBlock
	KindTable
	KindTableHead
	KindTableBody
	KindTableRow
	KindTableCell
	KindDefinition
	KindText
	KindSoftBreak
	KindLineBreak
	KindEmph
	KindStrong
	KindStrike
	KindCode
	KindLink
	KindImage
	KindHTMLInline
	KindCount // number of kinds; not a kind itself
)

var kindNames = [KindCount]string{
	"Document", "Paragraph", "Heading", "ThematicBreak", "BlockQuote", "List",
	"Item", "CodeBlock", "HTMLBlock", "Table", "TableHead", "TableBody",
	"TableRow", "TableCell", "Definition", "Text", "SoftBreak", "LineBreak",
	"Emph", "Strong", "Strike", "Code", "Link", "Image", "HTMLInline",
}

func (k Kind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsBlock is true for block-level kinds.
func (k Kind) IsBlock() bool {
	return k <= KindDefinition
}

// Align is the alignment of a table column.
type Align uint8

// Column alignments.
const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

// Span is a byte range of the Markdown source a node has been read from.
type Span struct {
	Start, Stop int
}

// Node is a node of a Markdown AST. Which of the fields are meaningful
// depends on the kind of the node.
type Node struct {
	Kind     Kind
	Children []*Node
	Span     Span

	Literal string // Text, Code, CodeBlock, HTMLBlock, HTMLInline

	Level int // Heading: 1…6

	Ordered   bool // List
	Start     int  // List: first ordinal
	Tight     bool // List
	Delimiter byte // List: '-', '+', '*', '.' or ')'

	Task    bool // Item
	Checked bool // Item

	Info        string // CodeBlock: info string
	FenceChar   byte   // CodeBlock: 0 for indented code
	FenceLength int    // CodeBlock: fence length; Code: backtick count

	Destination string // Link, Image, Definition
	Title       string // Link, Image, Definition
	Label       string // Definition; Link and Image if not yet resolved

	Align Align // TableCell
}

// NewNode creates a node of the given kind with children.
func NewNode(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// NewText creates a text node.
func NewText(literal string) *Node {
	return &Node{Kind: KindText, Literal: literal}
}

// Append adds children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsReference is true for links and images which carry a reference label
// instead of a destination.
func (n *Node) IsReference() bool {
	return (n.Kind == KindLink || n.Kind == KindImage) && n.Label != "" && n.Destination == ""
}

// Walk visits n and its descendants in pre-order. Visiting stops if f
// returns false for a node; its children are skipped.
func Walk(n *Node, f func(*Node) bool) {
	if n == nil {
		return
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f(top) {
			continue
		}
		for i := len(top.Children) - 1; i >= 0; i-- {
			stack = append(stack, top.Children[i])
		}
	}
}

// String returns an indented dump of the tree below n, for debugging.
func (n *Node) String() string {
	var b strings.Builder
	depth := map[*Node]int{n: 0}
	Walk(n, func(x *Node) bool {
		b.WriteString(strings.Repeat("  ", depth[x]))
		b.WriteString(x.Kind.String())
		switch x.Kind {
		case KindText, KindCode, KindHTMLInline, KindHTMLBlock, KindCodeBlock:
			fmt.Fprintf(&b, " %q", x.Literal)
		case KindHeading:
			fmt.Fprintf(&b, " h%d", x.Level)
		case KindLink, KindImage, KindDefinition:
			fmt.Fprintf(&b, " %q → %q", x.Label, x.Destination)
		}
		b.WriteByte('\n')
		for _, ch := range x.Children {
			depth[ch] = depth[x] + 1
		}
		return true
	})
	return b.String()
}
