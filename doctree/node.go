package doctree

import (
	"fmt"
	"reflect"
	"strings"
)

// Attrs holds the attributes of a node or mark.
type Attrs map[string]interface{}

// Node is a node of a document tree. Text nodes carry Text and no
// content; all other nodes carry Content.
type Node struct {
	Type    *NodeType
	Attrs   Attrs
	Content []*Node
	Text    string
	Marks   []Mark
}

// Name returns the name of the node's type.
func (n *Node) Name() string {
	if n == nil || n.Type == nil {
		return ""
	}
	return n.Type.Name
}

// Is is true if n is of the node type called name.
func (n *Node) Is(name string) bool {
	return n.Name() == name
}

// IsText is true for text nodes.
func (n *Node) IsText() bool {
	return n.Type != nil && n.Type.IsText
}

// IsInline is true for nodes of an inline type.
func (n *Node) IsInline() bool {
	return n.Type != nil && n.Type.Group == GroupInline
}

// ChildCount returns the number of content nodes.
func (n *Node) ChildCount() int {
	return len(n.Content)
}

// Attr returns attribute key, or nil.
func (n *Node) Attr(key string) interface{} {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs[key]
}

// AttrString returns attribute key as a string, or "".
func (n *Node) AttrString(key string) string {
	if s, ok := n.Attr(key).(string); ok {
		return s
	}
	return ""
}

// AttrInt returns attribute key as an integer, or dflt.
func (n *Node) AttrInt(key string, dflt int) int {
	if i, ok := n.Attr(key).(int); ok {
		return i
	}
	return dflt
}

// AttrBool returns attribute key as a boolean, or false.
func (n *Node) AttrBool(key string) bool {
	b, _ := n.Attr(key).(bool)
	return b
}

// TextContent concatenates the text of all text nodes below n.
func (n *Node) TextContent() string {
	var b strings.Builder
	Walk(n, func(x *Node) bool {
		if x.IsText() {
			b.WriteString(x.Text)
		}
		return true
	})
	return b.String()
}

// Walk visits n and its descendants in pre-order. Visiting stops if f
// returns false for a node; its content is skipped.
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
		for i := len(top.Content) - 1; i >= 0; i-- {
			stack = append(stack, top.Content[i])
		}
	}
}

// Equal compares two trees structurally: node types, attributes, text and
// marks.
func Equal(a, b *Node) bool {
	type pair struct{ a, b *Node }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Name() != p.b.Name() || p.a.Text != p.b.Text ||
			!sameAttrs(p.a.Attrs, p.b.Attrs) || !SameMarks(p.a.Marks, p.b.Marks) ||
			len(p.a.Content) != len(p.b.Content) {
			return false
		}
		for i := range p.a.Content {
			stack = append(stack, pair{p.a.Content[i], p.b.Content[i]})
		}
	}
	return true
}

func sameAttrs(a, b Attrs) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// String returns an indented dump of the tree below n, for debugging.
func (n *Node) String() string {
	var b strings.Builder
	depth := map[*Node]int{n: 0}
	Walk(n, func(x *Node) bool {
		b.WriteString(strings.Repeat("  ", depth[x]))
		b.WriteString(x.Name())
		if x.IsText() {
			fmt.Fprintf(&b, " %q", x.Text)
		}
		if len(x.Attrs) > 0 {
			fmt.Fprintf(&b, " %v", map[string]interface{}(x.Attrs))
		}
		for _, m := range x.Marks {
			fmt.Fprintf(&b, " +%s", m.Type)
		}
		b.WriteByte('\n')
		for _, ch := range x.Content {
			depth[ch] = depth[x] + 1
		}
		return true
	})
	return b.String()
}
