package dom

import "golang.org/x/net/html"

// Walker iterates over the nodes below a root in pre-order. The root
// itself is never returned by Advance, and nothing outside the root's
// subtree is ever visited.
type Walker struct {
	root, current *html.Node
}

// NewWalker creates a walker positioned at root. The root's text children
// are merged immediately.
func NewWalker(root *html.Node) *Walker {
	MergeTextChildren(root)
	return &Walker{root: root, current: root}
}

// Root returns the root the walker has been created for.
func (w *Walker) Root() *html.Node {
	return w.root
}

// Current returns the node the walker is positioned at, after merging its
// adjacent text children. Current returns nil once the walk is exhausted.
func (w *Walker) Current() *html.Node {
	MergeTextChildren(w.current)
	return w.current
}

// Advance moves to the next node in pre-order and returns it, or nil if
// the walk is exhausted. The candidate is the current node's first child,
// else its next sibling, else the next sibling of the nearest ancestor
// below the root which has one.
func (w *Walker) Advance() *html.Node {
	cur := w.current
	if cur == nil {
		return nil
	}
	next := cur.FirstChild
	if next == nil && cur != w.root {
		next = cur.NextSibling
		for next == nil && cur.Parent != nil && cur.Parent != w.root {
			cur = cur.Parent
			next = cur.NextSibling
		}
	}
	w.current = next
	return next
}

// NodeText returns the data of a text node or the text content of any
// other node.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	return TextContent(n)
}
