package dom

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node type names used in place of tag names for non-element nodes.
const (
	TextNodeName    = "TEXT_NODE"
	CommentNodeName = "COMMENT_NODE"
)

var (
	outerWhitespace   = regexp.MustCompile(`^[\s\r\n\t]+|[\s\r\n\t]+$`)
	newlinesInBetween = regexp.MustCompile(`>[\r\n\t]+<`)
	spacesInBetween   = regexp.MustCompile(`>[ ]+<`)
)

// PreProcess strips leading and trailing whitespace and removes formatting
// whitespace between tags. Runs of spaces between two tags shrink to a
// single space, because they may separate inline content.
func PreProcess(s string) string {
	s = outerWhitespace.ReplaceAllString(s, "")
	s = newlinesInBetween.ReplaceAllString(s, "><")
	s = spacesInBetween.ReplaceAllString(s, "> <")
	return s
}

// NewRoot creates a detached synthetic root element.
func NewRoot() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
}

// Parse pre-processes s, parses it as the content of an HTML body and
// returns a synthetic root holding the parsed fragment.
func Parse(s string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(PreProcess(s)), context)
	if err != nil {
		tracer().Errorf("unable to parse HTML fragment: %v", err)
		return nil, err
	}
	root := NewRoot()
	for _, n := range nodes {
		root.AppendChild(n)
	}
	tracer().Debugf("parsed HTML fragment into %d top-level nodes", len(nodes))
	return root, nil
}

// Name returns the name rules select a node by: the upper-case tag name
// for elements, TEXT_NODE or COMMENT_NODE otherwise.
func Name(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return TextNodeName
	case html.CommentNode:
		return CommentNodeName
	case html.ElementNode:
		return strings.ToUpper(n.Data)
	}
	return ""
}

// IsElement is true if n is an element with the given (case-insensitive)
// tag name. With an empty tag, any element matches.
func IsElement(n *html.Node, tag string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return tag == "" || strings.EqualFold(n.Data, tag)
}

// Attr returns the value of attribute key of n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the value of attribute key of n, or dflt if absent.
func AttrOr(n *html.Node, key, dflt string) string {
	if v, ok := Attr(n, key); ok {
		return v
	}
	return dflt
}

// HasAttr is true if n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	cnt := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cnt++
	}
	return cnt
}

// FirstElementChild returns the first child of n which is an element.
func FirstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

var inlineTags = map[string]bool{
	"S": true, "DEL": true, "B": true, "I": true, "EM": true, "STRONG": true,
	"A": true, "IMG": true, "CODE": true,
	"U": true, "SUB": true, "SUP": true, "KBD": true, "MARK": true,
}

// IsInline is true for the inline elements whose neighbouring whitespace
// has to be kept when converting.
func IsInline(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && inlineTags[Name(n)]
}

// TextContent concatenates the data of all text nodes below n, in
// document order. Comments are skipped.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf bytes.Buffer
	stack := []*html.Node{}
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, c)
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch top.Type {
		case html.TextNode:
			buf.WriteString(top.Data)
		case html.CommentNode:
		default:
			for c := top.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, c)
			}
		}
	}
	return buf.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			tracer().Errorf("cannot render <%s> child: %v", n.Data, err)
		}
	}
	return buf.String()
}

// OuterHTMLWith renders n with inner as its (already converted) content.
// Attributes named in skip are left out. Void elements render without
// content. Text is escaped, comments are rendered as comments.
func OuterHTMLWith(n *html.Node, inner string, skip ...string) string {
	switch n.Type {
	case html.TextNode:
		return html.EscapeString(n.Data)
	case html.CommentNode:
		return "<!--" + n.Data + "-->"
	case html.ElementNode:
	default:
		return inner
	}
	shell := &html.Node{
		Type:      html.ElementNode,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
	}
	for _, a := range n.Attr {
		if !contains(skip, a.Key) {
			shell.Attr = append(shell.Attr, a)
		}
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, shell); err != nil {
		tracer().Errorf("cannot render <%s>: %v", n.Data, err)
		return inner
	}
	rendered := buf.String()
	closing := "</" + n.Data + ">"
	if !strings.HasSuffix(rendered, closing) { // void element
		return rendered
	}
	return strings.TrimSuffix(rendered, closing) + inner + closing
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// MergeTextChildren coalesces runs of adjacent text children of n into
// their first node.
func MergeTextChildren(n *html.Node) {
	if n == nil {
		return
	}
	c := n.FirstChild
	for c != nil && c.NextSibling != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		c = next
	}
}
