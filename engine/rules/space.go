package rules

import (
	"regexp"

	"github.com/npillmayer/tomark/dom"
	"golang.org/x/net/html"
)

var (
	leadingSpace  = regexp.MustCompile(`^ `)
	trailingSpace = regexp.MustCompile(`.+ $`)
)

// SpaceControlled re-attaches the single space which separated n from an
// inline neighbour (a text node or an inline element) in the source, and
// which got lost by trimming.
func SpaceControlled(content string, n *html.Node) string {
	lead, trail := "", ""
	if prev := n.PrevSibling; prev != nil && (prev.Type == html.TextNode || dom.IsInline(prev)) {
		if trailingSpace.MatchString(innerOrData(prev)) || leadingSpace.MatchString(innerOrData(n)) {
			lead = " "
		}
	}
	if next := n.NextSibling; next != nil && (next.Type == html.TextNode || dom.IsInline(next)) {
		if leadingSpace.MatchString(innerOrData(next)) || trailingSpace.MatchString(innerOrData(n)) {
			trail = " "
		}
	}
	return lead + content + trail
}

func innerOrData(n *html.Node) string {
	if n.Type == html.ElementNode {
		return dom.InnerHTML(n)
	}
	return n.Data
}
