package tomark

import (
	"regexp"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/tomark/dom"
	"github.com/npillmayer/tomark/engine/rules"
	"golang.org/x/net/html"
)

// ToMark converts an HTML fragment to Markdown. Conversion never fails;
// empty input results in empty output.
func ToMark(htmlText string, opts ...Option) string {
	if htmlText == "" {
		return ""
	}
	root, err := dom.Parse(htmlText)
	if err != nil {
		return ""
	}
	return ToMarkNode(root, opts...)
}

// ToMarkNode converts the children of root to Markdown. The nodes below
// root may be modified: adjacent text nodes will be merged.
func ToMarkNode(root *html.Node, opts ...Option) string {
	if root == nil {
		return ""
	}
	o := makeOptions(opts)
	raw := Render(root, o.rules())
	return Finalize(raw, o.gfm)
}

// Render produces the raw Markdown for the children of root, i.e. without
// final normalization.
func Render(root *html.Node, rs *rules.RuleSet) string {
	var md strings.Builder
	w := dom.NewWalker(root)
	for n := w.Advance(); n != nil; n = w.Advance() {
		md.WriteString(track(w, rs))
	}
	return md.String()
}

// frame holds a node waiting for its children to be converted.
type frame struct {
	node *html.Node
	left int // children not yet visited
	sub  strings.Builder
}

func newFrame(n *html.Node) *frame {
	return &frame{node: n, left: dom.ChildCount(n)}
}

// track converts the subtree of the walker's current node. It advances
// the walker through the subtree, leaving it positioned at the subtree's
// last node. Nesting is tracked on an explicit stack, so document depth
// does not consume call stack.
func track(w *dom.Walker, rs *rules.RuleSet) string {
	stack := arraystack.New()
	stack.Push(newFrame(w.Current()))
	for {
		top, _ := stack.Peek()
		f := top.(*frame)
		if f.left > 0 {
			f.left--
			w.Advance()
			if n := w.Current(); n != nil {
				stack.Push(newFrame(n))
				continue
			}
			tracer().Errorf("walker exhausted inside <%s>", f.node.Data)
			f.left = 0
		}
		stack.Pop()
		md := rs.Convert(w.Root(), f.node, f.sub.String())
		if stack.Empty() {
			return md
		}
		parent, _ := stack.Peek()
		parent.(*frame).sub.WriteString(md)
	}
}

var (
	unusedBRs         = regexp.MustCompile(`[ \x{A0}]+\n\n`)
	multipleBRs       = regexp.MustCompile(`([ \x{A0}]+\n){2,}`)
	returnsAndSpaces  = regexp.MustCompile(`[ \x{A0}\n]+`)
	firstLastReturns  = regexp.MustCompile(`^\n+|[\s\x{A0}\n]+$`)
	gfmTrailingSpaces = regexp.MustCompile(`[ \x{A0}]{2,}\n`)
)

// Finalize normalizes raw Markdown:
//
//	1. trailing spaces before a blank line are removed
//	2. several consecutive lines consisting of spaces become one blank line
//	3. any whitespace run spanning three or more line feeds becomes a
//	   single blank line
//	4. line feeds at the start and whitespace at the end are removed
//	5. protected line feeds are restored
//	6. for GFM, hard-break trailing spaces before a line feed are removed
func Finalize(md string, gfm bool) string {
	md = unusedBRs.ReplaceAllString(md, "\n")
	md = multipleBRs.ReplaceAllString(md, "\n\n")
	md = returnsAndSpaces.ReplaceAllStringFunc(md, func(run string) string {
		if strings.Count(run, "\n") >= 3 {
			return "\n\n"
		}
		return run
	})
	md = firstLastReturns.ReplaceAllString(md, "")
	md = strings.ReplaceAll(md, rules.LineFeedReplacement, "\n")
	if gfm {
		md = gfmTrailingSpaces.ReplaceAllString(md, "\n")
	}
	return md
}
