package tomark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/tomark/dom"
	"github.com/npillmayer/tomark/dom/xpathadapter"
	"github.com/npillmayer/tomark/engine/rules"
	"golang.org/x/net/html"
)

var (
	lastReturn        = regexp.MustCompile(`\n$`)
	brAndReturn       = regexp.MustCompile(`[ \x{A0}]+\n\n`)
	multipleEmptyLine = regexp.MustCompile(`([ \x{A0}]+\n){2,}`)
	anyLineFeed       = regexp.MustCompile(`\r\n|\r|\n`)
	precedingItems    = xpath.MustCompile("count(preceding-sibling::li)")
)

// Basic is the rule set for CommonMark output.
var Basic = rules.NewRuleSet(map[string]rules.Converter{
	"TEXT_NODE":              convertText,
	"CODE TEXT_NODE":         convertCodeText,
	"EM, I":                  convertEmphasis,
	"STRONG, B":              convertStrong,
	"A":                      convertLink,
	"IMG":                    convertImage,
	"BR":                     convertBreak,
	"CODE":                   convertCode,
	"P":                      convertParagraph,
	"BLOCKQUOTE P":           convertQuoteParagraph,
	"LI P":                   convertItemParagraph,
	"H1, H2, H3, H4, H5, H6": convertHeading,

	"LI H1, LI H2, LI H3, LI H4, LI H5, LI H6": convertItemHeading,

	"UL, OL":       convertList,
	"LI OL, LI UL": convertNestedList,
	"UL LI":        convertBulletItem,
	"OL LI":        convertOrderedItem,
	"HR":           convertRule,
	"BLOCKQUOTE":   convertBlockQuote,
	"PRE":          passSub,
	"PRE CODE":     convertIndentedCode,
})

func passSub(_ rules.Context, _ *html.Node, sub string) string {
	return sub
}

func convertText(_ rules.Context, n *html.Node, _ string) string {
	return rules.SpaceControlled(rules.EscapeText(n.Data), n)
}

func convertCodeText(_ rules.Context, n *html.Node, _ string) string {
	return n.Data
}

func convertEmphasis(_ rules.Context, _ *html.Node, sub string) string {
	if rules.IsEmptyText(sub) {
		return ""
	}
	return "*" + sub + "*"
}

func convertStrong(_ rules.Context, _ *html.Node, sub string) string {
	if rules.IsEmptyText(sub) {
		return ""
	}
	return "**" + sub + "**"
}

func convertLink(_ rules.Context, n *html.Node, sub string) string {
	href, _ := dom.Attr(n, "href")
	if rules.IsEmptyText(sub) || href == "" {
		return sub
	}
	title := ""
	if t, ok := dom.Attr(n, "title"); ok && t != "" {
		title = ` "` + strings.ReplaceAll(t, `"`, `\"`) + `"`
	}
	return "[" + rules.EscapeTextForLink(sub) + "](" + href + title + ")"
}

func convertImage(_ rules.Context, n *html.Node, _ string) string {
	src, _ := dom.Attr(n, "src")
	if src == "" {
		return ""
	}
	alt, _ := dom.Attr(n, "alt")
	return "![" + rules.EscapeTextForLink(alt) + "](" + src + ")"
}

func convertBreak(rules.Context, *html.Node, string) string {
	return "  \n"
}

func convertCode(_ rules.Context, n *html.Node, sub string) string {
	ticks := "`"
	if cnt, err := strconv.Atoi(dom.AttrOr(n, "data-backticks", "")); err == nil && cnt > 0 {
		ticks = strings.Repeat("`", cnt)
	}
	return ticks + sub + ticks
}

func convertParagraph(_ rules.Context, _ *html.Node, sub string) string {
	sub = multipleEmptyLine.ReplaceAllString(sub, "  \n")
	if rules.IsEmptyText(sub) {
		return ""
	}
	return "\n\n" + sub + "\n\n"
}

// Paragraphs inside a quote are separated by a blank line, which is
// prefixed like every other line of the quote.
func convertQuoteParagraph(_ rules.Context, _ *html.Node, sub string) string {
	if rules.IsEmptyText(sub) {
		return ""
	}
	return sub + "\n\n"
}

// Paragraphs following other content of a list item are indented to
// continue the item.
func convertItemParagraph(_ rules.Context, n *html.Node, sub string) string {
	if rules.IsEmptyText(sub) {
		return ""
	}
	if n.PrevSibling != nil {
		return "\n\n" + prefixLines(sub, "    ")
	}
	return sub
}

func headingLevel(n *html.Node) int {
	level, err := strconv.Atoi(strings.TrimPrefix(dom.Name(n), "H"))
	if err != nil || level < 1 || level > 6 {
		return 1
	}
	return level
}

func convertHeading(_ rules.Context, n *html.Node, sub string) string {
	return "\n\n" + strings.Repeat("#", headingLevel(n)) + " " + sub + "\n\n"
}

func convertItemHeading(_ rules.Context, n *html.Node, sub string) string {
	return strings.Repeat("#", headingLevel(n)) + " " + sub
}

func convertList(_ rules.Context, _ *html.Node, sub string) string {
	return "\n\n" + sub + "\n\n"
}

func convertNestedList(_ rules.Context, _ *html.Node, sub string) string {
	sub = brAndReturn.ReplaceAllString(sub, "\n")
	sub = lastReturn.ReplaceAllString(sub, "")
	return "\n" + prefixLines(sub, "    ")
}

func startsWithParagraph(li *html.Node) bool {
	return li.FirstChild != nil && dom.IsElement(li.FirstChild, "p")
}

func convertBulletItem(_ rules.Context, n *html.Node, sub string) string {
	sub = multipleEmptyLine.ReplaceAllString(sub, "  \n")
	res := ""
	if startsWithParagraph(n) {
		res = "\n"
	}
	return res + "* " + sub + "\n"
}

func convertOrderedItem(ctx rules.Context, n *html.Node, sub string) string {
	start := 1
	if s, err := strconv.Atoi(dom.AttrOr(n.Parent, "start", "")); err == nil {
		start = s
	}
	ordinal := start + xpathadapter.Count(precedingItems, ctx.Root, n)
	sub = multipleEmptyLine.ReplaceAllString(sub, "  \n")
	res := ""
	if startsWithParagraph(n) {
		res = "\n"
	}
	return res + fmt.Sprintf("%d. %s\n", ordinal, sub)
}

func convertRule(rules.Context, *html.Node, string) string {
	return "\n\n- - -\n\n"
}

func convertBlockQuote(_ rules.Context, _ *html.Node, sub string) string {
	sub = multipleEmptyLine.ReplaceAllString(sub, "\n\n")
	return "\n\n" + prefixLines(rules.Trim(sub), "> ") + "\n\n"
}

// Line feeds inside code are protected from final whitespace
// normalization, which would otherwise collapse blank lines in the code.
func convertIndentedCode(_ rules.Context, _ *html.Node, sub string) string {
	sub = lastReturn.ReplaceAllString(sub, "")
	code := prefixLines(anyLineFeed.ReplaceAllString(sub, "\n"), "    ")
	return "\n\n" + strings.ReplaceAll(code, "\n", rules.LineFeedReplacement) + "\n\n"
}

// prefixLines puts prefix in front of every line of s, including an empty
// last line.
func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
