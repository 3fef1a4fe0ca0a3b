package tomark

import (
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/tomark/dom"
	"github.com/npillmayer/tomark/engine/rules"
	"golang.org/x/net/html"
)

var headerCells = cascadia.MustCompile("tr:first-of-type > th, tr:first-of-type > td")

func convertTable(_ rules.Context, _ *html.Node, sub string) string {
	return "\n\n" + sub + "\n\n"
}

func convertTableCell(_ rules.Context, _ *html.Node, sub string) string {
	return " " + anyLineFeed.ReplaceAllString(sub, "") + " |"
}

func convertCellBreak(rules.Context, *html.Node, string) string {
	return "<br>"
}

func convertTableRow(_ rules.Context, _ *html.Node, sub string) string {
	return "|" + sub + "\n"
}

// convertTableHead appends the delimiter row to the header row. Its cells
// reflect the alignment of the header cells.
func convertTableHead(_ rules.Context, n *html.Node, sub string) string {
	if sub == "" {
		return ""
	}
	var delim strings.Builder
	for _, th := range headerCells.MatchAll(n) {
		delim.WriteString(" " + delimiterCell(th) + " |")
	}
	return sub + "|" + delim.String() + "\n"
}

func delimiterCell(th *html.Node) string {
	align := cellAlignment(th)
	width := utf8.RuneCountInString(dom.TextContent(th))
	switch align {
	case "left", "right":
		width--
	case "center":
		width -= 2
	}
	if width < 3 {
		width = 3
	}
	dashes := strings.Repeat("-", width)
	switch align {
	case "left":
		return ":" + dashes
	case "right":
		return dashes + ":"
	case "center":
		return ":" + dashes + ":"
	}
	return dashes
}

// cellAlignment reads the align attribute of a cell, falling back to a
// text-align declaration of its style attribute.
func cellAlignment(cell *html.Node) string {
	if align, ok := dom.Attr(cell, "align"); ok {
		return strings.ToLower(strings.TrimSpace(align))
	}
	style, ok := dom.Attr(cell, "style")
	if !ok {
		return ""
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		tracer().Debugf("cannot parse cell style %q: %v", style, err)
		return ""
	}
	align := ""
	for _, d := range decls {
		if strings.EqualFold(d.Property, "text-align") {
			align = strings.ToLower(strings.TrimSpace(d.Value))
		}
	}
	return align
}
