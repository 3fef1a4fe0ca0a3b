package tomark

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/tomark/dom"
	"github.com/npillmayer/tomark/engine/rules"
	"golang.org/x/net/html"
)

var (
	taskItem     = cascadia.MustCompile("li.task-list-item")
	checkedItem  = cascadia.MustCompile("li.checked")
	taskCheckbox = cascadia.MustCompile(`input[type="checkbox"]`)
	backtickRun  = regexp.MustCompile("`+")
)

// GFM is the rule set for GitHub-flavoured Markdown output. It extends
// Basic.
var GFM = rules.Factory(Basic, map[string]rules.Converter{
	"DEL, S":       convertStrikethrough,
	"PRE CODE":     convertFencedCode,
	"UL LI":        convertGFMItem,
	"OL LI":        convertGFMItem,
	"LI INPUT":     convertItemCheckbox,
	"LI P INPUT":   convertItemCheckbox,
	"TABLE":        convertTable,
	"TBODY, TFOOT": passSub,
	"TR TD, TR TH": convertTableCell,
	"TD BR, TH BR": convertCellBreak,
	"TR":           convertTableRow,
	"THEAD":        convertTableHead,
})

func convertStrikethrough(_ rules.Context, _ *html.Node, sub string) string {
	return "~~" + sub + "~~"
}

// convertFencedCode takes the info string from data-language, or from a
// "language-" class. The fence is made longer than any backtick run in the
// code.
func convertFencedCode(_ rules.Context, n *html.Node, sub string) string {
	lang := dom.AttrOr(n, "data-language", "")
	if lang == "" {
		for _, cls := range strings.Fields(dom.AttrOr(n, "class", "")) {
			if strings.HasPrefix(cls, "language-") {
				lang = strings.TrimPrefix(cls, "language-")
				break
			}
		}
	}
	fence := 3
	if cnt, err := strconv.Atoi(dom.AttrOr(n, "data-backticks", "")); err == nil && cnt > fence {
		fence = cnt
	}
	for _, run := range backtickRun.FindAllString(sub, -1) {
		if len(run) >= fence {
			fence = len(run) + 1
		}
	}
	ticks := strings.Repeat("`", fence)
	sub = lastReturn.ReplaceAllString(sub, "")
	sub = anyLineFeed.ReplaceAllString(sub, rules.LineFeedReplacement)
	return "\n\n" + ticks + lang + "\n" + sub + "\n" + ticks + "\n\n"
}

// isTaskItem is true for list items either classed as task items, or
// starting with a checkbox. checked reports the checkbox state.
func isTaskItem(li *html.Node) (task, checked bool) {
	if taskItem.Match(li) {
		return true, checkedItem.Match(li)
	}
	if box := leadingCheckbox(li); box != nil {
		return true, dom.HasAttr(box, "checked")
	}
	return false, false
}

// leadingCheckbox finds the checkbox a task item starts with. Items of
// loose lists wrap it in a paragraph.
func leadingCheckbox(li *html.Node) *html.Node {
	first := dom.FirstElementChild(li)
	if first != nil && dom.IsElement(first, "p") {
		first = dom.FirstElementChild(first)
	}
	if first != nil && taskCheckbox.Match(first) {
		return first
	}
	return nil
}

func convertGFMItem(ctx rules.Context, n *html.Node, sub string) string {
	if task, checked := isTaskItem(n); task {
		if checked {
			sub = "[x] " + sub
		} else {
			sub = "[ ] " + sub
		}
	}
	return Basic.Convert(ctx.Root, n, sub)
}

// convertItemCheckbox drops the checkbox of a task item, which is written
// as "[ ]" or "[x]" by the item. Other inputs stay HTML.
func convertItemCheckbox(_ rules.Context, n *html.Node, _ string) string {
	li := n.Parent
	if dom.IsElement(li, "p") {
		li = li.Parent
	}
	if leadingCheckbox(li) == n {
		return ""
	}
	return rules.SpaceControlled(dom.OuterHTMLWith(n, ""), n)
}
