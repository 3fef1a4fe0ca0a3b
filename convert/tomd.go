package convert

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/tomark/core"
	"github.com/npillmayer/tomark/doctree"
	"github.com/npillmayer/tomark/engine/rules"
)

// mdBlock is a block node being serialized. parts holds the Markdown of
// the node's block children, in order.
type mdBlock struct {
	node     *doctree.Node
	parent   *doctree.Node
	index    int // position of node in parent's content
	next     int
	parts    []string
	children []*doctree.Node // the block children parts are made from
}

// mdHandler serializes a block node, its block children already
// serialized.
type mdHandler func(b *mdBlock) (string, error)

// ToMarkdown serializes document trees to Markdown text.
type ToMarkdown struct {
	handlers map[string]mdHandler
}

// NewToMarkdown creates a serializer for documents of schema
// doctree.Basic.
func NewToMarkdown() *ToMarkdown {
	return &ToMarkdown{handlers: map[string]mdHandler{
		doctree.NodeDoc:           mdContainer,
		doctree.NodeParagraph:     mdParagraph,
		doctree.NodeHeading:       mdHeading,
		doctree.NodeCodeBlock:     mdCodeBlock,
		doctree.NodeBulletList:    mdBulletList,
		doctree.NodeOrderedList:   mdOrderedList,
		doctree.NodeListItem:      mdListItem,
		doctree.NodeBlockQuote:    mdBlockQuote,
		doctree.NodeThematicBreak: mdThematicBreak,
		doctree.NodeHTMLBlock:     mdHTMLBlock,
		doctree.NodeTable:         mdTable,
		doctree.NodeTableHead:     mdTableHead,
		doctree.NodeTableBody:     mdTableBody,
		doctree.NodeTableRow:      mdTableRow,
		doctree.NodeTableHeadCell: mdTableCell,
		doctree.NodeTableBodyCell: mdTableCell,
	}}
}

// Convert serializes the tree below doc. Empty paragraphs produce no
// output. If the tree contains a node of a type without serialization, an
// error wrapping core.ErrUnsupportedNodeKind is returned.
func (m *ToMarkdown) Convert(doc *doctree.Node) (string, error) {
	if doc == nil {
		return "", nil
	}
	var result string
	stack := arraystack.New()
	stack.Push(&mdBlock{node: doc})
	for !stack.Empty() {
		top, _ := stack.Peek()
		b := top.(*mdBlock)
		if b.next < len(b.node.Content) && b.node.Type != nil && !b.node.Type.Textblock {
			ch := b.node.Content[b.next]
			b.next++
			if !ch.IsInline() {
				stack.Push(&mdBlock{node: ch, parent: b.node, index: b.next - 1})
			}
			continue
		}
		stack.Pop()
		h, ok := m.handlers[b.node.Name()]
		if !ok {
			tracer().Errorf("no Markdown serialization for node type %q", b.node.Name())
			return "", core.UnsupportedNodeKind(b.node.Name())
		}
		md, err := h(b)
		if err != nil {
			return "", err
		}
		if parent, ok := stack.Peek(); ok {
			p := parent.(*mdBlock)
			p.parts = append(p.parts, md)
			p.children = append(p.children, b.node)
		} else {
			result = md
		}
	}
	return result, nil
}

// --- Blocks ----------------------------------------------------------------

// mdContainer separates the non-empty block children of a document or
// block quote by blank lines.
func mdContainer(b *mdBlock) (string, error) {
	return joinBlocks(b, false), nil
}

func joinBlocks(b *mdBlock, tight bool) string {
	var out strings.Builder
	for i, part := range b.parts {
		if part == "" {
			continue
		}
		if out.Len() > 0 {
			if tight && interruptsParagraph(b.children[i]) {
				out.WriteString("\n")
			} else {
				out.WriteString("\n\n")
			}
		}
		out.WriteString(part)
	}
	return out.String()
}

// interruptsParagraph is true for lists which may start directly below a
// paragraph.
func interruptsParagraph(n *doctree.Node) bool {
	switch n.Name() {
	case doctree.NodeBulletList:
		return true
	case doctree.NodeOrderedList:
		return n.AttrInt("order", 1) == 1
	}
	return false
}

func mdParagraph(b *mdBlock) (string, error) {
	return writeInline(b.node.Content, inlineMode{breakAs: "\n"})
}

func mdHeading(b *mdBlock) (string, error) {
	level := b.node.AttrInt("level", 1)
	if level < 1 {
		level = 1
	} else if level > 6 {
		level = 6
	}
	text, err := writeInline(b.node.Content, inlineMode{breakAs: "<br>"})
	if err != nil || text == "" {
		return strings.Repeat("#", level), err
	}
	return strings.Repeat("#", level) + " " + text, nil
}

func mdThematicBreak(b *mdBlock) (string, error) {
	return "***", nil
}

func mdHTMLBlock(b *mdBlock) (string, error) {
	return b.node.TextContent(), nil
}

// mdCodeBlock writes a fenced code block, or an indented one for code
// blocks without fence and language.
func mdCodeBlock(b *mdBlock) (string, error) {
	code := b.node.TextContent()
	lang := b.node.AttrString("language")
	char := b.node.AttrString("fenceChar")
	if char == "" && lang == "" && strings.TrimSpace(code) != "" {
		return prefixLines(code, "    ", "    ", false), nil
	}
	if char != "~" {
		char = "`"
	}
	n := b.node.AttrInt("fence", 3)
	if run := longestRun(code, char[0]) + 1; run > n {
		n = run
	} else if n < 3 {
		n = 3
	}
	fence := strings.Repeat(char, n)
	if code == "" {
		return fence + lang + "\n" + fence, nil
	}
	return fence + lang + "\n" + code + "\n" + fence, nil
}

func mdBlockQuote(b *mdBlock) (string, error) {
	body := joinBlocks(b, false)
	if body == "" {
		return ">", nil
	}
	return prefixLines(body, "> ", "> ", true), nil
}

// mdListItem joins the blocks of a list item. The list writes the marker.
func mdListItem(b *mdBlock) (string, error) {
	body := joinBlocks(b, true)
	if b.node.AttrBool("task") {
		box := "[ ]"
		if b.node.AttrBool("checked") {
			box = "[x]"
		}
		if body == "" {
			return box, nil
		}
		return box + " " + body, nil
	}
	return body, nil
}

// mdBulletList writes a bullet list. Adjacent lists of the same type would
// merge when read back, so they alternate their bullets.
func mdBulletList(b *mdBlock) (string, error) {
	bullet := "- "
	if precedingLists(b)%2 == 1 {
		bullet = "* "
	}
	items := make([]string, len(b.parts))
	for i, part := range b.parts {
		items[i] = listEntry(bullet, part)
	}
	return strings.Join(items, "\n"), nil
}

// mdOrderedList writes an ordered list, alternating delimiters as
// mdBulletList does.
func mdOrderedList(b *mdBlock) (string, error) {
	delim := '.'
	if precedingLists(b)%2 == 1 {
		delim = ')'
	}
	start := b.node.AttrInt("order", 1)
	items := make([]string, len(b.parts))
	for i, part := range b.parts {
		items[i] = listEntry(fmt.Sprintf("%d%c ", start+i, delim), part)
	}
	return strings.Join(items, "\n"), nil
}

// precedingLists counts the lists of the same type directly before b,
// ignoring empty paragraphs in between.
func precedingLists(b *mdBlock) int {
	if b.parent == nil {
		return 0
	}
	cnt := 0
	for i := b.index - 1; i >= 0; i-- {
		sibling := b.parent.Content[i]
		if sibling.Is(doctree.NodeParagraph) && sibling.ChildCount() == 0 {
			continue
		}
		if !sibling.Is(b.node.Name()) {
			break
		}
		cnt++
	}
	return cnt
}

// listEntry prefixes an item with its marker and indents continuation
// lines to the width of the marker.
func listEntry(marker, body string) string {
	if body == "" {
		return strings.TrimRight(marker, " ")
	}
	return prefixLines(body, marker, strings.Repeat(" ", len(marker)), false)
}

// prefixLines prefixes the first line of text with first and all other
// lines with rest. Empty lines get a prefix only if prefixEmpty is set.
func prefixLines(text, first, rest string, prefixEmpty bool) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		p := rest
		if i == 0 {
			p = first
		}
		if line == "" && i > 0 {
			if prefixEmpty {
				lines[i] = strings.TrimRight(p, " ")
			}
			continue
		}
		lines[i] = p + line
	}
	return strings.Join(lines, "\n")
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// --- Tables ----------------------------------------------------------------

func mdTableCell(b *mdBlock) (string, error) {
	return writeInline(b.node.Content, inlineMode{breakAs: "<br>", cell: true})
}

func mdTableRow(b *mdBlock) (string, error) {
	return tableRow(b.parts), nil
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// mdTableHead writes the header row followed by the delimiter row.
func mdTableHead(b *mdBlock) (string, error) {
	if len(b.parts) == 0 {
		return "", nil
	}
	return b.parts[0] + "\n" + delimiterRow(b.node.Content[0]), nil
}

func delimiterRow(row *doctree.Node) string {
	cells := make([]string, len(row.Content))
	for i, cell := range row.Content {
		switch cell.AttrString("align") {
		case "left":
			cells[i] = ":---"
		case "center":
			cells[i] = ":---:"
		case "right":
			cells[i] = "---:"
		default:
			cells[i] = "---"
		}
	}
	return tableRow(cells)
}

func mdTableBody(b *mdBlock) (string, error) {
	return strings.Join(b.parts, "\n"), nil
}

// mdTable writes head and body. A table without head gets an empty
// header row, as GFM tables require one.
func mdTable(b *mdBlock) (string, error) {
	if len(b.children) > 0 && !b.children[0].Is(doctree.NodeTableHead) {
		if row := firstRow(b.node); row != nil {
			head := tableRow(make([]string, len(row.Content))) + "\n" + delimiterRow(row)
			return strings.Join(append([]string{head}, b.parts...), "\n"), nil
		}
	}
	return strings.Join(b.parts, "\n"), nil
}

func firstRow(table *doctree.Node) *doctree.Node {
	var row *doctree.Node
	doctree.Walk(table, func(n *doctree.Node) bool {
		if row == nil && n.Is(doctree.NodeTableRow) {
			row = n
		}
		return row == nil
	})
	return row
}

// --- Inline content --------------------------------------------------------

type inlineMode struct {
	breakAs string // how line breaks are written
	cell    bool   // inside a table cell
}

// inlineWriter writes inline content. Marks are opened and closed along a
// stack, outermost first; the code mark is not on the stack, code spans
// are written as a whole.
type inlineWriter struct {
	out     strings.Builder
	open    []doctree.Mark
	pending string // whitespace to write after closing delimiters
	prev    *doctree.Node
	mode    inlineMode
}

func writeInline(nodes []*doctree.Node, mode inlineMode) (string, error) {
	w := &inlineWriter{mode: mode}
	nodes = coalesce(nodes)
	for i, n := range nodes {
		if err := w.node(n, nodes[i+1:]); err != nil {
			return "", err
		}
		w.prev = n
	}
	w.sync(nil, 0, "")
	return w.out.String(), nil
}

// coalesce merges adjacent text nodes with equal marks. Texts of a link
// arrive merged, so equal neighbours with a link mark are separate links
// and stay apart.
func coalesce(nodes []*doctree.Node) []*doctree.Node {
	result := make([]*doctree.Node, 0, len(nodes))
	for _, n := range nodes {
		if last := len(result) - 1; last >= 0 && n.IsText() && result[last].IsText() &&
			doctree.SameMarks(n.Marks, result[last].Marks) && !doctree.HasMark(n.Marks, doctree.MarkLink) {
			merged := *result[last]
			merged.Text += n.Text
			result[last] = &merged
			continue
		}
		result = append(result, n)
	}
	return result
}

func (w *inlineWriter) node(n *doctree.Node, rest []*doctree.Node) error {
	marks, kept := w.order(n, rest)
	switch {
	case n.IsText():
		if doctree.HasMark(n.Marks, doctree.MarkCode) {
			w.sync(marks, kept, "")
			w.out.WriteString(codeSpan(n.Text, w.mode.cell))
			return nil
		}
		lead, body, trail := splitSpace(n.Text)
		if body == "" {
			w.pending += n.Text
			return nil
		}
		w.sync(marks, kept, lead)
		w.out.WriteString(w.escape(body))
		w.pending = trail
	case n.Is(doctree.NodeLineBreak), n.Is(doctree.NodeHardBreak):
		w.sync(marks, kept, "")
		if w.mode.breakAs != "\n" {
			w.out.WriteString(w.mode.breakAs)
		} else if n.Is(doctree.NodeHardBreak) {
			w.out.WriteString("\\\n")
		} else {
			w.out.WriteString("\n")
		}
	case n.Is(doctree.NodeImage):
		w.sync(marks, kept, "")
		w.out.WriteString("![")
		w.out.WriteString(escapeBrackets(rules.EscapeMarkdown(n.AttrString("alt"))))
		w.out.WriteString("](")
		w.out.WriteString(linkTarget(n.AttrString("src"), n.AttrString("title")))
		w.out.WriteString(")")
	case n.Is(doctree.NodeHTMLInline):
		w.sync(marks, kept, "")
		w.out.WriteString(n.AttrString("html"))
	default:
		tracer().Errorf("no Markdown serialization for inline node type %q", n.Name())
		return core.UnsupportedNodeKind(n.Name())
	}
	return nil
}

// sync keeps the first kept open marks and closes the others. It writes
// pending whitespace and lead, then opens marks[kept:].
func (w *inlineWriter) sync(marks []doctree.Mark, kept int, lead string) {
	k := kept
	for i := len(w.open) - 1; i >= k; i-- {
		w.out.WriteString(closer(w.open[i]))
	}
	w.open = w.open[:k]
	if marks == nil { // end of content
		w.pending = ""
		return
	}
	if !w.atLineStart() {
		w.out.WriteString(w.pending)
		w.out.WriteString(lead)
	}
	w.pending = ""
	for _, m := range marks[k:] {
		w.out.WriteString(opener(m))
		w.open = append(w.open, m)
	}
}

func (w *inlineWriter) atLineStart() bool {
	s := w.out.String()
	return s == "" || strings.HasSuffix(s, "\n")
}

func (w *inlineWriter) escape(text string) string {
	text = entityLike.ReplaceAllString(rules.EscapeMarkdown(text), `\&$1`)
	for _, m := range w.open {
		if m.Type == doctree.MarkLink {
			return escapeBrackets(text)
		}
	}
	return text
}

// stackMarks returns marks without the code mark, ordered by rank.
func stackMarks(marks []doctree.Mark) []doctree.Mark {
	result := make([]doctree.Mark, 0, len(marks))
	for _, m := range marks {
		if m.Type != doctree.MarkCode {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Rank() < result[j].Rank()
	})
	return result
}

// order arranges the stack marks of n for opening, and tells how many of
// them are open already. Marks already open stay
// in front, in the order they were opened, as long as n carries all of
// them. The others follow, those reaching further into rest first, then by
// rank. A link is not continued into a text with exactly the marks of the
// text before it: that is a link of its own.
func (w *inlineWriter) order(n *doctree.Node, rest []*doctree.Node) ([]doctree.Mark, int) {
	marks := stackMarks(n.Marks)
	separate := n.IsText() && w.prev != nil && w.prev.IsText() &&
		doctree.SameMarks(n.Marks, w.prev.Marks)
	result := make([]doctree.Mark, 0, len(marks))
	for _, m := range w.open {
		if !containsMark(marks, m) || (separate && m.Type == doctree.MarkLink) {
			break
		}
		result = append(result, m)
	}
	fresh := make([]doctree.Mark, 0, len(marks))
	for _, m := range marks {
		if !containsMark(result, m) {
			fresh = append(fresh, m)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return reach(fresh[i], rest) > reach(fresh[j], rest)
	})
	return append(result, fresh...), len(result)
}

// reach counts the nodes at the start of rest carrying m.
func reach(m doctree.Mark, rest []*doctree.Node) int {
	cnt := 0
	for _, n := range rest {
		if !containsMark(n.Marks, m) {
			break
		}
		cnt++
	}
	return cnt
}

func containsMark(marks []doctree.Mark, m doctree.Mark) bool {
	for _, x := range marks {
		if x.Eq(m) {
			return true
		}
	}
	return false
}

func opener(m doctree.Mark) string {
	switch m.Type {
	case doctree.MarkLink:
		return "["
	case doctree.MarkStrong:
		return "**"
	case doctree.MarkEmph:
		return "*"
	case doctree.MarkStrike:
		return "~~"
	}
	return ""
}

func closer(m doctree.Mark) string {
	if m.Type == doctree.MarkLink {
		href, _ := m.Attrs["href"].(string)
		title, _ := m.Attrs["title"].(string)
		return "](" + linkTarget(href, title) + ")"
	}
	return opener(m)
}

var entityLike = regexp.MustCompile(`&(#?[0-9A-Za-z]+;)`)

// linkTarget writes the destination and title of a link or image.
func linkTarget(href, title string) string {
	if href == "" || strings.ContainsAny(href, " \t()<>") {
		href = "<" + strings.NewReplacer("<", `\<`, ">", `\>`).Replace(href) + ">"
	}
	if title == "" {
		return href
	}
	return href + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}

// codeSpan delimits code with a backtick run longer than any run inside.
func codeSpan(code string, cell bool) string {
	if cell {
		code = strings.ReplaceAll(code, "|", `\|`)
	}
	ticks := strings.Repeat("`", longestRun(code, '`')+1)
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") ||
		(strings.HasPrefix(code, " ") && strings.HasSuffix(code, " ") && strings.TrimSpace(code) != "") {
		code = " " + code + " "
	}
	return ticks + code + ticks
}

// escapeBrackets escapes square brackets not yet escaped.
func escapeBrackets(text string) string {
	var b strings.Builder
	backslashes := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '[' || c == ']') && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteByte(c)
	}
	return b.String()
}

// splitSpace splits text into leading whitespace, body and trailing
// whitespace.
func splitSpace(text string) (lead, body, trail string) {
	body = strings.TrimLeft(text, " \t")
	lead = text[:len(text)-len(body)]
	trimmed := strings.TrimRight(body, " \t")
	trail = body[len(trimmed):]
	return lead, trimmed, trail
}
