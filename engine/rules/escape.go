package rules

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	outerSpace     = regexp.MustCompile(`^[ \r\n\t]+|[ \r\n\t]+$`)
	whitespaceRun  = regexp.MustCompile(`[ \t\r\n]+`)
	backslashed    = regexp.MustCompile("\\\\[!\"#$%&'()*+,\\-./:;<=>?@\\[\\]^_`{|}~\\\\]")
	pairedChars    = regexp.MustCompile("[*_~`]")
	charsToEscape  = regexp.MustCompile(`[>(){}\[\]+\-.!#|]`)
	linkBrackets   = regexp.MustCompile(`[\[\]]`)
	imageSyntax    = regexp.MustCompile(`!\[.*\]\(.*\)`)
	htmlLike       = regexp.MustCompile(`<([a-zA-Z_][a-zA-Z0-9\-._]*)(\s|[^\\/>])*/?>|<(/)([a-zA-Z_][a-zA-Z0-9\-._]*)\s*/?>|<!--[^-]+-->|<([a-zA-Z_][a-zA-Z0-9\-.:/]*)>`)
	markdownBlocks = []*regexp.Regexp{
		regexp.MustCompile(`^( {4}[^\n]+\n*)+`),                           // indented code
		regexp.MustCompile(`^ *((\* *){3,}|(- *){3,} *|(_ *){3,}) *`),     // thematic break
		regexp.MustCompile(`^(#{1,6}) +[\s\S]+`),                          // ATX heading
		regexp.MustCompile(`^([^\n]+)\n *(=|-){2,} *`),                    // setext heading
		regexp.MustCompile(`^( *>[^\n]+.*)+`),                             // block quote
		regexp.MustCompile(`^ *(\*+|-+|\+|\d+[.)])( |$)`),                 // list item
		regexp.MustCompile(`^ *\[([^\]]+)\]: *<?([^\s>]+)>?(?: +["(]([^\n]+)[")])? *`), // link definition
		regexp.MustCompile(`!?\[.*\]\(.*\)`),                              // inline link
		regexp.MustCompile(`!?\[.*\]\s*\[([^\]]*)\]`),                     // reference link
		regexp.MustCompile(`\|`),                                          // table cell
		regexp.MustCompile("^(`{3,})"),                                    // code fence
		regexp.MustCompile(`^(~{3,})`),                                    // tilde fence
	}
)

func backslash(s string) string {
	return `\` + s
}

// Trim removes leading and trailing spaces, tabs and line breaks.
func Trim(text string) string {
	return outerSpace.ReplaceAllString(text, "")
}

// IsEmptyText is true if text consists of whitespace only.
func IsEmptyText(text string) bool {
	return strings.TrimFunc(text, unicode.IsSpace) == ""
}

// CollapseWhitespace replaces every run of spaces, tabs and line breaks
// with a single space.
func CollapseWhitespace(text string) string {
	return whitespaceRun.ReplaceAllString(text, " ")
}

// EscapeText prepares the data of an HTML text node for Markdown output:
// whitespace is collapsed and trimmed, then EscapeMarkdown is applied.
func EscapeText(text string) string {
	return EscapeMarkdown(Trim(CollapseWhitespace(text)))
}

// EscapeMarkdown escapes text so that it will be read back as literal text
// by a Markdown parser. Steps, in order:
//
//	1. backslash-escapes already present get their backslash escaped
//	2. emphasis, strikethrough and code delimiters are escaped
//	3. if text would start or contain a Markdown block or link construct,
//	   the characters taking part in such constructs are escaped
//	4. anything resembling an HTML tag or comment is escaped
func EscapeMarkdown(text string) string {
	text = backslashed.ReplaceAllStringFunc(text, backslash)
	text = pairedChars.ReplaceAllStringFunc(text, backslash)
	for _, block := range markdownBlocks {
		if block.MatchString(text) {
			text = charsToEscape.ReplaceAllStringFunc(text, backslash)
			break
		}
	}
	return htmlLike.ReplaceAllStringFunc(text, backslash)
}

// EscapeTextForLink escapes square brackets in link text or alt text,
// except for brackets belonging to embedded image syntax.
func EscapeTextForLink(text string) string {
	images := imageSyntax.FindAllStringIndex(text, -1)
	inImage := func(pos int) bool {
		for _, span := range images {
			if pos > span[0] && pos < span[1] {
				return true
			}
		}
		return false
	}
	var b strings.Builder
	last := 0
	for _, loc := range linkBrackets.FindAllStringIndex(text, -1) {
		if inImage(loc[0]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteByte('\\')
		last = loc[0]
	}
	b.WriteString(text[last:])
	return b.String()
}
