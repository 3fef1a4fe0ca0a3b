package rules

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	for _, x := range []struct {
		in, out string
	}{
		{"plain text, nothing to do.", "plain text, nothing to do."},
		{"1 * 2 _ 3 ~ 4 ` 5 [a](b) # > -", "1 \\* 2 \\_ 3 \\~ 4 \\` 5 \\[a\\]\\(b\\) \\# \\> \\-"},
		{"# not a heading", "\\# not a heading"},
		{"1. not a list", "1\\. not a list"},
		{"- - -", "\\- \\- \\-"},
		{"> quote", "\\> quote"},
		{"a | b", "a \\| b"},
		{"<b>bold</b>", "\\<b>bold\\</b>"},
		{`C:\temp`, `C:\temp`},
		{`\*`, `\\\*`},
	} {
		assert.Equal(t, x.out, EscapeMarkdown(x.in), "escaping %q", x.in)
	}
}

func TestEscapeText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	assert.Equal(t, "a b c", EscapeText("  a \n\t b   c\n"))
	assert.Equal(t, "", EscapeText(" \n "))
	assert.True(t, IsEmptyText(" \n\t\u00a0"))
	assert.False(t, IsEmptyText(" x "))
}

func TestEscapeTextForLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tomark.rules")
	defer teardown()
	//
	assert.Equal(t, `see \[1\]`, EscapeTextForLink("see [1]"))
	assert.Equal(t, "![img](src.png)", EscapeTextForLink("![img](src.png)"))
	assert.Equal(t, `\[x\] ![img](src.png)`, EscapeTextForLink("[x] ![img](src.png)"))
}
