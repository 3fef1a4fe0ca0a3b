/*
Package tomark converts HTML to Markdown.

Conversion walks the DOM in pre-order. Every node is converted after all
of its children, by the rule selected for it from a rules.RuleSet; the
converted Markdown of the children is handed to the rule as sub-content.
Converting the top-level nodes and concatenating the results gives the raw
Markdown, which is finally normalized: superfluous trailing spaces and
blank lines are removed and protected line feeds are restored.

Two rule sets are provided. Basic covers CommonMark constructs; GFM adds
strikethrough, task lists, fenced code and tables. Clients may derive
their own rule sets with rules.Factory.

	md := tomark.ToMark("<p>Hello <b>World</b></p>")   // "Hello **World**"

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tomark

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.engine'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.engine")
}
