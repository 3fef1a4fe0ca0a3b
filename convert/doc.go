/*
Package convert converts documents between Markdown and the rich document
tree of package doctree.

Markdown text is read by the parser of package mdast into a Markdown AST.
ToTree converts the AST into a document tree in two phases: the first
folds the AST bottom-up into a draft tree, holding reference links and
images as placeholders, the second resolves the placeholders against the
link definitions found in the document. ToMarkdown serializes a document
tree back to Markdown text.

A Convertor ties both directions together. After converting Markdown to a
document tree it normalizes paragraphs: soft line breaks are not a concept
of the document tree, therefore a paragraph is split at each of its line
breaks, and an empty paragraph is placed between adjacent paragraphs.
Empty paragraphs do not produce any output when a tree is serialized, thus
normalized trees serialize to equivalent Markdown.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package convert

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.convert'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.convert")
}
