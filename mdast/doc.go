/*
Package mdast defines a Markdown abstract syntax tree and builds it from
Markdown source.

The tree uses a closed set of node kinds (see Kind). Parsing is delegated
to github.com/yuin/goldmark, with its GFM extensions enabled; the goldmark
tree is then mapped onto mdast nodes. goldmark resolves reference links
while parsing, and the link definitions it has collected are appended to
the document as Definition nodes. Downstream converters may therefore
meet both resolved links and links which still carry a reference label.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mdast

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.mdast'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.mdast")
}
