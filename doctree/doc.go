/*
Package doctree implements the rich document tree of an editor.

A document tree consists of typed nodes. Node types are registered in a
Schema, and nodes are created through the constructor of their type.
Inline content is a flat sequence of text and inline leaf nodes, where
formatting is carried by marks (emphasis, strong, strikethrough, code,
link) attached to each node, instead of by nesting.

The default schema Basic declares all node types needed to represent
CommonMark and GFM documents.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package doctree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.doctree'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.doctree")
}
