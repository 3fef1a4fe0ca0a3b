/*
Package dom prepares HTML input for conversion to Markdown and walks the
resulting node trees.

HTML is parsed with golang.org/x/net/html as a body fragment. All
top-level fragment nodes are gathered under a synthetic root element,
which is never converted itself. Ancestor chains used for rule selection
stop at this root.

The Walker visits every node below the root in pre-order. Adjacent text
siblings are merged lazily, i.e. whenever a node becomes current its
text children are coalesced, so rule converters see at most one text
node between two elements.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.dom'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.dom")
}
