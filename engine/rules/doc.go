/*
Package rules holds conversion rules from HTML nodes to Markdown text.

A rule binds a selector to a converter function. A selector is a chain of
node names, e.g. "LI P" for paragraphs inside list items; a comma
separates alternative chains ("EM, I"). Rules are stored in a trie keyed
by the chain in reverse, i.e. beginning with the node the rule applies to
and continuing with its ancestors.

Looking up the converter for a node walks the trie and the node's
ancestor chain in parallel, up to the conversion root. The converter seen
last on this walk wins, which makes the longest matching chain the most
specific one. A rule registered later for an identical chain replaces the
earlier one.

The package also provides the Markdown escaping pipeline used for
converted text.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package rules

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tomark.rules'.
func tracer() tracing.Trace {
	return tracing.Select("tomark.rules")
}
