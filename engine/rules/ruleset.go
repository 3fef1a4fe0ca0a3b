package rules

import (
	"sort"
	"strings"

	"github.com/derekparker/trie"
	"github.com/npillmayer/tomark/dom"
	"golang.org/x/net/html"
)

// PassThroughAttr marks an element to be emitted as raw HTML, regardless of
// any rule for it. The marker attribute itself is not emitted.
const PassThroughAttr = "data-tomark-pass"

// LineFeedReplacement stands in for line feeds which have to survive
// whitespace normalization, e.g. inside fenced code. It is replaced by a
// real line feed as the very last step of a conversion.
const LineFeedReplacement = "\u200B\u200B"

// Context is handed to converters. Root is the conversion root and Rules
// is the rule set the converter has been selected from.
type Context struct {
	Root  *html.Node
	Rules *RuleSet
}

// Converter creates Markdown for node n, given sub, the already converted
// Markdown of n's children.
type Converter func(ctx Context, n *html.Node, sub string) string

type trieNode struct {
	children  map[string]*trieNode
	converter Converter
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

func (t *trieNode) child(name string) *trieNode {
	ch, ok := t.children[name]
	if !ok {
		ch = newTrieNode()
		t.children[name] = ch
	}
	return ch
}

// RuleSet is a set of conversion rules.
type RuleSet struct {
	rules *trieNode
	index *trie.Trie // reversed chains, for listing selectors
}

// NewRuleSet creates a rule set from a selector → converter mapping.
func NewRuleSet(rules map[string]Converter) *RuleSet {
	rs := &RuleSet{
		rules: newTrieNode(),
		index: trie.New(),
	}
	rs.AddRules(rules)
	return rs
}

// Factory creates a new rule set which contains a deep copy of base's rules
// plus the rules given. base is not changed; later changes to either rule
// set do not affect the other.
func Factory(base *RuleSet, rules map[string]Converter) *RuleSet {
	rs := NewRuleSet(nil)
	if base != nil {
		rs.Mix(base)
	}
	rs.AddRules(rules)
	return rs
}

// AddRule registers conv for every chain of selector.
func (rs *RuleSet) AddRule(selector string, conv Converter) {
	for _, alt := range strings.Split(selector, ",") {
		chain := strings.Fields(alt)
		if len(chain) == 0 {
			continue
		}
		p := rs.rules
		for i := len(chain) - 1; i >= 0; i-- {
			p = p.child(strings.ToUpper(chain[i]))
		}
		p.converter = conv
		rs.index.Add(indexKey(chain), strings.ToUpper(strings.Join(chain, " ")))
	}
}

// AddRules registers a selector → converter mapping. Selectors are
// registered in lexical order.
func (rs *RuleSet) AddRules(rules map[string]Converter) {
	selectors := make([]string, 0, len(rules))
	for sel := range rules {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)
	for _, sel := range selectors {
		rs.AddRule(sel, rules[sel])
	}
}

// Mix merges a deep copy of other's rules into rs. For identical chains,
// other's converters replace those of rs.
func (rs *RuleSet) Mix(other *RuleSet) {
	type pair struct{ dst, src *trieNode }
	stack := []pair{{rs.rules, other.rules}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.src.converter != nil {
			p.dst.converter = p.src.converter
		}
		for name, ch := range p.src.children {
			stack = append(stack, pair{p.dst.child(name), ch})
		}
	}
	for _, key := range other.index.Keys() {
		if n, ok := other.index.Find(key); ok {
			rs.index.Add(key, n.Meta())
		}
	}
}

// ConverterFor returns the converter selected for n. Its ancestors are
// considered up to, but excluding, root. It returns nil if no rule
// applies.
func (rs *RuleSet) ConverterFor(n, root *html.Node) Converter {
	var conv Converter
	p := rs.rules
	for n != nil && p != nil {
		p = p.children[dom.Name(n)]
		if p != nil && p.converter != nil {
			conv = p.converter
		}
		if n.Parent == root {
			break
		}
		n = n.Parent
	}
	return conv
}

// Convert produces Markdown for n, with sub as the Markdown of its
// children. Nodes marked for pass-through and nodes without a matching
// rule are emitted as HTML.
func (rs *RuleSet) Convert(root, n *html.Node, sub string) string {
	if n == nil {
		return ""
	}
	if n.Type == html.ElementNode && dom.HasAttr(n, PassThroughAttr) {
		return dom.OuterHTMLWith(n, sub, PassThroughAttr)
	}
	if conv := rs.ConverterFor(n, root); conv != nil {
		return conv(Context{Root: root, Rules: rs}, n, sub)
	}
	tracer().Debugf("no rule for %s, emitting HTML", dom.Name(n))
	if dom.IsInline(n) { // neighbouring text keeps the separating space
		return dom.OuterHTMLWith(n, sub)
	}
	return SpaceControlled(dom.OuterHTMLWith(n, sub), n)
}

// HasRule is true if a converter is registered for exactly selector.
func (rs *RuleSet) HasRule(selector string) bool {
	chain := strings.Fields(selector)
	if len(chain) == 0 {
		return false
	}
	_, ok := rs.index.Find(indexKey(chain))
	return ok
}

// Selectors lists the selector chains of all rules whose target node name
// (the last name of a chain) starts with prefix. An empty prefix lists all
// rules. The result is sorted.
func (rs *RuleSet) Selectors(prefix string) []string {
	var keys []string
	if prefix == "" {
		keys = rs.index.Keys()
	} else {
		keys = rs.index.PrefixSearch(strings.ToUpper(prefix))
	}
	selectors := make([]string, 0, len(keys))
	for _, key := range keys {
		if n, ok := rs.index.Find(key); ok {
			if sel, ok := n.Meta().(string); ok {
				selectors = append(selectors, sel)
			}
		}
	}
	sort.Strings(selectors)
	return selectors
}

func indexKey(chain []string) string {
	rev := make([]string, len(chain))
	for i, name := range chain {
		rev[len(chain)-1-i] = strings.ToUpper(name)
	}
	return strings.Join(rev, " ")
}
