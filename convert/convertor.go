package convert

import (
	"bytes"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/tomark/doctree"
	"github.com/npillmayer/tomark/engine/tomark"
	"github.com/npillmayer/tomark/mdast"
)

// Configuration keys read by OptionsFromConfig.
const (
	ConfigKeyGFM        = tomark.ConfigKeyGFM
	ConfigKeyLinkTarget = "tomark.link.target"
)

// Options control a Convertor.
type Options struct {
	GFM            bool          // GitHub-flavoured Markdown, on by default
	LinkAttributes doctree.Attrs // added to every link mark
}

// DefaultOptions returns the options used if none are given.
func DefaultOptions() Options {
	return Options{GFM: true}
}

// OptionsFromConfig reads options from a configuration. Keys not set
// leave the defaults untouched.
func OptionsFromConfig(conf schuko.Configuration) Options {
	opts := DefaultOptions()
	if conf == nil {
		return opts
	}
	if conf.IsSet(ConfigKeyGFM) {
		opts.GFM = conf.GetBool(ConfigKeyGFM)
	}
	if target := conf.GetString(ConfigKeyLinkTarget); target != "" {
		opts.LinkAttributes = doctree.Attrs{"target": target}
	}
	return opts
}

// Convertor converts documents between Markdown, HTML and document trees.
type Convertor struct {
	opts   Options
	parser *mdast.Parser
	toTree *ToTree
	toMd   *ToMarkdown
	schema *doctree.Schema
}

// NewConvertor creates a convertor for documents of schema. If schema is
// nil, doctree.Basic is used.
func NewConvertor(schema *doctree.Schema, opts Options) *Convertor {
	if schema == nil {
		schema = doctree.Basic
	}
	c := &Convertor{
		opts:   opts,
		parser: mdast.NewParser(opts.GFM),
		toTree: NewToTree(schema),
		toMd:   NewToMarkdown(),
		schema: schema,
	}
	c.toTree.SetLinkAttributes(opts.LinkAttributes)
	return c
}

// ToDocument reads Markdown text into a document tree with normalized
// paragraphs.
func (c *Convertor) ToDocument(md []byte) (*doctree.Node, error) {
	root, err := c.parser.Parse(md)
	if err != nil {
		return nil, err
	}
	return c.ToDocumentAST(root)
}

// ToDocumentAST converts a Markdown AST into a document tree with
// normalized paragraphs.
func (c *Convertor) ToDocumentAST(root *mdast.Node) (*doctree.Node, error) {
	doc, err := c.toTree.Convert(root)
	if err != nil {
		return nil, err
	}
	return c.postProcessParagraphs(doc)
}

// ToMarkdownText serializes a document tree to Markdown text.
func (c *Convertor) ToMarkdownText(doc *doctree.Node) (string, error) {
	return c.toMd.Convert(doc)
}

// HTMLToMarkdown converts an HTML fragment to Markdown text.
func (c *Convertor) HTMLToMarkdown(html string) string {
	return tomark.ToMark(html, tomark.WithGFM(c.opts.GFM))
}

// MarkdownToHTML renders Markdown text as HTML.
func (c *Convertor) MarkdownToHTML(md []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.parser.RenderHTML(md, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// postProcessParagraphs rebuilds the top-level blocks of doc: an empty
// paragraph separates adjacent paragraphs, and paragraphs are split at
// their line breaks, with an empty paragraph in place of each break.
func (c *Convertor) postProcessParagraphs(doc *doctree.Node) (*doctree.Node, error) {
	blocks := make([]*doctree.Node, 0, len(doc.Content))
	var prev *doctree.Node
	for _, n := range doc.Content {
		if !n.Is(doctree.NodeParagraph) {
			blocks = append(blocks, n)
			prev = n
			continue
		}
		if prev != nil && prev.Is(doctree.NodeParagraph) {
			blank, err := c.paragraph(nil)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, blank)
		}
		split, err := c.splitAtBreaks(n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, split...)
		prev = n
	}
	return c.schema.Node(doctree.NodeDoc, doc.Attrs, blocks...)
}

// splitAtBreaks splits paragraph p at its line breaks. Each break ends
// the paragraph so far, if it is not empty, and is replaced by an empty
// paragraph.
func (c *Convertor) splitAtBreaks(p *doctree.Node) ([]*doctree.Node, error) {
	var blocks, buffer []*doctree.Node
	for _, inline := range p.Content {
		if !inline.Is(doctree.NodeLineBreak) {
			buffer = append(buffer, inline)
			continue
		}
		if len(buffer) > 0 {
			para, err := c.paragraph(buffer)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, para)
		}
		blank, err := c.paragraph(nil)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blank)
		buffer = nil
	}
	if len(buffer) > 0 {
		para, err := c.paragraph(buffer)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, para)
	}
	return blocks, nil
}

func (c *Convertor) paragraph(content []*doctree.Node) (*doctree.Node, error) {
	return c.schema.Node(doctree.NodeParagraph, nil, content...)
}
