// Package batch correlates documents submitted together and augments their scores
// with cross-document signals.
package batch

import (
	"fmt"
	"slices"

	"docx_forensics/internal/docx"
	"docx_forensics/internal/forensics"
	"docx_forensics/internal/stats"
)

// Document is one first-pass result. Result is the per-document score and is not
// modified by correlation.
type Document struct {
	Name       string
	Paragraphs []docx.Paragraph
	Metadata   docx.DocumentMetadata
	Catalog    docx.RevisionCatalog
	Statistics *stats.Statistics
	Result     *forensics.Result
}

// Context holds the documents of one request, keyed by file name, in insertion order.
type Context struct {
	order []string
	docs  map[string]*Document
}

func NewContext() *Context {
	return &Context{docs: map[string]*Document{}}
}

func (c *Context) Add(doc *Document) error {
	if doc == nil || doc.Statistics == nil || doc.Result == nil {
		return fmt.Errorf("batch document %q is incomplete", docName(doc))
	}
	if _, exists := c.docs[doc.Name]; exists {
		return fmt.Errorf("duplicate document name %q in batch", doc.Name)
	}
	c.order = append(c.order, doc.Name)
	c.docs[doc.Name] = doc
	return nil
}

func (c *Context) Get(name string) (*Document, bool) {
	doc, ok := c.docs[name]
	return doc, ok
}

func (c *Context) Len() int {
	return len(c.order)
}

func (c *Context) Names() []string {
	return slices.Clone(c.order)
}

func (c *Context) Documents() []*Document {
	out := make([]*Document, len(c.order))
	for i, name := range c.order {
		out[i] = c.docs[name]
	}
	return out
}

// SharedRevisions maps every catalog value declared by two or more documents to
// the sorted names of those documents.
func (c *Context) SharedRevisions() map[string][]string {
	owners := map[string][]string{}
	for _, doc := range c.Documents() {
		for _, v := range doc.Catalog.Values() {
			owners[v] = append(owners[v], doc.Name)
		}
	}
	shared := map[string][]string{}
	for v, names := range owners {
		if len(names) < 2 {
			continue
		}
		slices.Sort(names)
		shared[v] = names
	}
	return shared
}

// byIdentity groups document names by a non-empty identity value.
func (c *Context) byIdentity(identity func(docx.DocumentMetadata) string) map[string][]string {
	groups := map[string][]string{}
	for _, doc := range c.Documents() {
		if id := identity(doc.Metadata); id != "" {
			groups[id] = append(groups[id], doc.Name)
		}
	}
	return groups
}

func docName(doc *Document) string {
	if doc == nil {
		return ""
	}
	return doc.Name
}
