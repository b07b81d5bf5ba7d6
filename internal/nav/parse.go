package nav

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

func parseBody(body []byte) gmast.Node {
	md := goldmark.New()
	return md.Parser().Parse(text.NewReader(body))
}

// parseList converts one Markdown list into entries. A nested list inside a
// list item becomes the children of that item's entry.
func parseList(list *gmast.List, doc *corpus.Document) []*Entry {
	entries := make([]*Entry, 0)

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		entry := parseListItem(item, doc)
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseListItem(item gmast.Node, doc *corpus.Document) *Entry {
	var entry *Entry

	for n := item.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.List:
			if entry == nil {
				// A bare nested list without a leading link; hoist its
				// entries under a label-only entry.
				entry = &Entry{}
			}
			entry.Children = append(entry.Children, parseList(node, doc)...)
		default:
			if entry != nil {
				continue
			}
			if link := firstLink(n); link != nil {
				entry = entryFromLink(link, doc)
			} else if label := itemText(n, doc.Body); label != "" {
				entry = &Entry{Label: label}
			}
		}
	}
	return entry
}

// paragraphEntries collects every link in a non-list block as a flat entry.
func paragraphEntries(n gmast.Node, doc *corpus.Document) []*Entry {
	entries := make([]*Entry, 0)
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := c.(*gmast.Link); ok {
			entries = append(entries, entryFromLink(link, doc))
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return entries
}

// firstLink finds the first Link node within a list item's text block.
func firstLink(n gmast.Node) *gmast.Link {
	var found *gmast.Link
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := c.(*gmast.Link); ok {
			found = link
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return found
}

func entryFromLink(link *gmast.Link, doc *corpus.Document) *Entry {
	dest := string(link.Destination)
	label := itemText(link, doc.Body)

	target := ""
	if validate.ClassifyTarget(dest) == validate.TargetIntraCorpus {
		target = validate.Resolve(doc.Path, dest)
	}
	return &Entry{Label: label, Target: target}
}

func itemText(n gmast.Node, body []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			sb.Write(t.Segment.Value(body))
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
