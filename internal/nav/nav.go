// Package nav builds the navigation tree of a documentation corpus from its
// per-section index.md files.
package nav

import (
	"log/slog"
	"sort"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
)

// Entry is one table-of-contents entry. Nesting follows the Markdown list
// nesting in the source index file; entries pointing at another section's
// index.md additionally inherit that section's entries as children.
type Entry struct {
	Label    string
	Target   string // Resolved corpus path, "" when the target did not resolve
	Children []*Entry
}

// Tree is the aggregated navigation for the whole corpus.
type Tree struct {
	Roots []*Entry // One per index.md, ordered by index path
	// Truncated lists index paths whose expansion was cut because a section
	// transitively listed itself. Flagged in the report, never fatal.
	Truncated []string
}

// Build parses every index.md in the corpus into a navigation tree.
// Sections without an index.md contribute no entries.
func Build(c *corpus.Corpus) *Tree {
	sections := make(map[string][]*Entry) // index path -> its direct entries

	indexPaths := make([]string, 0)
	for _, docPath := range c.Paths() {
		doc := c.Documents[docPath]
		if !doc.IsIndex() {
			continue
		}
		indexPaths = append(indexPaths, docPath)
		sections[docPath] = parseIndexEntries(doc)
	}
	sort.Strings(indexPaths)

	tree := &Tree{Roots: make([]*Entry, 0, len(indexPaths))}
	truncated := make(map[string]struct{})

	for _, indexPath := range indexPaths {
		root := &Entry{
			Label:    c.Documents[indexPath].Title,
			Target:   indexPath,
			Children: expandSection(indexPath, sections, map[string]struct{}{indexPath: {}}, truncated),
		}
		tree.Roots = append(tree.Roots, root)
	}

	for indexPath := range truncated {
		tree.Truncated = append(tree.Truncated, indexPath)
		slog.Warn("Navigation cycle truncated", logfields.File(indexPath))
	}
	sort.Strings(tree.Truncated)

	return tree
}

// expandSection deep-copies a section's entries, splicing in the entries of
// any child section whose index.md is referenced. The seen set holds the
// current expansion path; revisiting a section on the same path is a cycle
// and the offending branch is truncated.
func expandSection(indexPath string, sections map[string][]*Entry, seen map[string]struct{}, truncated map[string]struct{}) []*Entry {
	entries := sections[indexPath]
	out := make([]*Entry, 0, len(entries))

	for _, e := range entries {
		copied := &Entry{Label: e.Label, Target: e.Target}
		copied.Children = expandChildren(e, sections, seen, truncated)
		out = append(out, copied)
	}
	return out
}

func expandChildren(e *Entry, sections map[string][]*Entry, seen map[string]struct{}, truncated map[string]struct{}) []*Entry {
	children := make([]*Entry, 0, len(e.Children))
	for _, child := range e.Children {
		copied := &Entry{Label: child.Label, Target: child.Target}
		copied.Children = expandChildren(child, sections, seen, truncated)
		children = append(children, copied)
	}

	if _, isSection := sections[e.Target]; isSection && e.Target != "" {
		if _, onPath := seen[e.Target]; onPath {
			truncated[e.Target] = struct{}{}
			return children
		}
		seen[e.Target] = struct{}{}
		children = append(children, expandSection(e.Target, sections, seen, truncated)...)
		delete(seen, e.Target)
	}

	return children
}

// Reachable returns the set of corpus paths reachable from any navigation root.
func (t *Tree) Reachable() map[string]struct{} {
	reachable := make(map[string]struct{})
	var visit func(e *Entry)
	visit = func(e *Entry) {
		if e.Target != "" {
			reachable[e.Target] = struct{}{}
		}
		for _, child := range e.Children {
			visit(child)
		}
	}
	for _, root := range t.Roots {
		visit(root)
	}
	return reachable
}

// Orphans returns Markdown documents not reachable from any navigation entry.
// Index files are navigation roots, never orphans.
func (t *Tree) Orphans(c *corpus.Corpus) []string {
	reachable := t.Reachable()

	orphans := make([]string, 0)
	for _, docPath := range c.Paths() {
		if c.Documents[docPath].IsIndex() {
			continue
		}
		if _, ok := reachable[docPath]; !ok {
			orphans = append(orphans, docPath)
		}
	}
	return orphans
}

// parseIndexEntries walks the goldmark AST of an index document and converts
// it into entries. Lists provide nesting; links in plain paragraphs become
// flat entries so an index that introduces its section in prose still
// navigates to what it references.
func parseIndexEntries(doc *corpus.Document) []*Entry {
	root := parseBody(doc.Body)

	entries := make([]*Entry, 0)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if list, ok := n.(*gmast.List); ok {
			entries = append(entries, parseList(list, doc)...)
			continue
		}
		entries = append(entries, paragraphEntries(n, doc)...)
	}
	return entries
}
