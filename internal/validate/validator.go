package validate

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
)

// BuildReport checks every extracted link against the corpus and assembles
// the run report. Orphan and truncated-navigation findings are passed in by
// the caller; validation itself never inspects the navigation tree.
func BuildReport(c *corpus.Corpus, links []Link, external []ExternalLink, orphans, truncatedNav []string, runID string) *Report {
	report := &Report{
		RunID:           runID,
		Root:            c.Root,
		GeneratedAt:     time.Now().UTC(),
		DocumentCount:   len(c.Documents),
		LinkCount:       len(links),
		ExternalCount:   len(external),
		BrokenLinks:     make([]BrokenLink, 0),
		OrphanDocuments: append([]string(nil), orphans...),
		Unreadable:      append([]string(nil), c.Unreadable...),
		TruncatedNav:    append([]string(nil), truncatedNav...),
	}

	seen := make(map[BrokenLink]struct{})
	for _, link := range links {
		if resolves(c, link) {
			continue
		}

		target := link.Target
		if target == "" {
			// Escaped the corpus root; report the destination as written.
			target = link.RawTarget
		}
		broken := BrokenLink{Source: link.Source, Target: target, AnchorText: link.AnchorText}

		// broken_links is a set: duplicate references from one document
		// to one missing target collapse into a single entry.
		key := BrokenLink{Source: broken.Source, Target: broken.Target}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		report.BrokenLinks = append(report.BrokenLinks, broken)

		slog.Debug("Broken link", logfields.Source(link.Source), logfields.Target(target))
	}

	report.SortForOutput()
	return report
}

// resolves reports whether a link target matches a known corpus file by
// exact normalized path equality. Documents and assets are both valid
// targets; nothing else is.
func resolves(c *corpus.Corpus, link Link) bool {
	if link.Target == "" {
		return false
	}
	if _, ok := c.Documents[link.Target]; ok {
		return true
	}
	_, ok := c.Assets[link.Target]
	return ok
}
