package validate

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/markdown"
)

// ExtractLinks runs link extraction over every document in the corpus and
// splits the results into intra-corpus links and external links.
//
// Iteration follows sorted document order so extracted link order is stable
// between runs on an unchanged corpus.
func ExtractLinks(c *corpus.Corpus) ([]Link, []ExternalLink, error) {
	links := make([]Link, 0)
	external := make([]ExternalLink, 0)

	for _, docPath := range c.Paths() {
		doc := c.Documents[docPath]

		mdLinks, err := markdown.ExtractLinks(doc.Body, markdown.Options{})
		if err != nil {
			return nil, nil, fmt.Errorf("extract links from %s: %w", docPath, err)
		}

		for _, l := range mdLinks {
			switch ClassifyTarget(l.Destination) {
			case TargetExternal:
				external = append(external, ExternalLink{
					Source:     docPath,
					URL:        l.Destination,
					AnchorText: l.Text,
				})
			case TargetIntraCorpus:
				links = append(links, Link{
					Source:     docPath,
					Target:     Resolve(docPath, l.Destination),
					RawTarget:  l.Destination,
					AnchorText: l.Text,
					IsImage:    l.Kind == markdown.LinkKindImage,
				})
			case TargetAnchor, TargetEmpty:
				// In-page anchors are out of scope, empty targets carry nothing.
			}
		}

		slog.Debug("Extracted links", logfields.File(docPath), logfields.Count(len(mdLinks)))
	}

	return links, external, nil
}
