package validate

import (
	"sort"
	"time"
)

// BrokenLink records one link whose resolved target matches no Document.
type BrokenLink struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	AnchorText string `json:"anchor_text,omitempty"`
}

// Report is the validation outcome for one run. Read-only once built.
//
// RunID and GeneratedAt identify the run in logs and published events but are
// excluded from serialized output: two runs over an unchanged corpus must
// produce byte-identical reports.
type Report struct {
	RunID           string       `json:"-"`
	Root            string       `json:"root"`
	GeneratedAt     time.Time    `json:"-"`
	DocumentCount   int          `json:"document_count"`
	LinkCount       int          `json:"link_count"`
	ExternalCount   int          `json:"external_count"`
	BrokenLinks     []BrokenLink `json:"broken_links"`
	OrphanDocuments []string     `json:"orphan_documents"`
	Unreadable      []string     `json:"unreadable,omitempty"`
	TruncatedNav    []string     `json:"truncated_navigation,omitempty"`
	BrokenExternal  []BrokenLink `json:"broken_external,omitempty"`
}

// HasIssues reports whether strict mode should fail the run.
func (r *Report) HasIssues() bool {
	return len(r.BrokenLinks) > 0 || len(r.OrphanDocuments) > 0 || len(r.BrokenExternal) > 0
}

// SortForOutput orders every list with a stable, deterministic sort so two
// runs over an unchanged corpus produce byte-identical reports.
func (r *Report) SortForOutput() {
	sort.SliceStable(r.BrokenLinks, func(i, j int) bool {
		if r.BrokenLinks[i].Source != r.BrokenLinks[j].Source {
			return r.BrokenLinks[i].Source < r.BrokenLinks[j].Source
		}
		return r.BrokenLinks[i].Target < r.BrokenLinks[j].Target
	})
	sort.SliceStable(r.BrokenExternal, func(i, j int) bool {
		if r.BrokenExternal[i].Source != r.BrokenExternal[j].Source {
			return r.BrokenExternal[i].Source < r.BrokenExternal[j].Source
		}
		return r.BrokenExternal[i].Target < r.BrokenExternal[j].Target
	})
	sort.Strings(r.OrphanDocuments)
	sort.Strings(r.Unreadable)
	sort.Strings(r.TruncatedNav)
}
