package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/docscheck/internal/validate"
)

// Formatter renders a validation report for output.
type Formatter interface {
	Format(w io.Writer, r *validate.Report) error
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter renders a human-readable report, one line per finding.
type TextFormatter struct{}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, r *validate.Report) error {
	if _, err := fmt.Fprintf(w, "Checked documentation in: %s\n", r.Root); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	for _, link := range r.BrokenLinks {
		if err := printFinding(w, "broken link", fmt.Sprintf("%s -> %s", link.Source, link.Target), link.AnchorText); err != nil {
			return err
		}
	}
	for _, link := range r.BrokenExternal {
		if err := printFinding(w, "broken external link", fmt.Sprintf("%s -> %s", link.Source, link.Target), link.AnchorText); err != nil {
			return err
		}
	}
	for _, orphan := range r.OrphanDocuments {
		if err := printFinding(w, "orphan document", orphan, ""); err != nil {
			return err
		}
	}
	for _, file := range r.Unreadable {
		if err := printFinding(w, "unreadable file", file, ""); err != nil {
			return err
		}
	}
	for _, index := range r.TruncatedNav {
		if err := printFinding(w, "navigation cycle", index, ""); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d document%s, %d internal link%s, %d external link%s\n",
		r.DocumentCount, pluralize(r.DocumentCount),
		r.LinkCount, pluralize(r.LinkCount),
		r.ExternalCount, pluralize(r.ExternalCount)); err != nil {
		return err
	}
	if len(r.BrokenLinks) > 0 {
		if _, err := fmt.Fprintf(w, "  %d broken link%s\n", len(r.BrokenLinks), pluralize(len(r.BrokenLinks))); err != nil {
			return err
		}
	}
	if len(r.BrokenExternal) > 0 {
		if _, err := fmt.Fprintf(w, "  %d broken external link%s\n", len(r.BrokenExternal), pluralize(len(r.BrokenExternal))); err != nil {
			return err
		}
	}
	if len(r.OrphanDocuments) > 0 {
		if _, err := fmt.Fprintf(w, "  %d orphan document%s\n", len(r.OrphanDocuments), pluralize(len(r.OrphanDocuments))); err != nil {
			return err
		}
	}
	if len(r.Unreadable) > 0 {
		if _, err := fmt.Fprintf(w, "  %d unreadable file%s (skipped)\n", len(r.Unreadable), pluralize(len(r.Unreadable))); err != nil {
			return err
		}
	}

	return f.printFinalMessage(w, r)
}

func printFinding(w io.Writer, kind, subject, detail string) error {
	if detail != "" {
		_, err := fmt.Fprintf(w, "✗ %s: %s (%q)\n", kind, subject, detail)
		return err
	}
	_, err := fmt.Fprintf(w, "✗ %s: %s\n", kind, subject)
	return err
}

func (f *TextFormatter) printFinalMessage(w io.Writer, r *validate.Report) error {
	if r.HasIssues() {
		_, err := fmt.Fprintln(w, "❌ Documentation has unresolved references. Fix them before building the site.")
		return err
	}
	_, err := fmt.Fprintln(w, "✨ All documentation links resolve!")
	return err
}

// JSONFormatter renders the report as indented JSON, suitable for machines
// and diffable across runs.
type JSONFormatter struct{}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, r *validate.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
