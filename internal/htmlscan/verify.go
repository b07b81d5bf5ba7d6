package htmlscan

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

// VerifySite walks a rendered site directory and returns a report of internal
// references that do not resolve to a file. External references are counted
// but not requested.
func VerifySite(siteDir string) (*validate.Report, error) {
	absRoot, err := filepath.Abs(siteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site directory: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("site directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site path is not a directory: %s", absRoot)
	}

	files := make(map[string]struct{})
	var pages []string
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files[rel] = struct{}{}
		if strings.HasSuffix(rel, ".html") || strings.HasSuffix(rel, ".htm") {
			pages = append(pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk site directory: %w", err)
	}
	sort.Strings(pages)

	report := &validate.Report{Root: absRoot, DocumentCount: len(pages)}
	for _, page := range pages {
		raw, err := os.ReadFile(filepath.Join(absRoot, filepath.FromSlash(page)))
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", page, err)
		}
		refs, err := ExtractRefs(bytes.NewReader(raw))
		if err != nil {
			slog.Warn("Skipping unparseable page", logfields.Path(page), logfields.Error(err))
			continue
		}
		for _, ref := range refs {
			if !ref.Internal {
				report.ExternalCount++
				continue
			}
			if skippable(ref.URL) {
				continue
			}
			report.LinkCount++
			if !targetExists(files, page, ref.URL) {
				report.BrokenLinks = append(report.BrokenLinks, validate.BrokenLink{
					Source:     page,
					Target:     ref.URL,
					AnchorText: ref.Text,
				})
			}
		}
	}

	report.SortForOutput()
	return report, nil
}

// targetExists resolves an internal ref against its page and checks the file
// set. Directory-style URLs resolve to their index.html.
func targetExists(files map[string]struct{}, page, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		return true
	}

	var resolved string
	if strings.HasPrefix(p, "/") {
		resolved = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		resolved = path.Join(path.Dir(page), p)
	}
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return false
	}
	if resolved == "." {
		// href="/" is the site root.
		resolved = ""
	}

	if _, ok := files[resolved]; ok {
		return true
	}
	// /guide/ and /guide are both served as /guide/index.html.
	if _, ok := files[path.Join(resolved, "index.html")]; ok {
		return true
	}
	return false
}
