package corpus

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileClass tags every file found under the root. Classification is explicit
// so the loader never branches on extensions outside this one place.
type FileClass string

const (
	ClassMarkdown FileClass = "markdown"
	ClassAsset    FileClass = "asset"
	ClassOther    FileClass = "other"
)

// Document represents one loaded Markdown file. Immutable after load.
type Document struct {
	Path    string // Slash-separated path relative to the root, unique
	AbsPath string // Absolute filesystem path
	Raw     []byte // Full file contents as read
	Body    []byte // Markdown body with frontmatter stripped
	Title   string // Frontmatter title, else first level-1 heading, else ""
}

// IsIndex reports whether this document is a section navigation index.
// The filename match is case-sensitive: only "index.md" builds navigation.
func (d *Document) IsIndex() bool {
	return filepath.Base(d.Path) == "index.md"
}

// Dir returns the slash-separated directory of the document, "" at the root.
func (d *Document) Dir() string {
	dir := filepath.ToSlash(filepath.Dir(d.Path))
	if dir == "." {
		return ""
	}
	return dir
}

// Corpus is the full loaded document set for one root directory.
type Corpus struct {
	Root       string               // Absolute root directory
	Documents  map[string]*Document // Keyed by normalized relative path
	Assets     map[string]struct{}  // Relative paths of asset files (valid image targets)
	Unreadable []string             // Relative paths skipped because they could not be decoded
}

// Paths returns the document paths in sorted order for deterministic iteration.
func (c *Corpus) Paths() []string {
	paths := make([]string, 0, len(c.Documents))
	for p := range c.Documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Classify maps a filename to its FileClass based on extension.
func Classify(name string, markdownExts []string) FileClass {
	ext := strings.ToLower(filepath.Ext(name))
	for _, mdExt := range markdownExts {
		if ext == mdExt {
			return ClassMarkdown
		}
	}
	if isAssetExt(ext) {
		return ClassAsset
	}
	return ClassOther
}

func isAssetExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		".pdf",
		".mp4", ".webm", ".ogv",
		".csv", ".json", ".yaml", ".yml", ".xml":
		return true
	}
	return false
}
