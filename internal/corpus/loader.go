package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"git.home.luguber.info/inful/docscheck/internal/frontmatter"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
	"git.home.luguber.info/inful/docscheck/internal/markdown"
)

// ErrRootNotFound is the fatal loader error: the corpus root is missing or
// not a directory. All other conditions are recovered per file.
var ErrRootNotFound = errors.New("documentation root not found")

// Loader walks a documentation root and reads every Markdown file into a Corpus.
type Loader struct {
	extensions  []string
	ignore      map[string]struct{} // Uppercased filenames excluded from the corpus
	concurrency int
}

// NewLoader creates a loader. Markdown extensions and ignored filenames come
// from configuration; concurrency bounds parallel file reads.
func NewLoader(extensions, ignore []string, concurrency int) *Loader {
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignoreSet[strings.ToUpper(name)] = struct{}{}
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Loader{extensions: extensions, ignore: ignoreSet, concurrency: concurrency}
}

// Load walks root and returns the loaded corpus.
//
// Reading is parallel across files; each worker owns disjoint files and
// results merge under a single mutex, so documents never share state.
func (l *Loader) Load(root string) (*Corpus, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootNotFound, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	markdownPaths, assets, err := l.scan(absRoot)
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		Root:       absRoot,
		Documents:  make(map[string]*Document, len(markdownPaths)),
		Assets:     assets,
		Unreadable: make([]string, 0),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, l.concurrency)
	)
	var fatal error
	for _, relPath := range markdownPaths {
		sem <- struct{}{}
		wg.Add(1)
		go func(relPath string) {
			defer wg.Done()
			defer func() { <-sem }()

			doc, readErr := l.readDocument(absRoot, relPath)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(readErr, errNotText):
				c.Unreadable = append(c.Unreadable, relPath)
				slog.Warn("Skipping undecodable file", logfields.File(relPath))
			case readErr != nil:
				// A file vanishing mid-scan is an I/O failure, not a decode failure.
				if fatal == nil {
					fatal = readErr
				}
			default:
				c.Documents[relPath] = doc
			}
		}(relPath)
	}
	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}

	sort.Strings(c.Unreadable)
	slog.Debug("Corpus loaded",
		logfields.Root(absRoot),
		logfields.Count(len(c.Documents)),
		slog.Int("assets", len(c.Assets)),
		slog.Int("unreadable", len(c.Unreadable)))
	return c, nil
}

// scan walks the tree and classifies files without reading their contents.
func (l *Loader) scan(absRoot string) (markdownPaths []string, assets map[string]struct{}, err error) {
	assets = make(map[string]struct{})

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		// Skip hidden directories and files.
		if strings.HasPrefix(d.Name(), ".") && path != absRoot {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if _, ignored := l.ignore[strings.ToUpper(d.Name())]; ignored {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		switch Classify(d.Name(), l.extensions) {
		case ClassMarkdown:
			markdownPaths = append(markdownPaths, relPath)
		case ClassAsset:
			assets[relPath] = struct{}{}
		case ClassOther:
			// Not part of the corpus.
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Strings(markdownPaths)
	return markdownPaths, assets, nil
}

// errNotText marks files that exist but cannot be decoded as UTF-8 text.
var errNotText = errors.New("not valid UTF-8 text")

func (l *Loader) readDocument(absRoot, relPath string) (*Document, error) {
	absPath := filepath.Join(absRoot, filepath.FromSlash(relPath))
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}

	if !utf8.Valid(raw) {
		return nil, errNotText
	}

	title, body := frontmatter.Title(raw)
	if title == "" {
		title = markdown.ExtractTitle(body, markdown.Options{})
	}

	return &Document{
		Path:    relPath,
		AbsPath: absPath,
		Raw:     raw,
		Body:    body,
		Title:   title,
	}, nil
}
