package validate

import (
	"net/url"
	"path"
	"strings"
)

// Link is one intra-corpus reference, resolved against its source document.
type Link struct {
	Source     string // Source document path
	Target     string // Resolved, normalized target path relative to the root
	RawTarget  string // Destination exactly as written in the source
	AnchorText string
	IsImage    bool
}

// ExternalLink is a reference with a scheme. Recorded for optional HTTP
// verification, never part of intra-corpus validation.
type ExternalLink struct {
	Source     string
	URL        string
	AnchorText string
}

// TargetKind classifies a raw link destination.
type TargetKind int

const (
	// TargetIntraCorpus is a relative reference to another corpus file.
	TargetIntraCorpus TargetKind = iota
	// TargetExternal has a scheme (http, https, mailto, ...) or is scheme-relative.
	TargetExternal
	// TargetAnchor is a bare in-page fragment (#section).
	TargetAnchor
	// TargetEmpty is an empty or unusable destination.
	TargetEmpty
)

// ClassifyTarget decides how a raw Markdown destination participates in validation.
func ClassifyTarget(raw string) TargetKind {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TargetEmpty
	}
	if strings.HasPrefix(trimmed, "#") {
		return TargetAnchor
	}
	// Scheme-relative URLs inherit the page scheme; always external.
	if strings.HasPrefix(trimmed, "//") {
		return TargetExternal
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		// Unparseable destinations (permissive links with spaces) are
		// treated as paths; validation decides whether they resolve.
		return TargetIntraCorpus
	}
	if u.Scheme != "" {
		return TargetExternal
	}
	if u.Path == "" {
		// Query-only or otherwise empty path, nothing to validate.
		return TargetEmpty
	}
	return TargetIntraCorpus
}

// Resolve normalizes a raw intra-corpus destination against the directory of
// sourcePath. The fragment and query are stripped before resolution, `.` and
// `..` segments are collapsed, and percent-escapes are decoded. A leading `/`
// is interpreted as corpus-root-relative.
//
// The empty string is returned when the destination escapes the root; such a
// target can never match a Document and is reported broken as written.
func Resolve(sourcePath, raw string) string {
	target := strings.TrimSpace(raw)
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	if target == "" {
		return ""
	}

	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		resolved = path.Join(path.Dir(sourcePath), target)
	}

	if resolved == "." || resolved == ".." || strings.HasPrefix(resolved, "../") {
		return ""
	}
	return resolved
}
