package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter is returned when frontmatter opens but never closes.
var ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is
// false and body is the full input. Read-only: callers never rewrite documents.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	open := []byte("---\n")
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		// Empty frontmatter block.
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A final "---" without trailing newline still closes the block.
		if bytes.HasSuffix(content[start:], []byte("\n---")) {
			return content[start : len(content)-4], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return content[start : start+idx+1], content[start+idx+len(closeSeq):], true, nil
}

// Parse unmarshals frontmatter YAML into a generic map.
func Parse(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return fields, nil
}

// Title extracts the title field from a document's frontmatter, if any.
// Malformed frontmatter is treated as absent; the document body still loads.
func Title(content []byte) (string, []byte) {
	raw, body, had, err := Split(content)
	if err != nil || !had {
		return "", content
	}

	fields, err := Parse(raw)
	if err != nil {
		return "", body
	}
	if title, ok := fields["title"].(string); ok {
		return title, body
	}
	return "", body
}
