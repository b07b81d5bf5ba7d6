// Package htmlscan validates a rendered static site: it walks the output
// directory, pulls references out of every HTML page, and checks that
// internal targets exist on disk.
package htmlscan

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Ref is one reference found in an HTML page.
type Ref struct {
	URL       string
	Text      string
	Tag       string
	Attribute string
	Internal  bool
}

// ExtractRefs parses HTML and collects every linking attribute: a/href,
// img/src, script/src, link/href, and media sources.
func ExtractRefs(r io.Reader) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref, ok := elementRef(n); ok {
				refs = append(refs, ref)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

func elementRef(n *html.Node) (Ref, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script", "video", "audio", "source", "iframe":
		attr = "src"
	default:
		return Ref{}, false
	}

	target := getAttr(n, attr)
	if target == "" {
		return Ref{}, false
	}

	text := getAttr(n, "alt")
	if n.Data == "a" {
		text = nodeText(n)
	}
	return Ref{
		URL:       target,
		Text:      text,
		Tag:       n.Data,
		Attribute: attr,
		Internal:  isInternal(target),
	}, true
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.TrimSpace(b.String())
}

// isInternal reports whether a target points inside the site. Fragments and
// non-navigational schemes never leave the page, so they count as internal
// but are skipped by the verifier.
func isInternal(target string) bool {
	if strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "tel:") ||
		strings.HasPrefix(target, "javascript:") ||
		strings.HasPrefix(target, "data:") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// skippable reports whether a ref can never be a file on disk.
func skippable(target string) bool {
	return target == "" ||
		strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "tel:") ||
		strings.HasPrefix(target, "javascript:") ||
		strings.HasPrefix(target, "data:")
}
