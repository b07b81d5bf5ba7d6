package markdown

import "strings"

// extractPermissiveLinks scans line-by-line for inline links and reference
// definitions whose destinations contain whitespace. CommonMark rejects those
// destinations, so goldmark never reports them, but they still resolve in
// several renderers and must be validated.
//
// Fenced code blocks, indented code, and inline code spans are skipped so
// example snippets never produce links.
func extractPermissiveLinks(body []byte) []Link {
	out := make([]Link, 0)

	inFence := false
	fence := ""
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			marker := trimmed[:3]
			switch {
			case !inFence:
				inFence, fence = true, marker
			case fence == marker:
				inFence, fence = false, ""
			}
			continue
		}
		if inFence || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		clean := stripInlineCodeSpans(line)
		out = append(out, permissiveLinksInLine(clean)...)
		if link, ok := permissiveReferenceDefinition(clean); ok {
			out = append(out, link)
		}
	}

	return out
}

// permissiveLinksInLine finds `](dest)` and `![...](dest)` pairs whose
// destination contains whitespace.
func permissiveLinksInLine(line string) []Link {
	links := make([]Link, 0)

	for i := 0; i+1 < len(line); i++ {
		if line[i] != ']' || line[i+1] != '(' {
			continue
		}

		open := strings.LastIndex(line[:i], "[")
		if open == -1 {
			continue
		}
		end := strings.Index(line[i+2:], ")")
		if end == -1 {
			continue
		}

		dest := line[i+2 : i+2+end]
		if !strings.ContainsAny(dest, " \t") {
			continue // goldmark already reported it
		}

		kind := LinkKindInline
		if open > 0 && line[open-1] == '!' {
			kind = LinkKindImage
		}
		links = append(links, Link{Kind: kind, Destination: dest, Text: line[open+1 : i]})
	}

	return links
}

// permissiveReferenceDefinition handles `[label]: dest "title"` lines.
func permissiveReferenceDefinition(line string) (Link, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return Link{}, false
	}

	label, after, ok := strings.Cut(trimmed, "]:")
	if !ok {
		return Link{}, false
	}
	// Footnote definitions ([^1]: ...) are not reference link definitions.
	if strings.HasPrefix(strings.TrimSpace(label), "[^") {
		return Link{}, false
	}

	dest := strings.TrimSpace(after)
	if before, _, ok := strings.Cut(dest, " \""); ok {
		dest = before
	} else if before, _, ok := strings.Cut(dest, " '"); ok {
		dest = before
	}
	dest = strings.TrimSpace(dest)

	if dest == "" || !strings.ContainsAny(dest, " \t") {
		return Link{}, false
	}
	return Link{Kind: LinkKindReferenceDefinition, Destination: dest}, true
}

// stripInlineCodeSpans removes backtick-delimited spans so links inside
// inline code are not extracted.
func stripInlineCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '`' {
			out.WriteByte(s[i])
			i++
			continue
		}

		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}

		marker := strings.Repeat("`", run)
		closeRel := strings.Index(s[i+run:], marker)
		if closeRel == -1 {
			// Unclosed code span; keep the backticks and continue.
			out.WriteString(marker)
			i += run
			continue
		}

		i = i + run + closeRel + run
	}

	return out.String()
}
