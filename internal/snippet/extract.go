// Package snippet extracts fenced code blocks from docs pages and lints
// them: blocks with a known language tag are parsed with tree-sitter and
// syntax errors are reported with page-relative positions. Go blocks are
// additionally checked against gofumpt formatting.
package snippet

import (
	"strings"
)

// Snippet is one fenced code block lifted from a markdown page.
type Snippet struct {
	PagePath string
	Lang     string // fence info string, lowercased ("go", "python", ...)
	Line     int    // 1-indexed line of the first code line in the page
	Code     []byte
}

// Extract returns the fenced code blocks of a markdown page in document
// order. Fences without an info string are skipped, as are fences that
// never close (treated as prose, matching how renderers recover).
func Extract(pagePath string, content []byte) []Snippet {
	lines := strings.Split(string(content), "\n")

	var snippets []Snippet
	for i := 0; i < len(lines); i++ {
		marker, lang := fenceOpen(lines[i])
		if marker == "" {
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == marker {
				end = j
				break
			}
		}
		if end < 0 {
			break
		}
		if lang != "" {
			snippets = append(snippets, Snippet{
				PagePath: pagePath,
				Lang:     lang,
				Line:     i + 2,
				Code:     []byte(strings.Join(lines[i+1:end], "\n") + "\n"),
			})
		}
		i = end
	}
	return snippets
}

// fenceOpen reports whether a line opens a code fence and with which
// language tag. Returns the closing marker ("```" or "~~~") or "".
func fenceOpen(line string) (marker, lang string) {
	trimmed := strings.TrimSpace(line)
	for _, m := range []string{"```", "~~~"} {
		if !strings.HasPrefix(trimmed, m) {
			continue
		}
		info := strings.TrimSpace(strings.TrimPrefix(trimmed, m))
		// "```go {title=...}" — only the first word is the language.
		if idx := strings.IndexAny(info, " \t{"); idx >= 0 {
			info = info[:idx]
		}
		return m, strings.ToLower(info)
	}
	return "", ""
}
