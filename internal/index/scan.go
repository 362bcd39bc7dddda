// Package index builds and queries the docs index: a SQLite database of
// every page in the docs directory plus a term index with roaring bitmap
// postings. The sidebar checker uses it to verify doc refs, the search
// command to find pages by word.
package index

import (
	"fmt"
	"os"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// Page is one scanned docs page.
type Page struct {
	DocID string // front-matter id, or the extension-less relative path
	Title string
	Path  string // path relative to the docs root
	Terms []string
}

// frontMatter is the subset of page front matter the index cares about.
type frontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// Scan walks the docs filesystem and returns every markdown page in
// deterministic (lexical walk) order.
func Scan(docs billy.Filesystem) ([]Page, error) {
	var pages []Page
	err := walk(docs, "", func(p string) error {
		ext := path.Ext(p)
		if ext != ".md" && ext != ".mdx" {
			return nil
		}
		content, err := util.ReadFile(docs, p)
		if err != nil {
			return fmt.Errorf("read page %s: %w", p, err)
		}
		page, err := parsePage(p, content)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// walk is a minimal lexical-order directory walk over a billy filesystem.
func walk(fs billy.Filesystem, dir string, fn func(path string) error) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) && dir == "" {
			return fmt.Errorf("docs directory: %w", err)
		}
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walk(fs, p, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func parsePage(relPath string, content []byte) (Page, error) {
	page := Page{
		DocID: strings.TrimSuffix(relPath, path.Ext(relPath)),
		Path:  relPath,
	}

	fm, body := splitFrontMatter(content)
	if len(fm) > 0 {
		var meta frontMatter
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return Page{}, fmt.Errorf("page %s: front matter: %w", relPath, err)
		}
		if meta.ID != "" {
			page.DocID = meta.ID
		}
		page.Title = meta.Title
	}
	if page.Title == "" {
		page.Title = firstHeading(body)
	}
	page.Terms = tokenize(body)
	return page, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// page body. Pages without front matter return (nil, content).
func splitFrontMatter(content []byte) (fm, body []byte) {
	const delim = "---\n"
	s := string(content)
	if !strings.HasPrefix(s, delim) {
		return nil, content
	}
	rest := s[len(delim):]
	end := strings.Index(rest, "\n"+delim)
	if end < 0 {
		return nil, content
	}
	return []byte(rest[:end]), []byte(rest[end+len(delim)+1:])
}

// firstHeading returns the text of the first markdown heading, if any.
func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}

// tokenize extracts lowercase word terms of three or more characters,
// deduplicated, in first-seen order.
func tokenize(body []byte) []string {
	seen := make(map[string]bool)
	var terms []string
	var word strings.Builder

	flush := func() {
		if word.Len() >= 3 {
			t := word.String()
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
		word.Reset()
	}

	for _, r := range strings.ToLower(string(body)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return terms
}
