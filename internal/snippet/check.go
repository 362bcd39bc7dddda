package snippet

import (
	"bytes"
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/hcl"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	sqllang "github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	yamllang "github.com/smacker/go-tree-sitter/yaml"
	"mvdan.cc/gofumpt/format"
)

// Issue is one problem found in a snippet. Line and Column are relative to
// the snippet's page, 1-indexed.
type Issue struct {
	PagePath string
	Line     int
	Column   int
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", i.PagePath, i.Line, i.Column, i.Message)
}

// Check lints one snippet. Snippets in a language without a tree-sitter
// grammar pass through clean.
func Check(s Snippet) ([]Issue, error) {
	lang := languageFor(s.Lang)
	if lang == nil {
		return nil, nil
	}

	code := s.Code
	wrapLines := 0
	if s.Lang == "go" {
		// Doc snippets are usually function bodies, not files. Wrap bare
		// fragments so the grammar sees a compilation unit.
		code, wrapLines = wrapGoFragment(code)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, code)
	if err != nil {
		return nil, fmt.Errorf("parse %s snippet at %s:%d: %w", s.Lang, s.PagePath, s.Line, err)
	}

	var issues []Issue
	collectErrors(tree.RootNode(), s, wrapLines, &issues)

	// Format-check only full-file snippets; wrapped fragments would be
	// re-indented by the formatter and always differ.
	if s.Lang == "go" && len(issues) == 0 && wrapLines == 0 {
		issues = append(issues, checkGoFormat(s, code)...)
	}
	return issues, nil
}

// CheckAll extracts and lints every snippet of a page.
func CheckAll(pagePath string, content []byte) ([]Issue, error) {
	var issues []Issue
	for _, s := range Extract(pagePath, content) {
		found, err := Check(s)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

func collectErrors(node *sitter.Node, s Snippet, wrapLines int, issues *[]Issue) {
	if node == nil {
		return
	}
	if node.IsError() || node.IsMissing() {
		// Positions are reported relative to the page; wrapper lines added
		// around bare fragments do not exist there.
		row := int(node.StartPoint().Row) - wrapLines
		col := int(node.StartPoint().Column) + 1
		if row < 0 {
			row, col = 0, 1
		}
		*issues = append(*issues, Issue{
			PagePath: s.PagePath,
			Line:     s.Line + row,
			Column:   col,
			Message:  fmt.Sprintf("%s syntax error", s.Lang),
		})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, s, wrapLines, issues)
		}
	}
}

// checkGoFormat reports when a Go snippet is not gofumpt-clean. Fragments
// that gofumpt cannot process are left alone.
func checkGoFormat(s Snippet, code []byte) []Issue {
	formatted, err := format.Source(code, format.Options{})
	if err != nil {
		return nil
	}
	if bytes.Equal(formatted, code) {
		return nil
	}
	return []Issue{{
		PagePath: s.PagePath,
		Line:     s.Line,
		Column:   1,
		Message:  "go snippet is not gofumpt-formatted",
	}}
}

// wrapGoFragment makes a statement-level snippet parseable as a file and
// returns how many lines the wrapper prepends. Snippets that already
// declare a package are returned unchanged.
func wrapGoFragment(code []byte) ([]byte, int) {
	if bytes.HasPrefix(bytes.TrimSpace(code), []byte("package ")) {
		return code, 0
	}
	var buf bytes.Buffer
	buf.WriteString("package main\n\nfunc main() {\n")
	buf.Write(code)
	buf.WriteString("}\n")
	return buf.Bytes(), 3
}

func languageFor(tag string) *sitter.Language {
	switch tag {
	case "go", "golang":
		return golang.GetLanguage()
	case "py", "python":
		return python.GetLanguage()
	case "js", "javascript":
		return javascript.GetLanguage()
	case "ts", "tsx", "typescript":
		return typescript.GetLanguage()
	case "sql":
		return sqllang.GetLanguage()
	case "hcl", "tf", "terraform":
		return hcl.GetLanguage()
	case "rs", "rust":
		return rust.GetLanguage()
	case "yaml", "yml":
		return yamllang.GetLanguage()
	default:
		return nil
	}
}
