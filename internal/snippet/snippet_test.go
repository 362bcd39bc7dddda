package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	page := "# Guide\n" +
		"\n" +
		"```go\n" +
		"x := 1\n" +
		"```\n" +
		"\n" +
		"prose\n" +
		"\n" +
		"~~~python\n" +
		"print(\"hi\")\n" +
		"~~~\n" +
		"\n" +
		"```\n" +
		"no language tag\n" +
		"```\n"

	snippets := Extract("guide.md", []byte(page))
	require.Len(t, snippets, 2)

	assert.Equal(t, "go", snippets[0].Lang)
	assert.Equal(t, 4, snippets[0].Line)
	assert.Equal(t, "x := 1\n", string(snippets[0].Code))

	assert.Equal(t, "python", snippets[1].Lang)
	assert.Equal(t, "print(\"hi\")\n", string(snippets[1].Code))
}

func TestExtractInfoStringAttributes(t *testing.T) {
	page := "```go {title=\"main.go\"}\nx := 1\n```\n"
	snippets := Extract("p.md", []byte(page))
	require.Len(t, snippets, 1)
	assert.Equal(t, "go", snippets[0].Lang)
}

func TestExtractUnclosedFence(t *testing.T) {
	page := "```go\nx := 1\nnever closed\n"
	assert.Empty(t, Extract("p.md", []byte(page)))
}

func TestCheckValidGoFragment(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "go",
		Line:     3,
		Code:     []byte("\tx := 1\n\t_ = x\n"),
	})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckGoSyntaxError(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "go",
		Line:     10,
		Code:     []byte("x := ((\n"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Equal(t, "p.md", issues[0].PagePath)
	// Fragment wrapping must not shift the reported position: the bad
	// line is the snippet's first page line.
	assert.Equal(t, 10, issues[0].Line)
	assert.Contains(t, issues[0].Message, "go")
}

func TestCheckGoFragmentErrorOnLaterLine(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "go",
		Line:     20,
		Code:     []byte("y := 1\n_ = y\nx := ((\n"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Equal(t, 22, issues[0].Line)
}

func TestCheckPythonSyntaxError(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "python",
		Line:     1,
		Code:     []byte("def f(:\n    pass\n"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}

func TestCheckUnknownLanguagePasses(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "brainfuck",
		Line:     1,
		Code:     []byte("+[----->+++<]>+.\n"),
	})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckGoFormat(t *testing.T) {
	issues, err := Check(Snippet{
		PagePath: "p.md",
		Lang:     "go",
		Line:     1,
		Code:     []byte("package main\n\nfunc main() {\nx:=1\n_=x\n}\n"),
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "gofumpt")
}

func TestCheckAll(t *testing.T) {
	page := "intro\n\n```go\nx := ((\n```\n\n```text\nwhatever\n```\n"
	issues, err := CheckAll("broken.md", []byte(page))
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}
