package index

import (
	"os"
	"path/filepath"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	pages := map[string]string{
		"getting_started.md": "---\nid: getting_started\ntitle: Getting Started\n---\n\n# Welcome\n\nInstall the validator package.\n",
		"guides/guard.md":    "# Guard\n\nA guard wraps a validator pipeline.\n",
		"guides/rail.mdx":    "---\nid: rail_spec\n---\n\nRail files describe validator output schemas.\n",
		"notes.txt":          "not a docs page",
	}
	for name, content := range pages {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestScan(t *testing.T) {
	pages, err := Scan(testDocs(t))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	byID := make(map[string]Page)
	for _, p := range pages {
		byID[p.DocID] = p
	}

	started := byID["getting_started"]
	assert.Equal(t, "Getting Started", started.Title)
	assert.Equal(t, "getting_started.md", started.Path)
	assert.Contains(t, started.Terms, "validator")
	assert.NotContains(t, started.Terms, "id", "front matter must not be tokenized")

	// No front matter: doc id falls back to the relative path, title to
	// the first heading.
	guard := byID["guides/guard"]
	assert.Equal(t, "Guard", guard.Title)

	// Front-matter id wins over the path.
	rail := byID["rail_spec"]
	assert.Equal(t, "guides/rail.mdx", rail.Path)
}

func TestScanDeduplicatesTerms(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "a.md", []byte("guard guard guard\n"), 0o644))

	pages, err := Scan(fs)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"guard"}, pages[0].Terms)
}

func TestScanBadFrontMatter(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "bad.md", []byte("---\nid: [\n---\nbody\n"), 0o644))

	_, err := Scan(fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "front matter")
}

func TestBuildAndQuery(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docs.db")

	n, err := Build(testDocs(t), dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	ok, err := r.HasDoc("getting_started")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasDoc("ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	page, err := r.Doc("rail_spec")
	require.NoError(t, err)
	assert.Equal(t, "guides/rail.mdx", page.Path)

	_, err = r.Doc("ghost")
	require.ErrorIs(t, err, ErrNoPage)
}

func TestSearch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "docs.db")
	_, err := Build(testDocs(t), dbPath)
	require.NoError(t, err)

	r, err := OpenReader(dbPath)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	// "validator" appears in all three pages.
	docs, err := r.Search("validator")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"getting_started", "guides/guard", "rail_spec"}, docs)

	docs, err = r.Search("pipeline")
	require.NoError(t, err)
	assert.Equal(t, []string{"guides/guard"}, docs)

	docs, err = r.Search("absent")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestOpenReaderRejectsNonIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-db.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := OpenReader(path)
	require.Error(t, err)
}
