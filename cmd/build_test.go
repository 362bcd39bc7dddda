package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sidetree/api"
)

const testManifest = `
sidebar "docs" {
  doc "intro" {}

  category "Examples" {
    include "Examples" {}
    link "More Examples" {
      href = "https://github.com/acme/examples"
    }
  }
}
`

const testTOC = `[
  {"label": "Examples", "items": ["examples/basic", "examples/advanced"]}
]`

func setupInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifestPath = filepath.Join(dir, "sidebar.hcl")
	tocPath = filepath.Join(dir, "examples-toc.json")
	sidebarName = ""
	require.NoError(t, os.WriteFile(manifestPath, []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(tocPath, []byte(testTOC), 0o644))
	return dir
}

func TestResolveSidebar(t *testing.T) {
	setupInputs(t)

	resolved, err := resolveSidebar()
	require.NoError(t, err)

	assert.Equal(t, []string{"intro", "examples/basic", "examples/advanced"}, resolved.DocIDs())

	examples := resolved.Items[1]
	require.Equal(t, api.KindCategory, examples.Kind)
	require.Len(t, examples.Items, 3)
	assert.Equal(t, api.KindLink, examples.Items[2].Kind, "spliced items come before the static link")
}

func TestResolveSidebarBadTOC(t *testing.T) {
	dir := setupInputs(t)
	require.NoError(t, os.WriteFile(tocPath, []byte("{not json"), 0o644))

	_, err := resolveSidebar()
	require.Error(t, err)

	// No artifact was produced along the way.
	_, statErr := os.Stat(filepath.Join(dir, "sidebar.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteArtifact(t *testing.T) {
	dir := setupInputs(t)

	resolved, err := resolveSidebar()
	require.NoError(t, err)

	output := filepath.Join(dir, "sidebar.json")
	require.NoError(t, writeArtifact(resolved, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var reread api.Sidebar
	require.NoError(t, json.Unmarshal(data, &reread))
	assert.Equal(t, resolved.DocIDs(), reread.DocIDs())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".sidebar-")
	}
}
