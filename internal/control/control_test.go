package control

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "sidetree.ctl")

	c, err := OpenOrCreate(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), c.Generation())
	assert.Equal(t, "", c.ArtifactPath())

	gen, err := c.Bump("/tmp/sidebar.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, "/tmp/sidebar.json", c.ArtifactPath())
	require.NoError(t, c.Close())

	// State survives reopen.
	c, err = OpenOrCreate(path)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, uint64(1), c.Generation())
	assert.Equal(t, "/tmp/sidebar.json", c.ArtifactPath())
}

func TestPublishClearsOldPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidetree.ctl")

	c, err := OpenOrCreate(path)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Publish("/very/long/path/sidebar.json", 1))
	require.NoError(t, c.Publish("/short", 2))
	assert.Equal(t, "/short", c.ArtifactPath())
	assert.Equal(t, uint64(2), c.Generation())
}

func TestPathTooLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidetree.ctl")

	c, err := OpenOrCreate(path)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	require.Error(t, c.Publish(string(long), 1))
}

func TestRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.bin")

	c, err := OpenOrCreate(path)
	require.NoError(t, err)
	require.NoError(t, c.Publish("/a", 1))
	// Corrupt the magic by writing a different file layout.
	c.ptr.Magic = 0xDEADBEEF
	require.NoError(t, c.Close())

	_, err = OpenOrCreate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid magic")
}
