package nfsmount

import (
	"io"
	"io/fs"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sidetree/internal/tree"
)

func newTestTree() *tree.Store {
	store := tree.NewStore()

	store.AddRoot(&tree.Node{
		ID:   "examples",
		Mode: fs.ModeDir,
		Children: []string{
			"examples/guard.md",
			"examples/more-examples.url",
		},
	})
	store.AddNode(&tree.Node{
		ID:   "examples/guard.md",
		Mode: 0,
		Data: []byte("# Guardrails with any LLM\n"),
	})
	store.AddNode(&tree.Node{
		ID:   "examples/more-examples.url",
		Mode: 0,
		Data: []byte("More Examples\nhttps://github.com/example/repo\n"),
	})

	return store
}

func TestStatRoot(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	info, err := nfs.Stat("/")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "/", info.Name())
}

func TestStatFile(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	info, err := nfs.Stat("/examples/guard.md")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "guard.md", info.Name())
	assert.Equal(t, int64(26), info.Size())
}

func TestStatDir(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	info, err := nfs.Stat("/examples")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "examples", info.Name())
}

func TestStatNotFound(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	_, err := nfs.Stat("/nonexistent")
	assert.True(t, os.IsNotExist(err))
}

func TestReadDir(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	entries, err := nfs.ReadDir("/examples")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Contains(t, names, "guard.md")
	assert.Contains(t, names, "more-examples.url")
}

func TestReadDirOnFile(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	_, err := nfs.ReadDir("/examples/guard.md")
	require.Error(t, err)
}

func TestOpenAndRead(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	f, err := nfs.Open("/examples/guard.md")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "# Guardrails with any LLM\n", string(content))
}

func TestOpenDirFails(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	_, err := nfs.Open("/examples")
	require.Error(t, err)
}

func TestReadAt(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	f, err := nfs.Open("/examples/guard.md")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	buf := make([]byte, 10)
	n, err := f.ReadAt(buf, 2)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	assert.Equal(t, "Guardrails", string(buf[:n]))
}

func TestWritesRejected(t *testing.T) {
	nfs := NewNavFS(newTestTree())

	_, err := nfs.Create("/examples/new.md")
	assert.ErrorIs(t, err, errReadOnly)

	_, err = nfs.OpenFile("/examples/guard.md", os.O_RDWR, 0)
	assert.ErrorIs(t, err, errReadOnly)

	assert.ErrorIs(t, nfs.Remove("/examples/guard.md"), errReadOnly)
	assert.ErrorIs(t, nfs.Rename("/examples/guard.md", "/x"), errReadOnly)
	assert.ErrorIs(t, nfs.MkdirAll("/newdir", 0o755), errReadOnly)

	f, err := nfs.Open("/examples/guard.md")
	require.NoError(t, err)
	_, err = f.Write([]byte("nope"))
	assert.ErrorIs(t, err, errReadOnly)
}

func TestHotSwapVisibleThroughMount(t *testing.T) {
	hs := tree.NewHotSwap(newTestTree())
	nfs := NewNavFS(hs)

	next := tree.NewStore()
	next.AddRoot(&tree.Node{ID: "changelog.md", Data: []byte("v2\n")})
	hs.Swap(next)

	entries, err := nfs.ReadDir("/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "changelog.md", entries[0].Name())
}

func TestServerStartsAndStops(t *testing.T) {
	srv, err := NewServer(NewNavFS(newTestTree()))
	require.NoError(t, err)

	// The listener should be accepting connections.
	conn, err := net.Dial("tcp", srv.listener.Addr().String())
	require.NoError(t, err)
	_ = conn.Close()

	require.NoError(t, srv.Close())
}
