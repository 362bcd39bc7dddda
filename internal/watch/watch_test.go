package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncedBatch(t *testing.T) {
	dir := t.TempDir()

	w, err := New(50 * time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// A burst of writes to the same file collapses into one batch.
	path := filepath.Join(dir, "sidebar.hcl")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("sidebar \"docs\" {}\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case batch := <-w.C:
		assert.Contains(t, batch, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}

	// Nothing further without new events.
	select {
	case batch := <-w.C:
		t.Fatalf("unexpected second batch: %v", batch)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestAddRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "guides")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	w, err := New(30 * time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(sub, "intro.md")
	require.NoError(t, os.WriteFile(path, []byte("# Intro\n"), 0o644))

	select {
	case batch := <-w.C:
		assert.Contains(t, batch, path)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered for subdirectory change")
	}
}
