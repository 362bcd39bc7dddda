package nfsmount

import (
	"io"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/sidetree/internal/tree"
)

// navFile implements billy.File backed by tree.ReadContent.
// Read-only: Write and Truncate return errors.
type navFile struct {
	id   string
	size int64
	tree tree.Tree
	pos  int64
}

func (f *navFile) Name() string { return f.id }

func (f *navFile) Read(p []byte) (int, error) {
	if f.pos >= f.size {
		return 0, io.EOF
	}
	n, err := f.tree.ReadContent(f.id, p, f.pos)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	f.pos += int64(n)
	if f.pos >= f.size {
		return n, io.EOF
	}
	return n, nil
}

func (f *navFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= f.size {
		return 0, io.EOF
	}
	n, err := f.tree.ReadContent(f.id, p, off)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (f *navFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = f.pos + offset
	case io.SeekEnd:
		newPos = f.size + offset
	}
	if newPos < 0 {
		newPos = 0
	}
	f.pos = newPos
	return f.pos, nil
}

func (f *navFile) Write([]byte) (int, error) { return 0, errReadOnly }
func (f *navFile) Truncate(int64) error      { return errReadOnly }
func (f *navFile) Lock() error               { return nil }
func (f *navFile) Unlock() error             { return nil }
func (f *navFile) Close() error              { return nil }

var _ billy.File = (*navFile)(nil)
