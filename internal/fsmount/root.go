// Package fsmount exposes the resolved navigation tree as a read-only FUSE
// filesystem via cgofuse. It is the alternative to the NFS preview for
// platforms with a FUSE host installed.
package fsmount

import (
	"path/filepath"
	"time"

	"github.com/winfsp/cgofuse/fuse"

	"github.com/agentic-research/sidetree/internal/tree"
)

// NavTreeFS implements the FUSE interface from cgofuse.
type NavTreeFS struct {
	fuse.FileSystemBase
	Tree      tree.Tree
	mountTime fuse.Timespec
}

func NewNavTreeFS(t tree.Tree) *NavTreeFS {
	return &NavTreeFS{
		Tree:      t,
		mountTime: fuse.NewTimespec(time.Now()),
	}
}

// Open checks that the path names a regular file node.
func (fs *NavTreeFS) Open(path string, flags int) (int, uint64) {
	node, err := fs.Tree.GetNode(path)
	if err != nil || node.Mode.IsDir() {
		return -fuse.ENOENT, ^uint64(0)
	}
	return 0, 0
}

// Getattr (Stat)
func (fs *NavTreeFS) Getattr(path string, stat *fuse.Stat_t, fh uint64) int {
	stat.Atim = fs.mountTime
	stat.Mtim = fs.mountTime
	stat.Ctim = fs.mountTime
	stat.Birthtim = fs.mountTime

	// Root is always there
	if path == "/" {
		stat.Mode = fuse.S_IFDIR | 0o555
		stat.Nlink = 2
		return 0
	}

	node, err := fs.Tree.GetNode(path)
	if err != nil {
		return -fuse.ENOENT
	}

	if node.Mode.IsDir() {
		stat.Mode = fuse.S_IFDIR | 0o555
		stat.Nlink = 2
		return 0
	}

	stat.Mode = fuse.S_IFREG | 0o444
	stat.Nlink = 1
	stat.Size = node.ContentSize()
	if !node.ModTime.IsZero() {
		ts := fuse.NewTimespec(node.ModTime)
		stat.Mtim = ts
		stat.Ctim = ts
	}
	return 0
}

// Readdir (List directory)
func (fs *NavTreeFS) Readdir(path string, fill func(name string, stat *fuse.Stat_t, ofst int64) bool, ofst int64, fh uint64) int {
	children, err := fs.Tree.ListChildren(path)
	if err != nil {
		return -fuse.ENOENT
	}

	fill(".", nil, 0)
	fill("..", nil, 0)
	for _, childID := range children {
		fill(filepath.Base(childID), nil, 0)
	}
	return 0
}

// Read (Cat file)
func (fs *NavTreeFS) Read(path string, buff []byte, ofst int64, fh uint64) int {
	node, err := fs.Tree.GetNode(path)
	if err != nil || node.Mode.IsDir() {
		return -fuse.ENOENT
	}

	n, err := fs.Tree.ReadContent(path, buff, ofst)
	if err != nil {
		return -fuse.EIO
	}
	return n
}
