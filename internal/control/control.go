// Package control maintains a memory-mapped control file for serve mode.
// After every successful rebuild the generation counter and artifact path
// are updated in place, so external tooling can poll a single page of
// shared memory instead of re-reading the sidebar artifact.
package control

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ControlSize = 4096       // 1 page
	Magic       = 0x53494454 // 'SIDT'
)

// Block is the on-disk layout of the control file. Fixed-size fields only,
// so readers in other processes can map it directly.
type Block struct {
	Magic        uint32
	Version      uint32
	Generation   uint64 // Atomic
	ArtifactPath [256]byte
	Padding      [ControlSize - 272]byte
}

// Controller manages the memory-mapped control file.
type Controller struct {
	path string
	file *os.File
	data []byte
	ptr  *Block
}

// OpenOrCreate opens or creates a control file at the given path.
func OpenOrCreate(path string) (*Controller, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open control file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() < ControlSize {
		if err := f.Truncate(ControlSize); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("truncate: %w", err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, ControlSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: %w", err)
	}

	ptr := (*Block)(unsafe.Pointer(&data[0]))

	// Initialize if new
	if ptr.Magic == 0 {
		ptr.Magic = Magic
		ptr.Version = 1
	} else if ptr.Magic != Magic {
		magic := ptr.Magic
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, fmt.Errorf("invalid magic: %x", magic)
	}

	return &Controller{
		path: path,
		file: f,
		data: data,
		ptr:  ptr,
	}, nil
}

// Generation returns the current build generation atomically.
func (c *Controller) Generation() uint64 {
	return atomic.LoadUint64(&c.ptr.Generation)
}

// ArtifactPath returns the path of the most recently published artifact.
func (c *Controller) ArtifactPath() string {
	b := c.ptr.ArtifactPath[:]
	for i, v := range b {
		if v == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Publish records a new artifact. The path is written before the
// generation store so readers that observe the new generation see the
// matching path.
func (c *Controller) Publish(artifactPath string, generation uint64) error {
	if len(artifactPath) >= len(c.ptr.ArtifactPath) {
		return fmt.Errorf("artifact path too long (max %d)", len(c.ptr.ArtifactPath)-1)
	}

	copy(c.ptr.ArtifactPath[:], artifactPath)
	for i := len(artifactPath); i < len(c.ptr.ArtifactPath); i++ {
		c.ptr.ArtifactPath[i] = 0
	}

	atomic.StoreUint64(&c.ptr.Generation, generation)
	return nil
}

// Bump publishes the artifact under the next generation and returns it.
func (c *Controller) Bump(artifactPath string) (uint64, error) {
	gen := c.Generation() + 1
	if err := c.Publish(artifactPath, gen); err != nil {
		return 0, err
	}
	return gen, nil
}

// Close unmaps and closes the control file.
func (c *Controller) Close() error {
	if err := unix.Munmap(c.data); err != nil {
		return err
	}
	return c.file.Close()
}
