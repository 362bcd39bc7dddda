package tree

import "sync"

// HotSwap is a thread-safe Tree wrapper that allows replacing the backing
// store while a mount is live. Watch mode rebuilds into a fresh Store and
// swaps it in atomically.
type HotSwap struct {
	mu      sync.RWMutex
	current Tree
}

func NewHotSwap(initial Tree) *HotSwap {
	return &HotSwap{current: initial}
}

// Swap atomically replaces the current tree.
func (h *HotSwap) Swap(next Tree) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = next
}

// GetNode delegates to the current tree.
func (h *HotSwap) GetNode(id string) (*Node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.GetNode(id)
}

// ListChildren delegates to the current tree.
func (h *HotSwap) ListChildren(id string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.ListChildren(id)
}

// ReadContent delegates to the current tree.
func (h *HotSwap) ReadContent(id string, buf []byte, offset int64) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.ReadContent(id, buf, offset)
}
