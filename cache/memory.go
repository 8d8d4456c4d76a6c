package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/zipsift"
)

// Memory is a fixed-capacity in-memory Store with LRU eviction.
//
// Capacity counts buffers, not bytes. Size the store for the working set
// of distinct archives rather than their payload volume.
type Memory struct {
	entries *lru.Cache[digest.Digest, []zipsift.Result]
}

// Interface compliance.
var _ Store = (*Memory)(nil)

// NewMemory creates a Memory store remembering at most size buffers.
func NewMemory(size int) (*Memory, error) {
	entries, err := lru.New[digest.Digest, []zipsift.Result](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Memory{entries: entries}, nil
}

// Get implements Store.
func (m *Memory) Get(key digest.Digest) ([]zipsift.Result, bool) {
	return m.entries.Get(key)
}

// Put implements Store.
func (m *Memory) Put(key digest.Digest, results []zipsift.Result) error {
	m.entries.Add(key, results)
	return nil
}

// Len reports the number of buffers currently remembered.
func (m *Memory) Len() int {
	return m.entries.Len()
}

// Purge drops every recorded buffer.
func (m *Memory) Purge() {
	m.entries.Purge()
}
