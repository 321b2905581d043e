package store

import (
	"context"
	"slices"
	"sync"

	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/graph"
	tsaio "github.com/tsa-lab/tsaview/pkg/io"
)

// Memory holds a system in memory. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	docs []graph.Document
	id   string
}

// NewMemory returns a store over docs in their given order.
func NewMemory(docs []graph.Document) *Memory {
	m := &Memory{}
	m.set(docs)
	return m
}

// LoadMemory reads a system file (JSON or YAML) into a Memory store.
func LoadMemory(path string) (*Memory, error) {
	docs, err := tsaio.ImportSystem(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(docs), nil
}

func (m *Memory) set(docs []graph.Document) {
	m.docs = docs
	m.id, _ = cache.HashJSON(docs)
}

// Count implements Store.
func (m *Memory) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// Graph implements Store.
func (m *Memory) Graph(_ context.Context, i int) (graph.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.docs) {
		return graph.Document{}, notFound(i, len(m.docs))
	}
	return m.docs[i], nil
}

// Top implements Store.
func (m *Memory) Top(_ context.Context, n int) ([]graph.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n < 0 || n > len(m.docs) {
		n = len(m.docs)
	}
	return slices.Clone(m.docs[:n]), nil
}

// Insert implements Writer. New graphs are appended.
func (m *Memory) Insert(_ context.Context, docs []graph.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(append(slices.Clone(m.docs), docs...))
	return nil
}

// ID implements Store. It is the content hash of the system.
func (m *Memory) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return "mem:" + m.id
}

// Version implements Store. The ID already follows the contents.
func (m *Memory) Version(context.Context) (string, error) { return m.ID(), nil }

// Close implements Store.
func (m *Memory) Close(context.Context) error { return nil }

var (
	_ Store  = (*Memory)(nil)
	_ Writer = (*Memory)(nil)
)
