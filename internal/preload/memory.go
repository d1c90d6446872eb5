package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

// MemoryLayer is the near cache tier: an in-process byte store with a size
// cap and oldest-first eviction.
type MemoryLayer struct {
	source   Source
	maxBytes int64

	mu      sync.Mutex
	entries map[uuid.UUID]*memoryEntry
	size    int64
}

func NewMemoryLayer(source Source, maxBytes int64) *MemoryLayer {
	return &MemoryLayer{
		source:   source,
		maxBytes: maxBytes,
		entries:  map[uuid.UUID]*memoryEntry{},
	}
}

func (m *MemoryLayer) Name() string { return "MEMORY" }

func (m *MemoryLayer) Warm(ctx context.Context, id uuid.UUID) (WarmResult, error) {
	m.mu.Lock()
	if entry, ok := m.entries[id]; ok {
		size := int64(len(entry.data))
		m.mu.Unlock()
		return WarmResult{Status: StatusSkipped, SizeBytes: size}, nil
	}
	m.mu.Unlock()

	data, err := m.source.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return WarmResult{Status: StatusSkipped}, nil
		}
		return WarmResult{}, err
	}

	// An object larger than the whole tier is a skip, not a failure.
	if int64(len(data)) > m.maxBytes {
		return WarmResult{Status: StatusSkipped, SizeBytes: int64(len(data))}, nil
	}

	if err := m.store(id, data); err != nil {
		return WarmResult{}, err
	}
	return WarmResult{Status: StatusWarmed, SizeBytes: int64(len(data))}, nil
}

func (m *MemoryLayer) Get(id uuid.UUID) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

func (m *MemoryLayer) Stats() (objects int, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), m.size
}

func (m *MemoryLayer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[uuid.UUID]*memoryEntry{}
	m.size = 0
}

func (m *MemoryLayer) store(id uuid.UUID, data []byte) error {
	size := int64(len(data))

	m.mu.Lock()
	defer m.mu.Unlock()

	for m.size+size > m.maxBytes {
		if !m.evictOldestLocked() {
			return fmt.Errorf("unable to free space for object of size %d", size)
		}
	}

	m.entries[id] = &memoryEntry{data: data, storedAt: time.Now()}
	m.size += size
	return nil
}

func (m *MemoryLayer) evictOldestLocked() bool {
	var oldest uuid.UUID
	var oldestAt time.Time
	found := false
	for id, entry := range m.entries {
		if !found || entry.storedAt.Before(oldestAt) {
			oldest = id
			oldestAt = entry.storedAt
			found = true
		}
	}
	if !found {
		return false
	}
	m.size -= int64(len(m.entries[oldest].data))
	delete(m.entries, oldest)
	return true
}
