package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryClient keeps items in process. Used by tests and the default local run.
type MemoryClient struct {
	mu         sync.RWMutex
	partitions map[string]map[string][]byte
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{partitions: make(map[string]map[string][]byte)}
}

func (m *MemoryClient) Put(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(item.PartitionKey, item.SortKey); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	part, ok := m.partitions[item.PartitionKey]
	if !ok {
		part = make(map[string][]byte)
		m.partitions[item.PartitionKey] = part
	}
	part[item.SortKey] = append([]byte(nil), item.Data...)
	return nil
}

func (m *MemoryClient) Get(ctx context.Context, partitionKey, sortKey string) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	if err := validateKey(partitionKey, sortKey); err != nil {
		return Item{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.partitions[partitionKey][sortKey]
	if !ok {
		return Item{}, ErrNotFound
	}
	return Item{PartitionKey: partitionKey, SortKey: sortKey, Data: append([]byte(nil), data...)}, nil
}

func (m *MemoryClient) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []Item
	for sk, data := range m.partitions[partitionKey] {
		if !strings.HasPrefix(sk, sortKeyPrefix) {
			continue
		}
		items = append(items, Item{PartitionKey: partitionKey, SortKey: sk, Data: append([]byte(nil), data...)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SortKey < items[j].SortKey })
	return items, nil
}

func (m *MemoryClient) Close() error { return nil }
