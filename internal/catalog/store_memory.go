package catalog

import (
	"context"
	"sort"
	"sync"

	"passgate/pkg/platform/sentinel"
)

// MemoryStore is the default in-process catalog store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Item)}
}

func (s *MemoryStore) List(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[name]
	if !ok {
		return Item{}, sentinel.ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) Put(_ context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.Name]; exists {
		return sentinel.ErrConflict
	}
	s.items[item.Name] = item
	return nil
}

func (s *MemoryStore) Update(_ context.Context, name string, upd Update) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[name]
	if !ok {
		return Item{}, sentinel.ErrNotFound
	}
	if upd.GamePassID != nil {
		item.GamePassID = *upd.GamePassID
	}
	if upd.FileURL != nil {
		item.FileURL = *upd.FileURL
	}
	s.items[name] = item
	return item, nil
}

func (s *MemoryStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, name)
	return nil
}
