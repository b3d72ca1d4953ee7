package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"passgate/pkg/platform/sentinel"
)

const (
	// Redis key prefix for catalog items
	itemKeyPrefix = "catalog:item:"
	// Set holding every item name for listing
	itemIndexKey = "catalog:items"
)

// RedisStore is a Redis-backed catalog store for multi-instance deployments
// that do not want to run PostgreSQL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed catalog store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func itemKey(name string) string { return itemKeyPrefix + name }

func (s *RedisStore) List(ctx context.Context) ([]Item, error) {
	names, err := s.client.SMembers(ctx, itemIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list catalog index: %w", err)
	}
	sort.Strings(names)

	items := make([]Item, 0, len(names))
	for _, name := range names {
		item, err := s.Get(ctx, name)
		if err != nil {
			// Index and item can drift if a delete half-fails; skip strays.
			if err == sentinel.ErrNotFound {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RedisStore) Get(ctx context.Context, name string) (Item, error) {
	raw, err := s.client.Get(ctx, itemKey(name)).Result()
	if err == redis.Nil {
		return Item{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get catalog item: %w", err)
	}
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return Item{}, fmt.Errorf("decode catalog item: %w", err)
	}
	return item, nil
}

func (s *RedisStore) Put(ctx context.Context, item Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode catalog item: %w", err)
	}
	ok, err := s.client.SetNX(ctx, itemKey(item.Name), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("put catalog item: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	if err := s.client.SAdd(ctx, itemIndexKey, item.Name).Err(); err != nil {
		return fmt.Errorf("index catalog item: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, name string, upd Update) (Item, error) {
	item, err := s.Get(ctx, name)
	if err != nil {
		return Item{}, err
	}
	if upd.GamePassID != nil {
		item.GamePassID = *upd.GamePassID
	}
	if upd.FileURL != nil {
		item.FileURL = *upd.FileURL
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return Item{}, fmt.Errorf("encode catalog item: %w", err)
	}
	if err := s.client.Set(ctx, itemKey(name), raw, 0).Err(); err != nil {
		return Item{}, fmt.Errorf("update catalog item: %w", err)
	}
	return item, nil
}

func (s *RedisStore) Remove(ctx context.Context, name string) error {
	removed, err := s.client.Del(ctx, itemKey(name)).Result()
	if err != nil {
		return fmt.Errorf("remove catalog item: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	if err := s.client.SRem(ctx, itemIndexKey, name).Err(); err != nil {
		return fmt.Errorf("unindex catalog item: %w", err)
	}
	return nil
}
