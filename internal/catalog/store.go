package catalog

import "context"

// Store persists catalog items. Implementations return sentinel errors from
// pkg/platform/sentinel so the service can translate them into domain errors.
type Store interface {
	// List returns all items ordered by name.
	List(ctx context.Context) ([]Item, error)
	// Get returns the item with the given name or sentinel.ErrNotFound.
	Get(ctx context.Context, name string) (Item, error)
	// Put inserts a new item; returns sentinel.ErrConflict if the name exists.
	Put(ctx context.Context, item Item) error
	// Update applies a partial edit; returns sentinel.ErrNotFound if missing.
	Update(ctx context.Context, name string, upd Update) (Item, error)
	// Remove deletes an item; returns sentinel.ErrNotFound if missing.
	Remove(ctx context.Context, name string) error
}
