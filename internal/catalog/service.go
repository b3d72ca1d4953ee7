package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"passgate/internal/audit"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/sentinel"
)

// Service applies catalog rules on top of a Store: unique names, partial
// edits, and operator audit events.
type Service struct {
	store  Store
	logger *slog.Logger
	trail  audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditRecorder(trail audit.Recorder) Option {
	return func(s *Service) {
		s.trail = trail
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store is required")
	}

	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns the catalog ordered by item name.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list catalog")
	}
	return items, nil
}

// Get returns a single item by name.
func (s *Service) Get(ctx context.Context, name string) (Item, error) {
	item, err := s.store.Get(ctx, name)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Item{}, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("item %q not found", name))
	}
	if err != nil {
		return Item{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get item")
	}
	return item, nil
}

// Add inserts a new sellable item; names are unique across the catalog.
func (s *Service) Add(ctx context.Context, item Item) error {
	if err := item.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	}

	if err := s.store.Put(ctx, item); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("an item named %q already exists", item.Name))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store item")
	}

	s.record(ctx, audit.Event{Action: audit.ActionItemAdded, ItemName: item.Name})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "item added",
			"item", item.Name,
			"gamepass_id", item.GamePassID,
		)
	}
	return nil
}

// Edit applies a partial update to an existing item.
func (s *Service) Edit(ctx context.Context, name string, upd Update) (Item, error) {
	if upd.GamePassID == nil && upd.FileURL == nil {
		return Item{}, dErrors.New(dErrors.CodeValidation, "nothing to update")
	}

	item, err := s.store.Update(ctx, name, upd)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Item{}, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("item %q not found", name))
	}
	if err != nil {
		return Item{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update item")
	}

	s.record(ctx, audit.Event{Action: audit.ActionItemUpdated, ItemName: name})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "item updated", "item", name)
	}
	return item, nil
}

// Remove deletes an item from the catalog. Sessions that already captured
// the item keep their snapshot.
func (s *Service) Remove(ctx context.Context, name string) error {
	err := s.store.Remove(ctx, name)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("item %q not found", name))
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove item")
	}

	s.record(ctx, audit.Event{Action: audit.ActionItemRemoved, ItemName: name})
	if s.logger != nil {
		s.logger.InfoContext(ctx, "item removed", "item", name)
	}
	return nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Record(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit record failed",
			"action", event.Action,
			"error", err,
		)
	}
}
