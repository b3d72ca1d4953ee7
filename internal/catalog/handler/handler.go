// Package handler exposes the operator catalog API. Every route is guarded
// by the operator middleware; buyers never see these endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"passgate/internal/catalog"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/requestcontext"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]catalog.Item, error)
	Add(ctx context.Context, item catalog.Item) error
	Edit(ctx context.Context, name string, upd catalog.Update) (catalog.Item, error)
	Remove(ctx context.Context, name string) error
}

// Handler wires catalog admin endpoints to the catalog service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a catalog handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts catalog admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/items", h.HandleList)
	r.Post("/admin/items", h.HandleAdd)
	r.Patch("/admin/items/{name}", h.HandleEdit)
	r.Delete("/admin/items/{name}", h.HandleRemove)
}

// HandleList handles GET /admin/items.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItems(items))
}

// HandleAdd handles POST /admin/items.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item := req.toItem()
	if err := h.service.Add(ctx, item); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "item uploaded",
		"request_id", requestID,
		"operator", requestcontext.ActorID(ctx),
		"item", item.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromItem(item))
}

// HandleEdit handles PATCH /admin/items/{name}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeAndPrepare[EditItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.Edit(ctx, name, req.toUpdate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "item edited",
		"request_id", requestID,
		"operator", requestcontext.ActorID(ctx),
		"item", name,
	)
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

// HandleRemove handles DELETE /admin/items/{name}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if err := h.service.Remove(ctx, name); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "item deleted",
		"request_id", requestcontext.RequestID(ctx),
		"operator", requestcontext.ActorID(ctx),
		"item", name,
	)
	w.WriteHeader(http.StatusNoContent)
}
