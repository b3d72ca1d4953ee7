// Package gateway exposes the buyer interaction surface over HTTP. A chat
// adapter translates platform events (menu choices, button presses, direct
// messages) into these endpoints, each attributed to an actor identity.
package gateway

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"passgate/internal/messenger"
	"passgate/internal/purchase"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/requestcontext"
)

// Handler wires interaction endpoints to the purchase manager.
type Handler struct {
	manager *purchase.Manager
	hub     *messenger.Hub
	logger  *slog.Logger
}

// New constructs the gateway handler.
func New(manager *purchase.Manager, hub *messenger.Hub, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, hub: hub, logger: logger}
}

// Register mounts interaction endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/store/browse", h.HandleBrowse)
	r.Post("/store/select", h.HandleSelect)
	r.Post("/sessions/{sessionID}/confirm", h.HandleConfirm)
	r.Post("/sessions/{sessionID}/cancel", h.HandleCancel)
	r.Post("/sessions/{sessionID}/message", h.HandleMessage)
}

// HandleBrowse handles POST /store/browse: the buyer asked to see the store.
func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := requestcontext.ActorID(ctx)

	menu, items, err := h.manager.OpenMenu(ctx, buyerID)
	if err != nil {
		if errors.Is(err, purchase.ErrMenuNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no items available for sale"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, menuResponse(menu.ID, items))
}

// HandleSelect handles POST /store/select: a menu choice.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SelectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.manager.Select(ctx, requestcontext.ActorID(ctx), req.MenuID, req.Item)
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromSession(session))
}

// HandleConfirm handles POST /sessions/{sessionID}/confirm: "I bought it".
// Verification runs in the background; 202 means the run started.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	err := h.manager.Confirm(ctx, sessionID, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, AckResponse{Status: "verifying"})
}

// HandleCancel handles POST /sessions/{sessionID}/cancel: "Nevermind".
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	err := h.manager.Cancel(ctx, sessionID, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AckResponse{Status: "cancelled"})
}

// HandleMessage handles POST /sessions/{sessionID}/message: an inbound
// direct message from the buyer, routed to whatever wait is suspended on
// that identity.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	req, ok := httputil.DecodeAndPrepare[MessageRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.manager.Session(sessionID)
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	if err := session.Authorize(requestcontext.ActorID(ctx)); err != nil {
		httputil.WriteError(w, translate(err))
		return
	}

	delivered := h.hub.Deliver(ctx, session.BuyerID, req.Content)
	if !delivered {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "nothing is waiting for a message"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AckResponse{Status: "received"})
}

// translate maps purchase flow errors onto transport codes. Authorization
// and concurrency rejections are notices, not failures; they must not leak
// internals.
func translate(err error) error {
	switch {
	case errors.Is(err, purchase.ErrNotYourSession):
		return dErrors.Wrap(err, dErrors.CodeForbidden, "this is not for you")
	case errors.Is(err, purchase.ErrVerificationInFlight):
		return dErrors.Wrap(err, dErrors.CodeConflict, "verification already in progress")
	case errors.Is(err, purchase.ErrSessionClosed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "this purchase can no longer be changed")
	case errors.Is(err, purchase.ErrSessionNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "session not found")
	case errors.Is(err, purchase.ErrMenuNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "menu not found or expired")
	default:
		return err
	}
}
