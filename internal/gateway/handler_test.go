package gateway_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"passgate/internal/catalog"
	"passgate/internal/gateway"
	"passgate/internal/messenger"
	"passgate/internal/purchase"
	"passgate/internal/verify"
	"passgate/internal/verify/mocks"
	"passgate/internal/platform/middleware"
	"passgate/pkg/testutil"
)

type gatewayFixture struct {
	router   http.Handler
	hub      *messenger.Hub
	resolver *mocks.MockResolver
	checker  *mocks.MockChecker
}

func newGateway(t *testing.T) *gatewayFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	checker := mocks.NewMockChecker(ctrl)

	store := catalog.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), catalog.Item{
		Name: "Skin A", GamePassID: "999", FileURL: "https://files/skinA",
	}))
	svc, err := catalog.New(store)
	require.NoError(t, err)

	hub := messenger.NewHub()
	manager, err := purchase.NewManager(svc, hub, resolver, checker,
		purchase.WithPolicy(verify.Policy{Attempts: 2, Delay: time.Millisecond}),
		purchase.WithConfig(purchase.Config{
			AccountNameWait: time.Second,
			MenuTTL:         time.Minute,
			SessionTTL:      time.Minute,
			ReapInterval:    time.Minute,
		}),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	h := gateway.New(manager, hub, slog.Default())
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Actor)
		h.Register(r)
	})

	return &gatewayFixture{router: r, hub: hub, resolver: resolver, checker: checker}
}

func TestGateway_ActorRequired(t *testing.T) {
	f := newGateway(t)
	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	rr := testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGateway_BrowseAndSelect(t *testing.T) {
	f := newGateway(t)

	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var menu gateway.MenuResponse
	testutil.DecodeJSON(t, rr, &menu)
	require.NotEmpty(t, menu.MenuID)
	assert.Equal(t, []string{"Skin A"}, menu.Items)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{
		MenuID: menu.MenuID, Item: "Skin A",
	})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var session gateway.SessionResponse
	testutil.DecodeJSON(t, rr, &session)
	assert.Equal(t, "Skin A", session.Item)
	assert.Equal(t, "pending", session.Status)
	assert.Equal(t, "https://www.roblox.com/game-pass/999", session.PurchaseURL)
}

func TestGateway_BrowseEmptyCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, err := catalog.New(catalog.NewMemoryStore())
	require.NoError(t, err)
	hub := messenger.NewHub()
	manager, err := purchase.NewManager(svc, hub, mocks.NewMockResolver(ctrl), mocks.NewMockChecker(ctrl))
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Actor)
	gateway.New(manager, hub, slog.Default()).Register(r)

	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(r, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_SelectValidation(t *testing.T) {
	f := newGateway(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{Item: "Skin A"})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGateway_SelectUnknownMenu(t *testing.T) {
	f := newGateway(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{
		MenuID: "missing", Item: "Skin A",
	})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_ConfirmFlow(t *testing.T) {
	f := newGateway(t)

	// Browse and select as buyer-1.
	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var menu gateway.MenuResponse
	testutil.DecodeJSON(t, rr, &menu)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{
		MenuID: menu.MenuID, Item: "Skin A",
	})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var session gateway.SessionResponse
	testutil.DecodeJSON(t, rr, &session)

	t.Run("confirm from another actor is forbidden", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/confirm")
		req.Header.Set("X-Actor-ID", "intruder")
		rr := testutil.DoRequest(f.router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("confirm from an unknown session is not found", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/sessions/missing/confirm")
		req.Header.Set("X-Actor-ID", "buyer-1")
		rr := testutil.DoRequest(f.router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	f.resolver.EXPECT().ResolveAccountID(gomock.Any(), "Bob").Return("123", nil)
	f.checker.EXPECT().OwnsGamePass(gomock.Any(), "123", "999").Return(true, nil)

	t.Run("confirm kicks off verification", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/confirm")
		req.Header.Set("X-Actor-ID", "buyer-1")
		rr := testutil.DoRequest(f.router, req)
		require.Equal(t, http.StatusAccepted, rr.Code)

		var ack gateway.AckResponse
		testutil.DecodeJSON(t, rr, &ack)
		assert.Equal(t, "verifying", ack.Status)
	})

	t.Run("second confirm conflicts", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/confirm")
		req.Header.Set("X-Actor-ID", "buyer-1")
		rr := testutil.DoRequest(f.router, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("buyer message is routed to the waiting run", func(t *testing.T) {
		require.Eventually(t, func() bool {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/message",
				gateway.MessageRequest{Content: "Bob"})
			req.Header.Set("X-Actor-ID", "buyer-1")
			rr := testutil.DoRequest(f.router, req)
			return rr.Code == http.StatusOK
		}, 2*time.Second, 10*time.Millisecond, "message never reached the waiting run")
	})
}

func TestGateway_MessageWithoutWaiterConflicts(t *testing.T) {
	f := newGateway(t)

	// Open a pending session but never confirm, so nothing waits for a DM.
	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var menu gateway.MenuResponse
	testutil.DecodeJSON(t, rr, &menu)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{
		MenuID: menu.MenuID, Item: "Skin A",
	})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var session gateway.SessionResponse
	testutil.DecodeJSON(t, rr, &session)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/message",
		gateway.MessageRequest{Content: "Bob"})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGateway_CancelPending(t *testing.T) {
	f := newGateway(t)

	req := testutil.NewRequest(t, http.MethodPost, "/store/browse")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var menu gateway.MenuResponse
	testutil.DecodeJSON(t, rr, &menu)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/store/select", gateway.SelectRequest{
		MenuID: menu.MenuID, Item: "Skin A",
	})
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var session gateway.SessionResponse
	testutil.DecodeJSON(t, rr, &session)

	req = testutil.NewRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/cancel")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var ack gateway.AckResponse
	testutil.DecodeJSON(t, rr, &ack)
	assert.Equal(t, "cancelled", ack.Status)

	// Cancel again: the session is already closed.
	req = testutil.NewRequest(t, http.MethodPost, "/sessions/"+session.SessionID+"/cancel")
	req.Header.Set("X-Actor-ID", "buyer-1")
	rr = testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
