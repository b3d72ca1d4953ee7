package handler_test

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passgate/internal/catalog"
	cataloghandler "passgate/internal/catalog/handler"
	"passgate/internal/platform/middleware"
	"passgate/pkg/testutil"
)

const signingKey = "test-signing-key"

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	svc, err := catalog.New(catalog.NewMemoryStore())
	require.NoError(t, err)

	h := cataloghandler.New(svc, slog.Default())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator(signingKey, slog.Default()))
		h.Register(r)
	})
	return r
}

func operatorToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.OperatorToken(signingKey, "owner-1", time.Hour)
	require.NoError(t, err)
	return token
}

func TestAdminItems(t *testing.T) {
	router := newRouter(t)
	token := operatorToken(t)

	t.Run("rejects missing token", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/items", map[string]string{
			"name": "skin-a", "gamepass_id": "999", "file_url": "https://files/skinA",
		})
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token signed with wrong key", func(t *testing.T) {
		bad, err := middleware.OperatorToken("wrong-key", "intruder", time.Hour)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/admin/items")
		req.Header.Set("Authorization", "Bearer "+bad)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token without operator role", func(t *testing.T) {
		buyer := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "buyer-1",
			"role": "buyer",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		signed, err := buyer.SignedString([]byte(signingKey))
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/admin/items")
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("uploads an item", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/items", map[string]string{
			"name": "skin-a", "gamepass_id": "999", "file_url": "https://files/skinA",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp cataloghandler.ItemResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, "skin-a", resp.Name)
		assert.Equal(t, "999", resp.GamePassID)
	})

	t.Run("duplicate upload conflicts", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/items", map[string]string{
			"name": "skin-a", "gamepass_id": "999", "file_url": "https://files/skinA",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("edits an item partially", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/admin/items/skin-a", map[string]string{
			"gamepass_id": "1000",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp cataloghandler.ItemResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, "1000", resp.GamePassID)
		assert.Equal(t, "https://files/skinA", resp.FileURL)
	})

	t.Run("lists items", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/admin/items")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp cataloghandler.ListResponse
		testutil.DecodeJSON(t, rr, &resp)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("deletes an item", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodDelete, "/admin/items/skin-a")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		req = testutil.NewRequest(t, http.MethodDelete, "/admin/items/skin-a")
		req.Header.Set("Authorization", "Bearer "+token)
		rr = testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
