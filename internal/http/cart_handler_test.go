package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/marketfront/cartstate/internal/http"
	"github.com/marketfront/cartstate/internal/manager"
	"github.com/marketfront/cartstate/internal/store"
)

func newTestRouter() http.Handler {
	sessions := manager.NewRegistry(store.NewMemory(), nil, nil)
	return httpapi.NewRouter(httpapi.NewHandler(sessions, nil))
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func addItemBody(productID string, price float64, stock, quantity int) map[string]any {
	return map[string]any{
		"product": map[string]any{
			"id":       productID,
			"name":     "Arabica Beans",
			"price":    price,
			"currency": "USD",
			"unit":     "kg",
			"category": "coffee",
			"stock":    stock,
			"seller":   map[string]string{"id": "s1", "name": "Highland Farms"},
			"images":   []string{"/img/beans.png"},
		},
		"quantity": quantity,
	}
}

type cartResponse struct {
	OwnerID string `json:"ownerId"`
	Items   []struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	ItemCount int `json:"itemCount"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartResponse {
	t.Helper()

	var resp cartResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAddItem(t *testing.T) {
	t.Run("adds and merges", func(t *testing.T) {
		router := newTestRouter()

		w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 12.50, 10, 2))
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 12.50, 10, 3))
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeCart(t, w)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 5, resp.Items[0].Quantity)
		assert.Equal(t, 5, resp.ItemCount)
	})

	t.Run("insufficient stock is a conflict", func(t *testing.T) {
		router := newTestRouter()

		w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 12.50, 3, 4))
		require.Equal(t, http.StatusConflict, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/cart/alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeCart(t, w).Items)
	})

	t.Run("zero quantity is a bad request", func(t *testing.T) {
		router := newTestRouter()

		w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 12.50, 3, 0))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		router := newTestRouter()

		r := httptest.NewRequest(http.MethodPost, "/api/cart/alice/items", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing product id", func(t *testing.T) {
		router := newTestRouter()

		w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("", 12.50, 3, 1))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOwnersAreIsolated(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 9.99, 10, 1))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/cart/bob", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	assert.Equal(t, "bob", resp.OwnerID)
	assert.Empty(t, resp.Items)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 9.99, 10, 2))
	require.Equal(t, http.StatusOK, w.Code)
	itemID := decodeCart(t, w).Items[0].ID

	t.Run("update quantity", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch,
			fmt.Sprintf("/api/cart/alice/items/%s", itemID), map[string]int{"quantity": 7})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, decodeCart(t, w).Items[0].Quantity)
	})

	t.Run("update above ceiling conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch,
			fmt.Sprintf("/api/cart/alice/items/%s", itemID), map[string]int{"quantity": 11})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update unknown item is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch,
			"/api/cart/alice/items/00000000-0000-0000-0000-000000000001", map[string]int{"quantity": 1})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed item id", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/cart/alice/items/nope", map[string]int{"quantity": 1})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/cart/alice/items/%s", itemID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeCart(t, w).Items)

		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/cart/alice/items/%s", itemID), nil)
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestClearCart(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 9.99, 10, 2))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/cart/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/cart/alice", nil)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestStockSync(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/cart/alice/items", addItemBody("p1", 9.99, 10, 5))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/cart/alice/stock-sync",
		map[string]any{"productId": "p1", "stock": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeCart(t, w).Items[0].Quantity)

	w = doJSON(t, router, http.MethodPost, "/api/cart/alice/stock-sync",
		map[string]any{"productId": "p1", "stock": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeCart(t, w).Items)
}

func TestWishlist(t *testing.T) {
	router := newTestRouter()
	product := addItemBody("p1", 9.99, 10, 1)["product"]

	w := doJSON(t, router, http.MethodPost, "/api/wishlist/alice", product)
	require.Equal(t, http.StatusOK, w.Code)

	// Duplicate add stays a single entry.
	w = doJSON(t, router, http.MethodPost, "/api/wishlist/alice", product)
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	require.Len(t, items, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/wishlist/alice/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	assert.Empty(t, items)
}

func TestRecentlyViewed(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 12; i++ {
		product := addItemBody(fmt.Sprintf("p%d", i), 9.99, 10, 1)["product"]
		w := doJSON(t, router, http.MethodPost, "/api/recently-viewed/alice", product)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/recently-viewed/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
	require.Len(t, items, 10)
	assert.Equal(t, "p11", items[0]["id"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
