package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/marketfront/cartstate/internal/domain"
	"github.com/marketfront/cartstate/internal/manager"
)

const requestTimeout = 3 * time.Second

type Handler struct {
	sessions *manager.Registry
	logger   *zap.Logger
}

func NewHandler(sessions *manager.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, logger: logger}
}

// productPayload is the product snapshot carried in request bodies. The catalog
// stays an external collaborator: this service never looks products up itself.
type productPayload struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Unit     string          `json:"unit"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	Seller   domain.Seller   `json:"seller"`
	Images   []string        `json:"images"`
}

func (p productPayload) toDomain() (domain.Product, error) {
	if p.ID == "" {
		return domain.Product{}, fmt.Errorf("product id is empty")
	}

	code := p.Currency
	if code == "" {
		code = "USD"
	}
	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return domain.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    domain.Money{Amount: p.Price, Currency: parsedCurrency},
		Unit:     p.Unit,
		Category: p.Category,
		Stock:    p.Stock,
		Seller:   p.Seller,
		Images:   p.Images,
	}, nil
}

type cartResponse struct {
	OwnerID   string            `json:"ownerId"`
	Items     []domain.CartItem `json:"items"`
	Total     domain.Money      `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func cartResponseFrom(m *manager.Manager) cartResponse {
	cart := m.Cart()
	return cartResponse{
		OwnerID:   cart.OwnerID,
		Items:     cart.Items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*manager.Manager, bool) {
	ownerID := chi.URLParam(r, "ownerID")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing ownerID")
		return nil, false
	}

	m, err := h.sessions.ForOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to open cart session", zap.String("owner_id", ownerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open cart session")
		return nil, false
	}

	return m, true
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, cartResponseFrom(m))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Product  productPayload `json:"product"`
		Quantity int            `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	product, err := body.Product.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.AddToCart(ctx, product, body.Quantity); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponseFrom(m))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.UpdateCartQuantity(ctx, itemID, body.Quantity); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponseFrom(m))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.RemoveFromCart(ctx, itemID); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponseFrom(m))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.ClearCart(ctx); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cart cleared"})
}

func (h *Handler) SyncStock(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		ProductID string `json:"productId"`
		Stock     int    `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.SyncCartWithStock(ctx, body.ProductID, body.Stock); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponseFrom(m))
}

func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, m.Wishlist())
}

func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	var body productPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	product, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.AddToWishlist(ctx, product); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m.Wishlist())
}

func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "missing productID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.RemoveFromWishlist(ctx, productID); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m.Wishlist())
}

func (h *Handler) GetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, m.RecentlyViewed())
}

func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	m, ok := h.session(w, r)
	if !ok {
		return
	}

	var body productPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	product, err := body.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := m.AddToRecentlyViewed(ctx, product); err != nil {
		writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m.RecentlyViewed())
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "cartstate"})
}

func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient stock")
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "cart item not found")
	default:
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
