package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketfront/cartstate/internal/domain"
	"github.com/marketfront/cartstate/internal/port"
	"github.com/marketfront/cartstate/internal/state"
)

// Manager serializes all mutations of one buyer's collections and keeps the
// cart and wishlist persisted in the store under two independent keys.
// Persistence failures are logged, never returned to the mutating caller.
type Manager struct {
	mu      sync.Mutex
	state   state.State
	lastErr error

	ownerID  string
	store    port.Store
	notifier port.Notifier
	logger   *zap.Logger
}

// noopNotifier stands in when no notifier is configured.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, domain.Notification) {}

// New hydrates the cart and wishlist from the store. Missing or corrupt values
// are recovered as empty collections; hydration never fails the constructor.
func New(ctx context.Context, ownerID string, store port.Store, notifier port.Notifier, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		ownerID:  ownerID,
		store:    store,
		notifier: notifier,
		logger:   logger.With(zap.String("owner_id", ownerID)),
	}

	m.state.Cart = hydrate[domain.CartItem](ctx, store, cartKey(ownerID), m.logger)
	m.state.Wishlist = hydrate[domain.WishlistItem](ctx, store, wishlistKey(ownerID), m.logger)

	return m, nil
}

func cartKey(ownerID string) string {
	if ownerID == "" {
		return "cart"
	}
	return "cart:" + ownerID
}

func wishlistKey(ownerID string) string {
	if ownerID == "" {
		return "wishlist"
	}
	return "wishlist:" + ownerID
}

func hydrate[T any](ctx context.Context, store port.Store, key string, logger *zap.Logger) []T {
	raw, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read stored collection, starting empty",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("stored collection is corrupt, starting empty",
			zap.String("key", key), zap.Error(err))
		return nil
	}

	return items
}

type persistTarget int

const (
	persistNone persistTarget = iota
	persistCart
	persistWishlist
)

// dispatch runs one transition and, on success, writes the affected collection
// to the store before releasing the lock, so durable writes land in call order.
func (m *Manager) dispatch(ctx context.Context, op state.Op, target persistTarget) (prev, next state.State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev = m.state
	next, err = state.Apply(m.state, op)
	if err != nil {
		m.lastErr = err
		return prev, state.State{}, err
	}

	m.state = next
	m.lastErr = nil

	switch target {
	case persistCart:
		m.persist(ctx, cartKey(m.ownerID), next.Cart)
	case persistWishlist:
		m.persist(ctx, wishlistKey(m.ownerID), next.Wishlist)
	}

	return prev, next, nil
}

func (m *Manager) persist(ctx context.Context, key string, collection any) {
	raw, err := json.Marshal(collection)
	if err != nil {
		m.logger.Error("failed to serialize collection", zap.String("key", key), zap.Error(err))
		return
	}

	if err := m.store.Set(ctx, key, raw); err != nil {
		m.logger.Error("failed to persist collection", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	_, _, err := m.dispatch(ctx, state.AddToCart{Product: product, Quantity: quantity}, persistCart)
	if err != nil {
		m.notifier.Notify(ctx, domain.Notification{
			Title:       "Could not add to cart",
			Description: fmt.Sprintf("%s: %s", product.Name, notifyReason(err)),
			Kind:        domain.NotificationError,
		})
		return err
	}

	m.notifier.Notify(ctx, domain.Notification{
		Title:       "Added to cart",
		Description: fmt.Sprintf("%d x %s", quantity, product.Name),
		Kind:        domain.NotificationSuccess,
	})
	return nil
}

func (m *Manager) RemoveFromCart(ctx context.Context, itemID uuid.UUID) error {
	prev, next, err := m.dispatch(ctx, state.RemoveFromCart{ItemID: itemID}, persistCart)
	if err != nil {
		return err
	}

	// Idempotent: nothing matched, nothing to announce.
	if len(next.Cart) == len(prev.Cart) {
		return nil
	}

	m.notifier.Notify(ctx, domain.Notification{
		Title: "Removed from cart",
		Kind:  domain.NotificationInfo,
	})
	return nil
}

func (m *Manager) UpdateCartQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	_, _, err := m.dispatch(ctx, state.UpdateQuantity{ItemID: itemID, Quantity: quantity}, persistCart)
	if err != nil {
		m.notifier.Notify(ctx, domain.Notification{
			Title:       "Could not update quantity",
			Description: notifyReason(err),
			Kind:        domain.NotificationError,
		})
		return err
	}

	return nil
}

func (m *Manager) ClearCart(ctx context.Context) error {
	_, _, err := m.dispatch(ctx, state.ClearCart{}, persistCart)
	if err != nil {
		return err
	}

	m.notifier.Notify(ctx, domain.Notification{
		Title: "Cart cleared",
		Kind:  domain.NotificationInfo,
	})
	return nil
}

func (m *Manager) AddToWishlist(ctx context.Context, product domain.Product) error {
	prev, next, err := m.dispatch(ctx, state.AddToWishlist{Product: product}, persistWishlist)
	if err != nil {
		return err
	}

	// Already wishlisted: the op was a no-op.
	if len(next.Wishlist) == len(prev.Wishlist) {
		return nil
	}

	m.notifier.Notify(ctx, domain.Notification{
		Title:       "Added to wishlist",
		Description: product.Name,
		Kind:        domain.NotificationSuccess,
	})
	return nil
}

func (m *Manager) RemoveFromWishlist(ctx context.Context, productID string) error {
	_, _, err := m.dispatch(ctx, state.RemoveFromWishlist{ProductID: productID}, persistWishlist)
	return err
}

func (m *Manager) ClearWishlist(ctx context.Context) error {
	_, _, err := m.dispatch(ctx, state.ClearWishlist{}, persistWishlist)
	return err
}

// AddToRecentlyViewed is session-scoped: no persistence, no notification.
func (m *Manager) AddToRecentlyViewed(ctx context.Context, product domain.Product) error {
	_, _, err := m.dispatch(ctx, state.MarkViewed{Product: product}, persistNone)
	return err
}

func (m *Manager) SyncCartWithStock(ctx context.Context, productID string, stock int) error {
	prev, next, err := m.dispatch(ctx, state.SyncStock{ProductID: productID, Stock: stock}, persistCart)
	if err != nil {
		return err
	}

	if stock <= 0 && len(next.Cart) < len(prev.Cart) {
		m.notifier.Notify(ctx, domain.Notification{
			Title:       "Item no longer available",
			Description: "An out-of-stock item was removed from your cart",
			Kind:        domain.NotificationInfo,
		})
	}
	return nil
}

// SyncWithBackend does not talk to any remote service yet. A real implementation
// must define its own retry and conflict policy.
func (m *Manager) SyncWithBackend(ctx context.Context) error {
	m.logger.Debug("backend sync requested, no backend configured")
	return nil
}

func (m *Manager) Cart() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.CartItem, len(m.state.Cart))
	copy(items, m.state.Cart)
	return domain.Cart{OwnerID: m.ownerID, Items: items}
}

func (m *Manager) Wishlist() []domain.WishlistItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.WishlistItem, len(m.state.Wishlist))
	copy(items, m.state.Wishlist)
	return items
}

func (m *Manager) RecentlyViewed() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.Product, len(m.state.RecentlyViewed))
	copy(items, m.state.RecentlyViewed)
	return items
}

func (m *Manager) CartTotal() domain.Money {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Total()
}

func (m *Manager) CartItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ItemCount()
}

func (m *Manager) IsInCart(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsInCart(productID)
}

func (m *Manager) IsInWishlist(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsInWishlist(productID)
}

func (m *Manager) CartItemByProduct(productID string) (domain.CartItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ItemByProduct(productID)
}

// LastError reports the outcome of the most recent mutation: nil after a
// successful one, the rejection after a failed one.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func notifyReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "not enough stock available"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "quantity must be at least 1"
	default:
		return "something went wrong"
	}
}
