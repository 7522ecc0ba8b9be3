package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketfront/cartstate/internal/domain"
)

// CartManager owns one buyer's cart, wishlist and recently-viewed collections.
// Mutations are serialized in call order; a failed mutation leaves state unchanged
// and is surfaced through the returned error, LastError and the notifier side channel.
type CartManager interface {
	AddToCart(ctx context.Context, product domain.Product, quantity int) error
	RemoveFromCart(ctx context.Context, itemID uuid.UUID) error
	UpdateCartQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	ClearCart(ctx context.Context) error

	AddToWishlist(ctx context.Context, product domain.Product) error
	RemoveFromWishlist(ctx context.Context, productID string) error
	ClearWishlist(ctx context.Context) error

	AddToRecentlyViewed(ctx context.Context, product domain.Product) error

	// SyncCartWithStock reconciles an externally observed stock change into the
	// cart: ceilings are updated, quantities clamped, exhausted lines removed.
	SyncCartWithStock(ctx context.Context, productID string, stock int) error

	// SyncWithBackend is an extension point for pushing local state to a remote
	// service. It provides no consistency guarantee.
	SyncWithBackend(ctx context.Context) error

	Cart() domain.Cart
	Wishlist() []domain.WishlistItem
	RecentlyViewed() []domain.Product
	CartTotal() domain.Money
	CartItemCount() int
	IsInCart(productID string) bool
	IsInWishlist(productID string) bool
	CartItemByProduct(productID string) (domain.CartItem, bool)
	LastError() error
}
