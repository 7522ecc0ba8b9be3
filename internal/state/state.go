package state

import (
	"github.com/google/uuid"
	"github.com/marketfront/cartstate/internal/domain"
)

// MaxRecentlyViewed bounds the recently-viewed history.
const MaxRecentlyViewed = 10

// State holds the three buyer collections. Values of State are treated as
// immutable: Apply returns a new State and never mutates its input, so a failed
// transition leaves the previous value intact.
type State struct {
	Cart           []domain.CartItem
	Wishlist       []domain.WishlistItem
	RecentlyViewed []domain.Product
}

func (s State) Total() domain.Money {
	var total domain.Money
	for _, item := range s.Cart {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums line quantities, not the number of lines.
func (s State) ItemCount() int {
	var count int
	for _, item := range s.Cart {
		count += item.Quantity
	}
	return count
}

func (s State) IsInCart(productID string) bool {
	_, ok := s.ItemByProduct(productID)
	return ok
}

func (s State) ItemByProduct(productID string) (domain.CartItem, bool) {
	for _, item := range s.Cart {
		if item.ProductID == productID {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

func (s State) ItemByID(itemID uuid.UUID) (domain.CartItem, bool) {
	for _, item := range s.Cart {
		if item.ID == itemID {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

func (s State) IsInWishlist(productID string) bool {
	for _, item := range s.Wishlist {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
