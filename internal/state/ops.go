package state

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/marketfront/cartstate/internal/domain"
)

// Op is the tagged union of state transitions. Every mutation of the buyer
// collections goes through Apply with one of these.
type Op interface {
	isOp()
}

type AddToCart struct {
	Product  domain.Product
	Quantity int
}

type RemoveFromCart struct {
	ItemID uuid.UUID
}

type UpdateQuantity struct {
	ItemID   uuid.UUID
	Quantity int
}

type ClearCart struct{}

type AddToWishlist struct {
	Product domain.Product
}

type RemoveFromWishlist struct {
	ProductID string
}

type ClearWishlist struct{}

type MarkViewed struct {
	Product domain.Product
}

type SyncStock struct {
	ProductID string
	Stock     int
}

func (AddToCart) isOp()          {}
func (RemoveFromCart) isOp()     {}
func (UpdateQuantity) isOp()     {}
func (ClearCart) isOp()          {}
func (AddToWishlist) isOp()      {}
func (RemoveFromWishlist) isOp() {}
func (ClearWishlist) isOp()      {}
func (MarkViewed) isOp()         {}
func (SyncStock) isOp()          {}

// Apply is the transition function: old state + op -> new state. On error the
// returned State is the zero value and the input is guaranteed untouched.
func Apply(s State, op Op) (State, error) {
	switch op := op.(type) {
	case AddToCart:
		return applyAddToCart(s, op)
	case RemoveFromCart:
		return applyRemoveFromCart(s, op)
	case UpdateQuantity:
		return applyUpdateQuantity(s, op)
	case ClearCart:
		s.Cart = nil
		return s, nil
	case AddToWishlist:
		return applyAddToWishlist(s, op)
	case RemoveFromWishlist:
		return applyRemoveFromWishlist(s, op)
	case ClearWishlist:
		s.Wishlist = nil
		return s, nil
	case MarkViewed:
		return applyMarkViewed(s, op)
	case SyncStock:
		return applySyncStock(s, op)
	default:
		return State{}, fmt.Errorf("unknown op %T", op)
	}
}

func applyAddToCart(s State, op AddToCart) (State, error) {
	if op.Quantity < 1 {
		return State{}, fmt.Errorf("quantity[%d]: %w", op.Quantity, domain.ErrInvalidQuantity)
	}

	if existing, ok := s.ItemByProduct(op.Product.ID); ok {
		// Validate the post-merge total, not just the increment, so the
		// quantity <= stock invariant holds after the merge.
		merged := existing.Quantity + op.Quantity
		if merged > op.Product.Stock {
			return State{}, fmt.Errorf("product[%s] quantity[%d] exceeds stock[%d]: %w",
				op.Product.ID, merged, op.Product.Stock, domain.ErrInsufficientStock)
		}

		cart := make([]domain.CartItem, len(s.Cart))
		copy(cart, s.Cart)
		for i := range cart {
			if cart[i].ProductID == op.Product.ID {
				cart[i].Quantity = merged
				// The incoming snapshot carries the last-known stock; refresh
				// the ceiling so quantity <= stock holds against it.
				cart[i].Stock = op.Product.Stock
			}
		}
		s.Cart = cart
		return s, nil
	}

	if op.Quantity > op.Product.Stock {
		return State{}, fmt.Errorf("product[%s] quantity[%d] exceeds stock[%d]: %w",
			op.Product.ID, op.Quantity, op.Product.Stock, domain.ErrInsufficientStock)
	}

	cart := make([]domain.CartItem, len(s.Cart), len(s.Cart)+1)
	copy(cart, s.Cart)
	s.Cart = append(cart, domain.NewCartItem(op.Product, op.Quantity))
	return s, nil
}

// applyRemoveFromCart is idempotent: removing an unknown id is a no-op.
func applyRemoveFromCart(s State, op RemoveFromCart) (State, error) {
	cart := make([]domain.CartItem, 0, len(s.Cart))
	for _, item := range s.Cart {
		if item.ID != op.ItemID {
			cart = append(cart, item)
		}
	}
	s.Cart = cart
	return s, nil
}

func applyUpdateQuantity(s State, op UpdateQuantity) (State, error) {
	if op.Quantity <= 0 {
		return applyRemoveFromCart(s, RemoveFromCart{ItemID: op.ItemID})
	}

	item, ok := s.ItemByID(op.ItemID)
	if !ok {
		return State{}, fmt.Errorf("item[%s]: %w", op.ItemID, domain.ErrItemNotFound)
	}

	if op.Quantity > item.Stock {
		return State{}, fmt.Errorf("item[%s] quantity[%d] exceeds stock[%d]: %w",
			op.ItemID, op.Quantity, item.Stock, domain.ErrInsufficientStock)
	}

	cart := make([]domain.CartItem, 0, len(s.Cart))
	for _, it := range s.Cart {
		if it.ID == op.ItemID {
			it.Quantity = op.Quantity
		}
		// Safety net: a line can never survive with a non-positive quantity.
		if it.Quantity > 0 {
			cart = append(cart, it)
		}
	}
	s.Cart = cart
	return s, nil
}

// applyAddToWishlist is a no-op when the product is already wishlisted.
func applyAddToWishlist(s State, op AddToWishlist) (State, error) {
	if s.IsInWishlist(op.Product.ID) {
		return s, nil
	}

	wishlist := make([]domain.WishlistItem, len(s.Wishlist), len(s.Wishlist)+1)
	copy(wishlist, s.Wishlist)
	s.Wishlist = append(wishlist, domain.NewWishlistItem(op.Product))
	return s, nil
}

func applyRemoveFromWishlist(s State, op RemoveFromWishlist) (State, error) {
	wishlist := make([]domain.WishlistItem, 0, len(s.Wishlist))
	for _, item := range s.Wishlist {
		if item.ProductID != op.ProductID {
			wishlist = append(wishlist, item)
		}
	}
	s.Wishlist = wishlist
	return s, nil
}

// applyMarkViewed moves the product to the front, dropping any prior occurrence,
// then truncates to MaxRecentlyViewed.
func applyMarkViewed(s State, op MarkViewed) (State, error) {
	viewed := make([]domain.Product, 0, len(s.RecentlyViewed)+1)
	viewed = append(viewed, op.Product)
	for _, p := range s.RecentlyViewed {
		if p.ID != op.Product.ID {
			viewed = append(viewed, p)
		}
	}
	if len(viewed) > MaxRecentlyViewed {
		viewed = viewed[:MaxRecentlyViewed]
	}
	s.RecentlyViewed = viewed
	return s, nil
}

// applySyncStock lowers ceilings and clamps quantities; a line whose product is
// exhausted is removed entirely.
func applySyncStock(s State, op SyncStock) (State, error) {
	cart := make([]domain.CartItem, 0, len(s.Cart))
	for _, item := range s.Cart {
		if item.ProductID == op.ProductID {
			if op.Stock <= 0 {
				continue
			}
			item.Stock = op.Stock
			if item.Quantity > op.Stock {
				item.Quantity = op.Stock
			}
		}
		cart = append(cart, item)
	}
	s.Cart = cart
	return s, nil
}
