package domain

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem is a save-for-later entry, unique per product within one wishlist.
type WishlistItem struct {
	ID         uuid.UUID `json:"id"`
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	Price      Money     `json:"price"`
	Image      string    `json:"image"`
	SellerName string    `json:"sellerName"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewWishlistItem(p Product) WishlistItem {
	return WishlistItem{
		ID:         uuid.New(),
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Image:      p.PrimaryImage(),
		SellerName: p.Seller.Name,
		CreatedAt:  time.Now(),
	}
}
