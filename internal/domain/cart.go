package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	OwnerID string     `json:"ownerId"`
	Items   []CartItem `json:"items"`
}

// CartItem is one cart line. Product identity is carried in ProductID; at most one
// line references a given product because additions merge by product identity.
// Price and Stock are snapshots taken when the line was created.
type CartItem struct {
	ID         uuid.UUID `json:"id"`
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	Price      Money     `json:"price"`
	Quantity   int       `json:"quantity"`
	Unit       string    `json:"unit"`
	Image      string    `json:"image"`
	SellerName string    `json:"sellerName"`
	Category   string    `json:"category"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (i CartItem) Subtotal() Money {
	return i.Price.Mul(i.Quantity)
}

// Total sums price*quantity over all lines.
func (c Cart) Total() Money {
	var total Money
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount sums quantities, not lines.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// NewCartItem snapshots a product into a fresh cart line.
func NewCartItem(p Product, quantity int) CartItem {
	return CartItem{
		ID:         uuid.New(),
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Quantity:   quantity,
		Unit:       p.Unit,
		Image:      p.PrimaryImage(),
		SellerName: p.Seller.Name,
		Category:   p.Category,
		Stock:      p.Stock,
		CreatedAt:  time.Now(),
	}
}
