package domain

// PlaceholderImage substitutes for products that ship without any image reference.
const PlaceholderImage = "/images/placeholder.png"

type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is supplied by the catalog collaborator and is read-only here.
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    Money    `json:"price"`
	Unit     string   `json:"unit"`
	Category string   `json:"category"`
	Stock    int      `json:"stock"`
	Seller   Seller   `json:"seller"`
	Images   []string `json:"images"`
}

func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 || p.Images[0] == "" {
		return PlaceholderImage
	}
	return p.Images[0]
}
