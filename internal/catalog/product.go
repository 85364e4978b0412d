package catalog

import "fmt"

// Product is one catalog record. ID is supplied by the caller and is not
// required to be unique.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"        validate:"required"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Description string  `json:"description"`
	Stock       int32   `json:"stock"       validate:"gte=0"`
}

func (p Product) String() string {
	return fmt.Sprintf("ID: %d | Name: %s | Brand: %s | Price: %.2f | Stock: %d",
		p.ID, p.Name, p.Brand, p.Price, p.Stock)
}
