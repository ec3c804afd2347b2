package domain

import "errors"

var ErrInvalidProduct = errors.New("invalid product")

// Product is an immutable catalog record. The cart copies the fields it
// needs at add-time; later catalog changes never touch existing lines.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Description   string   `json:"description"`
	InStock       bool     `json:"inStock"`
	Colors        []string `json:"colors,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
}

func (p *Product) Validate() error {
	if p.ID == "" || p.Name == "" || p.Price < 0 {
		return ErrInvalidProduct
	}
	return nil
}
