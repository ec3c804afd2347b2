package domain

// Selection is an optional variant choice. A nil pointer means "no
// selection" and is distinct from an empty string or any concrete value.
type Selection struct {
	Color *string
	Size  *string
}

// CartLine is one cart entry: a product snapshot plus quantity and the
// variant chosen at add-time. Quantity is strictly positive for any line
// present in the cart; a line that would drop to zero is removed instead.
type CartLine struct {
	Product
	Quantity      int     `json:"quantity"`
	SelectedColor *string `json:"selectedColor,omitempty"`
	SelectedSize  *string `json:"selectedSize,omitempty"`
}

// LineKey identifies a cart line: same product and same variant selection
// means the same logical entry. Comparable, so usable as a map key.
type LineKey struct {
	ProductID string
	Color     string
	HasColor  bool
	Size      string
	HasSize   bool
}

func KeyOf(productID string, sel Selection) LineKey {
	k := LineKey{ProductID: productID}
	if sel.Color != nil {
		k.Color, k.HasColor = *sel.Color, true
	}
	if sel.Size != nil {
		k.Size, k.HasSize = *sel.Size, true
	}
	return k
}

func (l CartLine) Key() LineKey {
	return KeyOf(l.ID, Selection{Color: l.SelectedColor, Size: l.SelectedSize})
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
