package usecase

import "time"

// Published on the cart.events exchange, routing key = Type.
const (
	EventItemAdded       = "cart.item_added"
	EventItemRemoved     = "cart.item_removed"
	EventQuantityUpdated = "cart.quantity_updated"
	EventCleared         = "cart.cleared"
)

type CartEventMsg struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productId,omitempty"`
	Color     *string   `json:"color,omitempty"`
	Size      *string   `json:"size,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	At        time.Time `json:"at"`
}
