package models

import (
	"github.com/shopspring/decimal"
)

// CartItem represents one line of the shopping cart
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ItemPrice decimal.Decimal `json:"itemPrice"` // Price × Quantity
	Category  string          `json:"category,omitempty"`
	ImageURL  string          `json:"img,omitempty"`
}

// Cart holds the cart lines together with the ids selected for checkout.
// Both collections are always replaced together so the selection never
// references an id that is no longer in the cart.
type Cart struct {
	Items          []CartItem `json:"shoppingCartItem"`
	SelectedIDs    []string   `json:"selectedCheckoutItemsID"`
	PendingRemoval string     `json:"pendingRemovalID,omitempty"`
}

// Item returns the cart line with the given id
func (c Cart) Item(id string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// IsSelected reports whether id is part of the checkout selection
func (c Cart) IsSelected(id string) bool {
	for _, selected := range c.SelectedIDs {
		if selected == id {
			return true
		}
	}
	return false
}

// SelectedItems returns the selected lines in cart order
func (c Cart) SelectedItems() []CartItem {
	items := make([]CartItem, 0, len(c.SelectedIDs))
	for _, item := range c.Items {
		if c.IsSelected(item.ID) {
			items = append(items, item)
		}
	}
	return items
}
