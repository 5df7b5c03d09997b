// Package cart implements the cart and checkout-selection transitions.
//
// Every function takes a models.Cart by value and returns a new one; the
// input is never modified. Removing a line and dropping its id from the
// selection always happen in the same returned value.
package cart

import (
	"errors"
	"fmt"
	"go-storefront/models"

	"github.com/shopspring/decimal"
)

// SelectAllID is the selection id that toggles every cart line at once
const SelectAllID = "selectAll"

// MaxQuantity caps a single cart line
const MaxQuantity = 99

var (
	ErrItemNotFound     = errors.New("item not found in cart")
	ErrInvalidQuantity  = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrInvalidItem      = errors.New("item id and name are required")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrNoPendingRemoval = errors.New("no item is awaiting removal")
	ErrRemovalPending   = errors.New("another item is awaiting removal confirmation")
)

// Add puts item into the cart. Adding an id that is already present
// accumulates its quantity.
func Add(c models.Cart, item models.CartItem) (models.Cart, error) {
	if item.ID == "" || item.Name == "" {
		return c, ErrInvalidItem
	}
	if item.Price.IsNegative() {
		return c, ErrInvalidPrice
	}
	if item.Quantity <= 0 || item.Quantity > MaxQuantity {
		return c, ErrInvalidQuantity
	}

	next := clone(c)
	for i, existing := range next.Items {
		if existing.ID != item.ID {
			continue
		}
		quantity := existing.Quantity + item.Quantity
		if quantity > MaxQuantity {
			return c, ErrInvalidQuantity
		}
		next.Items[i] = withQuantity(existing, quantity)
		return next, nil
	}

	next.Items = append(next.Items, withQuantity(item, item.Quantity))
	return next, nil
}

// ApplyDelta changes the quantity of itemID by delta. When the resulting
// quantity would drop to zero or below, the line is left untouched and
// flagged through PendingRemoval; ConfirmRemoval completes it.
func ApplyDelta(c models.Cart, itemID string, delta int) (models.Cart, error) {
	idx := indexOf(c, itemID)
	if idx < 0 {
		return c, fmt.Errorf("apply delta to %q: %w", itemID, ErrItemNotFound)
	}

	quantity := c.Items[idx].Quantity + delta
	if quantity <= 0 {
		if c.PendingRemoval != "" && c.PendingRemoval != itemID {
			return c, ErrRemovalPending
		}
		next := clone(c)
		next.PendingRemoval = itemID
		return next, nil
	}
	if quantity > MaxQuantity {
		return c, ErrInvalidQuantity
	}

	next := clone(c)
	next.Items[idx] = withQuantity(next.Items[idx], quantity)
	if next.PendingRemoval == itemID {
		next.PendingRemoval = ""
	}
	return next, nil
}

// Increase adds one unit of itemID
func Increase(c models.Cart, itemID string) (models.Cart, error) {
	return ApplyDelta(c, itemID, 1)
}

// Decrease removes one unit of itemID; the last unit is only flagged
func Decrease(c models.Cart, itemID string) (models.Cart, error) {
	return ApplyDelta(c, itemID, -1)
}

// ConfirmRemoval removes the line flagged by ApplyDelta
func ConfirmRemoval(c models.Cart) (models.Cart, error) {
	if c.PendingRemoval == "" {
		return c, ErrNoPendingRemoval
	}
	next, err := Remove(c, c.PendingRemoval)
	if err != nil {
		return c, err
	}
	next.PendingRemoval = ""
	return next, nil
}

// CancelRemoval drops the removal flag and keeps the line
func CancelRemoval(c models.Cart) models.Cart {
	next := clone(c)
	next.PendingRemoval = ""
	return next
}

// Remove deletes itemID from the cart and from the selection
func Remove(c models.Cart, itemID string) (models.Cart, error) {
	if indexOf(c, itemID) < 0 {
		return c, fmt.Errorf("remove %q: %w", itemID, ErrItemNotFound)
	}
	return RemoveMany(c, itemID), nil
}

// RemoveMany deletes every listed id that is present. Unknown ids are ignored.
func RemoveMany(c models.Cart, itemIDs ...string) models.Cart {
	drop := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = struct{}{}
	}

	next := models.Cart{
		Items:       make([]models.CartItem, 0, len(c.Items)),
		SelectedIDs: make([]string, 0, len(c.SelectedIDs)),
	}
	for _, item := range c.Items {
		if _, ok := drop[item.ID]; !ok {
			next.Items = append(next.Items, item)
		}
	}
	for _, id := range c.SelectedIDs {
		if _, ok := drop[id]; !ok {
			next.SelectedIDs = append(next.SelectedIDs, id)
		}
	}
	if _, ok := drop[c.PendingRemoval]; !ok {
		next.PendingRemoval = c.PendingRemoval
	}
	return next
}

// ToggleSelection marks or unmarks itemID for checkout. SelectAllID selects
// every current line when checked and clears the selection otherwise.
func ToggleSelection(c models.Cart, itemID string, checked bool) (models.Cart, error) {
	next := clone(c)

	if itemID == SelectAllID {
		next.SelectedIDs = make([]string, 0, len(c.Items))
		if checked {
			for _, item := range c.Items {
				next.SelectedIDs = append(next.SelectedIDs, item.ID)
			}
		}
		return next, nil
	}

	if indexOf(c, itemID) < 0 {
		return c, fmt.Errorf("select %q: %w", itemID, ErrItemNotFound)
	}

	selected := c.IsSelected(itemID)
	switch {
	case checked && !selected:
		next.SelectedIDs = append(next.SelectedIDs, itemID)
	case !checked && selected:
		kept := next.SelectedIDs[:0]
		for _, id := range next.SelectedIDs {
			if id != itemID {
				kept = append(kept, id)
			}
		}
		next.SelectedIDs = kept
	}
	return next, nil
}

// IsAllSelected reports whether every line is selected
func IsAllSelected(c models.Cart) bool {
	return len(c.Items) > 0 && len(c.SelectedIDs) == len(c.Items)
}

// IsPartiallySelected reports the indeterminate select-all state
func IsPartiallySelected(c models.Cart) bool {
	return len(c.SelectedIDs) > 0 && len(c.SelectedIDs) < len(c.Items)
}

func withQuantity(item models.CartItem, quantity int) models.CartItem {
	item.Quantity = quantity
	item.ItemPrice = item.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return item
}

func indexOf(c models.Cart, itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func clone(c models.Cart) models.Cart {
	next := models.Cart{
		Items:          make([]models.CartItem, len(c.Items)),
		SelectedIDs:    make([]string, len(c.SelectedIDs)),
		PendingRemoval: c.PendingRemoval,
	}
	copy(next.Items, c.Items)
	copy(next.SelectedIDs, c.SelectedIDs)
	return next
}
