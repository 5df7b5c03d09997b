package controllers

import (
	"context"
	"errors"
	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/snapshot"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartController handles cart and checkout-selection requests
type CartController struct {
	Sessions *session.Manager
	Products repository.ProductRepository
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewCartController(sessions *session.Manager, products repository.ProductRepository, timeout time.Duration, logger *zap.Logger) *CartController {
	return &CartController{
		Sessions: sessions,
		Products: products,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// CartView is the cart as rendered by the cart page
type CartView struct {
	Items               []models.CartItem `json:"shoppingCartItem"`
	SelectedIDs         []string          `json:"selectedCheckoutItemsID"`
	PendingRemoval      string            `json:"pendingRemovalID,omitempty"`
	IsAllSelected       bool              `json:"isAllSelected"`
	IsPartiallySelected bool              `json:"isPartiallySelected"`
	Subtotal            decimal.Decimal   `json:"subtotal"`
	FormattedSubtotal   string            `json:"formattedSubtotal"`
}

func newCartView(c models.Cart) CartView {
	subtotal := pricing.Subtotal(c)
	return CartView{
		Items:               c.Items,
		SelectedIDs:         c.SelectedIDs,
		PendingRemoval:      c.PendingRemoval,
		IsAllSelected:       cart.IsAllSelected(c),
		IsPartiallySelected: cart.IsPartiallySelected(c),
		Subtotal:            subtotal,
		FormattedSubtotal:   pricing.FormatPrice(subtotal, pricing.Currency),
	}
}

// GetCart returns the session's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	state := cc.Sessions.Get(r.Context(), middleware.SessionID(r.Context()))
	writeJSON(w, http.StatusOK, newCartView(state.Product.Cart))
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds a catalog product to the cart, priced from the catalog
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()

	product, err := cc.Products.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) || errors.Is(err, repository.ErrInvalidID) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		cc.Logger.Error("failed to load product", zap.String("product_id", req.ProductID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching product")
		return
	}

	item, err := cartItemFromProduct(*product, req.Quantity)
	if err != nil {
		cc.Logger.Error("catalog price is not a number", zap.String("product_id", req.ProductID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reading product price")
		return
	}

	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.Add(c, item)
	})
}

func cartItemFromProduct(product models.Product, quantity int) (models.CartItem, error) {
	price, err := decimal.NewFromString(product.Price)
	if err != nil {
		return models.CartItem{}, err
	}
	item := models.CartItem{
		ID:       product.ID.Hex(),
		Name:     product.Name,
		Price:    price,
		Quantity: quantity,
		Category: product.Category,
	}
	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}
	return item, nil
}

// IncreaseQuantity adds one unit of the item
func (cc *CartController) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.Increase(c, id)
	})
}

// DecreaseQuantity removes one unit; the last unit is flagged for confirmation
func (cc *CartController) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.Decrease(c, id)
	})
}

// ConfirmRemoval drops the flagged item
func (cc *CartController) ConfirmRemoval(w http.ResponseWriter, r *http.Request) {
	cc.apply(w, r, cart.ConfirmRemoval)
}

// CancelRemoval keeps the flagged item
func (cc *CartController) CancelRemoval(w http.ResponseWriter, r *http.Request) {
	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.CancelRemoval(c), nil
	})
}

// RemoveFromCart deletes an item and its selection entry
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.Remove(c, id)
	})
}

type selectionRequest struct {
	Checked bool `json:"checked"`
}

// ToggleSelection marks an item, or every item with id "selectAll", for checkout
func (cc *CartController) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	cc.apply(w, r, func(c models.Cart) (models.Cart, error) {
		return cart.ToggleSelection(c, id, req.Checked)
	})
}

// apply runs one cart transition against the session and writes the new cart
func (cc *CartController) apply(w http.ResponseWriter, r *http.Request, fn func(models.Cart) (models.Cart, error)) {
	sessionID := middleware.SessionID(r.Context())
	state, err := cc.Sessions.Update(r.Context(), sessionID, func(state *models.AppState) error {
		next, err := fn(state.Product.Cart)
		if err != nil {
			return err
		}
		state.Product.Cart = next
		return nil
	})
	if err != nil {
		status, msg := cartErrorStatus(err)
		if status >= http.StatusInternalServerError {
			cc.Logger.Error("cart update failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(state.Product.Cart))
}

func cartErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrInvalidPrice):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, cart.ErrNoPendingRemoval),
		errors.Is(err, cart.ErrRemovalPending):
		return http.StatusConflict, err.Error()
	case errors.Is(err, snapshot.ErrUnavailable):
		return http.StatusServiceUnavailable, "Cart is temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Error updating cart"
	}
}
