package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	controller *CartController
	tea, mug   string
}

func newCartFixture(t *testing.T) cartFixture {
	tea := product("Tea", "10.00", "drinks")
	mug := product("Mug", "5.00", "merch")
	cc := NewCartController(newTestSessions(t), newFakeProducts(tea, mug), time.Second, zap.NewNop())
	return cartFixture{controller: cc, tea: tea.ID.Hex(), mug: mug.ID.Hex()}
}

func (f cartFixture) add(t *testing.T, id string, quantity int) CartView {
	rr := serve(t, f.controller.AddToCart, call{
		method: http.MethodPost, target: "/cart/items",
		body: addToCartRequest{ProductID: id, Quantity: quantity},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var view CartView
	decode(t, rr, &view)
	return view
}

func (f cartFixture) selectItem(t *testing.T, id string, checked bool) CartView {
	rr := serve(t, f.controller.ToggleSelection, call{
		method: http.MethodPut, target: "/cart/selection/" + id,
		body: selectionRequest{Checked: checked}, vars: map[string]string{"id": id},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var view CartView
	decode(t, rr, &view)
	return view
}

func TestAddToCart_PricesFromCatalog(t *testing.T) {
	f := newCartFixture(t)

	view := f.add(t, f.tea, 2)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].Price.Equal(decimal.RequireFromString("10")))
	assert.True(t, view.Items[0].ItemPrice.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, "/img/tea.png", view.Items[0].ImageURL)

	view = f.add(t, f.tea, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestAddToCart_Errors(t *testing.T) {
	f := newCartFixture(t)

	rr := serve(t, f.controller.AddToCart, call{method: http.MethodPost, target: "/cart/items",
		body: addToCartRequest{ProductID: "000000000000000000000000", Quantity: 1}})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(t, f.controller.AddToCart, call{method: http.MethodPost, target: "/cart/items",
		body: addToCartRequest{ProductID: f.tea, Quantity: 100}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, f.controller.AddToCart, call{method: http.MethodPost, target: "/cart/items", body: "{"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCart_SubtotalFollowsSelection(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, f.tea, 2)
	f.add(t, f.mug, 1)

	view := f.selectItem(t, "selectAll", true)
	assert.True(t, view.IsAllSelected)
	assert.Equal(t, "MYR 25.00", view.FormattedSubtotal)

	view = f.selectItem(t, f.tea, false)
	assert.True(t, view.IsPartiallySelected)
	assert.Equal(t, "MYR 5.00", view.FormattedSubtotal)

	rr := serve(t, f.controller.GetCart, call{method: http.MethodGet, target: "/cart"})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &view)
	assert.Equal(t, []string{f.mug}, view.SelectedIDs)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("5")))
}

func TestDecreaseToZero_NeedsConfirmation(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, f.tea, 1)
	f.add(t, f.mug, 1)
	f.selectItem(t, "selectAll", true)

	rr := serve(t, f.controller.DecreaseQuantity, call{method: http.MethodPost, vars: map[string]string{"id": f.tea}})
	require.Equal(t, http.StatusOK, rr.Code)
	var view CartView
	decode(t, rr, &view)
	assert.Equal(t, f.tea, view.PendingRemoval)
	assert.Len(t, view.Items, 2)

	rr = serve(t, f.controller.ConfirmRemoval, call{method: http.MethodPost})
	require.Equal(t, http.StatusOK, rr.Code)
	var confirmed CartView
	decode(t, rr, &confirmed)
	assert.Empty(t, confirmed.PendingRemoval)
	require.Len(t, confirmed.Items, 1)
	assert.Equal(t, []string{f.mug}, confirmed.SelectedIDs)

	rr = serve(t, f.controller.ConfirmRemoval, call{method: http.MethodPost})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCancelRemoval_KeepsItem(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, f.tea, 1)
	serve(t, f.controller.DecreaseQuantity, call{method: http.MethodPost, vars: map[string]string{"id": f.tea}})

	rr := serve(t, f.controller.CancelRemoval, call{method: http.MethodPost})

	require.Equal(t, http.StatusOK, rr.Code)
	var view CartView
	decode(t, rr, &view)
	assert.Empty(t, view.PendingRemoval)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	f := newCartFixture(t)
	f.add(t, f.tea, 1)
	f.selectItem(t, f.tea, true)

	rr := serve(t, f.controller.RemoveFromCart, call{method: http.MethodDelete, vars: map[string]string{"id": f.tea}})
	require.Equal(t, http.StatusOK, rr.Code)
	var view CartView
	decode(t, rr, &view)
	assert.Empty(t, view.Items)
	assert.Empty(t, view.SelectedIDs)

	rr = serve(t, f.controller.RemoveFromCart, call{method: http.MethodDelete, vars: map[string]string{"id": f.tea}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIncreaseQuantity_UnknownItem(t *testing.T) {
	f := newCartFixture(t)

	rr := serve(t, f.controller.IncreaseQuantity, call{method: http.MethodPost, vars: map[string]string{"id": "nope"}})

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddToCart_UnreadableSnapshotKeepsCart(t *testing.T) {
	sessions, storage := newMemSessions()
	tea := product("Tea", "10.00", "drinks")
	f := cartFixture{controller: NewCartController(sessions, newFakeProducts(tea), time.Second, zap.NewNop()), tea: tea.ID.Hex()}
	f.add(t, f.tea, 2)

	storage.fail(true, false)
	rr := serve(t, f.controller.AddToCart, call{method: http.MethodPost, target: "/cart/items",
		body: addToCartRequest{ProductID: f.tea, Quantity: 1}})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	storage.fail(false, false)
	rr = serve(t, f.controller.GetCart, call{method: http.MethodGet, target: "/cart"})
	var view CartView
	decode(t, rr, &view)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}
