package controllers

import (
	"context"
	"errors"
	"go-storefront/models"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductController(t *testing.T, products ...models.Product) (*ProductController, *fakeProducts) {
	repo := newFakeProducts(products...)
	return NewProductController(repo, newTestSessions(t), time.Second, zap.NewNop()), repo
}

func TestGetProducts_KeywordAndCategories(t *testing.T) {
	pc, _ := newProductController(t,
		product("Green Tea", "10.00", "drinks"),
		product("Black Tea", "12.00", "drinks"),
		product("Tea Mug", "5.00", "merch"),
		product("Tote", "20.00", "merch"),
	)

	rr := serve(t, pc.GetProducts, call{method: http.MethodGet, target: "/products?q=tea"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp productListResponse
	decode(t, rr, &resp)
	require.NotNil(t, resp.Keyword)
	assert.Equal(t, "tea", *resp.Keyword)
	assert.Len(t, resp.Products, 3)
	assert.Equal(t, []CategoryCount{{Category: "drinks", Count: 2}, {Category: "merch", Count: 1}}, resp.Categories)

	rr = serve(t, pc.GetProducts, call{method: http.MethodGet, target: "/products"})
	decode(t, rr, &resp)
	assert.Nil(t, resp.Keyword)
	assert.Len(t, resp.Products, 4)
}

func TestGetProducts_KeywordIsNotRestored(t *testing.T) {
	pc, _ := newProductController(t, product("Green Tea", "10.00", "drinks"))

	serve(t, pc.GetProducts, call{method: http.MethodGet, target: "/products?q=green"})

	state := pc.Sessions.Get(context.Background(), testSession)
	assert.Nil(t, state.Product.ProductFilterKeyword)
}

func TestGetProducts_StoreError(t *testing.T) {
	pc, repo := newProductController(t)
	repo.err = errors.New("down")

	rr := serve(t, pc.GetProducts, call{method: http.MethodGet, target: "/products"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetProductByID(t *testing.T) {
	tea := product("Green Tea", "10.00", "drinks")
	pc, _ := newProductController(t, tea)

	rr := serve(t, pc.GetProductByID, call{method: http.MethodGet, vars: map[string]string{"id": tea.ID.Hex()}})
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Product
	decode(t, rr, &got)
	assert.Equal(t, "Green Tea", got.Name)

	rr = serve(t, pc.GetProductByID, call{method: http.MethodGet, vars: map[string]string{"id": "bad"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, pc.GetProductByID, call{method: http.MethodGet, vars: map[string]string{"id": "000000000000000000000000"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminProductWrites(t *testing.T) {
	pc, repo := newProductController(t)

	rr := serve(t, pc.CreateProduct, call{method: http.MethodPost, body: models.Product{Name: "Mug", Price: "five"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, pc.CreateProduct, call{method: http.MethodPost, body: models.Product{Name: "Mug", Price: "-5"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var invalid errorResponse
	decode(t, rr, &invalid)
	assert.Equal(t, "must not be negative", invalid.Fields["price"])
	assert.Empty(t, repo.products)

	rr = serve(t, pc.CreateProduct, call{method: http.MethodPost, body: models.Product{Name: "Mug", Price: "5.00", Category: "merch"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created models.Product
	decode(t, rr, &created)
	require.Len(t, repo.products, 1)
	id := created.ID.Hex()

	rr = serve(t, pc.UpdateProduct, call{method: http.MethodPut, vars: map[string]string{"id": id},
		body: models.Product{Name: "Big Mug", Price: "7.00"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Big Mug", repo.products[id].Name)

	rr = serve(t, pc.DeleteProduct, call{method: http.MethodDelete, vars: map[string]string{"id": id}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, repo.products)

	rr = serve(t, pc.DeleteProduct, call{method: http.MethodDelete, vars: map[string]string{"id": id}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCountCategories(t *testing.T) {
	assert.Empty(t, countCategories(nil))
}
