package controllers

import (
	"context"
	"errors"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/utils"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProductController handles product-related requests
type ProductController struct {
	Products repository.ProductRepository
	Sessions *session.Manager
	Timeout  time.Duration
	Logger   *zap.Logger

	listGroup singleflight.Group
}

// NewProductController creates a new ProductController
func NewProductController(products repository.ProductRepository, sessions *session.Manager, timeout time.Duration, logger *zap.Logger) *ProductController {
	return &ProductController{
		Products: products,
		Sessions: sessions,
		Timeout:  timeout,
		Logger:   logger,
	}
}

// CategoryCount is the number of listed products in one category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type productListResponse struct {
	Keyword    *string          `json:"keyword"`
	Products   []models.Product `json:"products"`
	Categories []CategoryCount  `json:"categories"`
}

// GetProducts lists products, filtered by the "q" keyword. The keyword is
// kept in the session's state until the next reload.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))

	sessionID := middleware.SessionID(r.Context())
	if sessionID != "" {
		_, err := pc.Sessions.Update(r.Context(), sessionID, func(state *models.AppState) error {
			state.Product.ProductFilterKeyword = keywordOrNil(keyword)
			return nil
		})
		if err != nil {
			pc.Logger.Warn("failed to store product filter", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	products, err := pc.list(r.Context(), keyword)
	if err != nil {
		pc.Logger.Error("failed to list products", zap.String("keyword", keyword), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}

	writeJSON(w, http.StatusOK, productListResponse{
		Keyword:    keywordOrNil(keyword),
		Products:   products,
		Categories: countCategories(products),
	})
}

// list collapses concurrent identical queries into one store round trip
func (pc *ProductController) list(ctx context.Context, keyword string) ([]models.Product, error) {
	v, err, _ := pc.listGroup.Do(strings.ToLower(keyword), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pc.Timeout)
		defer cancel()
		return pc.Products.List(ctx, keyword)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func countCategories(products []models.Product) []CategoryCount {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	product, err := pc.Products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		pc.writeRepoError(w, err, "Error fetching product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate(product); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if err := pc.Products.Create(ctx, &product); err != nil {
		pc.Logger.Error("failed to create product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := utils.Validate(product); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if err := pc.Products.Update(ctx, id, product); err != nil {
		pc.writeRepoError(w, err, "Error updating product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product updated"})
}

// DeleteProduct handles deleting a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if err := pc.Products.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		pc.writeRepoError(w, err, "Error deleting product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (pc *ProductController) writeRepoError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid product ID")
	case errors.Is(err, repository.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	default:
		pc.Logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}
