// routes/routes.go
package routes

import (
	"go-storefront/controllers"
	"go-storefront/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// Controllers bundles every handler group the router serves
type Controllers struct {
	State    *controllers.StateController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Product  *controllers.ProductController
	User     *controllers.UserController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/register", c.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", c.User.Login).Methods(http.MethodPost)
	router.HandleFunc("/verify", c.User.VerifyEmail).Methods(http.MethodGet)
	router.HandleFunc("/logout", c.User.Logout).Methods(http.MethodPost)

	// State routes
	router.HandleFunc("/state", c.State.GetState).Methods(http.MethodGet)
	router.HandleFunc("/state/ui", c.State.UpdateUI).Methods(http.MethodPatch)

	// Product routes
	router.HandleFunc("/products", c.Product.GetProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods(http.MethodGet)

	// Admin routes
	admin := router.PathPrefix("/products").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("", c.Product.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", c.Product.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/{id}", c.Product.DeleteProduct).Methods(http.MethodDelete)

	// Cart routes
	router.HandleFunc("/cart", c.Cart.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/cart/items", c.Cart.AddToCart).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{id}/increase", c.Cart.IncreaseQuantity).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{id}/decrease", c.Cart.DecreaseQuantity).Methods(http.MethodPost)
	router.HandleFunc("/cart/items/{id}", c.Cart.RemoveFromCart).Methods(http.MethodDelete)
	router.HandleFunc("/cart/removal/confirm", c.Cart.ConfirmRemoval).Methods(http.MethodPost)
	router.HandleFunc("/cart/removal/cancel", c.Cart.CancelRemoval).Methods(http.MethodPost)
	router.HandleFunc("/cart/selection/{id}", c.Cart.ToggleSelection).Methods(http.MethodPut)

	// Checkout routes, open to guests
	checkout := router.PathPrefix("/checkout").Subrouter()
	checkout.Use(middleware.OptionalAuthMiddleware)
	checkout.HandleFunc("", c.Checkout.GetCheckout).Methods(http.MethodGet)
	checkout.HandleFunc("", c.Checkout.SubmitCheckout).Methods(http.MethodPost)
	checkout.HandleFunc("/regions", c.Checkout.GetRegions).Methods(http.MethodGet)

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", c.User.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", c.User.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/profile/addresses", c.User.AddAddress).Methods(http.MethodPost)
	protected.HandleFunc("/profile/addresses/{id}", c.User.UpdateAddress).Methods(http.MethodPut)
	protected.HandleFunc("/profile/addresses/{id}", c.User.DeleteAddress).Methods(http.MethodDelete)
	protected.HandleFunc("/orders", c.User.GetOrders).Methods(http.MethodGet)
}
