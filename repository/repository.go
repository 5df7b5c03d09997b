// Package repository holds the MongoDB-backed catalog, user and order stores.
package repository

import (
	"context"
	"errors"
	"go-storefront/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidID       = errors.New("invalid id")
)

// ProductRepository is the read side of the content store plus admin writes
type ProductRepository interface {
	List(ctx context.Context, keyword string) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, product models.Product) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores accounts and their address books
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	MarkVerified(ctx context.Context, token string) error
	UpdateDetails(ctx context.Context, id string, details models.AccountDetails) error
	SaveAddresses(ctx context.Context, id string, addresses []models.Address) error
}

// OrderRepository records submitted checkouts
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}
