package transport

import (
	"context"

	"github.com/bgmsons/catalog/pkg/api"
)

// ProductStore handles persistence of catalog products. Implementations
// return storage.ErrNotFound for unknown IDs and storage.ErrConflict when
// creating a product whose ID already exists.
type ProductStore interface {
	// ListProducts returns all products, newest first (by created date,
	// then by ID).
	ListProducts(ctx context.Context) ([]*api.Product, error)

	// GetProduct retrieves a product by ID.
	GetProduct(ctx context.Context, id string) (*api.Product, error)

	// CreateProduct persists a new product. The ID must already be set.
	CreateProduct(ctx context.Context, p *api.Product) error

	// UpdateProduct replaces an existing product. Returns
	// storage.ErrNotFound if the product does not exist.
	UpdateProduct(ctx context.Context, p *api.Product) error

	// DeleteProduct removes a product by ID.
	DeleteProduct(ctx context.Context, id string) error

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases database connections and resources.
	Close() error
}
