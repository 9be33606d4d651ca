package ports

import (
	"context"

	"sales-micro/internal/products/domain"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uint) (*domain.Product, error)

	// GetBySKU retrieves a product by SKU
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// ExistsBySKU reports whether a product with the SKU exists
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// List retrieves all products
	List(ctx context.Context) ([]*domain.Product, error)

	// ListAvailable retrieves active products with stock
	ListAvailable(ctx context.Context) ([]*domain.Product, error)

	// Search retrieves products whose name contains the given text
	Search(ctx context.Context, name string) ([]*domain.Product, error)

	// Update updates an existing product
	Update(ctx context.Context, product *domain.Product) error

	// Delete deletes a product by ID
	Delete(ctx context.Context, id uint) error

	// AdjustStock atomically applies a signed stock delta inside the database.
	// A negative delta that would drive stock below zero must fail without
	// modifying the row; the repository is the arbiter of stock consistency
	// under concurrent adjustments.
	AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error)
}
