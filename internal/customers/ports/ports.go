package ports

import (
	"context"

	"sales-micro/internal/customers/domain"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id uint) (*domain.Customer, error)

	// GetByCode retrieves a customer by customer code
	GetByCode(ctx context.Context, code string) (*domain.Customer, error)

	// GetByEmail retrieves a customer by email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)

	// ExistsByTaxID reports whether a customer with the tax ID exists
	ExistsByTaxID(ctx context.Context, taxID string) (bool, error)

	// List retrieves all customers
	List(ctx context.Context) ([]*domain.Customer, error)

	// ListActive retrieves all active customers
	ListActive(ctx context.Context) ([]*domain.Customer, error)

	// Update updates an existing customer
	Update(ctx context.Context, customer *domain.Customer) error

	// Delete deletes a customer by ID
	Delete(ctx context.Context, id uint) error

	// LastCodeWithPrefix returns the highest customer code starting with the prefix,
	// or an empty string if none exists
	LastCodeWithPrefix(ctx context.Context, prefix string) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishCustomerCreated publishes a customer created event
	PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error
}
