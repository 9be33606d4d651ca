package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"sales-micro/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence. An order is
// stored together with its lines and payments; reads return the full
// aggregate.
type OrderRepository interface {
	// Create persists a new order with its lines
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its lines and payments
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// GetByNumber retrieves an order by its order number
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)

	// Update persists aggregate changes (status, payments)
	Update(ctx context.Context, order *domain.Order) error

	// List retrieves all orders
	List(ctx context.Context) ([]*domain.Order, error)

	// ListByCustomer retrieves orders for a customer
	ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error)

	// ListByStatus retrieves orders in a status
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// LastOrderNumberWithPrefix returns the highest order number starting with
	// the prefix, or an empty string if none exists
	LastOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

// CustomerInfo is the customer contract consumed from the customers service
type CustomerInfo struct {
	ID           uint
	Name         string
	Active       bool
	DiscountRate decimal.Decimal
}

// CustomerDirectory defines the customer lookup used during order creation
type CustomerDirectory interface {
	// GetCustomer retrieves a customer by ID
	GetCustomer(ctx context.Context, customerID uint) (*CustomerInfo, error)
}

// ProductInfo is the product contract consumed from the products service
type ProductInfo struct {
	ID        uint
	Name      string
	UnitPrice decimal.Decimal
	Stock     int
	Available bool
}

// ProductCatalog defines the product lookup and stock adjustment used by the
// creation saga and by cancellation
type ProductCatalog interface {
	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, productID uint) (*ProductInfo, error)

	// AdjustStock applies a signed stock delta: negative reserves stock,
	// positive returns it
	AdjustStock(ctx context.Context, productID uint, delta int) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderCancelled publishes an order cancelled event
	PublishOrderCancelled(ctx context.Context, order *domain.Order) error
}
