package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sales-micro/internal/orders/domain"
	apperrors "sales-micro/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID          uint               `gorm:"primaryKey"`
	OrderNumber string             `gorm:"size:20;uniqueIndex;not null"`
	CustomerID  uint               `gorm:"index;not null"`
	Subtotal    decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Discount    decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Total       decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Status      domain.OrderStatus `gorm:"size:20;index;not null;default:'PENDING'"`
	Notes       string             `gorm:"size:500"`
	Lines       []OrderLineModel   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments    []PaymentModel     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the GORM model for order lines
type OrderLineModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	ProductID   uint            `gorm:"not null"`
	ProductName string          `gorm:"size:100;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// PaymentModel is the GORM model for payments
type PaymentModel struct {
	ID            uint                 `gorm:"primaryKey"`
	OrderID       uint                 `gorm:"index;not null"`
	Amount        decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Method        domain.PaymentMethod `gorm:"size:20;not null"`
	TransactionID string               `gorm:"size:100"`
	PaymentDate   time.Time            `gorm:"not null"`
	Notes         string               `gorm:"size:255"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderLineModel{}, &PaymentModel{})
}

// Create persists a new order with its lines
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	for i, line := range model.Lines {
		order.Lines[i].ID = line.ID
	}

	return nil
}

// GetByID retrieves an order with its lines and payments
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toOrderDomain(&model), nil
}

// GetByNumber retrieves an order by its order number
func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("order_number = ?", number).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNumberNotFound(number)
		}
		return nil, apperrors.NewInternal("failed to get order by number", result.Error)
	}

	return toOrderDomain(&model), nil
}

// Update persists aggregate changes. Payments added on the aggregate since the
// last read are inserted along with the updated order row.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)

	result := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order", result.Error)
	}

	order.UpdatedAt = model.UpdatedAt
	for i, payment := range model.Payments {
		order.Payments[i].ID = payment.ID
	}

	return nil
}

// List retrieves all orders
func (r *PostgresOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

// ListByCustomer retrieves orders for a customer
func (r *PostgresOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID))
}

// ListByStatus retrieves orders in a status
func (r *PostgresOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status))
}

func (r *PostgresOrderRepository) list(_ context.Context, query *gorm.DB) ([]*domain.Order, error) {
	var models []OrderModel

	result := query.
		Preload("Lines").
		Preload("Payments").
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toOrderDomain(&models[i])
	}
	return orders, nil
}

// LastOrderNumberWithPrefix returns the highest order number starting with the
// prefix, or an empty string if none exists
func (r *PostgresOrderRepository) LastOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperrors.NewInternal("failed to query last order number", result.Error)
	}

	return model.OrderNumber, nil
}

// toOrderModel converts a domain aggregate to GORM models
func toOrderModel(order *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Subtotal:    order.Subtotal,
		Discount:    order.Discount,
		Total:       order.Total,
		Status:      order.Status,
		Notes:       order.Notes,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	for _, line := range order.Lines {
		model.Lines = append(model.Lines, OrderLineModel{
			ID:          line.ID,
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		})
	}
	for _, payment := range order.Payments {
		model.Payments = append(model.Payments, PaymentModel{
			ID:            payment.ID,
			OrderID:       order.ID,
			Amount:        payment.Amount,
			Method:        payment.Method,
			TransactionID: payment.TransactionID,
			PaymentDate:   payment.PaymentDate,
			Notes:         payment.Notes,
		})
	}
	return model
}

// toOrderDomain converts GORM models to the domain aggregate
func toOrderDomain(model *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:          model.ID,
		OrderNumber: model.OrderNumber,
		CustomerID:  model.CustomerID,
		Subtotal:    model.Subtotal,
		Discount:    model.Discount,
		Total:       model.Total,
		Status:      model.Status,
		Notes:       model.Notes,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	for _, line := range model.Lines {
		order.Lines = append(order.Lines, &domain.OrderLine{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		})
	}
	for _, payment := range model.Payments {
		order.Payments = append(order.Payments, &domain.Payment{
			ID:            payment.ID,
			Amount:        payment.Amount,
			Method:        payment.Method,
			TransactionID: payment.TransactionID,
			PaymentDate:   payment.PaymentDate,
			Notes:         payment.Notes,
		})
	}
	return order
}
