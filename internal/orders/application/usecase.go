package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales-micro/internal/orders/domain"
	"sales-micro/internal/orders/ports"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

var maxDiscountRate = decimal.NewFromInt(1)

// OrderUseCase drives order creation and the order lifecycle
type OrderUseCase struct {
	repo      ports.OrderRepository
	customers ports.CustomerDirectory
	catalog   ports.ProductCatalog
	publisher ports.EventPublisher
	numbers   *OrderNumberGenerator
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	customers ports.CustomerDirectory,
	catalog ports.ProductCatalog,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		customers: customers,
		catalog:   catalog,
		publisher: publisher,
		numbers:   NewOrderNumberGenerator(repo),
		log:       log,
	}
}

// CreateOrderLineInput is one requested line of a new order
type CreateOrderLineInput struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	CustomerID uint
	Lines      []CreateOrderLineInput
	Notes      string
}

// CreateOrderOutput represents the output of creating an order
type CreateOrderOutput struct {
	Order *domain.Order
}

// reservation records a stock subtract that must be undone if a later step of
// the creation saga fails.
type reservation struct {
	ProductID uint
	Quantity  int
}

// CreateOrder runs the order creation saga: validate the customer, then per
// line validate the product and reserve its stock immediately, snapshot name
// and price from the catalog, apply the customer discount and persist the
// pending order. Any failure after the first reservation rolls back every
// reservation already made before the error is returned; the caller never
// observes a partially reserved order.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if len(input.Lines) == 0 {
		return nil, domain.ErrLinesRequired
	}

	customer, err := uc.customers.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, errors.NewValidation("customer is not active", map[string]interface{}{
			"customer_id": customer.ID,
		})
	}
	if customer.DiscountRate.IsNegative() || customer.DiscountRate.GreaterThan(maxDiscountRate) {
		return nil, errors.NewValidation("customer discount rate is out of range", map[string]interface{}{
			"customer_id":   customer.ID,
			"discount_rate": customer.DiscountRate.String(),
		})
	}

	number, err := uc.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(number, customer.ID, input.Notes)

	// Undo log of the saga: stock subtracts already issued, rolled back in
	// reverse on any later failure.
	var reserved []reservation

	for _, item := range input.Lines {
		if item.Quantity <= 0 {
			return nil, uc.rollback(ctx, reserved, domain.ErrQuantityInvalid)
		}

		product, err := uc.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, uc.rollback(ctx, reserved, err)
		}

		if !product.Available {
			return nil, uc.rollback(ctx, reserved, errors.NewValidation("product is not available", map[string]interface{}{
				"product_id":   product.ID,
				"product_name": product.Name,
			}))
		}
		if product.Stock < item.Quantity {
			return nil, uc.rollback(ctx, reserved, errors.NewValidation("insufficient stock", map[string]interface{}{
				"product_id": product.ID,
				"requested":  item.Quantity,
				"available":  product.Stock,
			}))
		}

		// Reserve immediately: availability can change between validation and
		// commit, so the subtract is the reservation, not a later batch.
		if err := uc.catalog.AdjustStock(ctx, product.ID, -item.Quantity); err != nil {
			return nil, uc.rollback(ctx, reserved, err)
		}
		reserved = append(reserved, reservation{ProductID: product.ID, Quantity: item.Quantity})

		// Snapshot name and price from the catalog, never from the request
		line, err := domain.NewOrderLine(product.ID, product.Name, product.UnitPrice, item.Quantity)
		if err != nil {
			return nil, uc.rollback(ctx, reserved, err)
		}
		order.AddLine(line)
	}

	if customer.DiscountRate.IsPositive() {
		// Cent precision, matching the stored numeric(12,2) columns
		discount := order.Subtotal.Mul(customer.DiscountRate).Round(2)
		if err := order.ApplyDiscount(discount); err != nil {
			return nil, uc.rollback(ctx, reserved, err)
		}
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, uc.rollback(ctx, reserved, errors.NewInternal("failed to persist order", err))
	}

	// Publish event (async, don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCreated(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("total", order.Total.String()),
	)

	return &CreateOrderOutput{Order: order}, nil
}

// rollback returns every reservation in the undo log, newest first, and then
// returns the original cause. A stock return that itself fails leaves the
// catalog inconsistent, so those are escalated as a compensation failure
// wrapping the cause instead of being swallowed.
func (uc *OrderUseCase) rollback(ctx context.Context, reserved []reservation, cause error) error {
	if len(reserved) == 0 {
		return cause
	}

	var failed, returned []map[string]interface{}
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		entry := map[string]interface{}{
			"product_id": r.ProductID,
			"quantity":   r.Quantity,
		}
		if err := uc.catalog.AdjustStock(ctx, r.ProductID, r.Quantity); err != nil {
			uc.log.WithContext(ctx).Error("stock compensation failed",
				zap.Error(err),
				zap.Uint("product_id", r.ProductID),
				zap.Int("quantity", r.Quantity),
			)
			failed = append(failed, entry)
		} else {
			returned = append(returned, entry)
		}
	}

	if len(failed) > 0 {
		// The returned lines are listed too: a retry must not re-credit them
		return errors.NewCompensationFailed(
			fmt.Sprintf("failed to return reserved stock for %d product(s)", len(failed)),
			map[string]interface{}{"failed": failed, "returned": returned},
			cause,
		)
	}
	return cause
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetOrderByNumber retrieves an order by order number
func (uc *OrderUseCase) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return uc.repo.GetByNumber(ctx, number)
}

// ListOrders retrieves all orders
func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return uc.repo.List(ctx)
}

// ListOrdersByCustomer retrieves orders for a customer
func (uc *OrderUseCase) ListOrdersByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	return uc.repo.ListByCustomer(ctx, customerID)
}

// ListOrdersByStatus retrieves orders in a status
func (uc *OrderUseCase) ListOrdersByStatus(ctx context.Context, status string) ([]*domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListByStatus(ctx, parsed)
}

// AddPaymentInput represents the input for paying against an order
type AddPaymentInput struct {
	OrderID       uint
	Amount        decimal.Decimal
	Method        domain.PaymentMethod
	TransactionID string
	Notes         string
}

// AddPayment applies a payment to an order. A pending order that becomes fully
// paid is confirmed automatically.
func (uc *OrderUseCase) AddPayment(ctx context.Context, input AddPaymentInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	payment, err := domain.NewPayment(input.Amount, input.Method, input.TransactionID, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := order.AddPayment(payment); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return nil, errors.NewInternal("failed to persist payment", err)
	}

	uc.log.WithContext(ctx).Info("payment added",
		zap.Uint("order_id", order.ID),
		zap.String("amount", payment.Amount.String()),
		zap.String("total_paid", order.TotalPaid().String()),
		zap.String("status", string(order.Status)),
	)

	return order, nil
}

// ConfirmOrder confirms a fully paid order
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, id uint) error {
	return uc.transition(ctx, id, "confirmed", func(order *domain.Order) error {
		return order.Confirm()
	})
}

// ProcessOrder moves a confirmed order into preparation
func (uc *OrderUseCase) ProcessOrder(ctx context.Context, id uint) error {
	return uc.transition(ctx, id, "processing", func(order *domain.Order) error {
		return order.Process()
	})
}

// ShipOrder marks an order as shipped
func (uc *OrderUseCase) ShipOrder(ctx context.Context, id uint) error {
	return uc.transition(ctx, id, "shipped", func(order *domain.Order) error {
		return order.Ship()
	})
}

// DeliverOrder marks an order as delivered
func (uc *OrderUseCase) DeliverOrder(ctx context.Context, id uint) error {
	return uc.transition(ctx, id, "delivered", func(order *domain.Order) error {
		return order.Deliver()
	})
}

// CancelOrder cancels an order and returns its reserved stock to the catalog.
// The legality check runs before any stock return, so an illegal cancel has no
// side effects. A stock return that fails aborts the cancel: the order stays
// in its current status and the failure is escalated for manual
// reconciliation.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id uint) error {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := order.EnsureCancellable(); err != nil {
		return err
	}

	var failed, returned []map[string]interface{}
	for _, line := range order.Lines {
		entry := map[string]interface{}{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		}
		if err := uc.catalog.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			uc.log.WithContext(ctx).Error("stock return failed during cancel",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
				zap.Uint("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
			)
			failed = append(failed, entry)
		} else {
			returned = append(returned, entry)
		}
	}
	if len(failed) > 0 {
		// The lines already credited are listed so a retry can skip them
		return errors.NewCompensationFailed(
			"failed to return stock while cancelling order",
			map[string]interface{}{"failed": failed, "returned": returned},
			nil,
		)
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return errors.NewInternal("failed to persist cancellation", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCancelled(ctx, order); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order cancelled event",
				zap.Error(err),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)

	return nil
}

func (uc *OrderUseCase) transition(ctx context.Context, id uint, name string, op func(*domain.Order) error) error {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := op(order); err != nil {
		return err
	}

	if err := uc.repo.Update(ctx, order); err != nil {
		return errors.NewInternal("failed to persist status change", err)
	}

	uc.log.WithContext(ctx).Info("order "+name,
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
	)

	return nil
}
