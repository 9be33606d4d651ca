package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseStatus validates a status string
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", NewStatusUnknown(s)
	}
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodWallet       PaymentMethod = "WALLET"
)

// OrderLine is a snapshot of a product at order-creation time. Name and unit
// price are copied from the catalog so later catalog changes never touch the
// order.
type OrderLine struct {
	ID          uint
	ProductID   uint
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// NewOrderLine creates an order line with the line total computed eagerly
func NewOrderLine(productID uint, productName string, unitPrice decimal.Decimal, quantity int) (*OrderLine, error) {
	if quantity <= 0 {
		return nil, ErrQuantityInvalid
	}
	if unitPrice.IsNegative() {
		return nil, ErrUnitPriceNegative
	}
	return &OrderLine{
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Payment is a single payment applied against an order
type Payment struct {
	ID            uint
	Amount        decimal.Decimal
	Method        PaymentMethod
	TransactionID string
	PaymentDate   time.Time
	Notes         string
}

// NewPayment creates a payment with validation
func NewPayment(amount decimal.Decimal, method PaymentMethod, transactionID, notes string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}
	switch method {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodCash,
		PaymentMethodBankTransfer, PaymentMethodWallet:
	default:
		return nil, ErrPaymentMethodUnknown
	}
	return &Payment{
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		PaymentDate:   time.Now(),
		Notes:         notes,
	}, nil
}

// Order is the sale order aggregate. It exclusively owns its lines and
// payments; totals are recomputed whenever a line is added and the status only
// moves through the legal transitions below.
type Order struct {
	ID          uint
	OrderNumber string
	CustomerID  uint
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	Status      OrderStatus
	Lines       []*OrderLine
	Payments    []*Payment
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder creates an empty pending order
func NewOrder(orderNumber string, customerID uint, notes string) *Order {
	return &Order{
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Subtotal:    decimal.Zero,
		Discount:    decimal.Zero,
		Total:       decimal.Zero,
		Status:      OrderStatusPending,
		Notes:       notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// AddLine appends a line and recomputes the totals
func (o *Order) AddLine(line *OrderLine) {
	o.Lines = append(o.Lines, line)
	o.Recalculate()
}

// Recalculate recomputes subtotal and total from the current lines and discount
func (o *Order) Recalculate() {
	subtotal := decimal.Zero
	for _, line := range o.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = o.Subtotal.Sub(o.Discount)
}

// ApplyDiscount sets the discount amount. A negative discount or one exceeding
// the subtotal is rejected rather than clamped.
func (o *Order) ApplyDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrDiscountNegative
	}
	if amount.GreaterThan(o.Subtotal) {
		return ErrDiscountExceedsSubtotal
	}
	o.Discount = amount
	o.Total = o.Subtotal.Sub(o.Discount)
	return nil
}

// TotalPaid returns the sum of all payment amounts
func (o *Order) TotalPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, payment := range o.Payments {
		paid = paid.Add(payment.Amount)
	}
	return paid
}

// IsFullyPaid reports whether the payments cover the total
func (o *Order) IsFullyPaid() bool {
	return o.TotalPaid().GreaterThanOrEqual(o.Total)
}

// PendingAmount returns the unpaid remainder of the total
func (o *Order) PendingAmount() decimal.Decimal {
	return o.Total.Sub(o.TotalPaid())
}

// AddPayment appends a payment. A cancelled order cannot be paid. When the
// payments reach the total and the order is still pending, it advances to
// confirmed automatically.
func (o *Order) AddPayment(payment *Payment) error {
	if o.Status == OrderStatusCancelled {
		return ErrPayCancelled
	}
	o.Payments = append(o.Payments, payment)
	if o.IsFullyPaid() && o.Status == OrderStatusPending {
		o.Status = OrderStatusConfirmed
	}
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm marks the order as confirmed; it requires full payment. Any
// non-terminal status accepts it, so confirming an auto-confirmed order again
// is not an error.
func (o *Order) Confirm() error {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered {
		return NewIllegalTransition(o.Status, "confirm")
	}
	if !o.IsFullyPaid() {
		return ErrNotFullyPaid
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = time.Now()
	return nil
}

// Process moves a confirmed order into preparation
func (o *Order) Process() error {
	if o.Status != OrderStatusConfirmed {
		return NewIllegalTransition(o.Status, "process")
	}
	o.Status = OrderStatusProcessing
	o.UpdatedAt = time.Now()
	return nil
}

// EnsureCancellable reports whether the order may be cancelled in its current
// status. Callers check this before issuing any stock return so an illegal
// cancel has no side effects.
func (o *Order) EnsureCancellable() error {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return nil
	default:
		return NewIllegalTransition(o.Status, "cancel")
	}
}

// Cancel marks the order as cancelled
func (o *Order) Cancel() error {
	if err := o.EnsureCancellable(); err != nil {
		return err
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// Ship marks the order as shipped
func (o *Order) Ship() error {
	if o.Status != OrderStatusConfirmed && o.Status != OrderStatusProcessing {
		return NewIllegalTransition(o.Status, "ship")
	}
	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// Deliver marks the order as delivered
func (o *Order) Deliver() error {
	if o.Status != OrderStatusShipped {
		return NewIllegalTransition(o.Status, "deliver")
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}
