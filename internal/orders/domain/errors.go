package domain

import (
	"fmt"

	"sales-micro/pkg/errors"
)

// Domain-specific errors
var (
	ErrQuantityInvalid         = errors.NewValidation("quantity must be greater than 0", nil)
	ErrUnitPriceNegative       = errors.NewValidation("unit price cannot be negative", nil)
	ErrPaymentAmountInvalid    = errors.NewValidation("payment amount must be greater than 0", nil)
	ErrPaymentMethodUnknown    = errors.NewValidation("payment method is not supported", nil)
	ErrDiscountNegative        = errors.NewValidation("discount cannot be negative", nil)
	ErrDiscountExceedsSubtotal = errors.NewValidation("discount cannot exceed the subtotal", nil)
	ErrLinesRequired           = errors.NewValidation("an order needs at least one line", nil)
	ErrNotFullyPaid            = errors.NewConflict("order is not fully paid")
	ErrPayCancelled            = errors.NewConflict("a cancelled order cannot be paid")
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uint) error {
	return errors.NewNotFound("order", id)
}

// NewOrderNumberNotFound creates a not found error with the order number
func NewOrderNumberNotFound(number string) error {
	return errors.NewNotFound("order", number)
}

// NewStatusUnknown creates a validation error for an unknown status string
func NewStatusUnknown(status string) error {
	return errors.NewValidation("unknown order status", map[string]interface{}{
		"status": status,
	})
}

// NewIllegalTransition creates a conflict error naming the current status and
// the rejected operation
func NewIllegalTransition(current OrderStatus, op string) error {
	return &errors.AppError{
		Code:    errors.CodeConflict,
		Message: fmt.Sprintf("cannot %s an order in status %s", op, current),
		Details: map[string]interface{}{
			"current_status": string(current),
			"operation":      op,
		},
	}
}
