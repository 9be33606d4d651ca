package domain

import (
	"fmt"

	"sales-micro/pkg/errors"
)

// Domain-specific errors
var (
	ErrSKURequired          = errors.NewValidation("sku is required", nil)
	ErrNameRequired         = errors.NewValidation("name is required", nil)
	ErrPriceInvalid         = errors.NewValidation("price must be greater than 0", nil)
	ErrStockNegative        = errors.NewValidation("stock cannot be negative", nil)
	ErrQuantityInvalid      = errors.NewValidation("quantity must be greater than 0", nil)
	ErrStockOperationUnknown = errors.NewValidation("operation must be ADD or SUBTRACT", nil)
	ErrSKUExists            = errors.NewConflict("sku already exists")
)

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uint) error {
	return errors.NewNotFound("product", id)
}

// NewInsufficientStock creates a validation error for a subtract that exceeds stock
func NewInsufficientStock(id uint, requested int) error {
	return errors.NewValidation(
		fmt.Sprintf("insufficient stock for product %d", id),
		map[string]interface{}{
			"product_id": id,
			"requested":  requested,
		},
	)
}
