package domain

import "sales-micro/pkg/errors"

// Domain-specific errors
var (
	ErrNameRequired        = errors.NewValidation("name is required", nil)
	ErrNameLength          = errors.NewValidation("name must be between 2 and 100 characters", nil)
	ErrEmailRequired       = errors.NewValidation("email is required", nil)
	ErrEmailInvalid        = errors.NewValidation("email format is invalid", nil)
	ErrTaxIDRequired       = errors.NewValidation("tax_id is required", nil)
	ErrCustomerTypeInvalid = errors.NewValidation("customer_type must be REGULAR, VIP or WHOLESALE", nil)
	ErrEmailExists         = errors.NewConflict("email already exists")
	ErrTaxIDExists         = errors.NewConflict("tax_id already exists")
)

// NewCustomerNotFound creates a not found error with the customer ID
func NewCustomerNotFound(id uint) error {
	return errors.NewNotFound("customer", id)
}

// NewCustomerCodeNotFound creates a not found error with the customer code
func NewCustomerCodeNotFound(code string) error {
	return errors.NewNotFound("customer", code)
}
