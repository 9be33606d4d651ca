package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sales-micro/internal/customers/domain"
	"sales-micro/internal/customers/ports"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"

	"go.uber.org/zap"
)

// CustomerUseCase handles customer business logic
type CustomerUseCase struct {
	repo      ports.CustomerRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewCustomerUseCase creates a new customer use case
func NewCustomerUseCase(repo ports.CustomerRepository, publisher ports.EventPublisher, log *logger.Logger) *CustomerUseCase {
	return &CustomerUseCase{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// CreateCustomerInput represents the input for creating a customer
type CreateCustomerInput struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	TaxID        string
	TaxIDType    domain.TaxIDType
	CustomerType domain.CustomerType
}

// CreateCustomerOutput represents the output of creating a customer
type CreateCustomerOutput struct {
	Customer *domain.Customer
}

// CreateCustomer creates a new customer with a generated customer code
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CreateCustomerOutput, error) {
	customer, err := domain.NewCustomer(
		input.Name, input.Email, input.Phone, input.Address,
		input.TaxID, input.TaxIDType, input.CustomerType,
	)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByEmail(ctx, customer.Email)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, errors.NewInternal("failed to check email existence", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	taxIDTaken, err := uc.repo.ExistsByTaxID(ctx, customer.TaxID)
	if err != nil {
		return nil, errors.NewInternal("failed to check tax_id existence", err)
	}
	if taxIDTaken {
		return nil, domain.ErrTaxIDExists
	}

	code, err := uc.generateCode(ctx, customer)
	if err != nil {
		return nil, err
	}
	customer.CustomerCode = code

	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, errors.NewInternal("failed to create customer", err)
	}

	// Publish event (async, don't fail on error)
	if uc.publisher != nil {
		if err := uc.publisher.PublishCustomerCreated(ctx, customer); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish customer created event",
				zap.Error(err),
				zap.Uint("customer_id", customer.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("customer_code", customer.CustomerCode),
		zap.String("email", customer.Email),
	)

	return &CreateCustomerOutput{Customer: customer}, nil
}

// generateCode builds the next customer code for the customer's type and the current
// year, re-deriving the sequence from the highest persisted code under that prefix.
func (uc *CustomerUseCase) generateCode(ctx context.Context, customer *domain.Customer) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d", customer.CodePrefix(), time.Now().Year())

	lastCode, err := uc.repo.LastCodeWithPrefix(ctx, yearPrefix)
	if err != nil {
		return "", errors.NewInternal("failed to derive customer code sequence", err)
	}

	next := extractSequence(lastCode) + 1
	return fmt.Sprintf("%s-%05d", yearPrefix, next), nil
}

// extractSequence parses the trailing sequence of a customer code; malformed codes
// count as zero so generation can recover from bad stored data.
func extractSequence(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 || idx == len(code)-1 {
		return 0
	}
	seq, err := strconv.Atoi(code[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}

// GetCustomerInput represents the input for getting a customer
type GetCustomerInput struct {
	ID uint
}

// GetCustomerOutput represents the output of getting a customer
type GetCustomerOutput struct {
	Customer *domain.Customer
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, input GetCustomerInput) (*GetCustomerOutput, error) {
	customer, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetCustomerOutput{Customer: customer}, nil
}

// GetCustomerByCode retrieves a customer by customer code
func (uc *CustomerUseCase) GetCustomerByCode(ctx context.Context, code string) (*GetCustomerOutput, error) {
	customer, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &GetCustomerOutput{Customer: customer}, nil
}

// ListCustomers retrieves all customers, optionally only active ones
func (uc *CustomerUseCase) ListCustomers(ctx context.Context, activeOnly bool) ([]*domain.Customer, error) {
	if activeOnly {
		return uc.repo.ListActive(ctx)
	}
	return uc.repo.List(ctx)
}

// UpdateCustomerInput represents the input for updating a customer's contact details
type UpdateCustomerInput struct {
	ID      uint
	Name    string
	Email   string
	Phone   string
	Address string
}

// UpdateCustomer updates a customer's contact details
func (uc *CustomerUseCase) UpdateCustomer(ctx context.Context, input UpdateCustomerInput) (*GetCustomerOutput, error) {
	customer, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.UpdatedAt = time.Now()

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, errors.NewInternal("failed to update customer", err)
	}

	return &GetCustomerOutput{Customer: customer}, nil
}

// PromoteToVIP upgrades a customer to the VIP type
func (uc *CustomerUseCase) PromoteToVIP(ctx context.Context, id uint) error {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	customer.PromoteToVIP()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return errors.NewInternal("failed to promote customer", err)
	}

	uc.log.WithContext(ctx).Info("customer promoted to VIP",
		zap.Uint("customer_id", customer.ID),
	)
	return nil
}

// ActivateCustomer marks a customer as active
func (uc *CustomerUseCase) ActivateCustomer(ctx context.Context, id uint) error {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	customer.Activate()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return errors.NewInternal("failed to activate customer", err)
	}
	return nil
}

// DeactivateCustomer marks a customer as inactive
func (uc *CustomerUseCase) DeactivateCustomer(ctx context.Context, id uint) error {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	customer.Deactivate()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return errors.NewInternal("failed to deactivate customer", err)
	}
	return nil
}

// DeleteCustomer deletes a customer by ID
func (uc *CustomerUseCase) DeleteCustomer(ctx context.Context, id uint) error {
	return uc.repo.Delete(ctx, id)
}
