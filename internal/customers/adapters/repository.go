package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sales-micro/internal/customers/domain"
	apperrors "sales-micro/pkg/errors"
)

// CustomerModel is the GORM model for customers (persistence layer)
type CustomerModel struct {
	ID           uint                `gorm:"primaryKey"`
	CustomerCode string              `gorm:"size:20;uniqueIndex;not null"`
	Name         string              `gorm:"size:100;not null"`
	Email        string              `gorm:"size:255;uniqueIndex;not null"`
	Phone        string              `gorm:"size:30"`
	Address      string              `gorm:"size:255"`
	TaxID        string              `gorm:"size:30;uniqueIndex;not null"`
	TaxIDType    domain.TaxIDType    `gorm:"size:20;not null"`
	CustomerType domain.CustomerType `gorm:"size:20;not null;default:'REGULAR'"`
	Active       bool                `gorm:"not null;default:true"`
	CreatedAt    time.Time           `gorm:"autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL
type PostgresCustomerRepository struct {
	db *gorm.DB
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository
func NewPostgresCustomerRepository(db *gorm.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// Migrate runs auto-migration for the customer model
func (r *PostgresCustomerRepository) Migrate() error {
	return r.db.AutoMigrate(&CustomerModel{})
}

// Create creates a new customer
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := toModel(customer)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	customer.ID = model.ID
	customer.CreatedAt = model.CreatedAt
	customer.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a customer by ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get customer", result.Error)
	}

	return toDomain(&model), nil
}

// GetByCode retrieves a customer by customer code
func (r *PostgresCustomerRepository) GetByCode(ctx context.Context, code string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).Where("customer_code = ?", code).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerCodeNotFound(code)
		}
		return nil, apperrors.NewInternal("failed to get customer by code", result.Error)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a customer by email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("customer", email)
		}
		return nil, apperrors.NewInternal("failed to get customer by email", result.Error)
	}

	return toDomain(&model), nil
}

// ExistsByTaxID reports whether a customer with the tax ID exists
func (r *PostgresCustomerRepository) ExistsByTaxID(ctx context.Context, taxID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("tax_id = ?", taxID).Count(&count)
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to check tax_id", result.Error)
	}
	return count > 0, nil
}

// List retrieves all customers
func (r *PostgresCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	var models []CustomerModel

	result := r.db.WithContext(ctx).Order("id").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list customers", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListActive retrieves all active customers
func (r *PostgresCustomerRepository) ListActive(ctx context.Context) ([]*domain.Customer, error) {
	var models []CustomerModel

	result := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list active customers", result.Error)
	}

	return toDomainSlice(models), nil
}

// Update updates an existing customer
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	model := toModel(customer)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update customer", result.Error)
	}

	customer.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a customer by ID
func (r *PostgresCustomerRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&CustomerModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete customer", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCustomerNotFound(id)
	}
	return nil
}

// LastCodeWithPrefix returns the highest customer code starting with the prefix
func (r *PostgresCustomerRepository) LastCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).
		Where("customer_code LIKE ?", prefix+"%").
		Order("customer_code DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperrors.NewInternal("failed to query last customer code", result.Error)
	}

	return model.CustomerCode, nil
}

// toModel converts a domain entity to a GORM model
func toModel(customer *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:           customer.ID,
		CustomerCode: customer.CustomerCode,
		Name:         customer.Name,
		Email:        customer.Email,
		Phone:        customer.Phone,
		Address:      customer.Address,
		TaxID:        customer.TaxID,
		TaxIDType:    customer.TaxIDType,
		CustomerType: customer.CustomerType,
		Active:       customer.Active,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:           model.ID,
		CustomerCode: model.CustomerCode,
		Name:         model.Name,
		Email:        model.Email,
		Phone:        model.Phone,
		Address:      model.Address,
		TaxID:        model.TaxID,
		TaxIDType:    model.TaxIDType,
		CustomerType: model.CustomerType,
		Active:       model.Active,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toDomainSlice(models []CustomerModel) []*domain.Customer {
	customers := make([]*domain.Customer, len(models))
	for i := range models {
		customers[i] = toDomain(&models[i])
	}
	return customers
}
