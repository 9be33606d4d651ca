package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sales-micro/internal/products/domain"
	apperrors "sales-micro/pkg/errors"
)

// ProductModel is the GORM model for products (persistence layer)
type ProductModel struct {
	ID          uint            `gorm:"primaryKey"`
	SKU         string          `gorm:"size:50;uniqueIndex;not null"`
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:1000"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Category    string          `gorm:"size:50"`
	ImageURL    string          `gorm:"size:500"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db *gorm.DB
}

// NewPostgresProductRepository creates a new PostgreSQL product repository
func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Migrate runs auto-migration for the product model
func (r *PostgresProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{})
}

// Create creates a new product
func (r *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	model := toModel(product)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	product.ID = model.ID
	product.CreatedAt = model.CreatedAt
	product.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var model ProductModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get product", result.Error)
	}

	return toDomain(&model), nil
}

// GetBySKU retrieves a product by SKU
func (r *PostgresProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var model ProductModel

	result := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("product", sku)
		}
		return nil, apperrors.NewInternal("failed to get product by sku", result.Error)
	}

	return toDomain(&model), nil
}

// ExistsBySKU reports whether a product with the SKU exists
func (r *PostgresProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("sku = ?", sku).Count(&count)
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to check sku", result.Error)
	}
	return count > 0, nil
}

// List retrieves all products
func (r *PostgresProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel

	result := r.db.WithContext(ctx).Order("id").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list products", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListAvailable retrieves active products with stock
func (r *PostgresProductRepository) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel

	result := r.db.WithContext(ctx).Where("active = ? AND stock > 0", true).Order("id").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list available products", result.Error)
	}

	return toDomainSlice(models), nil
}

// Search retrieves products whose name contains the given text
func (r *PostgresProductRepository) Search(ctx context.Context, name string) ([]*domain.Product, error) {
	var models []ProductModel

	result := r.db.WithContext(ctx).Where("name ILIKE ?", "%"+name+"%").Order("id").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to search products", result.Error)
	}

	return toDomainSlice(models), nil
}

// Update updates an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	model := toModel(product)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update product", result.Error)
	}

	product.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a product by ID
func (r *PostgresProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// AdjustStock atomically applies a signed stock delta. The guard on the UPDATE
// serializes concurrent subtracts: a reservation that would drive stock below
// zero matches no row and fails as insufficient stock.
func (r *PostgresProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}

	result := query.UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to adjust stock", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the product does not exist or the subtract guard rejected it
		var count int64
		if err := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, apperrors.NewInternal("failed to adjust stock", err)
		}
		if count == 0 {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, domain.NewInsufficientStock(id, -delta)
	}

	return r.GetByID(ctx, id)
}

// toModel converts a domain entity to a GORM model
func toModel(product *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		Active:      product.Active,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		SKU:         model.SKU,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Stock:       model.Stock,
		Category:    model.Category,
		ImageURL:    model.ImageURL,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toDomainSlice(models []ProductModel) []*domain.Product {
	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = toDomain(&models[i])
	}
	return products
}
