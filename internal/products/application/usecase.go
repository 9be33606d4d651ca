package application

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales-micro/internal/products/domain"
	"sales-micro/internal/products/ports"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

// ProductUseCase handles product business logic
type ProductUseCase struct {
	repo ports.ProductRepository
	log  *logger.Logger
}

// NewProductUseCase creates a new product use case
func NewProductUseCase(repo ports.ProductRepository, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo: repo,
		log:  log,
	}
}

// CreateProductInput represents the input for creating a product
type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

// CreateProductOutput represents the output of creating a product
type CreateProductOutput struct {
	Product *domain.Product
}

// CreateProduct creates a new product
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*CreateProductOutput, error) {
	product, err := domain.NewProduct(
		input.SKU, input.Name, input.Description,
		input.Price, input.Stock, input.Category, input.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	exists, err := uc.repo.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, errors.NewInternal("failed to check sku existence", err)
	}
	if exists {
		return nil, domain.ErrSKUExists
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, errors.NewInternal("failed to create product", err)
	}

	uc.log.WithContext(ctx).Info("product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU),
	)

	return &CreateProductOutput{Product: product}, nil
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetProductBySKU retrieves a product by SKU
func (uc *ProductUseCase) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return uc.repo.GetBySKU(ctx, strings.ToUpper(sku))
}

// ListProducts retrieves all products, optionally only available ones
func (uc *ProductUseCase) ListProducts(ctx context.Context, availableOnly bool) ([]*domain.Product, error) {
	if availableOnly {
		return uc.repo.ListAvailable(ctx)
	}
	return uc.repo.List(ctx)
}

// SearchProducts retrieves products by name fragment
func (uc *ProductUseCase) SearchProducts(ctx context.Context, name string) ([]*domain.Product, error) {
	return uc.repo.Search(ctx, name)
}

// UpdateProductInput represents the input for updating a product
type UpdateProductInput struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
}

// UpdateProduct updates a product's catalog attributes. Stock is deliberately
// excluded; it only moves through AdjustStock.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, input UpdateProductInput) (*domain.Product, error) {
	product, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Category = input.Category
	product.ImageURL = input.ImageURL
	product.UpdatedAt = time.Now()

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, errors.NewInternal("failed to update product", err)
	}

	return product, nil
}

// AdjustStockInput represents a stock adjustment request
type AdjustStockInput struct {
	ID        uint
	Quantity  int
	Operation domain.StockOperation
}

// AdjustStock applies a stock adjustment. SUBTRACT is a reservation and ADD a
// return; both resolve to a single atomic in-database update.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, input AdjustStockInput) (*domain.Product, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrQuantityInvalid
	}

	var delta int
	switch input.Operation {
	case domain.StockOperationAdd:
		delta = input.Quantity
	case domain.StockOperationSubtract:
		delta = -input.Quantity
	default:
		return nil, domain.ErrStockOperationUnknown
	}

	product, err := uc.repo.AdjustStock(ctx, input.ID, delta)
	if err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("stock adjusted",
		zap.Uint("product_id", product.ID),
		zap.Int("delta", delta),
		zap.Int("stock", product.Stock),
	)

	return product, nil
}

// ActivateProduct marks a product as active
func (uc *ProductUseCase) ActivateProduct(ctx context.Context, id uint) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	product.Activate()
	if err := uc.repo.Update(ctx, product); err != nil {
		return errors.NewInternal("failed to activate product", err)
	}
	return nil
}

// DeactivateProduct marks a product as inactive
func (uc *ProductUseCase) DeactivateProduct(ctx context.Context, id uint) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	product.Deactivate()
	if err := uc.repo.Update(ctx, product); err != nil {
		return errors.NewInternal("failed to deactivate product", err)
	}
	return nil
}

// DeleteProduct deletes a product by ID
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id uint) error {
	return uc.repo.Delete(ctx, id)
}
