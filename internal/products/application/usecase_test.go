package application

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sales-micro/internal/products/domain"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	products map[uint]*domain.Product
	nextID   uint
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]*domain.Product),
		nextID:   1,
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = m.nextID
	m.nextID++
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	return product, nil
}

func (m *MockProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, product := range m.products {
		if product.SKU == sku {
			return product, nil
		}
	}
	return nil, errors.NewNotFound("product", sku)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	for _, product := range m.products {
		if product.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		result = append(result, product)
	}
	return result, nil
}

func (m *MockProductRepository) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if product.Available() {
			result = append(result, product)
		}
	}
	return result, nil
}

func (m *MockProductRepository) Search(ctx context.Context, name string) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if strings.Contains(strings.ToLower(product.Name), strings.ToLower(name)) {
			result = append(result, product)
		}
	}
	return result, nil
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, domain.NewProductNotFound(id)
	}
	if delta < 0 && product.Stock < -delta {
		return nil, domain.NewInsufficientStock(id, -delta)
	}
	product.Stock += delta
	return product, nil
}

func newTestUseCase() (*ProductUseCase, *MockProductRepository) {
	repo := NewMockProductRepository()
	log := logger.New("test", "debug")
	return NewProductUseCase(repo, log), repo
}

func TestCreateProduct_Success(t *testing.T) {
	useCase, _ := newTestUseCase()

	output, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "abc-001",
		Name:  "Keyboard",
		Price: decimal.NewFromFloat(49.90),
		Stock: 10,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.Product.SKU != "ABC-001" {
		t.Errorf("expected uppercased SKU, got %q", output.Product.SKU)
	}
	if !output.Product.Available() {
		t.Error("expected product to be available")
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	useCase, _ := newTestUseCase()

	input := CreateProductInput{
		SKU:   "ABC-001",
		Name:  "Keyboard",
		Price: decimal.NewFromFloat(49.90),
		Stock: 10,
	}
	if _, err := useCase.CreateProduct(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err := useCase.CreateProduct(context.Background(), input)
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	useCase, _ := newTestUseCase()

	_, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "ABC-002",
		Name:  "Free Keyboard",
		Price: decimal.Zero,
		Stock: 10,
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAdjustStock_Subtract(t *testing.T) {
	useCase, _ := newTestUseCase()

	output, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "ABC-003",
		Name:  "Mouse",
		Price: decimal.NewFromFloat(19.90),
		Stock: 5,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	product, err := useCase.AdjustStock(context.Background(), AdjustStockInput{
		ID:        output.Product.ID,
		Quantity:  3,
		Operation: domain.StockOperationSubtract,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if product.Stock != 2 {
		t.Errorf("expected stock 2, got %d", product.Stock)
	}
}

func TestAdjustStock_InsufficientStock(t *testing.T) {
	useCase, repo := newTestUseCase()

	output, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "ABC-004",
		Name:  "Monitor",
		Price: decimal.NewFromFloat(199.00),
		Stock: 2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = useCase.AdjustStock(context.Background(), AdjustStockInput{
		ID:        output.Product.ID,
		Quantity:  5,
		Operation: domain.StockOperationSubtract,
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	unchanged, _ := repo.GetByID(context.Background(), output.Product.ID)
	if unchanged.Stock != 2 {
		t.Errorf("expected stock unchanged at 2, got %d", unchanged.Stock)
	}
}

func TestAdjustStock_UnknownOperation(t *testing.T) {
	useCase, _ := newTestUseCase()

	_, err := useCase.AdjustStock(context.Background(), AdjustStockInput{
		ID:        1,
		Quantity:  1,
		Operation: "MULTIPLY",
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeactivateProduct_NotAvailable(t *testing.T) {
	useCase, repo := newTestUseCase()

	output, err := useCase.CreateProduct(context.Background(), CreateProductInput{
		SKU:   "ABC-005",
		Name:  "Webcam",
		Price: decimal.NewFromFloat(59.00),
		Stock: 7,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := useCase.DeactivateProduct(context.Background(), output.Product.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	product, _ := repo.GetByID(context.Background(), output.Product.ID)
	if product.Available() {
		t.Error("expected deactivated product to be unavailable")
	}
}
