package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sales-micro/internal/customers/domain"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	customers map[uint]*domain.Customer
	nextID    uint
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[uint]*domain.Customer),
		nextID:    1,
	}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	customer.ID = m.nextID
	m.nextID++
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	return customer, nil
}

func (m *MockCustomerRepository) GetByCode(ctx context.Context, code string) (*domain.Customer, error) {
	for _, customer := range m.customers {
		if customer.CustomerCode == code {
			return customer, nil
		}
	}
	return nil, domain.NewCustomerCodeNotFound(code)
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	for _, customer := range m.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, errors.NewNotFound("customer", email)
}

func (m *MockCustomerRepository) ExistsByTaxID(ctx context.Context, taxID string) (bool, error) {
	for _, customer := range m.customers {
		if customer.TaxID == taxID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	var result []*domain.Customer
	for _, customer := range m.customers {
		result = append(result, customer)
	}
	return result, nil
}

func (m *MockCustomerRepository) ListActive(ctx context.Context) ([]*domain.Customer, error) {
	var result []*domain.Customer
	for _, customer := range m.customers {
		if customer.Active {
			result = append(result, customer)
		}
	}
	return result, nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	m.customers[customer.ID] = customer
	return nil
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uint) error {
	delete(m.customers, id)
	return nil
}

func (m *MockCustomerRepository) LastCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, customer := range m.customers {
		if strings.HasPrefix(customer.CustomerCode, prefix) && customer.CustomerCode > last {
			last = customer.CustomerCode
		}
	}
	return last, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []interface{}
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	m.events = append(m.events, customer)
	return nil
}

func newTestUseCase() (*CustomerUseCase, *MockCustomerRepository, *MockEventPublisher) {
	repo := NewMockCustomerRepository()
	publisher := &MockEventPublisher{}
	log := logger.New("test", "debug")
	return NewCustomerUseCase(repo, publisher, log), repo, publisher
}

func TestCreateCustomer_Success(t *testing.T) {
	useCase, _, publisher := newTestUseCase()

	output, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:         "John Doe",
		Email:        "john@example.com",
		TaxID:        "TAX-001",
		TaxIDType:    domain.TaxIDTypeNational,
		CustomerType: domain.CustomerTypeVIP,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output.Customer.ID != 1 {
		t.Errorf("expected ID 1, got %d", output.Customer.ID)
	}

	wantPrefix := fmt.Sprintf("VIP-%d-", time.Now().Year())
	if !strings.HasPrefix(output.Customer.CustomerCode, wantPrefix) {
		t.Errorf("expected code prefix %q, got %q", wantPrefix, output.Customer.CustomerCode)
	}

	if !output.Customer.Active {
		t.Error("expected new customer to be active")
	}

	if len(publisher.events) != 1 {
		t.Errorf("expected 1 published event, got %d", len(publisher.events))
	}
}

func TestCreateCustomer_CodeSequenceIncrements(t *testing.T) {
	useCase, _, _ := newTestUseCase()

	first, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "First Customer",
		Email:     "first@example.com",
		TaxID:     "TAX-001",
		TaxIDType: domain.TaxIDTypeNational,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "Second Customer",
		Email:     "second@example.com",
		TaxID:     "TAX-002",
		TaxIDType: domain.TaxIDTypeNational,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	year := time.Now().Year()
	wantFirst := fmt.Sprintf("REG-%d-00001", year)
	wantSecond := fmt.Sprintf("REG-%d-00002", year)

	if first.Customer.CustomerCode != wantFirst {
		t.Errorf("expected first code %q, got %q", wantFirst, first.Customer.CustomerCode)
	}
	if second.Customer.CustomerCode != wantSecond {
		t.Errorf("expected second code %q, got %q", wantSecond, second.Customer.CustomerCode)
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	useCase, _, _ := newTestUseCase()

	input := CreateCustomerInput{
		Name:      "John Doe",
		Email:     "john@example.com",
		TaxID:     "TAX-001",
		TaxIDType: domain.TaxIDTypeNational,
	}
	if _, err := useCase.CreateCustomer(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	input.TaxID = "TAX-002"
	_, err := useCase.CreateCustomer(context.Background(), input)
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreateCustomer_DuplicateTaxID(t *testing.T) {
	useCase, _, _ := newTestUseCase()

	if _, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "John Doe",
		Email:     "john@example.com",
		TaxID:     "TAX-001",
		TaxIDType: domain.TaxIDTypeNational,
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		TaxID:     "TAX-001",
		TaxIDType: domain.TaxIDTypeNational,
	})
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestExtractSequence_Malformed(t *testing.T) {
	cases := map[string]int{
		"REG-2025-00042": 42,
		"REG-2025-junk":  0,
		"malformed":      0,
		"":               0,
		"REG-2025-":      0,
	}
	for code, want := range cases {
		if got := extractSequence(code); got != want {
			t.Errorf("extractSequence(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestPromoteToVIP_ChangesDiscount(t *testing.T) {
	useCase, repo, _ := newTestUseCase()

	output, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "Regular Customer",
		Email:     "regular@example.com",
		TaxID:     "TAX-003",
		TaxIDType: domain.TaxIDTypeNational,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !output.Customer.DiscountRate().IsZero() {
		t.Errorf("expected zero discount for regular customer, got %s", output.Customer.DiscountRate())
	}

	if err := useCase.PromoteToVIP(context.Background(), output.Customer.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	promoted, _ := repo.GetByID(context.Background(), output.Customer.ID)
	if promoted.DiscountRate().String() != "0.15" {
		t.Errorf("expected 0.15 discount after promotion, got %s", promoted.DiscountRate())
	}
}

func TestDeactivateCustomer(t *testing.T) {
	useCase, repo, _ := newTestUseCase()

	output, err := useCase.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:      "To Deactivate",
		Email:     "bye@example.com",
		TaxID:     "TAX-004",
		TaxIDType: domain.TaxIDTypeNational,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := useCase.DeactivateCustomer(context.Background(), output.Customer.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deactivated, _ := repo.GetByID(context.Background(), output.Customer.ID)
	if deactivated.Active {
		t.Error("expected customer to be inactive")
	}
}
