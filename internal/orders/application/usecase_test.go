package application

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"sales-micro/internal/orders/domain"
	"sales-micro/internal/orders/ports"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	orders    map[uint]*domain.Order
	nextID    uint
	createErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]*domain.Order),
		nextID: 1,
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = m.nextID
	m.nextID++
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return order, nil
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == number {
			return order, nil
		}
	}
	return nil, domain.NewOrderNumberNotFound(number)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		result = append(result, order)
	}
	return result, nil
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.CustomerID == customerID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.Status == status {
			result = append(result, order)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) LastOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, order := range m.orders {
		if strings.HasPrefix(order.OrderNumber, prefix) && order.OrderNumber > last {
			last = order.OrderNumber
		}
	}
	return last, nil
}

// MockCustomerDirectory is a mock implementation of CustomerDirectory
type MockCustomerDirectory struct {
	customers map[uint]*ports.CustomerInfo
}

func NewMockCustomerDirectory() *MockCustomerDirectory {
	return &MockCustomerDirectory{customers: make(map[uint]*ports.CustomerInfo)}
}

func (m *MockCustomerDirectory) GetCustomer(ctx context.Context, customerID uint) (*ports.CustomerInfo, error) {
	customer, ok := m.customers[customerID]
	if !ok {
		return nil, errors.NewNotFound("customer", fmt.Sprintf("%d", customerID))
	}
	return customer, nil
}

// MockProductCatalog is a mock implementation of ProductCatalog
type MockProductCatalog struct {
	products map[uint]*ports.ProductInfo

	// failAdjustFor makes AdjustStock fail for the given product IDs
	failAdjustFor map[uint]error

	// adjustments records every stock delta applied, in order
	adjustments []stockAdjustment
}

type stockAdjustment struct {
	ProductID uint
	Delta     int
}

func NewMockProductCatalog() *MockProductCatalog {
	return &MockProductCatalog{
		products:      make(map[uint]*ports.ProductInfo),
		failAdjustFor: make(map[uint]error),
	}
}

func (m *MockProductCatalog) GetProduct(ctx context.Context, productID uint) (*ports.ProductInfo, error) {
	product, ok := m.products[productID]
	if !ok {
		return nil, errors.NewNotFound("product", fmt.Sprintf("%d", productID))
	}
	return product, nil
}

func (m *MockProductCatalog) AdjustStock(ctx context.Context, productID uint, delta int) error {
	if err, ok := m.failAdjustFor[productID]; ok {
		return err
	}
	product, ok := m.products[productID]
	if !ok {
		return errors.NewNotFound("product", fmt.Sprintf("%d", productID))
	}
	if product.Stock+delta < 0 {
		return errors.NewValidation("insufficient stock", nil)
	}
	product.Stock += delta
	m.adjustments = append(m.adjustments, stockAdjustment{ProductID: productID, Delta: delta})
	return nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	created   []*domain.Order
	cancelled []*domain.Order
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.created = append(m.created, order)
	return nil
}

func (m *MockEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	m.cancelled = append(m.cancelled, order)
	return nil
}

type fixture struct {
	repo      *MockOrderRepository
	customers *MockCustomerDirectory
	catalog   *MockProductCatalog
	publisher *MockEventPublisher
	useCase   *OrderUseCase
}

func newFixture() *fixture {
	f := &fixture{
		repo:      NewMockOrderRepository(),
		customers: NewMockCustomerDirectory(),
		catalog:   NewMockProductCatalog(),
		publisher: &MockEventPublisher{},
	}
	log := logger.New("test", "debug")
	f.useCase = NewOrderUseCase(f.repo, f.customers, f.catalog, f.publisher, log)

	f.customers.customers[1] = &ports.CustomerInfo{
		ID: 1, Name: "Ada", Active: true, DiscountRate: decimal.Zero,
	}
	f.customers.customers[2] = &ports.CustomerInfo{
		ID: 2, Name: "Grace", Active: true, DiscountRate: dec("0.15"),
	}
	f.catalog.products[10] = &ports.ProductInfo{
		ID: 10, Name: "Keyboard", UnitPrice: dec("19.99"), Stock: 5, Available: true,
	}
	f.catalog.products[20] = &ports.ProductInfo{
		ID: 20, Name: "Mouse", UnitPrice: dec("10.00"), Stock: 3, Available: true,
	}
	return f
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines: []CreateOrderLineInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 20, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order := output.Order
	if order.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want PENDING", order.Status)
	}
	if got, want := order.Subtotal, dec("49.98"); !got.Equal(want) {
		t.Errorf("subtotal = %s, want %s", got, want)
	}
	if got, want := order.Total, dec("49.98"); !got.Equal(want) {
		t.Errorf("total = %s, want %s", got, want)
	}
	if order.Lines[0].ProductName != "Keyboard" {
		t.Errorf("line snapshot name = %q, want catalog name", order.Lines[0].ProductName)
	}

	if f.catalog.products[10].Stock != 3 {
		t.Errorf("keyboard stock = %d, want 3", f.catalog.products[10].Stock)
	}
	if f.catalog.products[20].Stock != 2 {
		t.Errorf("mouse stock = %d, want 2", f.catalog.products[20].Stock)
	}
	if len(f.publisher.created) != 1 {
		t.Errorf("published created events = %d, want 1", len(f.publisher.created))
	}
	if len(f.repo.orders) != 1 {
		t.Errorf("persisted orders = %d, want 1", len(f.repo.orders))
	}
}

func TestCreateOrder_VIPDiscountApplied(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 2,
		Lines:      []CreateOrderLineInput{{ProductID: 20, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order := output.Order
	if got, want := order.Discount, dec("3.00"); !got.Equal(want) {
		t.Errorf("discount = %s, want %s", got, want)
	}
	if got, want := order.Total, dec("17.00"); !got.Equal(want) {
		t.Errorf("total = %s, want %s", got, want)
	}
}

func TestCreateOrder_CompensatesEarlierLinesOnFailure(t *testing.T) {
	f := newFixture()

	// Second line asks for more than is in stock; the first line's
	// reservation must be rolled back.
	_, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines: []CreateOrderLineInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 20, Quantity: 99},
		},
	})
	if err == nil {
		t.Fatal("CreateOrder() expected error, got nil")
	}
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("error code = %v, want validation", err)
	}

	if f.catalog.products[10].Stock != 5 {
		t.Errorf("keyboard stock = %d, want 5 after compensation", f.catalog.products[10].Stock)
	}
	if len(f.repo.orders) != 0 {
		t.Errorf("persisted orders = %d, want 0", len(f.repo.orders))
	}
	if len(f.publisher.created) != 0 {
		t.Errorf("published created events = %d, want 0", len(f.publisher.created))
	}

	// Reserve then return for product 10
	want := []stockAdjustment{{ProductID: 10, Delta: -2}, {ProductID: 10, Delta: 2}}
	if len(f.catalog.adjustments) != len(want) {
		t.Fatalf("adjustments = %v, want %v", f.catalog.adjustments, want)
	}
	for i := range want {
		if f.catalog.adjustments[i] != want[i] {
			t.Errorf("adjustment[%d] = %v, want %v", i, f.catalog.adjustments[i], want[i])
		}
	}
}

func TestCreateOrder_CompensationFailureEscalates(t *testing.T) {
	f := newFixture()

	// Reserving product 20 fails; returning product 10 also fails, so the
	// error must escalate as a compensation failure instead of surfacing
	// only the original cause.
	f.useCase.catalog = &flakyCatalog{
		inner: f.catalog,
		onAdjust: func(productID uint, delta int) error {
			switch {
			case productID == 10 && delta < 0:
				return nil
			case productID == 20:
				return errors.NewUnavailable("products", nil)
			default:
				// The compensating return for product 10
				return errors.NewUnavailable("products", nil)
			}
		},
	}

	_, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines: []CreateOrderLineInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 20, Quantity: 1},
		},
	})
	if err == nil {
		t.Fatal("CreateOrder() expected error, got nil")
	}
	if !errors.Is(err, errors.CodeCompensationFailed) {
		t.Errorf("error = %v, want compensation failure", err)
	}
}

// flakyCatalog wraps a catalog, overriding AdjustStock outcomes per call
type flakyCatalog struct {
	inner    *MockProductCatalog
	onAdjust func(productID uint, delta int) error
}

func (f *flakyCatalog) GetProduct(ctx context.Context, productID uint) (*ports.ProductInfo, error) {
	return f.inner.GetProduct(ctx, productID)
}

func (f *flakyCatalog) AdjustStock(ctx context.Context, productID uint, delta int) error {
	return f.onAdjust(productID, delta)
}

func TestCreateOrder_InactiveCustomerFailsBeforeReserving(t *testing.T) {
	f := newFixture()
	f.customers.customers[3] = &ports.CustomerInfo{ID: 3, Name: "Bob", Active: false}

	_, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 3,
		Lines:      []CreateOrderLineInput{{ProductID: 10, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("CreateOrder() expected error, got nil")
	}
	if len(f.catalog.adjustments) != 0 {
		t.Errorf("stock was touched for an inactive customer: %v", f.catalog.adjustments)
	}
}

func TestCreateOrder_DiscountRateOutOfRangeRejected(t *testing.T) {
	f := newFixture()
	f.customers.customers[4] = &ports.CustomerInfo{
		ID: 4, Name: "Eve", Active: true, DiscountRate: dec("1.5"),
	}

	_, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 4,
		Lines:      []CreateOrderLineInput{{ProductID: 10, Quantity: 1}},
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("error = %v, want validation", err)
	}
	if len(f.catalog.adjustments) != 0 {
		t.Errorf("stock was touched despite invalid discount rate")
	}
}

func TestCreateOrder_UnavailableProductRejected(t *testing.T) {
	f := newFixture()
	f.catalog.products[30] = &ports.ProductInfo{
		ID: 30, Name: "Legacy", UnitPrice: dec("5.00"), Stock: 10, Available: false,
	}

	_, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines:      []CreateOrderLineInput{{ProductID: 30, Quantity: 1}},
	})
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestCancelOrder_ReturnsStock(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines:      []CreateOrderLineInput{{ProductID: 10, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if err := f.useCase.CancelOrder(context.Background(), output.Order.ID); err != nil {
		t.Fatalf("CancelOrder() error = %v", err)
	}

	if f.catalog.products[10].Stock != 5 {
		t.Errorf("stock = %d, want 5 after cancel", f.catalog.products[10].Stock)
	}
	order, _ := f.repo.GetByID(context.Background(), output.Order.ID)
	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", order.Status)
	}
	if len(f.publisher.cancelled) != 1 {
		t.Errorf("published cancelled events = %d, want 1", len(f.publisher.cancelled))
	}
}

func TestCancelOrder_ShippedOrderConflictNoStockChange(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines:      []CreateOrderLineInput{{ProductID: 10, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	id := output.Order.ID

	pay := AddPaymentInput{OrderID: id, Amount: dec("39.98"), Method: domain.PaymentMethodCash}
	if _, err := f.useCase.AddPayment(context.Background(), pay); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	if err := f.useCase.ShipOrder(context.Background(), id); err != nil {
		t.Fatalf("ShipOrder() error = %v", err)
	}

	stockBefore := f.catalog.products[10].Stock
	adjustmentsBefore := len(f.catalog.adjustments)

	err = f.useCase.CancelOrder(context.Background(), id)
	if !errors.Is(err, errors.CodeConflict) {
		t.Fatalf("CancelOrder() shipped: error = %v, want conflict", err)
	}

	if f.catalog.products[10].Stock != stockBefore {
		t.Errorf("stock changed on illegal cancel")
	}
	if len(f.catalog.adjustments) != adjustmentsBefore {
		t.Errorf("stock adjustments issued on illegal cancel")
	}
	order, _ := f.repo.GetByID(context.Background(), id)
	if order.Status != domain.OrderStatusShipped {
		t.Errorf("status = %s, want SHIPPED", order.Status)
	}
}

func TestCreateOrder_DiscountRoundedToCents(t *testing.T) {
	f := newFixture()
	f.catalog.products[40] = &ports.ProductInfo{
		ID: 40, Name: "Headset", UnitPrice: dec("33.33"), Stock: 2, Available: true,
	}

	// 33.33 at 15 percent is 4.9995; the persisted columns hold two decimals
	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 2,
		Lines:      []CreateOrderLineInput{{ProductID: 40, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order := output.Order
	if got, want := order.Discount, dec("5.00"); !got.Equal(want) {
		t.Errorf("discount = %s, want %s", got, want)
	}
	if got, want := order.Total, dec("28.33"); !got.Equal(want) {
		t.Errorf("total = %s, want %s", got, want)
	}
	if order.Discount.Exponent() < -2 {
		t.Errorf("discount %s carries sub-cent precision", order.Discount)
	}
}

func TestCancelOrder_PartialReturnFailureListsReturnedLines(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines: []CreateOrderLineInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 20, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	id := output.Order.ID

	// The first line's return succeeds, the second fails; the error must name
	// both so a retry does not re-credit product 10.
	f.useCase.catalog = &flakyCatalog{
		inner: f.catalog,
		onAdjust: func(productID uint, delta int) error {
			if productID == 20 {
				return errors.NewUnavailable("products", nil)
			}
			return f.catalog.AdjustStock(context.Background(), productID, delta)
		},
	}

	err = f.useCase.CancelOrder(context.Background(), id)
	if !errors.Is(err, errors.CodeCompensationFailed) {
		t.Fatalf("CancelOrder() error = %v, want compensation failure", err)
	}

	appErr := err.(*errors.AppError)
	details, ok := appErr.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T, want map", appErr.Details)
	}
	failed, _ := details["failed"].([]map[string]interface{})
	returned, _ := details["returned"].([]map[string]interface{})
	if len(failed) != 1 || failed[0]["product_id"] != uint(20) {
		t.Errorf("failed lines = %v, want product 20", failed)
	}
	if len(returned) != 1 || returned[0]["product_id"] != uint(10) {
		t.Errorf("returned lines = %v, want product 10", returned)
	}

	order, _ := f.repo.GetByID(context.Background(), id)
	if order.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want PENDING (cancel aborted)", order.Status)
	}
}

func TestAddPayment_AutoConfirms(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines:      []CreateOrderLineInput{{ProductID: 20, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	order, err := f.useCase.AddPayment(context.Background(), AddPaymentInput{
		OrderID: output.Order.ID,
		Amount:  dec("10.00"),
		Method:  domain.PaymentMethodCreditCard,
	})
	if err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", order.Status)
	}
}

func TestConfirmOrder_AfterAutoConfirmSucceeds(t *testing.T) {
	f := newFixture()

	output, err := f.useCase.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 1,
		Lines:      []CreateOrderLineInput{{ProductID: 20, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	id := output.Order.ID

	// Full payment auto-confirms; an explicit confirm afterwards is fine
	if _, err := f.useCase.AddPayment(context.Background(), AddPaymentInput{
		OrderID: id, Amount: dec("10.00"), Method: domain.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	if err := f.useCase.ConfirmOrder(context.Background(), id); err != nil {
		t.Errorf("ConfirmOrder() after auto-confirm: error = %v, want nil", err)
	}
	order, _ := f.repo.GetByID(context.Background(), id)
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", order.Status)
	}
}

func TestListOrdersByStatus_UnknownStatusRejected(t *testing.T) {
	f := newFixture()

	_, err := f.useCase.ListOrdersByStatus(context.Background(), "SHIPPING")
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}
