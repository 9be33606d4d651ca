package events

import "time"

// Exchange names
const (
	ExchangeCustomers = "customers.events"
	ExchangeOrders    = "orders.events"
)

// Routing keys
const (
	RoutingKeyCustomerCreated = "customer.created"
	RoutingKeyOrderCreated    = "order.created"
	RoutingKeyOrderCancelled  = "order.cancelled"
)

// CustomerCreatedEvent is published when a customer is created
type CustomerCreatedEvent struct {
	Version   string                 `json:"version"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	TraceID   string                 `json:"trace_id"`
	Payload   CustomerCreatedPayload `json:"payload"`
}

// CustomerCreatedPayload contains customer data
type CustomerCreatedPayload struct {
	ID           uint      `json:"id"`
	CustomerCode string    `json:"customer_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CustomerType string    `json:"customer_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(id uint, code, name, email, customerType string, createdAt time.Time, traceID string) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		Version:   "1.0",
		EventType: "customer.created",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: CustomerCreatedPayload{
			ID:           id,
			CustomerCode: code,
			Name:         name,
			Email:        email,
			CustomerType: customerType,
			CreatedAt:    createdAt,
		},
	}
}

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   OrderCreatedPayload `json:"payload"`
}

// OrderCreatedPayload contains order data. Monetary amounts travel as strings to
// keep their exact decimal representation on the wire.
type OrderCreatedPayload struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uint      `json:"customer_id"`
	Subtotal    string    `json:"subtotal"`
	Discount    string    `json:"discount"`
	Total       string    `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(id uint, orderNumber string, customerID uint, subtotal, discount, total, status string, createdAt time.Time, traceID string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		Version:   "1.0",
		EventType: "order.created",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderCreatedPayload{
			ID:          id,
			OrderNumber: orderNumber,
			CustomerID:  customerID,
			Subtotal:    subtotal,
			Discount:    discount,
			Total:       total,
			Status:      status,
			CreatedAt:   createdAt,
		},
	}
}

// OrderCancelledEvent is published when an order is cancelled and its stock returned
type OrderCancelledEvent struct {
	Version   string                `json:"version"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	TraceID   string                `json:"trace_id"`
	Payload   OrderCancelledPayload `json:"payload"`
}

// OrderCancelledPayload contains the cancelled order and the stock returned per product
type OrderCancelledPayload struct {
	ID            uint           `json:"id"`
	OrderNumber   string         `json:"order_number"`
	CustomerID    uint           `json:"customer_id"`
	ReturnedStock []ReturnedLine `json:"returned_stock"`
}

// ReturnedLine records a compensating stock return for one product
type ReturnedLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(id uint, orderNumber string, customerID uint, returned []ReturnedLine, traceID string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		Version:   "1.0",
		EventType: "order.cancelled",
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload: OrderCancelledPayload{
			ID:            id,
			OrderNumber:   orderNumber,
			CustomerID:    customerID,
			ReturnedStock: returned,
		},
	}
}
