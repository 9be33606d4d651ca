package adapters

import (
	"context"

	"sales-micro/internal/orders/domain"
	"sales-micro/pkg/events"
	"sales-micro/pkg/logger"
	"sales-micro/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	event := events.NewOrderCreatedEvent(
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.Subtotal.String(),
		order.Discount.String(),
		order.Total.String(),
		string(order.Status),
		order.CreatedAt,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishOrderCancelled publishes an order cancelled event with the stock
// returned per product
func (p *RabbitMQPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	traceID := logger.GetTraceID(ctx)

	returned := make([]events.ReturnedLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		returned = append(returned, events.ReturnedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	event := events.NewOrderCancelledEvent(
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		returned,
		traceID,
	)

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCancelled, event)
}
