package adapters

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"sales-micro/pkg/events"
	"sales-micro/pkg/logger"
	"sales-micro/pkg/rabbitmq"
)

// CustomerCreatedConsumer consumes CustomerCreated events so new customers
// show up in the order service logs as they become orderable
type CustomerCreatedConsumer struct {
	consumer *rabbitmq.Consumer
	log      *logger.Logger
}

// NewCustomerCreatedConsumer creates a new consumer for CustomerCreated events
func NewCustomerCreatedConsumer(conn *rabbitmq.Connection, log *logger.Logger) (*CustomerCreatedConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		"orders.customer-created", // queue name
		events.ExchangeCustomers,  // exchange
		[]string{events.RoutingKeyCustomerCreated},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &CustomerCreatedConsumer{
		consumer: consumer,
		log:      log,
	}, nil
}

// Start starts consuming CustomerCreated events
func (c *CustomerCreatedConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *CustomerCreatedConsumer) handleMessage(ctx context.Context, body []byte) error {
	var event events.CustomerCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal CustomerCreatedEvent",
			zap.Error(err),
		)
		return err
	}

	c.log.WithContext(ctx).Info("received CustomerCreated event",
		zap.Uint("customer_id", event.Payload.ID),
		zap.String("customer_code", event.Payload.CustomerCode),
		zap.String("customer_type", event.Payload.CustomerType),
		zap.String("trace_id", event.TraceID),
	)

	return nil
}
