package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sales-micro/internal/orders/ports"
	"sales-micro/pkg/httpclient"
	"sales-micro/pkg/logger"
)

// HTTPCustomerClient implements CustomerDirectory against the customers service
type HTTPCustomerClient struct {
	client *httpclient.Client
}

// NewHTTPCustomerClient creates a customer client for the given base URL
func NewHTTPCustomerClient(baseURL string, timeout time.Duration, log *logger.Logger) *HTTPCustomerClient {
	return &HTTPCustomerClient{
		client: httpclient.New(baseURL, timeout, log),
	}
}

// customerDTO is the slice of the customers service response the orders
// service depends on
type customerDTO struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Active       bool            `json:"active"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// GetCustomer retrieves a customer by ID
func (c *HTTPCustomerClient) GetCustomer(ctx context.Context, customerID uint) (*ports.CustomerInfo, error) {
	var dto customerDTO
	path := fmt.Sprintf("/api/v1/customers/%d", customerID)
	if err := c.client.Get(ctx, "customers", path, &dto); err != nil {
		return nil, err
	}

	return &ports.CustomerInfo{
		ID:           dto.ID,
		Name:         dto.Name,
		Active:       dto.Active,
		DiscountRate: dto.DiscountRate,
	}, nil
}
