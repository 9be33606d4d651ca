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

// HTTPProductClient implements ProductCatalog against the products service
type HTTPProductClient struct {
	client *httpclient.Client
}

// NewHTTPProductClient creates a product client for the given base URL
func NewHTTPProductClient(baseURL string, timeout time.Duration, log *logger.Logger) *HTTPProductClient {
	return &HTTPProductClient{
		client: httpclient.New(baseURL, timeout, log),
	}
}

// productDTO is the slice of the products service response the orders service
// depends on
type productDTO struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

type stockUpdateDTO struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
}

// GetProduct retrieves a product by ID
func (c *HTTPProductClient) GetProduct(ctx context.Context, productID uint) (*ports.ProductInfo, error) {
	var dto productDTO
	path := fmt.Sprintf("/api/v1/products/%d", productID)
	if err := c.client.Get(ctx, "products", path, &dto); err != nil {
		return nil, err
	}

	return &ports.ProductInfo{
		ID:        dto.ID,
		Name:      dto.Name,
		UnitPrice: dto.Price,
		Stock:     dto.Stock,
		Available: dto.Available,
	}, nil
}

// AdjustStock applies a signed stock delta. The products service keeps the
// quantity positive and takes the direction as an operation.
func (c *HTTPProductClient) AdjustStock(ctx context.Context, productID uint, delta int) error {
	body := stockUpdateDTO{Quantity: delta, Operation: "ADD"}
	if delta < 0 {
		body = stockUpdateDTO{Quantity: -delta, Operation: "SUBTRACT"}
	}

	path := fmt.Sprintf("/api/v1/products/%d/stock", productID)
	return c.client.Patch(ctx, "products", path, body, nil)
}
