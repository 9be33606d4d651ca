package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockOperation is the direction of a stock adjustment
type StockOperation string

const (
	StockOperationAdd      StockOperation = "ADD"
	StockOperationSubtract StockOperation = "SUBTRACT"
)

// Product represents the product domain entity
type Product struct {
	ID          uint
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the product entity
func (p *Product) Validate() error {
	if p.SKU == "" {
		return ErrSKURequired
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() || p.Price.IsZero() {
		return ErrPriceInvalid
	}
	if p.Stock < 0 {
		return ErrStockNegative
	}
	return nil
}

// NewProduct creates a new active product with validation
func NewProduct(sku, name, description string, price decimal.Decimal, stock int, category, imageURL string) (*Product, error) {
	product := &Product{
		SKU:         strings.ToUpper(sku),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		ImageURL:    imageURL,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Available reports whether the product can be sold
func (p *Product) Available() bool {
	return p.Active && p.Stock > 0
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
