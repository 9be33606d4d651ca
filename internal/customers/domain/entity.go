package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerType classifies a customer for discount purposes
type CustomerType string

const (
	CustomerTypeRegular   CustomerType = "REGULAR"
	CustomerTypeVIP       CustomerType = "VIP"
	CustomerTypeWholesale CustomerType = "WHOLESALE"
)

// TaxIDType identifies the kind of tax document
type TaxIDType string

const (
	TaxIDTypeNational TaxIDType = "NATIONAL_ID"
	TaxIDTypeCompany  TaxIDType = "COMPANY_ID"
	TaxIDTypePassport TaxIDType = "PASSPORT"
)

// Customer represents the customer domain entity
type Customer struct {
	ID           uint
	CustomerCode string
	Name         string
	Email        string
	Phone        string
	Address      string
	TaxID        string
	TaxIDType    TaxIDType
	CustomerType CustomerType
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmailRegex is the pattern for validating emails
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	discountVIP       = decimal.NewFromFloat(0.15)
	discountWholesale = decimal.NewFromFloat(0.10)
)

// Validate validates the customer entity
func (c *Customer) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if len(c.Name) < 2 || len(c.Name) > 100 {
		return ErrNameLength
	}
	if c.Email == "" {
		return ErrEmailRequired
	}
	if !EmailRegex.MatchString(c.Email) {
		return ErrEmailInvalid
	}
	if c.TaxID == "" {
		return ErrTaxIDRequired
	}
	switch c.CustomerType {
	case CustomerTypeRegular, CustomerTypeVIP, CustomerTypeWholesale:
	default:
		return ErrCustomerTypeInvalid
	}
	return nil
}

// NewCustomer creates a new active customer with validation
func NewCustomer(name, email, phone, address, taxID string, taxIDType TaxIDType, customerType CustomerType) (*Customer, error) {
	if customerType == "" {
		customerType = CustomerTypeRegular
	}
	customer := &Customer{
		Name:         name,
		Email:        email,
		Phone:        phone,
		Address:      address,
		TaxID:        taxID,
		TaxIDType:    taxIDType,
		CustomerType: customerType,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}

// DiscountRate returns the discount rate derived from the customer type, in [0,1]
func (c *Customer) DiscountRate() decimal.Decimal {
	switch c.CustomerType {
	case CustomerTypeVIP:
		return discountVIP
	case CustomerTypeWholesale:
		return discountWholesale
	default:
		return decimal.Zero
	}
}

// CodePrefix returns the customer code prefix for the customer type
func (c *Customer) CodePrefix() string {
	switch c.CustomerType {
	case CustomerTypeVIP:
		return "VIP"
	case CustomerTypeWholesale:
		return "WHO"
	default:
		return "REG"
	}
}

// PromoteToVIP upgrades the customer to the VIP type
func (c *Customer) PromoteToVIP() {
	c.CustomerType = CustomerTypeVIP
	c.UpdatedAt = time.Now()
}

// Activate marks the customer as active
func (c *Customer) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
}

// Deactivate marks the customer as inactive
func (c *Customer) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}
