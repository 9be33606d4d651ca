package infrastructure

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sales-micro/internal/customers/application"
	"sales-micro/internal/customers/domain"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/middleware"
)

// HTTPHandler handles HTTP requests for customers
type HTTPHandler struct {
	useCase *application.CustomerUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CustomerUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the customer routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.GET("/code/:code", h.GetCustomerByCode)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.POST("/:id/promote", h.PromoteToVIP)
		customers.POST("/:id/activate", h.ActivateCustomer)
		customers.POST("/:id/deactivate", h.DeactivateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}
}

// CreateCustomerRequest is the request body for creating a customer
type CreateCustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	TaxID        string `json:"tax_id" binding:"required"`
	TaxIDType    string `json:"tax_id_type" binding:"required"`
	CustomerType string `json:"customer_type"`
}

// UpdateCustomerRequest is the request body for updating a customer
type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerResponse is the response body for customer operations.
// Active and DiscountRate form the contract the orders service consumes.
type CustomerResponse struct {
	ID           uint            `json:"id"`
	CustomerCode string          `json:"customer_code"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Address      string          `json:"address,omitempty"`
	TaxID        string          `json:"tax_id"`
	TaxIDType    string          `json:"tax_id_type"`
	CustomerType string          `json:"customer_type"`
	Active       bool            `json:"active"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	CreatedAt    string          `json:"created_at"`
}

func toResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		CustomerCode: customer.CustomerCode,
		Name:         customer.Name,
		Email:        customer.Email,
		Phone:        customer.Phone,
		Address:      customer.Address,
		TaxID:        customer.TaxID,
		TaxIDType:    string(customer.TaxIDType),
		CustomerType: string(customer.CustomerType),
		Active:       customer.Active,
		DiscountRate: customer.DiscountRate(),
		CreatedAt:    customer.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateCustomer handles POST /customers
func (h *HTTPHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.CreateCustomer(c.Request.Context(), application.CreateCustomerInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		TaxID:        req.TaxID,
		TaxIDType:    domain.TaxIDType(req.TaxIDType),
		CustomerType: domain.CustomerType(req.CustomerType),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toResponse(output.Customer),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetCustomer handles GET /customers/:id
func (h *HTTPHandler) GetCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	output, err := h.useCase.GetCustomer(c.Request.Context(), application.GetCustomerInput{ID: id})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(output.Customer))
}

// GetCustomerByCode handles GET /customers/code/:code
func (h *HTTPHandler) GetCustomerByCode(c *gin.Context) {
	output, err := h.useCase.GetCustomerByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(output.Customer))
}

// ListCustomers handles GET /customers?active=true
func (h *HTTPHandler) ListCustomers(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	customers, err := h.useCase.ListCustomers(c.Request.Context(), activeOnly)
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]CustomerResponse, len(customers))
	for i, customer := range customers {
		responses[i] = toResponse(customer)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     responses,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateCustomer handles PUT /customers/:id
func (h *HTTPHandler) UpdateCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.UpdateCustomer(c.Request.Context(), application.UpdateCustomerInput{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(output.Customer))
}

// PromoteToVIP handles POST /customers/:id/promote
func (h *HTTPHandler) PromoteToVIP(c *gin.Context) {
	h.statusChange(c, h.useCase.PromoteToVIP)
}

// ActivateCustomer handles POST /customers/:id/activate
func (h *HTTPHandler) ActivateCustomer(c *gin.Context) {
	h.statusChange(c, h.useCase.ActivateCustomer)
}

// DeactivateCustomer handles POST /customers/:id/deactivate
func (h *HTTPHandler) DeactivateCustomer(c *gin.Context) {
	h.statusChange(c, h.useCase.DeactivateCustomer)
}

// DeleteCustomer handles DELETE /customers/:id
func (h *HTTPHandler) DeleteCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteCustomer(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) statusChange(c *gin.Context, op func(ctx context.Context, id uint) error) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) parseID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid customer id", nil))
		return 0, false
	}
	return uint(id), true
}
