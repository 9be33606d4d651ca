package infrastructure

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sales-micro/internal/orders/application"
	"sales-micro/internal/orders/domain"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the order routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/number/:number", h.GetOrderByNumber)
		orders.GET("/customer/:customerId", h.ListOrdersByCustomer)
		orders.GET("/status/:status", h.ListOrdersByStatus)
		orders.POST("/:id/payments", h.AddPayment)
		orders.POST("/:id/confirm", h.ConfirmOrder)
		orders.POST("/:id/process", h.ProcessOrder)
		orders.POST("/:id/ship", h.ShipOrder)
		orders.POST("/:id/deliver", h.DeliverOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}

// CreateOrderRequest is the request body for creating an order
type CreateOrderRequest struct {
	CustomerID uint                     `json:"customer_id" binding:"required"`
	Lines      []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes      string                   `json:"notes"`
}

// CreateOrderLineRequest is one requested order line
type CreateOrderLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// AddPaymentRequest is the request body for paying against an order
type AddPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Method        string          `json:"method" binding:"required"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
}

// OrderLineResponse is one line of an order response
type OrderLineResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse is one payment of an order response
type PaymentResponse struct {
	ID            uint            `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   string          `json:"payment_date"`
	Notes         string          `json:"notes,omitempty"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uint                `json:"customer_id"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	TotalPaid     decimal.Decimal     `json:"total_paid"`
	PendingAmount decimal.Decimal     `json:"pending_amount"`
	Status        string              `json:"status"`
	Lines         []OrderLineResponse `json:"lines"`
	Payments      []PaymentResponse   `json:"payments"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

func toResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Total:         order.Total,
		TotalPaid:     order.TotalPaid(),
		PendingAmount: order.PendingAmount(),
		Status:        string(order.Status),
		Lines:         make([]OrderLineResponse, 0, len(order.Lines)),
		Payments:      make([]PaymentResponse, 0, len(order.Payments)),
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		})
	}
	for _, payment := range order.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:            payment.ID,
			Amount:        payment.Amount,
			Method:        string(payment.Method),
			TransactionID: payment.TransactionID,
			PaymentDate:   payment.PaymentDate.Format("2006-01-02T15:04:05Z07:00"),
			Notes:         payment.Notes,
		})
	}
	return resp
}

// CreateOrder handles POST /orders
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	input := application.CreateOrderInput{
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, application.CreateOrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":    toResponse(output.Order),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(order))
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *HTTPHandler) GetOrderByNumber(c *gin.Context) {
	order, err := h.useCase.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(order))
}

// ListOrders handles GET /orders
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	h.respondList(c, orders)
}

// ListOrdersByCustomer handles GET /orders/customer/:customerId
func (h *HTTPHandler) ListOrdersByCustomer(c *gin.Context) {
	customerID, err := strconv.ParseUint(c.Param("customerId"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid customer id", nil))
		return
	}

	orders, err := h.useCase.ListOrdersByCustomer(c.Request.Context(), uint(customerID))
	if err != nil {
		c.Error(err)
		return
	}

	h.respondList(c, orders)
}

// ListOrdersByStatus handles GET /orders/status/:status
func (h *HTTPHandler) ListOrdersByStatus(c *gin.Context) {
	orders, err := h.useCase.ListOrdersByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		c.Error(err)
		return
	}

	h.respondList(c, orders)
}

// AddPayment handles POST /orders/:id/payments
func (h *HTTPHandler) AddPayment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	order, err := h.useCase.AddPayment(c.Request.Context(), application.AddPaymentInput{
		OrderID:       id,
		Amount:        req.Amount,
		Method:        domain.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(order))
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *HTTPHandler) ConfirmOrder(c *gin.Context) {
	h.statusChange(c, h.useCase.ConfirmOrder)
}

// ProcessOrder handles POST /orders/:id/process
func (h *HTTPHandler) ProcessOrder(c *gin.Context) {
	h.statusChange(c, h.useCase.ProcessOrder)
}

// ShipOrder handles POST /orders/:id/ship
func (h *HTTPHandler) ShipOrder(c *gin.Context) {
	h.statusChange(c, h.useCase.ShipOrder)
}

// DeliverOrder handles POST /orders/:id/deliver
func (h *HTTPHandler) DeliverOrder(c *gin.Context) {
	h.statusChange(c, h.useCase.DeliverOrder)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	h.statusChange(c, h.useCase.CancelOrder)
}

func (h *HTTPHandler) respondList(c *gin.Context, orders []*domain.Order) {
	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toResponse(order))
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":   responses,
		"count":    len(responses),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
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
		c.Error(errors.NewValidation("invalid order id", nil))
		return 0, false
	}
	return uint(id), true
}
