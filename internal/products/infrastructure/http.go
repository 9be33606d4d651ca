package infrastructure

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sales-micro/internal/products/application"
	"sales-micro/internal/products/domain"
	"sales-micro/pkg/errors"
	"sales-micro/pkg/middleware"
)

// HTTPHandler handles HTTP requests for products
type HTTPHandler struct {
	useCase *application.ProductUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.ProductUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the product routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	products := r.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/sku/:sku", h.GetProductBySKU)
		products.PUT("/:id", h.UpdateProduct)
		products.PATCH("/:id/stock", h.AdjustStock)
		products.POST("/:id/activate", h.ActivateProduct)
		products.POST("/:id/deactivate", h.DeactivateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// StockUpdateRequest is the request body for adjusting stock
type StockUpdateRequest struct {
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Operation string `json:"operation" binding:"required,oneof=ADD SUBTRACT"`
}

// ProductResponse is the response body for product operations.
// Price, Stock and Available form the contract the orders service consumes.
type ProductResponse struct {
	ID          uint            `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Active      bool            `json:"active"`
	Available   bool            `json:"available"`
	CreatedAt   string          `json:"created_at"`
}

func toResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		Active:      product.Active,
		Available:   product.Available(),
		CreatedAt:   product.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateProduct handles POST /products
func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.CreateProduct(c.Request.Context(), application.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toResponse(output.Product),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetProduct handles GET /products/:id
func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(product))
}

// GetProductBySKU handles GET /products/sku/:sku
func (h *HTTPHandler) GetProductBySKU(c *gin.Context) {
	product, err := h.useCase.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(product))
}

// ListProducts handles GET /products?available=true and GET /products?search=name
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var (
		products []*domain.Product
		err      error
	)

	if search := c.Query("search"); search != "" {
		products, err = h.useCase.SearchProducts(c.Request.Context(), search)
	} else {
		products, err = h.useCase.ListProducts(c.Request.Context(), c.Query("available") == "true")
	}
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]ProductResponse, len(products))
	for i, product := range products {
		responses[i] = toResponse(product)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     responses,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// UpdateProduct handles PUT /products/:id
func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), application.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(product))
}

// AdjustStock handles PATCH /products/:id/stock
func (h *HTTPHandler) AdjustStock(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	product, err := h.useCase.AdjustStock(c.Request.Context(), application.AdjustStockInput{
		ID:        id,
		Quantity:  req.Quantity,
		Operation: domain.StockOperation(req.Operation),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, toResponse(product))
}

// ActivateProduct handles POST /products/:id/activate
func (h *HTTPHandler) ActivateProduct(c *gin.Context) {
	h.statusChange(c, h.useCase.ActivateProduct)
}

// DeactivateProduct handles POST /products/:id/deactivate
func (h *HTTPHandler) DeactivateProduct(c *gin.Context) {
	h.statusChange(c, h.useCase.DeactivateProduct)
}

// DeleteProduct handles DELETE /products/:id
func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
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
		c.Error(errors.NewValidation("invalid product id", nil))
		return 0, false
	}
	return uint(id), true
}
