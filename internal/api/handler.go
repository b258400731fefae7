package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/checkout"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/service"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutRunner is the checkout surface consumed by the HTTP layer
type CheckoutRunner interface {
	Checkout(ctx context.Context, req *checkout.Request) (*models.Transaction, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)
}

// ProductManager is the product management surface consumed by the HTTP layer
type ProductManager interface {
	CreateProduct(ctx context.Context, req *service.CreateProductRequest) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req *service.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Reporter is the reporting surface consumed by the HTTP layer
type Reporter interface {
	DailyReport(ctx context.Context, date string) (*models.SalesSummary, error)
	MonthlyReport(ctx context.Context, year, month int) (*models.SalesSummary, error)
	YearlyReport(ctx context.Context, year int) (*models.SalesSummary, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Handler contains HTTP handlers
type Handler struct {
	checkoutService CheckoutRunner
	productService  ProductManager
	reportService   Reporter
}

// NewHandler creates a new HTTP handler
func NewHandler(checkoutService CheckoutRunner, productService ProductManager, reportService Reporter) *Handler {
	return &Handler{
		checkoutService: checkoutService,
		productService:  productService,
		reportService:   reportService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/checkout", h.createCheckout)
		v1.GET("/transactions", h.listTransactions)
		v1.GET("/transactions/:id", h.getTransaction)
		v1.GET("/transactions/:id/receipt", h.getReceipt)

		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.GET("/reports/daily", h.dailyReport)
		v1.GET("/reports/monthly", h.monthlyReport)
		v1.GET("/reports/yearly", h.yearlyReport)
		v1.GET("/reports/dashboard", h.dashboard)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// CheckoutRequestBody is the JSON payload of POST /checkout
type CheckoutRequestBody struct {
	UserID     string            `json:"user_id" binding:"required"`
	Items      []models.CartLine `json:"items" binding:"required,min=1,dive"`
	PaidAmount int64             `json:"paid_amount" binding:"min=0"`
}

// createCheckout handles checkout requests
func (h *Handler) createCheckout(c *gin.Context) {
	var body CheckoutRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	req := &checkout.Request{
		UserID:         body.UserID,
		Lines:          body.Items,
		PaidAmount:     body.PaidAmount,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	}

	trx, err := h.checkoutService.Checkout(c.Request.Context(), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trx)
}

// writeCheckoutError maps engine errors to HTTP responses with enough detail
// for the POS frontend to render a message.
func writeCheckoutError(c *gin.Context, err error) {
	var validation *checkout.ValidationError
	var notFound *checkout.ProductNotFoundError
	var insufficient *checkout.InsufficientStockError
	var underpaid *checkout.UnderpaymentError
	var conflict *checkout.ConflictError
	var unavailable *checkout.StoreUnavailableError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &underpaid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       underpaid.Error(),
			"total_price": underpaid.TotalPrice,
			"paid_amount": underpaid.PaidAmount,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":      notFound.Error(),
			"product_id": notFound.ProductID,
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":      insufficient.Error(),
			"product_id": insufficient.ProductID,
			"available":  insufficient.Available,
			"requested":  insufficient.Requested,
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Error(),
			"retryable": true,
		})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailable.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Checkout failed",
			"details": err.Error(),
		})
	}
}

// listTransactions handles listing all transactions
func (h *Handler) listTransactions(c *gin.Context) {
	txs, err := h.checkoutService.GetTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, txs)
}

// getTransaction handles get transaction by ID
func (h *Handler) getTransaction(c *gin.Context) {
	trx, err := h.checkoutService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, trx)
}

// getReceipt handles receipt rendering for a transaction
func (h *Handler) getReceipt(c *gin.Context) {
	receipt, err := h.checkoutService.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Transaction not found")
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// listProducts handles listing all products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.productService.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeStoreError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// updateProduct handles product updates
func (h *Handler) updateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeStoreError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct handles product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err, "Product not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// dailyReport handles GET /reports/daily?date=2006-01-02
func (h *Handler) dailyReport(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	summary, err := h.reportService.DailyReport(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// monthlyReport handles GET /reports/monthly?year=&month=
func (h *Handler) monthlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	summary, err := h.reportService.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// yearlyReport handles GET /reports/yearly?year=
func (h *Handler) yearlyReport(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}

	summary, err := h.reportService.YearlyReport(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// dashboard handles GET /reports/dashboard
func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.reportService.DashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func writeStoreError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
