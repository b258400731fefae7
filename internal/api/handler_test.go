package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/checkout"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheckoutService struct {
	trx     *models.Transaction
	err     error
	lastReq *checkout.Request
}

func (s *stubCheckoutService) Checkout(_ context.Context, req *checkout.Request) (*models.Transaction, error) {
	s.lastReq = req
	return s.trx, s.err
}

func (s *stubCheckoutService) GetTransactions(context.Context) ([]models.Transaction, error) {
	return nil, nil
}

func (s *stubCheckoutService) GetTransaction(context.Context, string) (*models.Transaction, error) {
	return s.trx, s.err
}

func (s *stubCheckoutService) GetReceipt(context.Context, string) (*models.Receipt, error) {
	return nil, s.err
}

type stubProductService struct{}

func (stubProductService) CreateProduct(context.Context, *service.CreateProductRequest) (*models.Product, error) {
	return nil, nil
}
func (stubProductService) GetProducts(context.Context) ([]models.Product, error) { return nil, nil }
func (stubProductService) GetProduct(context.Context, string) (*models.Product, error) {
	return nil, nil
}
func (stubProductService) UpdateProduct(context.Context, string, *service.UpdateProductRequest) (*models.Product, error) {
	return nil, nil
}
func (stubProductService) DeleteProduct(context.Context, string) error { return nil }

type stubReportService struct{}

func (stubReportService) DailyReport(context.Context, string) (*models.SalesSummary, error) {
	return nil, nil
}
func (stubReportService) MonthlyReport(context.Context, int, int) (*models.SalesSummary, error) {
	return nil, nil
}
func (stubReportService) YearlyReport(context.Context, int) (*models.SalesSummary, error) {
	return nil, nil
}
func (stubReportService) DashboardStats(context.Context) (*models.DashboardStats, error) {
	return nil, nil
}

func newTestRouter(cs CheckoutRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(cs, stubProductService{}, stubReportService{}).SetupRoutes(router)
	return router
}

func postCheckout(t *testing.T, router *gin.Engine, body map[string]interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     "u1",
		"items":       []map[string]interface{}{{"product_id": "p1", "quantity": 2}},
		"paid_amount": 2000,
	}
}

func TestCreateCheckout_Success(t *testing.T) {
	stub := &stubCheckoutService{trx: &models.Transaction{ID: "t1", UserID: "u1", TotalPrice: 2000}}
	router := newTestRouter(stub)

	w := postCheckout(t, router, validBody(), map[string]string{"Idempotency-Key": "key-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stub.lastReq)
	assert.Equal(t, "key-1", stub.lastReq.IdempotencyKey)

	var resp models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "t1", resp.ID)
}

func TestCreateCheckout_BadBody(t *testing.T) {
	router := newTestRouter(&stubCheckoutService{})

	w := postCheckout(t, router, map[string]interface{}{"user_id": "u1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation",
			err:        &checkout.ValidationError{Reason: "cart is empty"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "underpayment",
			err:        &checkout.UnderpaymentError{TotalPrice: 2000, PaidAmount: 500},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "product not found",
			err:        &checkout.ProductNotFoundError{ProductID: "p2"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "insufficient stock",
			err:        &checkout.InsufficientStockError{ProductID: "p1", Available: 5, Requested: 6},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "conflict budget exhausted",
			err:        &checkout.ConflictError{Attempts: 5},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store unavailable",
			err:        &checkout.StoreUnavailableError{Err: context.DeadlineExceeded},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubCheckoutService{err: tt.err})

			w := postCheckout(t, router, validBody(), nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreateCheckout_InsufficientStockDetail(t *testing.T) {
	stub := &stubCheckoutService{
		err: &checkout.InsufficientStockError{ProductID: "p1", Available: 5, Requested: 6},
	}
	router := newTestRouter(stub)

	w := postCheckout(t, router, validBody(), nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp["product_id"])
	assert.Equal(t, float64(5), resp["available"])
	assert.Equal(t, float64(6), resp["requested"])
}
