package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/broker"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/checkout"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/redisclient"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const receiptCacheTTL = 24 * time.Hour

// CheckoutService wraps the checkout engine with event publishing and the
// read side of the ledger (transaction listing, receipts).
type CheckoutService struct {
	engine         *checkout.Engine
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	engine *checkout.Engine,
	st *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		engine:         engine,
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Checkout commits a sale through the engine and publishes a SaleCompleted
// event. Publishing is best-effort: the sale is already durable in the
// ledger, so a broker failure is logged, not surfaced.
func (s *CheckoutService) Checkout(ctx context.Context, req *checkout.Request) (*models.Transaction, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	trx, err := s.engine.Checkout(ctx, req)
	if err != nil {
		return nil, err
	}

	var sold int
	items := make([]models.SaleItemData, 0, len(trx.Items))
	for _, item := range trx.Items {
		sold += item.Quantity
		items = append(items, models.SaleItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	util.StockDecrementedTotal.Add(float64(sold))

	event := &models.SaleCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCompleted,
			Timestamp: time.Now(),
		},
		TransactionID: trx.ID,
		UserID:        trx.UserID,
		TotalPrice:    trx.TotalPrice,
		Items:         items,
	}

	if err := s.eventPublisher.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCompleted event",
			zap.String("transaction_id", trx.ID),
			zap.Error(err))
	} else {
		util.SaleEventsPublishedTotal.Inc()
	}

	return trx, nil
}

// GetTransactions lists committed transactions, newest first
func (s *CheckoutService) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.store.GetTransactions(ctx)
}

// GetTransaction retrieves a transaction with its items
func (s *CheckoutService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransactionByID(ctx, id)
}

// GetReceipt renders a receipt for a committed transaction. Receipts are
// cached in Redis because transactions are immutable.
func (s *CheckoutService) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.GetReceipt")
	defer span.End()

	if s.redis != nil {
		cached, err := s.redis.GetReceipt(ctx, id)
		if err != nil {
			s.logger.Warn("Receipt cache lookup failed",
				zap.String("transaction_id", id),
				zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	trx, err := s.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.store.GetReceiptLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt lines: %w", err)
	}

	receipt := &models.Receipt{Transaction: *trx, Lines: lines}

	if s.redis != nil {
		if err := s.redis.CacheReceipt(ctx, receipt, receiptCacheTTL); err != nil {
			s.logger.Warn("Failed to cache receipt",
				zap.String("transaction_id", id),
				zap.Error(err))
		}
	}

	return receipt, nil
}
