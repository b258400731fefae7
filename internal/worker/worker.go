package worker

import (
	"context"
	"log"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/broker"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/redisclient"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"go.uber.org/zap"
)

const lowStockFlagTTL = 24 * time.Hour

// StockAlertWorker consumes SaleCompleted events and flags products whose
// stock dropped to or below the threshold. It reads stock from the store only
// after the sale committed; it never participates in the checkout itself.
type StockAlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	redis        *redisclient.Client
	threshold    int
	logger       *zap.Logger
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(
	consumer *broker.Consumer,
	st *store.Store,
	redis *redisclient.Client,
	threshold int,
) *StockAlertWorker {
	w := &StockAlertWorker{
		consumer:  consumer,
		store:     st,
		redis:     redis,
		threshold: threshold,
		logger:    util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleCompleted(w.handleSaleCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StockAlertWorker) Start(ctx context.Context) error {
	log.Println("Starting stock alert worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StockAlertWorker) Stop() error {
	log.Println("Stopping stock alert worker...")
	return w.consumer.Close()
}

func (w *StockAlertWorker) handleSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	for _, item := range event.Items {
		product, err := w.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			// The product may have been deleted since the sale committed.
			w.logger.Warn("Failed to read product for stock alert",
				zap.String("product_id", item.ProductID),
				zap.Error(err))
			continue
		}

		if product.Stock <= w.threshold {
			util.LowStockAlertsTotal.Inc()
			w.logger.Warn("Product is low on stock",
				zap.String("product_id", product.ID),
				zap.String("name", product.Name),
				zap.Int("stock", product.Stock))

			if err := w.redis.SetLowStockFlag(ctx, product.ID, product.Stock, lowStockFlagTTL); err != nil {
				w.logger.Error("Failed to set low stock flag",
					zap.String("product_id", product.ID),
					zap.Error(err))
			}
		} else {
			if err := w.redis.ClearLowStockFlag(ctx, product.ID); err != nil {
				w.logger.Error("Failed to clear low stock flag",
					zap.String("product_id", product.ID),
					zap.Error(err))
			}
		}
	}

	return nil
}
