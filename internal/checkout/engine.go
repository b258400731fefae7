package checkout

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config controls the engine's retry policy.
type Config struct {
	// MaxAttempts bounds how often a conflicting checkout is retried before
	// a ConflictError is surfaced.
	MaxAttempts int
	// BaseBackoff is the backoff ceiling for the first retry; it doubles per
	// attempt up to MaxBackoff, with full jitter.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// AttemptTimeout bounds a single unit of work. A timed-out attempt counts
	// against the retry budget like any other failure.
	AttemptTimeout time.Duration
	// RejectUnderpayment turns a negative change into an UnderpaymentError
	// instead of committing the transaction.
	RejectUnderpayment bool
}

// DefaultConfig returns the retry policy used in production.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		BaseBackoff:    25 * time.Millisecond,
		MaxBackoff:     time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

// Request is one checkout attempt for a cart of items.
type Request struct {
	UserID     string
	Lines      []models.CartLine
	PaidAmount int64
	// IdempotencyKey, when set, makes resubmission of the same checkout
	// return the already-committed transaction instead of selling twice.
	IdempotencyKey string
}

// Engine converts a cart into a committed transaction while guaranteeing that
// stock is never oversold under concurrent checkouts. It holds no state
// between calls; correctness comes from the store's serializable isolation
// plus locking products in ascending id order.
type Engine struct {
	store  *store.Store
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates a checkout engine
func NewEngine(st *store.Store, cfg Config) *Engine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Engine{
		store:  st,
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// Checkout validates the cart, decrements stock, and writes one ledger entry,
// all in a single serializable transaction. Store conflicts are retried with
// randomized exponential backoff up to the configured attempt budget.
func (e *Engine) Checkout(ctx context.Context, req *Request) (*models.Transaction, error) {
	ctx, span := util.StartSpan(ctx, "Engine.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if err := validate(req); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	merged, ids := mergeLines(req.Lines)

	if req.IdempotencyKey != "" {
		existing, err := e.store.GetTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, classifyStoreError(err)
		}
		if existing != nil {
			e.logger.Info("Duplicate checkout request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("transaction_id", existing.ID))
			return existing, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			util.CheckoutRetriesTotal.Inc()
			if err := e.backoff(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		trx, err := e.attempt(ctx, req, merged, ids)
		if err == nil {
			util.CheckoutCommittedTotal.Inc()
			e.logger.Info("Checkout committed",
				zap.String("transaction_id", trx.ID),
				zap.String("user_id", trx.UserID),
				zap.Int64("total_price", trx.TotalPrice),
				zap.Int("attempt", attempt))
			return trx, nil
		}

		var notFound *ProductNotFoundError
		var insufficient *InsufficientStockError
		var underpaid *UnderpaymentError
		switch {
		case errors.As(err, &notFound):
			util.CheckoutFailedTotal.WithLabelValues("product_not_found").Inc()
			return nil, err
		case errors.As(err, &insufficient):
			util.CheckoutFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, err
		case errors.As(err, &underpaid):
			util.CheckoutFailedTotal.WithLabelValues("underpayment").Inc()
			return nil, err
		case store.IsSerializationFailure(err):
			lastErr = err
			e.logger.Warn("Checkout hit a serialization conflict, retrying",
				zap.String("user_id", req.UserID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// The attempt timed out but the caller is still waiting: a
			// timed-out attempt counts against the budget like a conflict.
			lastErr = err
			e.logger.Warn("Checkout attempt timed out, retrying",
				zap.String("user_id", req.UserID),
				zap.Int("attempt", attempt))
			continue
		case store.IsUnavailable(err):
			util.CheckoutFailedTotal.WithLabelValues("store_unavailable").Inc()
			return nil, &StoreUnavailableError{Err: err}
		default:
			util.CheckoutFailedTotal.WithLabelValues("store_error").Inc()
			return nil, err
		}
	}

	if lastErr != nil && !store.IsSerializationFailure(lastErr) {
		util.CheckoutFailedTotal.WithLabelValues("store_unavailable").Inc()
		return nil, &StoreUnavailableError{Err: lastErr}
	}
	util.CheckoutFailedTotal.WithLabelValues("conflict").Inc()
	return nil, &ConflictError{Attempts: e.cfg.MaxAttempts, Err: lastErr}
}

// attempt runs one unit of work: lock, validate, decrement, insert, commit.
func (e *Engine) attempt(ctx context.Context, req *Request, merged map[string]int, ids []string) (*models.Transaction, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	tx, err := e.store.BeginSerializable(attemptCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Products are locked in ascending id order. Every checkout acquiring
	// row locks in the same global order rules out a circular wait between
	// overlapping carts.
	items := make([]models.TransactionItem, 0, len(ids))
	var totalPrice int64
	for _, id := range ids {
		product, err := e.store.GetProductForUpdate(attemptCtx, tx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: id}
			}
			return nil, err
		}

		quantity := merged[id]
		if quantity > product.Stock {
			return nil, &InsufficientStockError{
				ProductID: id,
				Available: product.Stock,
				Requested: quantity,
			}
		}

		subtotal := product.Price * int64(quantity)
		totalPrice += subtotal
		items = append(items, models.TransactionItem{
			ID:        uuid.New().String(),
			ProductID: id,
			Quantity:  quantity,
			Subtotal:  subtotal,
		})
	}

	if e.cfg.RejectUnderpayment && req.PaidAmount < totalPrice {
		return nil, &UnderpaymentError{TotalPrice: totalPrice, PaidAmount: req.PaidAmount}
	}

	for _, id := range ids {
		if err := e.store.DecrementStockTx(attemptCtx, tx, id, merged[id]); err != nil {
			return nil, err
		}
	}

	trx := &models.Transaction{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		TotalPrice:     totalPrice,
		PaidAmount:     req.PaidAmount,
		Change:         req.PaidAmount - totalPrice,
		IdempotencyKey: req.IdempotencyKey,
		Items:          items,
	}

	if err := e.store.InsertTransactionTx(attemptCtx, tx, trx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return trx, nil
}

// backoff sleeps before retry n with full jitter: a random delay up to
// BaseBackoff doubled per retry, capped at MaxBackoff.
func (e *Engine) backoff(ctx context.Context, retry int) error {
	ceiling := e.cfg.BaseBackoff << (retry - 1)
	if ceiling <= 0 || ceiling > e.cfg.MaxBackoff {
		ceiling = e.cfg.MaxBackoff
	}
	delay := time.Duration(rand.Int63n(int64(ceiling) + 1))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &StoreUnavailableError{Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}

// mergeLines sums quantities per product id and returns the distinct ids in
// ascending order. A cart submitted as repeated rows for the same product
// behaves identically to a pre-merged one.
func mergeLines(lines []models.CartLine) (map[string]int, []string) {
	merged := make(map[string]int, len(lines))
	for _, line := range lines {
		merged[line.ProductID] += line.Quantity
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return merged, ids
}

func validate(req *Request) error {
	if req.UserID == "" {
		return &ValidationError{Reason: "user id is required"}
	}
	if len(req.Lines) == 0 {
		return &ValidationError{Reason: "cart is empty"}
	}
	for _, line := range req.Lines {
		if line.ProductID == "" {
			return &ValidationError{Reason: "product id is required"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Reason: "quantity must be positive"}
		}
	}
	if req.PaidAmount < 0 {
		return &ValidationError{Reason: "paid amount must not be negative"}
	}
	return nil
}

func classifyStoreError(err error) error {
	if store.IsUnavailable(err) {
		return &StoreUnavailableError{Err: err}
	}
	return err
}
