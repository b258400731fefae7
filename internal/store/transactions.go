package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"

	"github.com/jmoiron/sqlx"
)

// InsertTransactionTx inserts a transaction with its items inside tx, so the
// ledger entry commits atomically with the stock decrements.
func (s *Store) InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, total_price, paid_amount, change, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at`

	if err := tx.GetContext(ctx, &t.CreatedAt, query,
		t.ID, t.UserID, t.TotalPrice, t.PaidAmount, t.Change, t.IdempotencyKey); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for i := range t.Items {
		item := &t.Items[i]
		item.TransactionID = t.ID
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_items (id, transaction_id, product_id, quantity, subtotal) VALUES ($1, $2, $3, $4, $5)",
			item.ID, item.TransactionID, item.ProductID, item.Quantity, item.Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert transaction item: %w", err)
		}
	}

	return nil
}

// GetTransactionByID retrieves a transaction with its items
func (s *Store) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.GetContext(ctx, &t, "SELECT id, user_id, total_price, paid_amount, change, COALESCE(idempotency_key, '') AS idempotency_key, created_at FROM transactions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &t.Items,
		"SELECT * FROM transaction_items WHERE transaction_id = $1 ORDER BY product_id", id); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransactionByIdempotencyKey returns the committed transaction for a key,
// or nil when the key has not been used.
func (s *Store) GetTransactionByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.GetContext(ctx, &t, "SELECT id, user_id, total_price, paid_amount, change, COALESCE(idempotency_key, '') AS idempotency_key, created_at FROM transactions WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &t.Items,
		"SELECT * FROM transaction_items WHERE transaction_id = $1 ORDER BY product_id", t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTransactions retrieves all transactions, newest first, without items
func (s *Store) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.SelectContext(ctx, &txs, "SELECT id, user_id, total_price, paid_amount, change, COALESCE(idempotency_key, '') AS idempotency_key, created_at FROM transactions ORDER BY created_at DESC")
	return txs, err
}

// GetTransactionsBetween retrieves transactions committed in [from, to)
func (s *Store) GetTransactionsBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.SelectContext(ctx, &txs,
		"SELECT id, user_id, total_price, paid_amount, change, COALESCE(idempotency_key, '') AS idempotency_key, created_at FROM transactions WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at",
		from, to)
	return txs, err
}

// GetReceiptLines retrieves the items of a transaction joined with product
// names. The unit price is reconstructed from the captured subtotal so the
// receipt reflects the price at sale time, not the current one.
func (s *Store) GetReceiptLines(ctx context.Context, transactionID string) ([]models.ReceiptLine, error) {
	var lines []models.ReceiptLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT ti.product_id, p.name AS product_name, ti.quantity,
		       ti.subtotal / ti.quantity AS unit_price, ti.subtotal
		FROM transaction_items ti
		JOIN products p ON p.id = ti.product_id
		WHERE ti.transaction_id = $1
		ORDER BY ti.product_id`, transactionID)
	return lines, err
}
