package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
)

// SumSalesBetween returns the total income and transaction count in [from, to)
func (s *Store) SumSalesBetween(ctx context.Context, from, to time.Time) (int64, int, error) {
	var row struct {
		Income int64 `db:"income"`
		Count  int   `db:"count"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(total_price), 0) AS income, COUNT(*) AS count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2`, from, to)
	if err != nil {
		return 0, 0, err
	}
	return row.Income, row.Count, nil
}

// BestSellerBetween returns the product with the highest sold quantity in
// [from, to), or nil when nothing was sold.
func (s *Store) BestSellerBetween(ctx context.Context, from, to time.Time) (*models.BestSeller, error) {
	var best models.BestSeller
	err := s.db.GetContext(ctx, &best, `
		SELECT ti.product_id, p.name, SUM(ti.quantity) AS quantity
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN products p ON p.id = ti.product_id
		WHERE t.created_at >= $1 AND t.created_at < $2
		GROUP BY ti.product_id, p.name
		ORDER BY quantity DESC
		LIMIT 1`, from, to)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &best, nil
}
