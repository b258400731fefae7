package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestGetProductByID(t *testing.T) {
	s, mock := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM products WHERE id = $1`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "price", "stock", "image_url", "created_at", "updated_at"}).
			AddRow("p1", "Kopi", 1000, 5, "", now, now))

	product, err := s.GetProductByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Kopi", product.Name)
	assert.Equal(t, int64(1000), product.Price)
	assert.Equal(t, 5, product.Stock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM products WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = s.GetProductByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProduct_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE products SET name = $1, price = $2, stock = $3, image_url = $4, updated_at = NOW() WHERE id = $5`)).
		WithArgs("Kopi", int64(1000), 5, "", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateProduct(context.Background(), &models.Product{
		ID:    "missing",
		Name:  "Kopi",
		Price: 1000,
		Stock: 5,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteProduct(context.Background(), "p1"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.DeleteProduct(context.Background(), "missing"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_Underflow(t *testing.T) {
	s, mock := newTestStore(t)
	ctx := context.Background()

	// The guard in the UPDATE refuses to drive stock negative even if the
	// caller's validation were bypassed.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`)).
		WithArgs(10, "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := s.BeginSerializable(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = s.DecrementStockTx(ctx, tx, "p1", 10)
	assert.ErrorContains(t, err, "stock underflow")

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTransactionTx(t *testing.T) {
	s, mock := newTestStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO transactions (id, user_id, total_price, paid_amount, change, idempotency_key) VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')) RETURNING created_at`)).
		WithArgs("t1", "u1", int64(5000), int64(5000), int64(0), "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO transaction_items (id, transaction_id, product_id, quantity, subtotal) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs("i1", "t1", "p1", 5, int64(5000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.BeginSerializable(ctx)
	require.NoError(t, err)

	trx := &models.Transaction{
		ID:         "t1",
		UserID:     "u1",
		TotalPrice: 5000,
		PaidAmount: 5000,
		Items: []models.TransactionItem{
			{ID: "i1", ProductID: "p1", Quantity: 5, Subtotal: 5000},
		},
	}
	require.NoError(t, s.InsertTransactionTx(ctx, tx, trx))
	assert.Equal(t, "t1", trx.Items[0].TransactionID)
	assert.False(t, trx.CreatedAt.IsZero())

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSerializationFailure(t *testing.T) {
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40001"}))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40P01"}))
	assert.True(t, IsSerializationFailure(fmt.Errorf("commit: %w", &pq.Error{Code: "40001"})))

	assert.False(t, IsSerializationFailure(&pq.Error{Code: "23505"}))
	assert.False(t, IsSerializationFailure(errors.New("network down")))
	assert.False(t, IsSerializationFailure(sql.ErrNoRows))
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(sql.ErrConnDone))
	assert.True(t, IsUnavailable(context.DeadlineExceeded))
	assert.True(t, IsUnavailable(&pq.Error{Code: "08006"}))

	assert.False(t, IsUnavailable(&pq.Error{Code: "40001"}))
	assert.False(t, IsUnavailable(errors.New("boom")))
}
