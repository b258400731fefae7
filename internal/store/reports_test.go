package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumSalesBetween(t *testing.T) {
	s, mock := newTestStore(t)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_price\), 0\) AS income, COUNT\(\*\) AS count FROM transactions`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"income", "count"}).AddRow(125000, 17))

	income, count, err := s.SumSalesBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(125000), income)
	assert.Equal(t, 17, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBestSellerBetween(t *testing.T) {
	s, mock := newTestStore(t)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ti.product_id, p.name, SUM(ti.quantity) AS quantity`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "quantity"}).
			AddRow("p1", "Kopi", 42))

	best, err := s.BestSellerBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "Kopi", best.Name)
	assert.Equal(t, 42, best.Quantity)

	// An empty period yields no best seller, not an error.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ti.product_id, p.name, SUM(ti.quantity) AS quantity`)).
		WithArgs(from, to).
		WillReturnError(sql.ErrNoRows)

	best, err = s.BestSellerBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Nil(t, best)

	assert.NoError(t, mock.ExpectationsWereMet())
}
