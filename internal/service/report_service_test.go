package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReportService(t *testing.T) (*ReportService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewReportService(store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))), mock
}

func TestDailyReport_InvalidDate(t *testing.T) {
	s, mock := newTestReportService(t)

	_, err := s.DailyReport(context.Background(), "29-08-2025")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlyReport_InvalidMonth(t *testing.T) {
	s, mock := newTestReportService(t)

	_, err := s.MonthlyReport(context.Background(), 2025, 13)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyReport(t *testing.T) {
	s, mock := newTestReportService(t)

	from := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_price\), 0\) AS income, COUNT\(\*\) AS count FROM transactions`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"income", "count"}).AddRow(7500, 3))

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM transactions WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "total_price", "paid_amount", "change", "idempotency_key", "created_at"}).
			AddRow("t1", "u1", 2500, 3000, 500, "", from.Add(time.Hour)).
			AddRow("t2", "u1", 5000, 5000, 0, "", from.Add(2*time.Hour)))

	summary, err := s.DailyReport(context.Background(), "2025-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(7500), summary.TotalIncome)
	assert.Equal(t, 3, summary.TotalTx)
	assert.Len(t, summary.Transactions, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}
