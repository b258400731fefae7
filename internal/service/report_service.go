package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"

	"go.uber.org/zap"
)

// ReportService aggregates committed transactions for reporting. It only
// reads the ledger; all aggregation happens in SQL.
type ReportService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(st *store.Store) *ReportService {
	return &ReportService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// DailyReport summarizes sales for one calendar day (UTC), date as 2006-01-02
func (s *ReportService) DailyReport(ctx context.Context, date string) (*models.SalesSummary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.summarize(ctx, day, day.AddDate(0, 0, 1))
}

// MonthlyReport summarizes sales for one calendar month
func (s *ReportService) MonthlyReport(ctx context.Context, year, month int) (*models.SalesSummary, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return s.summarize(ctx, start, start.AddDate(0, 1, 0))
}

// YearlyReport summarizes sales for one calendar year
func (s *ReportService) YearlyReport(ctx context.Context, year int) (*models.SalesSummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.summarize(ctx, start, start.AddDate(1, 0, 0))
}

func (s *ReportService) summarize(ctx context.Context, from, to time.Time) (*models.SalesSummary, error) {
	income, count, err := s.store.SumSalesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.GetTransactionsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &models.SalesSummary{
		TotalIncome:  income,
		TotalTx:      count,
		Transactions: txs,
	}, nil
}

// DashboardStats returns today's and this month's sales plus the month's
// best-selling product.
func (s *ReportService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	dailyIncome, dailyCount, err := s.store.SumSalesBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	monthlyIncome, monthlyCount, err := s.store.SumSalesBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	bestSeller, err := s.store.BestSellerBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		s.logger.Warn("Failed to compute best seller", zap.Error(err))
	}

	return &models.DashboardStats{
		DailyIncome:    dailyIncome,
		DailyTxCount:   dailyCount,
		MonthlyIncome:  monthlyIncome,
		MonthlyTxCount: monthlyCount,
		BestSeller:     bestSeller,
	}, nil
}
