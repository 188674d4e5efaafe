package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

const (
	dashboardCacheTTL  = time.Minute
	defaultTrendMonths = 6
	defaultTopUsers    = 10
	defaultActivity    = 10
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

type dashboardService struct {
	repo  ports.DashboardRepository
	cache ports.Cache
	log   zerolog.Logger
}

// NewDashboardService returns a DashboardService implementation.
func NewDashboardService(repo ports.DashboardRepository, cache ports.Cache, log zerolog.Logger) ports.DashboardService {
	return &dashboardService{repo: repo, cache: cache, log: log}
}

// Stats assembles the full dashboard payload. The composite is cached as
// one unit and invalidated on any invoice write.
func (s *dashboardService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	if s.cache != nil {
		var cached ports.DashboardStats
		if hit, err := s.cache.Get(ctx, cacheKeyDashboardStats, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	basic, err := s.BasicStats(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.Trends(ctx, defaultTrendMonths)
	if err != nil {
		return nil, err
	}
	users, err := s.UserStats(ctx, defaultTopUsers)
	if err != nil {
		return nil, err
	}
	categories, err := s.CategoryDistribution(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.PaymentDistribution(ctx)
	if err != nil {
		return nil, err
	}
	validation, err := s.ValidationPerformance(ctx)
	if err != nil {
		return nil, err
	}
	activity, err := s.RecentActivity(ctx, defaultActivity)
	if err != nil {
		return nil, err
	}

	stats := &ports.DashboardStats{
		Basic:                 basic,
		Trends:                trends,
		UserStats:             users,
		CategoryDistribution:  categories,
		PaymentDistribution:   payments,
		ValidationPerformance: validation,
		RecentActivity:        activity,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyDashboardStats, stats, dashboardCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache dashboard stats")
		}
	}
	return stats, nil
}

func (s *dashboardService) BasicStats(ctx context.Context) (*ports.BasicStats, error) {
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.BasicStats{
		TotalUsers:       totalUsers,
		InvoicesByStatus: make(map[string]int64),
		AmountByStatus:   make(map[string]float64),
	}
	for _, sc := range byStatus {
		stats.TotalInvoices += sc.Count
		stats.TotalAmount += sc.Amount
		stats.InvoicesByStatus[string(sc.Status)] = sc.Count
		stats.AmountByStatus[string(sc.Status)] = round2(sc.Amount)
	}
	stats.TotalAmount = round2(stats.TotalAmount)
	return stats, nil
}

func (s *dashboardService) Trends(ctx context.Context, months int) ([]ports.TrendPoint, error) {
	if months < 1 || months > 24 {
		months = defaultTrendMonths
	}
	since := time.Now().UTC().AddDate(0, -months, 0)

	trends, err := s.repo.MonthlyTrends(ctx, since)
	if err != nil {
		return nil, err
	}

	points := make([]ports.TrendPoint, 0, len(trends))
	for _, t := range trends {
		name := ""
		if t.Month >= 1 && t.Month <= 12 {
			name = monthNames[t.Month-1]
		}
		points = append(points, ports.TrendPoint{
			Year:      t.Year,
			Month:     t.Month,
			MonthName: name,
			Count:     t.Count,
			Amount:    round2(t.Amount),
		})
	}
	return points, nil
}

func (s *dashboardService) UserStats(ctx context.Context, limit int) ([]ports.UserStat, error) {
	if limit < 1 || limit > 100 {
		limit = defaultTopUsers
	}

	spending, err := s.repo.TopUserSpending(ctx, limit)
	if err != nil {
		return nil, err
	}

	stats := make([]ports.UserStat, 0, len(spending))
	for _, u := range spending {
		stats = append(stats, ports.UserStat{
			UserID:       u.UserID,
			Name:         u.Name,
			Email:        u.Email,
			InvoiceCount: u.InvoiceCount,
			TotalAmount:  round2(u.TotalAmount),
			AvgAmount:    round2(u.AvgAmount),
		})
	}
	return stats, nil
}

func (s *dashboardService) CategoryDistribution(ctx context.Context) ([]ports.DistributionSlice, error) {
	totals, err := s.repo.CategoryTotals(ctx)
	if err != nil {
		return nil, err
	}
	slices := make([]ports.DistributionSlice, 0, len(totals))
	for _, t := range totals {
		slices = append(slices, ports.DistributionSlice{
			Key:    t.Key,
			Label:  domain.ExpenseCategory(t.Key).Label(),
			Count:  t.Count,
			Amount: round2(t.Amount),
		})
	}
	return slices, nil
}

func (s *dashboardService) PaymentDistribution(ctx context.Context) ([]ports.DistributionSlice, error) {
	totals, err := s.repo.PaymentMethodTotals(ctx)
	if err != nil {
		return nil, err
	}
	slices := make([]ports.DistributionSlice, 0, len(totals))
	for _, t := range totals {
		slices = append(slices, ports.DistributionSlice{
			Key:    t.Key,
			Label:  domain.PaymentMethod(t.Key).Label(),
			Count:  t.Count,
			Amount: round2(t.Amount),
		})
	}
	return slices, nil
}

func (s *dashboardService) ValidationPerformance(ctx context.Context) (*ports.ValidationPerformance, error) {
	timing, err := s.repo.ValidationTiming(ctx)
	if err != nil {
		return nil, err
	}

	perf := &ports.ValidationPerformance{
		AvgValidationTimeHours: round2(timing.AvgHours),
		TotalValidated:         timing.Validated,
	}
	if total := timing.Validated + timing.Pending; total > 0 {
		perf.ValidationRatePct = round2(float64(timing.Validated) / float64(total) * 100)
	}
	return perf, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]ports.ActivityItem, error) {
	if limit < 1 || limit > 50 {
		limit = defaultActivity
	}

	invoices, err := s.repo.RecentInvoices(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]ports.ActivityItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, ports.ActivityItem{
			ID:          inv.ID,
			Type:        "invoice",
			Description: fmt.Sprintf("Factura de %s", inv.Provider),
			UserName:    inv.User.Name,
			Amount:      inv.Amount,
			Status:      string(inv.Status),
			Date:        inv.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
