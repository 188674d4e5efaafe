package ports

import "context"

// BasicStats is the headline dashboard block.
type BasicStats struct {
	TotalUsers       int64              `json:"total_users"`
	TotalInvoices    int64              `json:"total_invoices"`
	TotalAmount      float64            `json:"total_amount"`
	InvoicesByStatus map[string]int64   `json:"invoices_by_status"`
	AmountByStatus   map[string]float64 `json:"amount_by_status"`
}

// TrendPoint is one month of invoice volume, with a display name.
type TrendPoint struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Count     int64   `json:"count"`
	Amount    float64 `json:"total_amount"`
}

// DistributionSlice is one enum bucket of the category / payment charts.
type DistributionSlice struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Count  int64   `json:"count"`
	Amount float64 `json:"total_amount"`
}

// UserStat is one row of the top-spenders table.
type UserStat struct {
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	InvoiceCount int64   `json:"invoice_count"`
	TotalAmount  float64 `json:"total_amount"`
	AvgAmount    float64 `json:"avg_amount"`
}

// ValidationPerformance summarises reviewer throughput.
type ValidationPerformance struct {
	AvgValidationTimeHours float64 `json:"avg_validation_time_hours"`
	TotalValidated         int64   `json:"total_validated"`
	ValidationRatePct      float64 `json:"validation_rate"`
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	UserName    string  `json:"user_name"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Date        string  `json:"date"`
}

// DashboardStats is the composite payload behind GET /dashboard/stats.
type DashboardStats struct {
	Basic                 *BasicStats            `json:"basic_stats"`
	Trends                []TrendPoint           `json:"monthly_trends"`
	UserStats             []UserStat             `json:"user_stats"`
	CategoryDistribution  []DistributionSlice    `json:"category_distribution"`
	PaymentDistribution   []DistributionSlice    `json:"payment_method_distribution"`
	ValidationPerformance *ValidationPerformance `json:"validation_performance"`
	RecentActivity        []ActivityItem         `json:"recent_activity"`
}

// DashboardService exposes the read-only aggregate views.
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	BasicStats(ctx context.Context) (*BasicStats, error)
	Trends(ctx context.Context, months int) ([]TrendPoint, error)
	UserStats(ctx context.Context, limit int) ([]UserStat, error)
	CategoryDistribution(ctx context.Context) ([]DistributionSlice, error)
	PaymentDistribution(ctx context.Context) ([]DistributionSlice, error)
	ValidationPerformance(ctx context.Context) (*ValidationPerformance, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityItem, error)
}
