package ports

import (
	"context"
	"time"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// InvoiceFilter carries all query parameters for listing invoices.
type InvoiceFilter struct {
	Search        string                 // partial match on provider or description
	UserID        int64                  // 0 = no filter
	Status        domain.InvoiceStatus   // optional
	Category      domain.ExpenseCategory // optional
	PaymentMethod domain.PaymentMethod   // optional
	Provider      string                 // optional: partial match on provider only
	DateFrom      time.Time              // optional: date >= DateFrom
	DateTo        time.Time              // optional: date <= DateTo
	Page          int                    // 1-based
	Size          int                    // rows per page (capped at 100 by service)
}

// InvoicePatch carries the editable fields of an invoice. Nil pointers are
// left untouched; status is deliberately not patchable here.
type InvoicePatch struct {
	Date          *time.Time
	Provider      *string
	Amount        *float64
	PaymentMethod *domain.PaymentMethod
	Category      *domain.ExpenseCategory
	Description   *string
	UserID        *int64
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	FindByID(ctx context.Context, id int64) (*domain.Invoice, error)
	// List returns a page of invoices matching filter and the total count.
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, int64, error)
	// ListAll returns every invoice matching filter, unpaginated (exports).
	ListAll(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id int64) error
	// DeleteByUser removes all invoices owned by userID and returns the
	// file paths of their attachments so the caller can clean them up.
	DeleteByUser(ctx context.Context, userID int64) ([]string, error)
}

// StatusCount pairs an invoice status with a count and amount sum.
type StatusCount struct {
	Status domain.InvoiceStatus
	Count  int64
	Amount float64
}

// MonthlyTrend is one month's invoice volume.
type MonthlyTrend struct {
	Year   int
	Month  int
	Count  int64
	Amount float64
}

// UserSpending aggregates one user's invoice totals.
type UserSpending struct {
	UserID       int64
	Name         string
	Email        string
	InvoiceCount int64
	TotalAmount  float64
	AvgAmount    float64
}

// GroupedTotal is a count+amount aggregate keyed by an enum value.
type GroupedTotal struct {
	Key    string
	Count  int64
	Amount float64
}

// ValidationTiming measures how long validated invoices sat in pending.
type ValidationTiming struct {
	Validated int64
	Pending   int64
	AvgHours  float64
}

// DashboardRepository exposes the read-only aggregates behind the dashboard.
type DashboardRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	MonthlyTrends(ctx context.Context, since time.Time) ([]MonthlyTrend, error)
	TopUserSpending(ctx context.Context, limit int) ([]UserSpending, error)
	CategoryTotals(ctx context.Context) ([]GroupedTotal, error)
	PaymentMethodTotals(ctx context.Context) ([]GroupedTotal, error)
	ValidationTiming(ctx context.Context) (*ValidationTiming, error)
	RecentInvoices(ctx context.Context, limit int) ([]*domain.Invoice, error)
}
