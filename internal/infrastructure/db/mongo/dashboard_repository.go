package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// DashboardRepository implements ports.DashboardRepository with Mongo
// aggregation pipelines over the invoices and users collections.
type DashboardRepository struct {
	db *mongo.Database
}

func NewDashboardRepository(db *mongo.Database) ports.DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) invoices() *mongo.Collection {
	return r.db.Collection(collectionInvoices)
}

func (r *DashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.Collection(collectionUsers).CountDocuments(ctx, bson.M{})
}

func (r *DashboardRepository) CountByStatus(ctx context.Context) ([]ports.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.invoices().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.StatusCount{
			Status: domain.InvoiceStatus(row.Status),
			Count:  row.Count,
			Amount: row.Amount,
		})
	}
	return out, nil
}

func (r *DashboardRepository) MonthlyTrends(ctx context.Context, since time.Time) ([]ports.MonthlyTrend, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$date"},
				"month": bson.M{"$month": "$date"},
			},
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	cursor, err := r.invoices().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.MonthlyTrend, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.MonthlyTrend{
			Year:   row.ID.Year,
			Month:  row.ID.Month,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}
	return out, nil
}

func (r *DashboardRepository) TopUserSpending(ctx context.Context, limit int) ([]ports.UserSpending, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$user_id",
			"name":  bson.M{"$first": "$user.name"},
			"email": bson.M{"$first": "$user.email"},
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$amount"},
			"avg":   bson.M{"$avg": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.invoices().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		UserID int64   `bson:"_id"`
		Name   string  `bson:"name"`
		Email  string  `bson:"email"`
		Count  int64   `bson:"count"`
		Total  float64 `bson:"total"`
		Avg    float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.UserSpending, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.UserSpending{
			UserID:       row.UserID,
			Name:         row.Name,
			Email:        row.Email,
			InvoiceCount: row.Count,
			TotalAmount:  row.Total,
			AvgAmount:    row.Avg,
		})
	}
	return out, nil
}

func (r *DashboardRepository) CategoryTotals(ctx context.Context) ([]ports.GroupedTotal, error) {
	return r.groupedTotals(ctx, "$category")
}

func (r *DashboardRepository) PaymentMethodTotals(ctx context.Context) ([]ports.GroupedTotal, error) {
	return r.groupedTotals(ctx, "$payment_method")
}

func (r *DashboardRepository) groupedTotals(ctx context.Context, field string) ([]ports.GroupedTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    field,
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "amount", Value: -1}}}},
	}

	cursor, err := r.invoices().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key    string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]ports.GroupedTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.GroupedTotal{Key: row.Key, Count: row.Count, Amount: row.Amount})
	}
	return out, nil
}

func (r *DashboardRepository) ValidationTiming(ctx context.Context) (*ports.ValidationTiming, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":       domain.StatusValidated,
			"validated_at": bson.M{"$ne": nil},
		}}},
		{{Key: "$project", Value: bson.M{
			"hours": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$validated_at", "$created_at"}},
				1000 * 60 * 60,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"validated": bson.M{"$sum": 1},
			"avg_hours": bson.M{"$avg": "$hours"},
		}}},
	}

	cursor, err := r.invoices().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	timing := &ports.ValidationTiming{}
	var rows []struct {
		Validated int64   `bson:"validated"`
		AvgHours  float64 `bson:"avg_hours"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		timing.Validated = rows[0].Validated
		timing.AvgHours = rows[0].AvgHours
	}

	pending, err := r.invoices().CountDocuments(ctx, bson.M{"status": domain.StatusPending})
	if err != nil {
		return nil, err
	}
	timing.Pending = pending

	return timing, nil
}

func (r *DashboardRepository) RecentInvoices(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.invoices().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []*domain.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}
