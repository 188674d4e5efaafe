package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

const collectionInvoices = "invoices"

type InvoiceRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{db: db, col: db.Collection(collectionInvoices)}
}

// Create inserts a new invoice with the next sequential id.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	id, err := nextSequence(ctx, r.db, collectionInvoices)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *inv
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invoice
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// filterQuery translates an InvoiceFilter into a Mongo filter document.
func filterQuery(f ports.InvoiceFilter) bson.M {
	query := bson.M{}
	if f.UserID != 0 {
		query["user_id"] = f.UserID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.PaymentMethod != "" {
		query["payment_method"] = f.PaymentMethod
	}
	if f.Provider != "" {
		query["provider"] = primitive.Regex{Pattern: regexEscape(f.Provider), Options: "i"}
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		dateRange := bson.M{}
		if !f.DateFrom.IsZero() {
			dateRange["$gte"] = f.DateFrom
		}
		if !f.DateTo.IsZero() {
			dateRange["$lte"] = f.DateTo
		}
		query["date"] = dateRange
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexEscape(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"provider": re},
			bson.M{"description": re},
		}
	}
	return query
}

// List returns one page of invoices, newest first, plus the total count.
func (r *InvoiceRepository) List(ctx context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := filterQuery(f)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Size)).
		SetLimit(int64(f.Size))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var invoices []*domain.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ListAll returns every invoice matching the filter, newest first.
func (r *InvoiceRepository) ListAll(ctx context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.col.Find(ctx, filterQuery(f), opts)
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

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// DeleteByUser removes every invoice owned by userID and returns the file
// paths of their stored attachments.
func (r *InvoiceRepository) DeleteByUser(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	opts := options.Find().SetProjection(bson.M{"file_path": 1})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		FilePath string `bson:"file_path"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var paths []string
	for _, d := range docs {
		if d.FilePath != "" {
			paths = append(paths, d.FilePath)
		}
	}

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	return paths, nil
}

// EnsureIndexes creates the indexes the list filters and aggregations rely on.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "payment_method", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// regexEscape neutralizes regex metacharacters in user-supplied search text.
func regexEscape(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(meta); j++ {
			if s[i] == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
