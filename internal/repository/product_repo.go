package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// ProductRepository handles product documents in MongoDB.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collection)}
}

// ProductFilter holds filters for product listing. Empty fields are ignored.
type ProductFilter struct {
	Category string
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// StockWrite reports the effect of one stock increment.
type StockWrite struct {
	// Applied is false when the addressed node no longer exists or, with
	// the availability guard, holds less than the requested quantity.
	Applied bool
	// Stock is the counter after the write (or the unchanged value when
	// not applied and the node exists).
	Stock int
}

// GetByID returns a product by hex id. It returns mongo.ErrNoDocuments for
// unknown and malformed ids alike.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products matching filter and the total count.
func (r *ProductRepository) List(ctx context.Context, filter *ProductFilter) ([]models.Product, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	q := bson.M{}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.Search != "" {
		q["name"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}}
	}
	if filter.IsActive != nil {
		q["isActive"] = *filter.IsActive
	}

	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create inserts a new product and sets its id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

// Update replaces a product document.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a product by hex id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// IncrementLeafStock atomically adds delta to the stock counter at addr.
// The write is a single array-filtered $inc, never a read-modify-write, so
// concurrent orders on the same leaf cannot lose updates. The pre-image
// returned by the same atomic operation tells whether the filters matched.
func (r *ProductRepository) IncrementLeafStock(ctx context.Context, productID string, addr variant.Address, delta int, requireAvailable bool) (StockWrite, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return StockWrite{}, mongo.ErrNoDocuments
	}
	update, filters, err := stockUpdate(addr, delta, requireAvailable, time.Now().UTC())
	if err != nil {
		return StockWrite{}, err
	}

	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: filters}).
		SetReturnDocument(options.Before)

	var before models.Product
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&before); err != nil {
		return StockWrite{}, err
	}

	return stockWriteFrom(&before, addr, delta, requireAvailable), nil
}

// Ping checks connectivity to the product store.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// ErrNotFound reports whether err means the document does not exist.
func ErrNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
