// Package mongodb implements the listing repository on a MongoDB collection.
// Listings are documents keyed by a unique index on url, which makes inserts
// idempotent even under concurrent writers.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"car-scout/internal/domain/entity"
	"car-scout/internal/repository"
)

const attrURL = "url"

// Config holds the connection settings for the listing store.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// DefaultConfig returns the connection settings used when nothing is
// configured explicitly.
func DefaultConfig() Config {
	return Config{
		URI:        "mongodb://localhost:27017",
		Database:   "car_listings",
		Collection: "listings",
	}
}

var indices = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: attrURL, Value: 1}},
		Options: options.Index().SetUnique(true),
	},
}

// ListingRepo is a MongoDB-backed repository.ListingRepository.
type ListingRepo struct {
	conn *mongo.Client
	coll *mongo.Collection
}

// NewListingRepo connects to MongoDB and ensures the unique url index exists.
func NewListingRepo(ctx context.Context, cfg Config) (*ListingRepo, error) {
	clientOpts := options.
		Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	conn, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	coll := conn.Database(cfg.Database).Collection(cfg.Collection)
	if _, err := coll.Indexes().CreateMany(ctx, indices); err != nil {
		_ = conn.Disconnect(ctx)
		return nil, fmt.Errorf("ensure listing indices: %w", err)
	}

	return &ListingRepo{conn: conn, coll: coll}, nil
}

// Close disconnects from the server.
func (r *ListingRepo) Close(ctx context.Context) error {
	return r.conn.Disconnect(ctx)
}

// Ping verifies the server is reachable. Used by the health endpoint.
func (r *ListingRepo) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx, nil)
}

// ExistsByURL implements repository.ListingRepository.
func (r *ListingRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: attrURL, Value: 1}})
	err := r.coll.FindOne(ctx, bson.M{attrURL: url}, opts).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
}

// ExistsByURLBatch implements repository.ListingRepository.
func (r *ListingRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	for _, u := range urls {
		result[u] = false
	}
	if len(urls) == 0 {
		return result, nil
	}

	q := bson.M{attrURL: bson.M{"$in": urls}}
	opts := options.Find().SetProjection(bson.D{{Key: attrURL, Value: 1}})
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	for cur.Next(ctx) {
		var doc struct {
			URL string `bson:"url"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: decode: %w", err)
		}
		result[doc.URL] = true
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	return result, nil
}

// Create implements repository.ListingRepository. It upserts with $setOnInsert
// so a URL that is already stored is left untouched; a duplicate-key race
// between two concurrent upserts is treated as success.
func (r *ListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	q := bson.M{attrURL: listing.URL}
	update := bson.M{"$setOnInsert": listing}
	_, err := r.coll.UpdateOne(ctx, q, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateBatch implements repository.ListingRepository using one unordered bulk
// write of per-URL upserts.
func (r *ListingRepo) CreateBatch(ctx context.Context, listings []*entity.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{attrURL: l.URL}).
			SetUpdate(bson.M{"$setOnInsert": l}).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.coll.BulkWrite(ctx, models, opts); err != nil && !onlyDuplicateKeyErrors(err) {
		return fmt.Errorf("CreateBatch: %w", err)
	}
	return nil
}

// Count implements repository.ListingRepository.
func (r *ListingRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// onlyDuplicateKeyErrors reports whether a bulk write failed solely because of
// duplicate-key races, which the idempotency contract treats as success.
func onlyDuplicateKeyErrors(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if !mongo.IsDuplicateKeyError(we.WriteError) {
			return false
		}
	}
	return len(bwe.WriteErrors) > 0
}

var _ repository.ListingRepository = (*ListingRepo)(nil)
