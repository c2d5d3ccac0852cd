package repository

import (
	"context"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CartCollection is the collection carts are stored in
const CartCollection = "cart"

// CartRepository persists carts in MongoDB
type CartRepository struct {
	Collection *mongo.Collection
}

// NewCartRepository creates a CartRepository on db
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		Collection: db.Collection(CartCollection),
	}
}

// EnsureIndexes creates the unique user_id index that keeps one cart per user
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_id_unique"),
	})
	return classify(err)
}

// FindByUser returns the cart owned by userID or ErrNotFound
func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.Collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		return nil, classify(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Create inserts a new cart and sets its ID. A second cart for the same user
// fails with ErrDuplicate.
func (r *CartRepository) Create(ctx context.Context, cart *models.Cart) error {
	result, err := r.Collection.InsertOne(ctx, cart)
	if err != nil {
		return classify(err)
	}
	cart.ID = insertedID(result)
	return nil
}

// Replace overwrites the whole cart document if its stored version still
// equals cart.Version, then bumps cart.Version.
func (r *CartRepository) Replace(ctx context.Context, cart *models.Cart) error {
	next := *cart
	next.Version = cart.Version + 1

	result, err := r.Collection.ReplaceOne(ctx, bson.M{
		"_id":     cart.ID,
		"version": versionFilter(cart.Version),
	}, next)
	if err != nil {
		return classify(err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	cart.Version = next.Version
	return nil
}

// versionFilter matches a stored version. Carts written without a version
// field decode as version 0, so 0 also matches a missing field.
func versionFilter(version int64) interface{} {
	if version == 0 {
		return bson.M{"$in": bson.A{int64(0), nil}}
	}
	return version
}

// ClearItems empties the user's cart, creating it if it does not exist
func (r *CartRepository) ClearItems(ctx context.Context, userID string, now time.Time) error {
	update := bson.M{
		"$set":         bson.M{"items": []models.CartItem{}, "updated_at": now},
		"$inc":         bson.M{"version": 1},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.Collection.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert created the cart first; the retry matches it
		_, err = r.Collection.UpdateOne(ctx, bson.M{"user_id": userID}, update, opts)
	}
	return classify(err)
}
