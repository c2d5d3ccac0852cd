package repository

import (
	"context"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderCollection is the collection orders are stored in
const OrderCollection = "order"

// OrderRepository persists orders in MongoDB. Apart from the cart_cleared
// marker, an order document is never updated after insert.
type OrderRepository struct {
	Collection *mongo.Collection
}

// NewOrderRepository creates an OrderRepository on db
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		Collection: db.Collection(OrderCollection),
	}
}

// EnsureIndexes creates the indexes used by the order queries
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "cart_cleared", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return classify(err)
}

// Insert stores a new order and sets its ID
func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	result, err := r.Collection.InsertOne(ctx, order)
	if err != nil {
		return classify(err)
	}
	order.ID = insertedID(result)
	return nil
}

// FindByID returns a single order. Malformed ids are reported as ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&order); err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// ListPendingClear returns orders whose cart has not been confirmed cleared,
// oldest first
func (r *OrderRepository) ListPendingClear(ctx context.Context, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)
	return r.find(ctx, bson.M{"cart_cleared": false}, opts)
}

// MarkCartCleared records that the order's source cart was emptied
func (r *OrderRepository) MarkCartCleared(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"cart_cleared": true},
	})
	if err != nil {
		return classify(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Order, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, classify(err)
	}
	return orders, nil
}

func insertedID(result *mongo.InsertOneResult) primitive.ObjectID {
	oid, _ := result.InsertedID.(primitive.ObjectID)
	return oid
}
