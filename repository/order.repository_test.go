package repository

import (
	"context"
	"testing"
	"time"

	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func orderDoc(id primitive.ObjectID, userID string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "product_id", Value: "p1"},
			{Key: "qty", Value: 5},
			{Key: "price", Value: 10.0},
		}}},
		{Key: "total", Value: 50.0},
		{Key: "status", Value: "new"},
		{Key: "payment_method", Value: "cod"},
		{Key: "address", Value: bson.D{{Key: "city", Value: "Bandung"}}},
		{Key: "cart_cleared", Value: false},
		{Key: "created_at", Value: createdAt},
	}
}

func TestOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "storefront." + OrderCollection

	mt.Run("insert sets id", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		order := &models.Order{UserID: "u1", Status: models.OrderStatusNew}
		require.NoError(t, repo.Insert(ctx, order))
		assert.False(t, order.ID.IsZero())
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		id := primitive.NewObjectID()
		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDoc(id, "u1", created)))

		order, err := repo.FindByID(ctx, id.Hex())
		require.NoError(t, err)
		assert.Equal(t, "u1", order.UserID)
		assert.Equal(t, []models.OrderItem{{ProductID: "p1", Qty: 5, Price: 10}}, order.Items)
		assert.Equal(t, 50.0, order.Total)
		assert.Equal(t, "Bandung", order.Address["city"])
		assert.True(t, created.Equal(order.CreatedAt))
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}

		_, err := repo.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("list by user", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		now := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			orderDoc(primitive.NewObjectID(), "u1", now),
			orderDoc(primitive.NewObjectID(), "u1", now.Add(-time.Hour)),
		))

		orders, err := repo.ListByUser(ctx, "u1", 20)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	mt.Run("list pending returns empty slice", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		orders, err := repo.ListPendingClear(ctx, 10)
		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	mt.Run("mark cleared", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		assert.NoError(t, repo.MarkCartCleared(ctx, primitive.NewObjectID().Hex()))
	})

	mt.Run("mark cleared unknown order", func(mt *mtest.T) {
		repo := &OrderRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.MarkCartCleared(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
