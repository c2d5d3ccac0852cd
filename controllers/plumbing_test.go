package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func chatDoc(message string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "room_id", Value: "room-1"},
		{Key: "sender_id", Value: "u1"},
		{Key: "message", Value: message},
		{Key: "role", Value: "user"},
		{Key: "created_at", Value: createdAt},
	}
}

func roomRequest(path string) *http.Request {
	return mux.SetURLVars(httptest.NewRequest("GET", path, nil), map[string]string{"room_id": "room-1"})
}

func TestChatController(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "storefront." + chatCollection
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("latest messages oldest first", func(mt *mtest.T) {
		cc := &ChatController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}
		// the store hands back newest first
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			chatDoc("third", base.Add(2*time.Minute)),
			chatDoc("second", base.Add(time.Minute)),
			chatDoc("first", base),
		))

		rec := httptest.NewRecorder()
		cc.GetMessages(rec, roomRequest("/api/chat/room-1"))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Messages []struct {
				Message string `json:"message"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Messages, 3)
		assert.Equal(t, "first", body.Messages[0].Message)
		assert.Equal(t, "second", body.Messages[1].Message)
		assert.Equal(t, "third", body.Messages[2].Message)

		evt := mt.GetStartedEvent()
		require.NotNil(t, evt)
		assert.Equal(t, "room-1", evt.Command.Lookup("filter", "room_id").StringValue())
		assert.Equal(t, int64(-1), evt.Command.Lookup("sort", "created_at").AsInt64())
		assert.Equal(t, int64(defaultChatLimit), evt.Command.Lookup("limit").AsInt64())
	})

	mt.Run("oversized limit is clamped", func(mt *mtest.T) {
		cc := &ChatController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		rec := httptest.NewRecorder()
		cc.GetMessages(rec, roomRequest("/api/chat/room-1?limit=5000"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())

		evt := mt.GetStartedEvent()
		require.NotNil(t, evt)
		assert.Equal(t, int64(maxChatLimit), evt.Command.Lookup("limit").AsInt64())
	})

	mt.Run("bad limit", func(mt *mtest.T) {
		cc := &ChatController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}

		for _, limit := range []string{"0", "-4", "many"} {
			rec := httptest.NewRecorder()
			cc.GetMessages(rec, roomRequest("/api/chat/room-1?limit="+limit))
			assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		}
	})

	mt.Run("send message", func(mt *mtest.T) {
		cc := &ChatController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := httptest.NewRecorder()
		body := `{"room_id":"room-1","sender_id":"u1","message":"Masih ada ukuran M?"}`
		cc.SendMessage(rec, httptest.NewRequest("POST", "/api/chat", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "message_id")
	})

	mt.Run("send message without text", func(mt *mtest.T) {
		cc := &ChatController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}

		rec := httptest.NewRecorder()
		body := `{"room_id":"room-1","sender_id":"u1","message":"  "}`
		cc.SendMessage(rec, httptest.NewRequest("POST", "/api/chat", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWishlistController(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "storefront." + wishlistCollection

	mt.Run("get wishlist", func(mt *mtest.T) {
		wc := &WishlistController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: "u1"}, {Key: "product_id", Value: "p1"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: "u1"}, {Key: "product_id", Value: "p2"}},
		))

		rec := httptest.NewRecorder()
		wc.GetWishlist(rec, httptest.NewRequest("GET", "/api/wishlist?user_id=u1", nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Items []struct {
				ProductID string `json:"product_id"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Items, 2)
		assert.Equal(t, "p1", body.Items[0].ProductID)
		assert.Equal(t, "p2", body.Items[1].ProductID)
	})

	mt.Run("get wishlist without user", func(mt *mtest.T) {
		wc := &WishlistController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}

		rec := httptest.NewRecorder()
		wc.GetWishlist(rec, httptest.NewRequest("GET", "/api/wishlist", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	mt.Run("add to wishlist", func(mt *mtest.T) {
		wc := &WishlistController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := httptest.NewRecorder()
		wc.AddToWishlist(rec, httptest.NewRequest("POST", "/api/wishlist", strings.NewReader(`{"user_id":"u1","product_id":"p1"}`)))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["wishlist_id"])
	})

	mt.Run("add to wishlist without product", func(mt *mtest.T) {
		wc := &WishlistController{Collection: mt.Coll, Timeout: time.Second, Logger: zap.NewNop()}

		rec := httptest.NewRecorder()
		wc.AddToWishlist(rec, httptest.NewRequest("POST", "/api/wishlist", strings.NewReader(`{"user_id":"u1"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthController(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("root", func(mt *mtest.T) {
		hc := NewHealthController(mt.DB, time.Second)

		rec := httptest.NewRecorder()
		hc.Root(rec, httptest.NewRequest("GET", "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","service":"VibeFashion Backend"}`, rec.Body.String())
	})

	mt.Run("database reachable", func(mt *mtest.T) {
		hc := NewHealthController(mt.DB, time.Second)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, mt.DB.Name()+".$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "cart"}, {Key: "type", Value: "collection"}},
				bson.D{{Key: "name", Value: "order"}, {Key: "type", Value: "collection"}},
			),
		)

		rec := httptest.NewRecorder()
		hc.TestDatabase(rec, httptest.NewRequest("GET", "/test", nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "connected", body["database"])
		assert.ElementsMatch(t, []interface{}{"cart", "order"}, body["collections"])
	})

	mt.Run("database down", func(mt *mtest.T) {
		hc := NewHealthController(mt.DB, time.Second)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		rec := httptest.NewRecorder()
		hc.TestDatabase(rec, httptest.NewRequest("GET", "/test", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not connected", body["database"])
		assert.NotEmpty(t, body["error"])
	})
}
