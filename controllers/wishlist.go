package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const wishlistCollection = "wishlist"

// WishlistController handles wishlist requests
type WishlistController struct {
	Collection *mongo.Collection
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *WishlistController {
	return &WishlistController{
		Collection: db.Collection(wishlistCollection),
		Timeout:    timeout,
		Logger:     logger,
	}
}

// GetWishlist returns the user's saved products
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "user_id: is required")
		return
	}
	if !authorizeUser(w, r, userID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), wc.Timeout)
	defer cancel()

	cursor, err := wc.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		wc.Logger.Error("find wishlist failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching wishlist")
		return
	}
	defer cursor.Close(ctx)

	items := []models.Wishlist{}
	if err := cursor.All(ctx, &items); err != nil {
		wc.Logger.Error("read wishlist failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reading wishlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// AddToWishlist saves a product for the user
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var entry models.Wishlist
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(entry.UserID) == "" || strings.TrimSpace(entry.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "user_id and product_id are required")
		return
	}
	if !authorizeUser(w, r, entry.UserID) {
		return
	}
	entry.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), wc.Timeout)
	defer cancel()

	result, err := wc.Collection.InsertOne(ctx, models.Wishlist{
		UserID:    entry.UserID,
		ProductID: entry.ProductID,
		CreatedAt: entry.CreatedAt,
	})
	if err != nil {
		wc.Logger.Error("insert wishlist failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error saving wishlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"wishlist_id": hexID(result.InsertedID)})
}
