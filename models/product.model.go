package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog entry
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	SalePrice   *float64           `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Images      []string           `bson:"images" json:"images"`
	Rating      float64            `bson:"rating" json:"rating"`
	Reviews     int                `bson:"reviews" json:"reviews"`
	Stock       int                `bson:"stock" json:"stock"`
	Colors      []string           `bson:"colors" json:"colors"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	SellerID    string             `bson:"seller_id,omitempty" json:"seller_id,omitempty"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Wishlist is a single saved product for a user
type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	ProductID string             `bson:"product_id" json:"product_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Chat is one message in a buyer/seller room
type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID    string             `bson:"room_id" json:"room_id"`
	SenderID  string             `bson:"sender_id" json:"sender_id"`
	Message   string             `bson:"message" json:"message"`
	Role      string             `bson:"role" json:"role"` // "user" or "assistant"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
