package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultPaymentMethod is used when the checkout request names none
const DefaultPaymentMethod = "cod"

// OrderItem is a snapshot of a purchased line
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Qty       int     `bson:"qty" json:"qty"`
	Price     float64 `bson:"price" json:"price"`
}

// Address is the delivery address as supplied by the client
type Address map[string]interface{}

// Order represents a placed order. Items and Total are written once, at insert.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	Address       Address            `bson:"address" json:"address"`
	CartCleared   bool               `bson:"cart_cleared" json:"cart_cleared"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	out := *o
	out.Items = make([]OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	out.Address = o.Address.Clone()
	return &out
}

// Clone deep-copies the nested maps and slices of the address
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	out := make(Address, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch v := v.(type) {
	case Address:
		return v.Clone()
	case map[string]interface{}:
		return map[string]interface{}(Address(v).Clone())
	case primitive.M:
		return primitive.M(Address(v).Clone())
	case []interface{}:
		return cloneSlice(v)
	case primitive.A:
		return primitive.A(cloneSlice(v))
	case primitive.D:
		out := make(primitive.D, len(v))
		for i, e := range v {
			out[i] = primitive.E{Key: e.Key, Value: cloneValue(e.Value)}
		}
		return out
	}
	return v
}

func cloneSlice(v []interface{}) []interface{} {
	out := make([]interface{}, len(v))
	for i := range v {
		out[i] = cloneValue(v[i])
	}
	return out
}
