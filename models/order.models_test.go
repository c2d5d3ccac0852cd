package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOrderCloneIsDeep(t *testing.T) {
	order := &Order{
		UserID: "u1",
		Items:  []OrderItem{{ProductID: "p1", Qty: 5, Price: 10}},
		Address: Address{
			"city":  "Bandung",
			"geo":   map[string]interface{}{"lat": -6.9},
			"lines": []interface{}{"Jl. Braga 1", map[string]interface{}{"unit": "2B"}},
		},
	}

	clone := order.Clone()
	clone.Items[0].Qty = 99
	clone.Address["city"] = "Jakarta"
	clone.Address["geo"].(map[string]interface{})["lat"] = 0.0
	clone.Address["lines"].([]interface{})[1].(map[string]interface{})["unit"] = "9Z"

	assert.Equal(t, 5, order.Items[0].Qty)
	assert.Equal(t, "Bandung", order.Address["city"])
	assert.Equal(t, -6.9, order.Address["geo"].(map[string]interface{})["lat"])
	assert.Equal(t, "2B", order.Address["lines"].([]interface{})[1].(map[string]interface{})["unit"])
}

func TestOrderCloneCopiesDecodedDocuments(t *testing.T) {
	order := &Order{Address: Address{
		"geo":  primitive.D{{Key: "lat", Value: -6.9}},
		"tags": primitive.A{primitive.M{"kind": "home"}},
	}}

	clone := order.Clone()
	clone.Address["geo"].(primitive.D)[0].Value = 0.0
	clone.Address["tags"].(primitive.A)[0].(primitive.M)["kind"] = "office"

	assert.Equal(t, -6.9, order.Address["geo"].(primitive.D)[0].Value)
	assert.Equal(t, "home", order.Address["tags"].(primitive.A)[0].(primitive.M)["kind"])
}

func TestOrderCloneKeepsNilAddress(t *testing.T) {
	clone := (&Order{UserID: "u1"}).Clone()
	assert.Nil(t, clone.Address)
	assert.Empty(t, clone.Items)
}
