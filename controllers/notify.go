package controllers

import (
	"context"
	"fmt"

	"storefront/models"
	"storefront/services"
	"storefront/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmailNotifier mails an order confirmation to the order's owner
type EmailNotifier struct {
	Users  *mongo.Collection
	Orders *services.OrderService
	Mailer utils.Mailer
}

// NewEmailNotifier creates an EmailNotifier reading users from db
func NewEmailNotifier(db *mongo.Database, orders *services.OrderService, mailer utils.Mailer) *EmailNotifier {
	return &EmailNotifier{
		Users:  db.Collection(userCollection),
		Orders: orders,
		Mailer: mailer,
	}
}

// OrderPlaced sends the confirmation email for orderID
func (n *EmailNotifier) OrderPlaced(ctx context.Context, orderID string) error {
	order, err := n.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	uid, err := primitive.ObjectIDFromHex(order.UserID)
	if err != nil {
		return fmt.Errorf("order %s: user id %q is not a registered account", orderID, order.UserID)
	}

	var user models.User
	if err := n.Users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		return fmt.Errorf("find user %s: %w", order.UserID, err)
	}

	subject, body := utils.OrderConfirmationEmail(user.Name, order)
	return n.Mailer.SendEmail(user.Email, subject, body)
}
