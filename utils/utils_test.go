package utils

import (
	"testing"
	"time"

	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.GenerateJWT("u1", "a@b.c", "buyer")
	require.NoError(t, err)

	claims, err := issuer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "buyer", claims.Role)
}

func TestParseJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)
	expired := NewTokenIssuer("secret", -time.Minute)

	foreign, err := other.GenerateJWT("u1", "a@b.c", "buyer")
	require.NoError(t, err)
	_, err = issuer.ParseJWT(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stale, err := expired.GenerateJWT("u1", "a@b.c", "buyer")
	require.NoError(t, err)
	_, err = issuer.ParseJWT(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseJWT("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestNewMailerSelection(t *testing.T) {
	assert.Nil(t, NewMailer("", "", "shop@example.com"))
	assert.IsType(t, &PostmarkMailer{}, NewMailer("pm", "sg", "shop@example.com"))
	assert.IsType(t, &SendGridMailer{}, NewMailer("", "sg", "shop@example.com"))
}

func TestOrderConfirmationEmailEscapes(t *testing.T) {
	order := &models.Order{
		ID:            primitive.NewObjectID(),
		Items:         []models.OrderItem{{ProductID: "<p1>", Qty: 2, Price: 10}},
		Total:         20,
		PaymentMethod: "cod",
	}

	subject, body := OrderConfirmationEmail("<Ann>", order)
	assert.Equal(t, "Order Confirmation", subject)
	assert.Contains(t, body, "&lt;Ann&gt;")
	assert.Contains(t, body, "&lt;p1&gt;")
	assert.Contains(t, body, order.ID.Hex())
	assert.Contains(t, body, "20.00")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("dev", "not-a-level")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}
