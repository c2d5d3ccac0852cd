package controllers

import (
	"net/http"

	"storefront/models"
	"storefront/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CartController handles cart-related requests
type CartController struct {
	Carts  *services.CartService
	Logger *zap.Logger
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{
		Carts:  carts,
		Logger: logger,
	}
}

type cartResponse struct {
	ID     string            `json:"id"`
	UserID string            `json:"user_id"`
	Items  []models.CartItem `json:"items"`
}

type addToCartRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Qty       *int   `json:"qty"`
}

// GetCart retrieves the user's cart, creating an empty one if needed
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID != "" && !authorizeUser(w, r, userID) {
		return
	}

	cart, err := cc.Carts.GetCart(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, cc.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{
		ID:     cart.ID.Hex(),
		UserID: cart.UserID,
		Items:  cart.Items,
	})
}

// AddToCart adds a product to the user's cart, merging with an existing line
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.UserID != "" && !authorizeUser(w, r, req.UserID) {
		return
	}

	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	if err := cc.Carts.AddItem(r.Context(), req.UserID, req.ProductID, qty); err != nil {
		writeServiceError(w, r, cc.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["product_id"]
	userID := r.URL.Query().Get("user_id")
	if userID != "" && !authorizeUser(w, r, userID) {
		return
	}

	if err := cc.Carts.RemoveItem(r.Context(), userID, productID); err != nil {
		writeServiceError(w, r, cc.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
