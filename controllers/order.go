package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/models"
	"storefront/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// notifyTimeout bounds the asynchronous confirmation after an order
const notifyTimeout = 30 * time.Second

// OrderNotifier is told about every newly placed order
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, orderID string) error
}

// OrderController handles order-related requests
type OrderController struct {
	Orders   *services.OrderService
	Notifier OrderNotifier
	Logger   *zap.Logger
}

// NewOrderController creates a new OrderController. notifier may be nil.
func NewOrderController(orders *services.OrderService, notifier OrderNotifier, logger *zap.Logger) *OrderController {
	return &OrderController{
		Orders:   orders,
		Notifier: notifier,
		Logger:   logger,
	}
}

type createOrderRequest struct {
	UserID        string             `json:"user_id"`
	Items         []models.OrderItem `json:"items"`
	Total         *float64           `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Address       models.Address     `json:"address"`
}

type createOrderResponse struct {
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
	Warning string             `json:"warning,omitempty"`
}

// CreateOrder places an order from the submitted items and clears the cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Total == nil {
		writeError(w, http.StatusBadRequest, "total: is required")
		return
	}
	if req.UserID != "" && !authorizeUser(w, r, req.UserID) {
		return
	}

	result, err := oc.Orders.CreateOrder(r.Context(), services.CreateOrderInput{
		UserID:        req.UserID,
		Items:         req.Items,
		Total:         *req.Total,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
	})
	if err != nil {
		writeServiceError(w, r, oc.Logger, err)
		return
	}

	if oc.Notifier != nil {
		go oc.notify(result.OrderID)
	}

	writeJSON(w, http.StatusOK, createOrderResponse{
		OrderID: result.OrderID,
		Status:  result.Status,
		Warning: result.Warning,
	})
}

// GetOrders lists the user's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID != "" && !authorizeUser(w, r, userID) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit: must be a positive integer")
			return
		}
		limit = n
	}

	orders, err := oc.Orders.ListOrders(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, r, oc.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": orders})
}

// GetOrderByID returns a single order
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	order, err := oc.Orders.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, oc.Logger, err)
		return
	}
	if !authorizeUser(w, r, order.UserID) {
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (oc *OrderController) notify(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := oc.Notifier.OrderPlaced(ctx, orderID); err != nil {
		oc.Logger.Warn("order notification failed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
