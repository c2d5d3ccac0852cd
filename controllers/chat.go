package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/models"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	chatCollection   = "chat"
	defaultChatLimit = 50
	maxChatLimit     = 200
)

// ChatController handles chat room requests
type ChatController struct {
	Collection *mongo.Collection
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewChatController creates a new ChatController
func NewChatController(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *ChatController {
	return &ChatController{
		Collection: db.Collection(chatCollection),
		Timeout:    timeout,
		Logger:     logger,
	}
}

type sendChatRequest struct {
	RoomID   string `json:"room_id"`
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

// GetMessages returns the latest messages of a room, oldest first
func (cc *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	limit := defaultChatLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit: must be a positive integer")
			return
		}
		limit = min(n, maxChatLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := cc.Collection.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		cc.Logger.Error("find chat failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching messages")
		return
	}
	defer cursor.Close(ctx)

	messages := []models.Chat{}
	if err := cursor.All(ctx, &messages); err != nil {
		cc.Logger.Error("read chat failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reading messages")
		return
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// SendMessage appends a message to a room
func (cc *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(req.RoomID) == "" || strings.TrimSpace(req.SenderID) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "room_id, sender_id and message are required")
		return
	}
	if !authorizeUser(w, r, req.SenderID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cc.Timeout)
	defer cancel()

	result, err := cc.Collection.InsertOne(ctx, models.Chat{
		RoomID:    req.RoomID,
		SenderID:  req.SenderID,
		Message:   req.Message,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		cc.Logger.Error("insert chat failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error sending message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message_id": hexID(result.InsertedID)})
}
