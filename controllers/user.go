package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"storefront/models"
	"storefront/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const userCollection = "user"

// UserController handles registration and login
type UserController struct {
	Collection *mongo.Collection
	Tokens     *utils.TokenIssuer
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewUserController creates a new UserController. tokens may be nil, in which
// case login returns no token.
func NewUserController(db *mongo.Database, tokens *utils.TokenIssuer, timeout time.Duration, logger *zap.Logger) *UserController {
	return &UserController{
		Collection: db.Collection(userCollection),
		Tokens:     tokens,
		Timeout:    timeout,
		Logger:     logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c *credentials) normalize() error {
	addr, err := mail.ParseAddress(strings.TrimSpace(c.Email))
	if err != nil {
		return errors.New("email: is not a valid address")
	}
	c.Email = strings.ToLower(addr.Address)
	if c.Password == "" {
		return errors.New("password: is required")
	}
	return nil
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := creds.normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(creds.Name) == "" {
		writeError(w, http.StatusBadRequest, "name: is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	// Check if user already exists
	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": creds.Email})
	if err != nil {
		uc.Logger.Error("count users failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := utils.HashPassword(creds.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	user := models.User{
		Email:        creds.Email,
		PasswordHash: hash,
		Name:         creds.Name,
		Role:         "buyer",
		Addresses:    []models.Address{},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	result, err := uc.Collection.InsertOne(ctx, user)
	if err != nil {
		uc.Logger.Error("insert user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"user_id": hexID(result.InsertedID),
		"email":   user.Email,
		"name":    user.Name,
	})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := creds.normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uc.Timeout)
	defer cancel()

	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		uc.Logger.Error("find user failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, creds.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	role := user.Role
	if role == "" {
		role = "buyer"
	}
	resp := map[string]string{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"name":    user.Name,
		"role":    role,
	}
	if uc.Tokens != nil {
		token, err := uc.Tokens.GenerateJWT(user.ID.Hex(), user.Email, role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Error generating token")
			return
		}
		resp["token"] = token
	}

	writeJSON(w, http.StatusOK, resp)
}
