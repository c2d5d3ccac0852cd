package controllers

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	productCollection   = "product"
	defaultProductLimit = 24
	maxProductLimit     = 100
)

// ProductController handles product-related requests
type ProductController struct {
	Collection *mongo.Collection
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *ProductController {
	return &ProductController{
		Collection: db.Collection(productCollection),
		Timeout:    timeout,
		Logger:     logger,
	}
}

// productFilter builds the catalog query: q matches the title anywhere,
// category matches the whole category name, both case-insensitively.
func productFilter(q, category string) bson.M {
	filter := bson.M{}
	if q = strings.TrimSpace(q); q != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}
	if category = strings.TrimSpace(category); category != "" {
		filter["category"] = bson.M{"$regex": "^" + regexp.QuoteMeta(category) + "$", "$options": "i"}
	}
	return filter
}

// GetProducts lists products, optionally filtered by title and category
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := defaultProductLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit: must be a positive integer")
			return
		}
		limit = min(n, maxProductLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := pc.Collection.Find(ctx, productFilter(query.Get("q"), query.Get("category")), opts)
	if err != nil {
		pc.Logger.Error("find products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		pc.Logger.Error("read products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error reading products")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": products})
}

// CreateProduct handles adding a new product
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(product.Title) == "" || strings.TrimSpace(product.Category) == "" {
		writeError(w, http.StatusBadRequest, "title and category are required")
		return
	}
	if product.Price < 0 {
		writeError(w, http.StatusBadRequest, "price: must be non-negative")
		return
	}
	product.ID = primitive.NilObjectID
	product.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	result, err := pc.Collection.InsertOne(ctx, product)
	if err != nil {
		pc.Logger.Error("insert product failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"product_id": hexID(result.InsertedID)})
}

// SeedProducts inserts the demo catalog
func (pc *ProductController) SeedProducts(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(sampleProducts))
	for _, p := range sampleProducts {
		p.CreatedAt = now
		docs = append(docs, p)
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	result, err := pc.Collection.InsertMany(ctx, docs)
	if err != nil {
		pc.Logger.Error("seed products failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error seeding products")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"seeded": len(result.InsertedIDs)})
}

func salePrice(v float64) *float64 { return &v }

var sampleProducts = []models.Product{
	{
		Title:       "Oversized Tee Minimal",
		Description: "Kaos oversized bahan cotton combed 24s, nyaman dan adem.",
		Price:       129000,
		SalePrice:   salePrice(99000),
		Category:    "Wanita",
		Images:      []string{"https://images.unsplash.com/photo-1487099174927-da3cd6408862?auto=format&fit=crop&w=1200&q=80"},
		Rating:      4.6,
		Reviews:     128,
		Stock:       100,
		Colors:      []string{"black", "white", "cream"},
		Sizes:       []string{"S", "M", "L", "XL"},
		Tags:        []string{},
	},
	{
		Title:       "Cardigan Rajut Pastel",
		Description: "Cardigan rajut halus dengan palet pastel.",
		Price:       199000,
		Category:    "Pria",
		Images:      []string{"https://images.unsplash.com/photo-1693592401248-c9544518318a?auto=format&fit=crop&w=1200&q=80"},
		Rating:      4.8,
		Reviews:     342,
		Stock:       55,
		Colors:      []string{"sage", "rose", "sky"},
		Sizes:       []string{"S", "M", "L"},
		Tags:        []string{},
	},
	{
		Title:       "Sneakers Putih Clean",
		Description: "Sneakers putih serbaguna dengan desain minimal.",
		Price:       359000,
		Category:    "Unisex",
		Images:      []string{"https://images.unsplash.com/photo-1542291026-7eec264c27ff?auto=format&fit=crop&w=1200&q=80"},
		Rating:      4.7,
		Reviews:     521,
		Stock:       80,
		Colors:      []string{},
		Sizes:       []string{"38", "39", "40", "41", "42"},
		Tags:        []string{},
	},
	{
		Title:       "Tote Bag Kanvas",
		Description: "Tote bag kanvas tebal untuk harian.",
		Price:       99000,
		Category:    "Aksesoris",
		Images:      []string{"https://images.unsplash.com/photo-1511988617509-a57c8a288659?auto=format&fit=crop&w=1200&q=80"},
		Rating:      4.5,
		Reviews:     213,
		Stock:       120,
		Colors:      []string{},
		Sizes:       []string{},
		Tags:        []string{},
	},
}
