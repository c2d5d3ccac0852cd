package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "VibeFashion Backend"

// HealthController reports service and database status
type HealthController struct {
	DB      *mongo.Database
	Timeout time.Duration
}

// NewHealthController creates a new HealthController
func NewHealthController(db *mongo.Database, timeout time.Duration) *HealthController {
	return &HealthController{DB: db, Timeout: timeout}
}

// Root answers liveness probes
func (hc *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
}

// TestDatabase reports whether the database answers and which collections exist
func (hc *HealthController) TestDatabase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.Timeout)
	defer cancel()

	resp := map[string]interface{}{
		"backend":       "running",
		"database":      "not connected",
		"database_name": hc.DB.Name(),
		"collections":   []string{},
	}

	if err := hc.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		resp["error"] = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["database"] = "connected"

	names, err := hc.DB.ListCollectionNames(ctx, bson.D{})
	if err == nil {
		resp["collections"] = names
	}
	writeJSON(w, http.StatusOK, resp)
}
