package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type healthResponse struct {
	Status   string `json:"status"` // ok | degraded
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Health probes the hard dependencies of the sale path. Postgres down means
// no sales at all; redis down only degrades the settings cache, but both
// report 503 so the probe stays a single signal.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Postgres: "up", Redis: "up"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			resp.Postgres = "down"
		}
		if rdb.Ping(ctx).Err() != nil {
			resp.Redis = "down"
		}

		code := http.StatusOK
		if resp.Postgres != "up" || resp.Redis != "up" {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}
