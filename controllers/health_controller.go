package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness probes.
type HealthController struct {
	db      Pinger
	service string
}

func NewHealthController(db Pinger, service string) *HealthController {
	return &HealthController{db: db, service: service}
}

// Health handles GET /health.
func (hc *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := hc.db.Ping(pingCtx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "service": hc.service, "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": hc.service})
}
