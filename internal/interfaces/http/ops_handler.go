// Package http exposes the operator HTTP endpoint: health probing and
// queue lane inspection.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping() error
}

// LaneInspector exposes queue lane introspection and recovery of dead and
// stranded in-flight entries.
type LaneInspector interface {
	Depths(ctx context.Context, lanes ...string) ([]queue.LaneDepth, error)
	DeadMessages(ctx context.Context, lane string, limit int64) ([]*queue.Message, error)
	RequeueDead(ctx context.Context, lane string, count int) (int, error)
	RequeueProcessing(ctx context.Context, lane string, count int) (int, error)
}

// OpsHandler handles operator API endpoints
type OpsHandler struct {
	db        Pinger
	inspector LaneInspector
	lanes     []string
	logger    *zap.Logger
}

// NewOpsHandler creates an ops handler inspecting the given lanes
func NewOpsHandler(db Pinger, inspector LaneInspector, lanes []string, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		db:        db,
		inspector: inspector,
		lanes:     lanes,
		logger:    logger.Named("ops"),
	}
}

// RegisterRoutes registers the operator routes
func (h *OpsHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)

	api := engine.Group("/api/v1")
	api.GET("/queues", h.ListQueues)
	api.GET("/queues/:lane/dead", h.ListDead)
	api.POST("/queues/:lane/dead/requeue", h.RequeueDead)
	api.POST("/queues/:lane/processing/requeue", h.RequeueProcessing)
}

// Health reports process and database liveness
func (h *OpsHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListQueues returns the depth of every known lane
func (h *OpsHandler) ListQueues(c *gin.Context) {
	depths, err := h.inspector.Depths(c.Request.Context(), h.lanes...)
	if err != nil {
		h.logger.Error("queue depth inspection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"queues": depths})
}

// ListDead returns dead-letter entries of one lane
func (h *OpsHandler) ListDead(c *gin.Context) {
	lane := c.Param("lane")
	if !h.knownLane(lane) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown lane"})
		return
	}
	messages, err := h.inspector.DeadMessages(c.Request.Context(), lane, 100)
	if err != nil {
		h.logger.Error("dead-letter inspection failed", zap.String("lane", lane), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lane": lane, "messages": messages})
}

// RequeueDead moves dead-letter entries of one lane back onto its ready list
func (h *OpsHandler) RequeueDead(c *gin.Context) {
	h.requeue(c, h.inspector.RequeueDead)
}

// RequeueProcessing moves in-flight entries stranded by a crashed worker
// back onto the lane's ready list.
func (h *OpsHandler) RequeueProcessing(c *gin.Context) {
	h.requeue(c, h.inspector.RequeueProcessing)
}

func (h *OpsHandler) requeue(c *gin.Context, move func(ctx context.Context, lane string, count int) (int, error)) {
	lane := c.Param("lane")
	if !h.knownLane(lane) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown lane"})
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Count <= 0 {
		req.Count = 1
	}

	moved, err := move(c.Request.Context(), lane, req.Count)
	if err != nil {
		h.logger.Error("requeue failed", zap.String("lane", lane), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "moved": moved})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lane": lane, "moved": moved})
}

func (h *OpsHandler) knownLane(lane string) bool {
	for _, l := range h.lanes {
		if l == lane {
			return true
		}
	}
	return false
}
