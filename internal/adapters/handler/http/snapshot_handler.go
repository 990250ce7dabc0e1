package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mna11/ReadMe3D/internal/adapters/handler/http/middleware"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

type SnapshotHandler struct {
	svc *services.CityService
}

func NewSnapshotHandler(svc *services.CityService) *SnapshotHandler {
	return &SnapshotHandler{
		svc: svc,
	}
}

type snapshotResponse struct {
	Username  string    `json:"username"`
	Total     int       `json:"total"`
	Days      int       `json:"days"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (h *SnapshotHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/snapshots", h.Create)
}

func (h *SnapshotHandler) Create(c *gin.Context) {
	client, ok := middleware.GetClient(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "client context missing"})
		return
	}

	var req calendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cal, err := req.toCalendar()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.svc.Ingest(c.Request.Context(), cal); err != nil {
		abortWithError(c, err)
		return
	}

	log.Printf("[SOURCE] Snapshot for %s pushed by %s (%d days)", cal.Username, client, len(cal.Days))

	c.JSON(http.StatusCreated, snapshotResponse{
		Username:  cal.Username,
		Total:     cal.Total,
		Days:      len(cal.Days),
		FetchedAt: cal.FetchedAt,
	})
}
