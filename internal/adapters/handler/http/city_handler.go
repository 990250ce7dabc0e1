package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

const imageMaxAge = 30 * time.Minute

type CityHandler struct {
	svc *services.CityService
}

func NewCityHandler(svc *services.CityService) *CityHandler {
	return &CityHandler{
		svc: svc,
	}
}

type dayRequest struct {
	Date    string `json:"date" binding:"required"`
	Weekday *int   `json:"weekday"`
	Count   int    `json:"count"`
}

type calendarRequest struct {
	Username string       `json:"username"`
	Total    *int         `json:"total"`
	Days     []dayRequest `json:"days" binding:"required"`
}

// toCalendar keeps an explicit weekday so mismatches are reported instead of
// silently corrected. A missing total falls back to the sum of the days.
func (r calendarRequest) toCalendar() (*domain.Calendar, error) {
	cal := &domain.Calendar{
		Username: r.Username,
		Days:     make([]domain.ActivityDay, 0, len(r.Days)),
	}

	sum := 0
	for i, d := range r.Days {
		date, err := time.Parse(domain.DateLayout, d.Date)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w: %q is not YYYY-MM-DD", i, domain.ErrMalformedDay, d.Date)
		}
		day := domain.NewActivityDay(date, d.Count)
		if d.Weekday != nil {
			day.Weekday = *d.Weekday
		}
		cal.Days = append(cal.Days, day)
		sum += d.Count
	}

	cal.Total = sum
	if r.Total != nil {
		cal.Total = *r.Total
	}
	return cal, nil
}

func (h *CityHandler) RegisterRoutes(router *gin.RouterGroup) {
	cities := router.Group("/cities")
	{
		cities.GET("/:username", h.Get)
		cities.POST("/render", h.RenderSeries)
	}
}

func (h *CityHandler) Get(c *gin.Context) {
	format, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	img, err := h.svc.Render(c.Request.Context(), c.Param("username"), format)
	if err != nil {
		abortWithError(c, err)
		return
	}

	writeImage(c, img)
}

func (h *CityHandler) RenderSeries(c *gin.Context) {
	format, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, err)
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

	img, err := h.svc.RenderSeries(cal, format)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	writeImage(c, img)
}

func writeImage(c *gin.Context, img *services.Image) {
	if c.Writer.Header().Get("Cache-Control") == "" {
		c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(imageMaxAge.Seconds())))
	}
	c.Header("X-City-Total", strconv.Itoa(img.Totals.Total))
	c.Header("X-City-Today", strconv.Itoa(img.Totals.Today))
	c.Data(http.StatusOK, img.ContentType, img.Body)
}
