package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/landmark-radar/module/core/dataset"
	"github.com/nandanugg/landmark-radar/module/core/domain"
	"github.com/nandanugg/landmark-radar/module/core/internal/repository/database"
	"github.com/nandanugg/landmark-radar/module/core/service"
)

type trackingService interface {
	GetLatest(ctx context.Context) (*domain.Position, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.Position, error)
	GetRegion(ctx context.Context) (*domain.Region, error)
	Session() domain.Session
	Landmarks() []domain.Landmark
	Nearby(pos domain.Position, radius float64) []service.Match
}

type positionResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

type nearbyResponse struct {
	domain.Landmark
	Distance float64 `json:"distance"`
}

type regionResponse struct {
	domain.Region
	BBox [4]float64 `json:"bbox"`
}

type TrackingHandler struct {
	trackingSvc trackingService
}

func NewTrackingHandler(trackingSvc trackingService) *TrackingHandler {
	return &TrackingHandler{trackingSvc: trackingSvc}
}

func (h *TrackingHandler) Register(r *gin.RouterGroup) {
	r.GET("/landmarks", h.GetLandmarks)
	r.GET("/landmarks/nearby", h.GetNearby)
	r.GET("/session", h.GetSession)
	r.GET("/position", h.GetLatestPosition)
	r.GET("/position/history", h.GetHistory)
	r.GET("/region", h.GetRegion)
}

// GetLandmarks serves the monitored landmarks as map markers.
func (h *TrackingHandler) GetLandmarks(c *gin.Context) {
	fc := dataset.ToFeatureCollection(h.trackingSvc.Landmarks())
	body, err := fc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode landmarks"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

func (h *TrackingHandler) GetNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude parameter"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude parameter"})
		return
	}

	var radius float64
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || !(radius > 0) || math.IsInf(radius, 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius parameter"})
			return
		}
	}

	matches := h.trackingSvc.Nearby(domain.Position{Lat: lat, Lon: lon}, radius)
	results := make([]nearbyResponse, len(matches))
	for i, m := range matches {
		results[i] = nearbyResponse{Landmark: m.Landmark, Distance: m.Distance}
	}
	c.JSON(http.StatusOK, results)
}

func (h *TrackingHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.trackingSvc.Session())
}

func (h *TrackingHandler) GetLatestPosition(c *gin.Context) {
	pos, err := h.trackingSvc.GetLatest(c.Request.Context())
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no position received yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch position"})
		return
	}

	c.JSON(http.StatusOK, toPositionResponse(pos))
}

func (h *TrackingHandler) GetHistory(c *gin.Context) {
	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	if end < start {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not be before start"})
		return
	}

	query := &domain.HistoryQuery{
		Start: time.Unix(start, 0),
		End:   time.Unix(end, 0),
	}

	positions, err := h.trackingSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]positionResponse, len(positions))
	for i := range positions {
		results[i] = toPositionResponse(&positions[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *TrackingHandler) GetRegion(c *gin.Context) {
	region, err := h.trackingSvc.GetRegion(c.Request.Context())
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no position received yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute region"})
		return
	}

	b := region.Bound()
	c.JSON(http.StatusOK, regionResponse{
		Region: *region,
		BBox:   [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
	})
}

func toPositionResponse(pos *domain.Position) positionResponse {
	return positionResponse{
		Latitude:  pos.Lat,
		Longitude: pos.Lon,
		Accuracy:  pos.Accuracy,
		Timestamp: pos.Timestamp.Unix(),
	}
}
