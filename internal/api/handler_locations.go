package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"study-spotter-backend/internal/catalog"
	"study-spotter-backend/internal/metrics"
	"study-spotter-backend/internal/model"
	"study-spotter-backend/internal/store"
)

type locationsResponse struct {
	Locations   []model.LocationSnapshot `json:"locations"`
	LastUpdated *time.Time               `json:"lastUpdated"`
}

func newLocationsResponse(snaps []model.LocationSnapshot, updated time.Time) locationsResponse {
	resp := locationsResponse{Locations: snaps}
	if resp.Locations == nil {
		resp.Locations = []model.LocationSnapshot{}
	}
	if !updated.IsZero() {
		resp.LastUpdated = &updated
	}
	return resp
}

// GetLocations handles GET /api/locations: the latest view, most available
// seats first.
func (h *Handler) GetLocations(c *gin.Context) {
	snaps, updated := h.locations.Latest()
	c.JSON(http.StatusOK, newLocationsResponse(snaps, updated))
}

// RefreshLocations handles POST /api/locations/refresh.
func (h *Handler) RefreshLocations(c *gin.Context) {
	snaps, updated := h.locations.RefreshOnce(c.Request.Context(), metrics.TriggerManual)
	c.JSON(http.StatusOK, newLocationsResponse(snaps, updated))
}

// ExportLocationsCSV handles GET /api/locations/export.csv.
func (h *Handler) ExportLocationsCSV(c *gin.Context) {
	snaps, _ := h.locations.Latest()

	var buf bytes.Buffer
	if err := catalog.WriteSnapshotsCSV(&buf, snaps); err != nil {
		h.log.WithError(err).Error("failed to export locations")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to export locations"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="locations.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type historyResponse struct {
	LocationID int64       `json:"locationId"`
	Name       string      `json:"name"`
	Capacity   int         `json:"capacity"`
	Occupancy  float64     `json:"occupancy"`
	Occupied   int         `json:"occupied"`
	Available  int         `json:"available"`
	Level      model.Level `json:"level"`
	ObservedAt time.Time   `json:"observedAt"`
}

// GetLocationHistory handles GET /api/locations/:id/history?at=RFC3339. It
// returns the last recorded sample at or before at, which defaults to now.
func (h *Handler) GetLocationHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}
	loc, ok := h.locations.Location(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}

	at := time.Now()
	if atParam := c.Query("at"); atParam != "" {
		at, err = time.Parse(time.RFC3339, atParam)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp format. Use RFC3339."})
			return
		}
	}

	if h.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "history is not available"})
		return
	}
	sample, err := h.store.SampleAt(c.Request.Context(), id, at.UTC())
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no sample recorded at that time"})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("location_id", id).Error("historical lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error during historical lookup"})
		return
	}

	c.JSON(http.StatusOK, historyResponse{
		LocationID: id,
		Name:       loc.Name,
		Capacity:   loc.Capacity,
		Occupancy:  sample.Occupancy,
		Occupied:   sample.Occupied,
		Available:  sample.Available,
		Level:      sample.Level,
		ObservedAt: sample.ObservedAt,
	})
}
