package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/geocode"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/models"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/booking"
)

// PublicHandler serves the unauthenticated driver-facing surface: garage
// search and detail, service menus and day availability.
type PublicHandler struct {
	db           *gorm.DB
	geocoder     *geocode.Client
	availability *usecase.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	geocoder *geocode.Client,
	availability *usecase.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		geocoder:     geocoder,
		availability: availability,
	}
}

const (
	defaultSearchRadiusKm = 16.0
	maxSearchRadiusKm     = 80.0
)

type garageSearchResult struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Address    string  `json:"address"`
	Postcode   string  `json:"postcode"`
	PhotoURL   string  `json:"photo_url"`
	DistanceKm float64 `json:"distance_km"`
}

// Search lists visible garages around a postcode, nearest first. Visible means
// approved by an admin and holding a live subscription.
func (h *PublicHandler) Search(c *gin.Context) {
	postcode := strings.TrimSpace(c.Query("postcode"))
	if postcode == "" {
		httperr.BadRequest(c, "missing_postcode", "postcode query parameter is required")
		return
	}

	radiusKm := defaultSearchRadiusKm
	if s := c.Query("radius_km"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			radiusKm = v
		}
	}
	if radiusKm > maxSearchRadiusKm {
		radiusKm = maxSearchRadiusKm
	}

	origin, err := h.geocoder.Resolve(c.Request.Context(), postcode)
	if err != nil {
		httperr.BadRequest(c, "invalid_postcode", "postcode could not be resolved")
		return
	}

	var garages []models.Garage
	if err := h.db.
		Where("status = ?", models.GarageStatusApproved).
		Where(
			"id IN (?)",
			h.db.Model(&models.Subscription{}).
				Select("garage_id").
				Where("status IN ?", []string{models.SubscriptionActive, models.SubscriptionPastDue}),
		).
		Find(&garages).Error; err != nil {

		httperr.Internal(c, "search_failed", "could not search garages")
		return
	}

	results := make([]garageSearchResult, 0, len(garages))
	for _, g := range garages {
		if g.Latitude == 0 && g.Longitude == 0 {
			continue // never geocoded, cannot place it on the map
		}

		d := geocode.DistanceKm(*origin, geocode.Point{
			Latitude:  g.Latitude,
			Longitude: g.Longitude,
		})
		if d > radiusKm {
			continue
		}

		results = append(results, garageSearchResult{
			ID:         g.ID,
			Name:       g.Name,
			Slug:       g.Slug,
			Address:    g.Address,
			Postcode:   g.Postcode,
			PhotoURL:   g.PhotoURL,
			DistanceKm: d,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	c.JSON(http.StatusOK, results)
}

func (h *PublicHandler) GetGarage(c *gin.Context) {
	slug := c.Param("slug")

	garage, ok := h.visibleGarage(c, slug)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        garage.ID,
		"name":      garage.Name,
		"slug":      garage.Slug,
		"phone":     garage.Phone,
		"address":   garage.Address,
		"postcode":  garage.Postcode,
		"photo_url": garage.PhotoURL,
		"timezone":  garage.Timezone,
	})
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	slug := c.Param("slug")

	garage, ok := h.visibleGarage(c, slug)
	if !ok {
		return
	}

	var services []models.GarageService
	if err := h.db.
		Where("garage_id = ? AND active = ?", garage.ID, true).
		Order("category ASC, id ASC").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "failed_to_list_services", "could not list services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetAvailability lists open slot times for ?date=YYYY-MM-DD.
func (h *PublicHandler) GetAvailability(c *gin.Context) {
	slug := c.Param("slug")

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), slug, date)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	out := make([]gin.H, 0, len(slots))
	for _, s := range slots {
		out = append(out, gin.H{
			"start": s.Start.Format("15:04"),
			"end":   s.End.Format("15:04"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  c.Query("date"),
		"slots": out,
	})
}

// visibleGarage loads a garage by slug and enforces the public visibility
// rule. Writes the response itself on failure.
func (h *PublicHandler) visibleGarage(c *gin.Context, slug string) (*models.Garage, bool) {
	var garage models.Garage
	if err := h.db.Where("slug = ?", slug).First(&garage).Error; err != nil {
		httperr.NotFound(c, "garage_not_found", "garage not found")
		return nil, false
	}

	if garage.Status != models.GarageStatusApproved {
		httperr.NotFound(c, "garage_not_found", "garage not found")
		return nil, false
	}

	var live int64
	h.db.Model(&models.Subscription{}).
		Where("garage_id = ? AND status IN ?", garage.ID,
			[]string{models.SubscriptionActive, models.SubscriptionPastDue}).
		Count(&live)
	if live == 0 {
		httperr.NotFound(c, "garage_not_found", "garage not found")
		return nil, false
	}

	return &garage, true
}
