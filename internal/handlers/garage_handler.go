package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/geocode"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/storage"
)

type GarageHandler struct {
	db       *gorm.DB
	geocoder *geocode.Client
	photos   *storage.PhotoStore
}

func NewGarageHandler(db *gorm.DB, geocoder *geocode.Client, photos *storage.PhotoStore) *GarageHandler {
	return &GarageHandler{db: db, geocoder: geocoder, photos: photos}
}

type UpdateGarageRequest struct {
	Name              *string `json:"name,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	Email             *string `json:"email,omitempty"`
	Address           *string `json:"address,omitempty"`
	Postcode          *string `json:"postcode,omitempty"`
	VTSNumber         *string `json:"vts_number,omitempty"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes,omitempty"`
}

func (h *GarageHandler) GetMyGarage(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var garage models.Garage
	if err := h.db.First(&garage, garageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "garage_not_found"})
		return
	}

	c.JSON(http.StatusOK, garage)
}

func (h *GarageHandler) UpdateMyGarage(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var garage models.Garage
	if err := h.db.First(&garage, garageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "garage_not_found"})
		return
	}

	var req UpdateGarageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		garage.Name = *req.Name
	}
	if req.Phone != nil {
		garage.Phone = *req.Phone
	}
	if req.Email != nil {
		garage.Email = *req.Email
	}
	if req.Address != nil {
		garage.Address = *req.Address
	}
	if req.VTSNumber != nil {
		garage.VTSNumber = *req.VTSNumber
	}
	if req.MinAdvanceMinutes != nil && *req.MinAdvanceMinutes >= 0 {
		garage.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if req.Postcode != nil {
		postcode := strings.ToUpper(strings.TrimSpace(*req.Postcode))
		if postcode != garage.Postcode {
			garage.Postcode = postcode

			// Re-geocode on change; search relies on the coordinates.
			if point, err := h.geocoder.Resolve(c.Request.Context(), postcode); err == nil {
				garage.Latitude = point.Latitude
				garage.Longitude = point.Longitude
			}
		}
	}

	if err := h.db.Save(&garage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_garage"})
		return
	}

	c.JSON(http.StatusOK, garage)
}

// UploadPhoto accepts a multipart image, normalizes it and stores it in S3.
func (h *GarageHandler) UploadPhoto(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var garage models.Garage
	if err := h.db.First(&garage, garageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "garage_not_found"})
		return
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_photo"})
		return
	}
	defer file.Close()

	url, err := h.photos.SaveGaragePhoto(c.Request.Context(), garageID, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_photo"})
		return
	}

	garage.PhotoURL = url
	if err := h.db.Save(&garage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_garage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
