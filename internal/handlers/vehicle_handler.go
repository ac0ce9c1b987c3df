package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/validators"
	"github.com/motmatch/mot-marketplace/internal/vehiclelookup"
)

type VehicleHandler struct {
	db     *gorm.DB
	lookup *vehiclelookup.Client
}

func NewVehicleHandler(db *gorm.DB, lookup *vehiclelookup.Client) *VehicleHandler {
	return &VehicleHandler{db: db, lookup: lookup}
}

// --------- Requests ---------

type CreateVehicleRequest struct {
	Registration string `json:"registration" binding:"required"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Colour       string `json:"colour"`
}

type UpdateVehicleRequest struct {
	Make   *string `json:"make,omitempty"`
	Model  *string `json:"model,omitempty"`
	Colour *string `json:"colour,omitempty"`
}

// --------- Handlers ---------

func (h *VehicleHandler) List(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)

	var vehicles []models.Vehicle
	if err := h.db.
		Where("driver_id = ?", driverID).
		Order("id ASC").
		Find(&vehicles).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// Create registers a vehicle against the driver and enriches it from the
// government vehicle enquiry service. A lookup failure is not fatal: the row
// is saved unverified with whatever the driver typed.
func (h *VehicleHandler) Create(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	registration := validators.NormalizeRegistration(req.Registration)
	if !validators.IsRegistrationValid(registration) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_registration"})
		return
	}

	var count int64
	h.db.Model(&models.Vehicle{}).
		Where("driver_id = ? AND registration = ?", driverID, registration).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_already_registered"})
		return
	}

	vehicle := models.Vehicle{
		DriverID:     driverID,
		Registration: registration,
		Make:         req.Make,
		Model:        req.Model,
		Colour:       req.Colour,
	}

	if result, err := h.lookup.Lookup(c.Request.Context(), registration); err == nil {
		vehicle.Make = result.Make
		vehicle.Colour = result.Colour
		vehicle.FuelType = result.FuelType
		vehicle.YearOfManufacture = result.YearOfManufacture
		vehicle.MOTStatus = result.MOTStatus
		vehicle.MOTExpiryDate = vehiclelookup.ParseMOTExpiry(result)
		vehicle.Verified = true
	}

	if err := h.db.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_vehicle"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := h.db.
		Where("id = ? AND driver_id = ?", id, driverID).
		First(&vehicle).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_vehicle"})
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Colour != nil {
		vehicle.Colour = *req.Colour
	}

	if err := h.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// Refresh re-runs the government lookup for an already registered vehicle,
// typically after an MOT so the expiry date catches up.
func (h *VehicleHandler) Refresh(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := h.db.
		Where("id = ? AND driver_id = ?", id, driverID).
		First(&vehicle).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_vehicle"})
		return
	}

	result, err := h.lookup.Lookup(c.Request.Context(), vehicle.Registration)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "lookup_failed"})
		return
	}

	vehicle.Make = result.Make
	vehicle.Colour = result.Colour
	vehicle.FuelType = result.FuelType
	vehicle.YearOfManufacture = result.YearOfManufacture
	vehicle.MOTStatus = result.MOTStatus
	vehicle.MOTExpiryDate = vehiclelookup.ParseMOTExpiry(result)
	vehicle.Verified = true

	if err := h.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var count int64
	h.db.Model(&models.Booking{}).
		Where("vehicle_id = ? AND driver_id = ? AND status IN ?", id, driverID,
			[]string{"pending", "confirmed"}).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "vehicle_has_live_bookings"})
		return
	}

	res := h.db.
		Where("id = ? AND driver_id = ?", id, driverID).
		Delete(&models.Vehicle{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_vehicle"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
