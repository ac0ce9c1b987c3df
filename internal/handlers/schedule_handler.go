package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/timezone"
)

type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// --------- Requests ---------

type SchedulePatternConfig struct {
	Weekday         int    `json:"weekday" binding:"min=0,max=6"`
	Active          bool   `json:"active"`
	OpenTime        string `json:"open_time"`
	CloseTime       string `json:"close_time"`
	BreakFrom       string `json:"break_from"`
	BreakTo         string `json:"break_to"`
	SlotDurationMin int    `json:"slot_duration_min"`
}

type ScheduleUpdateRequest struct {
	Days []SchedulePatternConfig `json:"days" binding:"required"`
}

type CreateExceptionRequest struct {
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Closed    bool   `json:"closed"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Reason    string `json:"reason"`
}

// --------- Weekly pattern ---------

func (h *ScheduleHandler) GetPatterns(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var patterns []models.SchedulePattern
	if err := h.db.
		Where("garage_id = ?", garageID).
		Order("weekday ASC").
		Find(&patterns).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_schedule"})
		return
	}

	c.JSON(http.StatusOK, patterns)
}

// UpdatePatterns replaces the whole weekly pattern set in one call. Already
// materialized slots are left alone; the nightly generator works from the new
// pattern from the next run on.
func (h *ScheduleHandler) UpdatePatterns(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var req ScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, d := range req.Days {
		if d.Active {
			if _, err := time.Parse("15:04", d.OpenTime); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_open_time"})
				return
			}
			if _, err := time.Parse("15:04", d.CloseTime); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_close_time"})
				return
			}
		}
	}

	if err := h.db.Where("garage_id = ?", garageID).Delete(&models.SchedulePattern{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_clear_schedule"})
		return
	}

	var toCreate []models.SchedulePattern
	for _, d := range req.Days {
		toCreate = append(toCreate, models.SchedulePattern{
			GarageID:        garageID,
			Weekday:         d.Weekday,
			Active:          d.Active,
			OpenTime:        d.OpenTime,
			CloseTime:       d.CloseTime,
			BreakFrom:       d.BreakFrom,
			BreakTo:         d.BreakTo,
			SlotDurationMin: d.SlotDurationMin,
		})
	}

	if len(toCreate) > 0 {
		if err := h.db.Create(&toCreate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_schedule"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Exceptions ---------

func (h *ScheduleHandler) ListExceptions(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var exceptions []models.ScheduleException
	if err := h.db.
		Where("garage_id = ?", garageID).
		Order("date ASC").
		Find(&exceptions).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_exceptions"})
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

func (h *ScheduleHandler) CreateException(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var req CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_date"})
		return
	}

	if !req.Closed {
		if _, err := time.Parse("15:04", req.OpenTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_open_time"})
			return
		}
		if _, err := time.Parse("15:04", req.CloseTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_close_time"})
			return
		}
	}

	exc := models.ScheduleException{
		GarageID:  garageID,
		Date:      req.Date,
		Closed:    req.Closed,
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
		Reason:    req.Reason,
	}

	if err := h.db.Create(&exc).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exception_already_exists"})
		return
	}

	c.JSON(http.StatusCreated, exc)
}

func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	id := c.Param("id")

	res := h.db.
		Where("id = ? AND garage_id = ?", id, garageID).
		Delete(&models.ScheduleException{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_exception"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "exception_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Slots ---------

func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var garage models.Garage
	if err := h.db.First(&garage, garageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "garage_not_found"})
		return
	}

	loc := timezone.Location(garage.Timezone)

	from := timezone.NowIn(garage.Timezone)
	if s := c.Query("from"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
			from = t
		}
	}

	to := from.AddDate(0, 0, 7)
	if s := c.Query("to"); s != "" {
		if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}

	var slots []models.Slot
	if err := h.db.
		Where(
			"garage_id = ? AND start_time >= ? AND start_time < ?",
			garageID, from, to,
		).
		Order("start_time ASC").
		Find(&slots).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

// BlockSlot takes an open slot off the market without a booking.
func (h *ScheduleHandler) BlockSlot(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	id := c.Param("id")

	res := h.db.Model(&models.Slot{}).
		Where("id = ? AND garage_id = ? AND status = ?", id, garageID, models.SlotStatusAvailable).
		Update("status", models.SlotStatusBlocked)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_block_slot"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "slot_not_blockable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ScheduleHandler) UnblockSlot(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	id := c.Param("id")

	res := h.db.Model(&models.Slot{}).
		Where("id = ? AND garage_id = ? AND status = ?", id, garageID, models.SlotStatusBlocked).
		Update("status", models.SlotStatusAvailable)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_unblock_slot"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "slot_not_blocked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
