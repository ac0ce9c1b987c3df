package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/booking"
)

// BookingHandler is the driver-facing booking surface.
type BookingHandler struct {
	create *usecase.CreateBooking
	cancel *usecase.CancelBooking
	list   *usecase.ListDriverBookings
}

func NewBookingHandler(
	create *usecase.CreateBooking,
	cancel *usecase.CancelBooking,
	list *usecase.ListDriverBookings,
) *BookingHandler {
	return &BookingHandler{
		create: create,
		cancel: cancel,
		list:   list,
	}
}

type CreateBookingRequest struct {
	GarageID   uint   `json:"garage_id" binding:"required"`
	VehicleID  uint   `json:"vehicle_id" binding:"required"`
	ServiceIDs []uint `json:"service_ids" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"required"` // HH:MM
	Notes      string `json:"notes"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	booking, err := h.create.Execute(c.Request.Context(), usecase.CreateBookingInput{
		GarageID:   req.GarageID,
		DriverID:   driverID,
		VehicleID:  req.VehicleID,
		ServiceIDs: req.ServiceIDs,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) List(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)

	bookings, err := h.list.Execute(c.Request.Context(), driverID)
	if err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "could not list bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	driverID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "booking id must be numeric")
		return
	}

	booking, err := h.cancel.ExecuteForDriver(c.Request.Context(), driverID, uint(bookingID))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// writeBookingError maps use case errors to HTTP. Business codes come out as
// 4xx with the code in the body; everything else is a plain 500.
func writeBookingError(c *gin.Context, err error) {
	var be httperr.BusinessError
	if !errors.As(err, &be) {
		httperr.Internal(c, "internal_error", "something went wrong")
		return
	}

	switch be.Code {
	case "garage_not_found", "booking_not_found", "vehicle_not_found", "service_not_found":
		httperr.NotFound(c, be.Code, be.Code)
	case "slot_taken", "invalid_state":
		httperr.Conflict(c, be.Code, be.Code)
	default:
		httperr.BadRequest(c, be.Code, be.Code)
	}
}
