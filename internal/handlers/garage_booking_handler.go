package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/booking"
)

// GarageBookingHandler is the garage-side view of bookings: the day sheet and
// the status transitions.
type GarageBookingHandler struct {
	list   *usecase.ListGarageBookings
	status *usecase.UpdateBookingStatus
	cancel *usecase.CancelBooking
}

func NewGarageBookingHandler(
	list *usecase.ListGarageBookings,
	status *usecase.UpdateBookingStatus,
	cancel *usecase.CancelBooking,
) *GarageBookingHandler {
	return &GarageBookingHandler{
		list:   list,
		status: status,
		cancel: cancel,
	}
}

// List returns bookings for ?date=YYYY-MM-DD (default today in the garage
// timezone), or for ?from / ?to when a range is asked for.
func (h *GarageBookingHandler) List(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	if from := c.Query("from"); from != "" {
		fromT, err := time.Parse("2006-01-02", from)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "from must be YYYY-MM-DD")
			return
		}

		toT := fromT.AddDate(0, 0, 7)
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				httperr.BadRequest(c, "invalid_date", "to must be YYYY-MM-DD")
				return
			}
			toT = t.AddDate(0, 0, 1)
		}

		bookings, err := h.list.ExecuteByRange(c.Request.Context(), garageID, fromT, toT)
		if err != nil {
			writeBookingError(c, err)
			return
		}

		c.JSON(http.StatusOK, bookings)
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	bookings, err := h.list.ExecuteByDate(c.Request.Context(), garageID, date)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *GarageBookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.status.Confirm)
}

func (h *GarageBookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.status.Complete)
}

func (h *GarageBookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.status.MarkNoShow)
}

func (h *GarageBookingHandler) Cancel(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "booking id must be numeric")
		return
	}

	booking, err := h.cancel.ExecuteForGarage(c.Request.Context(), garageID, actorID, uint(bookingID))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *GarageBookingHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, garageID, actorID, bookingID uint) (*models.Booking, error),
) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "booking id must be numeric")
		return
	}

	booking, err := fn(c.Request.Context(), garageID, actorID, uint(bookingID))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
