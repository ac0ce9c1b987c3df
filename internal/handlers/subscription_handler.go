package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/subscription"
)

// SubscriptionHandler is the garage-facing billing surface: pick a plan,
// subscribe, inspect the current state and cancel.
type SubscriptionHandler struct {
	db        *gorm.DB
	subscribe *usecase.Subscribe
	cancel    *usecase.Cancel
}

func NewSubscriptionHandler(
	db *gorm.DB,
	subscribe *usecase.Subscribe,
	cancel *usecase.Cancel,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		db:        db,
		subscribe: subscribe,
		cancel:    cancel,
	}
}

type SubscribeRequest struct {
	PlanCode string `json:"plan_code" binding:"required"`
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	var plans []models.Plan
	if err := h.db.
		Where("active = ?", true).
		Order("monthly_price ASC").
		Find(&plans).Error; err != nil {

		httperr.Internal(c, "failed_to_list_plans", "could not list plans")
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.subscribe.Execute(c.Request.Context(), garageID, actorID, req.PlanCode)
	if err != nil {
		writeSubscriptionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subscription": result.Subscription,
		"checkout_url": result.CheckoutURL,
	})
}

// GetCurrent returns the garage's newest non-cancelled subscription, or the
// last cancelled one so the frontend can show history.
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var sub models.Subscription
	err := h.db.Preload("Plan").
		Where("garage_id = ? AND status <> ?", garageID, models.SubscriptionCancelled).
		Order("id DESC").
		First(&sub).Error
	if err == gorm.ErrRecordNotFound {
		err = h.db.Preload("Plan").
			Where("garage_id = ?", garageID).
			Order("id DESC").
			First(&sub).Error
	}
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "subscription_not_found", "no subscription for this garage")
			return
		}
		httperr.Internal(c, "failed_to_get_subscription", "could not load subscription")
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	sub, err := h.cancel.Execute(c.Request.Context(), garageID, actorID)
	if err != nil {
		writeSubscriptionError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) ListInvoices(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)

	var invoices []models.Invoice
	if err := h.db.
		Joins("JOIN subscriptions ON subscriptions.id = invoices.subscription_id").
		Where("subscriptions.garage_id = ?", garageID).
		Order("invoices.id DESC").
		Find(&invoices).Error; err != nil {

		httperr.Internal(c, "failed_to_list_invoices", "could not list invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func writeSubscriptionError(c *gin.Context, err error) {
	var be httperr.BusinessError
	if !errors.As(err, &be) {
		httperr.Internal(c, "internal_error", "something went wrong")
		return
	}

	switch be.Code {
	case "plan_not_found", "garage_not_found", "subscription_not_found", "garage_owner_not_found":
		httperr.NotFound(c, be.Code, be.Code)
	case "already_subscribed", "invalid_state":
		httperr.Conflict(c, be.Code, be.Code)
	default:
		httperr.BadRequest(c, be.Code, be.Code)
	}
}
