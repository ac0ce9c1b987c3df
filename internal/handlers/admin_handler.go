package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/audit"
	"github.com/motmatch/mot-marketplace/internal/billing"
	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/httpresp"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
	"github.com/motmatch/mot-marketplace/internal/notify"
)

// AdminHandler is the platform back office: garage approval, plan management
// and read access across tenants.
type AdminHandler struct {
	db       *gorm.DB
	provider billing.Provider
	audit    *audit.Dispatcher
	notifier *notify.Dispatcher
}

func NewAdminHandler(
	db *gorm.DB,
	provider billing.Provider,
	audit *audit.Dispatcher,
	notifier *notify.Dispatcher,
) *AdminHandler {
	return &AdminHandler{
		db:       db,
		provider: provider,
		audit:    audit,
		notifier: notifier,
	}
}

// --------- Garages ---------

func (h *AdminHandler) ListGarages(c *gin.Context) {
	page, perPage := pagination(c)

	q := h.db.Model(&models.Garage{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(postcode) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_garages", "could not list garages")
		return
	}

	var garages []models.Garage
	if err := q.
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&garages).Error; err != nil {

		httperr.Internal(c, "failed_to_list_garages", "could not list garages")
		return
	}

	httpresp.Page(c, garages, total, page, perPage)
}

func (h *AdminHandler) ApproveGarage(c *gin.Context) {
	h.setGarageStatus(c, models.GarageStatusApproved, "garage_approved")
}

func (h *AdminHandler) SuspendGarage(c *gin.Context) {
	h.setGarageStatus(c, models.GarageStatusSuspended, "garage_suspended")
}

func (h *AdminHandler) setGarageStatus(c *gin.Context, status, action string) {
	actorID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "garage id must be numeric")
		return
	}

	var garage models.Garage
	if err := h.db.First(&garage, uint(id)).Error; err != nil {
		httperr.NotFound(c, "garage_not_found", "garage not found")
		return
	}

	if garage.Status == status {
		c.JSON(http.StatusOK, garage)
		return
	}

	garage.Status = status
	if err := h.db.Save(&garage).Error; err != nil {
		httperr.Internal(c, "failed_to_update_garage", "could not update garage")
		return
	}

	h.audit.Dispatch(audit.Event{
		GarageID: garage.ID,
		UserID:   &actorID,
		Action:   action,
		Entity:   "garage",
		EntityID: &garage.ID,
	})

	if status == models.GarageStatusApproved {
		var staff []models.User
		h.db.Where("garage_id = ? AND role = ?", garage.ID, models.RoleGarage).Find(&staff)
		for _, u := range staff {
			h.notifier.Dispatch(notify.Event{
				UserID: u.ID,
				Kind:   notify.KindGarageApproved,
				Data:   map[string]any{"garage": garage.Name},
			})
		}
	}

	c.JSON(http.StatusOK, garage)
}

// --------- Users ---------

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, perPage := pagination(c)

	q := h.db.Model(&models.User{})

	if role := strings.TrimSpace(c.Query("role")); role != "" {
		q = q.Where("role = ?", role)
	}
	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_users", "could not list users")
		return
	}

	var users []models.User
	if err := q.
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {

		httperr.Internal(c, "failed_to_list_users", "could not list users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}

	httpresp.Page(c, out, total, page, perPage)
}

// --------- Bookings ---------

func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, perPage := pagination(c)

	q := h.db.Model(&models.Booking{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if garageID := strings.TrimSpace(c.Query("garage_id")); garageID != "" {
		q = q.Where("garage_id = ?", garageID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "could not list bookings")
		return
	}

	var bookings []models.Booking
	if err := q.
		Preload("Garage").
		Preload("Slot").
		Preload("Lines").
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error; err != nil {

		httperr.Internal(c, "failed_to_list_bookings", "could not list bookings")
		return
	}

	httpresp.Page(c, bookings, total, page, perPage)
}

// --------- Plans ---------

type CreatePlanRequest struct {
	Name         string          `json:"name" binding:"required"`
	Code         string          `json:"code" binding:"required"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" binding:"required"`
	CurrencyID   string          `json:"currency_id"`
}

type UpdatePlanRequest struct {
	Name         *string          `json:"name,omitempty"`
	MonthlyPrice *decimal.Decimal `json:"monthly_price,omitempty"`
	Active       *bool            `json:"active,omitempty"`
}

func (h *AdminHandler) ListPlans(c *gin.Context) {
	var plans []models.Plan
	if err := h.db.Order("id ASC").Find(&plans).Error; err != nil {
		httperr.Internal(c, "failed_to_list_plans", "could not list plans")
		return
	}

	httpresp.List(c, plans)
}

// CreatePlan stores the tier locally and mirrors it to the payment processor
// so recurring charges reference a real processor-side plan.
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	code := strings.ToLower(strings.TrimSpace(req.Code))

	var count int64
	h.db.Model(&models.Plan{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "plan_code_exists", "a plan with this code already exists")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyID))
	if currency == "" {
		currency = "GBP"
	}

	plan := models.Plan{
		Name:         req.Name,
		Code:         code,
		MonthlyPrice: req.MonthlyPrice,
		CurrencyID:   currency,
		Active:       true,
	}

	processorID, err := h.provider.CreatePlan(
		c.Request.Context(),
		fmt.Sprintf("MOT marketplace %s plan", plan.Name),
		plan.MonthlyPrice,
		plan.CurrencyID,
	)
	if err != nil {
		httperr.Internal(c, "processor_error", "could not create plan with the payment processor")
		return
	}
	plan.ProcessorPlanID = processorID

	if err := h.db.Create(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_create_plan", "could not create plan")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePlan(c *gin.Context) {
	id := c.Param("id")

	var plan models.Plan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "plan_not_found", "plan not found")
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.MonthlyPrice != nil {
		plan.MonthlyPrice = *req.MonthlyPrice
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := h.db.Save(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_update_plan", "could not update plan")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// --------- Invoices ---------

func (h *AdminHandler) ListInvoices(c *gin.Context) {
	page, perPage := pagination(c)

	q := h.db.Model(&models.Invoice{})

	if garageID := strings.TrimSpace(c.Query("garage_id")); garageID != "" {
		q = q.Where("garage_id = ?", garageID)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_invoices", "could not list invoices")
		return
	}

	var invoices []models.Invoice
	if err := q.
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&invoices).Error; err != nil {

		httperr.Internal(c, "failed_to_list_invoices", "could not list invoices")
		return
	}

	httpresp.Page(c, invoices, total, page, perPage)
}

// --------- Helpers ---------

func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return page, perPage
}
