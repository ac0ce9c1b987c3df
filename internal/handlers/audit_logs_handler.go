package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/httperr"
	"github.com/motmatch/mot-marketplace/internal/httpresp"
	"github.com/motmatch/mot-marketplace/internal/middleware"
	"github.com/motmatch/mot-marketplace/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// List returns the garage's own audit trail, newest first, with optional
// action / entity / date filters.
func (h *AuditLogsHandler) List(c *gin.Context) {
	garageID := c.MustGet(middleware.ContextGarageID).(uint)
	page, perPage := pagination(c)

	q := h.db.Model(&models.AuditLog{}).Where("garage_id = ?", garageID)

	if action := strings.TrimSpace(c.Query("action")); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := strings.TrimSpace(c.Query("entity")); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "could not list audit logs")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_audit_logs", "could not list audit logs")
		return
	}

	httpresp.Page(c, logs, total, page, perPage)
}

// ListAll is the admin view: every garage, optional garage_id filter.
func (h *AuditLogsHandler) ListAll(c *gin.Context) {
	page, perPage := pagination(c)

	q := h.db.Model(&models.AuditLog{})

	if garageID := strings.TrimSpace(c.Query("garage_id")); garageID != "" {
		q = q.Where("garage_id = ?", garageID)
	}
	if action := strings.TrimSpace(c.Query("action")); action != "" {
		q = q.Where("action = ?", action)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "could not list audit logs")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_audit_logs", "could not list audit logs")
		return
	}

	httpresp.Page(c, logs, total, page, perPage)
}
