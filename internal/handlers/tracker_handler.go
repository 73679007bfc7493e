package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"order_tracker/internal/export"
	"order_tracker/internal/logger"
	"order_tracker/internal/models"
	"order_tracker/internal/services"
	"order_tracker/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientIDHeader identifies the browser whose last input is stored.
const ClientIDHeader = "X-Client-Id"

type TrackerHandler struct {
	tracker   services.TrackerService
	backup    services.BackupService
	lastInput services.LastInputService
	audit     services.AuditService
	exporter  *export.Exporter
	session   *services.Session
	now       func() time.Time
}

func NewTrackerHandler(
	tracker services.TrackerService,
	backup services.BackupService,
	lastInput services.LastInputService,
	audit services.AuditService,
	exporter *export.Exporter,
	session *services.Session,
) *TrackerHandler {
	return &TrackerHandler{
		tracker:   tracker,
		backup:    backup,
		lastInput: lastInput,
		audit:     audit,
		exporter:  exporter,
		session:   session,
		now:       time.Now,
	}
}

type LookupRequest struct {
	Code  string `json:"code"`
	Force bool   `json:"force"`
}

type CodeRequest struct {
	Code string `json:"code"`
}

func (h *TrackerHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.POST("/orders/lookup", h.Lookup)
		api.POST("/orders/refresh", h.Refresh)
		api.GET("/orders/backup-request", h.BackupRequestURL)
		api.POST("/orders/backup-request/send", h.SendBackupRequest)
		api.GET("/orders/invoice.xlsx", h.ExportInvoice)
		api.GET("/orders/lookups", h.ListLookups)
		api.GET("/orders/lookups/stats", h.LookupStats)

		api.GET("/tracker/last-input", h.GetLastInput)
		api.PUT("/tracker/last-input", h.PutLastInput)
		api.DELETE("/tracker/last-input", h.DeleteLastInput)
	}
}

func (h *TrackerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TrackerHandler) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	h.lookup(c, req.Code, req.Force)
}

// Refresh is a lookup that bypasses the sheet cache.
func (h *TrackerHandler) Refresh(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	h.lookup(c, req.Code, true)
}

func (h *TrackerHandler) lookup(c *gin.Context, code string, force bool) {
	ctx := c.Request.Context()
	if err := h.lastInput.Save(ctx, c.GetHeader(ClientIDHeader), code); err != nil {
		zap.L().Warn("failed to save last input", zap.String("request_id", logger.RequestID(c)), zap.Error(err))
	}

	result, err := h.tracker.Lookup(ctx, h.session, code, force)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TrackerHandler) BackupRequestURL(c *gin.Context) {
	link, err := h.backup.RequestURL(c.Request.Context(), h.session, c.Query("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *TrackerHandler) SendBackupRequest(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.backup.Send(c.Request.Context(), h.session, req.Code); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *TrackerHandler) ExportInvoice(c *gin.Context) {
	result, err := h.tracker.ExportableInvoice(h.session, c.Query("code"))
	if err != nil {
		h.fail(c, err)
		return
	}

	generatedAt := h.now()
	file, err := h.exporter.Export(result.Order, result.Invoice, generatedAt)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build invoice"})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.Filename(result.Order.ProjectCode, generatedAt)))
	c.Header("Content-Type", export.ContentType)
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
		zap.L().Error("failed to write invoice", zap.String("request_id", logger.RequestID(c)), zap.Error(err))
	}
}

// ListLookups returns the audit history of ?code=, or every lookup between
// ?from= and ?to= (YYYY-MM-DD) when no code is given.
func (h *TrackerHandler) ListLookups(c *gin.Context) {
	var (
		entries []models.LookupLog
		err     error
	)
	if code := c.Query("code"); code != "" {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err = h.audit.History(code, limit)
	} else {
		entries, err = h.audit.Between(c.Query("from"), c.Query("to"))
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []models.LookupLog{}
	}
	c.JSON(http.StatusOK, gin.H{"lookups": entries, "count": len(entries)})
}

// LookupStats counts lookups per outcome since ?since= (YYYY-MM-DD), or over
// the last day.
func (h *TrackerHandler) LookupStats(c *gin.Context) {
	summary, err := h.audit.Summary(c.Query("since"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TrackerHandler) GetLastInput(c *gin.Context) {
	code, err := h.lastInput.Load(c.Request.Context(), c.GetHeader(ClientIDHeader))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load last input"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *TrackerHandler) PutLastInput(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.lastInput.Save(c.Request.Context(), c.GetHeader(ClientIDHeader), req.Code); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save last input"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackerHandler) DeleteLastInput(c *gin.Context) {
	if err := h.lastInput.Clear(c.Request.Context(), c.GetHeader(ClientIDHeader)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear last input"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrackerHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order code is required"})
	case errors.Is(err, services.ErrBadRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be YYYY-MM-DD and from must not be after to"})
	case errors.Is(err, services.ErrAuditDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lookup audit log is not available"})
	case errors.Is(err, services.ErrNoOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": "Look the order up first"})
	case errors.Is(err, services.ErrBackupNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": "Backup can only be requested for approved orders with available files"})
	case errors.Is(err, services.ErrExportNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": "Invoice can only be exported on the finish date"})
	case errors.Is(err, services.ErrGatewayDisabled),
		errors.Is(err, whatsapp.ErrNotConfigured),
		errors.Is(err, whatsapp.ErrInvalidNumber):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp contact is not configured"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load data, please try again"})
	}
}
