package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// auditHandler exposes the read side of the audit log.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers routes related to audit records.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/audit/:targetType/:targetID", h.listByTarget)
}

func (h *auditHandler) listByTarget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	targetType := c.Param("targetType")
	targetID := c.Param("targetID")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit, expected a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.auditService.ListByTarget(c.Request.Context(), targetType, targetID, limit)
	if err != nil {
		logger.Error("Failed to list audit records",
			slog.String("target_type", targetType),
			slog.String("target_id", targetID),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit records"})
		return
	}

	c.JSON(http.StatusOK, records)
}
