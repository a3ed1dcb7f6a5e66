package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// ledgerHandler handles HTTP requests for the derived ledger projections.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to ledger projections.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/accounts/:code/balance", h.getBalance)
		ledger.GET("/trial-balance/:periodID", h.getTrialBalance)
		ledger.GET("/subsidiary/:tag", h.getSubsidiaryBalances)
		ledger.POST("/rebuild", h.rebuild)
	}
}

func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	asOf := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), code, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to compute balance", slog.String("account_code", code), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountCode: code, AsOf: asOf, Balance: balance})
}

func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodID := c.Param("periodID")

	tb, err := h.ledgerService.TrialBalance(c.Request.Context(), periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		} else {
			logger.Error("Failed to compute trial balance", slog.String("period_id", periodID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute trial balance"})
		}
		return
	}

	c.JSON(http.StatusOK, tb)
}

func (h *ledgerHandler) getSubsidiaryBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tag := c.Param("tag")

	balances, err := h.ledgerService.SubsidiaryBalances(c.Request.Context(), tag)
	if err != nil {
		logger.Error("Failed to list subsidiary balances", slog.String("counterparty_tag", tag), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subsidiary balances"})
		return
	}

	c.JSON(http.StatusOK, balances)
}

func (h *ledgerHandler) rebuild(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.ledgerService.Rebuild(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProjectorDrift) {
			// Drift is an incident, not a server fault: report the diverged
			// totals alongside the halt.
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "result": resp})
			return
		}
		logger.Error("Failed to rebuild projection", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild projection"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
