package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbook/currency_sync/internal/apperrors"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/middleware"
	"github.com/finbook/currency_sync/internal/utils"
	"github.com/gin-gonic/gin"
)

// ratesHandler handles HTTP requests for rate updates, conversion and
// operational status.
type ratesHandler struct {
	updater    portssvc.RateUpdaterSvc
	conversion portssvc.ConversionSvc
	integrity  portssvc.IntegritySvc
	status     portssvc.StatusSvc
	currency   portssvc.CurrencySvcFacade
}

func newRatesHandler(services *portssvc.ServiceContainer) *ratesHandler {
	return &ratesHandler{
		updater:    services.RateUpdater,
		conversion: services.Conversion,
		integrity:  services.Integrity,
		status:     services.Status,
		currency:   services.Currency,
	}
}

// registerRatesRoutes registers rate update, conversion and status routes.
func registerRatesRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newRatesHandler(services)

	rates := rg.Group("/rates")
	{
		rates.POST("/update", h.updateRates)
		rates.GET("/status", h.statusReport)
		rates.POST("/integrity-check", h.integrityCheck)
	}
	rg.GET("/convert", h.convert)
}

type updateRatesRequest struct {
	Currencies []string `json:"currencies"`
	DryRun     bool     `json:"dryRun"`
}

// updateRates forces a reconciliation run, optionally restricted to a subset
// of currency codes, optionally as a dry-run preview.
func (h *ratesHandler) updateRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req updateRatesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for updateRates", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	var result *dto.UpdateRatesResult
	var err error
	if req.DryRun {
		result, err = h.updater.PreviewRates(c.Request.Context(), req.Currencies)
	} else {
		result, err = h.updater.UpdateDatabaseRates(c.Request.Context(), req.Currencies)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNoBaseCurrency) {
			c.JSON(http.StatusConflict, gin.H{"error": "No default currency configured"})
			return
		}
		if errors.Is(err, apperrors.ErrRateSourceExhausted) {
			logger.Error("All rate endpoints failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "All rate endpoints failed"})
			return
		}
		logger.Error("Failed to update rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rates"})
		return
	}

	// Partial failure is a success response; the failed list carries the details.
	c.JSON(http.StatusOK, result)
}

// statusReport returns the aggregated operational status report.
func (h *ratesHandler) statusReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.status.GenerateStatusReport(c.Request.Context())
	if err != nil {
		logger.Error("Failed to generate status report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate status report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// integrityCheck runs the currency integrity checks and returns the report.
func (h *ratesHandler) integrityCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.integrity.ValidateCurrencyIntegrity(c.Request.Context())
	if err != nil {
		logger.Error("Failed to run integrity check", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run integrity check"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// convert converts an amount between two currency codes.
func (h *ratesHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	converted, err := h.conversion.Convert(c.Request.Context(), req.Amount, req.From, req.To)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateSourceExhausted) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "All rate endpoints failed"})
			return
		}
		logger.Error("Failed to convert", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		return
	}

	resp := dto.ConvertResponse{
		Amount:    req.Amount,
		From:      req.From,
		To:        req.To,
		Converted: converted,
	}
	if target, err := h.currency.GetCurrencyByCode(c.Request.Context(), req.To); err == nil {
		resp.Formatted = utils.FormatWithCurrencyPrecision(converted, *target)
	}

	c.JSON(http.StatusOK, resp)
}
