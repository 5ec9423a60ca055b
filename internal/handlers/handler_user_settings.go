package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/finbook/currency_sync/internal/apperrors"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userSettingsHandler handles HTTP requests for per-user currency preferences.
type userSettingsHandler struct {
	userSettingsService portssvc.UserSettingsSvc
}

// registerUserSettingsRoutes registers routes for user currency preferences.
func registerUserSettingsRoutes(rg *gin.RouterGroup, userSettingsService portssvc.UserSettingsSvc) {
	h := &userSettingsHandler{userSettingsService: userSettingsService}

	users := rg.Group("/users/:userID")
	{
		users.GET("/currency", h.getUserCurrency)
		users.PUT("/currency", h.setUserCurrency)
	}
}

// getUserCurrency returns the currency preference stored for a user.
func (h *userSettingsHandler) getUserCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	code, err := h.userSettingsService.GetUserCurrency(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No currency preference for user '%s'", userID)})
			return
		}
		logger.Error("Failed to get user currency", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user currency"})
		return
	}

	c.JSON(http.StatusOK, dto.UserCurrencyResponse{UserID: userID, Code: code})
}

// setUserCurrency stores the currency preference for a user.
func (h *userSettingsHandler) setUserCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	var req dto.SetUserCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setUserCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.userSettingsService.SetUserCurrency(c.Request.Context(), userID, req.Code); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to set user currency", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set user currency"})
		return
	}

	logger.Info("User currency preference saved", slog.String("user_id", userID), slog.String("code", req.Code))
	c.JSON(http.StatusOK, dto.UserCurrencyResponse{UserID: userID, Code: req.Code})
}
