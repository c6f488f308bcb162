package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencyService: cs}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
	}
}

func (h *currencyHandler) createCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())

	created, err := h.currencyService.CreateCurrency(c.Request.Context(), req.ToDomain(), operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	logger.Info("Currency created", slog.String("currency_code", created.CurrencyCode))
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(*created))
}

func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(*currency))
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := make([]dto.CurrencyResponse, 0, len(currencies))
	for _, currency := range currencies {
		resp = append(resp, dto.ToCurrencyResponse(currency))
	}
	c.JSON(http.StatusOK, resp)
}
