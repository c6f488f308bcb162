package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests against the three ledgers.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers the ledger surface.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/balances/:ownerKind/:ownerID/:currency", h.getBalance)
		ledger.GET("/pools", h.listPoolBalances)
		ledger.GET("/entries/:ownerKind/:ownerID/:currency", h.listEntries)

		ledger.POST("/orders/preview", h.previewOrder)
		ledger.POST("/orders", h.applyOrder)
		ledger.DELETE("/orders/:id", h.deleteOrder)

		ledger.POST("/documents", h.applyDocument)
		ledger.DELETE("/documents/:id", h.reverseDocument)

		ledger.POST("/manual-entries", h.createManualEntry)
		ledger.DELETE("/manual-entries/:ownerKind/:id", h.deleteManualEntry)
	}
}

// respondServiceError translates service errors to HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRecalcInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "ledger is locked by a running recalculation, retry later"})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// accountKeyFromParams parses the owner-kind/owner-id/currency triple.
func accountKeyFromParams(c *gin.Context) (domain.AccountKey, bool) {
	kind := domain.OwnerKind(c.Param("ownerKind"))
	if !domain.ValidOwnerKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerKind must be CUSTOMER, BANK_ACCOUNT or CURRENCY_POOL"})
		return domain.AccountKey{}, false
	}
	ownerID, err := strconv.ParseInt(c.Param("ownerID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerID must be an integer"})
		return domain.AccountKey{}, false
	}
	currency := c.Param("currency")
	if !domain.IsValidCurrencyCode(currency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed currency code"})
		return domain.AccountKey{}, false
	}
	return domain.AccountKey{
		OwnerKind:    kind,
		OwnerID:      ownerID,
		CurrencyCode: domain.NormalizeCurrencyCode(currency),
	}, true
}

func (h *ledgerHandler) getBalance(c *gin.Context) {
	key, ok := accountKeyFromParams(c)
	if !ok {
		return
	}
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), key)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{
		OwnerKind:    key.OwnerKind,
		OwnerID:      key.OwnerID,
		CurrencyCode: key.CurrencyCode,
		Balance:      balance,
	})
}

func (h *ledgerHandler) listPoolBalances(c *gin.Context) {
	pools, err := h.ledgerService.GetAllPoolBalances(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := make([]dto.PoolBalanceResponse, 0, len(pools))
	for _, p := range pools {
		resp = append(resp, dto.PoolBalanceResponse{
			CurrencyCode: p.CurrencyCode,
			Balance:      p.Balance,
			TotalBought:  p.TotalBought,
			TotalSold:    p.TotalSold,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ledgerHandler) listEntries(c *gin.Context) {
	key, ok := accountKeyFromParams(c)
	if !ok {
		return
	}
	params := dto.ListEntriesParams{}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}
	resp, err := h.ledgerService.ListEntries(c.Request.Context(), key, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ledgerHandler) previewOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for order preview", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	report, err := h.ledgerService.PreviewOrderEffects(c.Request.Context(), req.ToDomain(operator))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ledgerHandler) applyOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for order apply", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.ProcessOrderCreation(c.Request.Context(), req.ToDomain(operator), operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ledgerHandler) deleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be an integer"})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.DeleteOrder(c.Request.Context(), orderID, operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ledgerHandler) applyDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for document apply", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.ProcessAccountingDocument(c.Request.Context(), req.ToDomain(operator), operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ledgerHandler) reverseDocument(c *gin.Context) {
	documentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document id must be an integer"})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.ReverseDocumentVerification(c.Request.Context(), documentID, operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ledgerHandler) createManualEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for manual entry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.CreateManualEntry(c.Request.Context(), req.ToDomain(operator))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ledgerHandler) deleteManualEntry(c *gin.Context) {
	kind := domain.OwnerKind(c.Param("ownerKind"))
	if !domain.ValidOwnerKind(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ownerKind must be CUSTOMER, BANK_ACCOUNT or CURRENCY_POOL"})
		return
	}
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry id must be an integer"})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	resp, err := h.ledgerService.DeleteManualEntry(c.Request.Context(), kind, entryID, operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
