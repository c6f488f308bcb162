package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/dto"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recalcHandler handles recalculation runs.
type recalcHandler struct {
	recalcService portssvc.RecalcSvc
}

func newRecalcHandler(rs portssvc.RecalcSvc) *recalcHandler {
	return &recalcHandler{recalcService: rs}
}

// registerRecalcRoutes registers the recalculation surface.
func registerRecalcRoutes(rg *gin.RouterGroup, recalcService portssvc.RecalcSvc) {
	h := newRecalcHandler(recalcService)

	recalc := rg.Group("/ledger/recalculations")
	{
		recalc.POST("", h.startRecalculation)
		recalc.POST("/base-pool-from-orders", h.recalculateBasePool)
		recalc.GET("", h.listRuns)
	}
}

func (h *recalcHandler) startRecalculation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recalculation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operator := middleware.GetOperatorFromCtx(c.Request.Context())

	var report domain.RecalculationReport
	var err error
	if req.Scope == domain.RecalcScopeAll {
		report, err = h.recalcService.RecalculateAll(c.Request.Context(), operator)
	} else {
		report, err = h.recalcService.RecalculatePool(c.Request.Context(), req.Scope, operator)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRecalcReportResponse(report))
}

func (h *recalcHandler) recalculateBasePool(c *gin.Context) {
	operator := middleware.GetOperatorFromCtx(c.Request.Context())
	report, err := h.recalcService.RecalculateBasePoolFromOrders(c.Request.Context(), operator)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRecalcReportResponse(report))
}

func (h *recalcHandler) listRuns(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	runs, err := h.recalcService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := make([]dto.RecalcRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, dto.ToRecalcRunResponse(run))
	}
	c.JSON(http.StatusOK, resp)
}
