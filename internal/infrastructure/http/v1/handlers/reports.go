package handlers

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	"coldledger/internal/core/id"
	"coldledger/internal/domain/reports"
	"coldledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for the stock aggregator views.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// depositorScope parses the optional depositorId query parameter.
func (h *ReportsHandler) depositorScope(c *gin.Context) (*id.ID, bool) {
	raw := c.Query("depositorId")
	if raw == "" {
		return nil, true
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid depositor id").WithDetail("depositorId", raw))
		return nil, false
	}
	return &parsed, true
}

// StockSummary handles GET /reports/stock-summary.
// Aggregates receipt and delivery lines by variety and size; with
// depositorId set the view narrows to that depositor.
func (h *ReportsHandler) StockSummary(c *gin.Context) {
	depositorID, ok := h.depositorScope(c)
	if !ok {
		return
	}

	summaries, err := h.service.Summarize(c.Request.Context(), h.FacilityID(c), depositorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"varieties": summaries})
}

// FacilitySummary handles GET /reports/facility-summary.
func (h *ReportsHandler) FacilitySummary(c *gin.Context) {
	summary, err := h.service.FacilitySummary(c.Request.Context(), h.FacilityID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}

// TopDepositors handles GET /reports/top-depositors.
func (h *ReportsHandler) TopDepositors(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 5)

	ranks, err := h.service.TopDepositors(c.Request.Context(), h.FacilityID(c), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"depositors": ranks})
}

// DayBook handles GET /reports/day-book.
// With depositorId set the stream narrows to that depositor's vouchers.
func (h *ReportsHandler) DayBook(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	depositorID, ok := h.depositorScope(c)
	if !ok {
		return
	}

	result, err := h.service.DayBook(c.Request.Context(), h.FacilityID(c), depositorID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}

// VarietiesAvailable handles GET /reports/varieties-available.
// Lists varieties with remaining stock for a depositor, for building
// delivery requests.
func (h *ReportsHandler) VarietiesAvailable(c *gin.Context) {
	depositorID, ok := h.depositorScope(c)
	if !ok {
		return
	}
	if depositorID == nil {
		h.Error(c, apperror.NewValidation("depositorId is required"))
		return
	}

	varieties, err := h.service.VarietiesAvailable(c.Request.Context(), h.FacilityID(c), *depositorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"varieties": varieties})
}
