package handlers

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	"coldledger/internal/domain/documents/delivery"
	"coldledger/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler handles HTTP requests for delivery vouchers.
type DeliveryHandler struct {
	*BaseHandler
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{BaseHandler: base, service: service}
}

// Create handles POST /vouchers/deliveries.
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req dto.CreateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), h.FacilityID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Get handles GET /vouchers/deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), h.FacilityID(c), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Update handles PUT /vouchers/deliveries/:id.
// Replaces the line items: prior decrements are reversed and the new
// set applied under the same stock checks as creation.
func (h *DeliveryHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	doc, err := h.service.Edit(c.Request.Context(), h.FacilityID(c), docID, lines, req.Remarks)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /vouchers/deliveries/:id.
// Restores the decremented stock to the source receipts.
func (h *DeliveryHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.FacilityID(c), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /vouchers/deliveries.
func (h *DeliveryHandler) List(c *gin.Context) {
	var q dto.DeliveryListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter").WithDetail("error", err.Error()))
		return
	}

	result, err := h.service.List(c.Request.Context(), h.FacilityID(c), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result))
}
