package handlers

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles HTTP requests for receipt vouchers.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /vouchers/receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid depositor id").WithDetail("error", err.Error()))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), h.FacilityID(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Get handles GET /vouchers/receipts/:id.
func (h *ReceiptHandler) Get(c *gin.Context) {
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

// Update handles PUT /vouchers/receipts/:id.
func (h *ReceiptHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Edit(c.Request.Context(), h.FacilityID(c), docID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /vouchers/receipts/:id.
// Administrator only; enforced again in the service layer.
func (h *ReceiptHandler) Delete(c *gin.Context) {
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

// List handles GET /vouchers/receipts.
func (h *ReceiptHandler) List(c *gin.Context) {
	var q dto.ReceiptListQuery
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
