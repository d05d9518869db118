package handlers

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	"coldledger/internal/domain/catalogs/depositor"
	"coldledger/internal/domain/catalogs/facility"
	"coldledger/internal/infrastructure/http/v1/dto"
)

// FacilityHandler handles HTTP requests for the facility catalog.
type FacilityHandler struct {
	*BaseHandler
	service *facility.Service
}

// NewFacilityHandler creates a new facility handler.
func NewFacilityHandler(base *BaseHandler, service *facility.Service) *FacilityHandler {
	return &FacilityHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/facilities.
func (h *FacilityHandler) Create(c *gin.Context) {
	var req dto.CreateFacilityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	f, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid cost per bag").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Create(c.Request.Context(), f); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, f)
}

// Get handles GET /catalog/facilities/:id.
func (h *FacilityHandler) Get(c *gin.Context) {
	facilityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), facilityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, f)
}

// Update handles PUT /catalog/facilities/:id.
func (h *FacilityHandler) Update(c *gin.Context) {
	facilityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateFacilityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), facilityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(f); err != nil {
		h.Error(c, apperror.NewValidation("invalid cost per bag").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Update(c.Request.Context(), f); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, f)
}

// List handles GET /catalog/facilities.
func (h *FacilityHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// DepositorHandler handles HTTP requests for the depositor directory.
type DepositorHandler struct {
	*BaseHandler
	service *depositor.Service
}

// NewDepositorHandler creates a new depositor handler.
func NewDepositorHandler(base *BaseHandler, service *depositor.Service) *DepositorHandler {
	return &DepositorHandler{BaseHandler: base, service: service}
}

// Create handles POST /catalog/depositors.
// The new depositor is registered with the caller's facility.
func (h *DepositorHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDepositorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d := req.ToEntity()
	d.FacilityIDs = append(d.FacilityIDs, h.FacilityID(c))

	if err := h.service.Create(ctx, d); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, d)
}

// Get handles GET /catalog/depositors/:id.
func (h *DepositorHandler) Get(c *gin.Context) {
	depositorID, ok := h.ParseID(c)
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), depositorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Update handles PUT /catalog/depositors/:id.
func (h *DepositorHandler) Update(c *gin.Context) {
	depositorID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateDepositorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), depositorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(d)

	if err := h.service.Update(c.Request.Context(), d); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// List handles GET /catalog/depositors; scoped to the caller's facility.
func (h *DepositorHandler) List(c *gin.Context) {
	items, err := h.service.ListByFacility(c.Request.Context(), h.FacilityID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// Register handles POST /catalog/depositors/:id/register.
// Registers an existing depositor with the caller's facility.
func (h *DepositorHandler) Register(c *gin.Context) {
	depositorID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Register(c.Request.Context(), depositorID, h.FacilityID(c)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "depositor registered")
}
