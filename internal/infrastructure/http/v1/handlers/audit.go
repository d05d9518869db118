package handlers

import (
	"github.com/gin-gonic/gin"

	"coldledger/internal/core/apperror"
	"coldledger/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the voucher change history.
type AuditHandler struct {
	*BaseHandler
	recorder *postgres.AuditRecorder
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, recorder *postgres.AuditRecorder) *AuditHandler {
	return &AuditHandler{BaseHandler: base, recorder: recorder}
}

// History handles GET /audit/:entityType/:id.
func (h *AuditHandler) History(c *gin.Context) {
	entityType := c.Param("entityType")
	if entityType != "receipt" && entityType != "delivery" {
		h.Error(c, apperror.NewValidation("unknown entity type").WithDetail("entityType", entityType))
		return
	}

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.recorder.History(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"entries": entries})
}
