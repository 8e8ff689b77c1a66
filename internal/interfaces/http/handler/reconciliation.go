package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreconciliation "github.com/corsair/backend/internal/application/reconciliation"
	"github.com/corsair/backend/internal/interfaces/http/dto"
)

// ReconciliationHandler handles owner-gated debt reconciliation endpoints
type ReconciliationHandler struct {
	BaseHandler
	bridgeService *appreconciliation.BridgeService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(bridgeService *appreconciliation.BridgeService) *ReconciliationHandler {
	return &ReconciliationHandler{
		bridgeService: bridgeService,
	}
}

// requireOwnerKey rejects requests lacking the X-Owner-Key header. The
// reconciliation endpoints cannot run without key material, so they fail
// fast instead of surfacing a decrypt error deeper in.
func (h *ReconciliationHandler) requireOwnerKey(c *gin.Context) ([]byte, bool) {
	key := getOwnerKey(c)
	if key == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeMissingOwnerKey,
			"X-Owner-Key header is required for this operation")
		return nil, false
	}
	return key, true
}

// Reconcile converts all pending alias debt into real-identity sale lines
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	key, ok := h.requireOwnerKey(c)
	if !ok {
		return
	}

	report, err := h.bridgeService.SyncExpeditionDebt(c.Request.Context(), expeditionID, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// RecordPayment records money received from an alias and settles pending
// consumptions oldest-first
func (h *ReconciliationHandler) RecordPayment(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	key, ok := h.requireOwnerKey(c)
	if !ok {
		return
	}

	var req appreconciliation.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.bridgeService.RecordPayment(c.Request.Context(), expeditionID, key, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// FinancialSummary returns anonymized expedition totals without decryption
func (h *ReconciliationHandler) FinancialSummary(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.bridgeService.FinancialSummary(c.Request.Context(), expeditionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
