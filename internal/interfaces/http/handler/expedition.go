package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appexpedition "github.com/corsair/backend/internal/application/expedition"
)

// ExpeditionHandler handles expedition lifecycle and consumption endpoints
type ExpeditionHandler struct {
	BaseHandler
	expeditionService *appexpedition.ExpeditionService
	ledgerService     *appexpedition.LedgerService
}

// NewExpeditionHandler creates a new ExpeditionHandler
func NewExpeditionHandler(
	expeditionService *appexpedition.ExpeditionService,
	ledgerService *appexpedition.LedgerService,
) *ExpeditionHandler {
	return &ExpeditionHandler{
		expeditionService: expeditionService,
		ledgerService:     ledgerService,
	}
}

// Create creates an expedition owned by the authenticated caller. The
// response carries the owner key exactly once; it is never persisted.
func (h *ExpeditionHandler) Create(c *gin.Context) {
	callerRef, err := getCallerRef(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity required")
		return
	}

	var req appexpedition.CreateExpeditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.expeditionService.Create(c.Request.Context(), callerRef, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns a paginated expedition list
func (h *ExpeditionHandler) List(c *gin.Context) {
	var filter appexpedition.ExpeditionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	expeditions, total, err := h.expeditionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, expeditions, total, filter.Page, filter.PageSize)
}

// GetByID returns one expedition. With a valid owner key the item labels
// are decrypted; without it they stay absent.
func (h *ExpeditionHandler) GetByID(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.expeditionService.GetByID(c.Request.Context(), expeditionID, getOwnerKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateDeadline changes the deadline of a non-terminal expedition
func (h *ExpeditionHandler) UpdateDeadline(c *gin.Context) {
	callerRef, err := getCallerRef(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity required")
		return
	}

	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appexpedition.UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.expeditionService.UpdateDeadline(c.Request.Context(), expeditionID, callerRef, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateStatus performs an explicit status transition
func (h *ExpeditionHandler) UpdateStatus(c *gin.Context) {
	callerRef, err := getCallerRef(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity required")
		return
	}

	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appexpedition.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.expeditionService.UpdateStatus(c.Request.Context(), expeditionID, callerRef, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CheckCompletion re-evaluates completion; idempotent and forward-only
func (h *ExpeditionHandler) CheckCompletion(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.expeditionService.CheckCompletion(c.Request.Context(), expeditionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an expedition; refused while unsettled consumptions exist
func (h *ExpeditionHandler) Delete(c *gin.Context) {
	callerRef, err := getCallerRef(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity required")
		return
	}

	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	if err := h.expeditionService.Delete(c.Request.Context(), expeditionID, callerRef); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddItem pools a catalog product in the expedition
func (h *ExpeditionHandler) AddItem(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appexpedition.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.AddItem(c.Request.Context(), expeditionID, getOwnerKey(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// RemoveItem unpools a product; refused once consumption exists
func (h *ExpeditionHandler) RemoveItem(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	productRef, err := uuid.Parse(c.Param("productRef"))
	if err != nil {
		h.BadRequest(c, "Invalid product reference format")
		return
	}

	if err := h.ledgerService.RemoveItem(c.Request.Context(), expeditionID, productRef); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Progress returns the anonymized fill progress of the expedition
func (h *ExpeditionHandler) Progress(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.ledgerService.Progress(c.Request.Context(), expeditionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordConsumption records an alias consuming pooled quantity
func (h *ExpeditionHandler) RecordConsumption(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appexpedition.RecordConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledgerService.RecordConsumption(c.Request.Context(), expeditionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}
