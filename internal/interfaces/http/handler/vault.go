package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appexpedition "github.com/corsair/backend/internal/application/expedition"
	appvault "github.com/corsair/backend/internal/application/vault"
)

// VaultHandler handles alias enrollment, identity access and encrypted notes
type VaultHandler struct {
	BaseHandler
	vaultService  *appvault.VaultService
	ledgerService *appexpedition.LedgerService
}

// NewVaultHandler creates a new VaultHandler
func NewVaultHandler(
	vaultService *appvault.VaultService,
	ledgerService *appexpedition.LedgerService,
) *VaultHandler {
	return &VaultHandler{
		vaultService:  vaultService,
		ledgerService: ledgerService,
	}
}

// EnrollPirate assigns a deterministic alias to a participant and stores the
// identity encrypted under the expedition owner key
func (h *VaultHandler) EnrollPirate(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appvault.EnrollPirateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vaultService.EnrollPirate(c.Request.Context(), expeditionID, getOwnerKey(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListPirates lists alias records. Real identities appear only when a valid
// owner key accompanies the request; without it they are absent, not masked.
func (h *VaultHandler) ListPirates(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.vaultService.ListAliases(c.Request.Context(), expeditionID, getOwnerKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Debt returns the anonymized outstanding position of one alias
func (h *VaultHandler) Debt(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	alias := c.Param("alias")
	if alias == "" {
		h.BadRequest(c, "Alias is required")
		return
	}

	resp, err := h.ledgerService.DebtForAlias(c.Request.Context(), expeditionID, alias)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AttachNote stores a free-text note encrypted under the owner key
func (h *VaultHandler) AttachNote(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	var req appvault.AttachNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.vaultService.AttachNote(c.Request.Context(), expeditionID, getOwnerKey(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListNotes lists notes; bodies decrypt only with a valid owner key
func (h *VaultHandler) ListNotes(c *gin.Context) {
	expeditionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expedition ID format")
		return
	}

	resp, err := h.vaultService.ListNotes(c.Request.Context(), expeditionID, getOwnerKey(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
