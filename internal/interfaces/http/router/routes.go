package router

import (
	"github.com/corsair/backend/internal/interfaces/http/handler"
)

// AuthRoutes wires owner registration, login and the token lifecycle.
// Register, login and refresh are reachable without a token; logout needs
// the token it revokes.
func AuthRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/register", h.Register).
		POST("/login", h.Login).
		POST("/refresh", h.Refresh).
		POST("/logout", h.Logout)
	return g
}

// ExpeditionRoutes wires the expedition lifecycle, item pooling and
// consumption endpoints
func ExpeditionRoutes(h *handler.ExpeditionHandler) *DomainGroup {
	g := NewDomainGroup("expeditions", "/expeditions")
	g.POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.GetByID).
		PATCH("/:id/deadline", h.UpdateDeadline).
		POST("/:id/status", h.UpdateStatus).
		POST("/:id/check-completion", h.CheckCompletion).
		DELETE("/:id", h.Delete).
		POST("/:id/items", h.AddItem).
		DELETE("/:id/items/:productRef", h.RemoveItem).
		GET("/:id/progress", h.Progress).
		POST("/:id/consumptions", h.RecordConsumption)
	return g
}

// VaultRoutes wires alias enrollment, identity listing, per-alias debt and
// encrypted note endpoints. They share the /expeditions prefix because every
// vault record belongs to one expedition.
func VaultRoutes(h *handler.VaultHandler) *DomainGroup {
	g := NewDomainGroup("vault", "/expeditions")
	g.POST("/:id/pirates", h.EnrollPirate).
		GET("/:id/pirates", h.ListPirates).
		GET("/:id/pirates/:alias/debt", h.Debt).
		POST("/:id/notes", h.AttachNote).
		GET("/:id/notes", h.ListNotes)
	return g
}

// ReconciliationRoutes wires the owner-gated reconciliation, payment and
// financial summary endpoints
func ReconciliationRoutes(h *handler.ReconciliationHandler) *DomainGroup {
	g := NewDomainGroup("reconciliation", "/expeditions")
	g.POST("/:id/reconcile", h.Reconcile).
		POST("/:id/payments", h.RecordPayment).
		GET("/:id/financial-summary", h.FinancialSummary)
	return g
}
