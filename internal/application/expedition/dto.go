package expedition

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corsair/backend/internal/domain/expedition"
)

// ==================== Expedition DTOs ====================

// CreateExpeditionRequest represents a request to create an expedition
type CreateExpeditionRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=200"`
	Deadline *time.Time `json:"deadline"`
}

// CreateExpeditionResponse carries the new expedition together with the
// owner key. The key is shown exactly once; only its fingerprint survives.
type CreateExpeditionResponse struct {
	Expedition ExpeditionResponse `json:"expedition"`
	OwnerKey   string             `json:"owner_key"`
}

// UpdateDeadlineRequest represents a request to change the deadline
type UpdateDeadlineRequest struct {
	Deadline *time.Time `json:"deadline"`
}

// UpdateStatusRequest represents an explicit status transition request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ExpeditionListFilter represents filter options for the expedition list
type ExpeditionListFilter struct {
	Search   string  `form:"search"`
	Status   *string `form:"status"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpeditionResponse represents an expedition in API responses
type ExpeditionResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	OwnerRef    uuid.UUID      `json:"owner_ref"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	Status      string         `json:"status"`
	Items       []ItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	FailedAt    *time.Time     `json:"failed_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
}

// ==================== Item DTOs ====================

// AddItemRequest represents a request to pool a product in an expedition
type AddItemRequest struct {
	ProductRef       uuid.UUID        `json:"product_ref" binding:"required"`
	QuantityRequired decimal.Decimal  `json:"quantity_required" binding:"required"`
	TargetUnitPrice  *decimal.Decimal `json:"target_unit_price"`
}

// ItemResponse represents an expedition item in API responses.
// Label is the decrypted product display name, present only when the owner
// key was supplied.
type ItemResponse struct {
	ID               uuid.UUID        `json:"id"`
	ExpeditionID     uuid.UUID        `json:"expedition_id"`
	ProductRef       uuid.UUID        `json:"product_ref"`
	Label            *string          `json:"label,omitempty"`
	QuantityRequired decimal.Decimal  `json:"quantity_required"`
	QuantityConsumed decimal.Decimal  `json:"quantity_consumed"`
	Remaining        decimal.Decimal  `json:"remaining"`
	TargetUnitPrice  *decimal.Decimal `json:"target_unit_price,omitempty"`
}

// ==================== Consumption DTOs ====================

// RecordConsumptionRequest represents an alias consuming pooled quantity
type RecordConsumptionRequest struct {
	Alias      string           `json:"alias" binding:"required"`
	ProductRef uuid.UUID        `json:"product_ref" binding:"required"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

// ConsumptionResponse represents a consumption record in API responses
type ConsumptionResponse struct {
	ID                        uuid.UUID       `json:"id"`
	ExpeditionItemID          uuid.UUID       `json:"expedition_item_id"`
	Alias                     string          `json:"alias"`
	Quantity                  decimal.Decimal `json:"quantity"`
	UnitPrice                 decimal.Decimal `json:"unit_price"`
	Amount                    decimal.Decimal `json:"amount"`
	PaymentStatus             string          `json:"payment_status"`
	ExternalReconciliationRef *string         `json:"external_reconciliation_ref,omitempty"`
	RecordedAt                time.Time       `json:"recorded_at"`
}

// ==================== Progress and debt DTOs ====================

// ItemProgress represents the fill level of one item
type ItemProgress struct {
	ItemID           uuid.UUID       `json:"item_id"`
	ProductRef       uuid.UUID       `json:"product_ref"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	QuantityConsumed decimal.Decimal `json:"quantity_consumed"`
	Percent          decimal.Decimal `json:"percent"`
}

// ProgressResponse represents overall expedition fill progress
type ProgressResponse struct {
	ExpeditionID   uuid.UUID       `json:"expedition_id"`
	Status         string          `json:"status"`
	Items          []ItemProgress  `json:"items"`
	OverallPercent decimal.Decimal `json:"overall_percent"`
}

// DebtResponse represents the anonymized debt of an alias. TotalPaid comes
// from recorded payments, so a partial payment shows up here while the
// consumption records it was applied to stay pending.
type DebtResponse struct {
	ExpeditionID uuid.UUID             `json:"expedition_id"`
	Alias        string                `json:"alias"`
	Records      []ConsumptionResponse `json:"records"`
	TotalOwed    decimal.Decimal       `json:"total_owed"`
	TotalPaid    decimal.Decimal       `json:"total_paid"`
	TotalPending decimal.Decimal       `json:"total_pending"`
}

// ==================== Converters ====================

// ToExpeditionResponse converts an expedition to its response representation
func ToExpeditionResponse(e *expedition.Expedition) ExpeditionResponse {
	return ExpeditionResponse{
		ID:          e.ID,
		Name:        e.Name,
		OwnerRef:    e.OwnerRef,
		Deadline:    e.Deadline,
		Status:      e.Status.String(),
		CreatedAt:   e.CreatedAt,
		CompletedAt: e.CompletedAt,
		FailedAt:    e.FailedAt,
		CancelledAt: e.CancelledAt,
	}
}

// ToItemResponse converts an item to its response representation
func ToItemResponse(i *expedition.Item) ItemResponse {
	return ItemResponse{
		ID:               i.ID,
		ExpeditionID:     i.ExpeditionID,
		ProductRef:       i.ProductRef,
		QuantityRequired: i.QuantityRequired,
		QuantityConsumed: i.QuantityConsumed,
		Remaining:        i.Remaining(),
		TargetUnitPrice:  i.TargetUnitPrice,
	}
}

// ToConsumptionResponse converts a consumption record to its response representation
func ToConsumptionResponse(c *expedition.Consumption) ConsumptionResponse {
	return ConsumptionResponse{
		ID:                        c.ID,
		ExpeditionItemID:          c.ExpeditionItemID,
		Alias:                     c.Alias,
		Quantity:                  c.Quantity,
		UnitPrice:                 c.UnitPrice,
		Amount:                    c.Amount(),
		PaymentStatus:             string(c.PaymentStatus),
		ExternalReconciliationRef: c.ExternalReconciliationRef,
		RecordedAt:                c.RecordedAt,
	}
}
