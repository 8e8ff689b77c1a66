package expedition

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/corsair/backend/internal/domain/expedition"
	"github.com/corsair/backend/internal/domain/shared"
)

// ConsumptionRecordedHandler re-evaluates expedition completion after every
// consumption, so a fully consumed pool transitions to completed without
// waiting for the next deadline sweep. The completion check is idempotent
// and forward-only, so redelivered events are harmless.
type ConsumptionRecordedHandler struct {
	expeditionService *ExpeditionService
	logger            *zap.Logger
}

// NewConsumptionRecordedHandler creates a new handler for consumption recorded events
func NewConsumptionRecordedHandler(
	expeditionService *ExpeditionService,
	logger *zap.Logger,
) *ConsumptionRecordedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsumptionRecordedHandler{
		expeditionService: expeditionService,
		logger:            logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ConsumptionRecordedHandler) EventTypes() []string {
	return []string{expedition.EventTypeConsumptionRecorded}
}

// Handle runs the completion check for the expedition the consumption belongs to
func (h *ConsumptionRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*expedition.ConsumptionRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", expedition.EventTypeConsumptionRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			expedition.EventTypeConsumptionRecorded, event.EventType())
	}

	resp, err := h.expeditionService.CheckCompletion(ctx, recorded.ExpeditionID)
	if err != nil {
		h.logger.Error("completion check after consumption failed",
			zap.String("expedition_id", recorded.ExpeditionID.String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Debug("completion check ran after consumption",
		zap.String("expedition_id", recorded.ExpeditionID.String()),
		zap.String("alias", recorded.Alias),
		zap.String("status", resp.Status),
	)
	return nil
}
