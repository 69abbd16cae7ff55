package manufacturing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goldpos/backend/internal/domain/manufacturing"
	"github.com/goldpos/backend/internal/domain/shared"
)

// DefaultDepletionThreshold is the remaining weight, in grams, below which
// a lot is flagged as nearly depleted.
var DefaultDepletionThreshold = decimal.RequireFromString("5.000")

// LotDepletionHandler watches weight reservations and raises a warning when
// a lot's remaining weight drops to or below the threshold, so purchasing
// can reorder before production stalls.
type LotDepletionHandler struct {
	logger    *zap.Logger
	threshold decimal.Decimal
}

// NewLotDepletionHandler creates a handler with the given threshold.
// A non-positive threshold falls back to the default.
func NewLotDepletionHandler(logger *zap.Logger, threshold decimal.Decimal) *LotDepletionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !threshold.IsPositive() {
		threshold = DefaultDepletionThreshold
	}
	return &LotDepletionHandler{
		logger:    logger,
		threshold: threshold,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LotDepletionHandler) EventTypes() []string {
	return []string{manufacturing.EventTypeWeightReserved}
}

// Handle processes a WeightReservedEvent
func (h *LotDepletionHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	reserved, ok := event.(*manufacturing.WeightReservedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			manufacturing.EventTypeWeightReserved, event.EventType())
	}

	if reserved.RemainingWeight.GreaterThan(h.threshold) {
		return nil
	}

	if reserved.RemainingWeight.IsZero() {
		h.logger.Warn("raw gold lot depleted",
			zap.String("lot_id", reserved.LotID.String()),
			zap.String("branch_id", reserved.BranchID.String()),
		)
		return nil
	}

	h.logger.Warn("raw gold lot nearly depleted",
		zap.String("lot_id", reserved.LotID.String()),
		zap.String("branch_id", reserved.BranchID.String()),
		zap.String("remaining_weight", reserved.RemainingWeight.StringFixed(3)),
		zap.String("threshold", h.threshold.StringFixed(3)),
	)
	return nil
}

var _ shared.EventHandler = (*LotDepletionHandler)(nil)
