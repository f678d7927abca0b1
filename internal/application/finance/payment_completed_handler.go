package finance

import (
	"context"
	"fmt"

	"github.com/kahawa/backend/internal/domain/finance"
	"github.com/kahawa/backend/internal/domain/procurement"
	"github.com/kahawa/backend/internal/domain/shared"
	"github.com/kahawa/backend/internal/infrastructure/notification"
	"go.uber.org/zap"
)

// PaymentCompletedHandler notifies the supplier by SMS when a payment lands.
// Delivery rides on the outbox, so the handler must be idempotent: the
// idempotency store drops redelivered events.
type PaymentCompletedHandler struct {
	supplierRepo procurement.SupplierRepository
	notifier     notification.Notifier
	idempotency  shared.IdempotencyStore
	logger       *zap.Logger
}

// NewPaymentCompletedHandler creates a new PaymentCompletedHandler
func NewPaymentCompletedHandler(
	supplierRepo procurement.SupplierRepository,
	notifier notification.Notifier,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *PaymentCompletedHandler {
	return &PaymentCompletedHandler{
		supplierRepo: supplierRepo,
		notifier:     notifier,
		idempotency:  idempotency,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *PaymentCompletedHandler) EventTypes() []string {
	return []string{"PaymentCompleted"}
}

// Handle sends the payment SMS exactly once per event
func (h *PaymentCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*finance.PaymentCompletedEvent)
	if !ok {
		return nil
	}

	key := fmt.Sprintf("payment-sms:%s", e.EventID())
	fresh, err := h.idempotency.MarkProcessed(ctx, key, shared.DefaultIdempotencyConfig().TTL)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !fresh {
		h.logger.Debug("Payment SMS already sent, skipping",
			zap.String("event_id", e.EventID().String()))
		return nil
	}

	supplier, err := h.supplierRepo.FindByID(ctx, e.SupplierID)
	if err != nil {
		return fmt.Errorf("failed to find supplier: %w", err)
	}
	if supplier == nil || !supplier.CanReceiveSMS() {
		h.logger.Info("Supplier cannot receive SMS, skipping notification",
			zap.String("supplier_id", e.SupplierID.String()))
		return nil
	}

	message := fmt.Sprintf(
		"Payment %s for batch %s: gross UGX %s, advances recovered UGX %s, paid UGX %s.",
		e.PaymentNumber, e.BatchNumber,
		e.GrossAmount.StringFixed(0), e.AdvanceRecovered.StringFixed(0), e.NetAmount.StringFixed(0),
	)

	if err := h.notifier.SendSMS(ctx, supplier.Phone, message); err != nil {
		return fmt.Errorf("failed to send payment SMS: %w", err)
	}

	h.logger.Info("Payment SMS sent",
		zap.String("payment_number", e.PaymentNumber),
		zap.String("supplier", e.SupplierName))

	return nil
}
