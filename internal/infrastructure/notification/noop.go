package notification

import (
	"context"

	"go.uber.org/zap"
)

// NoopNotifier logs messages instead of sending them. Used in development
// and when no gateway is configured.
type NoopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a new NoopNotifier
func NewNoopNotifier(logger *zap.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

// SendSMS logs the message and succeeds
func (n *NoopNotifier) SendSMS(_ context.Context, phone, message string) error {
	n.logger.Info("SMS suppressed (no gateway configured)",
		zap.String("to", phone),
		zap.String("message", message))
	return nil
}
