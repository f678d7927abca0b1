// Package notification sends SMS messages to suppliers through an external
// gateway.
package notification

import "context"

// Notifier sends notifications to suppliers
type Notifier interface {
	// SendSMS sends a text message to the given phone number
	SendSMS(ctx context.Context, phone, message string) error
}
