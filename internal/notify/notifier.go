// Package notify delivers the operator email sent after a contact submission is recorded.
package notify

import (
	"context"
	"errors"
)

// Notification summarises one recorded contact submission.
type Notification struct {
	Name    string
	Email   string
	Message string
}

// Notifier delivers a Notification. Implementations must honour ctx cancellation.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// ErrDisabled is returned by NopNotifier.
var ErrDisabled = errors.New("notify: disabled")

// NopNotifier is used when no mail transport is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error {
	return ErrDisabled
}
