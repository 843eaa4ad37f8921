package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mquernel/portfolio/backend/internal/model"
)

// NotificationOutcome records what happened to the operator email after a
// submission was committed. It never turns a recorded submission into a failure.
type NotificationOutcome string

const (
	NotificationSent     NotificationOutcome = "sent"
	NotificationFailed   NotificationOutcome = "failed"
	NotificationDisabled NotificationOutcome = "disabled"
)

// ContactResult is the outcome of a recorded submission.
type ContactResult struct {
	SenderID     int64
	MessageID    int64
	Notification NotificationOutcome
}

// Notified reports whether the operator email went out.
func (r *ContactResult) Notified() bool {
	return r.Notification == NotificationSent
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates and records one submission, then notifies the operator.
	// Failures are returned as *Error; a failed notification is reported in
	// the result instead.
	Submit(ctx context.Context, sub model.Submission) (*ContactResult, error)

	// List returns recorded messages according to the given options.
	List(ctx context.Context, opts model.MessageListOptions) ([]*model.MessageView, error)
}

// DecodeSubmission parses a JSON contact payload. Anything that is not a single
// JSON object with string fields fails with KindMalformedRequest.
func DecodeSubmission(r io.Reader) (model.Submission, error) {
	dec := json.NewDecoder(r)
	var sub *model.Submission
	if err := dec.Decode(&sub); err != nil {
		return model.Submission{}, newError(KindMalformedRequest, "invalid JSON payload", err)
	}
	if sub == nil {
		return model.Submission{}, newError(KindMalformedRequest, "invalid JSON payload", nil)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.Submission{}, newError(KindMalformedRequest, "unexpected data after JSON object", nil)
	}
	return *sub, nil
}
