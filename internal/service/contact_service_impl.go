package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mquernel/portfolio/backend/internal/metrics"
	"github.com/mquernel/portfolio/backend/internal/model"
	"github.com/mquernel/portfolio/backend/internal/notify"
	"github.com/mquernel/portfolio/backend/internal/repository"
)

// DefaultNotifyTimeout bounds the operator email when no timeout is configured.
const DefaultNotifyTimeout = 10 * time.Second

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo          repository.SubmissionRepository
	notifier      notify.Notifier
	notifyTimeout time.Duration
	validate      *validator.Validate
	now           func() time.Time
}

// NewContactService creates a ContactService backed by the given repository and notifier.
func NewContactService(repo repository.SubmissionRepository, notifier notify.Notifier, notifyTimeout time.Duration) ContactService {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &contactServiceImpl{
		repo:          repo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		now:           time.Now,
	}
}

// Submit runs validation, sender upsert, message persistence and notification
// in that order. The first failing step wins.
func (s *contactServiceImpl) Submit(ctx context.Context, sub model.Submission) (result *ContactResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("contact submission panicked", "panic", fmt.Sprint(r))
			result, err = nil, newError(KindInternal, "unexpected failure while processing the message", nil)
		}
		observe(result, err)
	}()

	name := strings.TrimSpace(sub.Name)
	email := strings.TrimSpace(sub.Email)
	if name == "" || email == "" || strings.TrimSpace(sub.Message) == "" {
		return nil, newError(KindMissingField, "name, email and message are required", nil)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, newError(KindInvalidEmail, "invalid email address", err)
	}

	sender, err := s.repo.FindSenderByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		sender = &model.Sender{Name: name, Email: email}
		if err := s.validate.Struct(sender); err != nil {
			return nil, newError(KindInvalidSenderData, "invalid sender data", err)
		}
	case err != nil:
		slog.Error("sender lookup failed", "error", err)
		return nil, newError(KindPersistence, "could not load sender", err)
	case sender.Name != name:
		sender.Name = name
		if err := s.validate.Struct(sender); err != nil {
			return nil, newError(KindInvalidSenderData, "invalid sender data", err)
		}
	}

	msg := &model.Message{Content: sub.Message, CreatedAt: s.now().UTC()}
	if err := s.validate.Struct(msg); err != nil {
		return nil, newError(KindInvalidMessageData, "invalid message data", err)
	}

	if err := s.repo.RecordSubmission(ctx, sender, msg); err != nil {
		slog.Error("recording contact submission failed", "error", err)
		return nil, newError(KindPersistence, "could not save the message", err)
	}

	outcome := s.notify(ctx, notify.Notification{Name: name, Email: email, Message: sub.Message})
	slog.Info("contact submission recorded",
		"sender_id", sender.ID,
		"message_id", msg.ID,
		"notification", string(outcome),
	)
	return &ContactResult{SenderID: sender.ID, MessageID: msg.ID, Notification: outcome}, nil
}

// notify runs after commit. The request context may already be cancelled by a
// departed client, so only its values are kept.
func (s *contactServiceImpl) notify(ctx context.Context, n notify.Notification) NotificationOutcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, n)
	var outcome NotificationOutcome
	switch {
	case err == nil:
		outcome = NotificationSent
	case errors.Is(err, notify.ErrDisabled):
		outcome = NotificationDisabled
	default:
		slog.Warn("contact notification failed", "error", err)
		outcome = NotificationFailed
	}
	metrics.ContactNotifications.WithLabelValues(string(outcome)).Inc()
	return outcome
}

// List returns recorded messages according to the given pagination options.
func (s *contactServiceImpl) List(ctx context.Context, opts model.MessageListOptions) ([]*model.MessageView, error) {
	return s.repo.ListMessages(ctx, opts)
}

func observe(result *ContactResult, err error) {
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues(string(KindOf(err))).Inc()
		return
	}
	if result != nil {
		metrics.ContactSubmissions.WithLabelValues("recorded").Inc()
	}
}
