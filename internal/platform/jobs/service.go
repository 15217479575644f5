// Package jobs runs the background side of the notification outbox: a cron
// schedule sweeps pending events, fans them out to kafka and email, and a
// daily pass purges delivered rows.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/platform/config"
	"peopledesk/internal/platform/email"
)

// Publisher is the event sink; satisfied by *events.Publisher, whose nil
// value drops messages.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type Service struct {
	cfg       config.Config
	store     notifications.StoreAPI
	publisher Publisher
	mailer    email.Mailer
	cron      *cron.Cron
}

func New(cfg config.Config, store notifications.StoreAPI, publisher Publisher, mailer email.Mailer) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		mailer:    mailer,
		cron:      cron.New(),
	}
}

// Start registers the schedules and runs them until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.OutboxPollSpec, func() {
		if err := s.DispatchOnce(ctx); err != nil {
			slog.Error("outbox dispatch failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("outbox schedule: %w", err)
	}
	if _, err := s.cron.AddFunc("@daily", func() {
		purged, err := s.store.PurgeSentOutbox(ctx, s.cfg.OutboxRetainDays)
		if err != nil {
			slog.Error("outbox retention failed", "err", err)
			return
		}
		if purged > 0 {
			slog.Info("outbox retention purged delivered events", "count", purged)
		}
	}); err != nil {
		return fmt.Errorf("retention schedule: %w", err)
	}

	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// DispatchOnce drains one batch of pending outbox events. Each event is
// delivered independently; a failure marks that event for retry with backoff
// and does not block the rest of the batch.
func (s *Service) DispatchOnce(ctx context.Context) error {
	pending, err := s.store.ListPendingOutbox(ctx, s.cfg.OutboxBatchSize)
	if err != nil {
		return err
	}
	for _, event := range pending {
		if err := s.deliver(ctx, event); err != nil {
			slog.Warn("outbox event delivery failed", "eventId", event.ID, "type", event.EventType, "err", err)
			if markErr := s.store.MarkOutboxFailed(ctx, event.ID, err.Error()); markErr != nil {
				slog.Error("mark outbox failed errored", "eventId", event.ID, "err", markErr)
			}
			continue
		}
		if err := s.store.MarkOutboxSent(ctx, event.ID); err != nil {
			slog.Error("mark outbox sent errored", "eventId", event.ID, "err", err)
		}
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, event notifications.OutboxEvent) error {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.EmployeeID, event.Payload); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	if !s.cfg.EmailEnabled {
		return nil
	}
	var payload notifications.EventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	to, err := s.store.EmployeeEmail(ctx, event.EmployeeID)
	if err != nil {
		return fmt.Errorf("email lookup: %w", err)
	}
	if to == "" {
		return nil
	}
	if err := s.mailer.Send(ctx, s.cfg.EmailFrom, to, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
