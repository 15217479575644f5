package notifications

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoreAPI is the slice of Store the service and the dispatcher need; the
// dispatcher in platform/jobs shares it.
type StoreAPI interface {
	CreateWithEvent(ctx context.Context, n Notification, e OutboxEvent) error
	ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, employeeID, notificationID string) error
	EmployeeEmail(ctx context.Context, employeeID string) (string, error)
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id string) error
	MarkOutboxFailed(ctx context.Context, id, reason string) error
	PurgeSentOutbox(ctx context.Context, cutoffDays int) (int64, error)
}

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// EventPayload is what the dispatcher delivers downstream (kafka, email).
type EventPayload struct {
	NotificationID string    `json:"notificationId"`
	EmployeeID     string    `json:"employeeId"`
	Type           string    `json:"type"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Notify records an in-app notification and enqueues a matching outbox event
// in one store transaction. It satisfies the leave domain's Notifier
// interface; delivery itself happens asynchronously, at least once, via the
// outbox dispatcher.
func (s *Service) Notify(ctx context.Context, toEmployeeID, subject, body string) error {
	now := time.Now()
	n := Notification{
		ID:         uuid.NewString(),
		EmployeeID: toEmployeeID,
		Type:       typeFromSubject(subject),
		Subject:    subject,
		Body:       body,
		CreatedAt:  now,
	}

	payload, err := json.Marshal(EventPayload{
		NotificationID: n.ID,
		EmployeeID:     n.EmployeeID,
		Type:           n.Type,
		Subject:        n.Subject,
		Body:           n.Body,
		CreatedAt:      now,
	})
	if err != nil {
		return err
	}
	return s.store.CreateWithEvent(ctx, n, OutboxEvent{
		ID:         uuid.NewString(),
		EmployeeID: n.EmployeeID,
		EventType:  n.Type,
		Payload:    payload,
		Status:     OutboxStatusPending,
		CreatedAt:  now,
	})
}

func (s *Service) List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, employeeID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	return s.store.MarkRead(ctx, employeeID, notificationID)
}

func typeFromSubject(subject string) string {
	lower := strings.ToLower(subject)
	switch {
	case strings.Contains(lower, "submitted"):
		return TypeLeaveSubmitted
	case strings.Contains(lower, "approved"):
		return TypeLeaveApproved
	case strings.Contains(lower, "rejected"):
		return TypeLeaveRejected
	}
	return TypeGeneric
}
