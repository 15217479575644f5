package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/platform/config"
)

type fakeOutboxStore struct {
	events []notifications.OutboxEvent
	emails map[string]string

	sent   []string
	failed map[string]string
}

func newFakeOutboxStore() *fakeOutboxStore {
	return &fakeOutboxStore{
		emails: map[string]string{},
		failed: map[string]string{},
	}
}

func (f *fakeOutboxStore) CreateWithEvent(ctx context.Context, n notifications.Notification, e notifications.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutboxStore) ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]notifications.Notification, error) {
	return nil, nil
}

func (f *fakeOutboxStore) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	return nil
}

func (f *fakeOutboxStore) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	return f.emails[employeeID], nil
}

func (f *fakeOutboxStore) ListPendingOutbox(ctx context.Context, limit int) ([]notifications.OutboxEvent, error) {
	var out []notifications.OutboxEvent
	for _, e := range f.events {
		if e.Status == notifications.OutboxStatusPending {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutboxStore) MarkOutboxSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Status = notifications.OutboxStatusSent
		}
	}
	return nil
}

func (f *fakeOutboxStore) MarkOutboxFailed(ctx context.Context, id, reason string) error {
	f.failed[id] = reason
	return nil
}

func (f *fakeOutboxStore) PurgeSentOutbox(ctx context.Context, cutoffDays int) (int64, error) {
	return 0, nil
}

type fakePublisher struct {
	published []string
	fail      bool
}

func (f *fakePublisher) Publish(ctx context.Context, key string, payload []byte) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, key)
	return nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(ctx context.Context, from, to, subject, body string) error {
	f.sent = append(f.sent, to)
	return nil
}

func pendingEvent(id, employeeID string) notifications.OutboxEvent {
	payload, _ := json.Marshal(notifications.EventPayload{
		NotificationID: "n-" + id,
		EmployeeID:     employeeID,
		Type:           notifications.TypeLeaveApproved,
		Subject:        "Leave request approved",
		Body:           "Your leave request was approved.",
		CreatedAt:      time.Now(),
	})
	return notifications.OutboxEvent{
		ID:         id,
		EmployeeID: employeeID,
		EventType:  notifications.TypeLeaveApproved,
		Payload:    payload,
		Status:     notifications.OutboxStatusPending,
	}
}

func TestDispatchOnceMarksSent(t *testing.T) {
	store := newFakeOutboxStore()
	store.events = append(store.events, pendingEvent("e1", "emp-1"), pendingEvent("e2", "emp-2"))
	store.emails["emp-1"] = "one@example.com"
	store.emails["emp-2"] = "two@example.com"

	publisher := &fakePublisher{}
	mailer := &fakeMailer{}
	cfg := config.Config{EmailEnabled: true, EmailFrom: "no-reply@example.com", OutboxBatchSize: 10}

	svc := New(cfg, store, publisher, mailer)
	require.NoError(t, svc.DispatchOnce(context.Background()))

	assert.ElementsMatch(t, []string{"e1", "e2"}, store.sent)
	assert.Empty(t, store.failed)
	assert.ElementsMatch(t, []string{"emp-1", "emp-2"}, publisher.published)
	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, mailer.sent)
}

func TestDispatchOncePublishFailureMarksFailed(t *testing.T) {
	store := newFakeOutboxStore()
	store.events = append(store.events, pendingEvent("e1", "emp-1"))

	publisher := &fakePublisher{fail: true}
	cfg := config.Config{OutboxBatchSize: 10}

	svc := New(cfg, store, publisher, &fakeMailer{})
	require.NoError(t, svc.DispatchOnce(context.Background()))

	assert.Empty(t, store.sent)
	assert.Contains(t, store.failed["e1"], "broker unavailable")
}

func TestDispatchOnceSkipsEmailWhenDisabled(t *testing.T) {
	store := newFakeOutboxStore()
	store.events = append(store.events, pendingEvent("e1", "emp-1"))
	store.emails["emp-1"] = "one@example.com"

	mailer := &fakeMailer{}
	cfg := config.Config{EmailEnabled: false, OutboxBatchSize: 10}

	svc := New(cfg, store, &fakePublisher{}, mailer)
	require.NoError(t, svc.DispatchOnce(context.Background()))

	assert.ElementsMatch(t, []string{"e1"}, store.sent)
	assert.Empty(t, mailer.sent)
}

func TestDispatchOnceRespectsBatchSize(t *testing.T) {
	store := newFakeOutboxStore()
	for _, id := range []string{"e1", "e2", "e3"} {
		store.events = append(store.events, pendingEvent(id, "emp-1"))
	}

	cfg := config.Config{OutboxBatchSize: 2}
	svc := New(cfg, store, &fakePublisher{}, &fakeMailer{})
	require.NoError(t, svc.DispatchOnce(context.Background()))

	assert.Len(t, store.sent, 2)
}
