package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	notifications []Notification
	outbox        []OutboxEvent
	failWrites    bool
}

func (f *fakeStore) CreateWithEvent(ctx context.Context, n Notification, e OutboxEvent) error {
	if f.failWrites {
		return errStoreDown
	}
	f.notifications = append(f.notifications, n)
	f.outbox = append(f.outbox, e)
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	return f.notifications, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeStore) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	return "", nil
}

func (f *fakeStore) ListPendingOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	return f.outbox, nil
}

func (f *fakeStore) MarkOutboxSent(ctx context.Context, id string) error { return nil }

func (f *fakeStore) MarkOutboxFailed(ctx context.Context, id, reason string) error { return nil }

func (f *fakeStore) PurgeSentOutbox(ctx context.Context, cutoffDays int) (int64, error) {
	return 0, nil
}

func TestNotifyWritesNotificationAndOutboxEvent(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	err := svc.Notify(context.Background(), "emp-1", "Leave request approved", "Your annual leave was approved.")
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	n := store.notifications[0]
	assert.Equal(t, "emp-1", n.EmployeeID)
	assert.Equal(t, TypeLeaveApproved, n.Type)
	assert.False(t, n.Read)

	require.Len(t, store.outbox, 1)
	event := store.outbox[0]
	assert.Equal(t, OutboxStatusPending, event.Status)
	assert.Equal(t, TypeLeaveApproved, event.EventType)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, n.ID, payload.NotificationID)
	assert.Equal(t, "Leave request approved", payload.Subject)
}

func TestNotifyIsAtomicAcrossBothWrites(t *testing.T) {
	store := &fakeStore{failWrites: true}
	svc := New(store)

	err := svc.Notify(context.Background(), "emp-1", "Leave request approved", "body")
	require.Error(t, err)

	assert.Empty(t, store.notifications)
	assert.Empty(t, store.outbox)
}

func TestTypeFromSubject(t *testing.T) {
	cases := map[string]string{
		"Leave request submitted": TypeLeaveSubmitted,
		"Leave request approved":  TypeLeaveApproved,
		"Leave request rejected":  TypeLeaveRejected,
		"Password changed":        TypeGeneric,
	}
	for subject, want := range cases {
		assert.Equal(t, want, typeFromSubject(subject), subject)
	}
}
