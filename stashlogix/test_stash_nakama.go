package stashlogix

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// TestStashNakama is an in-memory Nakama module for stash and action tests. It backs the
// storage engine with a map so persisted snapshots can be inspected and replayed, and it
// records every notification sent so publisher behavior can be verified.
type TestStashNakama struct {
	*MockNakamaModule
	storage       map[string]string
	notifications []sentNotification
	notifyErr     error
}

type sentNotification struct {
	UserID  string
	Subject string
	Content map[string]interface{}
	Code    int
}

func NewTestStashNakama(t *testing.T) *TestStashNakama {
	return &TestStashNakama{
		MockNakamaModule: NewMockNakama(t),
		storage:          make(map[string]string),
	}
}

func storageKey(collection, key, userID string) string {
	return collection + ":" + key + ":" + userID
}

// StoredValue returns the persisted value for a system-owned object, if any.
func (m *TestStashNakama) StoredValue(collection, key string) (string, bool) {
	val, ok := m.storage[storageKey(collection, key, "")]
	return val, ok
}

func (m *TestStashNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	var result []*api.StorageObject
	for _, r := range reads {
		val, ok := m.storage[storageKey(r.Collection, r.Key, r.UserID)]
		if !ok {
			continue
		}
		result = append(result, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			UserId:     r.UserID,
			Value:      val,
			Version:    "v1",
		})
	}
	return result, nil
}

func (m *TestStashNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	var acks []*api.StorageObjectAck
	for _, w := range writes {
		// Reject malformed snapshots before they reach storage.
		var jsonObj interface{}
		if err := json.Unmarshal([]byte(w.Value), &jsonObj); err != nil {
			return nil, err
		}

		m.storage[storageKey(w.Collection, w.Key, w.UserID)] = w.Value
		acks = append(acks, &api.StorageObjectAck{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Version:    "v1",
		})
	}
	return acks, nil
}

func (m *TestStashNakama) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	for _, d := range deletes {
		delete(m.storage, storageKey(d.Collection, d.Key, d.UserID))
	}
	return nil
}

func (m *TestStashNakama) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifications = append(m.notifications, sentNotification{
		UserID:  userID,
		Subject: subject,
		Content: content,
		Code:    code,
	})
	return nil
}
