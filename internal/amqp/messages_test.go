package amqp

import (
	"testing"
	"time"

	"paisa/internal/core"
)

func TestNewNotificationCreatedMessage(t *testing.T) {
	n := core.Notification{
		ID:            7,
		OwnerID:       3,
		Type:          core.NotificationRenewal,
		TransactionID: 42,
		Message:       "Reminder: Netflix subscription renewal tomorrow for ₹999.00",
	}

	msg := NewNotificationCreatedMessage(n)

	if msg.NotificationID != 7 || msg.OwnerID != 3 || msg.TransactionID != 42 {
		t.Errorf("message IDs = %+v", msg)
	}
	if msg.Type != "renewal" {
		t.Errorf("type = %q, want renewal", msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestNotificationCreatedMessage_JSON(t *testing.T) {
	msg := &NotificationCreatedMessage{
		NotificationID: 1,
		OwnerID:        2,
		Type:           "due",
		TransactionID:  3,
		Message:        "Reminder: ₹5000.00 due from Ravi tomorrow",
		Timestamp:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := NotificationCreatedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.Message != msg.Message {
		t.Errorf("message = %q, want %q", parsed.Message, msg.Message)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestNotificationCreatedMessage_InvalidJSON(t *testing.T) {
	if _, err := NotificationCreatedMessageFromJSON([]byte(`{"notificationId": "nope"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
