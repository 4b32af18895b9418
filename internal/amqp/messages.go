package amqp

import (
	"encoding/json"
	"time"

	"paisa/internal/core"
)

// NotificationCreatedMessage is the event published whenever the reminder
// scheduler creates a notification. Delivery workers (push, email) consume
// it and fetch nothing else; the message carries the full text.
type NotificationCreatedMessage struct {
	NotificationID int64     `json:"notificationId"`
	OwnerID        int64     `json:"ownerId"`
	Type           string    `json:"type"`
	TransactionID  int64     `json:"transactionId"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewNotificationCreatedMessage(n core.Notification) *NotificationCreatedMessage {
	return &NotificationCreatedMessage{
		NotificationID: n.ID,
		OwnerID:        n.OwnerID,
		Type:           string(n.Type),
		TransactionID:  n.TransactionID,
		Message:        n.Message,
		Timestamp:      time.Now(),
	}
}

func (m *NotificationCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationCreatedMessageFromJSON(data []byte) (*NotificationCreatedMessage, error) {
	var msg NotificationCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
