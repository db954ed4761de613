package events

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of event pushed to consoles
type MessageType string

const (
	// Server -> Client event types
	TypeNotification     MessageType = "notification"
	TypeResourceUpdated  MessageType = "resource.updated"
	TypeCatalogueChanged MessageType = "catalogue.changed"

	// Client -> Server command types
	TypePing       MessageType = "ping"
	TypeVisibility MessageType = "visibility"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the envelope for every event
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level   string `json:"level"` // info, success, warning, error
	Message string `json:"message"`
}

// ResourcePayload is the payload for resource.updated events.
type ResourcePayload struct {
	Resource string `json:"resource"`
}

// CataloguePayload is the payload for catalogue.changed events.
type CataloguePayload struct {
	Prefixes   int `json:"prefixes"`
	Categories int `json:"categories"`
}

// Command is a message sent by a console over the socket
type Command struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VisibilityPayload is the payload for visibility commands.
type VisibilityPayload struct {
	Visible bool `json:"visible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
