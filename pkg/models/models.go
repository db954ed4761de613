package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTag is the built-in tag every untagged device falls back to
const DefaultTag = "default"

// SourceKind tells whether a device currently holds a lease
type SourceKind string

const (
	KindLease  SourceKind = "lease"
	KindStatic SourceKind = "static"
)

// Valid reports whether k is one of the known source kinds
func (k SourceKind) Valid() bool {
	return k == KindLease || k == KindStatic
}

// Device represents a network endpoint known to the DHCP backend
type Device struct {
	MAC  string     `json:"mac"`
	Name string     `json:"name"`
	IP   string     `json:"ip"`
	Kind SourceKind `json:"type"`
	Tag  *string    `json:"tag,omitempty"`
}

// Online reports whether the device has an active lease
func (d Device) Online() bool {
	return d.Kind == KindLease
}

// Lease represents a DHCP binding reported by the backend
type Lease struct {
	Hostname  string `json:"hostname"`
	IP        string `json:"ipaddr"`
	MAC       string `json:"macaddr"`
	Timestamp string `json:"timestamp"`
}

// StaticTimestamp marks a lease without expiry
const StaticTimestamp = "0"

// Static reports whether the lease never expires
func (l Lease) Static() bool {
	return l.Timestamp == StaticTimestamp
}

// UnmarshalJSON accepts the timestamp as either a string or a number,
// the backend emits both depending on the lease source.
func (l *Lease) UnmarshalJSON(data []byte) error {
	var raw struct {
		Hostname  string          `json:"hostname"`
		IP        string          `json:"ipaddr"`
		MAC       string          `json:"macaddr"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.Hostname = raw.Hostname
	l.IP = raw.IP
	l.MAC = raw.MAC
	l.Timestamp = ""

	if len(raw.Timestamp) == 0 || string(raw.Timestamp) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw.Timestamp, &s); err == nil {
		l.Timestamp = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(raw.Timestamp, &n); err != nil {
		return fmt.Errorf("invalid lease timestamp %s: %w", raw.Timestamp, err)
	}
	l.Timestamp = n.String()
	return nil
}

// Stats holds the backend's summary counters
type Stats struct {
	TotalTags     int `json:"total_tags"`
	TotalDevices  int `json:"total_devices"`
	OnlineDevices int `json:"online_devices"`
}

// Envelope is the response shape of every backend call
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Level classifies an operator notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single operator-visible message
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"when"`
	Unix    int64     `json:"utime"`
}

// NewNotification stamps a notification with the current time
func NewNotification(level Level, message string) Notification {
	now := time.Now()
	return Notification{
		Level:   level,
		Message: message,
		Time:    now,
		Unix:    now.Unix(),
	}
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, treating nil as empty
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
