package domain

import "time"

// NotificationLogEntry records one outbound operator alert to a phone number.
// The log is append-only and exists solely to suppress duplicate alerts
// inside the dedup window.
type NotificationLogEntry struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	TextedAt    time.Time `json:"texted_at"`
}
