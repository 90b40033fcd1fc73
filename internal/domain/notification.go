package domain

import "time"

// Notification is an in-app message produced by the event pipeline.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Message   string
	Read      bool
	CreatedAt time.Time
}
