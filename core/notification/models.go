package notification

import "time"

// Notification informs a student of a decision on one of their justifications.
type Notification struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	JustificationID string    `json:"justification_id,omitempty"`
	Message         string    `json:"message"`
	Read            bool      `json:"read"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	StudentID       string `json:"student_id" validate:"required"`
	JustificationID string `json:"justification_id"`
	Message         string `json:"message" validate:"required"`
}
