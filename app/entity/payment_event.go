package entity

import "time"

// PaymentEvent records a status transition for auditing. Event writes are
// best-effort and never abort the operation that produced them.
type PaymentEvent struct {
	ID        uint64
	PaymentID uint64
	EventType string
	OldStatus *string
	NewStatus string
	CreatedAt time.Time
}
