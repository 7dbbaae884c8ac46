package entity

import "time"

const (
	RefundStatusPending   = "pending"
	RefundStatusCompleted = "completed"
	RefundStatusFailed    = "failed"
)

// Refund is created after a successful gateway refund call and is not
// mutated afterwards. Only completed refunds count toward the payment's
// refunded total.
type Refund struct {
	ID        uint64
	PaymentID uint64

	// ProcessedBy is the user that requested the refund.
	ProcessedBy *uint64

	Amount int64
	Reason *string
	Status string

	FincodeRefundID *string
	ProcessedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
