package entity

import "time"

// Payment statuses. The captured -> partially_refunded -> refunded path and
// the authorized -> cancelled path are independent; cancelled, refunded and
// failed are terminal.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusAuthorized        = "authorized"
	PaymentStatusCaptured          = "captured"
	PaymentStatusFailed            = "failed"
	PaymentStatusCancelled         = "cancelled"
	PaymentStatusPartiallyRefunded = "partially_refunded"
	PaymentStatusRefunded          = "refunded"
)

type Payment struct {
	ID     uint64
	UserID uint64

	// OrderRef links the payment to a shop order when one exists.
	OrderRef *uint64

	// FincodeOrderID and FincodeAccessID are assigned at registration and
	// never change. The access id is required on every subsequent gateway
	// call referencing this payment.
	FincodeOrderID  string
	FincodeAccessID string

	Amount int64
	Tax    int64
	Status string

	CustomerEmail *string

	AuthorizedAt *time.Time
	CapturedAt   *time.Time
	CanceledAt   *time.Time
	RefundedAt   *time.Time

	ErrorMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Payment) CanCapture() bool {
	return p.Status == PaymentStatusAuthorized
}

func (p *Payment) CanCancel() bool {
	return p.Status == PaymentStatusAuthorized
}

func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusCaptured || p.Status == PaymentStatusPartiallyRefunded
}
