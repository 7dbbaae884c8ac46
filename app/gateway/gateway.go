// Package gateway integrates with the fincode card-payment provider. Client
// is the HTTP transport; Fincode is the domain-facing façade the payment
// service talks to. Callers never reach the transport directly.
package gateway

import "fmt"

// Fincode transaction statuses as reported by GET /v1/payments/{id}.
const (
	TransactionUnprocessed = "UNPROCESSED"
	TransactionAuthorized  = "AUTHORIZED"
	TransactionCaptured    = "CAPTURED"
	TransactionCanceled    = "CANCELED"
)

// Error is the single error kind surfaced for any failed provider call. The
// message is assembled from the provider's error body; callers do not branch
// on the status code, it is carried for logging only.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fincode: %s", e.Message)
}

type RegisterInput struct {
	Amount        int64
	Tax           int64
	CustomerEmail string
	CustomerName  string
}

type RegisterResult struct {
	OrderID  string
	AccessID string
	Amount   int64
}

type RefundResult struct {
	RefundID string
}

type Transaction struct {
	OrderID  string
	AccessID string
	Status   string
}
