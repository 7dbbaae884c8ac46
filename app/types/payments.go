package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterPaymentRequest struct {
	Amount int64 `json:"amount"`
}

func NewRegisterPaymentRequestFromContext(ctx echo.Context) (*RegisterPaymentRequest, error) {
	var body RegisterPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *RegisterPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	return nil
}

type PaymentActionRequest struct {
	OrderID string
}

func NewPaymentActionRequestFromContext(ctx echo.Context) (*PaymentActionRequest, error) {
	return &PaymentActionRequest{OrderID: strings.TrimSpace(ctx.Param("order_id"))}, nil
}

func (r *PaymentActionRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("order_id is required")
	}
	return nil
}

type RefundPaymentRequest struct {
	OrderID string `param:"order_id"`
	Amount  int64  `json:"amount"`
	Reason  string `json:"reason"`
}

func NewRefundPaymentRequestFromContext(ctx echo.Context) (*RefundPaymentRequest, error) {
	var body RefundPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.OrderID = strings.TrimSpace(ctx.Param("order_id"))
	body.Reason = strings.TrimSpace(body.Reason)
	return &body, nil
}

func (r *RefundPaymentRequest) Validate() error {
	if r.OrderID == "" {
		return errors.New("order_id is required")
	}
	if r.Amount < 0 {
		return errors.New("amount must be >= 0")
	}
	return nil
}

type RegisterPaymentResponse struct {
	OrderID   string `json:"order_id"`
	AccessID  string `json:"access_id"`
	Amount    int64  `json:"amount"`
	PublicKey string `json:"public_key"`
}

type Payment struct {
	ID            uint64 `json:"id"`
	OrderID       string `json:"order_id"`
	AccessID      string `json:"access_id"`
	Amount        int64  `json:"amount"`
	Tax           int64  `json:"tax"`
	Status        string `json:"status"`
	CustomerEmail string `json:"customer_email,omitempty"`
	AuthorizedAt  string `json:"authorized_at,omitempty"`
	CapturedAt    string `json:"captured_at,omitempty"`
	CanceledAt    string `json:"canceled_at,omitempty"`
	RefundedAt    string `json:"refunded_at,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type RefundPaymentResponse struct {
	RefundID        uint64 `json:"refund_id"`
	OrderID         string `json:"order_id"`
	Amount          int64  `json:"amount"`
	Status          string `json:"status"`
	RemainingAmount int64  `json:"remaining_amount"`
}
