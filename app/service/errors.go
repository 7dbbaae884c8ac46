package service

import "errors"

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrRefundExceedsBalance = errors.New("refund exceeds refundable balance")
	// ErrConflict means a concurrent request won the commit race; local
	// state was advanced by the other request, not this one.
	ErrConflict = errors.New("payment was modified concurrently")
)
