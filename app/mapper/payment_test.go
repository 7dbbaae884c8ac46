package mapper

import (
	"testing"
	"time"

	"github.com/loopnorth/ms-go-checkout/app/entity"
)

func TestPaymentToResponse(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	captured := created.Add(5 * time.Minute)
	email := "taro@example.com"

	item := &entity.Payment{
		ID:              12,
		UserID:          7,
		FincodeOrderID:  "ORD_1",
		FincodeAccessID: "acc_1",
		Amount:          5000,
		Status:          entity.PaymentStatusCaptured,
		CustomerEmail:   &email,
		CapturedAt:      &captured,
		CreatedAt:       created,
		UpdatedAt:       captured,
	}

	got := PaymentToResponse(item)
	if got.OrderID != "ORD_1" || got.AccessID != "acc_1" {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
	if got.Status != entity.PaymentStatusCaptured || got.Amount != 5000 {
		t.Fatalf("unexpected payment: %+v", got)
	}
	if got.CapturedAt != "2026-03-14T09:35:00Z" {
		t.Fatalf("unexpected captured_at: %s", got.CapturedAt)
	}
	if got.AuthorizedAt != "" || got.CanceledAt != "" || got.RefundedAt != "" {
		t.Fatalf("unset timestamps must stay empty: %+v", got)
	}
	if got.CustomerEmail != email {
		t.Fatalf("unexpected customer email: %s", got.CustomerEmail)
	}
}

func TestPaymentToResponseNil(t *testing.T) {
	if got := PaymentToResponse(nil); got != nil {
		t.Fatalf("expected nil response, got %+v", got)
	}
}

func TestPaymentsToResponse(t *testing.T) {
	now := time.Now().UTC()
	items := []*entity.Payment{
		{ID: 1, FincodeOrderID: "ORD_1", Status: entity.PaymentStatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: 2, FincodeOrderID: "ORD_2", Status: entity.PaymentStatusCaptured, CreatedAt: now, UpdatedAt: now},
	}

	got := PaymentsToResponse(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].OrderID != "ORD_1" || got[1].OrderID != "ORD_2" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
