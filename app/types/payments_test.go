package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newJSONContext(body, orderID string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := e.NewContext(req, httptest.NewRecorder())
	if orderID != "" {
		ctx.SetParamNames("order_id")
		ctx.SetParamValues(orderID)
	}
	return ctx
}

func TestRegisterPaymentRequestValidate(t *testing.T) {
	req, err := NewRegisterPaymentRequestFromContext(newJSONContext(`{"amount":5000}`, ""))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req = &RegisterPaymentRequest{Amount: 0}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for zero amount")
	}
	req = &RegisterPaymentRequest{Amount: -100}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestPaymentActionRequestFromContext(t *testing.T) {
	req, err := NewPaymentActionRequestFromContext(newJSONContext("", " ORD_1 "))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.OrderID != "ORD_1" {
		t.Fatalf("expected trimmed order id, got %q", req.OrderID)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req, _ = NewPaymentActionRequestFromContext(newJSONContext("", ""))
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing order id")
	}
}

func TestRefundPaymentRequestFromContext(t *testing.T) {
	ctx := newJSONContext(`{"amount":2000,"reason":"  damaged item  "}`, "ORD_1")
	req, err := NewRefundPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.OrderID != "ORD_1" || req.Amount != 2000 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Reason != "damaged item" {
		t.Fatalf("expected trimmed reason, got %q", req.Reason)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestRefundPaymentRequestValidate(t *testing.T) {
	req := &RefundPaymentRequest{OrderID: "ORD_1", Amount: 0}
	if err := req.Validate(); err != nil {
		t.Fatalf("zero amount means full refund, got %v", err)
	}

	req = &RefundPaymentRequest{OrderID: "ORD_1", Amount: -1}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}

	req = &RefundPaymentRequest{Amount: 2000}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing order id")
	}
}
