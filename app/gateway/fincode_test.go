package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestFincode(t *testing.T, handler http.HandlerFunc) (*Fincode, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		APIBaseURL:  server.URL,
		SecretKey:   "sk_test_secret",
		HTTPTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}
	return NewFincode(client), server
}

func TestNewClientRequiresSecretKey(t *testing.T) {
	_, err := NewClient(ClientConfig{APIBaseURL: "https://api.test.fincode.jp"})
	if err == nil {
		t.Fatal("expected error for missing secret key")
	}

	_, err = NewClient(ClientConfig{APIBaseURL: "https://api.test.fincode.jp", SecretKey: "   "})
	if err == nil {
		t.Fatal("expected error for blank secret key")
	}
}

func TestRegisterSendsAuthorizationRequest(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]string

	fincode, _ := newTestFincode(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"id":%q,"access_id":"acc_123","status":"UNPROCESSED"}`, gotBody["id"])
	})

	result, err := fincode.Register(context.Background(), RegisterInput{
		Amount:        5000,
		CustomerEmail: "taro@example.com",
		CustomerName:  "Taro",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/v1/payments" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer sk_test_secret" {
		t.Fatalf("unexpected authorization header: %s", gotAuth)
	}
	if gotBody["pay_type"] != "Card" || gotBody["job_code"] != "AUTH" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	if gotBody["amount"] != "5000" {
		t.Fatalf("amount must be sent as a string, got %q", gotBody["amount"])
	}
	if gotBody["client_field_1"] != "taro@example.com" || gotBody["client_field_2"] != "Taro" {
		t.Fatalf("unexpected client fields: %+v", gotBody)
	}

	if !strings.HasPrefix(result.OrderID, "ORD_") {
		t.Fatalf("unexpected order id: %s", result.OrderID)
	}
	if result.AccessID != "acc_123" || result.Amount != 5000 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCaptureHitsCaptureEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	fincode, _ := newTestFincode(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"ORD_1","access_id":"acc_123","status":"CAPTURED"}`)
	})

	if err := fincode.Capture(context.Background(), "ORD_1", "acc_123", 5000); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/payments/ORD_1/capture" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody["access_id"] != "acc_123" || gotBody["amount"] != "5000" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestCancelOmitsAmount(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	fincode, _ := newTestFincode(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"ORD_1","access_id":"acc_123","status":"CANCELED"}`)
	})

	if err := fincode.Cancel(context.Background(), "ORD_1", "acc_123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/v1/payments/ORD_1/cancel" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if _, ok := gotBody["amount"]; ok {
		t.Fatal("cancel must not send an amount")
	}
}

func TestRefundReusesCancelEndpointWithAmount(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	fincode, _ := newTestFincode(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id":"ORD_1","access_id":"acc_123","status":"CANCELED"}`)
	})

	result, err := fincode.Refund(context.Background(), "ORD_1", "acc_123", 2000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/v1/payments/ORD_1/cancel" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotBody["amount"] != "2000" {
		t.Fatalf("expected partial amount in payload, got %+v", gotBody)
	}
	if result.RefundID != "ORD_1" {
		t.Fatalf("unexpected refund id: %s", result.RefundID)
	}
}

func TestFindTransactionQueriesByOrderID(t *testing.T) {
	var gotPath, gotPayType string

	fincode, _ := newTestFincode(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPayType = r.URL.Query().Get("pay_type")
		fmt.Fprint(w, `{"id":"ORD_1","access_id":"acc_123","status":"AUTHORIZED"}`)
	})

	tx, err := fincode.FindTransaction(context.Background(), "ORD_1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/v1/payments/ORD_1" || gotPayType != "Card" {
		t.Fatalf("unexpected request: %s pay_type=%s", gotPath, gotPayType)
	}
	if tx.Status != TransactionAuthorized {
		t.Fatalf("unexpected status: %s", tx.Status)
	}
}

func TestStatusErrorMessages(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		want       string
	}{
		{
			name:       "bad request includes detail",
			statusCode: http.StatusBadRequest,
			body:       `{"errors":[{"error_message":"invalid card number"}]}`,
			want:       "Bad Request: invalid card number",
		},
		{
			name:       "unauthorized hides detail",
			statusCode: http.StatusUnauthorized,
			body:       `{"message":"bad key"}`,
			want:       "Unauthorized - Check your API credentials",
		},
		{
			name:       "forbidden includes detail",
			statusCode: http.StatusForbidden,
			body:       `{"message":"shop is suspended"}`,
			want:       "Forbidden - API key lacks permission: shop is suspended",
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{}`,
			want:       "Payment not found",
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			body:       "upstream exploded",
			want:       "Fincode server error - Please try again later",
		},
		{
			name:       "unexpected status",
			statusCode: http.StatusTeapot,
			body:       `{}`,
			want:       "Payment processing failed (HTTP 418)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fincode, _ := newTestFincode(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.statusCode)
				fmt.Fprint(w, tc.body)
			})

			_, err := fincode.FindTransaction(context.Background(), "ORD_1")
			var gatewayErr *Error
			if !errors.As(err, &gatewayErr) {
				t.Fatalf("expected gateway error, got %v", err)
			}
			if gatewayErr.StatusCode != tc.statusCode {
				t.Fatalf("unexpected status code: %d", gatewayErr.StatusCode)
			}
			if gatewayErr.Message != tc.want {
				t.Fatalf("unexpected message: %q", gatewayErr.Message)
			}
		})
	}
}

func TestParseErrorBody(t *testing.T) {
	if got := parseErrorBody([]byte("not json")); got != "Unknown error" {
		t.Fatalf("unexpected fallback for invalid body: %q", got)
	}
	if got := parseErrorBody([]byte(`{}`)); got != "Unknown error" {
		t.Fatalf("unexpected fallback for empty body: %q", got)
	}
	if got := parseErrorBody([]byte(`{"message":"top level"}`)); got != "top level" {
		t.Fatalf("unexpected message: %q", got)
	}
	body := `{"errors":[{"error_message":"first"},{"message":"second"}]}`
	if got := parseErrorBody([]byte(body)); got != "first, second" {
		t.Fatalf("unexpected joined message: %q", got)
	}
}

func TestGenerateOrderIDShape(t *testing.T) {
	id := generateOrderID()
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "ORD" {
		t.Fatalf("unexpected order id: %s", id)
	}
	if len(parts[2]) != 12 {
		t.Fatalf("unexpected suffix length in %s", id)
	}
	if id == generateOrderID() {
		t.Fatal("order ids must be unique")
	}
}
