package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ClientConfig struct {
	APIBaseURL  string
	SecretKey   string
	HTTPTimeout time.Duration
}

type Client struct {
	cfg    ClientConfig
	client *http.Client
	logger logrus.FieldLogger
}

// NewClient fails when the secret credential is absent so a misconfigured
// process dies at startup instead of on the first payment.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("fincode secret key is not configured")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logrus.WithField("module", "fincode-client"),
	}, nil
}

type registerPayload struct {
	PayType      string `json:"pay_type"`
	JobCode      string `json:"job_code"`
	Amount       string `json:"amount"`
	Tax          string `json:"tax"`
	ID           string `json:"id"`
	ClientField1 string `json:"client_field_1,omitempty"`
	ClientField2 string `json:"client_field_2,omitempty"`
}

type transactionPayload struct {
	ID       string `json:"id"`
	AccessID string `json:"access_id"`
	Status   string `json:"status"`
}

// Register creates a payment session with job code AUTH. The returned access
// id is required on every later call referencing the transaction.
func (c *Client) register(ctx context.Context, orderID string, amount, tax int64, customerEmail, customerName string) (*transactionPayload, error) {
	payload := registerPayload{
		PayType:      "Card",
		JobCode:      "AUTH",
		Amount:       strconv.FormatInt(amount, 10),
		Tax:          strconv.FormatInt(tax, 10),
		ID:           orderID,
		ClientField1: customerEmail,
		ClientField2: customerName,
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/payments", payload)
	if err != nil {
		return nil, err
	}

	var result transactionPayload
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) capture(ctx context.Context, orderID, accessID string, amount int64) (*transactionPayload, error) {
	payload := map[string]string{
		"pay_type":  "Card",
		"access_id": accessID,
		"amount":    strconv.FormatInt(amount, 10),
	}

	body, err := c.do(ctx, http.MethodPut, "/v1/payments/"+url.PathEscape(orderID)+"/capture", payload)
	if err != nil {
		return nil, err
	}

	var result transactionPayload
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Cancel voids an authorization before capture.
func (c *Client) cancel(ctx context.Context, orderID, accessID string) (*transactionPayload, error) {
	payload := map[string]string{
		"pay_type":  "Card",
		"access_id": accessID,
	}

	body, err := c.do(ctx, http.MethodPut, "/v1/payments/"+url.PathEscape(orderID)+"/cancel", payload)
	if err != nil {
		return nil, err
	}

	var result transactionPayload
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refund returns captured funds. The provider has no separate refund
// endpoint; the cancel endpoint is reused and behaves according to the
// transaction's remote state, with an amount for partial refunds.
func (c *Client) refund(ctx context.Context, orderID, accessID string, amount int64) (*transactionPayload, error) {
	payload := map[string]string{
		"pay_type":  "Card",
		"access_id": accessID,
	}
	if amount > 0 {
		payload["amount"] = strconv.FormatInt(amount, 10)
	}

	body, err := c.do(ctx, http.MethodPut, "/v1/payments/"+url.PathEscape(orderID)+"/cancel", payload)
	if err != nil {
		return nil, err
	}

	var result transactionPayload
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) find(ctx context.Context, orderID string) (*transactionPayload, error) {
	path := "/v1/payments/" + url.PathEscape(orderID) + "?pay_type=Card"
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result transactionPayload
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return body, nil
	}

	return nil, c.statusError(resp.StatusCode, body)
}

func (c *Client) statusError(statusCode int, body []byte) *Error {
	detail := parseErrorBody(body)

	var message string
	switch {
	case statusCode == http.StatusBadRequest:
		c.logger.WithField("status", statusCode).Error("Fincode rejected the request: " + detail)
		message = "Bad Request: " + detail
	case statusCode == http.StatusUnauthorized:
		c.logger.WithField("status", statusCode).Error("Fincode rejected the credentials")
		message = "Unauthorized - Check your API credentials"
	case statusCode == http.StatusForbidden:
		c.logger.WithField("status", statusCode).Error("Fincode forbade the request")
		message = "Forbidden - API key lacks permission: " + detail
	case statusCode == http.StatusNotFound:
		message = "Payment not found"
	case statusCode >= 500 && statusCode <= 599:
		c.logger.WithField("status", statusCode).Error("Fincode server error")
		message = "Fincode server error - Please try again later"
	default:
		c.logger.WithField("status", statusCode).Error("Fincode unexpected response")
		message = fmt.Sprintf("Payment processing failed (HTTP %d)", statusCode)
	}

	return &Error{StatusCode: statusCode, Message: message}
}

// parseErrorBody extracts a human-readable message from the provider's error
// structure, which is either {"message": ...} or {"errors": [{"error_message"
// | "message": ...}]}.
func parseErrorBody(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			ErrorMessage string `json:"error_message"`
			Message      string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "Unknown error"
	}

	if strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}

	messages := make([]string, 0, len(payload.Errors))
	for _, item := range payload.Errors {
		if item.ErrorMessage != "" {
			messages = append(messages, item.ErrorMessage)
		} else if item.Message != "" {
			messages = append(messages, item.Message)
		}
	}
	if len(messages) > 0 {
		return strings.Join(messages, ", ")
	}

	return "Unknown error"
}
