package gateway

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fincode exposes the four payment operations in domain vocabulary. Cancel
// and Refund stay separate here even though the transport reuses one remote
// endpoint for both: voiding an authorization and refunding a capture are
// different transitions locally.
type Fincode struct {
	client *Client
}

func NewFincode(client *Client) *Fincode {
	return &Fincode{client: client}
}

func (g *Fincode) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	orderID := generateOrderID()

	result, err := g.client.register(ctx, orderID, input.Amount, input.Tax, input.CustomerEmail, input.CustomerName)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		OrderID:  result.ID,
		AccessID: result.AccessID,
		Amount:   input.Amount,
	}, nil
}

func (g *Fincode) Capture(ctx context.Context, orderID, accessID string, amount int64) error {
	_, err := g.client.capture(ctx, orderID, accessID, amount)
	return err
}

func (g *Fincode) Cancel(ctx context.Context, orderID, accessID string) error {
	_, err := g.client.cancel(ctx, orderID, accessID)
	return err
}

func (g *Fincode) Refund(ctx context.Context, orderID, accessID string, amount int64) (*RefundResult, error) {
	result, err := g.client.refund(ctx, orderID, accessID, amount)
	if err != nil {
		return nil, err
	}
	return &RefundResult{RefundID: result.ID}, nil
}

func (g *Fincode) FindTransaction(ctx context.Context, orderID string) (*Transaction, error) {
	result, err := g.client.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		OrderID:  result.ID,
		AccessID: result.AccessID,
		Status:   result.Status,
	}, nil
}

func generateOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "ORD_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + suffix
}
