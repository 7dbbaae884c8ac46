package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopnorth/ms-go-checkout/app/entity"
	"github.com/loopnorth/ms-go-checkout/app/gateway"
	"github.com/loopnorth/ms-go-checkout/app/repository"
	"github.com/loopnorth/ms-go-checkout/config"
)

// User identifies the acting user. Payments are scoped to their owner for
// every read and mutation.
type User struct {
	ID    uint64
	Email string
	Name  string
}

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	UpdateFromStatus(ctx context.Context, payment *entity.Payment, fromStatus string) error
	FindByOrderID(ctx context.Context, userID uint64, fincodeOrderID string) (*entity.Payment, error)
	ListByUser(ctx context.Context, userID uint64) ([]*entity.Payment, error)
	ListStaleForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error)
}

type refundRepository interface {
	SumCompletedByPayment(ctx context.Context, paymentID uint64) (int64, error)
	CreateCompleted(ctx context.Context, payment *entity.Payment, refund *entity.Refund) error
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type paymentGateway interface {
	Register(ctx context.Context, input gateway.RegisterInput) (*gateway.RegisterResult, error)
	Capture(ctx context.Context, orderID, accessID string, amount int64) error
	Cancel(ctx context.Context, orderID, accessID string) error
	Refund(ctx context.Context, orderID, accessID string, amount int64) (*gateway.RefundResult, error)
	FindTransaction(ctx context.Context, orderID string) (*gateway.Transaction, error)
}

type PaymentService struct {
	paymentRepo paymentRepository
	refundRepo  refundRepository
	eventRepo   paymentEventRepository
	gateway     paymentGateway
	paymentsCfg config.PaymentsConfig
	jobsCfg     config.JobsConfig
	publicKey   string
}

func NewPaymentService(
	paymentRepo paymentRepository,
	refundRepo refundRepository,
	eventRepo paymentEventRepository,
	gw paymentGateway,
	paymentsCfg config.PaymentsConfig,
	jobsCfg config.JobsConfig,
	publicKey string,
) *PaymentService {
	if paymentsCfg.MinRegisterAmount <= 0 {
		paymentsCfg.MinRegisterAmount = 100
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		eventRepo:   eventRepo,
		gateway:     gw,
		paymentsCfg: paymentsCfg,
		jobsCfg:     jobsCfg,
		publicKey:   publicKey,
	}
}

type RegisterResult struct {
	OrderID   string
	AccessID  string
	Amount    int64
	PublicKey string
}

// Register creates a payment session with the gateway and records it locally
// in pending status. The local row is written only after the gateway accepts,
// so a failed registration leaves nothing behind.
func (s *PaymentService) Register(ctx context.Context, user User, amount int64) (*RegisterResult, error) {
	if amount < s.paymentsCfg.MinRegisterAmount {
		return nil, fmt.Errorf("%w: amount must be at least %d", ErrInvalidAmount, s.paymentsCfg.MinRegisterAmount)
	}

	result, err := s.gateway.Register(ctx, gateway.RegisterInput{
		Amount:        amount,
		CustomerEmail: user.Email,
		CustomerName:  user.Name,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	email := user.Email
	payment := &entity.Payment{
		UserID:          user.ID,
		FincodeOrderID:  result.OrderID,
		FincodeAccessID: result.AccessID,
		Amount:          amount,
		Status:          entity.PaymentStatusPending,
		CustomerEmail:   &email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "payment_registered",
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return &RegisterResult{
		OrderID:   payment.FincodeOrderID,
		AccessID:  payment.FincodeAccessID,
		Amount:    payment.Amount,
		PublicKey: s.publicKey,
	}, nil
}

// Confirm synchronizes local status with the client-side authorization that
// completed out of band. It is idempotent: confirming an already-authorized
// payment returns it unchanged without touching authorized_at.
func (s *PaymentService) Confirm(ctx context.Context, user User, orderID string) (*entity.Payment, error) {
	payment, err := s.findPayment(ctx, user, orderID)
	if err != nil {
		return nil, err
	}

	if payment.Status == entity.PaymentStatusAuthorized {
		return payment, nil
	}
	if payment.Status != entity.PaymentStatusPending {
		return nil, fmt.Errorf("%w: payment cannot be confirmed from %s", ErrInvalidStatus, payment.Status)
	}

	now := time.Now().UTC()
	oldStatus := payment.Status
	payment.Status = entity.PaymentStatusAuthorized
	payment.AuthorizedAt = &now
	payment.UpdatedAt = now

	if err := s.commitTransition(ctx, payment, oldStatus, "payment_authorized", now); err != nil {
		return nil, err
	}

	return payment, nil
}

// Capture charges the authorized amount. The gateway call happens before any
// local mutation; on gateway failure the payment stays authorized and the
// caller may retry.
func (s *PaymentService) Capture(ctx context.Context, user User, orderID string) (*entity.Payment, error) {
	payment, err := s.findPayment(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !payment.CanCapture() {
		return nil, fmt.Errorf("%w: payment must be authorized to capture", ErrInvalidStatus)
	}

	if err := s.gateway.Capture(ctx, payment.FincodeOrderID, payment.FincodeAccessID, payment.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldStatus := payment.Status
	payment.Status = entity.PaymentStatusCaptured
	payment.CapturedAt = &now
	payment.UpdatedAt = now

	if err := s.commitTransition(ctx, payment, oldStatus, "payment_captured", now); err != nil {
		return nil, err
	}

	return payment, nil
}

// Cancel voids an authorization. Only authorized payments can be cancelled;
// a captured payment must go through Refund instead, the two are different
// remote operations even though the provider serves them from one endpoint.
func (s *PaymentService) Cancel(ctx context.Context, user User, orderID string) (*entity.Payment, error) {
	payment, err := s.findPayment(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !payment.CanCancel() {
		return nil, fmt.Errorf("%w: payment cannot be cancelled from %s", ErrInvalidStatus, payment.Status)
	}

	if err := s.gateway.Cancel(ctx, payment.FincodeOrderID, payment.FincodeAccessID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldStatus := payment.Status
	payment.Status = entity.PaymentStatusCancelled
	payment.CanceledAt = &now
	payment.UpdatedAt = now

	if err := s.commitTransition(ctx, payment, oldStatus, "payment_cancelled", now); err != nil {
		return nil, err
	}

	return payment, nil
}

type RefundResult struct {
	Refund          *entity.Refund
	Payment         *entity.Payment
	RemainingAmount int64
}

// Refund returns part or all of a captured payment. The refundable balance is
// validated before the gateway call and re-validated atomically at commit
// time, so two concurrent refunds can never jointly exceed the payment
// amount: one commits, the other gets a balance or conflict error.
func (s *PaymentService) Refund(ctx context.Context, user User, orderID string, amount int64, reason string) (*RefundResult, error) {
	payment, err := s.findPayment(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !payment.CanRefund() {
		return nil, fmt.Errorf("%w: only captured payments can be refunded", ErrInvalidStatus)
	}

	if amount == 0 {
		amount = payment.Amount
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: refund amount must be greater than 0", ErrInvalidAmount)
	}

	refunded, err := s.refundRepo.SumCompletedByPayment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	refundable := payment.Amount - refunded
	if amount > refundable {
		return nil, fmt.Errorf("%w: remaining amount is %d", ErrRefundExceedsBalance, refundable)
	}

	result, err := s.gateway.Refund(ctx, payment.FincodeOrderID, payment.FincodeAccessID, amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userID := user.ID
	refundID := result.RefundID
	refund := &entity.Refund{
		PaymentID:       payment.ID,
		ProcessedBy:     &userID,
		Amount:          amount,
		Status:          entity.RefundStatusCompleted,
		FincodeRefundID: &refundID,
		ProcessedAt:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if reason != "" {
		r := reason
		refund.Reason = &r
	}

	oldStatus := payment.Status
	if err := s.refundRepo.CreateCompleted(ctx, payment, refund); err != nil {
		switch {
		case errors.Is(err, repository.ErrRefundExceedsBalance):
			return nil, fmt.Errorf("%w: remaining amount changed during refund", ErrRefundExceedsBalance)
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, ErrConflict
		}
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "payment_refunded",
		OldStatus: &oldStatus,
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return &RefundResult{
		Refund:          refund,
		Payment:         payment,
		RemainingAmount: refundable - amount,
	}, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, user User) ([]*entity.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, user.ID)
}

func (s *PaymentService) FindPayment(ctx context.Context, user User, orderID string) (*entity.Payment, error) {
	return s.findPayment(ctx, user, orderID)
}

func (s *PaymentService) findPayment(ctx context.Context, user User, orderID string) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByOrderID(ctx, user.ID, orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) commitTransition(ctx context.Context, payment *entity.Payment, fromStatus, eventType string, now time.Time) error {
	if err := s.paymentRepo.UpdateFromStatus(ctx, payment, fromStatus); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return ErrConflict
		}
		return err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: eventType,
		OldStatus: &fromStatus,
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return nil
}
