package service

import (
	"context"
	"errors"
	"time"

	"github.com/loopnorth/ms-go-checkout/app/entity"
	"github.com/loopnorth/ms-go-checkout/app/gateway"
	"github.com/loopnorth/ms-go-checkout/app/repository"
)

const defaultBatchSize = int32(100)

// RunReconcileBatch advances stale pending payments whose authoritative state
// moved on the provider side while no confirm call arrived. Transitions go
// through the same status-guarded update as the request path, so a racing
// request cannot be overwritten; a lost race is simply skipped.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	before := now.Add(-s.jobsCfg.ReconcileStaleAfter)
	items, err := s.paymentRepo.ListStaleForReconcile(ctx, before, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}

		tx, err := s.gateway.FindTransaction(ctx, payment.FincodeOrderID)
		if err != nil {
			var gatewayErr *gateway.Error
			if errors.As(err, &gatewayErr) {
				msg := gatewayErr.Message
				payment.ErrorMessage = &msg
				payment.UpdatedAt = now
				// Status is unchanged; only the error note is recorded.
				_ = s.paymentRepo.UpdateFromStatus(ctx, payment, payment.Status)
			}
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		newStatus := localStatusFor(tx.Status)
		if newStatus == "" || newStatus == payment.Status {
			continue
		}

		oldStatus := payment.Status
		payment.Status = newStatus
		switch newStatus {
		case entity.PaymentStatusAuthorized:
			payment.AuthorizedAt = &now
		case entity.PaymentStatusCaptured:
			payment.CapturedAt = &now
		case entity.PaymentStatusCancelled:
			payment.CanceledAt = &now
		}
		payment.UpdatedAt = now

		if err := s.paymentRepo.UpdateFromStatus(ctx, payment, oldStatus); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				continue
			}
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
			PaymentID: payment.ID,
			EventType: "payment_reconciled",
			OldStatus: &oldStatus,
			NewStatus: newStatus,
			CreatedAt: now,
		})
	}

	return firstErr
}

func localStatusFor(transactionStatus string) string {
	switch transactionStatus {
	case gateway.TransactionAuthorized:
		return entity.PaymentStatusAuthorized
	case gateway.TransactionCaptured:
		return entity.PaymentStatusCaptured
	case gateway.TransactionCanceled:
		return entity.PaymentStatusCancelled
	default:
		return ""
	}
}

func (s *PaymentService) batchSize() int32 {
	if s.jobsCfg.JobBatchSize > 0 {
		return s.jobsCfg.JobBatchSize
	}
	return defaultBatchSize
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
