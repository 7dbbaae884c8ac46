package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/loopnorth/ms-go-checkout/app/entity"
)

// ErrRefundExceedsBalance means the commit-time balance recheck found the
// refund would push the completed total past the payment amount.
var ErrRefundExceedsBalance = errors.New("refund exceeds refundable balance")

type RefundRepository struct {
	db TxBeginner
}

func NewRefundRepository(db TxBeginner) *RefundRepository {
	return &RefundRepository{db: db}
}

// SumCompletedByPayment returns the total of completed refund amounts for
// the payment. The payment's refundable balance is amount minus this sum.
func (r *RefundRepository) SumCompletedByPayment(ctx context.Context, paymentID uint64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM refunds
		WHERE payment_id = ? AND status = ?
	`

	var total int64
	if err := r.db.QueryRowContext(ctx, query, paymentID, entity.RefundStatusCompleted).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RefundRepository) ListByPayment(ctx context.Context, paymentID uint64) ([]*entity.Refund, error) {
	query := `
		SELECT id, payment_id, processed_by, amount, reason, status,
			fincode_refund_id, processed_at, created_at, updated_at
		FROM refunds
		WHERE payment_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refunds := make([]*entity.Refund, 0)
	for rows.Next() {
		item := &entity.Refund{}
		if err := scanRefund(rows, item); err != nil {
			return nil, err
		}
		refunds = append(refunds, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refunds, nil
}

// CreateCompleted inserts a completed refund and moves the payment to its
// post-refund status in one transaction. The refundable balance is recomputed
// under a row lock on the payment, so the validation the service did before
// the gateway call is repeated at the moment of commit; a concurrent refund
// that landed in between makes this fail with ErrRefundExceedsBalance instead
// of over-refunding. No gateway call happens inside this transaction.
func (r *RefundRepository) CreateCompleted(ctx context.Context, payment *entity.Payment, refund *entity.Refund) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var amount int64
	var status string
	lockQuery := `SELECT amount, status FROM payments WHERE id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, payment.ID).Scan(&amount, &status); err != nil {
		if err == sql.ErrNoRows {
			return ErrPaymentNotFound
		}
		return err
	}
	if status != entity.PaymentStatusCaptured && status != entity.PaymentStatusPartiallyRefunded {
		return ErrStaleStatus
	}

	var refunded int64
	sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE payment_id = ? AND status = ?`
	if err := tx.QueryRowContext(ctx, sumQuery, payment.ID, entity.RefundStatusCompleted).Scan(&refunded); err != nil {
		return err
	}
	if refund.Amount > amount-refunded {
		return ErrRefundExceedsBalance
	}

	insertQuery := `
		INSERT INTO refunds (
			payment_id, processed_by, amount, reason, status,
			fincode_refund_id, processed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, insertQuery,
		refund.PaymentID,
		nullableUint64Value(refund.ProcessedBy),
		refund.Amount,
		nullableStringValue(refund.Reason),
		refund.Status,
		nullableStringValue(refund.FincodeRefundID),
		nullableTimeValue(refund.ProcessedAt),
		refund.CreatedAt,
		refund.UpdatedAt,
	)
	if err != nil {
		return err
	}
	refundID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	newStatus := entity.PaymentStatusPartiallyRefunded
	if refunded+refund.Amount >= amount {
		newStatus = entity.PaymentStatusRefunded
	}

	now := refund.UpdatedAt
	updateQuery := `UPDATE payments SET status = ?, refunded_at = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, updateQuery, newStatus, now, now, payment.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	refund.ID = uint64(refundID)
	payment.Status = newStatus
	refundedAt := now
	payment.RefundedAt = &refundedAt
	payment.UpdatedAt = now
	return nil
}

func scanRefund(scan rowScanner, refund *entity.Refund) error {
	var processedBy sql.NullInt64
	var reason sql.NullString
	var fincodeRefundID sql.NullString
	var processedAt sql.NullTime

	err := scan.Scan(
		&refund.ID,
		&refund.PaymentID,
		&processedBy,
		&refund.Amount,
		&reason,
		&refund.Status,
		&fincodeRefundID,
		&processedAt,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return err
	}

	refund.ProcessedBy = uint64PtrFromNull(processedBy)
	refund.Reason = stringPtrFromNull(reason)
	refund.FincodeRefundID = stringPtrFromNull(fincodeRefundID)
	refund.ProcessedAt = timePtrFromNull(processedAt)

	return nil
}
