package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/loopnorth/ms-go-checkout/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists")
	// ErrStaleStatus means a guarded update found the row in a different
	// status than the caller observed. The caller lost a race.
	ErrStaleStatus = errors.New("payment status changed concurrently")
)

const paymentColumns = `
	id, user_id, order_ref, fincode_order_id, fincode_access_id,
	amount, tax, status, customer_email,
	authorized_at, captured_at, canceled_at, refunded_at,
	error_message, created_at, updated_at
`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			user_id, order_ref, fincode_order_id, fincode_access_id,
			amount, tax, status, customer_email,
			authorized_at, captured_at, canceled_at, refunded_at,
			error_message, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.UserID,
		nullableUint64Value(payment.OrderRef),
		payment.FincodeOrderID,
		payment.FincodeAccessID,
		payment.Amount,
		payment.Tax,
		payment.Status,
		nullableStringValue(payment.CustomerEmail),
		nullableTimeValue(payment.AuthorizedAt),
		nullableTimeValue(payment.CapturedAt),
		nullableTimeValue(payment.CanceledAt),
		nullableTimeValue(payment.RefundedAt),
		nullableStringValue(payment.ErrorMessage),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

// UpdateFromStatus commits a status transition only when the row is still in
// fromStatus. A concurrent transition makes this a no-op and returns
// ErrStaleStatus, so two racing requests can never both succeed.
func (r *PaymentRepository) UpdateFromStatus(ctx context.Context, payment *entity.Payment, fromStatus string) error {
	query := `
		UPDATE payments SET
			status = ?,
			authorized_at = ?,
			captured_at = ?,
			canceled_at = ?,
			refunded_at = ?,
			error_message = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.Status,
		nullableTimeValue(payment.AuthorizedAt),
		nullableTimeValue(payment.CapturedAt),
		nullableTimeValue(payment.CanceledAt),
		nullableTimeValue(payment.RefundedAt),
		nullableStringValue(payment.ErrorMessage),
		payment.UpdatedAt,
		payment.ID,
		fromStatus,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleStatus
	}

	return nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, userID uint64, fincodeOrderID string) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = ? AND fincode_order_id = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, userID, fincodeOrderID), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// ListStaleForReconcile returns pending payments whose local state has not
// moved for a while and may have advanced on the provider side.
func (r *PaymentRepository) ListStaleForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = ?
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.PaymentStatusPending, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var orderRef sql.NullInt64
	var customerEmail sql.NullString
	var authorizedAt sql.NullTime
	var capturedAt sql.NullTime
	var canceledAt sql.NullTime
	var refundedAt sql.NullTime
	var errorMessage sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.UserID,
		&orderRef,
		&payment.FincodeOrderID,
		&payment.FincodeAccessID,
		&payment.Amount,
		&payment.Tax,
		&payment.Status,
		&customerEmail,
		&authorizedAt,
		&capturedAt,
		&canceledAt,
		&refundedAt,
		&errorMessage,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.OrderRef = uint64PtrFromNull(orderRef)
	payment.CustomerEmail = stringPtrFromNull(customerEmail)
	payment.AuthorizedAt = timePtrFromNull(authorizedAt)
	payment.CapturedAt = timePtrFromNull(capturedAt)
	payment.CanceledAt = timePtrFromNull(canceledAt)
	payment.RefundedAt = timePtrFromNull(refundedAt)
	payment.ErrorMessage = stringPtrFromNull(errorMessage)

	return nil
}
