package mapper

import (
	"time"

	"github.com/loopnorth/ms-go-checkout/app/entity"
	"github.com/loopnorth/ms-go-checkout/app/types"
)

func PaymentToResponse(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		ID:            item.ID,
		OrderID:       item.FincodeOrderID,
		AccessID:      item.FincodeAccessID,
		Amount:        item.Amount,
		Tax:           item.Tax,
		Status:        item.Status,
		CustomerEmail: derefString(item.CustomerEmail),
		AuthorizedAt:  formatTime(item.AuthorizedAt),
		CapturedAt:    formatTime(item.CapturedAt),
		CanceledAt:    formatTime(item.CanceledAt),
		RefundedAt:    formatTime(item.RefundedAt),
		ErrorMessage:  derefString(item.ErrorMessage),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentsToResponse(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToResponse(item))
	}
	return result
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
