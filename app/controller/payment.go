package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/loopnorth/ms-go-checkout/app/auth"
	"github.com/loopnorth/ms-go-checkout/app/factory"
	"github.com/loopnorth/ms-go-checkout/app/gateway"
	"github.com/loopnorth/ms-go-checkout/app/mapper"
	"github.com/loopnorth/ms-go-checkout/app/service"
	"github.com/loopnorth/ms-go-checkout/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) RegisterPayment(ctx echo.Context) error {
	req, err := types.NewRegisterPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.Register(ctx.Request().Context(), auth.CurrentUser(ctx), req.Amount)
	if err != nil {
		return c.writeServiceError(ctx, err, "Register payment failed")
	}

	return ctx.JSON(http.StatusCreated, &types.RegisterPaymentResponse{
		OrderID:   result.OrderID,
		AccessID:  result.AccessID,
		Amount:    result.Amount,
		PublicKey: result.PublicKey,
	})
}

func (c *PaymentController) ConfirmPayment(ctx echo.Context) error {
	req, err := types.NewPaymentActionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.Confirm(ctx.Request().Context(), auth.CurrentUser(ctx), req.OrderID)
	if err != nil {
		return c.writeServiceError(ctx, err, "Confirm payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) CapturePayment(ctx echo.Context) error {
	req, err := types.NewPaymentActionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.Capture(ctx.Request().Context(), auth.CurrentUser(ctx), req.OrderID)
	if err != nil {
		return c.writeServiceError(ctx, err, "Capture payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) CancelPayment(ctx echo.Context) error {
	req, err := types.NewPaymentActionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.Cancel(ctx.Request().Context(), auth.CurrentUser(ctx), req.OrderID)
	if err != nil {
		return c.writeServiceError(ctx, err, "Cancel payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) RefundPayment(ctx echo.Context) error {
	req, err := types.NewRefundPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.Refund(ctx.Request().Context(), auth.CurrentUser(ctx), req.OrderID, req.Amount, req.Reason)
	if err != nil {
		return c.writeServiceError(ctx, err, "Refund payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.RefundPaymentResponse{
		RefundID:        result.Refund.ID,
		OrderID:         result.Payment.FincodeOrderID,
		Amount:          result.Refund.Amount,
		Status:          result.Refund.Status,
		RemainingAmount: result.RemainingAmount,
	})
}

func (c *PaymentController) ListPayments(ctx echo.Context) error {
	items, err := c.paymentService.ListPayments(ctx.Request().Context(), auth.CurrentUser(ctx))
	if err != nil {
		return c.writeServiceError(ctx, err, "List payments failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{Payments: mapper.PaymentsToResponse(items)})
}

func (c *PaymentController) GetPayment(ctx echo.Context) error {
	req, err := types.NewPaymentActionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.FindPayment(ctx.Request().Context(), auth.CurrentUser(ctx), req.OrderID)
	if err != nil {
		return c.writeServiceError(ctx, err, "Get payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) writeServiceError(ctx echo.Context, err error, logMessage string) error {
	var gatewayErr *gateway.Error

	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrRefundExceedsBalance):
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentNotFound):
		return c.writeError(ctx, http.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrConflict):
		return c.writeError(ctx, http.StatusConflict, err.Error())
	case errors.As(err, &gatewayErr):
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(logMessage)
		return c.writeError(ctx, http.StatusBadGateway, gatewayErr.Message)
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(logMessage)
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *PaymentController) writeError(ctx echo.Context, status int, message string) error {
	return ctx.JSON(status, &types.ErrorResponse{Error: message})
}
