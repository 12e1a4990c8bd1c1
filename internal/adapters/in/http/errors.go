package http

import (
	"errors"
	"net/http"

	"escrow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusOf maps the escrow error taxonomy onto HTTP status codes.
// Corrupted state is checked first because invariant violations may wrap
// ordinary validation errors.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrCorruptedState):
		return http.StatusInternalServerError
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorizedAccess):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidWorkOrderStatus),
		errors.Is(err, errs.ErrAlreadyReleased),
		errors.Is(err, errs.ErrEscrowDisputed),
		errors.Is(err, errs.ErrEscrowExpired):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrTransferFeeExceeded),
		errors.Is(err, errs.ErrDisputeAllocationMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidParameters),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an Error body. Server-side failures are logged and
// their details kept out of the response.
func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err,
		)
		return ctx.JSON(code, Error{Code: code, Message: http.StatusText(code)})
	}
	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
