package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/validate"
)

const (
	msgSessionExpired  = "Verification session expired"
	msgInvalidCode     = "Invalid verification code"
	msgTooManyAttempts = "Too many attempts. Please request a new code."
	msgDispatch        = "Failed to send verification code. Please try again."
	msgInternal        = "Internal server error"
)

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}

// respondError maps a service error onto a status and client-safe message.
// Anything it cannot classify is logged and answered with a generic 500.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, msg := httpError(err)
	if status == http.StatusInternalServerError && msg == msgInternal {
		log.Error("unhandled request error", zap.Error(err))
	}
	writeError(w, status, msg)
}

func httpError(err error) (int, string) {
	var stock *domain.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		return http.StatusBadRequest, "Insufficient stock for " + stock.ProductName
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, "Insufficient stock"
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, clientMessage(err, domain.ErrBadRequest)
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusBadRequest, msgSessionExpired
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest, msgInvalidCode
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusBadRequest, msgTooManyAttempts
	case errors.Is(err, domain.ErrVerificationRequired):
		return http.StatusForbidden, clientMessage(err, domain.ErrVerificationRequired)
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Order number already exists"
	case errors.Is(err, domain.ErrDispatch):
		return http.StatusInternalServerError, msgDispatch
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// clientMessage strips the sentinel suffix from a wrapped error and
// capitalises the remainder, e.g. "email or phone required: bad request"
// becomes "Email or phone required".
func clientMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" || msg == sentinel.Error() {
		msg = sentinel.Error()
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}
