package service

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a failure whose message is safe to show the client. Fields adds
// extra keys to the error body.
type Error struct {
	kind   error
	msg    string
	Fields map[string]interface{}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...interface{}) *Error {
	return newError(ErrBadRequest, format, args...)
}

func notFound(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

func (e *Error) with(key string, v interface{}) *Error {
	if e.Fields == nil {
		e.Fields = map[string]interface{}{}
	}
	e.Fields[key] = v
	return e
}

var (
	ErrProductNotFound     = notFound("Product not found")
	ErrProductUnavailable  = notFound("Product not found or inactive")
	ErrInvalidQuantity     = badRequest("Quantity must be greater than 0")
	ErrNotEnoughStock      = badRequest("Not enough stock available")
	ErrCartNotFound        = notFound("Cart not found")
	ErrItemNotInCart       = notFound("Item not found in cart")
	ErrCartEmpty           = badRequest("Cart is empty")
	ErrOrderNotFound       = notFound("Order not found")
	ErrOrderAccess         = newError(ErrForbidden, "Unauthorized")
	ErrInvalidStatus       = badRequest("Invalid status")
	ErrOrderCancelled      = newError(ErrConflict, "Cancelled orders cannot change status")
	ErrCouponCodeRequired  = badRequest("Coupon code is required")
	ErrCouponInvalid       = notFound("Invalid or expired coupon code")
	ErrCouponNotFound      = notFound("Coupon not found")
	ErrCouponExhausted     = badRequest("This coupon has reached its maximum usage limit")
	ErrCouponExists        = newError(ErrConflict, "Coupon code already exists")
	ErrArticleNotFound     = notFound("Article not found")
	ErrArticleUnpublished  = newError(ErrForbidden, "Access denied. Article not published.")
	ErrEmailExists         = badRequest("Email already exists")
	ErrUsernameExists      = badRequest("Username already exists")
	ErrPasswordMismatch    = badRequest("Passwords do not match")
	ErrInvalidAdminSecret  = newError(ErrForbidden, "Invalid admin secret key")
	ErrLoginIdentifier     = badRequest("Username or email is required.")
	ErrInvalidCredentials  = newError(ErrUnauthorized, "Invalid credentials.")
	ErrRefreshRequired     = badRequest("Refresh token is required.")
	ErrRefreshMissing      = newError(ErrUnauthorized, "Refresh token is required.")
	ErrInvalidRefreshToken = newError(ErrUnauthorized, "Invalid refresh token.")
	ErrEmailRequired       = badRequest("Email is required")
	ErrNoAccountForEmail   = notFound("No account found with that email")
	ErrResetFieldsRequired = badRequest("Token and password are required")
	ErrInvalidResetToken   = badRequest("Password reset token is invalid or has expired")
)
