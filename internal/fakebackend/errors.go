package fakebackend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pribylovaa/ticket-booking-client/internal/models"
)

// Error — ошибка, которую обработчик отдаёт телом {code, message}.
type Error struct {
	Status   int
	Code     string
	Messages models.Messages
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(e.Messages, "; "))
}

func newError(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Messages: models.Messages{msg}}
}

var (
	ErrUserExists         = newError(http.StatusConflict, "USER_EXISTS", "Email already registered")
	ErrInvalidCredentials = newError(http.StatusUnauthorized, "AUTH_ERROR", "Invalid credentials")
	ErrInvalidRefresh     = newError(http.StatusUnauthorized, "AUTH_ERROR", "Invalid refresh token")
	ErrRefreshExpired     = newError(http.StatusUnauthorized, "AUTH_ERROR", "Refresh token expired")
	ErrAuthRequired       = newError(http.StatusUnauthorized, "AUTH_ERROR", "Full authentication is required")
	ErrTokenExpired       = newError(http.StatusUnauthorized, models.CodeTokenExpired, "Token has expired")
	ErrInvalidToken       = newError(http.StatusUnauthorized, "INVALID_TOKEN", "Authentication error")
	ErrInvalidBody        = newError(http.StatusBadRequest, "INVALID_REQUEST", "Request body is missing or invalid")
	ErrDepositNotFound    = newError(http.StatusNotFound, "DEPOSIT_NOT_FOUND", "Deposit not found")
	ErrDepositProcessed   = newError(http.StatusBadRequest, "DEPOSIT_ALREADY_PROCESSED", "deposit is already processed")
	ErrOldPassword        = newError(http.StatusBadRequest, "INCORRECT_OLD_PASSWORD", "Old password does not match")
	ErrRouteNotFound      = newError(http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
	ErrTicketNotFound     = newError(http.StatusBadRequest, "ILLEGAL_ARGUMENT", "Ticket not found")
	ErrNotEnoughTickets   = newError(http.StatusBadRequest, "ILLEGAL_ARGUMENT", "Not enough tickets available")
	ErrInsufficientFunds  = newError(http.StatusBadRequest, "ILLEGAL_ARGUMENT", "Insufficient balance")
	ErrBookingNotFound    = newError(http.StatusBadRequest, "ILLEGAL_ARGUMENT", "Booking not found")
	ErrForeignBooking     = newError(http.StatusForbidden, "ILLEGAL_STATE", "You can only cancel your own bookings")
	ErrBookingCanceled    = newError(http.StatusBadRequest, "ILLEGAL_STATE", "Booking is already canceled")
)

// validation собирает ошибки полей в ответ VALIDATION_ERROR
// ("field: message" на каждую). nil, если ошибок нет.
type validation struct {
	msgs models.Messages
}

func (v *validation) check(ok bool, field, msg string) {
	if !ok {
		v.msgs = append(v.msgs, field+": "+msg)
	}
}

func (v *validation) err() error {
	if len(v.msgs) == 0 {
		return nil
	}

	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Messages: v.msgs}
}
