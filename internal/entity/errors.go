package entity

import "errors"

var (
	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReviewNotAllowed    = errors.New("can only review completed reservations")
	ErrInvalidStatus       = errors.New("invalid reservation status")

	// Botpress errors
	ErrBotpressReservationNotFound = errors.New("botpress reservation not found")
	ErrBotpressUnavailable         = errors.New("botpress store unavailable")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with given email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden operation")
)
