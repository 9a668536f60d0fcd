package models

import "errors"

var (
	ErrInvalidAmount           = errors.New("Amount must be greater than zero")
	ErrInsufficientFunds       = errors.New("Insufficient available funds in pool")
	ErrUnknownReservation      = errors.New("Reservation not found in pool")
	ErrPoolNotActive           = errors.New("Pool is not active")
	ErrPoolClosed              = errors.New("Pool is closed")
	ErrOutstandingReservations = errors.New("Pool has outstanding reservations")
	ErrInvalidTransition       = errors.New("Invalid status transition")
)
