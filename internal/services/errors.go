package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrOutOfRange              = errors.New("outside office radius")
	ErrVerificationFailed      = errors.New("face verification failed")
	ErrAlreadyCheckedIn        = errors.New("already checked in today")
	ErrAlreadyCheckedOut       = errors.New("already checked out today")
	ErrNotCheckedIn            = errors.New("not checked in today")
	ErrCollaboratorUnavailable = errors.New("dependent service unavailable")

	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrLeaveProcessed     = errors.New("leave already processed")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// OutOfRangeError matches ErrOutOfRange.
type OutOfRangeError struct {
	Distance float64
	Radius   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("outside office radius: distance %.0fm, radius %.0fm", e.Distance, e.Radius)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// VerificationFailedError matches ErrVerificationFailed.
type VerificationFailedError struct {
	Confidence float64
	Message    string
}

func (e *VerificationFailedError) Error() string {
	if e.Message != "" {
		return "face verification failed: " + e.Message
	}
	return "face verification failed"
}

func (e *VerificationFailedError) Is(target error) bool { return target == ErrVerificationFailed }
