package availability

import (
	"errors"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/timezone"
)

var (
	// ErrInvalidDateIdentifier is returned when the start day is not a real YYYYMMDD date.
	ErrInvalidDateIdentifier = errors.New("invalid date identifier")
	// ErrInvalidParameter is returned for non-positive durations or intervals and negative day counts.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// IsValidationError reports whether err was caused by the caller's input.
func IsValidationError(err error) bool {
	return errors.Is(err, timezone.ErrInvalidTimezone) ||
		errors.Is(err, ErrInvalidDateIdentifier) ||
		errors.Is(err, ErrInvalidParameter)
}
