package booking

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"photostudio/internal/modules/bookingconfig"
	"photostudio/internal/modules/staff"
	"photostudio/internal/repository"
)

// Validation kinds. They are detected before any write and never transient.
var (
	ErrMalformedBooking   = errors.New("invalid booking data")
	ErrInvalidLocation    = errors.New("invalid location provided")
	ErrCapacityExceeded   = errors.New("daily booking capacity exceeded")
	ErrAdvanceWindow      = errors.New("booking date outside the advance booking window")
	ErrPastDate           = errors.New("cannot book a past date/time")
	ErrRescheduleWindow   = errors.New("booking is too close to be rescheduled")
	ErrCancellationWindow = errors.New("booking is too close to be cancelled")

	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
	ErrNotDeletable            = errors.New("only cancelled bookings can be deleted")
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("booking belongs to another client")
	ErrNoAvailability = staff.ErrNoAvailability
)

// Transient kinds; the caller may retry the whole operation.
var (
	ErrPersistence         = errors.New("booking store failure")
	ErrConcurrencyConflict = errors.New("booking was modified concurrently")
)

var validationKinds = []error{
	ErrMalformedBooking,
	ErrInvalidLocation,
	ErrCapacityExceeded,
	ErrAdvanceWindow,
	ErrPastDate,
	ErrRescheduleWindow,
	ErrCancellationWindow,
	ErrInvalidStatusTransition,
	ErrNotDeletable,
}

var domainKinds = append(append([]error{}, validationKinds...),
	ErrNotFound,
	ErrForbidden,
	ErrNoAvailability,
	ErrPersistence,
	ErrConcurrencyConflict,
)

// IsValidation reports whether err is a rule violation rather than a lookup
// or store failure.
func IsValidation(err error) bool {
	for _, kind := range validationKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsTransient reports whether retrying the whole operation may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrConcurrencyConflict)
}

// classify maps store-layer errors onto the booking error kinds, leaving
// errors that already carry a kind untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainKinds {
		if errors.Is(err, kind) {
			return err
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, bookingconfig.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrStaleVersion), isSerializationFailure(err):
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
