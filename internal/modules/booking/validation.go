package booking

import (
	"fmt"
	"strings"
	"time"

	"photostudio/internal/domain"
	"photostudio/internal/modules/pricing"
	"photostudio/internal/pkg/validator"
)

// DayCounter returns the number of active bookings within [start, end].
type DayCounter func(start, end time.Time) (int64, error)

// Validator checks booking requests against the business rules. It keeps no
// state besides its clock, time zone and location table.
type Validator struct {
	now             func() time.Time
	loc             *time.Location
	prices          pricing.Table
	strictLocations bool
}

type ValidatorOption func(*Validator)

func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the time zone that defines calendar days.
func WithLocation(loc *time.Location) ValidatorOption {
	return func(v *Validator) { v.loc = loc }
}

// WithStrictLocations rejects locations missing from the pricing table
// instead of pricing them with the fallback multiplier.
func WithStrictLocations(strict bool) ValidatorOption {
	return func(v *Validator) { v.strictLocations = strict }
}

func NewValidator(prices pricing.Table, opts ...ValidatorOption) *Validator {
	v := &Validator{
		now:    time.Now,
		loc:    time.Local,
		prices: prices,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Validator) Now() time.Time { return v.now() }

// DayBounds returns 00:00:00 and 23:59:59 of the calendar day containing t.
func (v *Validator) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(v.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, v.loc)
	end := time.Date(y, m, d, 23, 59, 59, 0, v.loc)
	return start, end
}

// ValidateCreate runs the creation checks in order and returns the first
// violation: location, capacity, advance window, field structure. A past
// instant is reported as ErrPastDate before anything else, since it would
// otherwise surface as an advance window violation. count is only called
// once the location check passed.
func (v *Validator) ValidateCreate(b *domain.Booking, cfg *domain.BookingConfig, count DayCounter) error {
	if err := v.CheckNotInPast(b.DateTime); err != nil {
		return err
	}
	if err := v.CheckLocation(b.Location); err != nil {
		return err
	}
	if err := v.checkCapacity(b.DateTime, cfg, count); err != nil {
		return err
	}
	if err := v.CheckAdvanceWindow(b.DateTime, cfg); err != nil {
		return err
	}
	return v.CheckFields(b)
}

// ValidateReschedule checks the new date of an existing booking, then the
// reschedule window measured against its current date.
func (v *Validator) ValidateReschedule(current *domain.Booking, newAt time.Time, cfg *domain.BookingConfig, count DayCounter) error {
	if current.BookingStatus.Terminal() {
		return fmt.Errorf("%w: booking is %s", ErrInvalidStatusTransition, current.BookingStatus)
	}
	if err := v.CheckNotInPast(newAt); err != nil {
		return err
	}
	if err := v.checkCapacity(newAt, cfg, count); err != nil {
		return err
	}
	if err := v.CheckAdvanceWindow(newAt, cfg); err != nil {
		return err
	}
	return v.CheckRescheduleWindow(current.DateTime, cfg)
}

func (v *Validator) ValidateCancellation(current *domain.Booking, cfg *domain.BookingConfig) error {
	if current.BookingStatus.Terminal() {
		return fmt.Errorf("%w: booking is %s", ErrInvalidStatusTransition, current.BookingStatus)
	}
	return v.CheckCancellationWindow(current.DateTime, cfg)
}

func (v *Validator) CheckLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidLocation)
	}
	if v.strictLocations {
		if !v.prices.IsKnown(location) {
			return fmt.Errorf("%w: %q is not a served location", ErrInvalidLocation, location)
		}
		return nil
	}
	if !validator.IsLocation(location) {
		return fmt.Errorf("%w: %q must be 5-100 letters, digits, spaces, commas, dots or hyphens", ErrInvalidLocation, location)
	}
	return nil
}

func (v *Validator) checkCapacity(at time.Time, cfg *domain.BookingConfig, count DayCounter) error {
	start, end := v.DayBounds(at)
	n, err := count(start, end)
	if err != nil {
		return err
	}
	return v.CheckCapacity(n, cfg)
}

// CheckCapacity fails when a day already holds maxBookingsPerDay bookings.
func (v *Validator) CheckCapacity(existing int64, cfg *domain.BookingConfig) error {
	if existing >= int64(cfg.MaxBookingsPerDay) {
		return fmt.Errorf("%w: cannot create more than %d bookings per day", ErrCapacityExceeded, cfg.MaxBookingsPerDay)
	}
	return nil
}

// DaysInAdvance is the number of calendar days between today and at,
// ignoring the time of day.
func (v *Validator) DaysInAdvance(at time.Time) int {
	ny, nm, nd := v.now().In(v.loc).Date()
	ay, am, ad := at.In(v.loc).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	target := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}

func (v *Validator) CheckAdvanceWindow(at time.Time, cfg *domain.BookingConfig) error {
	days := v.DaysInAdvance(at)
	if days < cfg.MinAdvanceBookingDays {
		return fmt.Errorf("%w: bookings must be made at least %d days in advance", ErrAdvanceWindow, cfg.MinAdvanceBookingDays)
	}
	if days > cfg.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: bookings cannot be made more than %d days in advance", ErrAdvanceWindow, cfg.MaxAdvanceBookingDays)
	}
	return nil
}

func (v *Validator) CheckNotInPast(at time.Time) error {
	if !at.After(v.now()) {
		return fmt.Errorf("%w: %s", ErrPastDate, at.In(v.loc).Format(time.RFC3339))
	}
	return nil
}

func (v *Validator) CheckFields(b *domain.Booking) error {
	if err := validator.First(b); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBooking, err)
	}
	return nil
}

// hoursUntil truncates toward zero, so 47h59m counts as 47 hours.
func (v *Validator) hoursUntil(at time.Time) int64 {
	return int64(at.Sub(v.now()) / time.Hour)
}

func (v *Validator) CheckRescheduleWindow(current time.Time, cfg *domain.BookingConfig) error {
	if v.hoursUntil(current) <= int64(cfg.RescheduleWindowHours) {
		return fmt.Errorf("%w: cannot reschedule within %d hours of the booking", ErrRescheduleWindow, cfg.RescheduleWindowHours)
	}
	return nil
}

func (v *Validator) CheckCancellationWindow(current time.Time, cfg *domain.BookingConfig) error {
	if v.hoursUntil(current) <= int64(cfg.CancellationWindowHours) {
		return fmt.Errorf("%w: cannot cancel within %d hours of the booking", ErrCancellationWindow, cfg.CancellationWindowHours)
	}
	return nil
}
