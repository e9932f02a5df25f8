package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"photostudio/internal/domain"
	"photostudio/internal/modules/pricing"
	"photostudio/internal/modules/staff"
	"photostudio/internal/repository"
)

type Service struct {
	bookings  BookingRepository
	staff     StaffRepository
	configs   ConfigProvider
	tx        Transactor
	validator *Validator
	prices    pricing.Table
	matcher   *staff.Matcher
	days      *dayLocks
	log       logrus.FieldLogger
}

func NewService(
	bookings BookingRepository,
	staffRepo StaffRepository,
	configs ConfigProvider,
	tx Transactor,
	validator *Validator,
	prices pricing.Table,
	matcher *staff.Matcher,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		bookings:  bookings,
		staff:     staffRepo,
		configs:   configs,
		tx:        tx,
		validator: validator,
		prices:    prices,
		matcher:   matcher,
		days:      newDayLocks(),
		log:       log,
	}
}

// Location is the time zone calendar days are evaluated in.
func (s *Service) Location() *time.Location { return s.validator.loc }

func (s *Service) Prices() pricing.Table { return s.prices }

// withDay holds the day lock for at and runs fn in a transaction that also
// holds the store-level lock for that day.
func (s *Service) withDay(ctx context.Context, at time.Time, fn func(ctx context.Context) error) error {
	start, _ := s.validator.DayBounds(at)
	unlock := s.days.Lock(start.Format("2006-01-02"))
	defer unlock()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.tx.LockDay(ctx, start); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func (s *Service) counter(ctx context.Context, excludeID string) DayCounter {
	return func(start, end time.Time) (int64, error) {
		return s.bookings.CountActiveByDateRange(ctx, start, end, excludeID)
	}
}

func (s *Service) Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	log := s.log.WithField("client_id", in.ClientID)
	log.Info("creating booking")

	b := &domain.Booking{
		ID:            uuid.NewString(),
		DateTime:      in.DateTime.Truncate(time.Second),
		ClientID:      in.ClientID,
		BookingStatus: domain.BookingUpcoming,
		PaymentStatus: domain.PaymentPending,
		PhoneNumber:   in.PhoneNumber,
		Email:         in.Email,
		Location:      in.Location,
		PackageName:   in.PackageName,
		Price:         in.Price,
	}

	err := s.withDay(ctx, b.DateTime, func(ctx context.Context) error {
		cfg, err := s.configs.Get(ctx)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateCreate(b, cfg, s.counter(ctx, "")); err != nil {
			return err
		}
		b.Price = s.prices.TotalPrice(b.Price, b.Location)
		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("booking creation rejected")
		return nil, err
	}

	log.WithFields(logrus.Fields{"booking_id": b.ID, "price": b.Price}).Info("booking created")
	return b, nil
}

// Actor is the caller of a client-facing operation. Admins may act on any
// booking, clients only on their own.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) authorize(b *domain.Booking) error {
	if a.Admin || (a.UserID != "" && a.UserID == b.ClientID) {
		return nil
	}
	return fmt.Errorf("%w: booking %s", ErrForbidden, b.ID)
}

func (s *Service) Reschedule(ctx context.Context, actor Actor, id string, newAt time.Time) (*domain.Booking, error) {
	log := s.log.WithFields(logrus.Fields{"booking_id": id, "date_time": newAt, "actor": actor.UserID})
	log.Info("rescheduling booking")

	newAt = newAt.Truncate(time.Second)
	var out *domain.Booking
	err := s.withDay(ctx, newAt, func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := actor.authorize(b); err != nil {
			return err
		}
		cfg, err := s.configs.Get(ctx)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateReschedule(b, newAt, cfg, s.counter(ctx, b.ID)); err != nil {
			return err
		}

		oldAt := b.DateTime
		b.DateTime = newAt
		if err := s.rematch(ctx, b, oldAt); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("booking reschedule rejected")
		return nil, err
	}

	log.Info("booking rescheduled")
	return out, nil
}

// Cancel marks the booking cancelled. The record is kept and any assigned
// staff member stays assigned until UnassignStaff is called.
func (s *Service) Cancel(ctx context.Context, actor Actor, id string) (*domain.Booking, error) {
	log := s.log.WithFields(logrus.Fields{"booking_id": id, "actor": actor.UserID})
	log.Info("cancelling booking")

	var out *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := actor.authorize(b); err != nil {
			return err
		}
		cfg, err := s.configs.Get(ctx)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateCancellation(b, cfg); err != nil {
			return err
		}

		b.BookingStatus = domain.BookingCancelled
		if b.PaymentStatus == domain.PaymentPaid {
			b.CancellationFee = cancellationFee(b.Price, cfg.CancellationFeePercentage)
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("booking cancellation rejected")
		return nil, err
	}

	if out.IsAssigned() {
		log.WithField("staff_id", *out.AssignedStaffID).Info("cancelled booking keeps its staff assignment")
	}
	log.Info("booking cancelled")
	return out, nil
}

func cancellationFee(price, percentage float64) float64 {
	return math.Round(price*percentage) / 100
}

// AssignStaff links staffID to the booking and claims the member's
// availability in one transaction. Re-assigning the same member is a no-op;
// a different member replaces the previous one.
func (s *Service) AssignStaff(ctx context.Context, bookingID, staffID string) (*domain.Booking, error) {
	log := s.log.WithFields(logrus.Fields{"booking_id": bookingID, "staff_id": staffID})
	log.Info("assigning staff")

	var out *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.BookingStatus.Terminal() {
			return fmt.Errorf("%w: cannot assign staff to a %s booking", ErrInvalidStatusTransition, b.BookingStatus)
		}
		if b.IsAssigned() && *b.AssignedStaffID == staffID {
			out = b
			return nil
		}
		if b.IsAssigned() {
			if err := s.release(ctx, b); err != nil {
				return err
			}
		}

		member, err := s.staff.FindByID(ctx, staffID)
		if err != nil {
			return err
		}
		slot, err := s.matcher.Claim(member, b.ID, b.DateTime)
		if err != nil {
			return err
		}
		if err := s.staff.Update(ctx, member); err != nil {
			return err
		}

		b.AssignedStaffID = &member.ID
		b.AssignedStaffName = &member.Name
		b.AssignedSlotID = nil
		if slot != nil {
			b.AssignedSlotID = &slot.ID
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("staff assignment rejected")
		return nil, err
	}

	log.Info("staff assigned")
	return out, nil
}

func (s *Service) UnassignStaff(ctx context.Context, bookingID string) (*domain.Booking, error) {
	log := s.log.WithField("booking_id", bookingID)
	log.Info("unassigning staff")

	var out *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsAssigned() {
			out = b
			return nil
		}
		if err := s.release(ctx, b); err != nil {
			return err
		}
		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("staff unassignment rejected")
		return nil, err
	}

	log.Info("staff unassigned")
	return out, nil
}

// rematch keeps a day-bound slot claim in step with a moved booking. The
// old slot is released and the same member is claimed again for the new
// date; without a free slot that day the booking ends up unassigned.
func (s *Service) rematch(ctx context.Context, b *domain.Booking, oldAt time.Time) error {
	if !b.IsAssigned() || b.AssignedSlotID == nil || !s.matcher.RequiresRematch(oldAt, b.DateTime) {
		return nil
	}

	staffID := *b.AssignedStaffID
	log := s.log.WithFields(logrus.Fields{"booking_id": b.ID, "staff_id": staffID})
	if err := s.release(ctx, b); err != nil {
		return err
	}

	member, err := s.staff.FindByID(ctx, staffID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	slot, err := s.matcher.Claim(member, b.ID, b.DateTime)
	if errors.Is(err, staff.ErrNoAvailability) {
		log.Warn("assigned staff has no slot on the new day, booking left unassigned")
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.staff.Update(ctx, member); err != nil {
		return err
	}

	b.AssignedStaffID = &member.ID
	b.AssignedStaffName = &member.Name
	if slot != nil {
		b.AssignedSlotID = &slot.ID
	}
	log.Info("staff assignment moved with booking")
	return nil
}

// release frees the member currently assigned to b and clears the booking
// side in memory; the caller persists b.
func (s *Service) release(ctx context.Context, b *domain.Booking) error {
	member, err := s.staff.FindByID(ctx, *b.AssignedStaffID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.WithFields(logrus.Fields{"booking_id": b.ID, "staff_id": *b.AssignedStaffID}).
			Warn("assigned staff member no longer exists")
	case err != nil:
		return err
	case member.AssignedBookingID != nil && *member.AssignedBookingID == b.ID:
		s.matcher.Release(member, b.AssignedSlotID)
		if err := s.staff.Update(ctx, member); err != nil {
			return err
		}
	}

	b.AssignedStaffID = nil
	b.AssignedStaffName = nil
	b.AssignedSlotID = nil
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func (s *Service) ListForClient(ctx context.Context, clientID string) ([]domain.Booking, error) {
	out, err := s.bookings.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, classify(err)
	}
	s.log.WithFields(logrus.Fields{"client_id": clientID, "count": len(out)}).Debug("bookings listed for client")
	return out, nil
}

func (s *Service) ListForStaff(ctx context.Context, staffID string) ([]domain.Booking, error) {
	out, err := s.bookings.FindByAssignedStaffID(ctx, staffID)
	if err != nil {
		return nil, classify(err)
	}
	s.log.WithFields(logrus.Fields{"staff_id": staffID, "count": len(out)}).Debug("bookings listed for staff")
	return out, nil
}

// List returns bookings matching every provided filter.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Booking, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrMalformedBooking, *f.Status)
	}
	if f.PaymentStatus != nil && !f.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrMalformedBooking, *f.PaymentStatus)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: date range start is after its end", ErrMalformedBooking)
	}

	out, err := s.bookings.FindFiltered(ctx, f)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// AdminUpdate applies the provided fields after validating each of them.
func (s *Service) AdminUpdate(ctx context.Context, id string, in AdminUpdateInput) (*domain.Booking, error) {
	log := s.log.WithField("booking_id", id)
	log.Info("updating booking")

	var out *domain.Booking
	apply := func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		cfg, err := s.configs.Get(ctx)
		if err != nil {
			return err
		}

		if in.DateTime != nil {
			at := in.DateTime.Truncate(time.Second)
			if err := s.validator.CheckNotInPast(at); err != nil {
				return err
			}
			if err := s.validator.CheckAdvanceWindow(at, cfg); err != nil {
				return err
			}
			if err := s.validator.checkCapacity(at, cfg, s.counter(ctx, b.ID)); err != nil {
				return err
			}
			b.DateTime = at
		}
		if in.BookingStatus != nil {
			next := *in.BookingStatus
			if !next.Valid() {
				return fmt.Errorf("%w: unknown booking status %q", ErrMalformedBooking, next)
			}
			if next != b.BookingStatus && !b.BookingStatus.CanTransitionTo(next) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.BookingStatus, next)
			}
			b.BookingStatus = next
		}
		if in.PaymentStatus != nil {
			if !in.PaymentStatus.Valid() {
				return fmt.Errorf("%w: unknown payment status %q", ErrMalformedBooking, *in.PaymentStatus)
			}
			b.PaymentStatus = *in.PaymentStatus
		}

		if err := s.bookings.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	}

	var err error
	if in.DateTime != nil {
		err = s.withDay(ctx, *in.DateTime, apply)
	} else {
		err = s.tx.WithinTransaction(ctx, apply)
	}
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("booking update rejected")
		return nil, err
	}

	log.Info("booking updated")
	return out, nil
}

// Delete removes a booking permanently; only cancelled bookings qualify.
func (s *Service) Delete(ctx context.Context, id string) error {
	log := s.log.WithField("booking_id", id)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.bookings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if b.BookingStatus != domain.BookingCancelled {
			return fmt.Errorf("%w: booking is %s", ErrNotDeletable, b.BookingStatus)
		}
		return s.bookings.DeleteByID(ctx, id)
	})
	if err != nil {
		err = classify(err)
		log.WithError(err).Warn("booking deletion rejected")
		return err
	}

	log.Info("booking deleted")
	return nil
}
