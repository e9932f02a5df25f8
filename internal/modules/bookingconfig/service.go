package bookingconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"photostudio/internal/domain"
	"photostudio/internal/repository"
)

var (
	ErrNotFound      = errors.New("booking configuration not found")
	ErrInvalidConfig = errors.New("invalid booking configuration")
	ErrConflict      = errors.New("booking configuration was modified concurrently")
)

// updateAttempts bounds how often a patch is re-applied after losing a race.
const updateAttempts = 5

type Repository interface {
	FindSingleton(ctx context.Context) (*domain.BookingConfig, error)
	ExistsSingleton(ctx context.Context) (bool, error)
	CreateIfAbsent(ctx context.Context, cfg *domain.BookingConfig) error
	Update(ctx context.Context, cfg *domain.BookingConfig) error
}

// Patch carries the fields to change; nil fields keep their stored value.
type Patch struct {
	MaxBookingsPerDay         *int     `json:"max_bookings_per_day"`
	MinAdvanceBookingDays     *int     `json:"min_advance_booking_days"`
	MaxAdvanceBookingDays     *int     `json:"max_advance_booking_days"`
	CancellationFeePercentage *float64 `json:"cancellation_fee_percentage"`
	RescheduleWindowHours     *int     `json:"reschedule_window_hours"`
	CancellationWindowHours   *int     `json:"cancellation_window_hours"`
	RescheduleLimitDays       *int     `json:"reschedule_limit_days"`
}

type Service struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

// EnsureDefault creates the singleton with default values if it does not
// exist yet. Safe to call more than once and from several processes.
func (s *Service) EnsureDefault(ctx context.Context) (*domain.BookingConfig, error) {
	exists, err := s.repo.ExistsSingleton(ctx)
	if err != nil {
		return nil, fmt.Errorf("check booking config: %w", err)
	}
	if !exists {
		cfg := domain.DefaultBookingConfig()
		if err := s.repo.CreateIfAbsent(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("create default booking config: %w", err)
		}
		s.log.Info("default booking config initialized")
	}
	return s.Get(ctx)
}

func (s *Service) Get(ctx context.Context) (*domain.BookingConfig, error) {
	cfg, err := s.repo.FindSingleton(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking config: %w", err)
	}
	return cfg, nil
}

// Update merges p into the stored config. The write is guarded by the
// version that was read; when a concurrent update wins, p is re-applied on
// top of the fresh row so neither patch is lost.
func (s *Service) Update(ctx context.Context, p Patch) (*domain.BookingConfig, error) {
	var cfg *domain.BookingConfig
	for attempt := 1; ; attempt++ {
		var err error
		cfg, err = s.Get(ctx)
		if err != nil {
			return nil, err
		}

		p.apply(cfg)
		if err := Check(cfg); err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return nil, fmt.Errorf("save booking config: %w", err)
		}
		if attempt == updateAttempts {
			return nil, fmt.Errorf("%w: gave up after %d attempts", ErrConflict, attempt)
		}
		s.log.WithField("attempt", attempt).Debug("booking config changed underneath, re-applying patch")
	}

	s.log.WithFields(logrus.Fields{
		"max_bookings_per_day":     cfg.MaxBookingsPerDay,
		"min_advance_booking_days": cfg.MinAdvanceBookingDays,
		"max_advance_booking_days": cfg.MaxAdvanceBookingDays,
	}).Info("booking config updated")
	return cfg, nil
}

func (p Patch) apply(cfg *domain.BookingConfig) {
	if p.MaxBookingsPerDay != nil {
		cfg.MaxBookingsPerDay = *p.MaxBookingsPerDay
	}
	if p.MinAdvanceBookingDays != nil {
		cfg.MinAdvanceBookingDays = *p.MinAdvanceBookingDays
	}
	if p.MaxAdvanceBookingDays != nil {
		cfg.MaxAdvanceBookingDays = *p.MaxAdvanceBookingDays
	}
	if p.CancellationFeePercentage != nil {
		cfg.CancellationFeePercentage = *p.CancellationFeePercentage
	}
	if p.RescheduleWindowHours != nil {
		cfg.RescheduleWindowHours = *p.RescheduleWindowHours
	}
	if p.CancellationWindowHours != nil {
		cfg.CancellationWindowHours = *p.CancellationWindowHours
	}
	if p.RescheduleLimitDays != nil {
		cfg.RescheduleLimitDays = *p.RescheduleLimitDays
	}
}

// Check rejects configurations the validation engine cannot enforce sensibly.
func Check(cfg *domain.BookingConfig) error {
	switch {
	case cfg.MaxBookingsPerDay < 1:
		return fmt.Errorf("%w: max_bookings_per_day must be >= 1", ErrInvalidConfig)
	case cfg.MinAdvanceBookingDays < 0 || cfg.MaxAdvanceBookingDays < 0:
		return fmt.Errorf("%w: advance booking days must be >= 0", ErrInvalidConfig)
	case cfg.MinAdvanceBookingDays > cfg.MaxAdvanceBookingDays:
		return fmt.Errorf("%w: min_advance_booking_days %d exceeds max_advance_booking_days %d",
			ErrInvalidConfig, cfg.MinAdvanceBookingDays, cfg.MaxAdvanceBookingDays)
	case cfg.CancellationFeePercentage < 0 || cfg.CancellationFeePercentage > 100:
		return fmt.Errorf("%w: cancellation_fee_percentage must be within [0, 100]", ErrInvalidConfig)
	case cfg.RescheduleWindowHours < 0 || cfg.CancellationWindowHours < 0 || cfg.RescheduleLimitDays < 0:
		return fmt.Errorf("%w: windows must be >= 0", ErrInvalidConfig)
	}
	return nil
}
