package booking

import (
	"context"
	"time"

	"photostudio/internal/domain"
	"photostudio/internal/repository"
)

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	Update(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByClientID(ctx context.Context, clientID string) ([]domain.Booking, error)
	FindByAssignedStaffID(ctx context.Context, staffID string) ([]domain.Booking, error)
	CountActiveByDateRange(ctx context.Context, from, to time.Time, excludeID string) (int64, error)
	FindFiltered(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	DeleteByID(ctx context.Context, id string) error
}

// StaffRepository is the part of the staff store needed to mirror assignments.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
	Update(ctx context.Context, s *domain.Staff) error
}

type ConfigProvider interface {
	Get(ctx context.Context) (*domain.BookingConfig, error)
}

// Transactor groups store calls into one atomic unit; LockDay serializes
// capacity checks for a day across processes sharing the store.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	LockDay(ctx context.Context, day time.Time) error
}
