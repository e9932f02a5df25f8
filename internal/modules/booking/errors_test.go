package booking

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photostudio/internal/domain"
	"photostudio/internal/modules/pricing"
	"photostudio/internal/modules/staff"
	"photostudio/internal/repository"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByClientID(ctx context.Context, clientID string) ([]domain.Booking, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByAssignedStaffID(ctx context.Context, staffID string) ([]domain.Booking, error) {
	args := m.Called(ctx, staffID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountActiveByDateRange(ctx context.Context, from, to time.Time, excludeID string) (int64, error) {
	args := m.Called(ctx, from, to, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) FindFiltered(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type stubConfigs struct{ cfg domain.BookingConfig }

func (s stubConfigs) Get(context.Context) (*domain.BookingConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

// passthroughTx runs fn directly and counts the day locks taken.
type passthroughTx struct{ locked int }

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (p *passthroughTx) LockDay(context.Context, time.Time) error {
	p.locked++
	return nil
}

func newMockedService(repo *MockBookingRepository, tx Transactor) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)

	prices := pricing.DefaultTable()
	return NewService(
		repo,
		nil,
		stubConfigs{cfg: domain.DefaultBookingConfig()},
		tx,
		NewValidator(prices, WithClock(func() time.Time { return baseNow }), WithLocation(time.UTC)),
		prices,
		staff.NewMatcher(staff.MatchSameDay, time.UTC),
		log,
	)
}

func TestService_Create_StoreFailure(t *testing.T) {
	repo := new(MockBookingRepository)
	tx := &passthroughTx{}
	svc := newMockedService(repo, tx)

	start := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 10, 23, 59, 59, 0, time.UTC)
	repo.On("CountActiveByDateRange", mock.Anything, start, end, "").Return(int64(0), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(errors.New("disk full"))

	_, err := svc.Create(context.Background(), validInput(day(10, 10)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.True(t, IsTransient(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, tx.locked)

	repo.AssertExpectations(t)
}

func TestService_Create_RejectedBeforeWrite(t *testing.T) {
	repo := new(MockBookingRepository)
	svc := newMockedService(repo, &passthroughTx{})

	repo.On("CountActiveByDateRange", mock.Anything, mock.Anything, mock.Anything, "").Return(int64(3), nil)

	_, err := svc.Create(context.Background(), validInput(day(10, 10)))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Cancel_Conflict(t *testing.T) {
	repo := new(MockBookingRepository)
	svc := newMockedService(repo, &passthroughTx{})

	b := &domain.Booking{ID: "b1", ClientID: "client-1", DateTime: day(10, 10), BookingStatus: domain.BookingUpcoming, PaymentStatus: domain.PaymentPending, Version: 4}
	repo.On("FindByID", mock.Anything, "b1").Return(b, nil)
	repo.On("Update", mock.Anything, b).Return(&pgconn.PgError{Code: "40001"})

	_, err := svc.Cancel(context.Background(), Actor{UserID: "client-1"}, "b1")
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.True(t, IsTransient(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", repository.ErrNotFound, ErrNotFound},
		{"stale version", repository.ErrStaleVersion, ErrConcurrencyConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, ErrConcurrencyConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrPersistence},
		{"already kinded", ErrRescheduleWindow, ErrRescheduleWindow},
		{"no availability", staff.ErrNoAvailability, ErrNoAvailability},
		{"forbidden", ErrForbidden, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}
	assert.NoError(t, classify(nil))
}
