package repository

import (
	"context"
	"time"

	"photostudio/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingConfigRepository struct {
	db *gorm.DB
}

func NewBookingConfigRepository(db *gorm.DB) *BookingConfigRepository {
	return &BookingConfigRepository{db: db}
}

func (r *BookingConfigRepository) FindSingleton(ctx context.Context) (*domain.BookingConfig, error) {
	var cfg domain.BookingConfig
	err := conn(ctx, r.db).Where("id = ?", domain.DefaultBookingConfigID).First(&cfg).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (r *BookingConfigRepository) ExistsSingleton(ctx context.Context) (bool, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.BookingConfig{}).
		Where("id = ?", domain.DefaultBookingConfigID).
		Count(&cnt).Error
	return cnt > 0, err
}

// CreateIfAbsent inserts cfg unless the singleton row already exists.
func (r *BookingConfigRepository) CreateIfAbsent(ctx context.Context, cfg *domain.BookingConfig) error {
	cfg.ID = domain.DefaultBookingConfigID
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(cfg).Error
}

// Update writes the settings guarded by the version the caller read and
// returns ErrStaleVersion if another writer got there first.
func (r *BookingConfigRepository) Update(ctx context.Context, cfg *domain.BookingConfig) error {
	now := time.Now().UTC()

	tx := conn(ctx, r.db).Model(&domain.BookingConfig{}).
		Where("id = ? AND version = ?", domain.DefaultBookingConfigID, cfg.Version).
		Updates(map[string]any{
			"max_bookings_per_day":        cfg.MaxBookingsPerDay,
			"min_advance_booking_days":    cfg.MinAdvanceBookingDays,
			"max_advance_booking_days":    cfg.MaxAdvanceBookingDays,
			"cancellation_fee_percentage": cfg.CancellationFeePercentage,
			"reschedule_window_hours":     cfg.RescheduleWindowHours,
			"cancellation_window_hours":   cfg.CancellationWindowHours,
			"reschedule_limit_days":       cfg.RescheduleLimitDays,
			"version":                     gorm.Expr("version + 1"),
			"updated_at":                  now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	cfg.ID = domain.DefaultBookingConfigID
	cfg.Version++
	cfg.UpdatedAt = now
	return nil
}
