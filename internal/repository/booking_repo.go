package repository

import (
	"context"
	"time"

	"photostudio/internal/domain"

	"gorm.io/gorm"
)

// BookingFilter composes as a conjunction; nil fields are ignored.
type BookingFilter struct {
	Status        *domain.BookingStatus
	PaymentStatus *domain.PaymentStatus
	From          *time.Time
	To            *time.Time
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	b.DateTime = b.DateTime.UTC()
	b.Version = 1
	return conn(ctx, r.db).Create(b).Error
}

// Update writes every mutable column, guarded by the version the caller read.
// A lost race returns ErrStaleVersion and leaves the row untouched.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	b.DateTime = b.DateTime.UTC()
	now := time.Now().UTC()

	tx := conn(ctx, r.db).Model(&domain.Booking{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"date_time":           b.DateTime,
			"booking_status":      string(b.BookingStatus),
			"payment_status":      string(b.PaymentStatus),
			"price":               b.Price,
			"cancellation_fee":    b.CancellationFee,
			"assigned_staff_id":   b.AssignedStaffID,
			"assigned_staff_name": b.AssignedStaffName,
			"assigned_slot_id":    b.AssignedSlotID,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	b.Version++
	b.UpdatedAt = now
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := conn(ctx, r.db).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingRepository) FindByClientID(ctx context.Context, clientID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := conn(ctx, r.db).
		Where("client_id = ?", clientID).
		Order("date_time").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) FindByAssignedStaffID(ctx context.Context, staffID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := conn(ctx, r.db).
		Where("assigned_staff_id = ?", staffID).
		Order("date_time").
		Find(&out).Error
	return out, err
}

// CountActiveByDateRange counts non-cancelled bookings in [from, to],
// optionally ignoring one booking (the one being moved).
func (r *BookingRepository) CountActiveByDateRange(ctx context.Context, from, to time.Time, excludeID string) (int64, error) {
	var cnt int64
	q := conn(ctx, r.db).Model(&domain.Booking{}).
		Where("date_time BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Where("booking_status <> ?", string(domain.BookingCancelled))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *BookingRepository) FindFiltered(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := conn(ctx, r.db).Model(&domain.Booking{})
	if f.Status != nil {
		q = q.Where("booking_status = ?", string(*f.Status))
	}
	if f.PaymentStatus != nil {
		q = q.Where("payment_status = ?", string(*f.PaymentStatus))
	}
	if f.From != nil {
		q = q.Where("date_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date_time <= ?", f.To.UTC())
	}

	var out []domain.Booking
	if err := q.Order("date_time").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingRepository) DeleteByID(ctx context.Context, id string) error {
	tx := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Booking{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
