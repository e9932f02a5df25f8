package repository

import (
	"context"
	"time"

	"photostudio/internal/domain"

	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, s *domain.Staff) error {
	s.Version = 1
	return conn(ctx, r.db).Create(s).Error
}

// FindByID loads the staff member with its availability slots in scan order.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	var s domain.Staff
	err := conn(ctx, r.db).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Update persists availability and assignment of the member and of all its
// loaded slots under a version check.
func (r *StaffRepository) Update(ctx context.Context, s *domain.Staff) error {
	db := conn(ctx, r.db)
	now := time.Now().UTC()

	tx := db.Model(&domain.Staff{}).
		Where("id = ? AND version = ?", s.ID, s.Version).
		Updates(map[string]any{
			"available":           s.Available,
			"assigned_booking_id": s.AssignedBookingID,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	for _, slot := range s.Slots {
		err := db.Model(&domain.AvailabilitySlot{}).
			Where("id = ?", slot.ID).
			Updates(map[string]any{
				"available":  slot.Available,
				"booking_id": slot.BookingID,
			}).Error
		if err != nil {
			return err
		}
	}

	s.Version++
	s.UpdatedAt = now
	return nil
}

// AppendSlots adds slots after the member's existing ones, keeping insertion order.
func (r *StaffRepository) AppendSlots(ctx context.Context, staffID string, slots []domain.AvailabilitySlot) error {
	db := conn(ctx, r.db)

	var next int
	row := db.Model(&domain.AvailabilitySlot{}).
		Where("staff_id = ?", staffID).
		Select("COALESCE(MAX(position), -1) + 1").
		Row()
	if err := row.Scan(&next); err != nil {
		return err
	}

	for i := range slots {
		slots[i].StaffID = staffID
		slots[i].Position = next + i
		slots[i].Date = slots[i].Date.UTC()
	}
	if len(slots) == 0 {
		return nil
	}
	return db.Create(&slots).Error
}
