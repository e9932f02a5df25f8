package domain

import "time"

// Staff is the assignment-relevant view of a studio employee.
// AssignedBookingID set implies Available == false.
type Staff struct {
	ID                string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string             `json:"name" gorm:"not null"`
	Email             string             `json:"email,omitempty"`
	Phone             string             `json:"phone,omitempty"`
	Specialization    string             `json:"specialization,omitempty"`
	Available         bool               `json:"available" gorm:"not null"`
	AssignedBookingID *string            `json:"assigned_booking_id,omitempty" gorm:"type:varchar(36)"`
	Slots             []AvailabilitySlot `json:"slots,omitempty" gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE"`
	Version           int64              `json:"version" gorm:"not null"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

// AvailabilitySlot is a dated availability flag of a staff member. Slots are
// scanned in Position order.
type AvailabilitySlot struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StaffID   string    `json:"staff_id" gorm:"type:varchar(36);index;not null"`
	Date      time.Time `json:"date" gorm:"not null"`
	Position  int       `json:"position" gorm:"not null"`
	Available bool      `json:"available" gorm:"not null"`
	BookingID *string   `json:"booking_id,omitempty" gorm:"type:varchar(36)"`
}

func (AvailabilitySlot) TableName() string { return "staff_availability_slots" }
