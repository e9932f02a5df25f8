package domain

import "time"

type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "upcoming"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingUpcoming, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransitionTo allows upcoming -> {completed, cancelled} only.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingUpcoming && next.Terminal()
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DateTime      time.Time     `json:"date_time" gorm:"index;not null"`
	ClientID      string        `json:"client_id" gorm:"index;not null" validate:"notblank"`
	BookingStatus BookingStatus `json:"booking_status" gorm:"type:varchar(16);index;not null" validate:"oneof=upcoming completed cancelled"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(16);index;not null" validate:"oneof=pending paid refunded"`
	PhoneNumber   string        `json:"phone_number" gorm:"not null" validate:"phone"`
	Email         string        `json:"email" gorm:"index;not null" validate:"studio_email"`
	Location      string        `json:"location" gorm:"not null" validate:"studio_location"`
	PackageName   string        `json:"package_name" gorm:"not null" validate:"notblank"`
	Price         float64       `json:"price" gorm:"not null" validate:"gt=0"`

	// Filled on cancellation of a paid booking.
	CancellationFee float64 `json:"cancellation_fee,omitempty"`

	AssignedStaffID   *string `json:"assigned_staff_id,omitempty" gorm:"type:varchar(36);index"`
	AssignedStaffName *string `json:"assigned_staff_name,omitempty"`
	AssignedSlotID    *string `json:"-" gorm:"type:varchar(36)"`

	Version   int64     `json:"version" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) IsAssigned() bool {
	return b.AssignedStaffID != nil && *b.AssignedStaffID != ""
}
