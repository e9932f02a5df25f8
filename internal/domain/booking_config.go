package domain

import "time"

// DefaultBookingConfigID is the primary key of the singleton config row.
const DefaultBookingConfigID = "default"

type BookingConfig struct {
	ID                        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MaxBookingsPerDay         int       `json:"max_bookings_per_day" gorm:"not null"`
	MinAdvanceBookingDays     int       `json:"min_advance_booking_days" gorm:"not null"`
	MaxAdvanceBookingDays     int       `json:"max_advance_booking_days" gorm:"not null"`
	CancellationFeePercentage float64   `json:"cancellation_fee_percentage" gorm:"not null"`
	RescheduleWindowHours     int       `json:"reschedule_window_hours" gorm:"not null"`
	CancellationWindowHours   int       `json:"cancellation_window_hours" gorm:"not null"`
	RescheduleLimitDays       int       `json:"reschedule_limit_days" gorm:"not null"`
	Version                   int64     `json:"version" gorm:"not null;default:1"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

func (BookingConfig) TableName() string { return "booking_configs" }

func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		ID:                        DefaultBookingConfigID,
		MaxBookingsPerDay:         3,
		MinAdvanceBookingDays:     1,
		MaxAdvanceBookingDays:     30,
		CancellationFeePercentage: 20.0,
		RescheduleWindowHours:     48,
		CancellationWindowHours:   24,
		RescheduleLimitDays:       2,
		Version:                   1,
	}
}
