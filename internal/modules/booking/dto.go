package booking

import (
	"fmt"
	"strings"
	"time"

	"photostudio/internal/domain"
	"photostudio/internal/repository"
)

type CreateBookingInput struct {
	ClientID    string
	DateTime    time.Time
	PhoneNumber string
	Email       string
	Location    string
	PackageName string
	Price       float64
}

// AdminUpdateInput changes only the provided fields.
type AdminUpdateInput struct {
	DateTime      *time.Time
	BookingStatus *domain.BookingStatus
	PaymentStatus *domain.PaymentStatus
}

type Filter = repository.BookingFilter

type CreateBookingRequest struct {
	DateTime    string  `json:"date_time" binding:"required"`
	PhoneNumber string  `json:"phone_number" binding:"required"`
	Email       string  `json:"email" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	PackageName string  `json:"package_name" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
}

type RescheduleRequest struct {
	DateTime string `json:"date_time" binding:"required"`
}

type AssignStaffRequest struct {
	StaffID string `json:"staff_id" binding:"required"`
}

type AdminUpdateRequest struct {
	DateTime      *string `json:"date_time"`
	BookingStatus *string `json:"booking_status"`
	PaymentStatus *string `json:"payment_status"`
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime accepts RFC 3339 or a zone-less local date-time (seconds
// optional, surrounding quotes tolerated) interpreted in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date-time format %q", ErrMalformedBooking, raw)
}

func (r CreateBookingRequest) toInput(clientID string, loc *time.Location) (CreateBookingInput, error) {
	at, err := ParseDateTime(r.DateTime, loc)
	if err != nil {
		return CreateBookingInput{}, err
	}
	return CreateBookingInput{
		ClientID:    clientID,
		DateTime:    at,
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		Email:       strings.TrimSpace(r.Email),
		Location:    strings.TrimSpace(r.Location),
		PackageName: r.PackageName,
		Price:       r.Price,
	}, nil
}

func (r AdminUpdateRequest) toInput(loc *time.Location) (AdminUpdateInput, error) {
	var in AdminUpdateInput
	if r.DateTime != nil {
		at, err := ParseDateTime(*r.DateTime, loc)
		if err != nil {
			return in, err
		}
		in.DateTime = &at
	}
	if r.BookingStatus != nil {
		s := domain.BookingStatus(strings.ToLower(strings.TrimSpace(*r.BookingStatus)))
		in.BookingStatus = &s
	}
	if r.PaymentStatus != nil {
		s := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(*r.PaymentStatus)))
		in.PaymentStatus = &s
	}
	return in, nil
}
