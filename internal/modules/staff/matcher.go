package staff

import (
	"errors"
	"fmt"
	"time"

	"photostudio/internal/domain"
)

var ErrNoAvailability = errors.New("staff member has no availability")

type MatchMode string

const (
	// MatchSameDay only claims slots dated on the booking's calendar day.
	MatchSameDay MatchMode = "same_day"
	// MatchAnySlot claims the first free slot regardless of its date.
	MatchAnySlot MatchMode = "any"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchSameDay, "":
		return MatchSameDay, nil
	case MatchAnySlot:
		return MatchAnySlot, nil
	}
	return "", fmt.Errorf("unknown staff match mode %q", s)
}

// Matcher claims availability of a single staff member for a booking.
type Matcher struct {
	mode MatchMode
	loc  *time.Location
}

func NewMatcher(mode MatchMode, loc *time.Location) *Matcher {
	if loc == nil {
		loc = time.Local
	}
	return &Matcher{mode: mode, loc: loc}
}

// Claim marks the first eligible slot of member (insertion order, first fit)
// as taken by bookingID and makes the member unavailable. Members without a
// slot list are matched on their single availability flag, in which case the
// returned slot is nil. The member is mutated in place; persisting it is up
// to the caller.
func (m *Matcher) Claim(member *domain.Staff, bookingID string, at time.Time) (*domain.AvailabilitySlot, error) {
	if member.AssignedBookingID != nil {
		return nil, fmt.Errorf("%w: %s is assigned to booking %s", ErrNoAvailability, member.ID, *member.AssignedBookingID)
	}

	if len(member.Slots) == 0 {
		if !member.Available {
			return nil, fmt.Errorf("%w: %s is unavailable", ErrNoAvailability, member.ID)
		}
		member.Available = false
		member.AssignedBookingID = &bookingID
		return nil, nil
	}

	for i := range member.Slots {
		slot := &member.Slots[i]
		if !slot.Available || !m.eligible(slot, at) {
			continue
		}
		slot.Available = false
		slot.BookingID = &bookingID
		member.Available = false
		member.AssignedBookingID = &bookingID
		return slot, nil
	}

	return nil, fmt.Errorf("%w: no free slot for %s on %s", ErrNoAvailability, member.ID, at.In(m.loc).Format("2006-01-02"))
}

// Release undoes Claim: the claimed slot (if any) and the member become
// available again.
func (m *Matcher) Release(member *domain.Staff, slotID *string) {
	if slotID != nil {
		for i := range member.Slots {
			if member.Slots[i].ID == *slotID {
				member.Slots[i].Available = true
				member.Slots[i].BookingID = nil
			}
		}
	}
	member.Available = true
	member.AssignedBookingID = nil
}

// RequiresRematch reports whether a slot claimed for a booking at from no
// longer fits once the booking moves to to.
func (m *Matcher) RequiresRematch(from, to time.Time) bool {
	return m.mode == MatchSameDay && !sameDay(from.In(m.loc), to.In(m.loc))
}

func (m *Matcher) eligible(slot *domain.AvailabilitySlot, at time.Time) bool {
	if m.mode == MatchAnySlot {
		return true
	}
	return sameDay(slot.Date.In(m.loc), at.In(m.loc))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
