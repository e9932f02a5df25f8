package staff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photostudio/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rosterMember() *domain.Staff {
	return &domain.Staff{
		ID:        "s1",
		Available: true,
		Slots: []domain.AvailabilitySlot{
			{ID: "a", Date: day(2026, 11, 1), Position: 0, Available: false},
			{ID: "b", Date: day(2026, 11, 2), Position: 1, Available: true},
			{ID: "c", Date: day(2026, 11, 3), Position: 2, Available: true},
			{ID: "d", Date: day(2026, 11, 3), Position: 3, Available: true},
		},
	}
}

func TestMatcher_SameDay_FirstFit(t *testing.T) {
	m := NewMatcher(MatchSameDay, time.UTC)
	member := rosterMember()

	slot, err := m.Claim(member, "bk1", time.Date(2026, 11, 3, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "c", slot.ID)
	assert.False(t, member.Slots[2].Available)
	assert.True(t, member.Slots[3].Available)
	assert.False(t, member.Available)
	assert.Equal(t, "bk1", *member.AssignedBookingID)
}

func TestMatcher_SameDay_NoSlotThatDay(t *testing.T) {
	m := NewMatcher(MatchSameDay, time.UTC)
	member := rosterMember()

	_, err := m.Claim(member, "bk1", time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoAvailability)
	assert.True(t, member.Available)
	assert.Nil(t, member.AssignedBookingID)
}

func TestMatcher_AnySlot_IgnoresDate(t *testing.T) {
	m := NewMatcher(MatchAnySlot, time.UTC)
	member := rosterMember()

	slot, err := m.Claim(member, "bk1", time.Date(2027, 1, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "b", slot.ID)
}

func TestMatcher_FlagOnlyMember(t *testing.T) {
	m := NewMatcher(MatchSameDay, time.UTC)
	member := &domain.Staff{ID: "s2", Available: true}

	slot, err := m.Claim(member, "bk1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, slot)
	assert.False(t, member.Available)

	_, err = m.Claim(&domain.Staff{ID: "s3", Available: false}, "bk2", time.Now())
	assert.ErrorIs(t, err, ErrNoAvailability)
}

func TestMatcher_AlreadyAssigned(t *testing.T) {
	m := NewMatcher(MatchAnySlot, time.UTC)
	other := "bk0"
	member := rosterMember()
	member.AssignedBookingID = &other

	_, err := m.Claim(member, "bk1", time.Now())
	assert.ErrorIs(t, err, ErrNoAvailability)
}

func TestMatcher_ReleaseRestoresSlot(t *testing.T) {
	m := NewMatcher(MatchSameDay, time.UTC)
	member := rosterMember()

	slot, err := m.Claim(member, "bk1", time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	m.Release(member, &slot.ID)
	assert.True(t, member.Available)
	assert.Nil(t, member.AssignedBookingID)
	assert.True(t, member.Slots[1].Available)
	assert.Nil(t, member.Slots[1].BookingID)
}

func TestMatcher_RequiresRematch(t *testing.T) {
	sameDay := NewMatcher(MatchSameDay, time.UTC)
	anySlot := NewMatcher(MatchAnySlot, time.UTC)
	morning := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)

	assert.False(t, sameDay.RequiresRematch(morning, morning.Add(8*time.Hour)))
	assert.True(t, sameDay.RequiresRematch(morning, morning.AddDate(0, 0, 1)))
	assert.False(t, anySlot.RequiresRematch(morning, morning.AddDate(0, 0, 1)))

	colombo := time.FixedZone("Asia/Colombo", 5*3600+1800)
	local := NewMatcher(MatchSameDay, colombo)
	// 20:00 UTC is already the next day in Colombo
	assert.True(t, local.RequiresRematch(morning, time.Date(2026, 11, 3, 20, 0, 0, 0, time.UTC)))
}

func TestParseMatchMode(t *testing.T) {
	mode, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchSameDay, mode)

	mode, err = ParseMatchMode("any")
	require.NoError(t, err)
	assert.Equal(t, MatchAnySlot, mode)

	_, err = ParseMatchMode("best")
	assert.Error(t, err)
}
