package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

func hourOn(d time.Time, hour int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func TestBuildOccupancyExpandsLongReservations(t *testing.T) {
	d := day(3)
	occ := BuildOccupancy([]*domain.Reservation{
		{ID: 1, UserID: 7, AnimalID: 1, StartTime: hourOn(d, 10), EndTime: hourOn(d, 13), Status: domain.StatusUpcoming},
	})

	require.Len(t, occ, 3)
	for _, hour := range []int{10, 11, 12} {
		occupant, ok := occ[KeyAt(d, hour)]
		require.True(t, ok, "hour %d", hour)
		assert.Equal(t, int64(1), occupant.ReservationID)
		assert.Equal(t, int64(7), occupant.UserID)
	}
	_, ok := occ[KeyAt(d, 13)]
	assert.False(t, ok, "end hour is exclusive")
}

func TestBuildOccupancySkipsCanceled(t *testing.T) {
	d := day(3)
	occ := BuildOccupancy([]*domain.Reservation{
		{ID: 1, UserID: 7, StartTime: hourOn(d, 10), EndTime: hourOn(d, 11), Status: domain.StatusCanceled},
	})
	assert.Empty(t, occ)
}

func TestResolveWeekReservedNeverSelectable(t *testing.T) {
	weekStart := day(2)
	reservations := []*domain.Reservation{}
	// another user holds a long reservation every day of the week
	for d := 0; d < 7; d++ {
		dd := weekStart.AddDate(0, 0, d)
		reservations = append(reservations, &domain.Reservation{
			ID: int64(d + 1), UserID: 99, StartTime: hourOn(dd, 9), EndTime: hourOn(dd, 12), Status: domain.StatusUpcoming,
		})
	}
	occ := BuildOccupancy(reservations)

	wa := ResolveWeek(weekStart, occ, true, 7, map[string]struct{}{}, time.Now().UTC())

	for key, state := range wa.Slots {
		if state.Reserved {
			assert.False(t, state.Selectable, "reserved slot %s must not be selectable", key)
		}
	}

	reserved := 0
	for _, state := range wa.Slots {
		if state.Reserved {
			reserved++
		}
	}
	assert.Equal(t, 21, reserved)
}

func TestResolveWeekOwnSlots(t *testing.T) {
	weekStart := day(2)
	d := weekStart.AddDate(0, 0, 1)
	occ := BuildOccupancy([]*domain.Reservation{
		{ID: 1, UserID: 7, StartTime: hourOn(d, 10), EndTime: hourOn(d, 11), Status: domain.StatusUpcoming},
	})

	wa := ResolveWeek(weekStart, occ, true, 7, map[string]struct{}{}, time.Now().UTC())

	state := wa.Slots[KeyAt(d, 10)]
	assert.True(t, state.OwnedByUser)
	assert.False(t, state.Reserved)
	assert.False(t, state.Selectable)
}

func TestResolveWeekPastDaysNotSelectable(t *testing.T) {
	now := time.Now().UTC()
	weekStart := day(-3)

	wa := ResolveWeek(weekStart, Occupancy{}, true, 7, map[string]struct{}{}, now)

	for key, state := range wa.Slots {
		st, err := FormatSlot(key)
		require.NoError(t, err)
		if !st.Date.After(day(0)) {
			assert.False(t, state.Selectable, "slot %s is not in the future", key)
		}
	}
}

func TestResolveWeekSelectedSlotsNotSelectable(t *testing.T) {
	weekStart := day(2)
	d := weekStart.AddDate(0, 0, 1)
	picked := map[string]struct{}{KeyAt(d, 10): {}}

	wa := ResolveWeek(weekStart, Occupancy{}, true, 7, picked, time.Now().UTC())

	assert.False(t, wa.Slots[KeyAt(d, 10)].Selectable)
	assert.True(t, wa.Slots[KeyAt(d, 11)].Selectable)
}

func TestResolveWeekUnknownOccupancy(t *testing.T) {
	weekStart := day(2)

	wa := ResolveWeek(weekStart, Occupancy{}, false, 7, map[string]struct{}{}, time.Now().UTC())

	assert.False(t, wa.Known)
	for key, state := range wa.Slots {
		assert.False(t, state.Selectable, "unknown availability must not offer %s", key)
	}
}

func TestResolveWeekBusinessHoursOnly(t *testing.T) {
	weekStart := day(2)
	wa := ResolveWeek(weekStart, Occupancy{}, true, 7, map[string]struct{}{}, time.Now().UTC())

	assert.Len(t, wa.Slots, 7*(ClosingHour-OpeningHour))
	for key := range wa.Slots {
		st, err := FormatSlot(key)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, st.StartTime.Hour(), OpeningHour)
		assert.Less(t, st.StartTime.Hour(), ClosingHour)
	}
}
