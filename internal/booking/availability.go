package booking

import (
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// Occupant records which reservation covers a slot.
type Occupant struct {
	ReservationID int64
	UserID        int64
}

// Occupancy maps slot keys to the active reservation covering that hour.
type Occupancy map[string]Occupant

// BuildOccupancy expands every non-canceled reservation into one entry per
// contained hour, stepping from start to end exclusive. Reservations longer
// than one hour therefore occupy several keys.
func BuildOccupancy(reservations []*domain.Reservation) Occupancy {
	occ := make(Occupancy)
	for _, res := range reservations {
		if !res.Active() {
			continue
		}
		for t := res.StartTime; t.Before(res.EndTime); t = t.Add(SlotDuration) {
			occ[SlotKey(t)] = Occupant{ReservationID: res.ID, UserID: res.UserID}
		}
	}
	return occ
}

// SlotState is what the calendar needs to render one cell.
type SlotState struct {
	Reserved    bool `json:"reserved"`
	OwnedByUser bool `json:"ownedByUser"`
	Selectable  bool `json:"selectable"`
}

// WeekAvailability covers one displayed week within business hours. When the
// reservation fetch failed, Known is false and nothing is selectable; unknown
// must never be treated as free.
type WeekAvailability struct {
	WeekStart time.Time
	Known     bool
	Slots     map[string]SlotState
}

// ResolveWeek computes the state of every business-hour slot in the week
// starting at weekStart. A slot is selectable iff its day lies strictly
// after today, it is not covered by anyone's active reservation, and it is
// not already part of the caller's selection.
func ResolveWeek(weekStart time.Time, occ Occupancy, known bool, userID int64, selected map[string]struct{}, now time.Time) WeekAvailability {
	wa := WeekAvailability{
		WeekStart: weekStart,
		Known:     known,
		Slots:     make(map[string]SlotState, 7*(ClosingHour-OpeningHour)),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for d := 0; d < 7; d++ {
		day := weekStart.AddDate(0, 0, d)
		future := day.After(today)

		for hour := OpeningHour; hour < ClosingHour; hour++ {
			key := KeyAt(day, hour)
			state := SlotState{}

			if occupant, ok := occ[key]; ok {
				if occupant.UserID == userID {
					state.OwnedByUser = true
				} else {
					state.Reserved = true
				}
			}

			_, alreadyPicked := selected[key]
			state.Selectable = known && future && !state.Reserved && !state.OwnedByUser && !alreadyPicked

			wa.Slots[key] = state
		}
	}

	return wa
}
