// Package suggest ranks shelter animals by how much they need a walk.
// Animals that have waited longest since their last completed walk score
// highest, while animals that already have upcoming reservations are
// pushed down the list.
package suggest

import (
	"sort"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

type Parameters struct {
	// BookingWeight is the score penalty per already-booked upcoming walk.
	BookingWeight float64
	// WaitWeight is the score gained per day since the last completed walk.
	WaitWeight float64
	// Limit caps the number of returned suggestions. Zero means no cap.
	Limit int
}

func DefaultParameters() Parameters {
	return Parameters{
		BookingWeight: 5,
		WaitWeight:    1,
		Limit:         10,
	}
}

// Stats summarizes one animal's reservation history.
type Stats struct {
	ActiveReservations int
	LastCompletedWalk  *time.Time
}

type Suggestion struct {
	Animal *domain.Animal `json:"animal"`
	Score  float64        `json:"score"`
}

// Rank scores every non-adopted animal and returns them best-first. An
// animal with no stats entry counts as never walked and never booked,
// with its wait measured from its intake date.
func Rank(animals []*domain.Animal, stats map[int64]Stats, params Parameters, now time.Time) []Suggestion {
	suggestions := make([]Suggestion, 0, len(animals))

	for _, animal := range animals {
		if animal.Adopted {
			continue
		}

		st := stats[animal.ID]

		lastWalk := animal.IntakeDate
		if st.LastCompletedWalk != nil {
			lastWalk = *st.LastCompletedWalk
		}

		waitDays := now.Sub(lastWalk).Hours() / 24
		if waitDays < 0 {
			waitDays = 0
		}

		score := params.WaitWeight*waitDays - params.BookingWeight*float64(st.ActiveReservations)

		suggestions = append(suggestions, Suggestion{Animal: animal, Score: score})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		// break ties in favor of the longer-resident animal
		if !suggestions[i].Animal.IntakeDate.Equal(suggestions[j].Animal.IntakeDate) {
			return suggestions[i].Animal.IntakeDate.Before(suggestions[j].Animal.IntakeDate)
		}
		return suggestions[i].Animal.ID < suggestions[j].Animal.ID
	})

	if params.Limit > 0 && len(suggestions) > params.Limit {
		suggestions = suggestions[:params.Limit]
	}

	return suggestions
}
