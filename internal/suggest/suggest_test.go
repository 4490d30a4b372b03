package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

func animal(id int64, name string, intakeDaysAgo int, now time.Time) *domain.Animal {
	return &domain.Animal{
		ID:         id,
		Name:       name,
		IntakeDate: now.AddDate(0, 0, -intakeDaysAgo),
	}
}

func TestRank_LongestWaitFirst(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	walkedYesterday := now.AddDate(0, 0, -1)
	walkedLastWeek := now.AddDate(0, 0, -7)

	animals := []*domain.Animal{
		animal(1, "Rex", 30, now),
		animal(2, "Milo", 30, now),
	}
	stats := map[int64]Stats{
		1: {LastCompletedWalk: &walkedYesterday},
		2: {LastCompletedWalk: &walkedLastWeek},
	}

	ranked := Rank(animals, stats, DefaultParameters(), now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Milo", ranked[0].Animal.Name)
	assert.Equal(t, "Rex", ranked[1].Animal.Name)
}

func TestRank_BookingsPushDown(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	walked := now.AddDate(0, 0, -5)

	animals := []*domain.Animal{
		animal(1, "Rex", 30, now),
		animal(2, "Milo", 30, now),
	}
	stats := map[int64]Stats{
		1: {LastCompletedWalk: &walked, ActiveReservations: 2},
		2: {LastCompletedWalk: &walked},
	}

	ranked := Rank(animals, stats, DefaultParameters(), now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Milo", ranked[0].Animal.Name)
}

func TestRank_NeverWalkedMeasuresFromIntake(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	animals := []*domain.Animal{
		animal(1, "Newcomer", 2, now),
		animal(2, "OldTimer", 60, now),
	}

	ranked := Rank(animals, nil, DefaultParameters(), now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "OldTimer", ranked[0].Animal.Name)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_SkipsAdopted(t *testing.T) {
	now := time.Now()

	adopted := animal(1, "Lucky", 100, now)
	adopted.Adopted = true

	ranked := Rank([]*domain.Animal{adopted, animal(2, "Milo", 10, now)}, nil, DefaultParameters(), now)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Milo", ranked[0].Animal.Name)
}

func TestRank_LimitCapsResults(t *testing.T) {
	now := time.Now()

	animals := make([]*domain.Animal, 0, 5)
	for i := int64(1); i <= 5; i++ {
		animals = append(animals, animal(i, "A", int(i), now))
	}

	params := DefaultParameters()
	params.Limit = 3

	ranked := Rank(animals, nil, params, now)
	assert.Len(t, ranked, 3)
}

func TestRank_TieBreaksByIntakeThenID(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	a := animal(2, "Same", 10, now)
	b := animal(1, "Same", 10, now)

	ranked := Rank([]*domain.Animal{a, b}, nil, DefaultParameters(), now)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(1), ranked[0].Animal.ID)
}
