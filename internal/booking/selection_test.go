package booking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionToggleAddRemove(t *testing.T) {
	s := NewSelection()
	d := day(3)

	assert.Equal(t, StateIdle, s.State())

	assert.Equal(t, ToggleAdded, s.Toggle(KeyAt(d, 9), true))
	assert.Equal(t, StateSelecting, s.State())
	assert.True(t, s.Has(KeyAt(d, 9)))

	assert.Equal(t, ToggleRemoved, s.Toggle(KeyAt(d, 9), true))
	assert.Equal(t, StateIdle, s.State())
	assert.Zero(t, s.Count())
}

func TestSelectionRejectsUnavailable(t *testing.T) {
	s := NewSelection()
	d := day(3)

	assert.Equal(t, ToggleRejectedUnavailable, s.Toggle(KeyAt(d, 9), false))
	assert.Zero(t, s.Count())
}

func TestSelectionNeverExceedsMax(t *testing.T) {
	s := NewSelection()

	// toggle far more slots than the cap allows, across several days
	for d := 1; d <= 4; d++ {
		for hour := OpeningHour; hour < ClosingHour; hour++ {
			s.Toggle(KeyAt(day(d), hour), true)
			require.LessOrEqual(t, s.Count(), MaxSelection)
		}
	}

	assert.Equal(t, MaxSelection, s.Count())
	assert.Equal(t, ToggleRejectedFull, s.Toggle(KeyAt(day(5), 9), true))
	assert.Equal(t, MaxSelection, s.Count())
}

func TestSelectionKeysChronological(t *testing.T) {
	s := NewSelection()
	d1, d2 := day(3), day(4)

	s.Toggle(KeyAt(d2, 9), true)
	s.Toggle(KeyAt(d1, 15), true)
	s.Toggle(KeyAt(d1, 9), true)

	assert.Equal(t, []string{KeyAt(d1, 9), KeyAt(d1, 15), KeyAt(d2, 9)}, s.Keys())
}

func TestSelectionResetClearsEverything(t *testing.T) {
	s := NewSelection()
	for i := 0; i < 3; i++ {
		s.Toggle(KeyAt(day(3), OpeningHour+i), true)
	}

	s.Reset()
	assert.Zero(t, s.Count())
	assert.Equal(t, StateIdle, s.State())
}

func TestSelectionSubmittingBlocksToggles(t *testing.T) {
	s := NewSelection()
	s.Toggle(KeyAt(day(3), 9), true)

	require.True(t, s.beginSubmit())
	assert.Equal(t, StateSubmitting, s.State())
	assert.Equal(t, ToggleRejectedSubmitting, s.Toggle(KeyAt(day(3), 10), true))

	// nothing selected means nothing to submit
	s.Reset()
	assert.False(t, s.beginSubmit())
}

func TestSelectionNoDuplicates(t *testing.T) {
	s := NewSelection()
	key := KeyAt(day(3), 9)

	s.Toggle(key, true)
	s.Toggle(key, true) // removes
	s.Toggle(key, true) // adds again

	assert.Equal(t, 1, s.Count())
	assert.Equal(t, fmt.Sprint([]string{key}), fmt.Sprint(s.Keys()))
}
