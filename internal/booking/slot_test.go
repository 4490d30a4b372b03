package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(daysAhead int) time.Time {
	now := time.Now().UTC()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, daysAhead)
}

func TestSlotKeyFormat(t *testing.T) {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-10-09:00 AM", SlotKey(start))

	afternoon := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-10-03:00 PM", SlotKey(afternoon))
}

func TestSlotKeyRoundTrip(t *testing.T) {
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		start := time.Date(2026, 9, 10, hour, 0, 0, 0, time.UTC)
		st, err := FormatSlot(SlotKey(start))
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), st.Date)
		assert.True(t, st.StartTime.Equal(start))
		assert.True(t, st.EndTime.Equal(start.Add(time.Hour)))
	}
}

func TestFormatSlotRejectsGarbage(t *testing.T) {
	_, err := FormatSlot("not-a-slot")
	assert.Error(t, err)
}

func TestMergeConsecutiveAdjacent(t *testing.T) {
	d := day(3)
	ranges, err := MergeConsecutive([]string{KeyAt(d, 9), KeyAt(d, 10)})
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, 9, ranges[0].Start.Hour())
	assert.Equal(t, 11, ranges[0].End.Hour())
	assert.Equal(t, 2, ranges[0].Hours())
}

func TestMergeConsecutiveGap(t *testing.T) {
	d := day(3)
	ranges, err := MergeConsecutive([]string{KeyAt(d, 9), KeyAt(d, 11)})
	require.NoError(t, err)

	require.Len(t, ranges, 2)
	assert.Equal(t, 1, ranges[0].Hours())
	assert.Equal(t, 1, ranges[1].Hours())
}

func TestMergeConsecutiveUnsortedInput(t *testing.T) {
	d := day(3)
	ranges, err := MergeConsecutive([]string{KeyAt(d, 11), KeyAt(d, 9), KeyAt(d, 10)})
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, 3, ranges[0].Hours())
}

func TestMergeConsecutiveSplitsAcrossDates(t *testing.T) {
	d1, d2 := day(3), day(4)
	ranges, err := MergeConsecutive([]string{KeyAt(d1, 16), KeyAt(d2, 9)})
	require.NoError(t, err)

	require.Len(t, ranges, 2)
}

func TestMergeConsecutiveIdempotent(t *testing.T) {
	d1, d2 := day(3), day(5)
	keys := []string{KeyAt(d1, 9), KeyAt(d1, 10), KeyAt(d1, 13), KeyAt(d2, 11), KeyAt(d2, 12)}

	first, err := MergeConsecutive(keys)
	require.NoError(t, err)

	expanded := []string{}
	for _, rng := range first {
		expanded = append(expanded, rng.Keys()...)
	}

	second, err := MergeConsecutive(expanded)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMergeConsecutiveCollapsesDuplicates(t *testing.T) {
	d := day(3)
	ranges, err := MergeConsecutive([]string{KeyAt(d, 9), KeyAt(d, 9), KeyAt(d, 10)})
	require.NoError(t, err)

	require.Len(t, ranges, 1)
	assert.Equal(t, 2, ranges[0].Hours())
}

func TestRangeKeys(t *testing.T) {
	d := day(3)
	rng := Range{
		Start: time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.UTC),
		End:   time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []string{KeyAt(d, 9), KeyAt(d, 10), KeyAt(d, 11)}, rng.Keys())
}
