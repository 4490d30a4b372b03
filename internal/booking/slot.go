// Package booking implements the walk-reservation workflow on top of the
// shelter REST API: hourly slot identity, week availability, the in-progress
// selection, sequential range submission and the undo-window cancellation.
package booking

import (
	"fmt"
	"sort"
	"time"
)

const (
	// SlotKeyLayout renders one bookable hour as "YYYY-MM-DD-hh:mm AM/PM".
	SlotKeyLayout = "2006-01-02-03:04 PM"

	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"

	// SlotDuration is fixed; slots never straddle hours.
	SlotDuration = time.Hour

	// Walks may only be booked within shelter business hours.
	OpeningHour = 9
	ClosingHour = 17

	// MaxSelection caps the slots a user may pick before submitting.
	MaxSelection = 10
)

// SlotKey returns the canonical identity of the hour starting at start.
func SlotKey(start time.Time) string {
	return start.Format(SlotKeyLayout)
}

// KeyAt builds a slot key for the given calendar day and hour of day.
func KeyAt(day time.Time, hour int) string {
	return SlotKey(time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location()))
}

// SlotTimes is the expansion of a slot key back into concrete times.
type SlotTimes struct {
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
}

// FormatSlot parses a slot key. The end time is always start plus one hour.
func FormatSlot(key string) (SlotTimes, error) {
	start, err := time.Parse(SlotKeyLayout, key)
	if err != nil {
		return SlotTimes{}, fmt.Errorf("malformed slot key %q: %w", key, err)
	}

	return SlotTimes{
		Date:      time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		StartTime: start,
		EndTime:   start.Add(SlotDuration),
	}, nil
}

// Range is a maximal run of contiguous slots on one date. Ranges are derived
// from selections and never persisted.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Date() time.Time {
	return time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, r.Start.Location())
}

func (r Range) Hours() int {
	return int(r.End.Sub(r.Start) / SlotDuration)
}

// Keys expands the range back into the slot keys it covers.
func (r Range) Keys() []string {
	keys := make([]string, 0, r.Hours())
	for t := r.Start; t.Before(r.End); t = t.Add(SlotDuration) {
		keys = append(keys, SlotKey(t))
	}
	return keys
}

func (r Range) String() string {
	return fmt.Sprintf("%s %s-%s", r.Start.Format(dateLayout), r.Start.Format("15:04"), r.End.Format("15:04"))
}

// MergeConsecutive groups the given slot keys by date, sorts each group by
// start time and coalesces adjacent slots into ranges; any gap starts a new
// range. Duplicate keys are collapsed, so the merge is idempotent: merging
// the keys of an already-merged range set yields the same ranges.
func MergeConsecutive(keys []string) ([]Range, error) {
	starts := make([]time.Time, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		st, err := FormatSlot(key)
		if err != nil {
			return nil, err
		}
		starts = append(starts, st.StartTime)
	}

	sort.SliceStable(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	ranges := make([]Range, 0, len(starts))
	for _, start := range starts {
		n := len(ranges)
		if n > 0 && ranges[n-1].End.Equal(start) && sameDay(ranges[n-1].Start, start) {
			ranges[n-1].End = start.Add(SlotDuration)
			continue
		}
		ranges = append(ranges, Range{Start: start, End: start.Add(SlotDuration)})
	}

	return ranges, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
