package booking

import "sort"

// SelectionState tracks where the user is in the pick-then-submit flow.
type SelectionState int

const (
	StateIdle SelectionState = iota
	StateSelecting
	StateSubmitting
)

func (s SelectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

// ToggleResult reports what a toggle did, so the caller can surface a
// warning when a pick was rejected.
type ToggleResult int

const (
	ToggleAdded ToggleResult = iota
	ToggleRemoved
	ToggleRejectedFull
	ToggleRejectedUnavailable
	ToggleRejectedSubmitting
	// ToggleRoutedToCancel means the slot belongs to one of the caller's own
	// reservations; the engine opens the cancellation workflow instead.
	ToggleRoutedToCancel
)

// Selection is the caller's unsubmitted slot picks for one animal. It never
// holds duplicates and never exceeds MaxSelection entries.
type Selection struct {
	state SelectionState
	slots map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{
		state: StateIdle,
		slots: make(map[string]struct{}),
	}
}

func (s *Selection) State() SelectionState { return s.state }

func (s *Selection) Count() int { return len(s.slots) }

func (s *Selection) Has(key string) bool {
	_, ok := s.slots[key]
	return ok
}

// Keys returns the selected slot keys in chronological order.
func (s *Selection) Keys() []string {
	keys := make([]string, 0, len(s.slots))
	for key := range s.slots {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := FormatSlot(keys[i])
		b, errB := FormatSlot(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a.StartTime.Before(b.StartTime)
	})
	return keys
}

// Toggle removes an already-selected slot, or adds the slot when it is
// selectable and the cap has not been reached. Everything else is a no-op
// reported through the result.
func (s *Selection) Toggle(key string, selectable bool) ToggleResult {
	if s.state == StateSubmitting {
		return ToggleRejectedSubmitting
	}

	if _, ok := s.slots[key]; ok {
		delete(s.slots, key)
		if len(s.slots) == 0 {
			s.state = StateIdle
		}
		return ToggleRemoved
	}

	if !selectable {
		return ToggleRejectedUnavailable
	}
	if len(s.slots) >= MaxSelection {
		return ToggleRejectedFull
	}

	s.slots[key] = struct{}{}
	s.state = StateSelecting
	return ToggleAdded
}

// Reset clears the selection unconditionally and returns to idle.
func (s *Selection) Reset() {
	s.slots = make(map[string]struct{})
	s.state = StateIdle
}

// beginSubmit moves to the in-flight state; it fails when there is nothing
// to submit or a submission is already running.
func (s *Selection) beginSubmit() bool {
	if s.state != StateSelecting {
		return false
	}
	s.state = StateSubmitting
	return true
}
