package booking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// RefreshScope names the caches a caller should reload after a successful
// submission or committed cancellation.
type RefreshScope int

const (
	RefreshOccupancy RefreshScope = iota
	RefreshOwnReservations
	RefreshSuggestions
)

// NoticeKind classifies user-visible notices the engine raises.
type NoticeKind int

const (
	NoticeBooked NoticeKind = iota
	NoticeBookingFailed
	NoticeWarning
	NoticeCancelPending
	NoticeCancelCommitted
	NoticeCancelFailed
	NoticeDismissed
)

// Notice is a user-visible message. Errors are always converted to notices
// at the operation boundary; they never escape the engine as panics.
type Notice struct {
	Kind        NoticeKind
	Message     string
	Reservation *domain.Reservation
}

// Options tunes the engine. The zero value gets production defaults; tests
// shrink the windows and inject a clock.
type Options struct {
	// UndoWindow is how long a cancellation stays revocable. Default 10s.
	UndoWindow time.Duration
	// ConfirmationTTL is how long the "last booked" notice lives. Default 10s.
	ConfirmationTTL time.Duration
	Logger          *slog.Logger
	Now             func() time.Time
	// Notify receives every notice. May be nil.
	Notify func(Notice)
	// OnRefresh is invoked once per scope after submissions and committed
	// cancellations. May be nil.
	OnRefresh func(RefreshScope)
}

func (o *Options) withDefaults() {
	if o.UndoWindow <= 0 {
		o.UndoWindow = 10 * time.Second
	}
	if o.ConfirmationTTL <= 0 {
		o.ConfirmationTTL = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Engine holds the booking state for one animal-in-focus: the occupancy
// cache, the caller's own reservations, the selection and at most one
// pending cancellation. All mutation happens under one mutex; the only other
// goroutine ever touching the state is the undo-window timer.
type Engine struct {
	client *Client
	opts   Options

	mu             sync.Mutex
	animal         *domain.Animal
	occupancy      Occupancy
	occupancyKnown bool
	own            map[int64]*domain.Reservation
	selection      *Selection
	pending        *pendingCancel
	lastBooked     []Range
	confirmTimer   *time.Timer
}

func NewEngine(client *Client, opts Options) *Engine {
	opts.withDefaults()
	return &Engine{
		client:    client,
		opts:      opts,
		occupancy: make(Occupancy),
		own:       make(map[int64]*domain.Reservation),
		selection: NewSelection(),
	}
}

// FocusAnimal loads the occupancy for one animal plus the caller's own
// reservations, and resets the selection. A failed fetch leaves the
// occupancy unknown rather than empty-and-free.
func (e *Engine) FocusAnimal(ctx context.Context, animalID int64) error {
	animal, err := e.client.GetAnimal(ctx, animalID)
	if err != nil {
		return err
	}

	reservations, resErr := e.client.GetAnimalReservations(ctx, animalID)
	own, ownErr := e.client.GetOwnReservations(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.animal = animal
	e.selection.Reset()
	e.pending = nil
	e.own = make(map[int64]*domain.Reservation)

	if resErr != nil || ownErr != nil {
		e.occupancy = make(Occupancy)
		e.occupancyKnown = false
		e.opts.Logger.Error("reservation fetch failed, availability unknown",
			"animalID", animalID, "reservationsError", resErr, "ownError", ownErr)
		return nil
	}

	e.occupancy = BuildOccupancy(reservations)
	e.occupancyKnown = true
	for _, res := range own {
		if res.Active() {
			e.own[res.ID] = res
		}
	}

	return nil
}

// Animal returns the animal currently in focus, or nil.
func (e *Engine) Animal() *domain.Animal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animal
}

// Week resolves the availability of the week starting at weekStart for the
// animal in focus.
func (e *Engine) Week(weekStart time.Time) WeekAvailability {
	e.mu.Lock()
	defer e.mu.Unlock()

	selected := make(map[string]struct{}, e.selection.Count())
	for _, key := range e.selection.Keys() {
		selected[key] = struct{}{}
	}

	return ResolveWeek(weekStart, e.occupancy, e.occupancyKnown, e.client.auth.UserID, selected, e.opts.Now())
}

// Selected returns the current selection in chronological order.
func (e *Engine) Selected() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Keys()
}

// SelectionState reports where the pick-then-submit flow currently is.
func (e *Engine) SelectionState() SelectionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.State()
}

// ToggleSlot flips one slot. A slot covered by one of the caller's own
// reservations is routed to the cancellation workflow and leaves the
// selection untouched; rejected picks surface a warning notice.
func (e *Engine) ToggleSlot(key string) ToggleResult {
	e.mu.Lock()

	if owned := e.ownedReservationCoveringLocked(key); owned != nil {
		e.mu.Unlock()
		e.RequestCancel(owned.ID)
		return ToggleRoutedToCancel
	}

	state := e.slotStateLocked(key)
	result := e.selection.Toggle(key, state.Selectable)
	e.mu.Unlock()

	switch result {
	case ToggleRejectedFull:
		e.notify(Notice{Kind: NoticeWarning, Message: "You cannot pick more than 10 slots at once."})
	case ToggleRejectedUnavailable:
		e.notify(Notice{Kind: NoticeWarning, Message: "This slot is not available."})
	case ToggleRejectedSubmitting:
		e.notify(Notice{Kind: NoticeWarning, Message: "Please wait for the current booking to finish."})
	}

	return result
}

// Reset clears the in-progress selection.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection.Reset()
}

// LastBooked returns the ranges of the most recent confirmation notice; it
// empties itself once the notice TTL elapses.
func (e *Engine) LastBooked() []Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Range, len(e.lastBooked))
	copy(out, e.lastBooked)
	return out
}

func (e *Engine) slotStateLocked(key string) SlotState {
	state := SlotState{}

	if occupant, ok := e.occupancy[key]; ok {
		if occupant.UserID == e.client.auth.UserID {
			state.OwnedByUser = true
		} else {
			state.Reserved = true
		}
	}

	st, err := FormatSlot(key)
	if err != nil {
		return state
	}

	now := e.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	future := st.Date.After(today)
	withinHours := st.StartTime.Hour() >= OpeningHour && st.StartTime.Hour() < ClosingHour

	state.Selectable = e.occupancyKnown && future && withinHours &&
		!state.Reserved && !state.OwnedByUser && !e.selection.Has(key)
	return state
}

func (e *Engine) ownedReservationCoveringLocked(key string) *domain.Reservation {
	st, err := FormatSlot(key)
	if err != nil {
		return nil
	}
	for _, res := range e.own {
		if !res.Active() {
			continue
		}
		if e.animal == nil || res.AnimalID != e.animal.ID {
			continue
		}
		if !st.StartTime.Before(res.StartTime) && st.StartTime.Before(res.EndTime) {
			return res
		}
	}
	return nil
}

func (e *Engine) notify(n Notice) {
	if e.opts.Notify != nil {
		e.opts.Notify(n)
	}
}

func (e *Engine) refresh(scopes ...RefreshScope) {
	if e.opts.OnRefresh == nil {
		return
	}
	for _, scope := range scopes {
		e.opts.OnRefresh(scope)
	}
}
