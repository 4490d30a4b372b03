package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// ErrNothingSelected is returned when Submit is called with an empty
// selection or while another submission is in flight.
var ErrNothingSelected = errors.New("no slots selected")

// RangeResult is the outcome of one merged range's create request.
type RangeResult struct {
	Range       Range
	Reservation *domain.Reservation
	Err         error
}

// SubmitResult summarizes one submission. Partial success is normal: there
// is no atomicity across ranges.
type SubmitResult struct {
	Results []RangeResult
	Booked  int
	Failed  int
}

// Submit merges the selection into ranges and books each range with its own
// create request, strictly sequentially so a failure can be attributed to
// its range and the UI can update incrementally. Failures do not roll back
// earlier successes; each range carries a fresh idempotency key so a retry
// after a timeout cannot double-book. The selection is cleared afterwards
// regardless of outcome, then the occupancy, own-reservation and suggestion
// caches are flagged for refresh.
func (e *Engine) Submit(ctx context.Context) (*SubmitResult, error) {
	if e.client.auth.Token == "" {
		return nil, ErrUnauthorized
	}

	e.mu.Lock()
	if e.animal == nil {
		e.mu.Unlock()
		return nil, errors.New("no animal in focus")
	}
	if !e.selection.beginSubmit() {
		e.mu.Unlock()
		return nil, ErrNothingSelected
	}
	keys := e.selection.Keys()
	animalID := e.animal.ID
	e.mu.Unlock()

	ranges, err := MergeConsecutive(keys)
	if err != nil {
		e.mu.Lock()
		e.selection.Reset()
		e.mu.Unlock()
		return nil, err
	}

	result := &SubmitResult{Results: make([]RangeResult, 0, len(ranges))}
	booked := make([]Range, 0, len(ranges))

	for _, rng := range ranges {
		req := CreateReservationRequest{
			UserID:          e.client.auth.UserID,
			AnimalID:        animalID,
			ReservationDate: rng.Start.Format(dateLayout),
			StartTime:       rng.Start.Format(clockLayout),
			EndTime:         rng.End.Format(clockLayout),
		}

		res, err := e.client.CreateReservation(ctx, req, uuid.NewString())
		if err != nil {
			result.Results = append(result.Results, RangeResult{Range: rng, Err: err})
			result.Failed++
			e.notify(Notice{Kind: NoticeBookingFailed, Message: fmt.Sprintf("Could not book %s: %v", rng, err)})
			continue
		}

		result.Results = append(result.Results, RangeResult{Range: rng, Reservation: res})
		result.Booked++
		booked = append(booked, rng)

		e.mu.Lock()
		for _, key := range rng.Keys() {
			e.occupancy[key] = Occupant{ReservationID: res.ID, UserID: res.UserID}
		}
		e.own[res.ID] = res
		e.mu.Unlock()

		e.notify(Notice{Kind: NoticeBooked, Message: fmt.Sprintf("Booked %s.", rng), Reservation: res})
	}

	e.mu.Lock()
	e.selection.Reset()
	if len(booked) > 0 {
		e.lastBooked = booked
		if e.confirmTimer != nil {
			e.confirmTimer.Stop()
		}
		e.confirmTimer = e.scheduleConfirmationDismiss()
	}
	e.mu.Unlock()

	e.refresh(RefreshOccupancy, RefreshOwnReservations, RefreshSuggestions)

	return result, nil
}

func (e *Engine) scheduleConfirmationDismiss() *time.Timer {
	return time.AfterFunc(e.opts.ConfirmationTTL, func() {
		e.mu.Lock()
		e.lastBooked = nil
		e.confirmTimer = nil
		e.mu.Unlock()
		e.notify(Notice{Kind: NoticeDismissed, Message: "booking confirmation dismissed"})
	})
}
