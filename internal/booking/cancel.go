package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// CancelState tracks one cancellation attempt through its life:
// Requested -> PendingConfirmation -> Undone | Committed (or Failed when the
// committing patch is rejected).
type CancelState int

const (
	CancelRequested CancelState = iota
	CancelPending
	CancelUndone
	CancelCommitted
	CancelFailed
)

type pendingCancel struct {
	reservation *domain.Reservation
	state       CancelState
	timer       *time.Timer
}

// RequestCancel opens the undo window for one of the caller's reservations.
// No network call happens until the window elapses; Undo before that leaves
// the reservation untouched. Only one cancellation is pending at a time: a
// second request replaces the first by committing it immediately, then opens
// its own window.
func (e *Engine) RequestCancel(reservationID int64) error {
	e.mu.Lock()

	res, ok := e.own[reservationID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("reservation %d is not one of yours", reservationID)
	}
	if res.Status.Terminal() {
		e.mu.Unlock()
		return fmt.Errorf("reservation %d is already %s", reservationID, res.Status)
	}

	if prev := e.pending; prev != nil {
		prev.timer.Stop()
		e.pending = nil
		e.mu.Unlock()
		e.commitCancel(prev)
		e.mu.Lock()
	}

	p := &pendingCancel{reservation: res, state: CancelPending}
	p.timer = time.AfterFunc(e.opts.UndoWindow, func() {
		e.mu.Lock()
		if e.pending != p {
			// undone or replaced in the meantime
			e.mu.Unlock()
			return
		}
		e.pending = nil
		e.mu.Unlock()
		e.commitCancel(p)
	})
	e.pending = p
	e.mu.Unlock()

	e.notify(Notice{
		Kind: NoticeCancelPending,
		Message: fmt.Sprintf("Canceling the walk with %s on %s at %s. Undo?",
			e.animalName(res.AnimalID), res.StartTime.Format(dateLayout), res.StartTime.Format("15:04")),
		Reservation: res,
	})

	return nil
}

// Undo revokes the pending cancellation. It returns false when no window is
// open. Nothing was changed and no request was made.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	p := e.pending
	if p == nil {
		e.mu.Unlock()
		return false
	}
	p.timer.Stop()
	p.state = CancelUndone
	e.pending = nil
	e.mu.Unlock()

	e.notify(Notice{Kind: NoticeDismissed, Message: "Cancellation undone.", Reservation: p.reservation})
	return true
}

// PendingCancellation exposes the reservation whose undo window is open.
func (e *Engine) PendingCancellation() *domain.Reservation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	return e.pending.reservation
}

// commitCancel performs the committed leg: remove the reservation from the
// local caches optimistically, issue the status patch, and compensate the
// removal if the patch fails.
func (e *Engine) commitCancel(p *pendingCancel) {
	res := p.reservation

	e.mu.Lock()
	restore := e.removeFromCachesLocked(res)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.client.CancelReservation(ctx, res.ID); err != nil {
		e.mu.Lock()
		restore()
		e.mu.Unlock()

		p.state = CancelFailed
		msg := fmt.Sprintf("Could not cancel the walk on %s: %v", res.StartTime.Format(dateLayout), err)
		if errors.Is(err, ErrUnauthorized) {
			msg = "Please sign in again to cancel this walk."
		}
		e.opts.Logger.Error("cancellation patch failed", "reservationID", res.ID, "error", err)
		e.notify(Notice{Kind: NoticeCancelFailed, Message: msg, Reservation: res})
		return
	}

	p.state = CancelCommitted
	res.Status = domain.StatusCanceled
	e.notify(Notice{Kind: NoticeCancelCommitted, Message: "The walk has been canceled.", Reservation: res})
	e.refresh(RefreshOccupancy, RefreshOwnReservations, RefreshSuggestions)
}

// removeFromCachesLocked takes the reservation out of the occupancy and
// own-reservation caches and returns a compensating closure that restores
// exactly what was removed.
func (e *Engine) removeFromCachesLocked(res *domain.Reservation) func() {
	removedOcc := make(map[string]Occupant)
	for t := res.StartTime; t.Before(res.EndTime); t = t.Add(SlotDuration) {
		key := SlotKey(t)
		if occupant, ok := e.occupancy[key]; ok && occupant.ReservationID == res.ID {
			removedOcc[key] = occupant
			delete(e.occupancy, key)
		}
	}

	_, hadOwn := e.own[res.ID]
	delete(e.own, res.ID)

	return func() {
		for key, occupant := range removedOcc {
			e.occupancy[key] = occupant
		}
		if hadOwn {
			e.own[res.ID] = res
		}
	}
}

func (e *Engine) animalName(animalID int64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.animal != nil && e.animal.ID == animalID {
		return e.animal.Name
	}
	return fmt.Sprintf("animal %d", animalID)
}
