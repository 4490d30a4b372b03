package domain

import (
	"fmt"
	"time"
)

// ReservationStatus is a closed enum. The numeric values are part of the
// wire format (PATCH /reservations/{id} replaces /status with a number).
type ReservationStatus int32

const (
	StatusNotDecided ReservationStatus = 0
	StatusUpcoming   ReservationStatus = 1
	StatusCompleted  ReservationStatus = 2
	StatusMissed     ReservationStatus = 3
	StatusCanceled   ReservationStatus = 4
)

func (s ReservationStatus) String() string {
	switch s {
	case StatusNotDecided:
		return "not decided"
	case StatusUpcoming:
		return "upcoming"
	case StatusCompleted:
		return "completed"
	case StatusMissed:
		return "missed"
	case StatusCanceled:
		return "canceled"
	}
	return fmt.Sprintf("unknown (%d)", int32(s))
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusNotDecided, StatusUpcoming, StatusCompleted, StatusMissed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusMissed, StatusCanceled:
		return true
	case StatusNotDecided, StatusUpcoming:
		return false
	}
	return false
}

// CanTransitionTo enforces the reservation lifecycle:
// NotDecided -> Upcoming | Canceled
// Upcoming   -> Completed | Missed | Canceled
// Completed, Missed and Canceled are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case StatusNotDecided:
		return next == StatusUpcoming || next == StatusCanceled
	case StatusUpcoming:
		return next == StatusCompleted || next == StatusMissed || next == StatusCanceled
	case StatusCompleted, StatusMissed, StatusCanceled:
		return false
	}
	return false
}

type Reservation struct {
	ID             int64             `json:"id"`
	AnimalID       int64             `json:"animalID"`
	UserID         int64             `json:"userID"`
	StartTime      time.Time         `json:"startTime"`
	EndTime        time.Time         `json:"endTime"`
	Status         ReservationStatus `json:"status"`
	IdempotencyKey string            `json:"-"`
	CreatedAt      time.Time         `json:"createdAt"`
	Version        int32             `json:"-"`
}

// Active reports whether the reservation still occupies its time slots.
func (r *Reservation) Active() bool {
	return r.Status != StatusCanceled
}
