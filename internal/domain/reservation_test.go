package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatusTransitions(t *testing.T) {
	cases := []struct {
		from ReservationStatus
		to   ReservationStatus
		ok   bool
	}{
		{StatusNotDecided, StatusUpcoming, true},
		{StatusNotDecided, StatusCanceled, true},
		{StatusNotDecided, StatusCompleted, false},
		{StatusNotDecided, StatusMissed, false},
		{StatusUpcoming, StatusCompleted, true},
		{StatusUpcoming, StatusMissed, true},
		{StatusUpcoming, StatusCanceled, true},
		{StatusUpcoming, StatusNotDecided, false},
		{StatusCanceled, StatusUpcoming, false},
		{StatusCanceled, StatusNotDecided, false},
		{StatusCompleted, StatusCanceled, false},
		{StatusMissed, StatusUpcoming, false},
		{StatusUpcoming, ReservationStatus(9), false},
	}

	for _, c := range cases {
		assert.Equalf(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	assert.False(t, StatusNotDecided.Terminal())
	assert.False(t, StatusUpcoming.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusMissed.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestReservationActive(t *testing.T) {
	for _, s := range []ReservationStatus{StatusNotDecided, StatusUpcoming, StatusCompleted, StatusMissed} {
		r := Reservation{Status: s}
		assert.True(t, r.Active(), s.String())
	}
	r := Reservation{Status: StatusCanceled}
	assert.False(t, r.Active())
}
