package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// ValidateReservationWindow checks that a walk booking is a whole-hour
// window on a single future day inside the shelter's business hours.
func ValidateReservationWindow(start, end time.Time, openingHour, closingHour int, now time.Time) error {
	if !end.After(start) {
		return errors.New("the end time must be after the start time")
	}

	if start.Year() != end.Year() || start.YearDay() != end.YearDay() {
		return errors.New("a reservation must start and end on the same day")
	}

	if start.Minute() != 0 || start.Second() != 0 || end.Minute() != 0 || end.Second() != 0 {
		return errors.New("reservations must start and end on the hour")
	}

	if start.Hour() < openingHour || end.Hour() > closingHour {
		return fmt.Errorf("reservations are only possible between %02d:00 and %02d:00", openingHour, closingHour)
	}

	// same-day bookings are not allowed, the staff needs lead time
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if start.Before(today.AddDate(0, 0, 1)) {
		return errors.New("reservations must be made at least one day in advance")
	}

	return nil
}

func ValidateMedicationSchedule(ms *domain.MedicationSchedule) error {
	if ms.EndDate.Before(ms.StartDate) {
		return errors.New("the end date must not be before the start date")
	}
	return nil
}
