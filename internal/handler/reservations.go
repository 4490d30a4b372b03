package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/utils"
)

const timeLayout = "15:04:05"

// GetReservations lists reservations visible to the caller: staff see the
// whole book, volunteers only their own.
func (h *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var (
		reservations []*domain.Reservation
		err          error
	)
	if myInfo.IsStaff() {
		reservations, err = h.repository.GetAllReservations()
	} else {
		reservations, err = h.repository.GetReservationsByUserID(myInfo.ID)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the reservation list.", reservations)
}

func (h *Handler) GetUserReservations(w http.ResponseWriter, r *http.Request) {
	userIDParam := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid user ID.")
		return
	}

	// volunteers may only look at their own bookings
	role := domain.Role(r.Context().Value(RoleCtxKey).(string))
	sub, _ := strconv.ParseInt(r.Context().Value(SubCtxKey).(string), 10, 64)
	if !role.IsStaff() && sub != userID {
		h.forbidden(w, r)
		return
	}

	reservations, err := h.repository.GetReservationsByUserID(userID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the user's reservations.", reservations)
}

func (h *Handler) GetAnimalReservations(w http.ResponseWriter, r *http.Request) {
	animalIDParam := chi.URLParam(r, "animalID")
	animalID, err := strconv.ParseInt(animalIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid animal ID.")
		return
	}

	reservations, err := h.repository.GetReservationsByAnimalID(animalID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the animal's reservations.", reservations)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	reservation := r.Context().Value(ReservationCtx).(*domain.Reservation)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if !myInfo.IsStaff() && reservation.UserID != myInfo.ID {
		h.forbidden(w, r)
		return
	}

	h.successResponse(w, r, "Fetched the reservation.", reservation)
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		UserID          int64  `json:"userID"`
		AnimalID        int64  `json:"animalID" validate:"required"`
		ReservationDate string `json:"reservationDate" validate:"required,datetime=2006-01-02"`
		StartTime       string `json:"startTime" validate:"required,datetime=15:04:05"`
		EndTime         string `json:"endTime" validate:"required,datetime=15:04:05"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// a missing userID means "book for myself"; booking on behalf of
	// someone else takes a staff role
	if req.UserID == 0 {
		req.UserID = myInfo.ID
	}
	if req.UserID != myInfo.ID && !myInfo.IsStaff() {
		h.forbidden(w, r)
		return
	}

	// a retried submission with the same key lands on the reservation the
	// first attempt created
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey != "" {
		existing, err := h.repository.GetReservationByIdempotencyKey(idempotencyKey)
		switch {
		case err == nil:
			h.createdResponse(w, r, "Reservation created.", existing)
			return
		case errors.Is(err, sql.ErrNoRows):
			// first attempt, fall through
		default:
			h.internalServerError(w, r, err)
			return
		}
	}

	animal, err := h.repository.GetAnimalByID(req.AnimalID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Animal not found.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if animal.Adopted {
		h.errorResponse(w, r, "This animal has been adopted and can no longer be walked.")
		return
	}

	day, _ := time.Parse(dateLayout, req.ReservationDate)
	startClock, _ := time.Parse(timeLayout, req.StartTime)
	endClock, _ := time.Parse(timeLayout, req.EndTime)

	startTime := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), startClock.Second(), 0, time.Local)
	endTime := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), endClock.Second(), 0, time.Local)

	if err := utils.ValidateReservationWindow(startTime, endTime, h.config.Shelter.OpeningHour, h.config.Shelter.ClosingHour, time.Now()); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	reservation := &domain.Reservation{
		AnimalID:       req.AnimalID,
		UserID:         req.UserID,
		StartTime:      startTime,
		EndTime:        endTime,
		Status:         domain.StatusUpcoming,
		IdempotencyKey: idempotencyKey,
	}

	if err := h.repository.CreateReservation(reservation); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "reservations_no_overlap_excl":
				h.errorResponse(w, r, fmt.Sprintf("%s is already reserved during this time.", animal.Name))
			case pgErr.ConstraintName == "reservations_idempotency_key_key":
				// a concurrent retry won the race, answer with its result
				existing, lookupErr := h.repository.GetReservationByIdempotencyKey(idempotencyKey)
				if lookupErr != nil {
					h.internalServerError(w, r, lookupErr)
					return
				}
				h.createdResponse(w, r, "Reservation created.", existing)
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.queueReservationMail("reservation_confirmed", myInfo, animal, reservation, r, w)
}

// patchOperation is the only JSON-Patch shape the reservation endpoint
// accepts: a single replace of /status.
type patchOperation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (h *Handler) PatchReservation(w http.ResponseWriter, r *http.Request) {
	reservation := r.Context().Value(ReservationCtx).(*domain.Reservation)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var doc []patchOperation
	if err := h.readJSON(r, &doc); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if len(doc) != 1 || doc[0].Op != "replace" || doc[0].Path != "/status" {
		h.badRequest(w, r, errors.New("only a single replace of /status is supported"))
		return
	}

	var statusValue int32
	if err := json.Unmarshal(doc[0].Value, &statusValue); err != nil {
		h.badRequest(w, r, errors.New("the status value must be a number"))
		return
	}
	next := domain.ReservationStatus(statusValue)

	if !next.Valid() {
		h.badRequest(w, r, fmt.Errorf("unknown status %d", statusValue))
		return
	}

	// volunteers may only cancel their own reservations; every other
	// transition is bookkeeping done by staff
	if !myInfo.IsStaff() {
		if reservation.UserID != myInfo.ID {
			h.forbidden(w, r)
			return
		}
		if next != domain.StatusCanceled {
			h.forbidden(w, r)
			return
		}
	}

	if !reservation.Status.CanTransitionTo(next) {
		h.errorResponse(w, r, fmt.Sprintf("A %s reservation cannot become %s.", reservation.Status, next))
		return
	}

	reservation.Status = next

	if err := h.repository.UpdateReservationStatus(reservation); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Failed to update the reservation, please try again.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if next == domain.StatusCanceled {
		animal, err := h.repository.GetAnimalByID(reservation.AnimalID)
		if err == nil {
			owner := myInfo
			if reservation.UserID != myInfo.ID {
				owner, err = h.repository.GetUserByID(reservation.UserID)
			}
			if err == nil {
				h.queueReservationMail("reservation_canceled", owner, animal, reservation, r, w)
				return
			}
		}
	}

	h.successResponse(w, r, "Reservation updated.", reservation)
}

// queueReservationMail publishes the notification mail and writes the
// final response for the mutation that triggered it.
func (h *Handler) queueReservationMail(mailType string, user *domain.User, animal *domain.Animal, reservation *domain.Reservation, r *http.Request, w http.ResponseWriter) {
	mailMessage := domain.MailMessage{
		Type: mailType,
		To:   user.Email,
		Data: domain.ReservationMailData{
			FullName:   user.FullName,
			AnimalName: animal.Name,
			Date:       reservation.StartTime.Format(dateLayout),
			StartTime:  reservation.StartTime.Format(timeLayout),
			EndTime:    reservation.EndTime.Format(timeLayout),
		},
	}

	if err := h.queueMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if mailType == "reservation_confirmed" {
		h.createdResponse(w, r, "Reservation created.", reservation)
		return
	}
	h.successResponse(w, r, "Reservation updated.", reservation)
}
