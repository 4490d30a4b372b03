package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog would mangle the multi-line trace
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// auth expects a bearer token in the Authorization header. Missing or
// invalid credentials answer 401 so clients can distinguish them from
// domain failures and prompt for a re-login.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.unauthorized(w, r, "You are not logged in.")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			h.unauthorized(w, r, "The Authorization header must carry a bearer token.")
			return
		}

		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.unauthorized(w, r, "Invalid or expired token.")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		myInfo, err := h.repository.GetUserByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.unauthorized(w, r, "Your account no longer exists.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleCtx := r.Context().Value(RoleCtxKey).(string)
			role := domain.Role(roleCtx)
			if !slices.Contains(roles, role) {
				h.forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDParam := chi.URLParam(r, "id")
		userID, err := strconv.ParseInt(userIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Invalid user ID.")
			return
		}

		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "User not found.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "The initial administrator cannot be modified.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) animalRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		animalIDParam := chi.URLParam(r, "animalID")
		animalID, err := strconv.ParseInt(animalIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Invalid animal ID.")
			return
		}

		animal, err := h.repository.GetAnimalByID(animalID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "Animal not found.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AnimalCtx, animal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) reservationRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reservationIDParam := chi.URLParam(r, "reservationID")
		reservationID, err := strconv.ParseInt(reservationIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Invalid reservation ID.")
			return
		}

		reservation, err := h.repository.GetReservationByID(reservationID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "Reservation not found.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ReservationCtx, reservation)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) examinationRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		examIDParam := chi.URLParam(r, "examinationID")
		examID, err := strconv.ParseInt(examIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Invalid examination ID.")
			return
		}

		exam, err := h.repository.GetMedicalExaminationByID(examID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "Examination not found.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// the examination must belong to the animal in the URL
		animal := r.Context().Value(AnimalCtx).(*domain.Animal)
		if exam.AnimalID != animal.ID {
			h.notFound(w, r, "Examination not found.")
			return
		}

		ctx := context.WithValue(r.Context(), ExaminationCtx, exam)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) medicationRecord(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		medicationIDParam := chi.URLParam(r, "medicationID")
		medicationID, err := strconv.ParseInt(medicationIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "Invalid medication schedule ID.")
			return
		}

		ms, err := h.repository.GetMedicationScheduleByID(medicationID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "Medication schedule not found.")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		animal := r.Context().Value(AnimalCtx).(*domain.Animal)
		if ms.AnimalID != animal.ID {
			h.notFound(w, r, "Medication schedule not found.")
			return
		}

		ctx := context.WithValue(r.Context(), MedicationCtx, ms)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventDeactivatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
		if !myInfo.IsActive {
			h.errorResponse(w, r, "Your account has been deactivated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
