package repository

import (
	"context"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

// CreateReservation relies on the reservations_no_overlap_excl exclusion
// constraint for the double-booking guarantee: two active reservations for
// the same animal can never overlap, no matter how the requests interleave.
// Callers map the constraint violation to a user-facing conflict message.
func (r *Repository) CreateReservation(res *domain.Reservation) error {
	query := `
		INSERT INTO reservations (animal_id, user_id, start_time, end_time, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{res.AnimalID, res.UserID, res.StartTime, res.EndTime, res.Status, nullableString(res.IdempotencyKey)}
	dst := []any{&res.ID, &res.CreatedAt, &res.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetReservationByID(id int64) (*domain.Reservation, error) {
	query := `
		SELECT animal_id, user_id, start_time, end_time, status, COALESCE(idempotency_key, ''), created_at, version
		FROM reservations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res := &domain.Reservation{
		ID: id,
	}

	dst := []any{&res.AnimalID, &res.UserID, &res.StartTime, &res.EndTime, &res.Status, &res.IdempotencyKey, &res.CreatedAt, &res.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repository) GetReservationByIdempotencyKey(key string) (*domain.Reservation, error) {
	query := `
		SELECT id, animal_id, user_id, start_time, end_time, status, created_at, version
		FROM reservations WHERE idempotency_key = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res := &domain.Reservation{
		IdempotencyKey: key,
	}

	dst := []any{&res.ID, &res.AnimalID, &res.UserID, &res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt, &res.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, key).Scan(dst...); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *Repository) queryReservations(query string, args ...any) ([]*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		res := &domain.Reservation{}
		dst := []any{&res.ID, &res.AnimalID, &res.UserID, &res.StartTime, &res.EndTime, &res.Status, &res.IdempotencyKey, &res.CreatedAt, &res.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

const reservationColumns = `
	SELECT id, animal_id, user_id, start_time, end_time, status, COALESCE(idempotency_key, ''), created_at, version
	FROM reservations
`

func (r *Repository) GetAllReservations() ([]*domain.Reservation, error) {
	return r.queryReservations(reservationColumns + ` ORDER BY start_time, id`)
}

func (r *Repository) GetReservationsByUserID(userID int64) ([]*domain.Reservation, error) {
	return r.queryReservations(reservationColumns+` WHERE user_id = $1 ORDER BY start_time, id`, userID)
}

func (r *Repository) GetReservationsByAnimalID(animalID int64) ([]*domain.Reservation, error) {
	return r.queryReservations(reservationColumns+` WHERE animal_id = $1 ORDER BY start_time, id`, animalID)
}

// UpdateReservationStatus is the only mutation the lifecycle allows after
// creation. The exclusion constraint only covers active rows, so flipping a
// row to canceled frees its slots atomically.
func (r *Repository) UpdateReservationStatus(res *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, res.Status, res.ID, res.Version).Scan(&res.Version); err != nil {
		return err
	}

	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
