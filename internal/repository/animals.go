package repository

import (
	"context"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

func (r *Repository) CreateAnimal(animal *domain.Animal) error {
	query := `
		INSERT INTO animals (name, species, breed, sex, birth_date, intake_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, adopted, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{animal.Name, animal.Species, animal.Breed, animal.Sex, animal.BirthDate, animal.IntakeDate, animal.Description}
	dst := []any{&animal.ID, &animal.Adopted, &animal.CreatedAt, &animal.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAnimalByID(id int64) (*domain.Animal, error) {
	query := `
		SELECT name, species, breed, sex, birth_date, intake_date, description, adopted, created_at, version
		FROM animals WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	animal := &domain.Animal{
		ID: id,
	}

	dst := []any{&animal.Name, &animal.Species, &animal.Breed, &animal.Sex, &animal.BirthDate, &animal.IntakeDate, &animal.Description, &animal.Adopted, &animal.CreatedAt, &animal.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return animal, nil
}

func (r *Repository) GetAllAnimals() ([]*domain.Animal, error) {
	query := `
		SELECT id, name, species, breed, sex, birth_date, intake_date, description, adopted, created_at, version
		FROM animals
		ORDER BY intake_date, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	animals := make([]*domain.Animal, 0)
	for rows.Next() {
		animal := &domain.Animal{}
		dst := []any{&animal.ID, &animal.Name, &animal.Species, &animal.Breed, &animal.Sex, &animal.BirthDate, &animal.IntakeDate, &animal.Description, &animal.Adopted, &animal.CreatedAt, &animal.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		animals = append(animals, animal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return animals, nil
}

func (r *Repository) UpdateAnimal(animal *domain.Animal) error {
	query := `
		UPDATE animals
		SET
			name = $1,
			species = $2,
			breed = $3,
			sex = $4,
			birth_date = $5,
			description = $6,
			adopted = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING intake_date, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{animal.Name, animal.Species, animal.Breed, animal.Sex, animal.BirthDate, animal.Description, animal.Adopted, animal.ID, animal.Version}
	dst := []any{&animal.IntakeDate, &animal.CreatedAt, &animal.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAnimal(id int64) error {
	query := `
		DELETE FROM animals WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// AnimalWalkStats feeds the suggestion ranking.
type AnimalWalkStats struct {
	AnimalID           int64
	ActiveReservations int32
	LastCompletedWalk  *time.Time
}

func (r *Repository) GetAnimalWalkStats() (map[int64]*AnimalWalkStats, error) {
	query := `
		SELECT
			a.id,
			COUNT(res.id) FILTER (WHERE res.status IN (0, 1)),
			MAX(res.end_time) FILTER (WHERE res.status = 2)
		FROM animals a
		LEFT JOIN reservations res ON res.animal_id = a.id
		GROUP BY a.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[int64]*AnimalWalkStats)
	for rows.Next() {
		s := &AnimalWalkStats{}
		if err := rows.Scan(&s.AnimalID, &s.ActiveReservations, &s.LastCompletedWalk); err != nil {
			return nil, err
		}
		stats[s.AnimalID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
