package repository

import (
	"context"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
)

func (r *Repository) CreateMedicalExamination(exam *domain.MedicalExamination) error {
	query := `
		INSERT INTO medical_examinations (animal_id, vet_id, examined_at, diagnosis, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{exam.AnimalID, exam.VetID, exam.ExaminedAt, exam.Diagnosis, exam.Notes}
	dst := []any{&exam.ID, &exam.CreatedAt, &exam.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetMedicalExaminationByID(id int64) (*domain.MedicalExamination, error) {
	query := `
		SELECT animal_id, vet_id, examined_at, diagnosis, notes, created_at, version
		FROM medical_examinations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	exam := &domain.MedicalExamination{
		ID: id,
	}

	dst := []any{&exam.AnimalID, &exam.VetID, &exam.ExaminedAt, &exam.Diagnosis, &exam.Notes, &exam.CreatedAt, &exam.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return exam, nil
}

func (r *Repository) GetMedicalExaminationsByAnimalID(animalID int64) ([]*domain.MedicalExamination, error) {
	query := `
		SELECT id, animal_id, vet_id, examined_at, diagnosis, notes, created_at, version
		FROM medical_examinations WHERE animal_id = $1
		ORDER BY examined_at DESC, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exams := make([]*domain.MedicalExamination, 0)
	for rows.Next() {
		exam := &domain.MedicalExamination{}
		dst := []any{&exam.ID, &exam.AnimalID, &exam.VetID, &exam.ExaminedAt, &exam.Diagnosis, &exam.Notes, &exam.CreatedAt, &exam.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exams, nil
}

func (r *Repository) UpdateMedicalExamination(exam *domain.MedicalExamination) error {
	query := `
		UPDATE medical_examinations
		SET
			examined_at = $1,
			diagnosis = $2,
			notes = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{exam.ExaminedAt, exam.Diagnosis, exam.Notes, exam.ID, exam.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&exam.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteMedicalExamination(id int64) error {
	query := `
		DELETE FROM medical_examinations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateMedicationSchedule(ms *domain.MedicationSchedule) error {
	query := `
		INSERT INTO medication_schedules (animal_id, name, dosage, instructions, start_date, end_date, times_per_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{ms.AnimalID, ms.Name, ms.Dosage, ms.Instructions, ms.StartDate, ms.EndDate, ms.TimesPerDay}
	dst := []any{&ms.ID, &ms.CreatedAt, &ms.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetMedicationScheduleByID(id int64) (*domain.MedicationSchedule, error) {
	query := `
		SELECT animal_id, name, dosage, instructions, start_date, end_date, times_per_day, created_at, version
		FROM medication_schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	ms := &domain.MedicationSchedule{
		ID: id,
	}

	dst := []any{&ms.AnimalID, &ms.Name, &ms.Dosage, &ms.Instructions, &ms.StartDate, &ms.EndDate, &ms.TimesPerDay, &ms.CreatedAt, &ms.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return ms, nil
}

func (r *Repository) GetMedicationSchedulesByAnimalID(animalID int64) ([]*domain.MedicationSchedule, error) {
	query := `
		SELECT id, animal_id, name, dosage, instructions, start_date, end_date, times_per_day, created_at, version
		FROM medication_schedules WHERE animal_id = $1
		ORDER BY start_date, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.MedicationSchedule, 0)
	for rows.Next() {
		ms := &domain.MedicationSchedule{}
		dst := []any{&ms.ID, &ms.AnimalID, &ms.Name, &ms.Dosage, &ms.Instructions, &ms.StartDate, &ms.EndDate, &ms.TimesPerDay, &ms.CreatedAt, &ms.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, ms)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) UpdateMedicationSchedule(ms *domain.MedicationSchedule) error {
	query := `
		UPDATE medication_schedules
		SET
			name = $1,
			dosage = $2,
			instructions = $3,
			start_date = $4,
			end_date = $5,
			times_per_day = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{ms.Name, ms.Dosage, ms.Instructions, ms.StartDate, ms.EndDate, ms.TimesPerDay, ms.ID, ms.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ms.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteMedicationSchedule(id int64) error {
	query := `
		DELETE FROM medication_schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
