package domain

import "time"

type MedicalExamination struct {
	ID         int64     `json:"id"`
	AnimalID   int64     `json:"animalID"`
	VetID      int64     `json:"vetID"`
	ExaminedAt time.Time `json:"examinedAt"`
	Diagnosis  string    `json:"diagnosis"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

type MedicationSchedule struct {
	ID           int64     `json:"id"`
	AnimalID     int64     `json:"animalID"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Instructions string    `json:"instructions"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	TimesPerDay  int32     `json:"timesPerDay"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
