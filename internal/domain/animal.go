package domain

import "time"

type Animal struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Sex         string    `json:"sex"`
	BirthDate   time.Time `json:"birthDate"`
	IntakeDate  time.Time `json:"intakeDate"`
	Description string    `json:"description"`
	Adopted     bool      `json:"adopted"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
