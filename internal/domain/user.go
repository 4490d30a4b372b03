package domain

import (
	"time"
)

type Role string

const (
	RoleVolunteer     Role = "volunteer"
	RoleCaretaker     Role = "caretaker"
	RoleVeterinarian  Role = "veterinarian"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// IsStaff reports whether the role may manage records beyond its own.
func (r Role) IsStaff() bool {
	switch r {
	case RoleCaretaker, RoleVeterinarian, RoleAdministrator:
		return true
	case RoleVolunteer:
		return false
	}
	return false
}

func (u *User) IsStaff() bool {
	return u.Role.IsStaff()
}
