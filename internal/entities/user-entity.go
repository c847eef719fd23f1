package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type User struct {
	ID           uint64      `json:"id"`
	Fio          string      `json:"fio"`
	Email        string      `json:"email"`
	Phone        null.String `json:"phone"`
	PasswordHash string      `json:"-"`
	Position     null.String `json:"position"`
	RoleID       uint64      `json:"role_id"`
	IsActive     bool        `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Role *Role `db:"-" json:"role,omitempty"`
}
