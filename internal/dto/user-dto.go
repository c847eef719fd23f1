package dto

import "github.com/aarondl/null/v8"

type UserDTO struct {
	ID        uint64       `json:"id"`
	Fio       string       `json:"fio"`
	Email     string       `json:"email"`
	Phone     null.String  `json:"phone"`
	Position  null.String  `json:"position"`
	Role      ShortRoleDTO `json:"role"`
	IsActive  bool         `json:"is_active"`
	CreatedAt string       `json:"created_at"`
}

type CreateUserDTO struct {
	Fio      string      `json:"fio" validate:"required,min=3"`
	Email    string      `json:"email" validate:"required,custom_email"`
	Phone    null.String `json:"phone"`
	Position null.String `json:"position"`
	Password string      `json:"password" validate:"required,min=6"`
	RoleID   uint64      `json:"role_id" validate:"required"`
}

type UpdateUserDTO struct {
	Fio      string      `json:"fio"`
	Phone    null.String `json:"phone"`
	Position null.String `json:"position"`
	RoleID   uint64      `json:"role_id"`
	IsActive *bool       `json:"is_active"`
}

// ReceiverDTO - элемент списка допустимых получателей акта
// (пользователи с ролью материально-ответственного лица).
type ReceiverDTO struct {
	ID          uint64      `json:"id"`
	Fio         string      `json:"fio"`
	ContactHint null.String `json:"contact_hint"`
}
