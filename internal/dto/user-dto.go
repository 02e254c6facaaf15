package dto

import "github.com/aarondl/null/v8"

type UserDTO struct {
	ID          uint64   `json:"id"`
	Fio         string   `json:"fio"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Role        string   `json:"role"`
	TeamIDs     []uint64 `json:"team_ids"`
	CreatedAt   string   `json:"created_at"`
}

type CreateUserDTO struct {
	Fio         string   `json:"fio" validate:"required,min=3,max=255"`
	Email       string   `json:"email" validate:"required,email"`
	PhoneNumber string   `json:"phone_number" validate:"omitempty,max=32"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        string   `json:"role" validate:"required,actor_role"`
	TeamIDs     []uint64 `json:"team_ids"`
}

type UpdateUserDTO struct {
	Fio         null.String `json:"fio" validate:"omitempty,min=3,max=255"`
	PhoneNumber null.String `json:"phone_number" validate:"omitempty,max=32"`
	Password    null.String `json:"password" validate:"omitempty,min=8,max=72"`
	// Роль неизменяема в рамках сессии; менять её может только админ.
	Role    null.String `json:"role" validate:"omitempty,actor_role"`
	TeamIDs []uint64    `json:"team_ids"`
}
