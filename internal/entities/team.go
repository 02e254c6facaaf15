package entities

import "maintenance-system/pkg/types"

type Team struct {
	ID          uint64 `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	types.BaseEntity

	// Участники (не колонка, подгружается отдельно)
	Members []ShortUser `json:"members,omitempty" db:"-"`
}

type ShortUser struct {
	ID   uint64 `json:"id"`
	Fio  string `json:"fio"`
	Role string `json:"role"`
}
