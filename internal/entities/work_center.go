package entities

import "maintenance-system/pkg/types"

// WorkCenter — участок/зона обслуживания, не привязанная к конкретному активу.
// Обязательность default team проверяется при создании заявки, не на уровне БД.
type WorkCenter struct {
	ID     uint64  `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	Code   string  `json:"code" db:"code"`
	TeamID *uint64 `json:"team_id,omitempty" db:"team_id"`

	types.BaseEntity

	Team *Team `json:"team,omitempty" db:"-"`
}
