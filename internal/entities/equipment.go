package entities

import "maintenance-system/pkg/types"

const (
	EquipmentActive   = "active"
	EquipmentScrapped = "scrapped" // терминальный статус, возврата нет
)

type Equipment struct {
	ID              uint64 `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	InventoryNumber string `json:"inventory_number" db:"inventory_number"`
	Status          string `json:"status" db:"status"`

	OwnerID      *uint64 `json:"owner_id,omitempty" db:"owner_id"`
	TeamID       *uint64 `json:"team_id,omitempty" db:"team_id"`
	TechnicianID *uint64 `json:"technician_id,omitempty" db:"technician_id"`
	WorkCenterID *uint64 `json:"work_center_id,omitempty" db:"work_center_id"`

	types.BaseEntity

	// Связанные данные (не колонки в таблице)
	Team       *Team      `json:"team,omitempty" db:"-"`
	WorkCenter *WorkCenter `json:"work_center,omitempty" db:"-"`
}

func (e *Equipment) IsScrapped() bool {
	return e.Status == EquipmentScrapped
}
