package dto

import "github.com/aarondl/null/v8"

type EquipmentDTO struct {
	ID              uint64        `json:"id"`
	Name            string        `json:"name"`
	InventoryNumber string        `json:"inventory_number"`
	Status          string        `json:"status"`
	OwnerID         *uint64       `json:"owner_id,omitempty"`
	Team            *ShortTeamDTO `json:"team,omitempty"`
	Technician      *ShortUserDTO `json:"technician,omitempty"`
	WorkCenterID    *uint64       `json:"work_center_id,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

type CreateEquipmentDTO struct {
	Name         string      `json:"name" validate:"required,min=2,max=255"`
	OwnerID      null.Uint64 `json:"owner_id"`
	TeamID       null.Uint64 `json:"team_id"`
	TechnicianID null.Uint64 `json:"technician_id"`
	WorkCenterID null.Uint64 `json:"work_center_id"`
}

type UpdateEquipmentDTO struct {
	Name         null.String `json:"name" validate:"omitempty,min=2,max=255"`
	OwnerID      null.Uint64 `json:"owner_id"`
	TeamID       null.Uint64 `json:"team_id"`
	TechnicianID null.Uint64 `json:"technician_id"`
	WorkCenterID null.Uint64 `json:"work_center_id"`
}
