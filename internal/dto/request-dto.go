package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateRequestDTO struct {
	Subject     string `json:"subject" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"max=2000"`

	Type     string `json:"type" validate:"required,request_type"`
	Category string `json:"category" validate:"required,request_category"`

	// Ровно одна из ссылок должна быть заполнена, согласованно с category;
	// перекрёстная проверка выполняется в сервисе.
	EquipmentID  null.Uint64 `json:"equipment_id"`
	WorkCenterID null.Uint64 `json:"work_center_id"`

	// Обязательна для type=preventive.
	ScheduledDate null.Time `json:"scheduled_date"`
}

type TransitionRequestDTO struct {
	State string `json:"state" validate:"required"`

	// Обязательна при переходе в repaired.
	DurationHours null.Float64 `json:"duration_hours"`

	// Смена исполнителя тем же вызовом; только admin/manager.
	AssignedTechnicianID null.Uint64 `json:"assigned_technician_id"`
}

type ShortUserDTO struct {
	ID  uint64 `json:"id"`
	Fio string `json:"fio"`
}

type ShortTeamDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type RequestDTO struct {
	ID          uint64 `json:"id"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	State       string `json:"state"`

	EquipmentID  *uint64 `json:"equipment_id,omitempty"`
	WorkCenterID *uint64 `json:"work_center_id,omitempty"`

	Team       ShortTeamDTO  `json:"team"`
	Technician *ShortUserDTO `json:"technician,omitempty"`
	Creator    ShortUserDTO  `json:"creator"`

	ScheduledDate *string  `json:"scheduled_date,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RequestSummaryDTO — счётчики заявок по состояниям в пределах области
// видимости актора.
type RequestSummaryDTO struct {
	New        uint64 `json:"new"`
	InProgress uint64 `json:"in_progress"`
	Repaired   uint64 `json:"repaired"`
	Scrap      uint64 `json:"scrap"`
	Total      uint64 `json:"total"`
}
