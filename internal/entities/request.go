package entities

import (
	"time"

	"maintenance-system/internal/lifecycle"
	"maintenance-system/pkg/types"
)

const (
	RequestTypeCorrective = "corrective"
	RequestTypePreventive = "preventive"

	CategoryEquipment  = "equipment"
	CategoryWorkCenter = "work_center"
)

// RequestTarget — размеченное объединение цели заявки: либо оборудование,
// либо рабочий участок, всегда ровно одно из двух. Type switch по этому
// интерфейсу покрывает все варианты.
type RequestTarget interface {
	Category() string
}

type EquipmentTarget struct {
	EquipmentID uint64
}

func (EquipmentTarget) Category() string { return CategoryEquipment }

type WorkCenterTarget struct {
	WorkCenterID uint64
}

func (WorkCenterTarget) Category() string { return CategoryWorkCenter }

// MaintenanceRequest — центральная сущность: заявка на обслуживание.
// TeamID фиксируется при создании и далее неизменяем; CreatedBy неизменяем.
type MaintenanceRequest struct {
	ID          uint64          `json:"id" db:"id"`
	Subject     string          `json:"subject" db:"subject"`
	Description string          `json:"description,omitempty" db:"description"`
	Type        string          `json:"type" db:"type"`
	Category    string          `json:"category" db:"category"`
	State       lifecycle.State `json:"state" db:"state"`

	EquipmentID  *uint64 `json:"equipment_id,omitempty" db:"equipment_id"`
	WorkCenterID *uint64 `json:"work_center_id,omitempty" db:"work_center_id"`

	TeamID       uint64  `json:"team_id" db:"team_id"`
	TechnicianID *uint64 `json:"assigned_technician_id,omitempty" db:"technician_id"`

	ScheduledDate *time.Time `json:"scheduled_date,omitempty" db:"scheduled_date"`
	DurationHours *float64   `json:"duration_hours,omitempty" db:"duration_hours"`

	CreatedBy uint64 `json:"created_by" db:"created_by"`

	types.BaseEntity

	// Связанные данные (не колонки в таблице)
	Team       *Team       `json:"team,omitempty" db:"-"`
	Technician *ShortUser  `json:"technician,omitempty" db:"-"`
	Creator    *ShortUser  `json:"creator,omitempty" db:"-"`
	Equipment  *Equipment  `json:"equipment,omitempty" db:"-"`
	WorkCenter *WorkCenter `json:"work_center,omitempty" db:"-"`
}

// Target восстанавливает размеченное объединение из пары колонок
// category / equipment_id / work_center_id.
func (r *MaintenanceRequest) Target() RequestTarget {
	switch r.Category {
	case CategoryWorkCenter:
		if r.WorkCenterID != nil {
			return WorkCenterTarget{WorkCenterID: *r.WorkCenterID}
		}
	case CategoryEquipment:
		if r.EquipmentID != nil {
			return EquipmentTarget{EquipmentID: *r.EquipmentID}
		}
	}
	return nil
}
