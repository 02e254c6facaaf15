package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, actorID, id uint64) (*dto.EquipmentDTO, error)
	CreateEquipment(ctx context.Context, actorID uint64, data dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, actorID, id uint64, data dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	actorService  ActorServiceInterface
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	actorService ActorServiceInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		actorService:  actorService,
		logger:        logger,
	}
}

// GetEquipments отдаёт список в пределах области видимости роли.
func (s *EquipmentService) GetEquipments(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	items, total, err := s.equipmentRepo.GetEquipments(ctx, filter, authz.EquipmentScope(actor))
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.EquipmentDTO, 0, len(items))
	for i := range items {
		result = append(result, mapEquipmentToDTO(&items[i]))
	}
	return result, total, nil
}

func (s *EquipmentService) FindEquipment(ctx context.Context, actorID, id uint64) (*dto.EquipmentDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	eq, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("оборудование не найдено")
		}
		return nil, err
	}

	if !canAccessEquipment(actor, eq) {
		return nil, apperrors.NewForbiddenError("нет доступа к этому оборудованию")
	}

	result := mapEquipmentToDTO(eq)
	return &result, nil
}

// canAccessEquipment — порядковый аналог authz.EquipmentScope.
func canAccessEquipment(actor authz.Actor, eq *entities.Equipment) bool {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleManager:
		return true
	case authz.RolePortal:
		if eq.OwnerID != nil && *eq.OwnerID == actor.ID {
			return true
		}
		return eq.Status == entities.EquipmentActive
	case authz.RoleTechnician:
		return eq.TeamID != nil && actor.MemberOf(*eq.TeamID)
	default:
		return false
	}
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, actorID uint64, data dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageCatalogs(actor) {
		return nil, apperrors.NewForbiddenError("создавать оборудование может только администратор")
	}

	eq := entities.Equipment{
		Name:            data.Name,
		InventoryNumber: uuid.NewString(),
		Status:          entities.EquipmentActive,
	}
	if data.OwnerID.Valid {
		v := data.OwnerID.Uint64
		eq.OwnerID = &v
	}
	if data.TeamID.Valid {
		v := data.TeamID.Uint64
		eq.TeamID = &v
	}
	if data.TechnicianID.Valid {
		v := data.TechnicianID.Uint64
		eq.TechnicianID = &v
	}
	if data.WorkCenterID.Valid {
		v := data.WorkCenterID.Uint64
		eq.WorkCenterID = &v
	}

	id, err := s.equipmentRepo.CreateEquipment(ctx, eq)
	if err != nil {
		return nil, err
	}

	created, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	result := mapEquipmentToDTO(created)
	return &result, nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, actorID, id uint64, data dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageCatalogs(actor) {
		return nil, apperrors.NewForbiddenError("изменять оборудование может только администратор")
	}

	if err := s.equipmentRepo.UpdateEquipment(ctx, id, data); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("оборудование не найдено")
		}
		return nil, err
	}

	updated, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	result := mapEquipmentToDTO(updated)
	return &result, nil
}

func mapEquipmentToDTO(eq *entities.Equipment) dto.EquipmentDTO {
	result := dto.EquipmentDTO{
		ID:              eq.ID,
		Name:            eq.Name,
		InventoryNumber: eq.InventoryNumber,
		Status:          eq.Status,
		OwnerID:         eq.OwnerID,
		WorkCenterID:    eq.WorkCenterID,
		CreatedAt:       eq.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if eq.Team != nil {
		result.Team = &dto.ShortTeamDTO{ID: eq.Team.ID, Name: eq.Team.Name}
	}
	if eq.TechnicianID != nil {
		result.Technician = &dto.ShortUserDTO{ID: *eq.TechnicianID}
	}
	return result
}
