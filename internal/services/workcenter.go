package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

type WorkCenterServiceInterface interface {
	GetWorkCenters(ctx context.Context, filter types.Filter) ([]dto.WorkCenterDTO, uint64, error)
	FindWorkCenter(ctx context.Context, id uint64) (*dto.WorkCenterDTO, error)
	CreateWorkCenter(ctx context.Context, actorID uint64, data dto.CreateWorkCenterDTO) (*dto.WorkCenterDTO, error)
	UpdateWorkCenter(ctx context.Context, actorID, id uint64, data dto.UpdateWorkCenterDTO) (*dto.WorkCenterDTO, error)
	DeleteWorkCenter(ctx context.Context, actorID, id uint64) error
}

type WorkCenterService struct {
	workCenterRepo repositories.WorkCenterRepositoryInterface
	actorService   ActorServiceInterface
	logger         *zap.Logger
}

func NewWorkCenterService(
	workCenterRepo repositories.WorkCenterRepositoryInterface,
	actorService ActorServiceInterface,
	logger *zap.Logger,
) WorkCenterServiceInterface {
	return &WorkCenterService{
		workCenterRepo: workCenterRepo,
		actorService:   actorService,
		logger:         logger,
	}
}

func (s *WorkCenterService) requireAdmin(ctx context.Context, actorID uint64) error {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.CanManageCatalogs(actor) {
		return apperrors.NewForbiddenError("управлять рабочими участками может только администратор")
	}
	return nil
}

func (s *WorkCenterService) GetWorkCenters(ctx context.Context, filter types.Filter) ([]dto.WorkCenterDTO, uint64, error) {
	items, total, err := s.workCenterRepo.GetWorkCenters(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.WorkCenterDTO, 0, len(items))
	for i := range items {
		result = append(result, mapWorkCenterToDTO(&items[i]))
	}
	return result, total, nil
}

func (s *WorkCenterService) FindWorkCenter(ctx context.Context, id uint64) (*dto.WorkCenterDTO, error) {
	wc, err := s.workCenterRepo.FindWorkCenter(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("рабочий участок не найден")
		}
		return nil, err
	}
	result := mapWorkCenterToDTO(wc)
	return &result, nil
}

func (s *WorkCenterService) CreateWorkCenter(ctx context.Context, actorID uint64, data dto.CreateWorkCenterDTO) (*dto.WorkCenterDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	wc := entities.WorkCenter{Name: data.Name, Code: data.Code}
	if data.TeamID.Valid {
		v := data.TeamID.Uint64
		wc.TeamID = &v
	}

	id, err := s.workCenterRepo.CreateWorkCenter(ctx, wc)
	if err != nil {
		return nil, err
	}
	return s.FindWorkCenter(ctx, id)
}

func (s *WorkCenterService) UpdateWorkCenter(ctx context.Context, actorID, id uint64, data dto.UpdateWorkCenterDTO) (*dto.WorkCenterDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if err := s.workCenterRepo.UpdateWorkCenter(ctx, id, data); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("рабочий участок не найден")
		}
		return nil, err
	}
	return s.FindWorkCenter(ctx, id)
}

func (s *WorkCenterService) DeleteWorkCenter(ctx context.Context, actorID, id uint64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	err := s.workCenterRepo.DeleteWorkCenter(ctx, id)
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.NewValidationError("рабочий участок нельзя удалить: на него ссылаются заявки или оборудование")
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError("рабочий участок не найден")
	}
	return err
}

func mapWorkCenterToDTO(wc *entities.WorkCenter) dto.WorkCenterDTO {
	result := dto.WorkCenterDTO{
		ID:        wc.ID,
		Name:      wc.Name,
		Code:      wc.Code,
		CreatedAt: wc.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if wc.Team != nil {
		result.Team = &dto.ShortTeamDTO{ID: wc.Team.ID, Name: wc.Team.Name}
	}
	return result
}
