package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
)

// AutoFillResult — предложения, выведенные из цели заявки: ответственная
// команда и, если настроен, исполнитель. Цепочек фолбэков нет: если команду
// разрешить не удалось, это ошибка создания, а не умолчание.
type AutoFillResult struct {
	TeamID       *uint64
	TechnicianID *uint64
	WorkCenterID *uint64
}

type AutoFillServiceInterface interface {
	ResolveTarget(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error)
}

type AutoFillService struct {
	equipmentRepo  repositories.EquipmentRepositoryInterface
	workCenterRepo repositories.WorkCenterRepositoryInterface
	logger         *zap.Logger
}

func NewAutoFillService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	workCenterRepo repositories.WorkCenterRepositoryInterface,
	logger *zap.Logger,
) AutoFillServiceInterface {
	return &AutoFillService{
		equipmentRepo:  equipmentRepo,
		workCenterRepo: workCenterRepo,
		logger:         logger,
	}
}

func (s *AutoFillService) ResolveTarget(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error) {
	switch t := target.(type) {
	case entities.EquipmentTarget:
		return s.resolveFromEquipment(ctx, t.EquipmentID)
	case entities.WorkCenterTarget:
		return s.resolveFromWorkCenter(ctx, t.WorkCenterID)
	default:
		return nil, apperrors.NewValidationError("неизвестная категория цели заявки")
	}
}

func (s *AutoFillService) resolveFromEquipment(ctx context.Context, equipmentID uint64) (*AutoFillResult, error) {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("оборудование не найдено")
		}
		return nil, fmt.Errorf("ошибка загрузки оборудования для автозаполнения: %w", err)
	}

	return &AutoFillResult{
		TeamID:       equipment.TeamID,
		TechnicianID: equipment.TechnicianID,
		WorkCenterID: equipment.WorkCenterID,
	}, nil
}

func (s *AutoFillService) resolveFromWorkCenter(ctx context.Context, workCenterID uint64) (*AutoFillResult, error) {
	workCenter, err := s.workCenterRepo.FindWorkCenter(ctx, workCenterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("рабочий участок не найден")
		}
		return nil, fmt.Errorf("ошибка загрузки рабочего участка для автозаполнения: %w", err)
	}

	// Жёсткое предусловие: без ответственной команды заявка по участку
	// существовать не может.
	if workCenter.TeamID == nil {
		s.logger.Warn("рабочий участок без команды по умолчанию",
			zap.Uint64("workCenterId", workCenterID))
		return nil, apperrors.NewValidationError("work center configuration is incomplete: no default team assigned")
	}

	return &AutoFillResult{TeamID: workCenter.TeamID}, nil
}
