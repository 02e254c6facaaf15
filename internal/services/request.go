package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/lifecycle"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/config"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, creatorID uint64, data dto.CreateRequestDTO) (*dto.RequestDTO, error)
	GetRequests(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, actorID, requestID uint64) (*dto.RequestDTO, error)
	TransitionState(ctx context.Context, actorID, requestID uint64, data dto.TransitionRequestDTO) (*dto.RequestDTO, error)
	GetSummary(ctx context.Context, actorID uint64) (*dto.RequestSummaryDTO, error)
}

// RequestService — оркестратор жизненного цикла заявки. Порядок проверок при
// переходе фиксирован: существование → видимость → запрет для портала →
// машина состояний → бизнес-правила → side effect списания.
type RequestService struct {
	pool           repositories.TxBeginner
	requestRepo    repositories.RequestRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	teamRepo       repositories.TeamRepositoryInterface
	actorService   ActorServiceInterface
	autofill       AutoFillServiceInterface
	logger         *zap.Logger
	maintenanceCfg config.MaintenanceConfig
}

func NewRequestService(
	pool repositories.TxBeginner,
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	actorService ActorServiceInterface,
	autofill AutoFillServiceInterface,
	logger *zap.Logger,
	maintenanceCfg config.MaintenanceConfig,
) RequestServiceInterface {
	return &RequestService{
		pool:           pool,
		requestRepo:    requestRepo,
		equipmentRepo:  equipmentRepo,
		teamRepo:       teamRepo,
		actorService:   actorService,
		autofill:       autofill,
		logger:         logger,
		maintenanceCfg: maintenanceCfg,
	}
}

// buildTarget проверяет согласованность category с парой ссылок и собирает
// размеченное объединение: ровно одна ссылка, совпадающая с категорией.
func buildTarget(data dto.CreateRequestDTO) (entities.RequestTarget, error) {
	switch data.Category {
	case entities.CategoryEquipment:
		if !data.EquipmentID.Valid {
			return nil, apperrors.NewValidationError("equipment_id обязателен для категории equipment")
		}
		if data.WorkCenterID.Valid {
			return nil, apperrors.NewValidationError("заявка не может ссылаться одновременно на оборудование и рабочий участок")
		}
		return entities.EquipmentTarget{EquipmentID: data.EquipmentID.Uint64}, nil
	case entities.CategoryWorkCenter:
		if !data.WorkCenterID.Valid {
			return nil, apperrors.NewValidationError("work_center_id обязателен для категории work_center")
		}
		if data.EquipmentID.Valid {
			return nil, apperrors.NewValidationError("заявка не может ссылаться одновременно на оборудование и рабочий участок")
		}
		return entities.WorkCenterTarget{WorkCenterID: data.WorkCenterID.Uint64}, nil
	default:
		return nil, apperrors.NewValidationError("неизвестная категория заявки: %s", data.Category)
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, creatorID uint64, data dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	actor, err := s.actorService.Resolve(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	target, err := buildTarget(data)
	if err != nil {
		return nil, err
	}

	if _, isWorkCenter := target.(entities.WorkCenterTarget); isWorkCenter {
		if !authz.CanCreateWorkCenterRequest(actor) {
			return nil, apperrors.NewForbiddenError("портальным пользователям недоступны заявки по рабочим участкам")
		}
	}

	if data.Type == entities.RequestTypePreventive && !data.ScheduledDate.Valid {
		return nil, apperrors.NewValidationError("scheduled_date обязательна для планового (preventive) обслуживания")
	}

	suggestion, err := s.autofill.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if suggestion.TeamID == nil {
		// Без ответственной команды заявка существовать не может.
		return nil, apperrors.NewValidationError("Unable to create request: no responsible maintenance team is configured for the selected target")
	}

	request := entities.MaintenanceRequest{
		Subject:      data.Subject,
		Description:  data.Description,
		Type:         data.Type,
		Category:     target.Category(),
		State:        lifecycle.StateNew,
		TeamID:       *suggestion.TeamID,
		TechnicianID: suggestion.TechnicianID,
		CreatedBy:    creatorID,
	}
	switch t := target.(type) {
	case entities.EquipmentTarget:
		request.EquipmentID = &t.EquipmentID
	case entities.WorkCenterTarget:
		request.WorkCenterID = &t.WorkCenterID
	}
	if data.ScheduledDate.Valid {
		ts := data.ScheduledDate.Time
		request.ScheduledDate = &ts
	}

	id, err := s.requestRepo.CreateRequest(ctx, request)
	if err != nil {
		s.logger.Error("ошибка создания заявки", zap.Error(err))
		return nil, err
	}

	created, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapRequestToDTO(created), nil
}

func (s *RequestService) GetRequests(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.RequestDTO, uint64, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	requests, total, err := s.requestRepo.GetRequests(ctx, filter, authz.RequestScope(actor))
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.RequestDTO, 0, len(requests))
	for i := range requests {
		result = append(result, *mapRequestToDTO(&requests[i]))
	}
	return result, total, nil
}

func (s *RequestService) FindRequest(ctx context.Context, actorID, requestID uint64) (*dto.RequestDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.FindRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("заявка не найдена")
		}
		return nil, err
	}

	if !authz.CanAccessRequest(actor, request) {
		return nil, apperrors.NewForbiddenError("нет доступа к этой заявке")
	}
	return mapRequestToDTO(request), nil
}

func (s *RequestService) GetSummary(ctx context.Context, actorID uint64) (*dto.RequestSummaryDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	counts, err := s.requestRepo.CountByState(ctx, authz.RequestScope(actor))
	if err != nil {
		return nil, err
	}

	summary := &dto.RequestSummaryDTO{
		New:        counts[lifecycle.StateNew],
		InProgress: counts[lifecycle.StateInProgress],
		Repaired:   counts[lifecycle.StateRepaired],
		Scrap:      counts[lifecycle.StateScrap],
	}
	summary.Total = summary.New + summary.InProgress + summary.Repaired + summary.Scrap
	return summary, nil
}

// TransitionState выполняет переход состояния заявки. Чтение под блокировкой,
// запись состояния и списание оборудования идут одной транзакцией: либо
// фиксируются обе записи, либо ни одной.
func (s *RequestService) TransitionState(ctx context.Context, actorID, requestID uint64, data dto.TransitionRequestDTO) (*dto.RequestDTO, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	err = repositories.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindRequestForUpdateInTx(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewNotFoundError("заявка не найдена")
			}
			return err
		}

		if !authz.CanAccessRequest(actor, request) {
			return apperrors.NewForbiddenError("нет доступа к этой заявке")
		}

		// Портал не меняет состояние никогда, даже на собственной заявке.
		if !authz.CanChangeState(actor) {
			return apperrors.NewForbiddenError("портальным пользователям запрещено менять состояние заявки")
		}

		requested := lifecycle.State(data.State)
		if err := lifecycle.Validate(request.State, requested); err != nil {
			var transitionErr *lifecycle.TransitionError
			if errors.As(err, &transitionErr) {
				return apperrors.NewStateTransitionError(transitionErr.Reason)
			}
			return err
		}

		var durationHours *float64
		var technicianID *uint64

		stateChanges := request.State != requested

		if stateChanges && requested == lifecycle.StateInProgress && request.TechnicianID == nil {
			return apperrors.NewValidationError("technician must be assigned before work begins")
		}

		if stateChanges && requested == lifecycle.StateRepaired {
			if !data.DurationHours.Valid {
				return apperrors.NewValidationError("duration_hours is required when marking a request repaired")
			}
			d := data.DurationHours.Float64
			if d <= 0 || d > s.maintenanceCfg.MaxDurationHours {
				return apperrors.NewValidationError(
					"duration_hours must be a positive number not greater than %v", s.maintenanceCfg.MaxDurationHours)
			}
			durationHours = &d
		}

		if data.AssignedTechnicianID.Valid {
			newTechID := data.AssignedTechnicianID.Uint64
			if request.TechnicianID == nil || *request.TechnicianID != newTechID {
				if !authz.CanAssignTechnician(actor) {
					return apperrors.NewForbiddenError("назначать исполнителя могут только администратор или менеджер")
				}
				isMember, err := s.teamRepo.IsMember(ctx, request.TeamID, newTechID)
				if err != nil {
					return err
				}
				if !isMember {
					return apperrors.NewValidationError("assigned technician must be a member of the request's team")
				}
				technicianID = &newTechID
			}
		}

		// Side effect списания: заявка по оборудованию, уходящая в scrap,
		// списывает и само оборудование в той же транзакции. Повторное
		// списание — ошибка, а не тихий no-op.
		if stateChanges && requested == lifecycle.StateScrap && request.EquipmentID != nil {
			if err := s.equipmentRepo.MarkScrappedInTx(ctx, tx, *request.EquipmentID); err != nil {
				if errors.Is(err, apperrors.ErrConflict) {
					return apperrors.NewValidationError("equipment is already marked as scrapped")
				}
				return err
			}
		}

		return s.requestRepo.UpdateStateInTx(ctx, tx, requestID, requested, durationHours, technicianID)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.requestRepo.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return mapRequestToDTO(updated), nil
}

func mapRequestToDTO(req *entities.MaintenanceRequest) *dto.RequestDTO {
	result := &dto.RequestDTO{
		ID:            req.ID,
		Subject:       req.Subject,
		Description:   req.Description,
		Type:          req.Type,
		Category:      req.Category,
		State:         string(req.State),
		EquipmentID:   req.EquipmentID,
		WorkCenterID:  req.WorkCenterID,
		DurationHours: req.DurationHours,
		Team:          dto.ShortTeamDTO{ID: req.TeamID},
		Creator:       dto.ShortUserDTO{ID: req.CreatedBy},
		CreatedAt:     req.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt:     req.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
	}

	if req.Team != nil {
		result.Team.Name = req.Team.Name
	}
	if req.Creator != nil {
		result.Creator.Fio = req.Creator.Fio
	}
	if req.Technician != nil {
		result.Technician = &dto.ShortUserDTO{ID: req.Technician.ID, Fio: req.Technician.Fio}
	}
	if req.ScheduledDate != nil {
		formatted := req.ScheduledDate.Format(time.DateOnly)
		result.ScheduledDate = &formatted
	}
	return result
}
