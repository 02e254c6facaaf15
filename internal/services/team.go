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

type TeamServiceInterface interface {
	GetTeams(ctx context.Context, filter types.Filter) ([]dto.TeamDTO, uint64, error)
	FindTeam(ctx context.Context, id uint64) (*dto.TeamDTO, error)
	CreateTeam(ctx context.Context, actorID uint64, data dto.CreateTeamDTO) (*dto.TeamDTO, error)
	UpdateTeam(ctx context.Context, actorID, id uint64, data dto.UpdateTeamDTO) (*dto.TeamDTO, error)
	DeleteTeam(ctx context.Context, actorID, id uint64) error
	AddMember(ctx context.Context, actorID, teamID, userID uint64) error
	RemoveMember(ctx context.Context, actorID, teamID, userID uint64) error
}

type TeamService struct {
	teamRepo     repositories.TeamRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	actorService ActorServiceInterface
	logger       *zap.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	actorService ActorServiceInterface,
	logger *zap.Logger,
) TeamServiceInterface {
	return &TeamService{
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		actorService: actorService,
		logger:       logger,
	}
}

func (s *TeamService) requireAdmin(ctx context.Context, actorID uint64) error {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.CanManageCatalogs(actor) {
		return apperrors.NewForbiddenError("управлять командами может только администратор")
	}
	return nil
}

func (s *TeamService) GetTeams(ctx context.Context, filter types.Filter) ([]dto.TeamDTO, uint64, error) {
	teams, total, err := s.teamRepo.GetTeams(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.TeamDTO, 0, len(teams))
	for i := range teams {
		result = append(result, mapTeamToDTO(&teams[i]))
	}
	return result, total, nil
}

func (s *TeamService) FindTeam(ctx context.Context, id uint64) (*dto.TeamDTO, error) {
	team, err := s.teamRepo.FindTeam(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("команда не найдена")
		}
		return nil, err
	}
	result := mapTeamToDTO(team)
	return &result, nil
}

func (s *TeamService) CreateTeam(ctx context.Context, actorID uint64, data dto.CreateTeamDTO) (*dto.TeamDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	id, err := s.teamRepo.CreateTeam(ctx, entities.Team{Name: data.Name, Description: data.Description})
	if err != nil {
		return nil, err
	}
	return s.FindTeam(ctx, id)
}

func (s *TeamService) UpdateTeam(ctx context.Context, actorID, id uint64, data dto.UpdateTeamDTO) (*dto.TeamDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if err := s.teamRepo.UpdateTeam(ctx, id, data); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("команда не найдена")
		}
		return nil, err
	}
	return s.FindTeam(ctx, id)
}

func (s *TeamService) DeleteTeam(ctx context.Context, actorID, id uint64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	err := s.teamRepo.DeleteTeam(ctx, id)
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.NewValidationError("команду нельзя удалить: на неё ссылаются заявки, оборудование или рабочие участки")
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError("команда не найдена")
	}
	return err
}

func (s *TeamService) AddMember(ctx context.Context, actorID, teamID, userID uint64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindTeam(ctx, teamID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("команда не найдена")
		}
		return err
	}
	if _, err := s.userRepo.FindUser(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("пользователь не найден")
		}
		return err
	}

	if err := s.teamRepo.AddMember(ctx, teamID, userID); err != nil {
		return err
	}
	// Членство изменилось — кешированный профиль актора устарел.
	s.actorService.Invalidate(ctx, userID)
	return nil
}

func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID uint64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("участник не найден в команде")
		}
		return err
	}
	s.actorService.Invalidate(ctx, userID)
	return nil
}

func mapTeamToDTO(team *entities.Team) dto.TeamDTO {
	result := dto.TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedAt:   team.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	for _, m := range team.Members {
		result.Members = append(result.Members, dto.ShortUserDTO{ID: m.ID, Fio: m.Fio})
	}
	return result
}
