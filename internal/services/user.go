package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.UserDTO, uint64, error)
	FindUser(ctx context.Context, actorID, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, actorID uint64, data dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, actorID, id uint64, data dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, actorID, id uint64) error
}

type UserService struct {
	userRepo     repositories.UserRepositoryInterface
	actorService ActorServiceInterface
	logger       *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	actorService ActorServiceInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		userRepo:     userRepo,
		actorService: actorService,
		logger:       logger,
	}
}

func (s *UserService) requireAdmin(ctx context.Context, actorID uint64) error {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.CanManageCatalogs(actor) {
		return apperrors.NewForbiddenError("управлять пользователями может только администратор")
	}
	return nil
}

func (s *UserService) GetUsers(ctx context.Context, actorID uint64, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, mapUserToDTO(&users[i]))
	}
	return result, total, nil
}

func (s *UserService) FindUser(ctx context.Context, actorID, id uint64) (*dto.UserDTO, error) {
	// Свой профиль доступен каждому, чужие — только администратору.
	if actorID != id {
		if err := s.requireAdmin(ctx, actorID); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("пользователь не найден")
		}
		return nil, err
	}
	result := mapUserToDTO(user)
	return &result, nil
}

func (s *UserService) CreateUser(ctx context.Context, actorID uint64, data dto.CreateUserDTO) (*dto.UserDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.FindUserByEmail(ctx, data.Email); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("пользователь с таким email уже существует")
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось захэшировать пароль", err)
	}

	id, err := s.userRepo.CreateUser(ctx, entities.User{
		Fio:         data.Fio,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		Password:    string(hashed),
		Role:        data.Role,
	})
	if err != nil {
		return nil, err
	}

	if len(data.TeamIDs) > 0 {
		if err := s.userRepo.SetTeams(ctx, id, data.TeamIDs); err != nil {
			return nil, err
		}
	}

	return s.FindUser(ctx, actorID, id)
}

func (s *UserService) UpdateUser(ctx context.Context, actorID, id uint64, data dto.UpdateUserDTO) (*dto.UserDTO, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if data.Password.Valid {
		hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password.String), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.NewInternalError("не удалось захэшировать пароль", err)
		}
		data.Password.String = string(hashed)
	}
	if data.Role.Valid && authz.ParseRole(data.Role.String) == authz.RoleUnknown {
		return nil, apperrors.NewValidationError("неизвестная роль: %s", data.Role.String)
	}

	if err := s.userRepo.UpdateUser(ctx, id, data); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("пользователь не найден")
		}
		return nil, err
	}

	if data.TeamIDs != nil {
		if err := s.userRepo.SetTeams(ctx, id, data.TeamIDs); err != nil {
			return nil, err
		}
	}

	// Роль или членство могли измениться.
	s.actorService.Invalidate(ctx, id)

	return s.FindUser(ctx, actorID, id)
}

func (s *UserService) DeleteUser(ctx context.Context, actorID, id uint64) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if actorID == id {
		return apperrors.NewValidationError("нельзя удалить собственную учётную запись")
	}

	if err := s.userRepo.SoftDeleteUser(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("пользователь не найден")
		}
		return err
	}
	s.actorService.Invalidate(ctx, id)
	return nil
}
