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
	"maintenance-system/pkg/service"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, data dto.RegisterDTO) (*dto.AuthResponseDTO, error)
	Login(ctx context.Context, data dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
}

type AuthService struct {
	userRepo        repositories.UserRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	jwtService      service.JWTService
	logger          *zap.Logger
	starterEquipLim int
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	starterEquipLim int,
) AuthServiceInterface {
	return &AuthService{
		userRepo:        userRepo,
		equipmentRepo:   equipmentRepo,
		jwtService:      jwtService,
		logger:          logger,
		starterEquipLim: starterEquipLim,
	}
}

// Register — самостоятельная регистрация портального пользователя.
// Роль всегда portal: повышение роли делает администратор.
func (s *AuthService) Register(ctx context.Context, data dto.RegisterDTO) (*dto.AuthResponseDTO, error) {
	if existing, err := s.userRepo.FindUserByEmail(ctx, data.Email); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("пользователь с таким email уже существует")
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось захэшировать пароль", err)
	}

	user := entities.User{
		Fio:         data.Fio,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		Password:    string(hashed),
		Role:        string(authz.RolePortal),
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	// Best-effort: закрепляем за новым пользователем немного свободного
	// активного оборудования, чтобы ему было на что подать первую заявку.
	// Сбой здесь — удобство, а не корректность: логируем и продолжаем.
	s.assignStarterEquipment(ctx, id)

	return s.issueTokens(ctx, id)
}

func (s *AuthService) assignStarterEquipment(ctx context.Context, userID uint64) {
	items, err := s.equipmentRepo.FindUnownedActive(ctx, s.starterEquipLim)
	if err != nil {
		s.logger.Warn("не удалось подобрать стартовое оборудование", zap.Uint64("userId", userID), zap.Error(err))
		return
	}
	for _, item := range items {
		if err := s.equipmentRepo.AssignOwner(ctx, item.ID, userID); err != nil {
			s.logger.Warn("не удалось закрепить стартовое оборудование",
				zap.Uint64("userId", userID), zap.Uint64("equipmentId", item.ID), zap.Error(err))
		}
	}
}

func (s *AuthService) Login(ctx context.Context, data dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, data.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(data.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	// Пользователь мог быть удалён после выдачи токена.
	if _, err := s.userRepo.FindUser(ctx, claims.ActorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	access, refresh, err := s.jwtService.GenerateTokens(claims.ActorID)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось выпустить токены", err)
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID uint64) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	access, refresh, err := s.jwtService.GenerateTokens(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось выпустить токены", err)
	}

	return &dto.AuthResponseDTO{
		User:   mapUserToDTO(user),
		Tokens: dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh},
	}, nil
}

func mapUserToDTO(user *entities.User) dto.UserDTO {
	teamIDs := user.TeamIDs
	if teamIDs == nil {
		teamIDs = []uint64{}
	}
	return dto.UserDTO{
		ID:          user.ID,
		Fio:         user.Fio,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		TeamIDs:     teamIDs,
		CreatedAt:   user.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
}
