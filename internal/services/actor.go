package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/repositories"
)

// ActorServiceInterface — сервис разрешения актора: по ID вызывающей стороны
// отдаёт {id, роль, команды} для политики. Профиль кешируется в Redis, кеш
// сбрасывается при изменении пользователя или его членства.
type ActorServiceInterface interface {
	Resolve(ctx context.Context, actorID uint64) (authz.Actor, error)
	Invalidate(ctx context.Context, actorID uint64)
}

type ActorService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

func NewActorService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) ActorServiceInterface {
	return &ActorService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

type cachedActor struct {
	ID      uint64   `json:"id"`
	Role    string   `json:"role"`
	TeamIDs []uint64 `json:"team_ids"`
}

func actorCacheKey(actorID uint64) string {
	return fmt.Sprintf("actor:%d", actorID)
}

func (s *ActorService) Resolve(ctx context.Context, actorID uint64) (authz.Actor, error) {
	if raw, err := s.cacheRepo.Get(ctx, actorCacheKey(actorID)); err == nil && raw != "" {
		var cached cachedActor
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return authz.Actor{
				ID:      cached.ID,
				Role:    authz.ParseRole(cached.Role),
				TeamIDs: cached.TeamIDs,
			}, nil
		}
	}

	user, err := s.userRepo.FindUser(ctx, actorID)
	if err != nil {
		return authz.Actor{}, err
	}

	actor := authz.Actor{
		ID:      user.ID,
		Role:    authz.ParseRole(user.Role),
		TeamIDs: user.TeamIDs,
	}

	// Кеш — ускорение, не корректность: ошибка записи только логируется.
	if raw, err := json.Marshal(cachedActor{ID: user.ID, Role: user.Role, TeamIDs: user.TeamIDs}); err == nil {
		if err := s.cacheRepo.Set(ctx, actorCacheKey(actorID), string(raw), s.cacheTTL); err != nil {
			s.logger.Warn("не удалось записать профиль актора в кеш", zap.Uint64("actorId", actorID), zap.Error(err))
		}
	}

	return actor, nil
}

func (s *ActorService) Invalidate(ctx context.Context, actorID uint64) {
	if err := s.cacheRepo.Del(ctx, actorCacheKey(actorID)); err != nil {
		s.logger.Warn("не удалось сбросить кеш актора", zap.Uint64("actorId", actorID), zap.Error(err))
	}
}
