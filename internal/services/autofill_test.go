package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	apperrors "maintenance-system/pkg/errors"
)

func TestResolveTarget_Equipment(t *testing.T) {
	t.Run("полный профиль оборудования переносится в предложение", func(t *testing.T) {
		equipmentRepo := &mockEquipmentRepo{
			FindEquipmentFn: func(ctx context.Context, id uint64) (*entities.Equipment, error) {
				require.Equal(t, uint64(5), id)
				return &entities.Equipment{
					ID:           5,
					TeamID:       uintPtr(10),
					TechnicianID: uintPtr(3),
					WorkCenterID: uintPtr(6),
				}, nil
			},
		}
		svc := NewAutoFillService(equipmentRepo, &mockWorkCenterRepo{}, zap.NewNop())

		res, err := svc.ResolveTarget(context.Background(), entities.EquipmentTarget{EquipmentID: 5})
		require.NoError(t, err)
		require.NotNil(t, res.TeamID)
		assert.Equal(t, uint64(10), *res.TeamID)
		require.NotNil(t, res.TechnicianID)
		assert.Equal(t, uint64(3), *res.TechnicianID)
		require.NotNil(t, res.WorkCenterID)
		assert.Equal(t, uint64(6), *res.WorkCenterID)
	})

	t.Run("оборудование без команды даёт пустое предложение, не ошибку", func(t *testing.T) {
		equipmentRepo := &mockEquipmentRepo{
			FindEquipmentFn: func(ctx context.Context, id uint64) (*entities.Equipment, error) {
				return &entities.Equipment{ID: 5}, nil
			},
		}
		svc := NewAutoFillService(equipmentRepo, &mockWorkCenterRepo{}, zap.NewNop())

		res, err := svc.ResolveTarget(context.Background(), entities.EquipmentTarget{EquipmentID: 5})
		require.NoError(t, err)
		assert.Nil(t, res.TeamID)
		assert.Nil(t, res.TechnicianID)
	})

	t.Run("несуществующее оборудование", func(t *testing.T) {
		equipmentRepo := &mockEquipmentRepo{
			FindEquipmentFn: func(ctx context.Context, id uint64) (*entities.Equipment, error) {
				return nil, apperrors.ErrNotFound
			},
		}
		svc := NewAutoFillService(equipmentRepo, &mockWorkCenterRepo{}, zap.NewNop())

		_, err := svc.ResolveTarget(context.Background(), entities.EquipmentTarget{EquipmentID: 999})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeNotFound, httpErr.ErrCode)
	})
}

func TestResolveTarget_WorkCenter(t *testing.T) {
	t.Run("команда участка становится командой заявки", func(t *testing.T) {
		workCenterRepo := &mockWorkCenterRepo{
			FindWorkCenterFn: func(ctx context.Context, id uint64) (*entities.WorkCenter, error) {
				require.Equal(t, uint64(6), id)
				return &entities.WorkCenter{ID: 6, TeamID: uintPtr(20)}, nil
			},
		}
		svc := NewAutoFillService(&mockEquipmentRepo{}, workCenterRepo, zap.NewNop())

		res, err := svc.ResolveTarget(context.Background(), entities.WorkCenterTarget{WorkCenterID: 6})
		require.NoError(t, err)
		require.NotNil(t, res.TeamID)
		assert.Equal(t, uint64(20), *res.TeamID)
		assert.Nil(t, res.TechnicianID)
	})

	t.Run("участок без команды — жёсткая ошибка конфигурации", func(t *testing.T) {
		workCenterRepo := &mockWorkCenterRepo{
			FindWorkCenterFn: func(ctx context.Context, id uint64) (*entities.WorkCenter, error) {
				return &entities.WorkCenter{ID: 6}, nil
			},
		}
		svc := NewAutoFillService(&mockEquipmentRepo{}, workCenterRepo, zap.NewNop())

		_, err := svc.ResolveTarget(context.Background(), entities.WorkCenterTarget{WorkCenterID: 6})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeValidationError, httpErr.ErrCode)
		assert.Contains(t, httpErr.Message, "work center configuration is incomplete")
	})

	t.Run("несуществующий участок", func(t *testing.T) {
		workCenterRepo := &mockWorkCenterRepo{
			FindWorkCenterFn: func(ctx context.Context, id uint64) (*entities.WorkCenter, error) {
				return nil, apperrors.ErrNotFound
			},
		}
		svc := NewAutoFillService(&mockEquipmentRepo{}, workCenterRepo, zap.NewNop())

		_, err := svc.ResolveTarget(context.Background(), entities.WorkCenterTarget{WorkCenterID: 999})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeNotFound, httpErr.ErrCode)
	})
}
