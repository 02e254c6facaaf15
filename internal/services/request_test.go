package services

import (
	"context"
	"errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/lifecycle"
	"maintenance-system/pkg/config"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var testMaintenanceCfg = config.MaintenanceConfig{
	MaxDurationHours:       1000,
	PortalStarterEquipment: 2,
	ActorCacheTTL:          time.Minute,
}

func fixedActor(actor authz.Actor) *mockActorService {
	return &mockActorService{
		ResolveFn: func(ctx context.Context, actorID uint64) (authz.Actor, error) {
			return actor, nil
		},
	}
}

func newRequestService(
	requestRepo *mockRequestRepo,
	equipmentRepo *mockEquipmentRepo,
	teamRepo *mockTeamRepo,
	actorSvc *mockActorService,
	autofill *mockAutoFillService,
) RequestServiceInterface {
	return NewRequestService(
		&fakeTxBeginner{}, requestRepo, equipmentRepo, teamRepo,
		actorSvc, autofill, zap.NewNop(), testMaintenanceCfg,
	)
}

func uintPtr(v uint64) *uint64 { return &v }

func storedRequest(state lifecycle.State) *entities.MaintenanceRequest {
	return &entities.MaintenanceRequest{
		ID:          42,
		Subject:     "Вибрация шпинделя",
		Type:        entities.RequestTypeCorrective,
		Category:    entities.CategoryEquipment,
		State:       state,
		EquipmentID: uintPtr(5),
		TeamID:      10,
		CreatedBy:   7,
	}
}

func TestCreateRequest(t *testing.T) {
	admin := authz.Actor{ID: 1, Role: authz.RoleAdmin}
	portal := authz.Actor{ID: 7, Role: authz.RolePortal}

	validEquipmentDTO := dto.CreateRequestDTO{
		Subject:     "Вибрация шпинделя",
		Type:        entities.RequestTypeCorrective,
		Category:    entities.CategoryEquipment,
		EquipmentID: null.Uint64From(5),
	}

	t.Run("успешное создание с автозаполнением команды и исполнителя", func(t *testing.T) {
		var created entities.MaintenanceRequest
		requestRepo := &mockRequestRepo{
			CreateRequestFn: func(ctx context.Context, req entities.MaintenanceRequest) (uint64, error) {
				created = req
				return 42, nil
			},
			FindRequestFn: func(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
				require.Equal(t, uint64(42), id)
				return storedRequest(lifecycle.StateNew), nil
			},
		}
		autofill := &mockAutoFillService{
			ResolveTargetFn: func(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error) {
				assert.Equal(t, entities.EquipmentTarget{EquipmentID: 5}, target)
				return &AutoFillResult{TeamID: uintPtr(10), TechnicianID: uintPtr(3)}, nil
			},
		}

		svc := newRequestService(requestRepo, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(portal), autofill)

		res, err := svc.CreateRequest(context.Background(), 7, validEquipmentDTO)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), res.ID)
		assert.Equal(t, "new", res.State)

		assert.Equal(t, lifecycle.StateNew, created.State)
		assert.Equal(t, uint64(10), created.TeamID)
		require.NotNil(t, created.TechnicianID)
		assert.Equal(t, uint64(3), *created.TechnicianID)
		assert.Equal(t, uint64(7), created.CreatedBy)
	})

	t.Run("категория и ссылка должны быть согласованы", func(t *testing.T) {
		svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		testCases := []struct {
			name string
			data dto.CreateRequestDTO
		}{
			{
				name: "equipment без equipment_id",
				data: dto.CreateRequestDTO{Subject: "x", Type: "corrective", Category: entities.CategoryEquipment},
			},
			{
				name: "work_center без work_center_id",
				data: dto.CreateRequestDTO{Subject: "x", Type: "corrective", Category: entities.CategoryWorkCenter},
			},
			{
				name: "обе ссылки сразу",
				data: dto.CreateRequestDTO{
					Subject: "x", Type: "corrective", Category: entities.CategoryEquipment,
					EquipmentID: null.Uint64From(5), WorkCenterID: null.Uint64From(6),
				},
			},
			{
				name: "неизвестная категория",
				data: dto.CreateRequestDTO{Subject: "x", Type: "corrective", Category: "building", EquipmentID: null.Uint64From(5)},
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.CreateRequest(context.Background(), 1, tc.data)
				var httpErr *apperrors.HttpError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, apperrors.CodeValidationError, httpErr.ErrCode)
			})
		}
	})

	t.Run("портал не создаёт заявки по рабочим участкам", func(t *testing.T) {
		svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(portal), &mockAutoFillService{})

		_, err := svc.CreateRequest(context.Background(), 7, dto.CreateRequestDTO{
			Subject: "Протечка", Type: "corrective",
			Category:     entities.CategoryWorkCenter,
			WorkCenterID: null.Uint64From(6),
		})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeForbidden, httpErr.ErrCode)
	})

	t.Run("preventive требует scheduled_date", func(t *testing.T) {
		svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.CreateRequest(context.Background(), 1, dto.CreateRequestDTO{
			Subject: "Плановая ревизия", Type: entities.RequestTypePreventive,
			Category:    entities.CategoryEquipment,
			EquipmentID: null.Uint64From(5),
		})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeValidationError, httpErr.ErrCode)
	})

	t.Run("без команды заявка не создаётся", func(t *testing.T) {
		autofill := &mockAutoFillService{
			ResolveTargetFn: func(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error) {
				return &AutoFillResult{}, nil
			},
		}
		svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), autofill)

		_, err := svc.CreateRequest(context.Background(), 1, validEquipmentDTO)
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, apperrors.CodeValidationError, httpErr.ErrCode)
		assert.Contains(t, httpErr.Message, "Unable to create request")
	})

	t.Run("ошибка автозаполнения пробрасывается без изменений", func(t *testing.T) {
		wantErr := apperrors.NewNotFoundError("оборудование не найдено")
		autofill := &mockAutoFillService{
			ResolveTargetFn: func(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error) {
				return nil, wantErr
			},
		}
		svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), autofill)

		_, err := svc.CreateRequest(context.Background(), 1, validEquipmentDTO)
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestTransitionState(t *testing.T) {
	admin := authz.Actor{ID: 1, Role: authz.RoleAdmin}
	manager := authz.Actor{ID: 2, Role: authz.RoleManager}
	technician := authz.Actor{ID: 3, Role: authz.RoleTechnician, TeamIDs: []uint64{10}}
	portal := authz.Actor{ID: 7, Role: authz.RolePortal}

	// repoFor связывает мок с хранимой заявкой и записывает итог UpdateStateInTx.
	type updateCall struct {
		state         lifecycle.State
		durationHours *float64
		technicianID  *uint64
	}
	repoFor := func(stored *entities.MaintenanceRequest, recorded *[]updateCall) *mockRequestRepo {
		return &mockRequestRepo{
			FindRequestForUpdateInTxFn: func(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
				if stored == nil {
					return nil, apperrors.ErrNotFound
				}
				return stored, nil
			},
			UpdateStateInTxFn: func(ctx context.Context, tx pgx.Tx, id uint64, state lifecycle.State, durationHours *float64, technicianID *uint64) error {
				*recorded = append(*recorded, updateCall{state: state, durationHours: durationHours, technicianID: technicianID})
				stored.State = state
				return nil
			},
			FindRequestFn: func(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
				return stored, nil
			},
		}
	}

	requireErrCode := func(t *testing.T, err error, code string) *apperrors.HttpError {
		t.Helper()
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, code, httpErr.ErrCode)
		return httpErr
	}

	t.Run("заявка не найдена", func(t *testing.T) {
		svc := newRequestService(repoFor(nil, &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "in_progress"})
		requireErrCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("невидимая заявка недоступна технику чужой команды", func(t *testing.T) {
		outsider := authz.Actor{ID: 9, Role: authz.RoleTechnician, TeamIDs: []uint64{99}}
		svc := newRequestService(repoFor(storedRequest(lifecycle.StateNew), &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(outsider), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 9, 42, dto.TransitionRequestDTO{State: "in_progress"})
		requireErrCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("портал не меняет состояние даже своей заявки", func(t *testing.T) {
		svc := newRequestService(repoFor(storedRequest(lifecycle.StateNew), &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(portal), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 7, 42, dto.TransitionRequestDTO{State: "in_progress"})
		requireErrCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("недопустимый переход отклоняется машиной состояний", func(t *testing.T) {
		svc := newRequestService(repoFor(storedRequest(lifecycle.StateNew), &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "repaired"})
		httpErr := requireErrCode(t, err, apperrors.CodeInvalidStateTransition)
		assert.Contains(t, httpErr.Message, "must pass through in_progress")
	})

	t.Run("in_progress требует уже назначенного исполнителя", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew) // TechnicianID == nil
		svc := newRequestService(repoFor(stored, &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "in_progress"})
		httpErr := requireErrCode(t, err, apperrors.CodeValidationError)
		assert.Contains(t, httpErr.Message, "technician must be assigned before work begins")
	})

	t.Run("in_progress проходит при назначенном исполнителе", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		stored.TechnicianID = uintPtr(3)
		var calls []updateCall
		svc := newRequestService(repoFor(stored, &calls), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(technician), &mockAutoFillService{})

		res, err := svc.TransitionState(context.Background(), 3, 42, dto.TransitionRequestDTO{State: "in_progress"})
		require.NoError(t, err)
		assert.Equal(t, "in_progress", res.State)
		require.Len(t, calls, 1)
		assert.Equal(t, lifecycle.StateInProgress, calls[0].state)
	})

	t.Run("repaired требует duration_hours", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateInProgress)
		stored.TechnicianID = uintPtr(3)
		svc := newRequestService(repoFor(stored, &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(technician), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 3, 42, dto.TransitionRequestDTO{State: "repaired"})
		requireErrCode(t, err, apperrors.CodeValidationError)
	})

	t.Run("границы duration_hours", func(t *testing.T) {
		testCases := []struct {
			name     string
			duration float64
			wantErr  bool
		}{
			{name: "ноль", duration: 0, wantErr: true},
			{name: "отрицательная", duration: -1, wantErr: true},
			{name: "превышает максимум", duration: 1001, wantErr: true},
			{name: "ровно максимум", duration: 1000, wantErr: false},
			{name: "обычная", duration: 2.5, wantErr: false},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				stored := storedRequest(lifecycle.StateInProgress)
				stored.TechnicianID = uintPtr(3)
				var calls []updateCall
				svc := newRequestService(repoFor(stored, &calls), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(manager), &mockAutoFillService{})

				_, err := svc.TransitionState(context.Background(), 2, 42, dto.TransitionRequestDTO{
					State:         "repaired",
					DurationHours: null.Float64From(tc.duration),
				})
				if tc.wantErr {
					httpErr := requireErrCode(t, err, apperrors.CodeValidationError)
					assert.Contains(t, httpErr.Message, "duration_hours must be a positive number")
				} else {
					require.NoError(t, err)
					require.Len(t, calls, 1)
					require.NotNil(t, calls[0].durationHours)
					assert.Equal(t, tc.duration, *calls[0].durationHours)
				}
			})
		}
	})

	t.Run("назначение исполнителя доступно только admin и manager", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		stored.TechnicianID = uintPtr(3)
		svc := newRequestService(repoFor(stored, &[]updateCall{}), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(technician), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 3, 42, dto.TransitionRequestDTO{
			State:                "in_progress",
			AssignedTechnicianID: null.Uint64From(4),
		})
		requireErrCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("исполнитель должен состоять в команде заявки", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		stored.TechnicianID = uintPtr(3)
		teamRepo := &mockTeamRepo{
			IsMemberFn: func(ctx context.Context, teamID, userID uint64) (bool, error) {
				assert.Equal(t, uint64(10), teamID)
				return false, nil
			},
		}
		svc := newRequestService(repoFor(stored, &[]updateCall{}), &mockEquipmentRepo{}, teamRepo, fixedActor(manager), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 2, 42, dto.TransitionRequestDTO{
			State:                "in_progress",
			AssignedTechnicianID: null.Uint64From(4),
		})
		httpErr := requireErrCode(t, err, apperrors.CodeValidationError)
		assert.Contains(t, httpErr.Message, "member of the request's team")
	})

	t.Run("scrap списывает оборудование той же транзакцией", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		var scrappedID uint64
		equipmentRepo := &mockEquipmentRepo{
			MarkScrappedInTxFn: func(ctx context.Context, tx pgx.Tx, id uint64) error {
				scrappedID = id
				return nil
			},
		}
		var calls []updateCall
		svc := newRequestService(repoFor(stored, &calls), equipmentRepo, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		res, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "scrap"})
		require.NoError(t, err)
		assert.Equal(t, "scrap", res.State)
		assert.Equal(t, uint64(5), scrappedID)
		require.Len(t, calls, 1)
		assert.Equal(t, lifecycle.StateScrap, calls[0].state)
	})

	t.Run("повторное списание оборудования — ошибка, и состояние не пишется", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		equipmentRepo := &mockEquipmentRepo{
			MarkScrappedInTxFn: func(ctx context.Context, tx pgx.Tx, id uint64) error {
				return apperrors.ErrConflict
			},
		}
		var calls []updateCall
		svc := newRequestService(repoFor(stored, &calls), equipmentRepo, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "scrap"})
		httpErr := requireErrCode(t, err, apperrors.CodeValidationError)
		assert.Contains(t, httpErr.Message, "already marked as scrapped")
		assert.Empty(t, calls)
	})

	t.Run("scrap заявки по участку не трогает оборудование", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateNew)
		stored.Category = entities.CategoryWorkCenter
		stored.EquipmentID = nil
		stored.WorkCenterID = uintPtr(6)
		var calls []updateCall
		// MarkScrappedInTxFn nil: вызов уронил бы тест паникой.
		svc := newRequestService(repoFor(stored, &calls), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		_, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "scrap"})
		require.NoError(t, err)
		require.Len(t, calls, 1)
	})

	t.Run("повторная подача нетерминального состояния — no-op без побочных правил", func(t *testing.T) {
		stored := storedRequest(lifecycle.StateInProgress)
		stored.TechnicianID = uintPtr(3)
		var calls []updateCall
		svc := newRequestService(repoFor(stored, &calls), &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

		// duration_hours не передаётся: правило repaired здесь не применяется.
		res, err := svc.TransitionState(context.Background(), 1, 42, dto.TransitionRequestDTO{State: "in_progress"})
		require.NoError(t, err)
		assert.Equal(t, "in_progress", res.State)
		require.Len(t, calls, 1)
		assert.Nil(t, calls[0].durationHours)
	})
}

func TestGetSummary(t *testing.T) {
	admin := authz.Actor{ID: 1, Role: authz.RoleAdmin}

	requestRepo := &mockRequestRepo{
		CountByStateFn: func(ctx context.Context, scope sq.Sqlizer) (map[lifecycle.State]uint64, error) {
			assert.Nil(t, scope)
			return map[lifecycle.State]uint64{
				lifecycle.StateNew:        3,
				lifecycle.StateInProgress: 2,
				lifecycle.StateScrap:      1,
			}, nil
		},
	}
	svc := newRequestService(requestRepo, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(admin), &mockAutoFillService{})

	summary, err := svc.GetSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), summary.New)
	assert.Equal(t, uint64(2), summary.InProgress)
	assert.Equal(t, uint64(0), summary.Repaired)
	assert.Equal(t, uint64(1), summary.Scrap)
	assert.Equal(t, uint64(6), summary.Total)
}

func TestGetRequests_PassesScope(t *testing.T) {
	technician := authz.Actor{ID: 3, Role: authz.RoleTechnician, TeamIDs: []uint64{10}}

	requestRepo := &mockRequestRepo{
		GetRequestsFn: func(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
			require.NotNil(t, scope)
			query, args, err := scope.ToSql()
			require.NoError(t, err)
			assert.Contains(t, query, "r.team_id")
			assert.Equal(t, []interface{}{uint64(10)}, args)
			return []entities.MaintenanceRequest{*storedRequest(lifecycle.StateNew)}, 1, nil
		},
	}
	svc := newRequestService(requestRepo, &mockEquipmentRepo{}, &mockTeamRepo{}, fixedActor(technician), &mockAutoFillService{})

	res, total, err := svc.GetRequests(context.Background(), 3, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, res, 1)
	assert.Equal(t, uint64(42), res[0].ID)
}

func TestFindRequest_ResolveErrorStopsEverything(t *testing.T) {
	actorSvc := &mockActorService{
		ResolveFn: func(ctx context.Context, actorID uint64) (authz.Actor, error) {
			return authz.Actor{}, errors.New("redis down")
		},
	}
	svc := newRequestService(&mockRequestRepo{}, &mockEquipmentRepo{}, &mockTeamRepo{}, actorSvc, &mockAutoFillService{})

	_, err := svc.FindRequest(context.Background(), 1, 42)
	assert.Error(t, err)
}
