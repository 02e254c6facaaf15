package services

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/lifecycle"
	"maintenance-system/pkg/types"
)

// Ручные моки: каждый метод — поле-функция, неожиданный вызов паникует.
// Так тест явно фиксирует, какие репозиторные операции он разрешает.

type mockActorService struct {
	ResolveFn func(ctx context.Context, actorID uint64) (authz.Actor, error)
}

func (m *mockActorService) Resolve(ctx context.Context, actorID uint64) (authz.Actor, error) {
	return m.ResolveFn(ctx, actorID)
}

func (m *mockActorService) Invalidate(ctx context.Context, actorID uint64) {}

type mockAutoFillService struct {
	ResolveTargetFn func(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error)
}

func (m *mockAutoFillService) ResolveTarget(ctx context.Context, target entities.RequestTarget) (*AutoFillResult, error) {
	return m.ResolveTargetFn(ctx, target)
}

type mockRequestRepo struct {
	GetRequestsFn              func(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error)
	CountByStateFn             func(ctx context.Context, scope sq.Sqlizer) (map[lifecycle.State]uint64, error)
	FindRequestFn              func(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	CreateRequestFn            func(ctx context.Context, req entities.MaintenanceRequest) (uint64, error)
	FindRequestForUpdateInTxFn func(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error)
	UpdateStateInTxFn          func(ctx context.Context, tx pgx.Tx, id uint64, state lifecycle.State, durationHours *float64, technicianID *uint64) error
}

func (m *mockRequestRepo) GetRequests(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
	return m.GetRequestsFn(ctx, filter, scope)
}

func (m *mockRequestRepo) CountByState(ctx context.Context, scope sq.Sqlizer) (map[lifecycle.State]uint64, error) {
	return m.CountByStateFn(ctx, scope)
}

func (m *mockRequestRepo) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	return m.FindRequestFn(ctx, id)
}

func (m *mockRequestRepo) CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (uint64, error) {
	return m.CreateRequestFn(ctx, req)
}

func (m *mockRequestRepo) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	return m.FindRequestForUpdateInTxFn(ctx, tx, id)
}

func (m *mockRequestRepo) UpdateStateInTx(ctx context.Context, tx pgx.Tx, id uint64, state lifecycle.State, durationHours *float64, technicianID *uint64) error {
	return m.UpdateStateInTxFn(ctx, tx, id, state, durationHours, technicianID)
}

type mockEquipmentRepo struct {
	GetEquipmentsFn     func(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Equipment, uint64, error)
	FindEquipmentFn     func(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipmentFn   func(ctx context.Context, eq entities.Equipment) (uint64, error)
	UpdateEquipmentFn   func(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error
	MarkScrappedInTxFn  func(ctx context.Context, tx pgx.Tx, id uint64) error
	FindUnownedActiveFn func(ctx context.Context, limit int) ([]entities.Equipment, error)
	AssignOwnerFn       func(ctx context.Context, equipmentID, ownerID uint64) error
}

func (m *mockEquipmentRepo) GetEquipments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Equipment, uint64, error) {
	return m.GetEquipmentsFn(ctx, filter, scope)
}

func (m *mockEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return m.FindEquipmentFn(ctx, id)
}

func (m *mockEquipmentRepo) CreateEquipment(ctx context.Context, eq entities.Equipment) (uint64, error) {
	return m.CreateEquipmentFn(ctx, eq)
}

func (m *mockEquipmentRepo) UpdateEquipment(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error {
	return m.UpdateEquipmentFn(ctx, id, data)
}

func (m *mockEquipmentRepo) MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.MarkScrappedInTxFn(ctx, tx, id)
}

func (m *mockEquipmentRepo) FindUnownedActive(ctx context.Context, limit int) ([]entities.Equipment, error) {
	return m.FindUnownedActiveFn(ctx, limit)
}

func (m *mockEquipmentRepo) AssignOwner(ctx context.Context, equipmentID, ownerID uint64) error {
	return m.AssignOwnerFn(ctx, equipmentID, ownerID)
}

type mockTeamRepo struct {
	GetTeamsFn     func(ctx context.Context, filter types.Filter) ([]entities.Team, uint64, error)
	FindTeamFn     func(ctx context.Context, id uint64) (*entities.Team, error)
	CreateTeamFn   func(ctx context.Context, team entities.Team) (uint64, error)
	UpdateTeamFn   func(ctx context.Context, id uint64, data dto.UpdateTeamDTO) error
	DeleteTeamFn   func(ctx context.Context, id uint64) error
	GetMembersFn   func(ctx context.Context, teamID uint64) ([]entities.ShortUser, error)
	AddMemberFn    func(ctx context.Context, teamID, userID uint64) error
	RemoveMemberFn func(ctx context.Context, teamID, userID uint64) error
	IsMemberFn     func(ctx context.Context, teamID, userID uint64) (bool, error)
}

func (m *mockTeamRepo) GetTeams(ctx context.Context, filter types.Filter) ([]entities.Team, uint64, error) {
	return m.GetTeamsFn(ctx, filter)
}

func (m *mockTeamRepo) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	return m.FindTeamFn(ctx, id)
}

func (m *mockTeamRepo) CreateTeam(ctx context.Context, team entities.Team) (uint64, error) {
	return m.CreateTeamFn(ctx, team)
}

func (m *mockTeamRepo) UpdateTeam(ctx context.Context, id uint64, data dto.UpdateTeamDTO) error {
	return m.UpdateTeamFn(ctx, id, data)
}

func (m *mockTeamRepo) DeleteTeam(ctx context.Context, id uint64) error {
	return m.DeleteTeamFn(ctx, id)
}

func (m *mockTeamRepo) GetMembers(ctx context.Context, teamID uint64) ([]entities.ShortUser, error) {
	return m.GetMembersFn(ctx, teamID)
}

func (m *mockTeamRepo) AddMember(ctx context.Context, teamID, userID uint64) error {
	return m.AddMemberFn(ctx, teamID, userID)
}

func (m *mockTeamRepo) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return m.RemoveMemberFn(ctx, teamID, userID)
}

func (m *mockTeamRepo) IsMember(ctx context.Context, teamID, userID uint64) (bool, error) {
	return m.IsMemberFn(ctx, teamID, userID)
}

type mockWorkCenterRepo struct {
	GetWorkCentersFn   func(ctx context.Context, filter types.Filter) ([]entities.WorkCenter, uint64, error)
	FindWorkCenterFn   func(ctx context.Context, id uint64) (*entities.WorkCenter, error)
	CreateWorkCenterFn func(ctx context.Context, wc entities.WorkCenter) (uint64, error)
	UpdateWorkCenterFn func(ctx context.Context, id uint64, data dto.UpdateWorkCenterDTO) error
	DeleteWorkCenterFn func(ctx context.Context, id uint64) error
}

func (m *mockWorkCenterRepo) GetWorkCenters(ctx context.Context, filter types.Filter) ([]entities.WorkCenter, uint64, error) {
	return m.GetWorkCentersFn(ctx, filter)
}

func (m *mockWorkCenterRepo) FindWorkCenter(ctx context.Context, id uint64) (*entities.WorkCenter, error) {
	return m.FindWorkCenterFn(ctx, id)
}

func (m *mockWorkCenterRepo) CreateWorkCenter(ctx context.Context, wc entities.WorkCenter) (uint64, error) {
	return m.CreateWorkCenterFn(ctx, wc)
}

func (m *mockWorkCenterRepo) UpdateWorkCenter(ctx context.Context, id uint64, data dto.UpdateWorkCenterDTO) error {
	return m.UpdateWorkCenterFn(ctx, id, data)
}

func (m *mockWorkCenterRepo) DeleteWorkCenter(ctx context.Context, id uint64) error {
	return m.DeleteWorkCenterFn(ctx, id)
}

// fakeTx — заглушка транзакции: репозитории в тестах замоканы, поэтому из
// всего pgx.Tx реально вызываются только Commit и Rollback.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeTxBeginner struct {
	tx *fakeTx
}

func (b *fakeTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.tx == nil {
		b.tx = &fakeTx{}
	}
	return b.tx, nil
}
