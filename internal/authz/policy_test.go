package authz

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-system/internal/entities"
)

func toSQL(t *testing.T, s sq.Sqlizer) (string, []interface{}) {
	t.Helper()
	query, args, err := s.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input string
		want  Role
	}{
		{input: "admin", want: RoleAdmin},
		{input: "manager", want: RoleManager},
		{input: "technician", want: RoleTechnician},
		{input: "portal", want: RolePortal},
		{input: "superuser", want: RoleUnknown},
		{input: "", want: RoleUnknown},
		{input: "Admin", want: RoleUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseRole(tc.input))
		})
	}
}

func TestRequestScope(t *testing.T) {
	t.Run("admin и manager без ограничений", func(t *testing.T) {
		assert.Nil(t, RequestScope(Actor{ID: 1, Role: RoleAdmin}))
		assert.Nil(t, RequestScope(Actor{ID: 2, Role: RoleManager}))
	})

	t.Run("портал видит только свои заявки по оборудованию", func(t *testing.T) {
		scope := RequestScope(Actor{ID: 7, Role: RolePortal})
		require.NotNil(t, scope)

		query, args := toSQL(t, scope)
		assert.Contains(t, query, "r.created_by")
		assert.Contains(t, query, "r.category")
		assert.Contains(t, args, uint64(7))
		assert.Contains(t, args, entities.CategoryEquipment)
	})

	t.Run("техник ограничен своими командами", func(t *testing.T) {
		scope := RequestScope(Actor{ID: 3, Role: RoleTechnician, TeamIDs: []uint64{10, 20}})
		require.NotNil(t, scope)

		query, args := toSQL(t, scope)
		assert.Contains(t, query, "r.team_id")
		assert.Len(t, args, 2)
	})

	t.Run("техник без команд не видит ничего", func(t *testing.T) {
		scope := RequestScope(Actor{ID: 3, Role: RoleTechnician})
		require.NotNil(t, scope)

		query, _ := toSQL(t, scope)
		assert.Equal(t, "1 = 0", query)
	})

	t.Run("неизвестная роль не видит ничего", func(t *testing.T) {
		scope := RequestScope(Actor{ID: 99, Role: RoleUnknown})
		require.NotNil(t, scope)

		query, _ := toSQL(t, scope)
		assert.Equal(t, "1 = 0", query)
	})
}

func TestEquipmentScope(t *testing.T) {
	t.Run("admin без ограничений", func(t *testing.T) {
		assert.Nil(t, EquipmentScope(Actor{ID: 1, Role: RoleAdmin}))
	})

	t.Run("портал видит своё и активное", func(t *testing.T) {
		scope := EquipmentScope(Actor{ID: 5, Role: RolePortal})
		require.NotNil(t, scope)

		query, args := toSQL(t, scope)
		assert.Contains(t, query, "e.owner_id")
		assert.Contains(t, query, "e.status")
		assert.Contains(t, query, " OR ")
		assert.Contains(t, args, entities.EquipmentActive)
	})

	t.Run("техник без команд не видит ничего", func(t *testing.T) {
		query, _ := toSQL(t, EquipmentScope(Actor{ID: 3, Role: RoleTechnician}))
		assert.Equal(t, "1 = 0", query)
	})
}

// TestCanAccessRequest_ConsistentWithScope: record-level проверка не должна
// давать доступ к записи, которую список бы скрыл.
func TestCanAccessRequest_ConsistentWithScope(t *testing.T) {
	ownEquipmentReq := &entities.MaintenanceRequest{
		CreatedBy: 7,
		Category:  entities.CategoryEquipment,
		TeamID:    10,
	}
	foreignReq := &entities.MaintenanceRequest{
		CreatedBy: 8,
		Category:  entities.CategoryEquipment,
		TeamID:    30,
	}
	ownWorkCenterReq := &entities.MaintenanceRequest{
		CreatedBy: 7,
		Category:  entities.CategoryWorkCenter,
		TeamID:    10,
	}

	testCases := []struct {
		name  string
		actor Actor
		req   *entities.MaintenanceRequest
		want  bool
	}{
		{name: "admin видит всё", actor: Actor{ID: 1, Role: RoleAdmin}, req: foreignReq, want: true},
		{name: "manager видит всё", actor: Actor{ID: 2, Role: RoleManager}, req: foreignReq, want: true},
		{name: "портал видит свою заявку по оборудованию", actor: Actor{ID: 7, Role: RolePortal}, req: ownEquipmentReq, want: true},
		{name: "портал не видит чужую заявку", actor: Actor{ID: 7, Role: RolePortal}, req: foreignReq, want: false},
		{name: "портал не видит свою заявку по участку", actor: Actor{ID: 7, Role: RolePortal}, req: ownWorkCenterReq, want: false},
		{name: "техник видит заявку своей команды", actor: Actor{ID: 3, Role: RoleTechnician, TeamIDs: []uint64{10}}, req: ownEquipmentReq, want: true},
		{name: "техник не видит чужую команду", actor: Actor{ID: 3, Role: RoleTechnician, TeamIDs: []uint64{10}}, req: foreignReq, want: false},
		{name: "техник без команд не видит ничего", actor: Actor{ID: 3, Role: RoleTechnician}, req: ownEquipmentReq, want: false},
		{name: "неизвестная роль не видит ничего", actor: Actor{ID: 9, Role: RoleUnknown}, req: ownEquipmentReq, want: false},
		{name: "nil-заявка", actor: Actor{ID: 1, Role: RoleAdmin}, req: nil, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccessRequest(tc.actor, tc.req))
		})
	}
}

func TestPermissions(t *testing.T) {
	admin := Actor{ID: 1, Role: RoleAdmin}
	manager := Actor{ID: 2, Role: RoleManager}
	technician := Actor{ID: 3, Role: RoleTechnician, TeamIDs: []uint64{10}}
	portal := Actor{ID: 4, Role: RolePortal}
	unknown := Actor{ID: 5, Role: RoleUnknown}

	t.Run("CanCreateWorkCenterRequest", func(t *testing.T) {
		assert.True(t, CanCreateWorkCenterRequest(admin))
		assert.True(t, CanCreateWorkCenterRequest(manager))
		assert.True(t, CanCreateWorkCenterRequest(technician))
		assert.False(t, CanCreateWorkCenterRequest(portal))
		assert.False(t, CanCreateWorkCenterRequest(unknown))
	})

	t.Run("CanChangeState", func(t *testing.T) {
		assert.True(t, CanChangeState(admin))
		assert.True(t, CanChangeState(technician))
		assert.False(t, CanChangeState(portal))
		assert.False(t, CanChangeState(unknown))
	})

	t.Run("CanAssignTechnician", func(t *testing.T) {
		assert.True(t, CanAssignTechnician(admin))
		assert.True(t, CanAssignTechnician(manager))
		assert.False(t, CanAssignTechnician(technician))
		assert.False(t, CanAssignTechnician(portal))
	})

	t.Run("CanManageCatalogs", func(t *testing.T) {
		assert.True(t, CanManageCatalogs(admin))
		assert.False(t, CanManageCatalogs(manager))
		assert.False(t, CanManageCatalogs(technician))
	})

	t.Run("CanExportReports", func(t *testing.T) {
		assert.True(t, CanExportReports(admin))
		assert.True(t, CanExportReports(technician))
		assert.False(t, CanExportReports(portal))
		assert.False(t, CanExportReports(unknown))
	})
}

func TestActorMemberOf(t *testing.T) {
	actor := Actor{ID: 3, Role: RoleTechnician, TeamIDs: []uint64{10, 20}}

	assert.True(t, actor.MemberOf(10))
	assert.True(t, actor.MemberOf(20))
	assert.False(t, actor.MemberOf(30))
	assert.False(t, Actor{ID: 4, Role: RoleTechnician}.MemberOf(10))
}
