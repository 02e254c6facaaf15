package authz

import (
	sq "github.com/Masterminds/squirrel"

	"maintenance-system/internal/entities"
)

// Области видимости выражаются предикатами squirrel и конъюнктивно
// примешиваются к списочным запросам: фильтры вызывающей стороны могут только
// сужать область роли, но не расширять её.
//
// nil означает отсутствие ограничений (admin/manager); запрет на всё —
// заведомо ложный предикат, чтобы пустое членство в командах давало пустую
// выборку, а не полную.

func denyAll() sq.Sqlizer { return sq.Expr("1 = 0") }

// RequestScope — предикат видимости заявок для актора.
// Колонки указываются с алиасом r (maintenance_requests AS r).
func RequestScope(actor Actor) sq.Sqlizer {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return nil
	case RolePortal:
		// Портальный пользователь видит только свои заявки и только по
		// оборудованию: заявки по рабочим участкам для него структурно закрыты.
		return sq.And{
			sq.Eq{"r.created_by": actor.ID},
			sq.Eq{"r.category": entities.CategoryEquipment},
		}
	case RoleTechnician:
		if len(actor.TeamIDs) == 0 {
			return denyAll()
		}
		return sq.Eq{"r.team_id": actor.TeamIDs}
	default:
		return denyAll()
	}
}

// EquipmentScope — предикат видимости оборудования.
// Колонки указываются с алиасом e (equipment AS e).
func EquipmentScope(actor Actor) sq.Sqlizer {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return nil
	case RolePortal:
		// Своё оборудование плюс любое активное: портальный пользователь может
		// подать заявку на активное оборудование и без владения им.
		return sq.Or{
			sq.Eq{"e.owner_id": actor.ID},
			sq.Eq{"e.status": entities.EquipmentActive},
		}
	case RoleTechnician:
		if len(actor.TeamIDs) == 0 {
			return denyAll()
		}
		return sq.Eq{"e.team_id": actor.TeamIDs}
	default:
		return denyAll()
	}
}

// CanAccessRequest — порядковая (record-level) проверка доступа к заявке.
// Инвариант: список никогда не содержит запись, для которой эта проверка
// вернула бы false тому же актору.
func CanAccessRequest(actor Actor, req *entities.MaintenanceRequest) bool {
	if req == nil {
		return false
	}
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RolePortal:
		return req.CreatedBy == actor.ID && req.Category == entities.CategoryEquipment
	case RoleTechnician:
		return actor.MemberOf(req.TeamID)
	default:
		return false
	}
}

// CanCreateWorkCenterRequest — заявки по рабочим участкам закрыты для портала.
func CanCreateWorkCenterRequest(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	default:
		return false
	}
}

// CanChangeState — портал не меняет состояние заявки никогда, даже своей.
// Проверяется независимо от record-level доступа.
func CanChangeState(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	default:
		return false
	}
}

// CanAssignTechnician — назначать и менять исполнителя могут только
// admin/manager; принадлежность исполнителя команде заявки проверяет
// оркестратор отдельно.
func CanAssignTechnician(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	default:
		return false
	}
}

// CanManageCatalogs — CRUD команд, участков и пользователей.
func CanManageCatalogs(actor Actor) bool {
	return actor.Role == RoleAdmin
}

// CanExportReports — выгрузка отчётов закрыта для портала.
func CanExportReports(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	default:
		return false
	}
}
