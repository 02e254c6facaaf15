// Пакет authz — политика ролей: кто что видит и кому что разрешено.
// Чистые функции над закрытым множеством ролей, никакого I/O.
package authz

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RolePortal     Role = "portal"

	// RoleUnknown — результат разбора нераспознанной строки роли. Политика для
	// неё — максимально ограничительная: пустая видимость, никаких действий.
	RoleUnknown Role = ""
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleTechnician, RolePortal:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// Actor — представление вызывающей стороны для политики: идентичность, роль
// и членство в командах. Собирается сервисом акторов из данных пользователя.
type Actor struct {
	ID      uint64
	Role    Role
	TeamIDs []uint64
}

func (a Actor) MemberOf(teamID uint64) bool {
	for _, id := range a.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}
