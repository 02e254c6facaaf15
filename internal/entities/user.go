// Файл: internal/entities/user.go
package entities

import (
	"maintenance-system/pkg/types"
)

// Роль хранится в БД строкой; закрытое множество ролей и вся логика
// авторизации живут в internal/authz.
type User struct {
	ID          uint64 `json:"id" db:"id"`
	Fio         string `json:"fio" db:"fio"`
	Email       string `json:"email" db:"email"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`

	Password string `json:"-" db:"password"`

	Role string `json:"role" db:"role"`

	// Команды пользователя (many-to-many через team_members)
	TeamIDs []uint64 `json:"team_ids" db:"-"`

	types.BaseEntity
	types.SoftDelete
}
