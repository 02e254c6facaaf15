package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

const userTable = "users"

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, user entities.User) (uint64, error)
	UpdateUser(ctx context.Context, id uint64, data dto.UpdateUserDTO) error
	SoftDeleteUser(ctx context.Context, id uint64) error
	GetTeamIDs(ctx context.Context, userID uint64) ([]uint64, error)
	SetTeams(ctx context.Context, userID uint64, teamIDs []uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Fio, &u.Email, &u.PhoneNumber, &u.Password, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return &u, nil
}

const userSelectColumns = "id, fio, email, phone_number, password, role, created_at, updated_at"

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	builder := sq.Select(userSelectColumns).
		From(userTable).
		Where("deleted_at IS NULL").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"fio": pattern},
			sq.ILike{"email": pattern},
		})
	}
	if role, ok := filter.Filter["role"]; ok {
		builder = builder.Where(sq.Eq{"role": role})
	}
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса пользователей: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	user, err := scanUser(r.storage.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userSelectColumns), id))
	if err != nil {
		return nil, err
	}

	teamIDs, err := r.GetTeamIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	user.TeamIDs = teamIDs
	return user, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := scanUser(r.storage.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 AND deleted_at IS NULL`, userSelectColumns), email))
	if err != nil {
		return nil, err
	}

	teamIDs, err := r.GetTeamIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.TeamIDs = teamIDs
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user entities.User) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO users (fio, email, phone_number, password, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		user.Fio, user.Email, user.PhoneNumber, user.Password, user.Role,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return id, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, data dto.UpdateUserDTO) error {
	builder := sq.Update(userTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if data.Fio.Valid {
		builder = builder.Set("fio", data.Fio.String)
	}
	if data.PhoneNumber.Valid {
		builder = builder.Set("phone_number", data.PhoneNumber.String)
	}
	if data.Password.Valid {
		builder = builder.Set("password", data.Password.String)
	}
	if data.Role.Valid {
		builder = builder.Set("role", data.Role.String)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления пользователя: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SoftDeleteUser(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetTeamIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT team_id FROM team_members WHERE user_id = $1 ORDER BY team_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения команд пользователя: %w", err)
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования team_id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetTeams заменяет членство пользователя атомарно: старые записи удаляются
// и новые вставляются в одной транзакции.
func (r *UserRepository) SetTeams(ctx context.Context, userID uint64, teamIDs []uint64) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("ошибка очистки членства: %w", err)
		}
		for _, teamID := range teamIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`, teamID, userID); err != nil {
				return fmt.Errorf("ошибка вставки членства: %w", err)
			}
		}
		return nil
	})
}
