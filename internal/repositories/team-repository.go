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

const teamTable = "teams"

type TeamRepositoryInterface interface {
	GetTeams(ctx context.Context, filter types.Filter) ([]entities.Team, uint64, error)
	FindTeam(ctx context.Context, id uint64) (*entities.Team, error)
	CreateTeam(ctx context.Context, team entities.Team) (uint64, error)
	UpdateTeam(ctx context.Context, id uint64, data dto.UpdateTeamDTO) error
	DeleteTeam(ctx context.Context, id uint64) error
	GetMembers(ctx context.Context, teamID uint64) ([]entities.ShortUser, error)
	AddMember(ctx context.Context, teamID, userID uint64) error
	RemoveMember(ctx context.Context, teamID, userID uint64) error
	IsMember(ctx context.Context, teamID, userID uint64) (bool, error)
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

func scanTeam(row pgx.Row) (*entities.Team, error) {
	var t entities.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) GetTeams(ctx context.Context, filter types.Filter) ([]entities.Team, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта команд: %w", err)
	}
	if total == 0 {
		return []entities.Team{}, 0, nil
	}

	builder := sq.Select("id", "name", "description", "created_at", "updated_at").
		From(teamTable).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса команд: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка команд: %w", err)
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, err
		}
		teams = append(teams, *t)
	}
	return teams, total, rows.Err()
}

func (r *TeamRepository) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	team, err := scanTeam(r.storage.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM teams WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

func (r *TeamRepository) CreateTeam(ctx context.Context, team entities.Team) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO teams (name, description) VALUES ($1, $2) RETURNING id`,
		team.Name, team.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания команды: %w", err)
	}
	return id, nil
}

func (r *TeamRepository) UpdateTeam(ctx context.Context, id uint64, data dto.UpdateTeamDTO) error {
	builder := sq.Update(teamTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if data.Name.Valid {
		builder = builder.Set("name", data.Name.String)
	}
	if data.Description.Valid {
		builder = builder.Set("description", data.Description.String)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления команды: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления команды: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTeam отклоняется, пока на команду ссылается хоть одна заявка,
// оборудование или рабочий участок.
func (r *TeamRepository) DeleteTeam(ctx context.Context, id uint64) error {
	var refs int
	err := r.storage.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM maintenance_requests WHERE team_id = $1)
			+ (SELECT COUNT(*) FROM equipment WHERE team_id = $1)
			+ (SELECT COUNT(*) FROM work_centers WHERE team_id = $1)`,
		id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("ошибка проверки ссылок на команду: %w", err)
	}
	if refs > 0 {
		return apperrors.ErrConflict
	}

	tag, err := r.storage.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления команды: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TeamRepository) GetMembers(ctx context.Context, teamID uint64) ([]entities.ShortUser, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT u.id, u.fio, u.role
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1 AND u.deleted_at IS NULL
		ORDER BY u.fio`,
		teamID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участников команды: %w", err)
	}
	defer rows.Close()

	members := make([]entities.ShortUser, 0)
	for rows.Next() {
		var m entities.ShortUser
		if err := rows.Scan(&m.ID, &m.Fio, &m.Role); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника команды: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uint64) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING`,
		teamID, userID)
	if err != nil {
		return fmt.Errorf("ошибка добавления участника команды: %w", err)
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	tag, err := r.storage.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления участника команды: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`,
		teamID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки членства в команде: %w", err)
	}
	return exists, nil
}
