package repositories

import (
	"context"
	"database/sql"
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

const workCenterTable = "work_centers"

type WorkCenterRepositoryInterface interface {
	GetWorkCenters(ctx context.Context, filter types.Filter) ([]entities.WorkCenter, uint64, error)
	FindWorkCenter(ctx context.Context, id uint64) (*entities.WorkCenter, error)
	CreateWorkCenter(ctx context.Context, wc entities.WorkCenter) (uint64, error)
	UpdateWorkCenter(ctx context.Context, id uint64, data dto.UpdateWorkCenterDTO) error
	DeleteWorkCenter(ctx context.Context, id uint64) error
}

type WorkCenterRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWorkCenterRepository(storage *pgxpool.Pool, logger *zap.Logger) WorkCenterRepositoryInterface {
	return &WorkCenterRepository{storage: storage, logger: logger}
}

func scanWorkCenter(row pgx.Row) (*entities.WorkCenter, error) {
	var wc entities.WorkCenter
	var teamID sql.NullInt64
	var teamName sql.NullString

	err := row.Scan(&wc.ID, &wc.Name, &wc.Code, &teamID, &wc.CreatedAt, &wc.UpdatedAt, &teamName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования work_center: %w", err)
	}

	if teamID.Valid {
		v := uint64(teamID.Int64)
		wc.TeamID = &v
		wc.Team = &entities.Team{ID: v, Name: teamName.String}
	}
	return &wc, nil
}

func (r *WorkCenterRepository) GetWorkCenters(ctx context.Context, filter types.Filter) ([]entities.WorkCenter, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM work_centers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта рабочих участков: %w", err)
	}
	if total == 0 {
		return []entities.WorkCenter{}, 0, nil
	}

	builder := sq.Select(
		"w.id", "w.name", "w.code", "w.team_id", "w.created_at", "w.updated_at",
		"t.name AS team_name",
	).
		From(workCenterTable+" AS w").
		LeftJoin("teams t ON w.team_id = t.id").
		OrderBy("w.id").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"w.name": pattern},
			sq.ILike{"w.code": pattern},
		})
	}
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса рабочих участков: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка рабочих участков: %w", err)
	}
	defer rows.Close()

	items := make([]entities.WorkCenter, 0)
	for rows.Next() {
		wc, err := scanWorkCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *wc)
	}
	return items, total, rows.Err()
}

func (r *WorkCenterRepository) FindWorkCenter(ctx context.Context, id uint64) (*entities.WorkCenter, error) {
	query := `
		SELECT w.id, w.name, w.code, w.team_id, w.created_at, w.updated_at,
			t.name AS team_name
		FROM work_centers w
		LEFT JOIN teams t ON w.team_id = t.id
		WHERE w.id = $1`
	return scanWorkCenter(r.storage.QueryRow(ctx, query, id))
}

func (r *WorkCenterRepository) CreateWorkCenter(ctx context.Context, wc entities.WorkCenter) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO work_centers (name, code, team_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		wc.Name, wc.Code, wc.TeamID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания рабочего участка: %w", err)
	}
	return id, nil
}

func (r *WorkCenterRepository) UpdateWorkCenter(ctx context.Context, id uint64, data dto.UpdateWorkCenterDTO) error {
	builder := sq.Update(workCenterTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if data.Name.Valid {
		builder = builder.Set("name", data.Name.String)
	}
	if data.Code.Valid {
		builder = builder.Set("code", data.Code.String)
	}
	if data.TeamID.Valid {
		builder = builder.Set("team_id", data.TeamID.Uint64)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления рабочего участка: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления рабочего участка: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *WorkCenterRepository) DeleteWorkCenter(ctx context.Context, id uint64) error {
	// Удаление запрещено, пока на участок ссылаются заявки или оборудование.
	var refs int
	err := r.storage.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM maintenance_requests WHERE work_center_id = $1)
			+ (SELECT COUNT(*) FROM equipment WHERE work_center_id = $1)`,
		id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("ошибка проверки ссылок на рабочий участок: %w", err)
	}
	if refs > 0 {
		return apperrors.ErrConflict
	}

	tag, err := r.storage.Exec(ctx, `DELETE FROM work_centers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления рабочего участка: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
