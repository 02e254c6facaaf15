package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

const equipmentTable = "equipment"

var (
	equipmentAllowedFilterFields = map[string]string{
		"status":         "e.status",
		"team_id":        "e.team_id",
		"owner_id":       "e.owner_id",
		"work_center_id": "e.work_center_id",
	}
	equipmentAllowedSortFields = map[string]string{
		"id":         "e.id",
		"name":       "e.name",
		"status":     "e.status",
		"created_at": "e.created_at",
	}
)

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, eq entities.Equipment) (uint64, error)
	UpdateEquipment(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error
	MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	FindUnownedActive(ctx context.Context, limit int) ([]entities.Equipment, error)
	AssignOwner(ctx context.Context, equipmentID, ownerID uint64) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var ownerID, teamID, technicianID, workCenterID sql.NullInt64
	var teamName sql.NullString

	err := row.Scan(
		&e.ID, &e.Name, &e.InventoryNumber, &e.Status,
		&ownerID, &teamID, &technicianID, &workCenterID,
		&e.CreatedAt, &e.UpdatedAt,
		&teamName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}

	if ownerID.Valid {
		v := uint64(ownerID.Int64)
		e.OwnerID = &v
	}
	if teamID.Valid {
		v := uint64(teamID.Int64)
		e.TeamID = &v
		e.Team = &entities.Team{ID: v, Name: teamName.String}
	}
	if technicianID.Valid {
		v := uint64(technicianID.Int64)
		e.TechnicianID = &v
	}
	if workCenterID.Valid {
		v := uint64(workCenterID.Int64)
		e.WorkCenterID = &v
	}
	return &e, nil
}

const equipmentSelectColumns = `
	e.id, e.name, e.inventory_number, e.status,
	e.owner_id, e.team_id, e.technician_id, e.work_center_id,
	e.created_at, e.updated_at,
	t.name AS team_name`

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.Equipment, uint64, error) {
	applyFilters := func(builder sq.SelectBuilder) sq.SelectBuilder {
		if scope != nil {
			builder = builder.Where(scope)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			builder = builder.Where(sq.Or{
				sq.ILike{"e.name": pattern},
				sq.ILike{"e.inventory_number": pattern},
			})
		}
		for key, value := range filter.Filter {
			dbCol, ok := equipmentAllowedFilterFields[key]
			if !ok {
				continue
			}
			if s, isStr := value.(string); isStr && strings.Contains(s, ",") {
				builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
			} else {
				builder = builder.Where(sq.Eq{dbCol: value})
			}
		}
		return builder
	}

	countBuilder := applyFilters(sq.Select("COUNT(*)").
		From(equipmentTable + " AS e").
		PlaceholderFormat(sq.Dollar))

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса оборудования: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта оборудования: %w", err)
	}
	if total == 0 {
		return []entities.Equipment{}, 0, nil
	}

	builder := applyFilters(sq.Select(equipmentSelectColumns).
		From(equipmentTable + " AS e").
		LeftJoin("teams t ON e.team_id = t.id").
		PlaceholderFormat(sq.Dollar))

	orderBy := []string{"e.id DESC"}
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			dbField, ok := equipmentAllowedSortFields[field]
			if !ok {
				continue
			}
			order := "ASC"
			if strings.ToLower(direction) == "desc" {
				order = "DESC"
			}
			sorts = append(sorts, fmt.Sprintf("%s %s", dbField, order))
		}
		if len(sorts) > 0 {
			orderBy = sorts
		}
	}
	builder = builder.OrderBy(orderBy...)

	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка оборудования: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *e)
	}
	return items, total, rows.Err()
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment e
		LEFT JOIN teams t ON e.team_id = t.id
		WHERE e.id = $1`, equipmentSelectColumns)
	return scanEquipment(r.storage.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, eq entities.Equipment) (uint64, error) {
	query := `
		INSERT INTO equipment (name, inventory_number, status, owner_id, team_id, technician_id, work_center_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		eq.Name, eq.InventoryNumber, eq.Status,
		eq.OwnerID, eq.TeamID, eq.TechnicianID, eq.WorkCenterID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания оборудования: %w", err)
	}
	return id, nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, id uint64, data dto.UpdateEquipmentDTO) error {
	builder := sq.Update(equipmentTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if data.Name.Valid {
		builder = builder.Set("name", data.Name.String)
	}
	if data.OwnerID.Valid {
		builder = builder.Set("owner_id", data.OwnerID.Uint64)
	}
	if data.TeamID.Valid {
		builder = builder.Set("team_id", data.TeamID.Uint64)
	}
	if data.TechnicianID.Valid {
		builder = builder.Set("technician_id", data.TechnicianID.Uint64)
	}
	if data.WorkCenterID.Valid {
		builder = builder.Set("work_center_id", data.WorkCenterID.Uint64)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса обновления оборудования: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления оборудования: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkScrappedInTx переводит оборудование в терминальный статус scrapped.
// Условие status <> 'scrapped' делает запись однонаправленной: возврат из
// scrapped невозможен, повторное списание не находит строку.
func (r *EquipmentRepository) MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE equipment
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $2`,
		id, entities.EquipmentScrapped)
	if err != nil {
		return fmt.Errorf("ошибка списания оборудования: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// FindUnownedActive возвращает активное оборудование без владельца — для
// best-effort закрепления за новым портальным пользователем.
func (r *EquipmentRepository) FindUnownedActive(ctx context.Context, limit int) ([]entities.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.inventory_number, e.status,
			e.owner_id, e.team_id, e.technician_id, e.work_center_id,
			e.created_at, e.updated_at,
			NULL::text AS team_name
		FROM equipment e
		WHERE e.owner_id IS NULL AND e.status = $1
		ORDER BY e.id
		LIMIT $2`

	rows, err := r.storage.Query(ctx, query, entities.EquipmentActive, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска свободного оборудования: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Equipment, 0, limit)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *EquipmentRepository) AssignOwner(ctx context.Context, equipmentID, ownerID uint64) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE equipment
		SET owner_id = $2, updated_at = NOW()
		WHERE id = $1 AND owner_id IS NULL`,
		equipmentID, ownerID)
	if err != nil {
		return fmt.Errorf("ошибка закрепления оборудования: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}
