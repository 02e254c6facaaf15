package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/lifecycle"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

const requestTable = "maintenance_requests"

var (
	requestAllowedFilterFields = map[string]string{
		"state":          "r.state",
		"type":           "r.type",
		"category":       "r.category",
		"team_id":        "r.team_id",
		"technician_id":  "r.technician_id",
		"equipment_id":   "r.equipment_id",
		"work_center_id": "r.work_center_id",
	}
	requestAllowedSortFields = map[string]string{
		"id":             "r.id",
		"subject":        "r.subject",
		"state":          "r.state",
		"created_at":     "r.created_at",
		"scheduled_date": "r.scheduled_date",
	}
)

type RequestRepositoryInterface interface {
	GetRequests(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error)
	CountByState(ctx context.Context, scope sq.Sqlizer) (map[lifecycle.State]uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (uint64, error)
	FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error)
	UpdateStateInTx(ctx context.Context, tx pgx.Tx, id uint64, state lifecycle.State, durationHours *float64, technicianID *uint64) error
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

// applyListParams примешивает фильтры вызывающей стороны к билдеру.
// Область видимости роли вешается отдельно и всегда через AND: фильтры могут
// только сужать выборку в пределах разрешённого.
func applyRequestFilters(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"r.subject": pattern},
			sq.ILike{"r.description": pattern},
		})
	}

	for key, value := range filter.Filter {
		switch key {
		case "date_from":
			if ts, err := time.Parse("2006-01-02", fmt.Sprintf("%v", value)); err == nil {
				builder = builder.Where(sq.GtOrEq{"r.created_at": ts})
			}
			continue
		case "date_to":
			if ts, err := time.Parse("2006-01-02", fmt.Sprintf("%v", value)); err == nil {
				builder = builder.Where(sq.Lt{"r.created_at": ts.AddDate(0, 0, 1)})
			}
			continue
		}

		dbCol, ok := requestAllowedFilterFields[key]
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

func (r *RequestRepository) GetRequests(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.MaintenanceRequest, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").
		From(requestTable + " AS r").
		PlaceholderFormat(sq.Dollar)
	if scope != nil {
		countBuilder = countBuilder.Where(scope)
	}
	countBuilder = applyRequestFilters(countBuilder, filter)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса заявок: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	if total == 0 {
		return []entities.MaintenanceRequest{}, 0, nil
	}

	builder := sq.Select(
		"r.id", "r.subject", "r.description", "r.type", "r.category", "r.state",
		"r.equipment_id", "r.work_center_id", "r.team_id", "r.technician_id",
		"r.scheduled_date", "r.duration_hours", "r.created_by",
		"r.created_at", "r.updated_at",
		"t.name AS team_name",
		"creator.fio AS creator_fio",
		"tech.id AS tech_id", "tech.fio AS tech_fio",
	).
		From(requestTable+" AS r").
		LeftJoin("teams t ON r.team_id = t.id").
		LeftJoin("users creator ON r.created_by = creator.id").
		LeftJoin("users tech ON r.technician_id = tech.id").
		PlaceholderFormat(sq.Dollar)

	if scope != nil {
		builder = builder.Where(scope)
	}
	builder = applyRequestFilters(builder, filter)

	orderBy := []string{"r.created_at DESC"}
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			dbField, ok := requestAllowedSortFields[field]
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
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		req, err := scanRequestRow(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения списка заявок: %w", err)
	}

	return requests, total, nil
}

func (r *RequestRepository) CountByState(ctx context.Context, scope sq.Sqlizer) (map[lifecycle.State]uint64, error) {
	builder := sq.Select("r.state", "COUNT(*)").
		From(requestTable + " AS r").
		GroupBy("r.state").
		PlaceholderFormat(sq.Dollar)
	if scope != nil {
		builder = builder.Where(scope)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса счётчиков заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения счётчиков заявок: %w", err)
	}
	defer rows.Close()

	counts := make(map[lifecycle.State]uint64)
	for rows.Next() {
		var state string
		var count uint64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счётчика заявок: %w", err)
		}
		counts[lifecycle.State(state)] = count
	}
	return counts, rows.Err()
}

const requestSelectByID = `
	SELECT
		r.id, r.subject, r.description, r.type, r.category, r.state,
		r.equipment_id, r.work_center_id, r.team_id, r.technician_id,
		r.scheduled_date, r.duration_hours, r.created_by,
		r.created_at, r.updated_at,
		t.name AS team_name,
		creator.fio AS creator_fio,
		tech.id AS tech_id, tech.fio AS tech_fio
	FROM maintenance_requests r
	LEFT JOIN teams t ON r.team_id = t.id
	LEFT JOIN users creator ON r.created_by = creator.id
	LEFT JOIN users tech ON r.technician_id = tech.id
	WHERE r.id = $1`

func (r *RequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	return scanRequestRow(r.storage.QueryRow(ctx, requestSelectByID, id))
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req entities.MaintenanceRequest) (uint64, error) {
	query := `
		INSERT INTO maintenance_requests
			(subject, description, type, category, state, equipment_id, work_center_id,
			 team_id, technician_id, scheduled_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		req.Subject, req.Description, req.Type, req.Category, string(req.State),
		req.EquipmentID, req.WorkCenterID, req.TeamID, req.TechnicianID,
		req.ScheduledDate, req.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	return id, nil
}

// FindRequestForUpdateInTx читает заявку с блокировкой строки: конкурирующие
// переходы по одной заявке выстраиваются в очередь на уровне хранилища.
func (r *RequestRepository) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	query := `
		SELECT
			r.id, r.subject, r.description, r.type, r.category, r.state,
			r.equipment_id, r.work_center_id, r.team_id, r.technician_id,
			r.scheduled_date, r.duration_hours, r.created_by,
			r.created_at, r.updated_at
		FROM maintenance_requests r
		WHERE r.id = $1
		FOR UPDATE`

	var req entities.MaintenanceRequest
	var description sql.NullString
	var state string
	var equipmentID, workCenterID, technicianID sql.NullInt64
	var scheduledDate sql.NullTime
	var durationHours sql.NullFloat64

	err := tx.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.Subject, &description, &req.Type, &req.Category, &state,
		&equipmentID, &workCenterID, &req.TeamID, &technicianID,
		&scheduledDate, &durationHours, &req.CreatedBy,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заявки под блокировкой: %w", err)
	}

	req.State = lifecycle.State(state)
	req.Description = description.String
	if equipmentID.Valid {
		v := uint64(equipmentID.Int64)
		req.EquipmentID = &v
	}
	if workCenterID.Valid {
		v := uint64(workCenterID.Int64)
		req.WorkCenterID = &v
	}
	if technicianID.Valid {
		v := uint64(technicianID.Int64)
		req.TechnicianID = &v
	}
	if scheduledDate.Valid {
		ts := scheduledDate.Time
		req.ScheduledDate = &ts
	}
	if durationHours.Valid {
		d := durationHours.Float64
		req.DurationHours = &d
	}
	return &req, nil
}

// UpdateStateInTx пишет новое состояние и сопутствующие поля одной командой.
// durationHours и technicianID обновляются только если переданы.
func (r *RequestRepository) UpdateStateInTx(ctx context.Context, tx pgx.Tx, id uint64, state lifecycle.State, durationHours *float64, technicianID *uint64) error {
	query := `
		UPDATE maintenance_requests
		SET state = $2,
			duration_hours = COALESCE($3, duration_hours),
			technician_id = COALESCE($4, technician_id),
			updated_at = NOW()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, string(state), durationHours, technicianID)
	if err != nil {
		return fmt.Errorf("ошибка обновления состояния заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// scanRequestRow сканирует строку полного select-а заявки (с join-ами).
func scanRequestRow(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var req entities.MaintenanceRequest
	var description sql.NullString
	var state string
	var equipmentID, workCenterID, technicianID, techID sql.NullInt64
	var scheduledDate sql.NullTime
	var durationHours sql.NullFloat64
	var teamName, creatorFio, techFio sql.NullString

	err := row.Scan(
		&req.ID, &req.Subject, &description, &req.Type, &req.Category, &state,
		&equipmentID, &workCenterID, &req.TeamID, &technicianID,
		&scheduledDate, &durationHours, &req.CreatedBy,
		&req.CreatedAt, &req.UpdatedAt,
		&teamName,
		&creatorFio,
		&techID, &techFio,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}

	req.State = lifecycle.State(state)
	req.Description = description.String
	if equipmentID.Valid {
		v := uint64(equipmentID.Int64)
		req.EquipmentID = &v
	}
	if workCenterID.Valid {
		v := uint64(workCenterID.Int64)
		req.WorkCenterID = &v
	}
	if technicianID.Valid {
		v := uint64(technicianID.Int64)
		req.TechnicianID = &v
	}
	if scheduledDate.Valid {
		ts := scheduledDate.Time
		req.ScheduledDate = &ts
	}
	if durationHours.Valid {
		d := durationHours.Float64
		req.DurationHours = &d
	}

	req.Team = &entities.Team{ID: req.TeamID, Name: teamName.String}
	req.Creator = &entities.ShortUser{ID: req.CreatedBy, Fio: creatorFio.String}
	if techID.Valid {
		req.Technician = &entities.ShortUser{ID: uint64(techID.Int64), Fio: techFio.String}
	}

	return &req, nil
}
