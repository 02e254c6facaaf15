package seeders

import (
	"context"
	"fmt"
	"log"

	"maintenance-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// seedDemoRequests создаёт несколько заявок в разных состояниях,
// чтобы свежая база сразу показывала живой список.
func seedDemoRequests(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание демонстрационных заявок...")

	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_requests`).Scan(&count); err != nil {
		return fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	if count > 0 {
		log.Println("    - Заявки уже есть, пропускаем")
		return nil
	}

	demo := []struct {
		Subject   string
		Type      string
		State     string
		Inventory string
		Duration  *float64
	}{
		{Subject: "Вибрация шпинделя", Type: "corrective", State: "new", Inventory: "INV-0001"},
		{Subject: "Замена приводного ремня", Type: "corrective", State: "in_progress", Inventory: "INV-0003"},
		{Subject: "Плановая ревизия трансформатора", Type: "preventive", State: "repaired", Inventory: "INV-0004", Duration: utils.Float64Ptr(6.5)},
	}

	for _, d := range demo {
		_, err := db.Exec(ctx, `
			INSERT INTO maintenance_requests
				(subject, description, type, category, state, equipment_id, team_id,
				 technician_id, scheduled_date, duration_hours, created_by)
			SELECT $1, '', $2, 'equipment', $3, e.id, e.team_id,
				CASE WHEN $3 <> 'new'
					THEN (SELECT tm.user_id FROM team_members tm WHERE tm.team_id = e.team_id LIMIT 1)
				END,
				CASE WHEN $2 = 'preventive' THEN NOW() + INTERVAL '7 days' END,
				$5,
				(SELECT id FROM users WHERE role = 'admin' LIMIT 1)
			FROM equipment e WHERE e.inventory_number = $4`,
			d.Subject, d.Type, d.State, d.Inventory, d.Duration)
		if err != nil {
			return fmt.Errorf("ошибка создания заявки %q: %w", d.Subject, err)
		}
	}
	return nil
}
