package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedTeams(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение бригад...")
	for _, t := range teamsData {
		_, err := db.Exec(ctx, `
			INSERT INTO teams (name, description) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`,
			t.Name, t.Description)
		if err != nil {
			return fmt.Errorf("ошибка вставки бригады %q: %w", t.Name, err)
		}
	}
	return nil
}

func seedWorkCenters(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение рабочих центров...")
	for _, wc := range workCentersData {
		_, err := db.Exec(ctx, `
			INSERT INTO work_centers (name, code, team_id)
			VALUES ($1, $2, (SELECT id FROM teams WHERE name = $3))
			ON CONFLICT (code) DO NOTHING`,
			wc.Name, wc.Code, wc.TeamName)
		if err != nil {
			return fmt.Errorf("ошибка вставки рабочего центра %q: %w", wc.Code, err)
		}
	}
	return nil
}

func seedEquipment(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение оборудования...")
	for _, e := range equipmentData {
		_, err := db.Exec(ctx, `
			INSERT INTO equipment (name, inventory_number, status, team_id, work_center_id)
			VALUES ($1, $2, 'active',
				(SELECT id FROM teams WHERE name = $3),
				(SELECT id FROM work_centers WHERE code = $4))
			ON CONFLICT (inventory_number) DO NOTHING`,
			e.Name, e.InventoryNumber, e.TeamName, e.WorkCenterCode)
		if err != nil {
			return fmt.Errorf("ошибка вставки оборудования %q: %w", e.InventoryNumber, err)
		}
	}
	return nil
}
