package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCatalogs наполняет справочники без зависимостей: бригады,
// рабочие центры, оборудование.
func SeedCatalogs(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников...")

	if err := seedTeams(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения бригад: %v", err)
	}
	if err := seedWorkCenters(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения рабочих центров: %v", err)
	}
	if err := seedEquipment(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedUsers создаёт администратора и демонстрационных пользователей.
// Зависит от справочников (членство в бригадах).
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания пользователей...")

	if err := seedAdmin(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания пользователей: %v", err)
	}
	log.Println("✅ Создание пользователей завершено!")
}

// SeedDemo создаёт демонстрационные заявки. Зависит от пользователей
// и справочников.
func SeedDemo(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания демонстрационных данных...")

	if err := seedDemoRequests(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания демонстрационных заявок: %v", err)
	}
	log.Println("✅ Создание демонстрационных данных завершено!")
}
