package main

import (
	"context"
	"flag"
	"log"

	"maintenance-system/pkg/config"
	"maintenance-system/pkg/database/postgresql"
	"maintenance-system/seeders"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)            ")
	log.Println("======================================================")

	runCatalogs := flag.Bool("catalogs", false, "Наполнить справочники (бригады, рабочие центры, оборудование)")
	runUsers := flag.Bool("users", false, "Создать администратора и демонстрационных пользователей")
	runDemo := flag.Bool("demo", false, "Создать демонстрационные заявки")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -catalogs -users -demo)")

	flag.Parse()

	if !*runCatalogs && !*runUsers && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -catalogs")
		log.Println("  go run ./seeders/cmd/seed -catalogs -users")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)

	dbPool, err := postgresql.Connect(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	log.Println("======================================================")

	if *runAll || *runCatalogs {
		seeders.SeedCatalogs(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runDemo {
		seeders.SeedDemo(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
