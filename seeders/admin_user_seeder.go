package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// seedAdmin создаёт администратора системы, если его ещё нет.
// Email и пароль берутся из окружения, чтобы не хранить их в коде.
func seedAdmin(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание администратора...")

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@maintenance.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("    - ADMIN_PASSWORD не задан, используется пароль по умолчанию")
	}

	var existingID uint64
	err := db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&existingID)
	if err == nil {
		log.Println("    - Администратор уже существует, пропускаем")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка проверки существования администратора: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля администратора: %w", err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (fio, email, phone_number, password, role) VALUES ($1, $2, '', $3, 'admin')`,
		"Администратор Системы", email, string(hash))
	if err != nil {
		return fmt.Errorf("ошибка создания администратора: %w", err)
	}

	log.Printf("    - Администратор создан: %s", email)
	return nil
}

// seedUsers создаёт демонстрационных пользователей и раскладывает их по бригадам.
func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание демонстрационных пользователей...")

	for _, u := range usersData {
		var userID uint64
		err := db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, u.Email).Scan(&userID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ошибка проверки пользователя %s: %w", u.Email, err)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if hashErr != nil {
				return fmt.Errorf("ошибка хеширования пароля %s: %w", u.Email, hashErr)
			}
			if err := db.QueryRow(ctx,
				`INSERT INTO users (fio, email, phone_number, password, role) VALUES ($1, $2, '', $3, $4) RETURNING id`,
				u.Fio, u.Email, string(hash), u.Role,
			).Scan(&userID); err != nil {
				return fmt.Errorf("ошибка создания пользователя %s: %w", u.Email, err)
			}
		}

		for _, teamName := range u.Teams {
			if _, err := db.Exec(ctx, `
				INSERT INTO team_members (team_id, user_id)
				SELECT t.id, $2 FROM teams t WHERE t.name = $1
				ON CONFLICT DO NOTHING`,
				teamName, userID); err != nil {
				return fmt.Errorf("ошибка добавления %s в бригаду %s: %w", u.Email, teamName, err)
			}
		}
	}
	return nil
}
