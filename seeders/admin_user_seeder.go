package seeders

import (
	"context"
	"fmt"
	"log"

	"biomed-inventory/internal/entities"
	"biomed-inventory/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func seedAdminUser(ctx context.Context, db *pgxpool.Pool, cfg *config.Config) error {
	log.Println("  - Создание пользователя-администратора...")

	if cfg.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD не задан, администратор не будет создан")
	}

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", cfg.Admin.Email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    - Администратор уже существует. Пропускаем.")
		return nil
	}

	var roleID uint64
	if err := db.QueryRow(ctx, "SELECT id FROM roles WHERE code = $1", entities.RoleAdmin).Scan(&roleID); err != nil {
		return fmt.Errorf("роль администратора не найдена, сначала запустите -core: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (fio, email, position, password_hash, role_id, is_active)
			  VALUES ($1, $2, $3, $4, $5, TRUE)`
	if _, err := db.Exec(ctx, query, "Администратор системы", cfg.Admin.Email, "Администратор", string(hash), roleID); err != nil {
		return err
	}
	return nil
}
