package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Связи только добавляются. Выданные вручную права сидер не отзывает.
func seedRolePermissions(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'role_permissions'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	for roleCode, permissionNames := range getRolePermissionsMap() {
		var roleID uint64
		if err := tx.QueryRow(ctx, "SELECT id FROM roles WHERE code = $1", roleCode).Scan(&roleID); err != nil {
			return fmt.Errorf("роль %s не найдена: %w", roleCode, err)
		}

		for _, permissionName := range permissionNames {
			var permissionID uint64
			if err := tx.QueryRow(ctx, "SELECT id FROM permissions WHERE name = $1", permissionName).Scan(&permissionID); err != nil {
				return fmt.Errorf("право %s не найдено: %w", permissionName, err)
			}
			if _, err := tx.Exec(ctx, query, roleID, permissionID); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}
