package seeders

import (
	"context"
	"log"

	"biomed-inventory/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedEquipments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'equipments'...")

	query := `INSERT INTO equipments (inventory_code, serial_number, name, brand, model, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (inventory_code) DO NOTHING`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, eq := range equipmentData {
		if _, err := tx.Exec(ctx, query,
			eq.InventoryCode, eq.SerialNumber, eq.Name, eq.Brand, eq.Model,
			entities.EquipmentStatusAvailable); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
