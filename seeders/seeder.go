package seeders

import (
	"context"
	"log"

	"biomed-inventory/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет справочники прав и ролей.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedPermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения прав: %v", err)
	}
	if err := seedRoles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения ролей: %v", err)
	}
	if err := seedRolePermissions(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения связей ролей и прав: %v", err)
	}
	log.Println("✅ Наполнение базовых справочников завершено!")
}

// SeedAdmin создаёт администратора из конфигурации.
func SeedAdmin(db *pgxpool.Pool, cfg *config.Config) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания администратора...")

	if err := seedAdminUser(ctx, db, cfg); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	log.Println("✅ Администратор настроен!")
}

// SeedEquipment грузит демонстрационный реестр оборудования.
func SeedEquipment(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения реестра оборудования...")

	if err := seedEquipments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Реестр оборудования наполнен!")
}
