package main

import (
	"flag"
	"log"

	"biomed-inventory/pkg/config"
	"biomed-inventory/pkg/database/postgresql"
	"biomed-inventory/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Наполнить права, роли и их связи")
	runAdmin := flag.Bool("admin", false, "Создать администратора из ADMIN_EMAIL/ADMIN_PASSWORD")
	runEquipment := flag.Bool("equipment", false, "Наполнить демонстрационный реестр оборудования")
	runAll := flag.Bool("all", false, "Запустить все сидеры")

	flag.Parse()

	if !*runCore && !*runAdmin && !*runEquipment && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример: go run ./seeders/cmd/seed -core -admin")
		return
	}

	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	if *runAll || *runCore {
		seeders.SeedCoreDictionaries(dbPool)
	}
	if *runAll || *runAdmin {
		// Администратор зависит от ролей.
		seeders.SeedAdmin(dbPool, cfg)
	}
	if *runAll || *runEquipment {
		seeders.SeedEquipment(dbPool)
	}

	log.Println("✅ Все указанные операции сидирования завершены.")
}
