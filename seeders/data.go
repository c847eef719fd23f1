package seeders

import (
	"biomed-inventory/internal/authz"
	"biomed-inventory/internal/entities"
)

var permissionsData = []struct {
	Name        string
	Description string
}{
	{Name: authz.Superuser, Description: "Суперпользователь (полный доступ)"},

	// --- Акты приёма-передачи ---
	{Name: authz.ActasCreate, Description: "Создание и отправка актов"},
	{Name: authz.ActasAccept, Description: "Принятие адресованных актов"},
	{Name: authz.ActasView, Description: "Просмотр актов"},

	// --- Оборудование ---
	{Name: authz.EquipmentCreate, Description: "Создание оборудования"},
	{Name: authz.EquipmentView, Description: "Просмотр оборудования"},
	{Name: authz.EquipmentUpdate, Description: "Обновление оборудования"},
	{Name: authz.EquipmentDelete, Description: "Удаление оборудования"},
	{Name: authz.EquipmentImport, Description: "Импорт инвентарных ведомостей"},

	// --- Закрепления за пациентами ---
	{Name: authz.AssignmentsCreate, Description: "Закрепление оборудования за пациентом"},
	{Name: authz.AssignmentsRelease, Description: "Снятие закрепления"},
	{Name: authz.AssignmentsView, Description: "Просмотр закреплений"},

	// --- Пользователи ---
	{Name: authz.UsersCreate, Description: "Создание пользователей"},
	{Name: authz.UsersView, Description: "Просмотр пользователей"},
	{Name: authz.UsersUpdate, Description: "Обновление и отключение пользователей"},

	// --- Обслуживание ---
	{Name: authz.MaintenanceRebuildFlags, Description: "Пересчёт флагов доступности оборудования"},

	// --- Области видимости ---
	{Name: authz.ScopeOwn, Description: "Видимость только своих записей"},
	{Name: authz.ScopeAll, Description: "Видимость всех записей"},
}

var rolesData = []struct {
	Code        string
	Name        string
	Description string
}{
	{Code: entities.RoleAdmin, Name: "Администратор", Description: "Полный доступ к системе"},
	{Code: entities.RoleEngineer, Name: "Инженер", Description: "Ведёт реестр и передаёт оборудование по актам"},
	{Code: entities.RoleCustodian, Name: "Материально-ответственное лицо", Description: "Принимает оборудование по актам"},
	{Code: entities.RoleVisitador, Name: "Визитадор", Description: "Закрепляет оборудование за пациентами"},
}

// getRolePermissionsMap - базовые связи ролей и прав.
func getRolePermissionsMap() map[string][]string {
	return map[string][]string{
		entities.RoleAdmin: {authz.Superuser, authz.ScopeAll},
		entities.RoleEngineer: {
			authz.ScopeOwn,
			authz.ActasCreate, authz.ActasView,
			authz.EquipmentCreate, authz.EquipmentView, authz.EquipmentUpdate, authz.EquipmentDelete, authz.EquipmentImport,
			authz.AssignmentsView,
		},
		entities.RoleCustodian: {
			authz.ScopeOwn,
			authz.ActasAccept, authz.ActasView,
			authz.EquipmentView,
			authz.AssignmentsView,
		},
		entities.RoleVisitador: {
			authz.ScopeOwn,
			authz.EquipmentView,
			authz.AssignmentsCreate, authz.AssignmentsRelease, authz.AssignmentsView,
		},
	}
}

var equipmentData = []struct {
	InventoryCode string
	SerialNumber  string
	Name          string
	Brand         string
	Model         string
}{
	{InventoryCode: "CPAP-1001", SerialNumber: "SN-44821", Name: "Аппарат CPAP", Brand: "ResMed", Model: "AirSense 10"},
	{InventoryCode: "CPAP-1002", SerialNumber: "SN-44830", Name: "Аппарат CPAP", Brand: "ResMed", Model: "AirSense 11"},
	{InventoryCode: "OXY-2001", SerialNumber: "SN-90311", Name: "Концентратор кислорода", Brand: "Philips", Model: "EverFlo"},
	{InventoryCode: "OXY-2002", SerialNumber: "SN-90402", Name: "Концентратор кислорода", Brand: "Invacare", Model: "Perfecto2"},
	{InventoryCode: "VENT-3001", SerialNumber: "SN-77120", Name: "Аппарат ИВЛ", Brand: "Löwenstein", Model: "Prisma VENT40"},
	{InventoryCode: "PUMP-4001", SerialNumber: "SN-55210", Name: "Инфузионный насос", Brand: "B.Braun", Model: "Infusomat Space"},
	{InventoryCode: "MON-5001", SerialNumber: "SN-31005", Name: "Пульсоксиметр", Brand: "Masimo", Model: "Rad-8"},
	{InventoryCode: "BED-6001", SerialNumber: "SN-12777", Name: "Функциональная кровать", Brand: "Hill-Rom", Model: "Centrella"},
}
