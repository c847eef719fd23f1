// internal/authz/permissions.go
package authz

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Акты приёма-передачи (Actas)
	ActasCreate = "actas:create"
	ActasAccept = "actas:accept"
	ActasView   = "actas:view"

	// Оборудование (Equipment)
	EquipmentCreate = "equipment:create"
	EquipmentView   = "equipment:view"
	EquipmentUpdate = "equipment:update"
	EquipmentDelete = "equipment:delete"
	EquipmentImport = "equipment:import"

	// Закрепления за пациентами (Assignments)
	AssignmentsCreate  = "assignments:create"
	AssignmentsRelease = "assignments:release"
	AssignmentsView    = "assignments:view"

	// Пользователи (Users)
	UsersCreate = "users:create"
	UsersView   = "users:view"
	UsersUpdate = "users:update"

	// Обслуживание (Maintenance)
	MaintenanceRebuildFlags = "maintenance:rebuild-flags"

	// Модификаторы Области (Scopes)
	ScopeOwn = "scope:own"
	ScopeAll = "scope:all"
)
