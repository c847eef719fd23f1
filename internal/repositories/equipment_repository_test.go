package repositories

import (
	"context"
	"testing"

	"biomed-inventory/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTestEquipment(t *testing.T, inventoryCode, status string) uint64 {
	t.Helper()
	var id uint64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO equipments (inventory_code, name, status) VALUES ($1, 'Тестовое оборудование', $2) RETURNING id`,
		inventoryCode, status).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertActiveAssignment(t *testing.T, equipmentID, assignedBy uint64) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO patient_assignments (equipment_id, patient_document, patient_name, assigned_by, active, assigned_at)
		VALUES ($1, 'CC-300400', 'Пациент Дрейфовый', $2, TRUE, NOW())`,
		equipmentID, assignedBy)
	require.NoError(t, err)
}

// Пересчёт производных статусов из набора активных закреплений: строки с
// отправленным актом и статусы MAINTENANCE/RETIRED не трогаются, повторный
// запуск ничего не находит.
func TestEquipmentRepository_Integration_RebuildVisitadorFlags(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)
	ctx := context.Background()

	// Дрейф: активное закрепление при статусе AVAILABLE.
	driftedID := equipmentIDs[0]
	insertActiveAssignment(t, driftedID, delivererID)

	// Оборудование под отправленным актом, тоже с дрейфовым закреплением:
	// пересчёт не имеет права его трогать.
	pendingID := equipmentIDs[1]
	actaID, _, err := createTestActa(testPool, delivererID, receiverID, []uint64{pendingID})
	require.NoError(t, err)
	insertActiveAssignment(t, pendingID, delivererID)

	// MAINTENANCE с активным закреплением: статус не пересчитывается.
	maintenanceID := insertTestEquipment(t, "VENT-3001", entities.EquipmentStatusMaintenance)
	insertActiveAssignment(t, maintenanceID, delivererID)

	// ASSIGNED без единого активного закрепления: возвращается в AVAILABLE.
	orphanID := insertTestEquipment(t, "ECG-4001", entities.EquipmentStatusAssigned)

	repo := NewEquipmentRepository(testPool)
	res, err := repo.RebuildVisitadorFlags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MarkedAssigned)
	assert.Equal(t, int64(1), res.MarkedAvailable)

	status, _ := equipmentState(t, driftedID)
	assert.Equal(t, entities.EquipmentStatusAssigned, status)

	status, pendingActaID := equipmentState(t, pendingID)
	assert.Equal(t, entities.EquipmentStatusAvailable, status, "строка под актом не трогается")
	require.NotNil(t, pendingActaID)
	assert.Equal(t, actaID, *pendingActaID)

	status, _ = equipmentState(t, maintenanceID)
	assert.Equal(t, entities.EquipmentStatusMaintenance, status)

	status, _ = equipmentState(t, orphanID)
	assert.Equal(t, entities.EquipmentStatusAvailable, status)

	// Идемпотентность: второй запуск ничего не меняет.
	res, err = repo.RebuildVisitadorFlags(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MarkedAssigned)
	assert.Equal(t, int64(0), res.MarkedAvailable)
}
