package repositories

import (
	"context"
	"testing"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAssignmentPayload(equipmentID uint64) dto.CreateAssignmentDTO {
	return dto.CreateAssignmentDTO{
		EquipmentID:     equipmentID,
		PatientDocument: "CC-100200",
		PatientName:     "Пациент Тестовый",
	}
}

func equipmentState(t *testing.T, id uint64) (status string, pendingActaID *string) {
	t.Helper()
	err := testPool.QueryRow(context.Background(),
		`SELECT status, pending_acta_id FROM equipments WHERE id = $1`, id,
	).Scan(&status, &pendingActaID)
	require.NoError(t, err)
	return
}

func TestAssignmentRepository_Integration_CreateAssignment(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, _, equipmentIDs := seedData(t, testPool)

	repo := NewAssignmentRepository(testPool)
	id, err := repo.CreateAssignment(context.Background(), testAssignmentPayload(equipmentIDs[0]), delivererID)
	require.NoError(t, err)
	assert.NotZero(t, id)

	status, _ := equipmentState(t, equipmentIDs[0])
	assert.Equal(t, entities.EquipmentStatusAssigned, status)
}

// Оборудование под отправленным актом нельзя закрепить за пациентом:
// инвариант протокола актов держится с обеих сторон.
func TestAssignmentRepository_Integration_RejectsPendingActaEquipment(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	actaID, _, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs[:1])
	require.NoError(t, err)

	repo := NewAssignmentRepository(testPool)
	_, err = repo.CreateAssignment(context.Background(), testAssignmentPayload(equipmentIDs[0]), delivererID)
	assert.ErrorIs(t, err, apperrors.ErrIneligibleEquipment)

	// Строка оборудования не изменилась, ссылка на акт на месте.
	status, pendingActaID := equipmentState(t, equipmentIDs[0])
	assert.Equal(t, entities.EquipmentStatusAvailable, status)
	require.NotNil(t, pendingActaID)
	assert.Equal(t, actaID, *pendingActaID)

	var activeCount int
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM patient_assignments WHERE active`).Scan(&activeCount))
	assert.Equal(t, 0, activeCount)
}

func TestAssignmentRepository_Integration_RejectsNonAvailableEquipment(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, _, equipmentIDs := seedData(t, testPool)

	for _, status := range []string{
		entities.EquipmentStatusMaintenance,
		entities.EquipmentStatusRetired,
	} {
		_, err := testPool.Exec(context.Background(),
			`UPDATE equipments SET status = $1 WHERE id = $2`, status, equipmentIDs[0])
		require.NoError(t, err)

		repo := NewAssignmentRepository(testPool)
		_, err = repo.CreateAssignment(context.Background(), testAssignmentPayload(equipmentIDs[0]), delivererID)
		assert.ErrorIs(t, err, apperrors.ErrIneligibleEquipment, "статус %s", status)
	}
}
