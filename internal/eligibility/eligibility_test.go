package eligibility

import (
	"testing"

	"biomed-inventory/internal/entities"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

func availableEquipment(id uint64) entities.Equipment {
	return entities.Equipment{
		ID:            id,
		InventoryCode: "OXY-2001",
		Name:          "Концентратор кислорода",
		Status:        entities.EquipmentStatusAvailable,
	}
}

func TestCheck_EligibleEquipment(t *testing.T) {
	eq := availableEquipment(1)
	assert.NoError(t, Check(eq, false, 10))
}

func TestCheck_ActiveAssignmentWins(t *testing.T) {
	// Закрепление за пациентом проверяется первым, даже если статус
	// тоже не AVAILABLE.
	eq := availableEquipment(1)
	eq.Status = entities.EquipmentStatusMaintenance

	assert.ErrorIs(t, Check(eq, true, 10), ErrAssignedToPatient)
}

func TestCheck_NotAvailable(t *testing.T) {
	for _, status := range []string{
		entities.EquipmentStatusAssigned,
		entities.EquipmentStatusMaintenance,
		entities.EquipmentStatusRetired,
	} {
		eq := availableEquipment(1)
		eq.Status = status
		assert.ErrorIs(t, Check(eq, false, 10), ErrNotAvailable, "статус %s", status)
	}
}

func TestCheck_PendingActa(t *testing.T) {
	eq := availableEquipment(1)
	eq.PendingActaID = null.StringFrom("0d7e3c5a-5f2a-4a0e-9a93-2a9c1e51f000")

	assert.ErrorIs(t, Check(eq, false, 10), ErrPendingActa)
}

func TestCheck_ForeignCustodian(t *testing.T) {
	eq := availableEquipment(1)
	eq.CustodianID = null.Uint64From(99)

	assert.ErrorIs(t, Check(eq, false, 10), ErrNotCustodian)
}

func TestCheck_OwnCustodianPasses(t *testing.T) {
	eq := availableEquipment(1)
	eq.CustodianID = null.Uint64From(10)

	assert.NoError(t, Check(eq, false, 10))
}

func TestCheck_UnsetCustodianPasses(t *testing.T) {
	// Без закреплённого ответственного правило не применяется.
	eq := availableEquipment(1)
	assert.NoError(t, Check(eq, false, 10))
}

func TestFilter(t *testing.T) {
	pending := availableEquipment(2)
	pending.PendingActaID = null.StringFrom("acta-id")

	foreign := availableEquipment(3)
	foreign.CustodianID = null.Uint64From(99)

	assigned := availableEquipment(4)

	equipments := []entities.Equipment{availableEquipment(1), pending, foreign, assigned}
	eligible := Filter(equipments, map[uint64]bool{4: true}, 10)

	assert.Len(t, eligible, 1)
	assert.Equal(t, uint64(1), eligible[0].ID)
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(nil, nil, 10))
}
