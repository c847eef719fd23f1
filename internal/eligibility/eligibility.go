package eligibility

import (
	"errors"

	"biomed-inventory/internal/entities"
)

// Причины непригодности. Порядок проверок фиксирован; первая нарушенная
// причина и возвращается.
var (
	ErrAssignedToPatient = errors.New("оборудование закреплено за пациентом")
	ErrNotAvailable      = errors.New("оборудование не в статусе AVAILABLE")
	ErrPendingActa       = errors.New("оборудование уже заявлено в отправленном акте")
	ErrNotCustodian      = errors.New("оборудование числится за другим ответственным")
)

// Check - чистая функция пригодности оборудования для включения в новый акт.
// Используется дважды: фронтовым эндпоинтом для сужения поиска и повторно
// внутри транзакции создания акта по строкам, заблокированным FOR UPDATE.
// Никаких побочных эффектов: безопасно вызывать сколько угодно раз.
func Check(eq entities.Equipment, hasActiveAssignment bool, delivererID uint64) error {
	if hasActiveAssignment {
		return ErrAssignedToPatient
	}
	if eq.Status != entities.EquipmentStatusAvailable {
		return ErrNotAvailable
	}
	if eq.PendingActaID.Valid {
		return ErrPendingActa
	}
	// Инженер передаёт только своё оборудование; без закреплённого
	// ответственного проверка не применяется.
	if eq.CustodianID.Valid && eq.CustodianID.Uint64 != delivererID {
		return ErrNotCustodian
	}
	return nil
}

// Filter возвращает подмножество оборудования, пригодное для нового акта.
func Filter(equipments []entities.Equipment, activeAssignments map[uint64]bool, delivererID uint64) []entities.Equipment {
	eligible := make([]entities.Equipment, 0, len(equipments))
	for _, eq := range equipments {
		if Check(eq, activeAssignments[eq.ID], delivererID) == nil {
			eligible = append(eligible, eq)
		}
	}
	return eligible
}
