package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Статусы доступности оборудования. Это закрытый enum протокола,
// а не редактируемый справочник: переходы между значениями выполняют
// только транзакции актов и операция восстановления флагов.
const (
	EquipmentStatusAvailable   = "AVAILABLE"
	EquipmentStatusAssigned    = "ASSIGNED"
	EquipmentStatusMaintenance = "MAINTENANCE"
	EquipmentStatusRetired     = "RETIRED"
)

type Equipment struct {
	ID            uint64      `json:"id"`
	InventoryCode string      `json:"inventory_code"`
	SerialNumber  string      `json:"serial_number"`
	Name          string      `json:"name"`
	Brand         string      `json:"brand"`
	Model         string      `json:"model"`
	Status        string      `json:"status"`
	CustodianID   null.Uint64 `json:"custodian_id"`
	// PendingActaID - слабая ссылка на акт в статусе SENT, заявивший это
	// оборудование. Используется фильтром пригодности, не владением.
	PendingActaID null.String `json:"pending_acta_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связанные данные (не колонки таблицы)
	Custodian *User `db:"-" json:"custodian,omitempty"`
}
