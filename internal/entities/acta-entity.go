package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Жизненный цикл акта: SENT -> ACCEPTED. Других состояний и пути отмены нет:
// отправленный акт либо ждёт принятия, либо принят навсегда.
const (
	ActaStatusSent     = "SENT"
	ActaStatusAccepted = "ACCEPTED"
)

// Acta - внутренний акт приёма-передачи оборудования (acta interna).
// Создаётся транзакцией создания, изменяется ровно один раз - транзакцией
// принятия. Никогда не удаляется.
type Acta struct {
	ID     string `json:"id"`
	Numero uint64 `json:"numero"`
	Fecha  string `json:"fecha"`

	City string `json:"city"`
	Site string `json:"site"`
	Area string `json:"area"`

	DelivererID   uint64 `json:"deliverer_id"`
	DelivererName string `json:"deliverer_name"`

	ReceiverID    uint64 `json:"receiver_id"`
	ReceiverName  string `json:"receiver_name"`
	ReceiverTitle string `json:"receiver_title"`

	Notes string `json:"notes"`

	// Подписи - неизменяемые бинарные данные, привязанные к конкретным
	// переходам состояния: подпись передающего ставится при создании,
	// подпись получателя - при принятии.
	DelivererSignature []byte `json:"-"`
	ReceiverSignature  []byte `json:"-"`

	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	AcceptedAt null.Time `json:"accepted_at"`

	Items []ActaEquipment `db:"-" json:"items,omitempty"`
}

// ActaEquipment - строка акта: снимок описательных полей оборудования на
// момент передачи. Снимок никогда не пересчитывается из живой записи
// оборудования, чтобы акт оставался историческим документом.
type ActaEquipment struct {
	ID          uint64 `json:"id"`
	ActaID      string `json:"acta_id"`
	EquipmentID uint64 `json:"equipment_id"`

	InventoryCode string `json:"inventory_code"`
	SerialNumber  string `json:"serial_number"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`

	Position int `json:"position"`
}
