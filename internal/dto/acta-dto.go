package dto

import "github.com/aarondl/null/v8"

// CreateActaDTO - payload создания внутреннего акта. Подпись передающего
// приходит как base64 (с канваса); отсутствие подписи и пустой список
// оборудования сервис отклоняет типизированными ошибками до транзакции.
type CreateActaDTO struct {
	ReceiverID    uint64   `json:"receiver_id" validate:"required"`
	ReceiverTitle string   `json:"receiver_title"`
	City          string   `json:"city" validate:"required"`
	Site          string   `json:"site" validate:"required"`
	Area          string   `json:"area"`
	Notes         string   `json:"notes"`
	Fecha         string   `json:"fecha"`
	EquipmentIDs  []uint64 `json:"equipment_ids"`

	DelivererSignature string `json:"deliverer_signature" validate:"signature_b64"`
}

type AcceptActaDTO struct {
	ReceiverSignature string `json:"receiver_signature" validate:"signature_b64"`
}

type CreatedActaDTO struct {
	ID     string `json:"id"`
	Numero uint64 `json:"numero"`
}

type ActaEquipmentDTO struct {
	EquipmentID   uint64 `json:"equipment_id"`
	InventoryCode string `json:"inventory_code"`
	SerialNumber  string `json:"serial_number"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
}

type ActaDTO struct {
	ID     string `json:"id"`
	Numero uint64 `json:"numero"`
	Fecha  string `json:"fecha"`

	City string `json:"city"`
	Site string `json:"site"`
	Area string `json:"area"`

	Deliverer     ShortUserDTO `json:"deliverer"`
	Receiver      ShortUserDTO `json:"receiver"`
	ReceiverTitle string       `json:"receiver_title"`

	Notes  string `json:"notes"`
	Status string `json:"status"`

	HasDelivererSignature bool `json:"has_deliverer_signature"`
	HasReceiverSignature  bool `json:"has_receiver_signature"`

	CreatedAt  string      `json:"created_at"`
	AcceptedAt null.String `json:"accepted_at"`

	Items []ActaEquipmentDTO `json:"items,omitempty"`
}

// RebuildFlagsResultDTO - итог восстановления производных флагов доступности.
type RebuildFlagsResultDTO struct {
	MarkedAssigned  int64 `json:"marked_assigned"`
	MarkedAvailable int64 `json:"marked_available"`
}
