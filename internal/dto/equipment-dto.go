package dto

import "github.com/aarondl/null/v8"

type EquipmentDTO struct {
	ID            uint64        `json:"id"`
	InventoryCode string        `json:"inventory_code"`
	SerialNumber  string        `json:"serial_number"`
	Name          string        `json:"name"`
	Brand         string        `json:"brand"`
	Model         string        `json:"model"`
	Status        string        `json:"status"`
	Custodian     *ShortUserDTO `json:"custodian,omitempty"`
	PendingActaID null.String   `json:"pending_acta_id"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

type CreateEquipmentDTO struct {
	InventoryCode string      `json:"inventory_code" validate:"required,inventory_code"`
	SerialNumber  string      `json:"serial_number"`
	Name          string      `json:"name" validate:"required,min=2"`
	Brand         string      `json:"brand"`
	Model         string      `json:"model"`
	CustodianID   null.Uint64 `json:"custodian_id"`
}

type UpdateEquipmentDTO struct {
	SerialNumber string      `json:"serial_number"`
	Name         string      `json:"name"`
	Brand        string      `json:"brand"`
	Model        string      `json:"model"`
	CustodianID  null.Uint64 `json:"custodian_id"`
}
