package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// PatientAssignment - закрепление оборудования за пациентом. Для протокола
// актов важен только факт наличия активного закрепления: такое оборудование
// не может войти в новый акт.
type PatientAssignment struct {
	ID              uint64      `json:"id"`
	EquipmentID     uint64      `json:"equipment_id"`
	PatientDocument string      `json:"patient_document"`
	PatientName     string      `json:"patient_name"`
	AssignedBy      uint64      `json:"assigned_by"`
	Active          bool        `json:"active"`
	AssignedAt      time.Time   `json:"assigned_at"`
	ReleasedAt      null.Time   `json:"released_at"`
	ReleasedBy      null.Uint64 `json:"released_by"`
}
