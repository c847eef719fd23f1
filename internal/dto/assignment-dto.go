package dto

type CreateAssignmentDTO struct {
	EquipmentID     uint64 `json:"equipment_id" validate:"required"`
	PatientDocument string `json:"patient_document" validate:"required"`
	PatientName     string `json:"patient_name" validate:"required,min=3"`
}

type AssignmentDTO struct {
	ID              uint64 `json:"id"`
	EquipmentID     uint64 `json:"equipment_id"`
	PatientDocument string `json:"patient_document"`
	PatientName     string `json:"patient_name"`
	Active          bool   `json:"active"`
	AssignedAt      string `json:"assigned_at"`
}
