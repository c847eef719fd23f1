package entities

import "time"

// Коды ролей. ENGINEER передаёт оборудование, CUSTODIAN принимает его по акту,
// VISITADOR закрепляет принятое оборудование за пациентами.
const (
	RoleAdmin     = "ADMIN"
	RoleEngineer  = "ENGINEER"
	RoleCustodian = "CUSTODIAN"
	RoleVisitador = "VISITADOR"
)

type Role struct {
	ID          uint64 `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
