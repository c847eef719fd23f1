package repositories

import (
	"context"
	"fmt"
	"time"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepositoryInterface interface {
	GetAssignments(ctx context.Context, equipmentID uint64, onlyActive bool) ([]dto.AssignmentDTO, error)
	ActiveEquipmentIDs(ctx context.Context, equipmentIDs []uint64) (map[uint64]bool, error)
	CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, assignedBy uint64) (uint64, error)
	ReleaseAssignment(ctx context.Context, id uint64, releasedBy uint64) error
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{
		storage: storage,
	}
}

func (r *AssignmentRepository) GetAssignments(ctx context.Context, equipmentID uint64, onlyActive bool) ([]dto.AssignmentDTO, error) {
	query := `
		SELECT id, equipment_id, patient_document, patient_name, active, assigned_at
		FROM patient_assignments
		WHERE equipment_id = $1 AND (active OR NOT $2)
		ORDER BY assigned_at DESC`

	rows, err := r.storage.Query(ctx, query, equipmentID, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения закреплений: %w", err)
	}
	defer rows.Close()

	assignments := make([]dto.AssignmentDTO, 0)
	for rows.Next() {
		var a dto.AssignmentDTO
		var assignedAt time.Time
		if err := rows.Scan(&a.ID, &a.EquipmentID, &a.PatientDocument, &a.PatientName, &a.Active, &assignedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования закрепления: %w", err)
		}
		a.AssignedAt = assignedAt.Local().Format("2006-01-02 15:04:05")
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// ActiveEquipmentIDs возвращает множество id оборудования с активным
// закреплением за пациентом из переданного набора.
func (r *AssignmentRepository) ActiveEquipmentIDs(ctx context.Context, equipmentIDs []uint64) (map[uint64]bool, error) {
	return activeEquipmentIDs(ctx, r.storage, equipmentIDs)
}

// ActiveEquipmentIDsInTx - то же самое внутри чужой транзакции, для
// перепроверки пригодности по заблокированным строкам.
func ActiveEquipmentIDsInTx(ctx context.Context, tx pgx.Tx, equipmentIDs []uint64) (map[uint64]bool, error) {
	return activeEquipmentIDs(ctx, tx, equipmentIDs)
}

func activeEquipmentIDs(ctx context.Context, q querier, equipmentIDs []uint64) (map[uint64]bool, error) {
	active := make(map[uint64]bool)
	if len(equipmentIDs) == 0 {
		return active, nil
	}

	rows, err := q.Query(ctx,
		`SELECT DISTINCT equipment_id FROM patient_assignments WHERE active AND equipment_id = ANY($1)`,
		equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активных закреплений: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования активного закрепления: %w", err)
		}
		active[id] = true
	}
	return active, rows.Err()
}

// CreateAssignment закрепляет оборудование за пациентом. Строка оборудования
// блокируется, чтобы закрепление не пересеклось с параллельным актом.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, assignedBy uint64) (uint64, error) {
	var newID uint64

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		var status string
		var pendingActaID *string
		err := tx.QueryRow(ctx,
			`SELECT status, pending_acta_id FROM equipments WHERE id = $1 FOR UPDATE`,
			payload.EquipmentID,
		).Scan(&status, &pendingActaID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("ошибка блокировки оборудования: %w", err)
		}

		if status != entities.EquipmentStatusAvailable || pendingActaID != nil {
			return apperrors.ErrIneligibleEquipment
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO patient_assignments (equipment_id, patient_document, patient_name, assigned_by, active, assigned_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW())
			RETURNING id`,
			payload.EquipmentID, payload.PatientDocument, payload.PatientName, assignedBy,
		).Scan(&newID)
		if err != nil {
			return fmt.Errorf("ошибка создания закрепления: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE equipments SET status = $1, updated_at = NOW() WHERE id = $2`,
			entities.EquipmentStatusAssigned, payload.EquipmentID)
		if err != nil {
			return fmt.Errorf("ошибка обновления статуса оборудования: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

func (r *AssignmentRepository) ReleaseAssignment(ctx context.Context, id uint64, releasedBy uint64) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		var equipmentID uint64
		err := tx.QueryRow(ctx, `
			UPDATE patient_assignments
			SET active = FALSE, released_at = NOW(), released_by = $1
			WHERE id = $2 AND active
			RETURNING equipment_id`, releasedBy, id,
		).Scan(&equipmentID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("ошибка снятия закрепления: %w", err)
		}

		// Статус возвращаем только если не осталось других активных
		// закреплений и оборудование не в сервисе или списании.
		_, err = tx.Exec(ctx, `
			UPDATE equipments e SET status = $1, updated_at = NOW()
			WHERE e.id = $2 AND e.status = $3
			  AND NOT EXISTS (SELECT 1 FROM patient_assignments pa WHERE pa.equipment_id = e.id AND pa.active)`,
			entities.EquipmentStatusAvailable, equipmentID, entities.EquipmentStatusAssigned)
		if err != nil {
			return fmt.Errorf("ошибка возврата статуса оборудования: %w", err)
		}
		return nil
	})
}
