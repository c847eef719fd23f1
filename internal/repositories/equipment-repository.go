package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const equipmentTable = "equipments"
const equipmentFields = "e.id, e.inventory_code, e.serial_number, e.name, e.brand, e.model, e.status, e.custodian_id, e.pending_acta_id, e.created_at, e.updated_at"

// Колонки, доступные для filter[...] и sort[...] в списке оборудования.
var equipmentListColumns = map[string]string{
	"status":         "e.status",
	"custodian_id":   "e.custodian_id",
	"inventory_code": "e.inventory_code",
	"brand":          "e.brand",
	"name":           "e.name",
	"created_at":     "e.created_at",
}

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	GetAvailableSnapshot(ctx context.Context) ([]entities.Equipment, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (uint64, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) error
	DeleteEquipment(ctx context.Context, id uint64) error
	RebuildVisitadorFlags(ctx context.Context) (*dto.RebuildFlagsResultDTO, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{
		storage: storage,
	}
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := ApplyListParams(
		psql.Select("COUNT(*)").From(equipmentTable+" e"),
		types.Filter{Filter: filter.Filter},
		equipmentListColumns,
	)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчета: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}

	builder := psql.
		Select(equipmentFields, "c.id", "c.fio").
		From(equipmentTable + " e").
		LeftJoin("users c ON e.custodian_id = c.id")
	builder = ApplyListParams(builder, filter, equipmentListColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("e.inventory_code")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	equipments := make([]dto.EquipmentDTO, 0)
	for rows.Next() {
		eq, err := scanEquipmentDTO(rows)
		if err != nil {
			return nil, 0, err
		}
		equipments = append(equipments, *eq)
	}
	return equipments, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEquipmentDTO(row rowScanner) (*dto.EquipmentDTO, error) {
	var eq dto.EquipmentDTO
	var custodianID null.Uint64
	var custID null.Uint64
	var custFio null.String
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&eq.ID, &eq.InventoryCode, &eq.SerialNumber, &eq.Name, &eq.Brand, &eq.Model,
		&eq.Status, &custodianID, &eq.PendingActaID, &createdAt, &updatedAt,
		&custID, &custFio,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
	}

	if custID.Valid {
		eq.Custodian = &dto.ShortUserDTO{ID: custID.Uint64, Fio: custFio.String}
	}
	eq.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
	eq.UpdatedAt = updatedAt.Local().Format("2006-01-02 15:04:05")
	return &eq, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	query := fmt.Sprintf(`
		SELECT %s, c.id, c.fio
		FROM %s e
			LEFT JOIN users c ON e.custodian_id = c.id
		WHERE e.id = $1`, equipmentFields, equipmentTable)

	eq, err := scanEquipmentDTO(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return eq, nil
}

// GetAvailableSnapshot - снимок оборудования в статусе AVAILABLE для фильтра
// пригодности. Снимок может быть чуть устаревшим: транзакция создания акта
// всё равно перепроверяет по живым строкам.
func (r *EquipmentRepository) GetAvailableSnapshot(ctx context.Context) ([]entities.Equipment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s e
		WHERE e.status = $1
		ORDER BY e.inventory_code`, equipmentFields, equipmentTable)

	rows, err := r.storage.Query(ctx, query, entities.EquipmentStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения снимка оборудования: %w", err)
	}
	defer rows.Close()

	return scanEquipmentEntities(rows)
}

func scanEquipmentEntities(rows pgx.Rows) ([]entities.Equipment, error) {
	equipments := make([]entities.Equipment, 0)
	for rows.Next() {
		var eq entities.Equipment
		err := rows.Scan(
			&eq.ID, &eq.InventoryCode, &eq.SerialNumber, &eq.Name, &eq.Brand, &eq.Model,
			&eq.Status, &eq.CustodianID, &eq.PendingActaID, &eq.CreatedAt, &eq.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		equipments = append(equipments, eq)
	}
	return equipments, rows.Err()
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (uint64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (inventory_code, serial_number, name, brand, model, status, custodian_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`, equipmentTable)

	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		payload.InventoryCode, payload.SerialNumber, payload.Name, payload.Brand, payload.Model,
		entities.EquipmentStatusAvailable, payload.CustodianID,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания оборудования: %w", err)
	}
	return newID, nil
}

// UpdateEquipment меняет только описательные поля и ответственного.
// Статус и pending_acta_id отсюда недоступны: ими владеют транзакции актов.
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET serial_number = COALESCE(NULLIF($1, ''), serial_number),
			name = COALESCE(NULLIF($2, ''), name),
			brand = COALESCE(NULLIF($3, ''), brand),
			model = COALESCE(NULLIF($4, ''), model),
			custodian_id = COALESCE($5, custodian_id),
			updated_at = NOW()
		WHERE id = $6`, equipmentTable)

	result, err := r.storage.Exec(ctx, query,
		payload.SerialNumber, payload.Name, payload.Brand, payload.Model, payload.CustodianID, id,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления оборудования: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id uint64) error {
	// Оборудование с отправленным актом удалять нельзя.
	result, err := r.storage.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND pending_acta_id IS NULL", equipmentTable), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления оборудования: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RebuildVisitadorFlags - идемпотентная ремонтная операция: пересчитывает
// производные статусы ASSIGNED/AVAILABLE из набора активных закреплений.
// Строки с отправленным актом и статусы MAINTENANCE/RETIRED не трогает,
// инварианты протокола актов остаются нетронутыми.
func (r *EquipmentRepository) RebuildVisitadorFlags(ctx context.Context) (*dto.RebuildFlagsResultDTO, error) {
	var result dto.RebuildFlagsResultDTO

	err := WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		markAssigned := `
			UPDATE equipments e SET status = $1, updated_at = NOW()
			WHERE e.status = $2
			  AND e.pending_acta_id IS NULL
			  AND EXISTS (SELECT 1 FROM patient_assignments pa WHERE pa.equipment_id = e.id AND pa.active)`
		tag, err := tx.Exec(ctx, markAssigned, entities.EquipmentStatusAssigned, entities.EquipmentStatusAvailable)
		if err != nil {
			return fmt.Errorf("ошибка пометки занятого оборудования: %w", err)
		}
		result.MarkedAssigned = tag.RowsAffected()

		markAvailable := `
			UPDATE equipments e SET status = $1, updated_at = NOW()
			WHERE e.status = $2
			  AND e.pending_acta_id IS NULL
			  AND NOT EXISTS (SELECT 1 FROM patient_assignments pa WHERE pa.equipment_id = e.id AND pa.active)`
		tag, err = tx.Exec(ctx, markAvailable, entities.EquipmentStatusAvailable, entities.EquipmentStatusAssigned)
		if err != nil {
			return fmt.Errorf("ошибка пометки свободного оборудования: %w", err)
		}
		result.MarkedAvailable = tag.RowsAffected()

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
