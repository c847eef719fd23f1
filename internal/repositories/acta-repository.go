package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const actaFields = `a.id, a.numero, a.fecha, a.city, a.site, a.area,
	a.deliverer_id, a.deliverer_name, a.receiver_id, a.receiver_name, a.receiver_title,
	a.notes, a.deliverer_signature, a.receiver_signature, a.status, a.created_at, a.accepted_at`

var actaListColumns = map[string]string{
	"status":      "a.status",
	"numero":      "a.numero",
	"deliverer":   "a.deliverer_id",
	"receiver":    "a.receiver_id",
	"created_at":  "a.created_at",
	"accepted_at": "a.accepted_at",
}

type ActaRepositoryInterface interface {
	FindActa(ctx context.Context, id string) (*entities.Acta, error)
	GetActas(ctx context.Context, filter types.Filter, visibleTo uint64) ([]entities.Acta, uint64, error)
	GetActaItems(ctx context.Context, actaID string) ([]entities.ActaEquipment, error)

	CreateActa(ctx context.Context, fn func(tx pgx.Tx) error) error
	AcceptActa(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ActaRepository struct {
	storage *pgxpool.Pool
}

func NewActaRepository(storage *pgxpool.Pool) ActaRepositoryInterface {
	return &ActaRepository{
		storage: storage,
	}
}

// CreateActa и AcceptActa просто оборачивают шаги сервиса в одну транзакцию.
// Сами шаги - функции *InTx ниже, сервис собирает из них протокол.
func (r *ActaRepository) CreateActa(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return WithTx(ctx, r.storage, fn)
}

func (r *ActaRepository) AcceptActa(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return WithTx(ctx, r.storage, fn)
}

// LockEquipmentsInTx блокирует строки оборудования на время транзакции.
// Порядок ORDER BY id фиксированный, иначе два параллельных акта с
// пересекающимися наборами могут взять блокировки навстречу друг другу.
// Если какой-то строки нет, возвращается ErrIneligibleEquipment.
func LockEquipmentsInTx(ctx context.Context, tx pgx.Tx, equipmentIDs []uint64) ([]entities.Equipment, error) {
	rows, err := tx.Query(ctx, `
		SELECT e.id, e.inventory_code, e.serial_number, e.name, e.brand, e.model,
			e.status, e.custodian_id, e.pending_acta_id, e.created_at, e.updated_at
		FROM equipments e
		WHERE e.id = ANY($1)
		ORDER BY e.id
		FOR UPDATE`, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки строк оборудования: %w", err)
	}
	defer rows.Close()

	equipments, err := scanEquipmentEntities(rows)
	if err != nil {
		return nil, err
	}
	if len(equipments) != len(equipmentIDs) {
		return nil, apperrors.ErrIneligibleEquipment
	}
	return equipments, nil
}

// NextNumeroInTx выдаёт следующий номер акта из однострочного счётчика.
// Счётчик инкрементируется в той же транзакции, что и вставка акта: при
// откате номер откатывается вместе с ней, дырок в нумерации не бывает.
func NextNumeroInTx(ctx context.Context, tx pgx.Tx) (uint64, error) {
	var numero uint64
	err := tx.QueryRow(ctx,
		`UPDATE acta_counters SET last_numero = last_numero + 1 WHERE id = 1 RETURNING last_numero`,
	).Scan(&numero)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения номера акта: %w", err)
	}
	return numero, nil
}

func InsertActaInTx(ctx context.Context, tx pgx.Tx, acta *entities.Acta) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO actas (id, numero, fecha, city, site, area,
			deliverer_id, deliverer_name, receiver_id, receiver_name, receiver_title,
			notes, deliverer_signature, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())`,
		acta.ID, acta.Numero, acta.Fecha, acta.City, acta.Site, acta.Area,
		acta.DelivererID, acta.DelivererName, acta.ReceiverID, acta.ReceiverName, acta.ReceiverTitle,
		acta.Notes, acta.DelivererSignature, entities.ActaStatusSent,
	)
	if err != nil {
		return fmt.Errorf("ошибка вставки акта: %w", err)
	}
	return nil
}

// InsertItemsInTx пишет снимок строк акта. Поля копируются из живых записей
// оборудования один раз и больше не трогаются.
func InsertItemsInTx(ctx context.Context, tx pgx.Tx, actaID string, equipments []entities.Equipment) error {
	for i, eq := range equipments {
		_, err := tx.Exec(ctx, `
			INSERT INTO acta_equipments (acta_id, equipment_id, inventory_code, serial_number, name, brand, model, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			actaID, eq.ID, eq.InventoryCode, eq.SerialNumber, eq.Name, eq.Brand, eq.Model, i+1,
		)
		if err != nil {
			return fmt.Errorf("ошибка вставки строки акта: %w", err)
		}
	}
	return nil
}

// MarkEquipmentsPendingInTx помечает оборудование ссылкой на отправленный
// акт. Помеченное оборудование недоступно никакому другому акту до принятия.
func MarkEquipmentsPendingInTx(ctx context.Context, tx pgx.Tx, actaID string, equipmentIDs []uint64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE equipments SET pending_acta_id = $1, updated_at = NOW() WHERE id = ANY($2) AND pending_acta_id IS NULL`,
		actaID, equipmentIDs)
	if err != nil {
		return fmt.Errorf("ошибка пометки оборудования актом: %w", err)
	}
	if tag.RowsAffected() != int64(len(equipmentIDs)) {
		return apperrors.ErrConflictRetry
	}
	return nil
}

// FindActaForUpdateInTx блокирует акт для принятия.
func FindActaForUpdateInTx(ctx context.Context, tx pgx.Tx, id string) (*entities.Acta, error) {
	query := fmt.Sprintf(`SELECT %s FROM actas a WHERE a.id = $1 FOR UPDATE`, actaFields)
	acta, err := scanActa(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return acta, nil
}

// AcceptActaInTx переводит акт SENT -> ACCEPTED и ставит подпись получателя.
// Это единственное изменение акта за всю его жизнь.
func AcceptActaInTx(ctx context.Context, tx pgx.Tx, id string, receiverSignature []byte) error {
	tag, err := tx.Exec(ctx, `
		UPDATE actas
		SET status = $1, receiver_signature = $2, accepted_at = NOW()
		WHERE id = $3 AND status = $4`,
		entities.ActaStatusAccepted, receiverSignature, id, entities.ActaStatusSent)
	if err != nil {
		return fmt.Errorf("ошибка принятия акта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrActaAlreadyAccepted
	}
	return nil
}

// ReleaseEquipmentsInTx снимает ссылку на акт со всех его строк оборудования
// и передаёт ответственность получателю.
func ReleaseEquipmentsInTx(ctx context.Context, tx pgx.Tx, actaID string, newCustodianID uint64) error {
	_, err := tx.Exec(ctx, `
		UPDATE equipments
		SET pending_acta_id = NULL, custodian_id = $1, status = $2, updated_at = NOW()
		WHERE pending_acta_id = $3`,
		newCustodianID, entities.EquipmentStatusAvailable, actaID)
	if err != nil {
		return fmt.Errorf("ошибка освобождения оборудования акта: %w", err)
	}
	return nil
}

func scanActa(row pgx.Row) (*entities.Acta, error) {
	var acta entities.Acta
	var fecha time.Time
	err := row.Scan(
		&acta.ID, &acta.Numero, &fecha, &acta.City, &acta.Site, &acta.Area,
		&acta.DelivererID, &acta.DelivererName, &acta.ReceiverID, &acta.ReceiverName, &acta.ReceiverTitle,
		&acta.Notes, &acta.DelivererSignature, &acta.ReceiverSignature, &acta.Status,
		&acta.CreatedAt, &acta.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}
	acta.Fecha = fecha.Format("2006-01-02")
	return &acta, nil
}

func (r *ActaRepository) FindActa(ctx context.Context, id string) (*entities.Acta, error) {
	query := fmt.Sprintf(`SELECT %s FROM actas a WHERE a.id = $1`, actaFields)
	acta, err := scanActa(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения акта: %w", err)
	}

	items, err := r.GetActaItems(ctx, id)
	if err != nil {
		return nil, err
	}
	acta.Items = items
	return acta, nil
}

// GetActas возвращает страницу актов. visibleTo > 0 сужает выборку до актов,
// где актор - передающий или получатель; 0 означает полную видимость.
func (r *ActaRepository) GetActas(ctx context.Context, filter types.Filter, visibleTo uint64) ([]entities.Acta, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	visibility := func(b sq.SelectBuilder) sq.SelectBuilder {
		if visibleTo > 0 {
			return b.Where(sq.Or{
				sq.Eq{"a.deliverer_id": visibleTo},
				sq.Eq{"a.receiver_id": visibleTo},
			})
		}
		return b
	}

	countBuilder := visibility(ApplyListParams(
		psql.Select("COUNT(*)").From("actas a"),
		types.Filter{Filter: filter.Filter},
		actaListColumns,
	))
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчета актов: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета актов: %w", err)
	}

	builder := visibility(ApplyListParams(psql.Select(actaFields).From("actas a"), filter, actaListColumns))
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("a.numero DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка актов: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка актов: %w", err)
	}
	defer rows.Close()

	actas := make([]entities.Acta, 0)
	for rows.Next() {
		var acta entities.Acta
		var fecha time.Time
		var delivererSig, receiverSig []byte
		var acceptedAt null.Time
		err := rows.Scan(
			&acta.ID, &acta.Numero, &fecha, &acta.City, &acta.Site, &acta.Area,
			&acta.DelivererID, &acta.DelivererName, &acta.ReceiverID, &acta.ReceiverName, &acta.ReceiverTitle,
			&acta.Notes, &delivererSig, &receiverSig, &acta.Status, &acta.CreatedAt, &acceptedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования акта: %w", err)
		}
		acta.Fecha = fecha.Format("2006-01-02")
		acta.DelivererSignature = delivererSig
		acta.ReceiverSignature = receiverSig
		acta.AcceptedAt = acceptedAt
		actas = append(actas, acta)
	}
	return actas, total, rows.Err()
}

func (r *ActaRepository) GetActaItems(ctx context.Context, actaID string) ([]entities.ActaEquipment, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, acta_id, equipment_id, inventory_code, serial_number, name, brand, model, position
		FROM acta_equipments
		WHERE acta_id = $1
		ORDER BY position`, actaID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения строк акта: %w", err)
	}
	defer rows.Close()

	items := make([]entities.ActaEquipment, 0)
	for rows.Next() {
		var item entities.ActaEquipment
		err := rows.Scan(
			&item.ID, &item.ActaID, &item.EquipmentID,
			&item.InventoryCode, &item.SerialNumber, &item.Name, &item.Brand, &item.Model, &item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки акта: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
