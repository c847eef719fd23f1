package repositories

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"biomed-inventory/internal/eligibility"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД из TEST_DATABASE_URL и применяет схему.
// Без переменной окружения интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	testDbUrl := os.Getenv("TEST_DATABASE_URL")
	if testDbUrl == "" {
		os.Exit(m.Run())
	}

	var err error
	testPool, err = pgxpool.New(context.Background(), testDbUrl)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}

	applySchema(testPool)

	code := m.Run()
	testPool.Close()
	os.Exit(code)
}

func applySchema(pool *pgxpool.Pool) {
	path, _ := filepath.Abs("../../testdata/schema.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Не удалось прочитать schema.sql: %v", err)
	}
	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		log.Fatalf("Не удалось применить схему БД: %v", err)
	}
}

func testFilter() types.Filter {
	return types.Filter{Limit: 50}
}

func requirePool(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE patient_assignments, acta_equipments, equipments, actas, users, role_permissions, permissions, roles RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
	_, err = pool.Exec(context.Background(),
		`UPDATE acta_counters SET last_numero = 0 WHERE id = 1`)
	require.NoError(t, err, "Не удалось сбросить счётчик актов")
}

func seedData(t *testing.T, pool *pgxpool.Pool) (delivererID, receiverID uint64, equipmentIDs []uint64) {
	t.Helper()
	ctx := context.Background()

	var engineerRoleID, custodianRoleID uint64
	err := pool.QueryRow(ctx, `INSERT INTO roles (code, name) VALUES ('ENGINEER', 'Инженер') RETURNING id`).Scan(&engineerRoleID)
	require.NoError(t, err)
	err = pool.QueryRow(ctx, `INSERT INTO roles (code, name) VALUES ('CUSTODIAN', 'МОЛ') RETURNING id`).Scan(&custodianRoleID)
	require.NoError(t, err)

	err = pool.QueryRow(ctx,
		`INSERT INTO users (fio, email, password_hash, role_id) VALUES ('Инженер Тестовый', 'engineer@test.local', 'x', $1) RETURNING id`,
		engineerRoleID).Scan(&delivererID)
	require.NoError(t, err)
	err = pool.QueryRow(ctx,
		`INSERT INTO users (fio, email, password_hash, role_id) VALUES ('МОЛ Тестовый', 'custodian@test.local', 'x', $1) RETURNING id`,
		custodianRoleID).Scan(&receiverID)
	require.NoError(t, err)

	for _, code := range []string{"OXY-2001", "CPAP-1001"} {
		var id uint64
		err = pool.QueryRow(ctx,
			`INSERT INTO equipments (inventory_code, name, status) VALUES ($1, 'Тестовое оборудование', 'AVAILABLE') RETURNING id`,
			code).Scan(&id)
		require.NoError(t, err)
		equipmentIDs = append(equipmentIDs, id)
	}
	return
}

// createTestActa повторяет состав транзакции создания акта: блокировка строк,
// перепроверка пригодности, номер, вставка акта и снимка, пометка оборудования.
func createTestActa(pool *pgxpool.Pool, delivererID, receiverID uint64, equipmentIDs []uint64) (string, uint64, error) {
	ctx := context.Background()
	actaID := uuid.New().String()
	var numero uint64

	err := WithTx(ctx, pool, func(tx pgx.Tx) error {
		equipments, err := LockEquipmentsInTx(ctx, tx, equipmentIDs)
		if err != nil {
			return err
		}
		activeAssignments, err := ActiveEquipmentIDsInTx(ctx, tx, equipmentIDs)
		if err != nil {
			return err
		}

		roleCode, active, err := ReceiverRoleInTx(ctx, tx, receiverID)
		if err != nil {
			return err
		}
		if !active || roleCode != entities.RoleCustodian {
			return apperrors.ErrUnknownReceiver
		}

		for _, eq := range equipments {
			if checkErr := eligibility.Check(eq, activeAssignments[eq.ID], delivererID); checkErr != nil {
				if checkErr == eligibility.ErrPendingActa {
					return apperrors.ErrConflictRetry
				}
				return apperrors.ErrIneligibleEquipment
			}
		}

		numero, err = NextNumeroInTx(ctx, tx)
		if err != nil {
			return err
		}

		acta := &entities.Acta{
			ID:                 actaID,
			Numero:             numero,
			Fecha:              "2026-03-15",
			City:               "Богота",
			Site:               "Центральный госпиталь",
			DelivererID:        delivererID,
			DelivererName:      "Инженер Тестовый",
			ReceiverID:         receiverID,
			ReceiverName:       "МОЛ Тестовый",
			DelivererSignature: []byte("podpis-1"),
			Status:             entities.ActaStatusSent,
		}
		if err := InsertActaInTx(ctx, tx, acta); err != nil {
			return err
		}
		if err := InsertItemsInTx(ctx, tx, actaID, equipments); err != nil {
			return err
		}
		return MarkEquipmentsPendingInTx(ctx, tx, actaID, equipmentIDs)
	})
	return actaID, numero, err
}

func acceptTestActa(pool *pgxpool.Pool, actaID string, receiverID uint64) error {
	ctx := context.Background()
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		acta, err := FindActaForUpdateInTx(ctx, tx, actaID)
		if err != nil {
			return err
		}
		if acta.Status != entities.ActaStatusSent {
			return apperrors.ErrActaAlreadyAccepted
		}
		if acta.ReceiverID != receiverID {
			return apperrors.ErrForbidden
		}
		if err := AcceptActaInTx(ctx, tx, actaID, []byte("podpis-2")); err != nil {
			return err
		}
		return ReleaseEquipmentsInTx(ctx, tx, actaID, acta.ReceiverID)
	})
}

func TestActaRepository_Integration_CreateActa(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	actaID, numero, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), numero, "нумерация начинается с 1")

	repo := NewActaRepository(testPool)
	acta, err := repo.FindActa(context.Background(), actaID)
	require.NoError(t, err)
	assert.Equal(t, entities.ActaStatusSent, acta.Status)
	assert.Equal(t, delivererID, acta.DelivererID)
	assert.Len(t, acta.Items, 2)
	assert.Equal(t, 1, acta.Items[0].Position)
	assert.Equal(t, 2, acta.Items[1].Position)

	// Все строки оборудования помечены ссылкой на акт.
	var pendingCount int
	err = testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM equipments WHERE pending_acta_id = $1`, actaID).Scan(&pendingCount)
	require.NoError(t, err)
	assert.Equal(t, 2, pendingCount)
}

func TestActaRepository_Integration_ConsecutiveNumero(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	_, first, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs[:1])
	require.NoError(t, err)
	_, second, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs[1:])
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}

// Гонка двух актов за одну единицу оборудования: выигрывает тот, кто
// закоммитился первым, второй получает конфликтную ошибку.
func TestActaRepository_Integration_DoubleClaimRace(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)
	contested := equipmentIDs[:1]

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, _, results[slot] = createTestActa(testPool, delivererID, receiverID, contested)
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == apperrors.ErrConflictRetry:
			conflicted++
		default:
			t.Fatalf("неожиданная ошибка гонки: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "ровно один акт должен быть создан")
	assert.Equal(t, 1, conflicted, "проигравший должен получить конфликт")

	var actaCount int
	require.NoError(t, testPool.QueryRow(context.Background(), `SELECT COUNT(*) FROM actas`).Scan(&actaCount))
	assert.Equal(t, 1, actaCount)
}

func TestActaRepository_Integration_AcceptActa(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	actaID, _, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs)
	require.NoError(t, err)

	require.NoError(t, acceptTestActa(testPool, actaID, receiverID))

	repo := NewActaRepository(testPool)
	acta, err := repo.FindActa(context.Background(), actaID)
	require.NoError(t, err)
	assert.Equal(t, entities.ActaStatusAccepted, acta.Status)
	assert.True(t, acta.AcceptedAt.Valid)
	assert.Equal(t, []byte("podpis-2"), acta.ReceiverSignature)

	// Оборудование освобождено и перешло под ответственность получателя.
	var pendingCount, transferredCount int
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM equipments WHERE pending_acta_id IS NOT NULL`).Scan(&pendingCount))
	assert.Equal(t, 0, pendingCount)

	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM equipments WHERE custodian_id = $1 AND status = 'AVAILABLE'`, receiverID).Scan(&transferredCount))
	assert.Equal(t, 2, transferredCount)
}

func TestActaRepository_Integration_AcceptTwice(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	actaID, _, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs)
	require.NoError(t, err)

	require.NoError(t, acceptTestActa(testPool, actaID, receiverID))
	assert.ErrorIs(t, acceptTestActa(testPool, actaID, receiverID), apperrors.ErrActaAlreadyAccepted)
}

// Снимок строк акта не меняется при изменении живой записи оборудования.
func TestActaRepository_Integration_SnapshotImmutable(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	actaID, _, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs[:1])
	require.NoError(t, err)

	_, err = testPool.Exec(context.Background(),
		`UPDATE equipments SET name = 'Переименованное оборудование' WHERE id = $1`, equipmentIDs[0])
	require.NoError(t, err)

	repo := NewActaRepository(testPool)
	items, err := repo.GetActaItems(context.Background(), actaID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Тестовое оборудование", items[0].Name)
}

// Роль получателя перепроверяется уже внутри транзакции создания: проверка
// до транзакции могла устареть.
func TestActaRepository_Integration_ReceiverRoleRecheck(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	// Инженер не может быть получателем акта.
	_, _, err := createTestActa(testPool, delivererID, delivererID, equipmentIDs[:1])
	assert.ErrorIs(t, err, apperrors.ErrUnknownReceiver)

	// Деактивированный МОЛ тоже отклоняется.
	_, err2 := testPool.Exec(context.Background(),
		`UPDATE users SET is_active = FALSE WHERE id = $1`, receiverID)
	require.NoError(t, err2)
	_, _, err = createTestActa(testPool, delivererID, receiverID, equipmentIDs[:1])
	assert.ErrorIs(t, err, apperrors.ErrUnknownReceiver)

	// Откат транзакции не оставляет ни акта, ни номера, ни пометок.
	var actaCount, pendingCount int
	var lastNumero uint64
	require.NoError(t, testPool.QueryRow(context.Background(), `SELECT COUNT(*) FROM actas`).Scan(&actaCount))
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM equipments WHERE pending_acta_id IS NOT NULL`).Scan(&pendingCount))
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT last_numero FROM acta_counters WHERE id = 1`).Scan(&lastNumero))
	assert.Equal(t, 0, actaCount)
	assert.Equal(t, 0, pendingCount)
	assert.Equal(t, uint64(0), lastNumero)
}

func TestActaRepository_Integration_VisibilityFilter(t *testing.T) {
	requirePool(t)
	cleanupTables(t, testPool)
	delivererID, receiverID, equipmentIDs := seedData(t, testPool)

	_, _, err := createTestActa(testPool, delivererID, receiverID, equipmentIDs[:1])
	require.NoError(t, err)

	repo := NewActaRepository(testPool)

	// Участники видят акт.
	actas, total, err := repo.GetActas(context.Background(), testFilter(), delivererID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Len(t, actas, 1)

	actas, _, err = repo.GetActas(context.Background(), testFilter(), receiverID)
	require.NoError(t, err)
	assert.Len(t, actas, 1)

	// Посторонний не видит ничего, полная видимость видит всё.
	actas, _, err = repo.GetActas(context.Background(), testFilter(), receiverID+1000)
	require.NoError(t, err)
	assert.Empty(t, actas)

	actas, _, err = repo.GetActas(context.Background(), testFilter(), 0)
	require.NoError(t, err)
	assert.Len(t, actas, 1)
}
