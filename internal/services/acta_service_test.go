package services

import (
	"context"
	"encoding/base64"
	"testing"

	"biomed-inventory/internal/authz"
	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Фейки репозиториев для проверки валидации до транзакции ---

type fakeActaRepo struct {
	txStarted     bool
	lastVisibleTo uint64
	findResult    *entities.Acta
}

func (f *fakeActaRepo) FindActa(ctx context.Context, id string) (*entities.Acta, error) {
	if f.findResult == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.findResult, nil
}

func (f *fakeActaRepo) GetActas(ctx context.Context, filter types.Filter, visibleTo uint64) ([]entities.Acta, uint64, error) {
	f.lastVisibleTo = visibleTo
	return []entities.Acta{}, 0, nil
}

func (f *fakeActaRepo) GetActaItems(ctx context.Context, actaID string) ([]entities.ActaEquipment, error) {
	return nil, nil
}

// Транзакционный колбэк здесь не выполняется: шаги внутри транзакции
// покрыты интеграционными тестами репозитория.
func (f *fakeActaRepo) CreateActa(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.txStarted = true
	return nil
}

func (f *fakeActaRepo) AcceptActa(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.txStarted = true
	return nil
}

type fakeEquipmentRepo struct {
	snapshot []entities.Equipment
}

func (f *fakeEquipmentRepo) GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	return nil, 0, nil
}
func (f *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	return nil, apperrors.ErrNotFound
}
func (f *fakeEquipmentRepo) GetAvailableSnapshot(ctx context.Context) ([]entities.Equipment, error) {
	return f.snapshot, nil
}
func (f *fakeEquipmentRepo) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (uint64, error) {
	return 0, nil
}
func (f *fakeEquipmentRepo) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) error {
	return nil
}
func (f *fakeEquipmentRepo) DeleteEquipment(ctx context.Context, id uint64) error { return nil }
func (f *fakeEquipmentRepo) RebuildVisitadorFlags(ctx context.Context) (*dto.RebuildFlagsResultDTO, error) {
	return &dto.RebuildFlagsResultDTO{}, nil
}

type fakeAssignmentRepo struct {
	active map[uint64]bool
}

func (f *fakeAssignmentRepo) GetAssignments(ctx context.Context, equipmentID uint64, onlyActive bool) ([]dto.AssignmentDTO, error) {
	return nil, nil
}
func (f *fakeAssignmentRepo) ActiveEquipmentIDs(ctx context.Context, equipmentIDs []uint64) (map[uint64]bool, error) {
	return f.active, nil
}
func (f *fakeAssignmentRepo) CreateAssignment(ctx context.Context, payload dto.CreateAssignmentDTO, assignedBy uint64) (uint64, error) {
	return 0, nil
}
func (f *fakeAssignmentRepo) ReleaseAssignment(ctx context.Context, id uint64, releasedBy uint64) error {
	return nil
}

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.ErrNotFound
}
func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, apperrors.ErrNotFound
}
func (f *fakeUserRepo) GetUsers(ctx context.Context, limit uint64, offset uint64) ([]dto.UserDTO, uint64, error) {
	return nil, 0, nil
}
func (f *fakeUserRepo) GetReceiversByRoleCode(ctx context.Context, roleCode string) ([]dto.ReceiverDTO, error) {
	return []dto.ReceiverDTO{{ID: 2, Fio: "МОЛ Тестовый"}}, nil
}
func (f *fakeUserRepo) CreateUser(ctx context.Context, payload dto.CreateUserDTO, passwordHash string) (uint64, error) {
	return 0, nil
}
func (f *fakeUserRepo) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) error {
	return nil
}

func userWithRole(id uint64, roleCode string) *entities.User {
	return &entities.User{
		ID:   id,
		Fio:  "Тестовый Пользователь",
		Role: &entities.Role{Code: roleCode},
	}
}

func newTestActaService(actaRepo *fakeActaRepo, userRepo *fakeUserRepo) ActaServiceInterface {
	return NewActaService(
		actaRepo,
		&fakeEquipmentRepo{},
		&fakeAssignmentRepo{},
		userRepo,
		authz.NewGatekeeper(),
		zap.NewNop(),
	)
}

func validSignature() string {
	return base64.StdEncoding.EncodeToString([]byte("podpis"))
}

func TestCreateActa_EmptySelection(t *testing.T) {
	svc := newTestActaService(&fakeActaRepo{}, &fakeUserRepo{})

	_, err := svc.CreateActa(context.Background(), 1, dto.CreateActaDTO{
		ReceiverID:         2,
		DelivererSignature: validSignature(),
	})
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
}

func TestCreateActa_MissingSignature(t *testing.T) {
	svc := newTestActaService(&fakeActaRepo{}, &fakeUserRepo{})

	for _, signature := range []string{"", "   ", "не-base64!!!"} {
		_, err := svc.CreateActa(context.Background(), 1, dto.CreateActaDTO{
			ReceiverID:         2,
			EquipmentIDs:       []uint64{1},
			DelivererSignature: signature,
		})
		assert.ErrorIs(t, err, apperrors.ErrMissingSignature, "подпись %q", signature)
	}
}

func TestCreateActa_UnknownReceiver(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]*entities.User{
		1: userWithRole(1, entities.RoleEngineer),
		3: userWithRole(3, entities.RoleVisitador),
	}}
	svc := newTestActaService(&fakeActaRepo{}, userRepo)

	// Получателя нет вовсе.
	_, err := svc.CreateActa(context.Background(), 1, dto.CreateActaDTO{
		ReceiverID:         99,
		EquipmentIDs:       []uint64{1},
		DelivererSignature: validSignature(),
	})
	assert.ErrorIs(t, err, apperrors.ErrUnknownReceiver)

	// Получатель существует, но не материально-ответственное лицо.
	_, err = svc.CreateActa(context.Background(), 1, dto.CreateActaDTO{
		ReceiverID:         3,
		EquipmentIDs:       []uint64{1},
		DelivererSignature: validSignature(),
	})
	assert.ErrorIs(t, err, apperrors.ErrUnknownReceiver)
}

func TestCreateActa_StartsTransactionForValidInput(t *testing.T) {
	actaRepo := &fakeActaRepo{}
	userRepo := &fakeUserRepo{users: map[uint64]*entities.User{
		1: userWithRole(1, entities.RoleEngineer),
		2: userWithRole(2, entities.RoleCustodian),
	}}
	svc := newTestActaService(actaRepo, userRepo)

	res, err := svc.CreateActa(context.Background(), 1, dto.CreateActaDTO{
		ReceiverID:         2,
		City:               "Богота",
		Site:               "Центральный госпиталь",
		EquipmentIDs:       []uint64{1, 2},
		DelivererSignature: "data:image/png;base64," + validSignature(),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.ID)
	assert.True(t, actaRepo.txStarted, "валидный ввод должен дойти до транзакции")
}

func TestAcceptActa_MissingSignatureBeforeTx(t *testing.T) {
	actaRepo := &fakeActaRepo{}
	svc := newTestActaService(actaRepo, &fakeUserRepo{})

	err := svc.AcceptActa(context.Background(), 2, map[string]bool{authz.ActasAccept: true}, "some-id", dto.AcceptActaDTO{})
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)
	assert.False(t, actaRepo.txStarted, "без подписи транзакция не начинается")
}

func TestGetActas_VisibilityScope(t *testing.T) {
	actaRepo := &fakeActaRepo{}
	svc := newTestActaService(actaRepo, &fakeUserRepo{})

	// Обычный пользователь видит только свои акты.
	_, _, err := svc.GetActas(context.Background(), 7, map[string]bool{authz.ActasView: true}, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), actaRepo.lastVisibleTo)

	// scope:all снимает ограничение.
	_, _, err = svc.GetActas(context.Background(), 7, map[string]bool{authz.ActasView: true, authz.ScopeAll: true}, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), actaRepo.lastVisibleTo)
}

func TestFindActa_ForeignActaHiddenAsNotFound(t *testing.T) {
	actaRepo := &fakeActaRepo{findResult: &entities.Acta{
		ID:          "acta-1",
		DelivererID: 1,
		ReceiverID:  2,
		Status:      entities.ActaStatusSent,
	}}
	svc := newTestActaService(actaRepo, &fakeUserRepo{})

	// Посторонний с правом просмотра всё равно получает 404.
	_, err := svc.FindActa(context.Background(), 50, map[string]bool{authz.ActasView: true}, "acta-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Участник акта видит его.
	res, err := svc.FindActa(context.Background(), 2, map[string]bool{authz.ActasView: true}, "acta-1")
	require.NoError(t, err)
	assert.Equal(t, "acta-1", res.ID)
}

func TestGetEligibleEquipment_AppliesFilter(t *testing.T) {
	pending := entities.Equipment{ID: 2, Status: entities.EquipmentStatusAvailable, PendingActaID: null.StringFrom("acta-x")}
	assigned := entities.Equipment{ID: 3, Status: entities.EquipmentStatusAvailable}
	free := entities.Equipment{ID: 1, InventoryCode: "OXY-2001", Status: entities.EquipmentStatusAvailable}

	svc := NewActaService(
		&fakeActaRepo{},
		&fakeEquipmentRepo{snapshot: []entities.Equipment{free, pending, assigned}},
		&fakeAssignmentRepo{active: map[uint64]bool{3: true}},
		&fakeUserRepo{},
		authz.NewGatekeeper(),
		zap.NewNop(),
	)

	res, err := svc.GetEligibleEquipment(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, uint64(1), res[0].ID)
	assert.Equal(t, "OXY-2001", res[0].InventoryCode)
}

func TestDecodeSignature(t *testing.T) {
	raw := []byte("podpis")
	encoded := base64.StdEncoding.EncodeToString(raw)

	decoded, err := decodeSignature(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	decoded, err = decodeSignature("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, err = decodeSignature("")
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)

	_, err = decodeSignature(base64.StdEncoding.EncodeToString(nil))
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)
}
