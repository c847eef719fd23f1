package services

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"biomed-inventory/internal/authz"
	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/eligibility"
	"biomed-inventory/internal/entities"
	"biomed-inventory/internal/repositories"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ActaServiceInterface interface {
	CreateActa(ctx context.Context, delivererID uint64, payload dto.CreateActaDTO) (*dto.CreatedActaDTO, error)
	AcceptActa(ctx context.Context, actorID uint64, perms map[string]bool, actaID string, payload dto.AcceptActaDTO) error
	GetActas(ctx context.Context, actorID uint64, perms map[string]bool, filter types.Filter) ([]dto.ActaDTO, uint64, error)
	FindActa(ctx context.Context, actorID uint64, perms map[string]bool, actaID string) (*dto.ActaDTO, error)
	GetEligibleEquipment(ctx context.Context, delivererID uint64) ([]dto.EquipmentDTO, error)
	ListEligibleReceivers(ctx context.Context) ([]dto.ReceiverDTO, error)
}

type ActaService struct {
	actaRepo       repositories.ActaRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	gatekeeper     *authz.Gatekeeper
	logger         *zap.Logger
}

func NewActaService(
	actaRepo repositories.ActaRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	gatekeeper *authz.Gatekeeper,
	logger *zap.Logger,
) ActaServiceInterface {
	return &ActaService{
		actaRepo:       actaRepo,
		equipmentRepo:  equipmentRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		gatekeeper:     gatekeeper,
		logger:         logger,
	}
}

// decodeSignature принимает подпись с канваса: чистый base64 или data-url
// вида "data:image/png;base64,...". Пустая строка - отсутствие подписи.
func decodeSignature(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.ErrMissingSignature
	}
	if idx := strings.Index(raw, ","); idx != -1 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, apperrors.ErrMissingSignature
	}
	if len(decoded) == 0 {
		return nil, apperrors.ErrMissingSignature
	}
	return decoded, nil
}

// CreateActa - транзакция создания акта. Валидация входа идёт до начала
// транзакции, перепроверка пригодности - уже по строкам, заблокированным
// FOR UPDATE. Либо фиксируется всё (акт, снимок строк, пометка оборудования,
// номер), либо ничего.
func (s *ActaService) CreateActa(ctx context.Context, delivererID uint64, payload dto.CreateActaDTO) (*dto.CreatedActaDTO, error) {
	if len(payload.EquipmentIDs) == 0 {
		return nil, apperrors.ErrEmptySelection
	}

	signature, err := decodeSignature(payload.DelivererSignature)
	if err != nil {
		return nil, err
	}

	deliverer, err := s.userRepo.FindUserByID(ctx, delivererID)
	if err != nil {
		return nil, apperrors.ErrUserIDNotFoundInContext
	}

	// Получатель обязан существовать и быть материально-ответственным лицом.
	receiver, err := s.userRepo.FindUserByID(ctx, payload.ReceiverID)
	if err != nil || receiver.Role == nil || receiver.Role.Code != entities.RoleCustodian {
		return nil, apperrors.ErrUnknownReceiver
	}

	fecha := payload.Fecha
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}

	acta := &entities.Acta{
		ID:                 uuid.New().String(),
		Fecha:              fecha,
		City:               payload.City,
		Site:               payload.Site,
		Area:               payload.Area,
		DelivererID:        deliverer.ID,
		DelivererName:      deliverer.Fio,
		ReceiverID:         receiver.ID,
		ReceiverName:       receiver.Fio,
		ReceiverTitle:      payload.ReceiverTitle,
		Notes:              payload.Notes,
		DelivererSignature: signature,
		Status:             entities.ActaStatusSent,
	}

	err = s.actaRepo.CreateActa(ctx, func(tx pgx.Tx) error {
		equipments, err := repositories.LockEquipmentsInTx(ctx, tx, payload.EquipmentIDs)
		if err != nil {
			return err
		}

		activeAssignments, err := repositories.ActiveEquipmentIDsInTx(ctx, tx, payload.EquipmentIDs)
		if err != nil {
			return err
		}

		// Роль получателя перепроверяется под блокировкой: проверка до
		// транзакции могла устареть, а подпись адресуется конкретному МОЛ.
		roleCode, active, err := repositories.ReceiverRoleInTx(ctx, tx, receiver.ID)
		if err != nil {
			return err
		}
		if !active || roleCode != entities.RoleCustodian {
			return apperrors.ErrUnknownReceiver
		}

		// Перепроверка по заблокированным строкам. Снимок, который видел
		// фронт, мог устареть: гонку двух актов за одну единицу выигрывает
		// тот, кто закоммитился первым, второй получает конфликт.
		for _, eq := range equipments {
			if checkErr := eligibility.Check(eq, activeAssignments[eq.ID], delivererID); checkErr != nil {
				if checkErr == eligibility.ErrPendingActa {
					return apperrors.ErrConflictRetry
				}
				s.logger.Warn("оборудование не прошло перепроверку пригодности",
					zap.Uint64("equipmentID", eq.ID),
					zap.String("reason", checkErr.Error()))
				return apperrors.ErrIneligibleEquipment
			}
		}

		numero, err := repositories.NextNumeroInTx(ctx, tx)
		if err != nil {
			return err
		}
		acta.Numero = numero

		if err := repositories.InsertActaInTx(ctx, tx, acta); err != nil {
			return err
		}
		if err := repositories.InsertItemsInTx(ctx, tx, acta.ID, equipments); err != nil {
			return err
		}
		return repositories.MarkEquipmentsPendingInTx(ctx, tx, acta.ID, payload.EquipmentIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("акт создан",
		zap.String("actaID", acta.ID),
		zap.Uint64("numero", acta.Numero),
		zap.Uint64("delivererID", delivererID),
		zap.Uint64("receiverID", receiver.ID),
		zap.Int("items", len(payload.EquipmentIDs)))

	return &dto.CreatedActaDTO{ID: acta.ID, Numero: acta.Numero}, nil
}

// AcceptActa - транзакция принятия. Акт блокируется, проверяется статус SENT
// и что актор - назначенный получатель, после чего ставится подпись и
// оборудование переходит под ответственность получателя.
func (s *ActaService) AcceptActa(ctx context.Context, actorID uint64, perms map[string]bool, actaID string, payload dto.AcceptActaDTO) error {
	signature, err := decodeSignature(payload.ReceiverSignature)
	if err != nil {
		return err
	}

	err = s.actaRepo.AcceptActa(ctx, func(tx pgx.Tx) error {
		acta, err := repositories.FindActaForUpdateInTx(ctx, tx, actaID)
		if err != nil {
			return err
		}

		if acta.Status != entities.ActaStatusSent {
			return apperrors.ErrActaAlreadyAccepted
		}
		if !s.gatekeeper.CanAcceptActa(perms, actorID, acta) {
			return apperrors.ErrForbidden
		}

		if err := repositories.AcceptActaInTx(ctx, tx, actaID, signature); err != nil {
			return err
		}
		return repositories.ReleaseEquipmentsInTx(ctx, tx, actaID, acta.ReceiverID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("акт принят",
		zap.String("actaID", actaID),
		zap.Uint64("receiverID", actorID))
	return nil
}

func (s *ActaService) GetActas(ctx context.Context, actorID uint64, perms map[string]bool, filter types.Filter) ([]dto.ActaDTO, uint64, error) {
	visibleTo := actorID
	if perms[authz.Superuser] || perms[authz.ScopeAll] {
		visibleTo = 0
	}

	actas, total, err := s.actaRepo.GetActas(ctx, filter, visibleTo)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ActaDTO, 0, len(actas))
	for i := range actas {
		result = append(result, *toActaDTO(&actas[i]))
	}
	return result, total, nil
}

func (s *ActaService) FindActa(ctx context.Context, actorID uint64, perms map[string]bool, actaID string) (*dto.ActaDTO, error) {
	acta, err := s.actaRepo.FindActa(ctx, actaID)
	if err != nil {
		return nil, err
	}

	// Чужой акт не раскрывается даже фактом существования.
	if !s.gatekeeper.CanSeeActa(perms, actorID, acta) {
		return nil, apperrors.ErrNotFound
	}
	return toActaDTO(acta), nil
}

// GetEligibleEquipment - список оборудования, которое актор может включить
// в новый акт. Чисто подсказка для интерфейса: окончательное слово за
// транзакцией создания.
func (s *ActaService) GetEligibleEquipment(ctx context.Context, delivererID uint64) ([]dto.EquipmentDTO, error) {
	snapshot, err := s.equipmentRepo.GetAvailableSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(snapshot))
	for _, eq := range snapshot {
		ids = append(ids, eq.ID)
	}
	activeAssignments, err := s.assignmentRepo.ActiveEquipmentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible := eligibility.Filter(snapshot, activeAssignments, delivererID)

	result := make([]dto.EquipmentDTO, 0, len(eligible))
	for _, eq := range eligible {
		result = append(result, dto.EquipmentDTO{
			ID:            eq.ID,
			InventoryCode: eq.InventoryCode,
			SerialNumber:  eq.SerialNumber,
			Name:          eq.Name,
			Brand:         eq.Brand,
			Model:         eq.Model,
			Status:        eq.Status,
			PendingActaID: eq.PendingActaID,
			CreatedAt:     eq.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			UpdatedAt:     eq.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return result, nil
}

func (s *ActaService) ListEligibleReceivers(ctx context.Context) ([]dto.ReceiverDTO, error) {
	return s.userRepo.GetReceiversByRoleCode(ctx, entities.RoleCustodian)
}

func toActaDTO(acta *entities.Acta) *dto.ActaDTO {
	result := &dto.ActaDTO{
		ID:            acta.ID,
		Numero:        acta.Numero,
		Fecha:         acta.Fecha,
		City:          acta.City,
		Site:          acta.Site,
		Area:          acta.Area,
		Deliverer:     dto.ShortUserDTO{ID: acta.DelivererID, Fio: acta.DelivererName},
		Receiver:      dto.ShortUserDTO{ID: acta.ReceiverID, Fio: acta.ReceiverName},
		ReceiverTitle: acta.ReceiverTitle,
		Notes:         acta.Notes,
		Status:        acta.Status,

		HasDelivererSignature: len(acta.DelivererSignature) > 0,
		HasReceiverSignature:  len(acta.ReceiverSignature) > 0,

		CreatedAt: acta.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if acta.AcceptedAt.Valid {
		result.AcceptedAt = null.StringFrom(acta.AcceptedAt.Time.Local().Format("2006-01-02 15:04:05"))
	}

	for _, item := range acta.Items {
		result.Items = append(result.Items, dto.ActaEquipmentDTO{
			EquipmentID:   item.EquipmentID,
			InventoryCode: item.InventoryCode,
			SerialNumber:  item.SerialNumber,
			Name:          item.Name,
			Brand:         item.Brand,
			Model:         item.Model,
		})
	}
	return result
}
