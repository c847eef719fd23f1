package services

import (
	"context"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/repositories"

	"go.uber.org/zap"
)

type MaintenanceServiceInterface interface {
	RebuildVisitadorFlags(ctx context.Context, actorID uint64) (*dto.RebuildFlagsResultDTO, error)
}

// MaintenanceService - ремонтные операции администратора.
type MaintenanceService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	logger        *zap.Logger
}

func NewMaintenanceService(equipmentRepo repositories.EquipmentRepositoryInterface, logger *zap.Logger) MaintenanceServiceInterface {
	return &MaintenanceService{
		equipmentRepo: equipmentRepo,
		logger:        logger,
	}
}

// RebuildVisitadorFlags пересчитывает производные флаги доступности из
// активных закреплений. Операция идемпотентна: повторный запуск на
// согласованных данных ничего не меняет.
func (s *MaintenanceService) RebuildVisitadorFlags(ctx context.Context, actorID uint64) (*dto.RebuildFlagsResultDTO, error) {
	result, err := s.equipmentRepo.RebuildVisitadorFlags(ctx)
	if err != nil {
		s.logger.Error("пересчёт флагов доступности не удался", zap.Error(err))
		return nil, err
	}

	s.logger.Info("флаги доступности пересчитаны",
		zap.Uint64("actorID", actorID),
		zap.Int64("markedAssigned", result.MarkedAssigned),
		zap.Int64("markedAvailable", result.MarkedAvailable))
	return result, nil
}
