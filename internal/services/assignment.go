package services

import (
	"context"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/repositories"

	"go.uber.org/zap"
)

type AssignmentServiceInterface interface {
	GetAssignments(ctx context.Context, equipmentID uint64, onlyActive bool) ([]dto.AssignmentDTO, error)
	CreateAssignment(ctx context.Context, actorID uint64, payload dto.CreateAssignmentDTO) (uint64, error)
	ReleaseAssignment(ctx context.Context, actorID uint64, id uint64) error
}

type AssignmentService struct {
	assignmentRepo repositories.AssignmentRepositoryInterface
	logger         *zap.Logger
}

func NewAssignmentService(assignmentRepo repositories.AssignmentRepositoryInterface, logger *zap.Logger) AssignmentServiceInterface {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

func (s *AssignmentService) GetAssignments(ctx context.Context, equipmentID uint64, onlyActive bool) ([]dto.AssignmentDTO, error) {
	return s.assignmentRepo.GetAssignments(ctx, equipmentID, onlyActive)
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, actorID uint64, payload dto.CreateAssignmentDTO) (uint64, error) {
	newID, err := s.assignmentRepo.CreateAssignment(ctx, payload, actorID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("оборудование закреплено за пациентом",
		zap.Uint64("assignmentID", newID),
		zap.Uint64("equipmentID", payload.EquipmentID),
		zap.Uint64("assignedBy", actorID))
	return newID, nil
}

func (s *AssignmentService) ReleaseAssignment(ctx context.Context, actorID uint64, id uint64) error {
	if err := s.assignmentRepo.ReleaseAssignment(ctx, id, actorID); err != nil {
		return err
	}

	s.logger.Info("закрепление снято",
		zap.Uint64("assignmentID", id),
		zap.Uint64("releasedBy", actorID))
	return nil
}
