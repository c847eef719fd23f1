package services

import (
	"context"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/entities"
	"biomed-inventory/internal/repositories"
	apperrors "biomed-inventory/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, limit uint64, offset uint64) ([]dto.UserDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (uint64, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *UserService) GetUsers(ctx context.Context, limit uint64, offset uint64) ([]dto.UserDTO, uint64, error) {
	if limit == 0 {
		limit = 20
	}
	return s.userRepo.GetUsers(ctx, limit, offset)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (uint64, error) {
	if _, err := s.userRepo.FindUserByEmail(ctx, payload.Email); err == nil {
		return 0, apperrors.NewInvalidInputError("пользователь с email %s уже существует", payload.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("не удалось захешировать пароль", zap.Error(err))
		return 0, apperrors.ErrInternalServer
	}

	newID, err := s.userRepo.CreateUser(ctx, payload, string(hash))
	if err != nil {
		return 0, err
	}

	s.logger.Info("пользователь создан", zap.Uint64("userID", newID), zap.Uint64("roleID", payload.RoleID))
	return newID, nil
}

// UpdateUser в том числе отключает пользователей (is_active = false).
// Отключение получателя не трогает адресованные ему отправленные акты:
// они остаются в SENT и ждут его возвращения.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) error {
	return s.userRepo.UpdateUser(ctx, id, payload)
}

func toUserDTO(user *entities.User) *dto.UserDTO {
	result := &dto.UserDTO{
		ID:        user.ID,
		Fio:       user.Fio,
		Email:     user.Email,
		Phone:     user.Phone,
		Position:  user.Position,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if user.Role != nil {
		result.Role = dto.ShortRoleDTO{ID: user.Role.ID, Code: user.Role.Code, Name: user.Role.Name}
	}
	return result
}
