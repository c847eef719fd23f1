package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/repositories"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginAttempts     = 5
	loginLockoutDuration = 15 * time.Minute
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.LoginResponseDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	attemptsKey := fmt.Sprintf("login_attempts:%s", payload.Email)

	// Защита от перебора: после пяти неудачных попыток вход блокируется
	// на время жизни ключа в Redis.
	attemptsStr, _ := s.cacheRepo.Get(ctx, attemptsKey)
	if attempts, _ := strconv.Atoi(attemptsStr); attempts >= maxLoginAttempts {
		s.logger.Warn("слишком много неудачных попыток входа", zap.String("email", payload.Email))
		return nil, apperrors.NewHttpError(
			http.StatusTooManyRequests,
			fmt.Sprintf("Слишком много попыток входа. Попробуйте через %.0f минут.", loginLockoutDuration.Minutes()),
			nil, nil,
		)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		s.registerFailedAttempt(ctx, attemptsKey)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("попытка входа отключённого пользователя", zap.Uint64("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.registerFailedAttempt(ctx, attemptsKey)
		return nil, apperrors.ErrInvalidCredentials
	}

	_ = s.cacheRepo.Del(ctx, attemptsKey)

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.RoleID)
	if err != nil {
		s.logger.Error("не удалось сгенерировать токены", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	return &dto.LoginResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.ShortUserDTO{ID: user.ID, Fio: user.Fio},
		RoleCode:     user.Role.Code,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.LoginResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.RoleID)
	if err != nil {
		s.logger.Error("не удалось обновить токены", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	return &dto.LoginResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.ShortUserDTO{ID: user.ID, Fio: user.Fio},
		RoleCode:     user.Role.Code,
	}, nil
}

func (s *AuthService) registerFailedAttempt(ctx context.Context, key string) {
	attempts, err := s.cacheRepo.Incr(ctx, key)
	if err != nil {
		s.logger.Error("не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		if _, err := s.cacheRepo.Expire(ctx, key, loginLockoutDuration); err != nil {
			s.logger.Error("не удалось выставить TTL счётчику попыток входа", zap.Error(err))
		}
	}
}
