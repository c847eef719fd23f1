package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"biomed-inventory/internal/repositories"
	apperrors "biomed-inventory/pkg/errors"

	"go.uber.org/zap"
)

type AuthPermissionServiceInterface interface {
	GetRolePermissionsMap(ctx context.Context, roleID uint64) (map[string]bool, error)
	InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error
}

// AuthPermissionService кеширует привилегии ролей в Redis. Набор ролей
// маленький и статичный, поэтому кеш почти никогда не протухает по делу,
// но TTL всё равно ограничен на случай ручной правки role_permissions.
type AuthPermissionService struct {
	permissionRepo repositories.PermissionRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	logger         *zap.Logger
	cacheTTL       time.Duration
}

func NewAuthPermissionService(
	permissionRepo repositories.PermissionRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) AuthPermissionServiceInterface {
	return &AuthPermissionService{
		permissionRepo: permissionRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

func (s *AuthPermissionService) GetRolePermissionsMap(ctx context.Context, roleID uint64) (map[string]bool, error) {
	cacheKey := fmt.Sprintf("auth:permissions:role:%d", roleID)

	var names []string
	cached, errGet := s.cacheRepo.Get(ctx, cacheKey)
	if errGet == nil {
		if err := json.Unmarshal([]byte(cached), &names); err == nil {
			return toPermissionsMap(names), nil
		}
		s.logger.Warn("AuthPermissionService: повреждённое значение в кеше привилегий",
			zap.String("key", cacheKey), zap.Uint64("roleID", roleID))
	}

	names, err := s.permissionRepo.GetPermissionNamesByRoleID(ctx, roleID)
	if err != nil {
		s.logger.Error("AuthPermissionService: не удалось получить привилегии роли из БД",
			zap.Uint64("roleID", roleID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	if len(names) > 0 {
		if payload, errMarshal := json.Marshal(names); errMarshal == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
				s.logger.Error("AuthPermissionService: не удалось сохранить привилегии роли в кеш",
					zap.Uint64("roleID", roleID), zap.Error(errSet))
			}
		}
	}
	return toPermissionsMap(names), nil
}

func (s *AuthPermissionService) InvalidateRolePermissionsCache(ctx context.Context, roleID uint64) error {
	cacheKey := fmt.Sprintf("auth:permissions:role:%d", roleID)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Error("AuthPermissionService: ошибка инвалидации кеша привилегий роли",
			zap.Uint64("roleID", roleID), zap.Error(err))
		return err
	}
	return nil
}

func toPermissionsMap(names []string) map[string]bool {
	perms := make(map[string]bool, len(names))
	for _, name := range names {
		perms[name] = true
	}
	return perms
}
