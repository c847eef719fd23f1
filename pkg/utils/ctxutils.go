package utils

import (
	"context"

	"biomed-inventory/pkg/contextkeys"
	apperrors "biomed-inventory/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetRoleCodeFromCtx(ctx context.Context) (string, error) {
	roleCode, ok := ctx.Value(contextkeys.RoleCodeKey).(string)
	if !ok || roleCode == "" {
		return "", apperrors.ErrForbidden
	}
	return roleCode, nil
}

func GetPermissionsMapFromCtx(ctx context.Context) (map[string]bool, error) {
	permissions, ok := ctx.Value(contextkeys.UserPermissionsMapKey).(map[string]bool)
	if !ok || permissions == nil {
		return nil, apperrors.ErrForbidden
	}
	return permissions, nil
}
