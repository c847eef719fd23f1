package controllers

import (
	"net/http"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/services"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ActaController struct {
	actaService services.ActaServiceInterface
	logger      *zap.Logger
}

func NewActaController(actaService services.ActaServiceInterface, logger *zap.Logger) *ActaController {
	return &ActaController{
		actaService: actaService,
		logger:      logger,
	}
}

func (c *ActaController) CreateActa(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateActaDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("CreateActa: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		c.logger.Error("CreateActa: ошибка валидации данных", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.actaService.CreateActa(ctx.Request().Context(), userID, payload)
	if err != nil {
		c.logger.Warn("CreateActa: акт не создан", zap.Uint64("delivererID", userID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Акт успешно создан и отправлен получателю", http.StatusCreated)
}

func (c *ActaController) AcceptActa(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	actaID := ctx.Param("id")
	if _, err := uuid.Parse(actaID); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID акта", err,
				map[string]interface{}{"param": actaID}),
			c.logger)
	}

	var payload dto.AcceptActaDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("AcceptActa: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.actaService.AcceptActa(ctx.Request().Context(), userID, perms, actaID, payload); err != nil {
		c.logger.Warn("AcceptActa: акт не принят",
			zap.String("actaID", actaID), zap.Uint64("userID", userID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Акт успешно принят", http.StatusOK)
}

func (c *ActaController) GetActas(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.actaService.GetActas(ctx.Request().Context(), userID, perms, filter)
	if err != nil {
		c.logger.Error("GetActas: ошибка при получении списка актов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список актов успешно получен", http.StatusOK, total)
}

func (c *ActaController) FindActa(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	actaID := ctx.Param("id")
	if _, err := uuid.Parse(actaID); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID акта", err,
				map[string]interface{}{"param": actaID}),
			c.logger)
	}

	res, err := c.actaService.FindActa(ctx.Request().Context(), userID, perms, actaID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Акт успешно найден", http.StatusOK)
}

// GetEligibleEquipment - оборудование, доступное актору для нового акта.
func (c *ActaController) GetEligibleEquipment(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.actaService.GetEligibleEquipment(ctx.Request().Context(), userID)
	if err != nil {
		c.logger.Error("GetEligibleEquipment: ошибка при получении оборудования", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список доступного оборудования получен", http.StatusOK)
}

// GetReceivers - список допустимых получателей (активные МОЛ).
func (c *ActaController) GetReceivers(ctx echo.Context) error {
	res, err := c.actaService.ListEligibleReceivers(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetReceivers: ошибка при получении получателей", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список получателей получен", http.StatusOK)
}
