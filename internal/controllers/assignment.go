package controllers

import (
	"net/http"
	"strconv"

	"biomed-inventory/internal/dto"
	"biomed-inventory/internal/services"
	apperrors "biomed-inventory/pkg/errors"
	"biomed-inventory/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(assignmentService services.AssignmentServiceInterface, logger *zap.Logger) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

func (c *AssignmentController) GetAssignments(ctx echo.Context) error {
	equipmentID, err := strconv.ParseUint(ctx.QueryParam("equipment_id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Параметр equipment_id обязателен", err, nil),
			c.logger)
	}
	onlyActive := ctx.QueryParam("active") == "true"

	res, err := c.assignmentService.GetAssignments(ctx.Request().Context(), equipmentID, onlyActive)
	if err != nil {
		c.logger.Error("GetAssignments: ошибка при получении закреплений", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список закреплений получен", http.StatusOK)
}

func (c *AssignmentController) CreateAssignment(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateAssignmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	newID, err := c.assignmentService.CreateAssignment(ctx.Request().Context(), userID, payload)
	if err != nil {
		c.logger.Warn("CreateAssignment: закрепление не создано",
			zap.Uint64("equipmentID", payload.EquipmentID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]uint64{"id": newID}, "Оборудование закреплено за пациентом", http.StatusCreated)
}

func (c *AssignmentController) ReleaseAssignment(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.assignmentService.ReleaseAssignment(ctx.Request().Context(), userID, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Закрепление снято", http.StatusOK)
}
