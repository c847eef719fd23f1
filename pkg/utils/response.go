package utils

import (
	"errors"

	apperrors "biomed-inventory/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Total   *uint64     `json:"total,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	if len(total) > 0 {
		response.Total = &total[0]
	}
	return ctx.JSON(code, response)
}

// ErrorResponse формирует ответ об ошибке: HttpError отдаётся как есть,
// известные ошибки протокола получают статус из таксономии, остальное - 500.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	code := apperrors.HttpStatusOf(err)
	message := err.Error()
	var details map[string]interface{}

	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
		details = httpErr.Details
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		code = 422
		message = invalidInput.Message
	}

	if code >= 500 {
		message = apperrors.ErrInternalServer.Error()
		logger.Error("ErrorResponse: необработанная ошибка", zap.Error(err))
	}

	response := &HttpResponse{
		Status:  false,
		Body:    details,
		Message: message,
	}
	return ctx.JSON(code, response)
}
