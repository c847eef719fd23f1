package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrInvalidUserID           = fmt.Errorf("недопустимый UserID")

	// Общие
	ErrNotFound       = fmt.Errorf("запись не найдена")
	ErrBadRequest     = fmt.Errorf("неверный запрос")
	ErrInternalServer = fmt.Errorf("внутренняя ошибка сервера")

	// Протокол внутренних актов приёма-передачи.
	// Валидационные ошибки отклоняются до начала транзакции.
	ErrEmptySelection   = fmt.Errorf("список оборудования пуст")
	ErrMissingSignature = fmt.Errorf("отсутствует обязательная подпись")
	ErrUnknownReceiver  = fmt.Errorf("получатель не найден или не является материально-ответственным лицом")

	// Конфликтные ошибки: вызывающий должен обновить состояние и повторить.
	ErrIneligibleEquipment = fmt.Errorf("оборудование не может быть включено в акт")
	ErrConflictRetry       = fmt.Errorf("оборудование уже заявлено в другом акте, обновите список и повторите")
	ErrActaAlreadyAccepted = fmt.Errorf("акт уже принят")
)

// httpStatusByError - таксономия ошибок протокола: валидация (422),
// конфликт (409), авторизация (401/403), отсутствие записи (404).
var httpStatusByError = map[error]int{
	ErrEmptySelection:      http.StatusUnprocessableEntity,
	ErrMissingSignature:    http.StatusUnprocessableEntity,
	ErrUnknownReceiver:     http.StatusUnprocessableEntity,
	ErrIneligibleEquipment: http.StatusUnprocessableEntity,
	ErrConflictRetry:       http.StatusConflict,
	ErrActaAlreadyAccepted: http.StatusConflict,
	ErrNotFound:            http.StatusNotFound,
	ErrBadRequest:          http.StatusBadRequest,
	ErrInvalidCredentials:  http.StatusUnauthorized,
	ErrUnauthorized:        http.StatusUnauthorized,
	ErrEmptyAuthHeader:     http.StatusUnauthorized,
	ErrInvalidAuthHeader:   http.StatusUnauthorized,
	ErrInvalidToken:        http.StatusUnauthorized,
	ErrTokenExpired:        http.StatusUnauthorized,
	ErrTokenIsNotAccess:    http.StatusUnauthorized,
	ErrForbidden:           http.StatusForbidden,
}

// HttpStatusOf возвращает HTTP-статус для известной ошибки, иначе 500.
func HttpStatusOf(err error) int {
	for sentinel, code := range httpStatusByError {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return http.StatusInternalServerError
}

// HttpError - ошибка с HTTP-статусом и деталями для ответа клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
