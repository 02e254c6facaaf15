package errors

import (
	"fmt"
	"net/http"
)

// Машиночитаемые коды ошибок. Клиент ветвится по коду, а не по тексту сообщения.
const (
	CodeValidationError        = "VALIDATION_ERROR"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeInternalError          = "INTERNAL_ERROR"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrActorIDNotFoundInContext = fmt.Errorf("ActorID не найден в контексте запроса")
	ErrInvalidActorID           = fmt.Errorf("недопустимый ActorID")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
	ErrConflict   = fmt.Errorf("конфликт данных")
)

// HttpError — ошибка, доносимая до HTTP-клиента. Code — HTTP-статус,
// ErrCode — стабильный машиночитаемый код, Message — человекочитаемая причина.
// Err хранит исходную ошибку только для логирования и наружу не отдаётся.
type HttpError struct {
	Code    int
	ErrCode string
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
		ErrCode: errCodeForStatus(code),
		Message: message,
		Err:     err,
		Details: details,
	}
}

func errCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidationError
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	default:
		return CodeInternalError
	}
}

func NewValidationError(format string, args ...interface{}) *HttpError {
	return &HttpError{
		Code:    http.StatusBadRequest,
		ErrCode: CodeValidationError,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewForbiddenError(message string) *HttpError {
	return &HttpError{
		Code:    http.StatusForbidden,
		ErrCode: CodeForbidden,
		Message: message,
	}
}

func NewNotFoundError(message string) *HttpError {
	return &HttpError{
		Code:    http.StatusNotFound,
		ErrCode: CodeNotFound,
		Message: message,
	}
}

// NewStateTransitionError — отдельный подкласс VALIDATION_ERROR: причина отказа
// валидатора переходов доносится до UI как есть.
func NewStateTransitionError(reason string) *HttpError {
	return &HttpError{
		Code:    http.StatusUnprocessableEntity,
		ErrCode: CodeInvalidStateTransition,
		Message: reason,
	}
}

func NewInternalError(message string, err error) *HttpError {
	return &HttpError{
		Code:    http.StatusInternalServerError,
		ErrCode: CodeInternalError,
		Message: message,
		Err:     err,
	}
}
