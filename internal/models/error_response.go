package models

import "net/http"

type ErrorKind string // Вид ошибки воркфлоу

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidTransition      ErrorKind = "INVALID_TRANSITION"
	KindInvalidCriteriaWeights ErrorKind = "INVALID_CRITERIA_WEIGHTS"
	KindDuplicateSubmission    ErrorKind = "DUPLICATE_SUBMISSION"
	KindTenderNotOpen          ErrorKind = "TENDER_NOT_OPEN"
	KindUnauthenticated        ErrorKind = "UNAUTHENTICATED"
	KindEmptyCriteria          ErrorKind = "EMPTY_CRITERIA"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindBadRequest             ErrorKind = "BAD_REQUEST"
	KindInternal               ErrorKind = "INTERNAL"
)

// ErrorResponse описывает ошибку с кодом, видом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"code"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом, видом и сообщением.
func NewErrorResponse(statusCode int, kind ErrorKind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message}
}

// NewNotFound создает ошибку "сущность не найдена".
func NewNotFound(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, KindNotFound, message)
}

// NewInvalidTransition создает ошибку недопустимого перехода статуса.
func NewInvalidTransition(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindInvalidTransition, message)
}

// NewInvalidCriteriaWeights создает ошибку некорректной суммы весов критериев.
func NewInvalidCriteriaWeights(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindInvalidCriteriaWeights, message)
}

// NewDuplicateSubmission создает ошибку повторной подачи заявки.
func NewDuplicateSubmission(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindDuplicateSubmission, message)
}

// NewTenderNotOpen создает ошибку подачи заявки на неопубликованный тендер.
func NewTenderNotOpen(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindTenderNotOpen, message)
}

// NewUnauthenticated создает ошибку отсутствия действующего пользователя.
func NewUnauthenticated(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusUnauthorized, KindUnauthenticated, message)
}

// NewEmptyCriteria создает ошибку оценки тендера без критериев.
func NewEmptyCriteria(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindEmptyCriteria, message)
}

// NewForbidden создает ошибку недостаточных прав.
func NewForbidden(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, KindForbidden, message)
}

// NewBadRequest создает ошибку некорректного запроса.
func NewBadRequest(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindBadRequest, message)
}

// NewInternal создает внутреннюю ошибку сервиса.
func NewInternal(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, KindInternal, message)
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
