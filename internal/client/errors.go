// errors клиентского слоя: единая таксономия ошибок REST-бэкенда.
//
// На вход — HTTP-статус ответа (или транспортная ошибка), на выход —
// стабильные ошибки-сентинелы, по которым верхние слои (reconciler,
// notifier) принимают решения:
//   - ErrUnavailable (5xx) — единственный класс, который ретраится,
//     и только в пути уведомлений;
//   - ErrUnauthenticated (401) — триггерит хук повторной аутентификации;
//   - остальные отдаются пользователю один раз, без авторетрая.
package client

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidArgument — сервер отверг вход (400).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — сессия истекла или отсутствует (401).
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — действие запрещено для этого пользователя (403).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound — пост/комментарий/пользователь отсутствует (404).
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт состояния (409).
	ErrConflict = errors.New("conflict")
	// ErrUnavailable — серверная ошибка (5xx), допускает повтор.
	ErrUnavailable = errors.New("server unavailable")
	// ErrNetwork — запрос не завершился (транспорт/DNS/обрыв).
	ErrNetwork = errors.New("network error")
	// ErrInternal — прочее: неожиданный статус, битое тело ответа.
	ErrInternal = errors.New("internal")
)

// fromStatus — маппинг HTTP-статуса в сентинел таксономии.
// Все 5xx сворачиваются в ErrUnavailable: для клиента различие
// между 500/502/503 не несёт смысла, условие повторяемое.
func fromStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return ErrInvalidArgument
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrPermissionDenied
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 500:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// IsRetryable сообщает, относится ли ошибка к повторяемому классу
// (серверная 5xx). Сетевые ошибки сюда намеренно не входят: путь
// уведомлений ретраит только серверные ошибки, как и фронтенд.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
