package summarizer

import (
	"errors"
	"fmt"
)

// ErrNotConfigured — не задан ключ API.
var ErrNotConfigured = errors.New("summarizer: api key missing")

// ExternalServiceError — API ответил статусом не-2xx.
type ExternalServiceError struct {
	StatusCode int
	Body       string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("summarizer: upstream error: %d %s", e.StatusCode, e.Body)
}

// MalformedResponseError — ответ модели не удалось разобрать как JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("summarizer: malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
