package apperr

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Любая ошибка сервиса оборачивает ровно один из них,
// поэтому вызывающий код проверяет вид через errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDependency        = errors.New("dependency unavailable")
	ErrIntegrityMismatch = errors.New("integrity mismatch")
	ErrStateTransition   = errors.New("invalid state transition")
	ErrConfig            = errors.New("configuration error")
	ErrConflict          = errors.New("conflict")
)

// Error - ошибка с видом, операцией и сообщением
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation - отсутствующее или некорректное поле входных данных
func Validation(op, format string, args ...any) error {
	return newError(ErrValidation, op, format, args...)
}

// NotFound - ссылка на несуществующую сущность
func NotFound(op, format string, args ...any) error {
	return newError(ErrNotFound, op, format, args...)
}

// StateTransition - недопустимый переход статуса тревоги
func StateTransition(op, format string, args ...any) error {
	return newError(ErrStateTransition, op, format, args...)
}

// Config - некорректная или противоречивая конфигурация
func Config(op, format string, args ...any) error {
	return newError(ErrConfig, op, format, args...)
}

// Conflict - ресурс занят другой операцией
func Conflict(op, format string, args ...any) error {
	return newError(ErrConflict, op, format, args...)
}

// Dependency оборачивает сбой внешней зависимости (реестр, геокодер)
func Dependency(op string, err error) error {
	return &Error{Kind: ErrDependency, Op: op, Err: err}
}

// IntegrityMismatch - пересчитанный хэш не совпал с сохраненным
type IntegrityMismatch struct {
	Source   string // "record" or "ledger"
	Expected string
	Actual   string
}

func (e *IntegrityMismatch) Error() string {
	return fmt.Sprintf("integrity mismatch (%s): expected %s, got %s", e.Source, e.Expected, e.Actual)
}

func (e *IntegrityMismatch) Unwrap() error { return ErrIntegrityMismatch }

// Kind возвращает базовый вид ошибки или nil
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrIntegrityMismatch, ErrStateTransition, ErrConflict, ErrConfig, ErrDependency} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
