package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kapalı hata sınıflandırması. Handler'lar servislerden dönen hatayı
// bu tiplere bakarak HTTP cevabına çevirir.
type Kind string

const (
	KindUnauthorized      Kind = "Unauthorized"
	KindForbidden         Kind = "Forbidden"
	KindNotFound          Kind = "NotFound"
	KindInvalidState      Kind = "InvalidState"      // mevcut durumdan bu geçiş yapılamaz
	KindValidationError   Kind = "ValidationError"
	KindDependencyFailure Kind = "DependencyFailure" // birincil yazma commit oldu, ikincil yazma patladı
	KindInternal          Kind = "InternalError"
)

type Error struct {
	Kind    Kind
	Message string // kullanıcıya dönen mesaj
	Err     error  // opsiyonel alt hata
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState:
		return fiber.StatusConflict
	case KindValidationError:
		return fiber.StatusBadRequest
	case KindDependencyFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }
func Validation(message string) *Error   { return New(KindValidationError, message) }

func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependencyFailure, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Is: hata verilen türden mi?
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ToFiber: servis hatasını fiber hatasına çevir. apperr.Error değilse 500.
func ToFiber(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return fiber.NewError(e.HTTPStatus(), e.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Beklenmeyen sunucu hatası")
}
