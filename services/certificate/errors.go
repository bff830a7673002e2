package certificate

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures of the certificate workflow.
type Kind string

const (
	KindNotFound                   Kind = "NotFound"
	KindExamNotPassed              Kind = "ExamNotPassed"
	KindDuplicateCertificateNumber Kind = "DuplicateCertificateNumber"
	KindTemplateAssetMissing       Kind = "TemplateAssetMissing"
	KindStorageError               Kind = "StorageError"
)

// Sentinels for errors.Is. Errors returned by this package match exactly one of them.
var (
	ErrNotFound                   = &Error{Kind: KindNotFound}
	ErrExamNotPassed              = &Error{Kind: KindExamNotPassed}
	ErrDuplicateCertificateNumber = &Error{Kind: KindDuplicateCertificateNumber}
	ErrTemplateAssetMissing       = &Error{Kind: KindTemplateAssetMissing}
	ErrStorage                    = &Error{Kind: KindStorageError}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so wrapped errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func storageError(msg string, err error) *Error {
	return newError(KindStorageError, msg, err)
}

// KindOf reports the kind of err. Anything that is not an *Error is a storage failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageError
}

// HTTPStatus maps an error kind to the status code returned to callers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindExamNotPassed:
		return http.StatusBadRequest
	case KindDuplicateCertificateNumber:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text shown to API callers. Storage failures are
// reported as fallback; their internal causes are logged, not returned.
func PublicMessage(err error, fallback string) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindStorageError {
		return fallback
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}
