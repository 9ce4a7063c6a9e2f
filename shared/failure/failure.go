package failure

import (
	"errors"
	"net/http"
)

// Kind identifies a failure category independently of its HTTP mapping.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInterval   Kind = "invalid_interval"
	KindInvalidArgument   Kind = "invalid_argument"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindPersistence       Kind = "persistence_failure"
)

// Failure is a typed error carrying a failure kind, the HTTP status it maps
// to, and an optional details payload surfaced to the caller.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"error_kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}

	return nil
}

// NotFound returns a failure for a missing entity.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName + " not found",
	}
}

// InvalidInterval returns a failure for a zero or negative-length time range.
func InvalidInterval(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidInterval,
		Message: msg,
	}
}

// InvalidArgument returns a failure for a malformed or out-of-range field.
func InvalidArgument(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidArgument,
		Message: msg,
	}
}

// BadRequest wraps err as an invalid-argument failure.
func BadRequest(err error) error {
	if err != nil {
		return InvalidArgument(err.Error())
	}

	return nil
}

// Conflict returns a failure for an overlapping reservation. details usually
// carries the identifier of the record blocking the slot.
func Conflict(msg string, details any) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: msg,
		Details: details,
	}
}

// InvalidTransition returns a failure for a disallowed status change. It maps
// to 409 since the record's current state conflicts with the request.
func InvalidTransition(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindInvalidTransition,
		Message: msg,
	}
}

// Persistence wraps a storage-layer error. Any in-memory compensation has
// already run by the time a Persistence failure reaches a caller.
func Persistence(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{
		Code:    http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: "persistence failure",
		Details: err,
	}
}

// GetCode returns the HTTP status code for an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// KindOf returns the failure kind of an error interface, or KindPersistence
// for untyped errors.
func KindOf(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return KindPersistence
}

// DetailsOf returns the details payload of a failure, if any. Wrapped cause
// errors are not exposed to callers.
func DetailsOf(err error) any {
	var fail *Failure
	if errors.As(err, &fail) {
		if _, isErr := fail.Details.(error); isErr {
			return nil
		}

		return fail.Details
	}

	return nil
}
