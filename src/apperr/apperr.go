// Package apperr defines the typed errors shared by the map core and the HTTP
// layer, which maps each Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindDataLoad means the bulk collection read failed; collections stay empty.
	KindDataLoad
	// KindPermissionDenied means the device refused location access.
	KindPermissionDenied
	// KindNavigationLaunch means no navigation link could be opened.
	KindNavigationLaunch
	KindNotFound
	KindValidation
	KindUnauthorized
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindDataLoad:
		return "data_load_failure"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNavigationLaunch:
		return "navigation_launch_failure"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindDataLoad, KindNavigationLaunch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the failing operation and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func DataLoad(err error) *Error {
	return Wrap(KindDataLoad, "could not load points of interest", err)
}

func PermissionDenied(message string) *Error {
	return New(KindPermissionDenied, message)
}

func NavigationLaunch(err error) *Error {
	return Wrap(KindNavigationLaunch, "could not open navigation app", err)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// GetKind returns the Kind of the first *Error in err's chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// Response is the JSON body written for a failed request.
type Response struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ToResponse returns the status and body for err. Errors without a Kind are
// reported as a bare 500 so their text does not leak.
func ToResponse(err error) (int, Response) {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus(), Response{Error: e.Message, Kind: e.Kind.String()}
	}
	return http.StatusInternalServerError, Response{Error: "internal error"}
}
