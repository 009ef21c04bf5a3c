package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
)

// Kind classifies a failure into the fixed user-facing taxonomy.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindReferential    Kind = "referential"
	KindRequired       Kind = "required"
	KindAuthorization  Kind = "authorization"
	KindAuthentication Kind = "authentication"
	KindNotFound       Kind = "not_found"
	KindUnclassified   Kind = "unclassified"
)

// Error represents a typed domain error with HTTP awareness.
// Message is always safe to show to end users; Err holds the internal cause.
type Error struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Status     int               `json:"-"`
	Fields     map[string]string `json:"fields,omitempty"`
	Kind       Kind              `json:"-"`
	Err        error             `json:"-"`
	violations map[string]Violation
}

// Violation describes a single failed field rule.
type Violation struct {
	Rule  string
	Param string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors of the same code so predefined values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Violations exposes field-scoped validation failures.
func (e *Error) Violations() map[string]Violation {
	if e == nil {
		return nil
	}
	return e.violations
}

// New creates a new Error instance.
func New(code string, kind Kind, status int) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: Message(kind, LangBengali)}
}

// Wrap attaches an internal cause to a predefined error.
func Wrap(err error, base *Error) *Error {
	clone := *base
	clone.Err = err
	return &clone
}

// Wrapf attaches an internal cause with operation context.
func Wrapf(base *Error, err error, format string, args ...interface{}) *Error {
	clone := *base
	if err != nil {
		clone.Err = fmt.Errorf(format+": %w", append(args, err)...)
	} else {
		clone.Err = fmt.Errorf(format, args...)
	}
	return &clone
}

// Invalid builds a validation error for a single field.
func Invalid(field, rule, param string) *Error {
	return WithViolations(map[string]Violation{field: {Rule: rule, Param: param}})
}

// WithViolations builds a validation error carrying field-scoped rules.
func WithViolations(violations map[string]Violation) *Error {
	clone := *ErrValidation
	clone.violations = violations
	return &clone
}

// Predefined errors, one per taxonomy class.
var (
	ErrValidation     = New("VALIDATION_ERROR", KindValidation, http.StatusBadRequest)
	ErrConflict       = New("CONFLICT", KindConflict, http.StatusConflict)
	ErrReferential    = New("RELATED_NOT_FOUND", KindReferential, http.StatusUnprocessableEntity)
	ErrRequired       = New("REQUIRED_MISSING", KindRequired, http.StatusBadRequest)
	ErrForbidden      = New("FORBIDDEN", KindAuthorization, http.StatusForbidden)
	ErrUnauthorized   = New("UNAUTHORIZED", KindAuthentication, http.StatusUnauthorized)
	ErrNotFound       = New("NOT_FOUND", KindNotFound, http.StatusNotFound)
	ErrInternal       = New("INTERNAL_ERROR", KindUnclassified, http.StatusInternalServerError)
	ErrInvalidLogin   = New("INVALID_CREDENTIALS", KindAuthentication, http.StatusUnauthorized)
	ErrInactive       = New("ACCOUNT_INACTIVE", KindAuthorization, http.StatusForbidden)
	ErrTooManyRequest = New("RATE_LIMITED", KindUnclassified, http.StatusTooManyRequests)
	ErrCacheMiss      = errors.New("cache miss")
)

// Postgres SQLSTATE codes mapped into the taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgInsufficientPrivs   = "42501"
)

// Classify normalises any error into an *Error of the fixed taxonomy.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return Wrap(err, ErrConflict)
		case pgForeignKeyViolation:
			return Wrap(err, ErrReferential)
		case pgNotNullViolation:
			return Wrap(err, ErrRequired)
		case pgInsufficientPrivs:
			return Wrap(err, ErrForbidden)
		}
		return Wrap(err, ErrInternal)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Wrap(err, ErrNotFound)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		violations := make(map[string]Violation, len(verrs))
		for _, fe := range verrs {
			violations[fieldPath(fe)] = Violation{Rule: fe.Tag(), Param: fe.Param()}
		}
		out := WithViolations(violations)
		out.Err = err
		return out
	}
	return Wrap(err, ErrInternal)
}

// fieldPath drops the root struct name so nested items read "records[2].status".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 && i+1 < len(ns) {
		return ns[i+1:]
	}
	return fe.Field()
}

// Store classifies a persistence failure and records the failing operation.
func Store(err error, op string) *Error {
	if err == nil {
		return nil
	}
	classified := Classify(err)
	clone := *classified
	clone.Err = fmt.Errorf("%s: %w", op, err)
	return &clone
}
