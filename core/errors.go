package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind classifies an AppError. The HTTP boundary switches on it to pick a status.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindNotFound
	KindConflict
	KindInfrastructure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// AppError is the tagged error type shared by services, stores and handlers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []FieldError
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Store-level causes. Repositories wrap them in an AppError; callers match with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate value")
	ErrReferenced = errors.New("still referenced")
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = &AppError{Kind: KindAuthentication, Message: "invalid credentials"}
	// ErrEmailInUse is returned when registration hits the unique email constraint.
	ErrEmailInUse = &AppError{Kind: KindAuthentication, Message: "email already in use"}
	// ErrInvalidToken is returned for a missing, tampered or expired access credential.
	ErrInvalidToken = &AppError{Kind: KindAuthentication, Message: "invalid access token"}
)

func newValidationError(details []FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: "Invalid input", Details: details}
}

func notFoundError(what string) *AppError {
	return &AppError{Kind: KindNotFound, Message: what + " not found", Cause: ErrNotFound}
}

func duplicateError(what string) *AppError {
	return &AppError{Kind: KindConflict, Message: what + " already exists", Cause: ErrDuplicate}
}

func infrastructureError(op string, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind == KindInfrastructure {
		return err
	}
	return &AppError{Kind: KindInfrastructure, Message: op, Cause: err}
}

// KindOf returns the kind of the first AppError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// MapStoreError normalizes pgx and context errors into AppErrors.
// Unrecognized errors are returned unchanged.
func MapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AppError{Kind: KindInfrastructure, Message: "store timeout", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Kind: KindNotFound, Message: "resource not found", Cause: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &AppError{Kind: KindConflict, Message: "resource already exists", Cause: fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)}
		case pgerrcode.ForeignKeyViolation:
			return &AppError{Kind: KindConflict, Message: "related resource is missing or still in use", Cause: fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)}
		case pgerrcode.QueryCanceled, pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow:
			return &AppError{Kind: KindInfrastructure, Message: "database unavailable", Cause: pgErr}
		}
	}
	return err
}
