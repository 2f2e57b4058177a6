package errors

// Postgres helpers mapping pgx errors onto project codes

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrUniqueViolation           = "23505"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrInvalidDatetimeFormat     = "22007"
	pgErrUndefinedTable            = "42P01"
	pgErrUndefinedColumn           = "42703"
	pgErrQueryCanceled             = "57014"
	pgErrCannotConnectNow          = "57P03"
	pgErrReadOnlySQLTransaction    = "25006"
	pgErrSerializationFailure      = "40001"
	pgErrDeadlockDetected          = "40P01"
	pgErrLockNotAvailable          = "55P03"
)

// ExtractPgError returns the *pgconn.PgError at the root of err, if any
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with the given SQLSTATE
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsDuplicateKey reports a unique constraint violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, pgErrUniqueViolation) }

// IsUndefinedTable reports a query against a table that was never migrated
func IsUndefinedTable(err error) bool { return IsSQLState(err, pgErrUndefinedTable) }

// DBErrorCode maps a postgres error to an ErrorCode; ok is false for non-pg errors
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgErrNotNullViolation, pgErrCheckViolation:
		return ErrorCodeValidation, true
	case pgErrInvalidTextRepresentation, pgErrInvalidDatetimeFormat, pgErrUndefinedColumn:
		return ErrorCodeInvalidArgument, true
	case pgErrQueryCanceled:
		return ErrorCodeCanceled, true
	case pgErrCannotConnectNow, pgErrReadOnlySQLTransaction:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with a mapped code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := DBErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeDB, msg)
}

// Retryable reports whether err is a transient postgres condition worth another attempt
// local cancellation is never retryable
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return false
	}
	switch pgErr.Code {
	case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable:
		return true
	}
	return false
}
