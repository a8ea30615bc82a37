package common

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUniqueConstraint is a write that collided with a uniqueness rule, e.g. a
	// handle already bound to another user in the same guild.
	ErrUniqueConstraint = fmt.Errorf("unique constraint failed: %w", ErrConflict)
	// ErrPreconditionFailed is a guarded transition that matched no row.
	ErrPreconditionFailed = fmt.Errorf("precondition failed: %w", ErrConflict)
	ErrConnectivity       = fmt.Errorf("database unreachable: %w", ErrServiceUnavailable)
	ErrDatabaseDisabled   = fmt.Errorf("database disabled: %w", ErrServiceUnavailable)
	ErrLockBusy           = fmt.Errorf("lock held by another request: %w", ErrConflict)

	ErrActiveDuel      = fmt.Errorf("user already has a pending or ongoing duel: %w", ErrConflict)
	ErrActiveChallenge = fmt.Errorf("user already has an active challenge: %w", ErrConflict)
	ErrNotRegistered   = fmt.Errorf("user is not a registered duelist: %w", ErrValidation)
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || IsUniqueViolation(err) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrServiceUnavailable) || IsConnectivityFailure(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// IsUniqueViolation reports whether err came from a unique or primary key
// constraint in either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// IsConnectivityFailure reports whether err means the store could not be reached
// rather than that a statement was rejected.
func IsConnectivityFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
