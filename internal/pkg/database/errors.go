package database

import (
	"errors"

	"github.com/fekuna/omnipos-order-service/internal/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Postgres SQLSTATE codes that mean "retry the whole transaction".
var retryablePGCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled (statement_timeout)
}

// Translate maps driver failures onto the apperror taxonomy. Already classified
// errors and unknown failures are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && retryablePGCodes[pgErr.Code] {
		return apperror.Conflict(err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && (liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked) {
		return apperror.Conflict(err)
	}

	return err
}
