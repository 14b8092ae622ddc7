package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joseph-ayodele/boletos-tracker/internal/common"
)

// classify wraps a driver error into a StoreError, flagging constraint violations
// from either engine.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	se := &common.StoreError{Op: op, Cause: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.Constraint = pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
		return se
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// extended result codes keep the primary code in the low byte
		se.Constraint = liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return se
}
