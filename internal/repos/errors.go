package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/leji-a/Inventory-Tracker/internal/apperr"
)

// Translate maps driver errors onto the apperr taxonomy. Anything it does not
// recognise becomes Internal with the original error kept for logging.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.NotFound, err, "not found")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperr.Wrap(apperr.Conflict, err, "resource already exists")
		case "23503":
			return apperr.Wrap(apperr.Reference, err, "referenced resource does not exist")
		case "42501":
			return apperr.Wrap(apperr.PermissionDenied, err, "permission denied")
		case "23514", "23502", "22P02":
			return apperr.Wrap(apperr.Validation, err, "invalid value")
		}
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.Wrap(apperr.Conflict, err, "resource already exists")
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperr.Wrap(apperr.Reference, err, "referenced resource does not exist")
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return apperr.Wrap(apperr.Validation, err, "invalid value")
		case sqlite3.SQLITE_AUTH:
			return apperr.Wrap(apperr.PermissionDenied, err, "permission denied")
		}
		// Primary result code only; fall back on the message.
		if sqErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := sqErr.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return apperr.Wrap(apperr.Conflict, err, "resource already exists")
			case strings.Contains(msg, "FOREIGN KEY"):
				return apperr.Wrap(apperr.Reference, err, "referenced resource does not exist")
			default:
				return apperr.Wrap(apperr.Validation, err, "invalid value")
			}
		}
	}
	return apperr.Wrap(apperr.Internal, err, "")
}

// mustAffect turns a zero-row write into NotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return Translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Translate(err)
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "not found")
	}
	return nil
}
