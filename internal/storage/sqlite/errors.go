package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/easydiary/internal/storage"
)

// isConstraint reports whether err is a SQLite constraint violation
// (foreign key, NOT NULL, UNIQUE, CHECK or a RAISE(ABORT) trigger)
func isConstraint(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// wrapWriteErr tags constraint violations with storage.ErrConstraint
func wrapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraint(err) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapReadErr maps sql.ErrNoRows to storage.ErrNotFound
func wrapReadErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
