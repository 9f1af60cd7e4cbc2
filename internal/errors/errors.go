package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/easydiary/internal/backup"
	"github.com/julianstephens/easydiary/internal/logger"
	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/storage"
)

// SaveIncompleteMessage is what the user sees when a day-save fails.
// The previously persisted state is left intact in that case.
const SaveIncompleteMessage = "the entry was not saved; your previous entry is unchanged"

// hints are matched in order against the error chain
var hints = []struct {
	target error
	hint   string
}{
	{storage.ErrNotInitialized, "run 'easydiary init' to create the diary"},
	{migration.ErrSchemaTooNew, "this database was written by a newer easydiary; upgrade the binary"},
	{migration.ErrMigrationFailed, "the database is unchanged; 'easydiary backup list' shows the pre-migration copy"},
	{backup.ErrNoDatabase, "nothing to back up yet; run 'easydiary init' first"},
	{storage.ErrConstraint, "the write referenced a missing category or broke a column rule"},
}

// Hint returns a follow-up suggestion for known failures, or ""
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format renders err for the terminal with an "Error: " prefix and, when
// one applies, a hint on the following line
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// SaveFailed wraps a failed save so the user learns it did not complete
func SaveFailed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", SaveIncompleteMessage, err)
}

// Report logs err and writes it to w. It returns the process exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return 1
}

// Fatal reports err on stderr and exits with status 1
func Fatal(err error) {
	if code := Report(os.Stderr, err); code != 0 {
		logger.Close()
		os.Exit(code)
	}
}
