package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/easydiary/internal/constants"
)

// LegacyTable is the name the flat table is moved to while its rows are copied
const LegacyTable = "diary_entries_v1"

// Category ids the flat columns are redistributed to. They match the
// insertion order of constants.DefaultCategories.
const (
	LegacyLifeID  int64 = 1
	LegacyStudyID int64 = 2
	LegacyMiscID  int64 = 3
)

// NormalizeEntries splits the flat diary table into entries, log items and
// text entries. It is not idempotent and relies on the version marker to
// run once per store.
var NormalizeEntries = Migration{
	Version: SchemaVersion,
	Name:    "normalize diary entries",
	Up:      normalizeEntries,
}

type legacyRow struct {
	date         string
	lifeLog      string
	studyLog     string
	miscLog      string
	moodScore    int
	workDuration float64
}

func normalizeEntries(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `ALTER TABLE diary_entries RENAME TO `+LegacyTable); err != nil {
		return fmt.Errorf("failed to stage legacy table: %w", err)
	}

	if err := CreateSchema(ctx, tx); err != nil {
		return err
	}

	ids, err := SeedCategories(ctx, tx)
	if err != nil {
		return err
	}
	want := []int64{LegacyLifeID, LegacyStudyID, LegacyMiscID}
	if len(ids) < len(want) {
		return fmt.Errorf("seeded %d categories, need %d", len(ids), len(want))
	}
	for i, id := range want {
		if ids[i] != id {
			return fmt.Errorf("category %q seeded with id %d, expected %d", constants.DefaultCategories[i].Name, ids[i], id)
		}
	}

	rows, err := readLegacyRows(ctx, tx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := insertNormalized(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to copy entry %s: %w", row.date, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE `+LegacyTable); err != nil {
		return fmt.Errorf("failed to drop legacy table: %w", err)
	}
	return nil
}

// readLegacyRows loads every usable row of the staged table. Columns are
// located by name so images missing an optional column still migrate.
// Rows with a null or blank date are dropped.
func readLegacyRows(ctx context.Context, tx *sql.Tx) ([]legacyRow, error) {
	rs, err := tx.QueryContext(ctx, `SELECT * FROM `+LegacyTable)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy entries: %w", err)
	}
	defer rs.Close()

	cols, err := rs.Columns()
	if err != nil {
		return nil, err
	}

	var out []legacyRow
	for rs.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan legacy entry: %w", err)
		}

		byName := make(map[string]any, len(cols))
		for i, c := range cols {
			byName[c] = values[i]
		}

		date := strings.TrimSpace(textValue(byName["date"]))
		if date == "" {
			continue
		}

		mood, ok := intValue(byName["moodScore"])
		if !ok {
			mood = constants.LegacyDefaultMood
		}
		duration, _ := floatValue(byName["workDuration"])

		out = append(out, legacyRow{
			date:         date,
			lifeLog:      textValue(byName["lifeLog"]),
			studyLog:     textValue(byName["studyLog"]),
			miscLog:      textValue(byName["miscLog"]),
			moodScore:    mood,
			workDuration: duration,
		})
	}
	return out, rs.Err()
}

func insertNormalized(ctx context.Context, tx *sql.Tx, row legacyRow) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO diary_entries (date, moodScore, tomorrowPlan) VALUES (?, ?, NULL)`,
		row.date, RemapLegacyMood(row.moodScore),
	); err != nil {
		return err
	}

	if !isBlank(row.lifeLog) {
		if err := insertItem(ctx, tx, row.date, LegacyLifeID, nil, row.lifeLog); err != nil {
			return err
		}
	}

	if !isBlank(row.studyLog) || row.workDuration > 0 {
		duration := row.workDuration
		if err := insertItem(ctx, tx, row.date, LegacyStudyID, &duration, row.studyLog); err != nil {
			return err
		}
	}

	if !isBlank(row.miscLog) {
		if err := insertItem(ctx, tx, row.date, LegacyMiscID, nil, row.miscLog); err != nil {
			return err
		}
	}
	return nil
}

// insertItem creates a log item and, when text is non-blank, its only text entry
func insertItem(ctx context.Context, tx *sql.Tx, date string, logTypeID int64, duration *float64, text string) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO log_items (diaryDate, logTypeId, duration, mediaPath) VALUES (?, ?, ?, NULL)`,
		date, logTypeID, duration,
	)
	if err != nil {
		return err
	}
	if isBlank(text) {
		return nil
	}

	itemID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO text_entries (logItemId, content, "order") VALUES (?, ?, 0)`,
		itemID, text,
	)
	return err
}

// RemapLegacyMood maps the 1-10 legacy scale onto 0-4 by truncating division.
func RemapLegacyMood(v1 int) int {
	v := v1 - 1
	if v < 0 {
		v = 0
	}
	if v > 9 {
		v = 9
	}
	return v / 2
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case []byte:
		n, err := strconv.Atoi(strings.TrimSpace(string(t)))
		return n, err == nil
	default:
		return 0, false
	}
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
