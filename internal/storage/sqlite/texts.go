package sqlite

import (
	"context"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/models"
)

const insertTextSQL = `INSERT INTO text_entries (logItemId, content, "order") VALUES (?, ?, ?)`

func scanTextEntry(row rowScanner) (models.TextEntry, error) {
	var te models.TextEntry
	err := row.Scan(&te.ID, &te.LogItemID, &te.Content, &te.Order)
	return te, err
}

// ListTextEntries returns the texts of one item in order
func (r reader) ListTextEntries(ctx context.Context, logItemID int64) ([]models.TextEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, logItemId, content, "order"
		FROM text_entries WHERE logItemId = ?
		ORDER BY "order" ASC, id ASC`, logItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TextEntry{}
	for rows.Next() {
		te, err := scanTextEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, te)
	}
	return entries, rows.Err()
}

func (t *Tx) InsertTextEntry(ctx context.Context, te models.TextEntry) (int64, error) {
	res, err := t.tx.ExecContext(ctx, insertTextSQL, te.LogItemID, te.Content, te.Order)
	if err != nil {
		return 0, wrapWriteErr("insert text entry", err)
	}
	t.touch(migration.TableTextEntries)
	return res.LastInsertId()
}

// InsertTextEntries inserts entries with one prepared statement
func (t *Tx) InsertTextEntries(ctx context.Context, entries []models.TextEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx, insertTextSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, te := range entries {
		if _, err := stmt.ExecContext(ctx, te.LogItemID, te.Content, te.Order); err != nil {
			return wrapWriteErr("insert text entry", err)
		}
	}
	t.touch(migration.TableTextEntries)
	return nil
}

func (s *Store) InsertTextEntry(ctx context.Context, te models.TextEntry) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		id, err = tx.InsertTextEntry(ctx, te)
		return err
	})
	return id, err
}

func (s *Store) InsertTextEntries(ctx context.Context, entries []models.TextEntry) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.InsertTextEntries(ctx, entries)
	})
}
