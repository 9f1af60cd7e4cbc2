package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "easydiary.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE diary_entries (date TEXT PRIMARY KEY, moodScore INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO diary_entries VALUES ('2025-01-10', 3), ('2025-01-11', 1)`)
	require.NoError(t, err)
	return dbPath
}

func countEntries(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM diary_entries").Scan(&n))
	return n
}

// fixedClock returns a clock that advances one minute per call
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Minute)
		return t
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	ctx := context.Background()

	backupPath, err := mgr.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), "backups"), mgr.Dir())
	assert.Equal(t, mgr.Dir(), filepath.Dir(backupPath))
	assert.Regexp(t, `^easydiary-\d{8}-\d{4}\.db$`, filepath.Base(backupPath))
	assert.Equal(t, 2, countEntries(t, backupPath))
}

func TestCreate_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"), 0)
	_, err := mgr.Create(context.Background())
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestCreate_SameMinuteGetsUniqueNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	at := time.Date(2025, 1, 10, 9, 30, 15, 0, time.Local)
	mgr.now = func() time.Time { return at }
	ctx := context.Background()

	first, err := mgr.Create(ctx)
	require.NoError(t, err)
	second, err := mgr.Create(ctx)
	require.NoError(t, err)
	third, err := mgr.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, "easydiary-20250110-0930.db", filepath.Base(first))
	assert.Equal(t, "easydiary-20250110-093015.db", filepath.Base(second))
	assert.Equal(t, "easydiary-20250110-093015-1.db", filepath.Base(third))

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, backups, 3)
}

func TestList(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	mgr.now = fixedClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, backups)

	for i := 0; i < 3; i++ {
		_, err := mgr.Create(ctx)
		require.NoError(t, err)
	}
	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), "easydiary-garbage.db"), []byte("x"), 0o600))

	backups, err = mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	for i := 1; i < len(backups); i++ {
		assert.True(t, backups[i-1].Timestamp.After(backups[i].Timestamp), "backups should be newest first")
	}
	assert.Positive(t, backups[0].Size)
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 3)
	mgr.now = fixedClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	var created []string
	for i := 0; i < 5; i++ {
		p, err := mgr.Create(ctx)
		require.NoError(t, err)
		created = append(created, p)
	}

	backups, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, created[4], backups[0].Path)
	assert.Equal(t, created[2], backups[2].Path)
	assert.NoFileExists(t, created[0])
	assert.NoFileExists(t, created[1])
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	mgr.now = fixedClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local))
	ctx := context.Background()

	backupPath, err := mgr.Create(ctx)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO diary_entries VALUES ('2025-01-12', 4)`)
	require.NoError(t, err)
	db.Close()
	require.Equal(t, 3, countEntries(t, dbPath))

	safety, err := mgr.Restore(ctx, backupPath)
	require.NoError(t, err)
	assert.Equal(t, 2, countEntries(t, dbPath))

	// the pre-restore snapshot holds the replaced state
	require.NotEmpty(t, safety)
	assert.Equal(t, 3, countEntries(t, safety))
	assert.NoFileExists(t, dbPath+".restore.tmp")
}

func TestRestore_Invalid(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	ctx := context.Background()

	_, err := mgr.Restore(ctx, filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	require.NoError(t, os.WriteFile(bogus, []byte("this is not a database file at all, not even close"), 0o600))
	_, err = mgr.Restore(ctx, bogus)
	assert.Error(t, err)

	// the live file is untouched
	assert.Equal(t, 2, countEntries(t, dbPath))
}

func TestBeforeMigrate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	ctx := context.Background()

	require.NoError(t, mgr.BeforeMigrate(ctx, dbPath))
	backups, err := mgr.List()
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	err = mgr.BeforeMigrate(ctx, dbPath+".other")
	assert.Error(t, err)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"easydiary-20250110-0930.db", true},
		{"easydiary-20250110-093015.db", true},
		{"easydiary-20250110-093015-7.db", true},
		{"easydiary-20250110-0930-x.db", false},
		{"journal-20250110-0930.db", false},
		{"easydiary-20250110-0930.sqlite", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := parseName(tt.name)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, 2025, ts.Year())
			}
		})
	}
}
