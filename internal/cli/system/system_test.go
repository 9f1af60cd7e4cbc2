package system

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/config"
	"github.com/julianstephens/easydiary/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "easydiary.db")},
		Workers:  config.WorkersConfig{Size: 2},
		Settings: config.SettingsConfig{Path: filepath.Join(dir, "settings.yaml")},
		Backup:   config.BackupConfig{BeforeMigration: true, MaxBackups: 3},
	}

	ctx := cli.NewContext(context.Background(), cfg)
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.Interactive = false
	t.Cleanup(func() {
		if err := ctx.Close(context.Background()); err != nil {
			t.Errorf("failed to close context: %v", err)
		}
	})
	return ctx, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&InitCmd{}).Run(ctx))
	assert.FileExists(t, ctx.Config.Database.Path)
	assert.Contains(t, out.String(), "Initialized easydiary storage")
	assert.Contains(t, out.String(), "3 categories")
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&InitCmd{}).Run(ctx))
	require.NoError(t, (&InitCmd{}).Run(ctx), "second init should be idempotent")
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&InitCmd{}).Run(ctx))

	store, err := ctx.Store()
	require.NoError(t, err)
	_, err = store.GetDB().Exec(`INSERT INTO diary_entries (date, moodScore) VALUES ('2025-01-10', 3)`)
	require.NoError(t, err)

	require.NoError(t, (&InitCmd{Force: true}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted existing database")

	store, err = ctx.Store()
	require.NoError(t, err)
	_, err = store.GetDayEntry(context.Background(), "2025-01-10")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMigrateCmd_UpgradesLegacyFile(t *testing.T) {
	ctx, out := setupTestContext(t)

	raw, err := sql.Open("sqlite", ctx.Config.Database.Path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE diary_entries (date TEXT PRIMARY KEY, lifeLog TEXT, studyLog TEXT, miscLog TEXT, moodScore INTEGER NOT NULL, workDuration REAL NOT NULL)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO diary_entries VALUES ('2024-05-01', 'walked', NULL, NULL, 8, 0.0)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Applying migration 2")
	assert.Contains(t, out.String(), "Schema version: 2")

	// the pre-migration hook left a backup
	backups, err := ctx.Backups.List()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestMigrateCmd_NotInitialized(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&MigrateCmd{}).Run(ctx)
	assert.ErrorIs(t, err, storage.ErrNotInitialized)
}

func TestDoctorCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&InitCmd{}).Run(ctx))
	_, err := ctx.Backups.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Integrity: OK")
	assert.Contains(t, out.String(), "Backups present: OK")
	assert.Contains(t, out.String(), "All checks passed.")
}

func TestDoctorCmd_MissingBackupsIsWarning(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&InitCmd{}).Run(ctx))

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Backups present: WARNING")
}

func TestDoctorCmd_NoDatabase(t *testing.T) {
	ctx, out := setupTestContext(t)

	err := (&DoctorCmd{}).Run(ctx)
	assert.ErrorIs(t, err, ErrChecksFailed)
	assert.Contains(t, out.String(), "Database reachable: FAIL")

	_, statErr := os.Stat(ctx.Config.Database.Path)
	assert.True(t, os.IsNotExist(statErr), "doctor must not create the database")
}
