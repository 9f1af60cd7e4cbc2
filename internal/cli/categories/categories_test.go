package categories

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/config"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/models"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "easydiary.db")},
		Workers:  config.WorkersConfig{Size: 2},
		Settings: config.SettingsConfig{Path: filepath.Join(dir, "settings.yaml")},
		Backup:   config.BackupConfig{MaxBackups: 3},
	}
	ctx := cli.NewContext(context.Background(), cfg)
	out := &bytes.Buffer{}
	ctx.Out = out
	require.NoError(t, ctx.Reopen(true, nil))
	t.Cleanup(func() {
		if err := ctx.Close(context.Background()); err != nil {
			t.Errorf("failed to close context: %v", err)
		}
	})
	return ctx, out
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int { return &i }

func listCategories(t *testing.T, ctx *cli.Context) []models.LogCategory {
	t.Helper()
	categories, err := load(ctx)
	require.NoError(t, err)
	return categories
}

func TestListCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&ListCmd{}).Run(ctx))
	for _, name := range []string{"Life", "Study", "Misc"} {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	require.NoError(t, (&ListCmd{JSON: true}).Run(ctx))
	var got []models.LogCategory
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 3)
	assert.True(t, got[1].HasDuration)
}

func TestAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&AddCmd{Name: "  Exercise ", Duration: true}).Run(ctx))
	assert.Contains(t, out.String(), "Added category Exercise")

	categories := listCategories(t, ctx)
	require.Len(t, categories, 4)
	added := categories[3]
	assert.Equal(t, "Exercise", added.Name)
	assert.True(t, added.HasText)
	assert.True(t, added.HasDuration)
	assert.False(t, added.HasMedia)

	err := (&AddCmd{Name: "   "}).Run(ctx)
	assert.ErrorIs(t, err, diary.ErrEmptyName)
}

func TestRenameCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&RenameCmd{Category: "misc", Name: "Other"}).Run(ctx))
	assert.Equal(t, "Other", listCategories(t, ctx)[2].Name)

	require.NoError(t, (&RenameCmd{Category: "1", Name: "Daily life"}).Run(ctx))
	assert.Equal(t, "Daily life", listCategories(t, ctx)[0].Name)

	assert.ErrorIs(t, (&RenameCmd{Category: "nope", Name: "x"}).Run(ctx), diary.ErrUnknownCategory)
	assert.ErrorIs(t, (&RenameCmd{Category: "life", Name: ""}).Run(ctx), diary.ErrUnknownCategory)
	assert.ErrorIs(t, (&RenameCmd{Category: "other", Name: " "}).Run(ctx), diary.ErrEmptyName)
}

func TestSetCmd_Flags(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&SetCmd{Category: "life", Media: boolPtr(true), Text: boolPtr(false)}).Run(ctx))
	life := listCategories(t, ctx)[0]
	assert.True(t, life.HasMedia)
	assert.False(t, life.HasText)
	assert.False(t, life.HasDuration)
}

func TestSetCmd_Order(t *testing.T) {
	ctx, _ := setupTestContext(t)

	require.NoError(t, (&SetCmd{Category: "misc", Order: intPtr(0)}).Run(ctx))
	categories := listCategories(t, ctx)
	names := []string{categories[0].Name, categories[1].Name, categories[2].Name}
	assert.Equal(t, []string{"Misc", "Life", "Study"}, names)
	for i, c := range categories {
		assert.Equal(t, i, c.Order)
	}
}

func TestSetCmd_NoChanges(t *testing.T) {
	ctx, out := setupTestContext(t)
	require.NoError(t, (&SetCmd{Category: "life"}).Run(ctx))
	assert.Contains(t, out.String(), "No changes specified")
}

func TestReorder(t *testing.T) {
	cats := []models.LogCategory{{ID: 1}, {ID: 2}, {ID: 3}}

	got := reorder(cats, 1, 99)
	assert.Equal(t, []int64{2, 3, 1}, ids(got))
	got = reorder(cats, 3, -4)
	assert.Equal(t, []int64{3, 1, 2}, ids(got))
	got = reorder(cats, 2, 1)
	assert.Equal(t, []int64{1, 2, 3}, ids(got))
	assert.Equal(t, 2, got[2].Order)
}

func ids(cats []models.LogCategory) []int64 {
	out := make([]int64, len(cats))
	for i, c := range cats {
		out[i] = c.ID
	}
	return out
}
