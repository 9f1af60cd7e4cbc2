package categories

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/models"
)

type CategoryCmd struct {
	List   ListCmd   `cmd:"" help:"List categories in display order." default:"1"`
	Add    AddCmd    `cmd:"" help:"Add a category after the existing ones."`
	Rename RenameCmd `cmd:"" help:"Rename a category."`
	Set    SetCmd    `cmd:"" help:"Change what a category records or where it is shown."`
}

type ListCmd struct {
	JSON bool `help:"Print the categories as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	categories, err := load(ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.PrintJSON(ctx, categories)
	}

	styles := ctx.Styles()
	yes := func(b bool) string {
		if b {
			return styles.Success.Render("yes")
		}
		return styles.Muted.Render("no")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers("ID", "ORDER", "NAME", "TEXT", "DURATION", "MEDIA")
	for _, cat := range categories {
		t.Row(fmt.Sprint(cat.ID), fmt.Sprint(cat.Order), cat.Name, yes(cat.HasText), yes(cat.HasDuration), yes(cat.HasMedia))
	}
	ctx.Println(t.String())
	return nil
}

type AddCmd struct {
	Name     string `arg:"" help:"Category name."`
	NoText   bool   `help:"Do not record free text."`
	Duration bool   `help:"Record a duration in hours."`
	Media    bool   `help:"Record a media path."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	added, err := repo.AddCategory(ctx.Context(), models.LogCategory{
		Name:        c.Name,
		HasText:     !c.NoText,
		HasDuration: c.Duration,
		HasMedia:    c.Media,
	}).Await(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	ctx.Printf("%s Added category %s (id %d)\n", ctx.Styles().Success.Render("✓"), added.Name, added.ID)
	return nil
}

type RenameCmd struct {
	Category string `arg:"" help:"Category name or id."`
	Name     string `arg:"" help:"New name."`
}

func (c *RenameCmd) Run(ctx *cli.Context) error {
	return update(ctx, c.Category, func(cat *models.LogCategory) {
		cat.Name = c.Name
	})
}

// SetCmd changes flags and order. Values a category no longer records are
// dropped the next time each day is saved.
type SetCmd struct {
	Category string `arg:"" help:"Category name or id."`
	Text     *bool  `help:"Record free text."`
	Duration *bool  `help:"Record a duration."`
	Media    *bool  `help:"Record a media path."`
	Order    *int   `help:"Display position; other categories are shifted."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	if c.Text == nil && c.Duration == nil && c.Media == nil && c.Order == nil {
		ctx.Println("No changes specified. Use --text, --duration, --media or --order.")
		return nil
	}

	categories, err := load(ctx)
	if err != nil {
		return err
	}
	target, err := cli.ResolveCategory(categories, c.Category)
	if err != nil {
		return err
	}

	var changed []models.LogCategory
	if c.Order != nil {
		changed = reorder(categories, target.ID, *c.Order)
	} else {
		changed = categories
	}
	for i := range changed {
		if changed[i].ID != target.ID {
			continue
		}
		if c.Text != nil {
			changed[i].HasText = *c.Text
		}
		if c.Duration != nil {
			changed[i].HasDuration = *c.Duration
		}
		if c.Media != nil {
			changed[i].HasMedia = *c.Media
		}
	}

	return save(ctx, changed, target.Name)
}

// reorder moves id to position pos and renumbers every category from 0
func reorder(categories []models.LogCategory, id int64, pos int) []models.LogCategory {
	var moved models.LogCategory
	rest := make([]models.LogCategory, 0, len(categories))
	for _, cat := range categories {
		if cat.ID == id {
			moved = cat
			continue
		}
		rest = append(rest, cat)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(rest) {
		pos = len(rest)
	}

	out := make([]models.LogCategory, 0, len(categories))
	out = append(out, rest[:pos]...)
	out = append(out, moved)
	out = append(out, rest[pos:]...)
	for i := range out {
		out[i].Order = i
	}
	return out
}

func load(ctx *cli.Context) ([]models.LogCategory, error) {
	repo, err := ctx.Repository()
	if err != nil {
		return nil, err
	}
	return repo.Categories(ctx.Context()).Await(ctx.Context())
}

func update(ctx *cli.Context, key string, fn func(*models.LogCategory)) error {
	categories, err := load(ctx)
	if err != nil {
		return err
	}
	cat, err := cli.ResolveCategory(categories, key)
	if err != nil {
		return err
	}
	name := cat.Name
	fn(&cat)
	return save(ctx, []models.LogCategory{cat}, name)
}

func save(ctx *cli.Context, categories []models.LogCategory, name string) error {
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}
	if _, err := repo.UpdateCategories(ctx.Context(), categories).Await(ctx.Context()); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	ctx.Printf("%s Updated category %s\n", ctx.Styles().Success.Render("✓"), name)
	return nil
}
