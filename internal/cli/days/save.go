package days

import (
	"fmt"
	"time"

	"github.com/julianstephens/easydiary/internal/cli"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/models"
)

// SaveCmd writes a day from flags. Unless --replace is given the stored day
// is the starting point and only the named categories change.
type SaveCmd struct {
	Date     string   `arg:"" optional:"" default:"today" help:"Day to save (YYYY-MM-DD, today, yesterday)."`
	Mood     *int     `help:"Mood level 0-4."`
	Plan     []string `help:"Line of tomorrow's plan (repeatable)." sep:"none"`
	Log      []string `help:"Text line as CATEGORY=TEXT (repeatable)." sep:"none"`
	Duration []string `help:"Hours as CATEGORY=HOURS (1.5 or 1h30m)." sep:"none"`
	Media    []string `help:"Media path as CATEGORY=PATH." sep:"none"`
	Clear    []string `help:"Drop everything logged under CATEGORY." sep:"none"`
	Replace  bool     `help:"Start from an empty day instead of the stored one."`
}

func (c *SaveCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(c.Date, time.Now())
	if err != nil {
		return err
	}
	repo, err := ctx.Repository()
	if err != nil {
		return err
	}

	session, err := repo.OpenSession(ctx.Context(), date)
	if err != nil {
		return err
	}
	if err := session.Edit(); err != nil {
		return err
	}

	draft := session.Draft()
	if c.Replace {
		*draft = diary.NewDraft(session.Categories())
	}
	if err := c.apply(draft, session.Categories()); err != nil {
		_ = session.Discard()
		return err
	}

	if err := session.Save(ctx.Context()); err != nil {
		return err
	}

	printDay(ctx, session.Categories(), *session.Details())
	return nil
}

func (c *SaveCmd) apply(draft *diary.Draft, categories []models.LogCategory) error {
	if c.Mood != nil {
		draft.Mood = models.Mood(*c.Mood)
	}
	if len(c.Plan) > 0 {
		draft.Plan = append([]string(nil), c.Plan...)
	}

	for _, key := range c.Clear {
		cat, err := cli.ResolveCategory(categories, key)
		if err != nil {
			return err
		}
		draft.Logs[cat.ID] = diary.CategoryInput{}
	}

	logs, err := cli.ParseAssignments(c.Log)
	if err != nil {
		return err
	}
	// the first --log for a category replaces its stored lines
	replaced := make(map[int64]bool)
	for _, a := range logs {
		cat, err := cli.ResolveCategory(categories, a.Category)
		if err != nil {
			return err
		}
		if !cat.HasText {
			return fmt.Errorf("category %s does not record text", cat.Name)
		}
		in := draft.Logs[cat.ID]
		if !replaced[cat.ID] {
			in.Texts = nil
			replaced[cat.ID] = true
		}
		in.Texts = append(in.Texts, a.Value)
		draft.Logs[cat.ID] = in
	}

	durations, err := cli.ParseAssignments(c.Duration)
	if err != nil {
		return err
	}
	for _, a := range durations {
		cat, err := cli.ResolveCategory(categories, a.Category)
		if err != nil {
			return err
		}
		if !cat.HasDuration {
			return fmt.Errorf("category %s does not record duration", cat.Name)
		}
		hours, err := cli.ParseHours(a.Value)
		if err != nil {
			return err
		}
		in := draft.Logs[cat.ID]
		in.Duration = hours
		draft.Logs[cat.ID] = in
	}

	media, err := cli.ParseAssignments(c.Media)
	if err != nil {
		return err
	}
	for _, a := range media {
		cat, err := cli.ResolveCategory(categories, a.Category)
		if err != nil {
			return err
		}
		if !cat.HasMedia {
			return fmt.Errorf("category %s does not record media", cat.Name)
		}
		in := draft.Logs[cat.ID]
		in.MediaPath = a.Value
		draft.Logs[cat.ID] = in
	}
	return nil
}
