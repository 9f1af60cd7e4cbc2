package diary

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/easydiary/internal/constants"
	apperrors "github.com/julianstephens/easydiary/internal/errors"
	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/storage"
)

// State is where a day is in the editing flow. It is not persisted.
type State int

const (
	NoRecord State = iota
	Editing
	Viewing
	Deleted
)

func (s State) String() string {
	switch s {
	case NoRecord:
		return "no record"
	case Editing:
		return "editing"
	case Viewing:
		return "viewing"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned for an action the current state does not allow
var ErrInvalidTransition = errors.New("invalid transition")

// Draft is the editable form of a day
type Draft struct {
	Mood models.Mood
	Plan []string
	Logs map[int64]CategoryInput
}

// NewDraft returns the form shown for a day with no record: middle mood,
// one empty plan line and one empty text line per category
func NewDraft(categories []models.LogCategory) Draft {
	d := Draft{
		Mood: constants.DefaultMood,
		Plan: []string{""},
		Logs: make(map[int64]CategoryInput, len(categories)),
	}
	for _, c := range categories {
		d.Logs[c.ID] = CategoryInput{Texts: []string{""}}
	}
	return d
}

// DraftFrom fills a form from a stored day
func DraftFrom(categories []models.LogCategory, details models.DayEntryWithDetails) Draft {
	d := NewDraft(categories)
	d.Mood = details.Entry.MoodScore
	if lines := details.Entry.PlanLines(); len(lines) > 0 {
		d.Plan = lines
	}

	// several items of one category fold into a single input: texts in item
	// order, durations summed, the first media path kept
	merged := make(map[int64]CategoryInput, len(details.LogItems))
	for _, item := range details.LogItems {
		id := item.LogItem.LogTypeID
		in := merged[id]
		in.Texts = append(in.Texts, item.Contents()...)
		if item.LogItem.Duration != nil {
			in.Duration += *item.LogItem.Duration
		}
		if item.LogItem.MediaPath != nil && in.MediaPath == "" {
			in.MediaPath = *item.LogItem.MediaPath
		}
		merged[id] = in
	}
	for id, in := range merged {
		if len(in.Texts) == 0 {
			in.Texts = []string{""}
		}
		d.Logs[id] = in
	}
	return d
}

// Session drives one day through NoRecord, Editing, Viewing and Deleted.
// It is not safe for concurrent use.
type Session struct {
	repo       *Repository
	date       string
	categories []models.LogCategory

	state   State
	resume  State // where Discard returns to
	draft   Draft
	details *models.DayEntryWithDetails
}

// OpenSession loads the day and starts in Viewing when it is recorded,
// NoRecord otherwise
func (r *Repository) OpenSession(ctx context.Context, date string) (*Session, error) {
	if err := models.ValidateDate(date); err != nil {
		return nil, err
	}

	categories, err := r.Categories(ctx).Await(ctx)
	if err != nil {
		return nil, err
	}

	s := &Session{repo: r, date: date, categories: categories, state: NoRecord}

	details, err := r.Day(ctx, date).Await(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		s.details = &details
		s.state = Viewing
	}
	return s, nil
}

func (s *Session) Date() string { return s.date }

func (s *Session) State() State { return s.state }

func (s *Session) Categories() []models.LogCategory { return s.categories }

// Details returns the persisted day, or nil when nothing is recorded
func (s *Session) Details() *models.DayEntryWithDetails {
	return s.details
}

// Draft returns the form being edited. Only meaningful while Editing.
func (s *Session) Draft() *Draft {
	return &s.draft
}

// Edit opens the form, prefilled from the stored day when there is one
func (s *Session) Edit() error {
	switch s.state {
	case NoRecord, Deleted:
		s.draft = NewDraft(s.categories)
	case Viewing:
		s.draft = DraftFrom(s.categories, *s.details)
	default:
		return fmt.Errorf("%w: cannot edit while %s", ErrInvalidTransition, s.state)
	}
	s.resume = s.state
	if s.resume == Deleted {
		s.resume = NoRecord
	}
	s.state = Editing
	return nil
}

// Save persists the draft and moves to Viewing. On failure the session
// stays in Editing and the stored day is unchanged.
func (s *Session) Save(ctx context.Context) error {
	if s.state != Editing {
		return fmt.Errorf("%w: cannot save while %s", ErrInvalidTransition, s.state)
	}

	saved, err := s.repo.SaveDay(ctx, DaySave{
		Date: s.date,
		Mood: s.draft.Mood,
		Plan: s.draft.Plan,
		Logs: s.draft.Logs,
	}).Await(ctx)
	if err != nil {
		return apperrors.SaveFailed(err)
	}

	s.details = &saved
	s.state = Viewing
	return nil
}

// Discard leaves the form without writing anything
func (s *Session) Discard() error {
	if s.state != Editing {
		return fmt.Errorf("%w: cannot discard while %s", ErrInvalidTransition, s.state)
	}
	s.draft = Draft{}
	s.state = s.resume
	return nil
}

// Delete removes the stored day. The session ends in Deleted and behaves
// like NoRecord afterwards.
func (s *Session) Delete(ctx context.Context) error {
	if s.state != Viewing {
		return fmt.Errorf("%w: cannot delete while %s", ErrInvalidTransition, s.state)
	}

	if _, err := s.repo.DeleteDay(ctx, s.date).Await(ctx); err != nil {
		return err
	}
	s.details = nil
	s.state = Deleted
	return nil
}
