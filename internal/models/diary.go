package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/easydiary/internal/constants"
)

var (
	ErrInvalidMood = errors.New("mood score out of range")
	ErrInvalidDate = errors.New("invalid diary date")
)

// Mood is the 0-4 mood level of a day (five discrete levels)
type Mood int

// Valid reports whether the mood is within the normalized range
func (m Mood) Valid() bool {
	return m >= constants.MinMood && m <= constants.MaxMood
}

func (m Mood) String() string {
	switch m {
	case 0:
		return "awful"
	case 1:
		return "bad"
	case 2:
		return "okay"
	case 3:
		return "good"
	case 4:
		return "great"
	default:
		return fmt.Sprintf("mood(%d)", int(m))
	}
}

// DayEntry is the top-level record for one calendar date
type DayEntry struct {
	Date         string  `json:"date"` // YYYY-MM-DD format
	MoodScore    Mood    `json:"mood_score"`
	TomorrowPlan *string `json:"tomorrow_plan,omitempty"`
}

// PlanLines splits the stored tomorrow plan back into its lines
func (e DayEntry) PlanLines() []string {
	if e.TomorrowPlan == nil || *e.TomorrowPlan == "" {
		return nil
	}
	return strings.Split(*e.TomorrowPlan, constants.PlanSeparator)
}

// LogCategory is a user-configurable classification of log content.
// The capability flags gate which LogItem fields may be populated.
type LogCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Order       int    `json:"order"`
	HasText     bool   `json:"has_text"`
	HasDuration bool   `json:"has_duration"`
	HasMedia    bool   `json:"has_media"`
}

// LogItem is one category's record on one day
type LogItem struct {
	ID        int64    `json:"id"`
	DiaryDate string   `json:"diary_date"`
	LogTypeID int64    `json:"log_type_id"`
	Duration  *float64 `json:"duration,omitempty"` // hours
	MediaPath *string  `json:"media_path,omitempty"`
}

// TextEntry is one ordered line of free text within a LogItem
type TextEntry struct {
	ID        int64  `json:"id"`
	LogItemID int64  `json:"log_item_id"`
	Content   string `json:"content"`
	Order     int    `json:"order"`
}

// LogItemWithTexts is a LogItem together with its ordered TextEntries
type LogItemWithTexts struct {
	LogItem LogItem     `json:"log_item"`
	Texts   []TextEntry `json:"texts"`
}

// Contents returns the text of every entry in order
func (l LogItemWithTexts) Contents() []string {
	out := make([]string, 0, len(l.Texts))
	for _, t := range l.Texts {
		out = append(out, t.Content)
	}
	return out
}

// DayEntryWithDetails composes a DayEntry with all of its LogItems
type DayEntryWithDetails struct {
	Entry    DayEntry           `json:"entry"`
	LogItems []LogItemWithTexts `json:"log_items"`
}

// ItemFor returns the first LogItem of the given category, if any
func (d DayEntryWithDetails) ItemFor(categoryID int64) (LogItemWithTexts, bool) {
	for _, item := range d.LogItems {
		if item.LogItem.LogTypeID == categoryID {
			return item, true
		}
	}
	return LogItemWithTexts{}, false
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date
func ValidateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty date", ErrInvalidDate)
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// ValidateMood checks that m is within 0-4
func ValidateMood(m Mood) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d (expected %d-%d)", ErrInvalidMood, int(m), constants.MinMood, constants.MaxMood)
	}
	return nil
}

// NonBlank drops blank lines, keeping the order of the rest
func NonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
