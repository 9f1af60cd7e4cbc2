package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/easydiary/internal/constants"
	"github.com/julianstephens/easydiary/internal/diary"
	"github.com/julianstephens/easydiary/internal/models"
)

// ParseDate accepts YYYY-MM-DD or one of today, yesterday and tomorrow
func ParseDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now.Format(constants.DateFormat), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(constants.DateFormat), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(constants.DateFormat), nil
	}
	if err := models.ValidateDate(s); err != nil {
		return "", fmt.Errorf("%w, use YYYY-MM-DD or 'today'", err)
	}
	return s, nil
}

// ParseMonth accepts YYYY-MM
func ParseMonth(s string) (string, error) {
	if _, err := time.Parse(constants.MonthFormat, s); err != nil {
		return "", fmt.Errorf("invalid month %q, use YYYY-MM", s)
	}
	return s, nil
}

// Assignment is one CATEGORY=VALUE flag
type Assignment struct {
	Category string
	Value    string
}

// ParseAssignments splits CATEGORY=VALUE pairs, keeping their order
func ParseAssignments(values []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q, use CATEGORY=VALUE", v)
		}
		out = append(out, Assignment{Category: key, Value: value})
	}
	return out, nil
}

// ResolveCategory finds a category by id or case-insensitive name
func ResolveCategory(categories []models.LogCategory, key string) (models.LogCategory, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		for _, c := range categories {
			if c.ID == id {
				return c, nil
			}
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, key) {
			return c, nil
		}
	}
	return models.LogCategory{}, fmt.Errorf("%w: %q", diary.ErrUnknownCategory, key)
}

// ParseHours accepts a decimal number of hours or a Go duration such as 1h30m
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if h, err := strconv.ParseFloat(s, 64); err == nil {
		return h, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q, use hours (1.5) or 1h30m", s)
	}
	return d.Hours(), nil
}

// SplitLines turns multi-line form input into trimmed, non-empty lines
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
