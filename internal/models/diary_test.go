package models

import (
	"errors"
	"testing"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid", "2025-01-10", false},
		{"leap day", "2024-02-29", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"not a date", "yesterday", true},
		{"impossible day", "2025-02-30", true},
		{"wrong layout", "10/01/2025", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.date)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDate) {
				t.Errorf("expected ErrInvalidDate, got %v", err)
			}
		})
	}
}

func TestValidateMood(t *testing.T) {
	for m := Mood(0); m <= 4; m++ {
		if err := ValidateMood(m); err != nil {
			t.Errorf("ValidateMood(%d) unexpected error: %v", m, err)
		}
	}
	for _, m := range []Mood{-1, 5, 10} {
		if err := ValidateMood(m); !errors.Is(err, ErrInvalidMood) {
			t.Errorf("ValidateMood(%d) = %v, want ErrInvalidMood", m, err)
		}
	}
}

func TestPlanLines(t *testing.T) {
	plan := "buy milk\ncall mom"
	e := DayEntry{Date: "2025-01-10", TomorrowPlan: &plan}
	lines := e.PlanLines()
	if len(lines) != 2 || lines[0] != "buy milk" || lines[1] != "call mom" {
		t.Errorf("PlanLines() = %v", lines)
	}

	empty := DayEntry{Date: "2025-01-10"}
	if lines := empty.PlanLines(); lines != nil {
		t.Errorf("PlanLines() on nil plan = %v, want nil", lines)
	}
}

func TestNonBlank(t *testing.T) {
	got := NonBlank([]string{"", "a", "  ", "b", "\t"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("NonBlank() = %v, want [a b]", got)
	}
}
