package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

var ErrNotInteractive = errors.New("this command needs a terminal")

// Confirm asks a yes/no question. skip answers yes without asking; a
// non-interactive session without skip is an error.
func (c *Context) Confirm(title, affirmative, negative string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	if !c.Interactive {
		return false, fmt.Errorf("%w, pass --yes to continue without confirmation", ErrNotInteractive)
	}

	var confirmed bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative(affirmative).
			Negative(negative).
			Value(&confirmed),
	)).WithTheme(c.Styles().FormTheme()).RunWithContext(c.Context())
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return confirmed, nil
}
