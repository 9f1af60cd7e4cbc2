package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/easydiary/internal/migration"
	"github.com/julianstephens/easydiary/internal/storage"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"plain error", errors.New("something went wrong"), "Error: something went wrong"},
		{
			"hinted error",
			fmt.Errorf("failed to open store: %w", storage.ErrNotInitialized),
			"Error: failed to open store: storage not initialized\nHint: run 'easydiary init' to create the diary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.err))
		})
	}
}

func TestHint(t *testing.T) {
	assert.Empty(t, Hint(errors.New("other")))
	assert.Contains(t, Hint(fmt.Errorf("open: %w", migration.ErrSchemaTooNew)), "newer easydiary")
	assert.NotEmpty(t, Hint(storage.ErrConstraint))
}

func TestSaveFailed(t *testing.T) {
	assert.NoError(t, SaveFailed(nil))

	cause := errors.New("constraint failed")
	err := SaveFailed(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), SaveIncompleteMessage)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, Report(&buf, nil))
	assert.Empty(t, buf.String())

	assert.Equal(t, 1, Report(&buf, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())
}
