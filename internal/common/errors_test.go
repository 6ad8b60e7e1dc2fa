package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("list categories: %w", NewStorageError("query", cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "disk I/O error")

	assert.NoError(t, NewStorageError("query", nil))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "duplicate", err: fmt.Errorf("create: %w", ErrDuplicate), want: "category already exists"},
		{name: "protected", err: ErrProtectedCategory, want: "system categories cannot be deleted"},
		{name: "in use", err: fmt.Errorf("delete food: %w", ErrInUse), want: "category is used by existing expenses"},
		{name: "not initialized", err: ErrNotInitialized, want: "the database is not ready yet"},
		{name: "validation", err: fmt.Errorf("%w: amount must be positive", ErrValidation), want: "invalid input"},
		{name: "storage", err: NewStorageError("exec", errors.New("locked")), want: "the database reported an error"},
		{name: "user error wins", err: NewUserError("nothing to export", ErrNotFound), want: "nothing to export"},
		{name: "unknown", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger_RejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger(nil, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
