package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/the-files-must-flow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_DecideDuplicate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    service.DuplicateDecision
		expectError bool
	}{
		{name: "copy", input: "c\n", expected: service.DecisionCopy},
		{name: "skip", input: "s\n", expected: service.DecisionSkip},
		{name: "copy all", input: "a\n", expected: service.DecisionCopyAll},
		{name: "skip all", input: "n\n", expected: service.DecisionSkipAll},
		{name: "uppercase accepted", input: "S\n", expected: service.DecisionSkip},
		{name: "retries on invalid input", input: "zzz\nc\n", expected: service.DecisionCopy},
		{name: "input terminated", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			decision, err := p.DecideDuplicate(context.Background(), "holiday.jpg")
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decision)
			assert.Contains(t, out.String(), "holiday.jpg")
		})
	}
}

func TestPrompter_DecideFolderMove(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected service.FolderMoveDecision
	}{
		{name: "move intact", input: "m\n", expected: service.MoveIntact},
		{name: "decompose", input: "d\n", expected: service.Decompose},
		{name: "cancel", input: "x\n", expected: service.CancelFolderMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			decision, err := p.DecideFolderMove(context.Background(), "vacation")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decision)
			assert.Contains(t, out.String(), "vacation")
		})
	}
}

func TestPrompter_ConfirmPlan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "yes", input: "y\n", expected: true},
		{name: "yes long", input: "yes\n", expected: true},
		{name: "no", input: "n\n", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			ok, err := p.ConfirmPlan(context.Background(), "3 files will be moved")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.Contains(t, out.String(), "3 files will be moved")
		})
	}
}

func TestPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("c\n"), &out)

	_, err := p.DecideDuplicate(ctx, "holiday.jpg")
	assert.Error(t, err)
}

func TestPresetDelegate(t *testing.T) {
	d := NewPresetDelegate("", "")

	dup, err := d.DecideDuplicate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, service.DecisionSkipAll, dup)

	folder, err := d.DecideFolderMove(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, service.MoveIntact, folder)

	custom := NewPresetDelegate(service.DecisionCopyAll, service.Decompose)
	dup, _ = custom.DecideDuplicate(context.Background(), "x")
	assert.Equal(t, service.DecisionCopyAll, dup)
}
