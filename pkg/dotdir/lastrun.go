package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lastRunFile = "last_run.json"
)

// LastRun is the persisted summary of the most recent streamed completion.
type LastRun struct {
	RequestID    string    `json:"request_id"`
	CompletionID string    `json:"completion_id,omitempty"`
	Model        string    `json:"model,omitempty"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Chunks       int       `json:"chunks"`
	ToolCalls    []string  `json:"tool_calls,omitempty"`
	Errors       []string  `json:"errors,omitempty"`
	PromptTokens int       `json:"prompt_tokens,omitempty"`
	OutputTokens int       `json:"completion_tokens,omitempty"`
	TotalTokens  int       `json:"total_tokens,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// LoadLastRun loads the last run from a target .gwstream/last_run.json.
// Returns nil, nil if nothing has been recorded yet.
func (m *Manager) LoadLastRun(overrideDir string) (*LastRun, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, lastRunFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last run: %w", err)
	}

	run := &LastRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("parsing last run: %w", err)
	}

	return run, nil
}

// SaveLastRun persists run to a target .gwstream/last_run.json, replacing
// whatever was there.
func (m *Manager) SaveLastRun(run *LastRun, overrideDir string) error {
	if run == nil {
		return errors.New("cannot save nil last run")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last run: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lastRunFile), data, 0o600); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}

	return nil
}

// ClearLastRun removes the last run file. Returns nil if it does not exist.
func (m *Manager) ClearLastRun(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, lastRunFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing last run: %w", err)
	}

	return nil
}
