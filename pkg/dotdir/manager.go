// Package dotdir manages the .gwstream/ and ~/.gwstream directories.
//
// The directory holds config.toml and the summary of the most recent
// streamed completion (last_run.json).
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = ".gwstream"

// Manager resolves the .gwstream directory used by the CLI.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target resolves and creates the .gwstream directory, returning its absolute
// path. An override wins, then ./.gwstream if present, then ~/.gwstream.
// A created directory is owner-only since config.toml may hold an API key.
func (m *Manager) Target(override string) (string, error) {
	dir := override
	if dir == "" {
		var err error
		if dir, err = m.discover(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating gwstream directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

func (m *Manager) discover() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, dirName)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no ./%s and no home directory: %w", dirName, err)
	}
	return filepath.Join(home, dirName), nil
}
