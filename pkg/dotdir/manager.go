// Package dotdir manages the .tunegate/ and ~/.tunegate directories.
//
// The directory holds config.toml, the default SQLite snapshot database and
// the record of the last train or validate run.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the tunegate directory.
	dirName = ".tunegate"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .tunegate/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.tunegate/ dir
//  3. Home ~/.tunegate/ dir
//  4. If none found, an empty string
func (m *Manager) Target(overrideDir string) (string, error) {
	switch {
	case overrideDir != "":
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating tunegate directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil //nolint:nilerr // no home directory means no home .tunegate
	}

	dir := filepath.Join(home, dirName)
	if isDir(dir) {
		return dir, nil
	}

	return "", nil
}

// Ensure returns the resolved .tunegate/ directory, creating ~/.tunegate/
// when Target finds none.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir = filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating tunegate directory %s: %w", dir, err)
	}
	return dir, nil
}

// localDirExists checks whether a .tunegate/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	return isDir(filepath.Join(cwd, dirName))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
