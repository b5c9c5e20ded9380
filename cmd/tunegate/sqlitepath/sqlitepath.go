// Package sqlitepath resolves the SQLite snapshot database a command should
// open.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/dotdir"
)

// EnvSQLite overrides the database path for every command.
const EnvSQLite = "TUNEGATE_SQLITE"

// ResolveSQLitePath returns the database path in order of precedence:
//  1. override (flag or storage.sqlite_path)
//  2. $TUNEGATE_SQLITE
//  3. an existing database in a well-known location
//  4. tunegate.sqlite inside dotDir, or inside ~/.tunegate/ (created)
func ResolveSQLitePath(override, dotDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv(EnvSQLite)); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if dotDir == "" {
		dir, err := dotdir.NewManager().Ensure("")
		if err != nil {
			return "", err
		}
		dotDir = dir
	}
	return filepath.Join(dotDir, config.DefaultSQLiteFile), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		config.DefaultSQLiteFile,
		filepath.Join(".tunegate", config.DefaultSQLiteFile),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".tunegate", config.DefaultSQLiteFile))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "tunegate", config.DefaultSQLiteFile),
		}, candidates...)
	}

	return candidates
}
