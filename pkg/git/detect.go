// Package git provides utilities for detecting git repository information
// about a project directory.
package git

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const gitTimeout = 5 * time.Second

// Revision returns the short HEAD commit of the repository containing dir,
// with a "-dirty" suffix when tracked files have uncommitted changes. It
// returns "" outside a git repository or when git is not installed.
func Revision(ctx context.Context, dir string) string {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	sha, err := run(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil || sha == "" {
		return ""
	}

	status, err := run(ctx, dir, "status", "--porcelain", "--untracked-files=no")
	if err == nil && status != "" {
		return sha + "-dirty"
	}
	return sha
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
