package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/tunegate/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts layers golangci-lint on top of goContainer() so the sqlite dev
// headers, CGO, and Go caches are already in place.
func (t *Tunegate) lintOpts() dagger.GolangcilintOpts {
	base := t.goContainer("").
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
	}
}

// CheckLint runs golangci-lint against the tunegate source code without applying fixes.
//
// +check
func (t *Tunegate) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(t.Source, t.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the modified source directory.
func (t *Tunegate) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(t.Source, t.lintOpts()).Lint()
}

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (t *Tunegate) CheckGoModTidy(ctx context.Context) (string, error) {
	out, err := t.goContainer("").
		WithExec([]string{"go", "mod", "tidy", "-diff"}).
		Stdout(ctx)

	var e *dagger.ExecError
	if errors.As(err, &e) {
		return "", fmt.Errorf("go.mod or go.sum are not tidy: run 'go mod tidy' and commit the changes\n\n%s", e.Stdout)
	}
	if err != nil {
		return "", fmt.Errorf("running go mod tidy: %w", err)
	}
	return "go.mod and go.sum are tidy\n" + out, nil
}
