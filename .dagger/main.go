// Tunegate CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/tunegate/internal/dagger"
)

// Tunegate is the main module for the tunegate CI/CD pipeline
type Tunegate struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Tunegate CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Tunegate {
	return &Tunegate{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted. The SQLite
// snapshot driver needs CGO.
func (t *Tunegate) goContainer(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the tunegate unit tests via "go test". Postgres driver tests
// run when TUNEGATE_TEST_POSTGRES_DSN is provided.
func (t *Tunegate) Test(
	ctx context.Context,

	// PostgreSQL DSN for the postgres storage driver tests
	// +optional
	postgresDsn *dagger.Secret,
) (string, error) {
	ctr := t.goContainer("")
	if postgresDsn != nil {
		ctr = ctr.WithSecretVariable("TUNEGATE_TEST_POSTGRES_DSN", postgresDsn)
	}

	return ctr.
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
