package main

import (
	"context"
	"fmt"
	"path"

	"dagger/tunegate/internal/dagger"
)

// bucket holds the S3-compatible bucket credentials release artifacts are
// uploaded with.
type bucket struct {
	endpoint        *dagger.Secret
	name            *dagger.Secret
	accessKeyId     *dagger.Secret
	secretAccessKey *dagger.Secret
}

// withChecksums adds a SHA256SUMS file covering every binary in artifacts.
func withChecksums(artifacts *dagger.Directory) *dagger.Directory {
	sums := dag.Container().
		From("alpine:3.21").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts").
		WithExec([]string{"sh", "-c", "find . -type f -name tunegate | sort | xargs sha256sum > SHA256SUMS"}).
		File("/artifacts/SHA256SUMS")

	return artifacts.WithFile("SHA256SUMS", sums)
}

// upload syncs artifacts to each prefix of the bucket.
func (t *Tunegate) upload(ctx context.Context, b bucket, artifacts *dagger.Directory, prefixes ...string) error {
	name, err := b.name.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket name: %w", err)
	}

	endpoint, err := b.endpoint.Plaintext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get endpoint: %w", err)
	}

	awsCli := dag.Container().
		From("amazon/aws-cli:latest").
		WithSecretVariable("AWS_ACCESS_KEY_ID", b.accessKeyId).
		WithSecretVariable("AWS_SECRET_ACCESS_KEY", b.secretAccessKey).
		WithEnvVariable("AWS_DEFAULT_REGION", "auto").
		WithDirectory("/artifacts", artifacts).
		WithWorkdir("/artifacts")

	for _, prefix := range prefixes {
		destination := "s3://" + path.Join(name, prefix)
		_, err := awsCli.
			WithExec([]string{"aws", "s3", "sync", ".", destination, "--endpoint-url", endpoint}).
			Sync(ctx)
		if err != nil {
			return fmt.Errorf("failed to upload artifacts to %s: %w", prefix, err)
		}
	}

	return nil
}

// ReleaseLatest builds checksummed release binaries and uploads them under
// the version and under "latest"
func (t *Tunegate) ReleaseLatest(
	ctx context.Context,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyId *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	artifacts := withChecksums(t.BuildRelease(ctx, version, commit))
	b := bucket{endpoint: endpoint, name: bucketName, accessKeyId: accessKeyId, secretAccessKey: secretAccessKey}

	if err := t.upload(ctx, b, artifacts, version, "latest"); err != nil {
		return artifacts, fmt.Errorf("could not upload release artifacts: %w", err)
	}
	return artifacts, nil
}

// Nightly builds and uploads nightly artifacts
func (t *Tunegate) Nightly(
	ctx context.Context,

	// Git commit SHA
	commit string,

	// Bucket endpoint URL
	endpoint *dagger.Secret,

	// Bucket name
	bucketName *dagger.Secret,

	// Bucket access key ID
	accessKeyId *dagger.Secret,

	// Bucket secret access key
	secretAccessKey *dagger.Secret,
) (*dagger.Directory, error) {
	artifacts := withChecksums(t.BuildRelease(ctx, "nightly", commit))
	b := bucket{endpoint: endpoint, name: bucketName, accessKeyId: accessKeyId, secretAccessKey: secretAccessKey}

	return artifacts, t.upload(ctx, b, artifacts, "nightly")
}
