// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"

	// FrameworkVersion is the version of the training framework recorded into
	// every snapshot. Overridden at build time alongside Version.
	FrameworkVersion = "3.6.0"
)
