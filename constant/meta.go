// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Reel is the canonical application identifier used for filesystem paths and CLI branding.
	Reel = "reel"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with the release check request.
	UserAgent = "reel/" + Version

	// Repository is the GitHub "owner/name" of the project.
	Repository = "reel-player/reel"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
