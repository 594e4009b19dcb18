// Package constant defines immutable application-level identifiers.
package constant

const (
	// App is the canonical application identifier used for paths, env prefix and branding.
	App = "vlcremote"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every HTTP request to a remote player.
	UserAgent = App + "/" + Version
)

// Build metadata, overridden with -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
