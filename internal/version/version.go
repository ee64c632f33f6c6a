// Package version exposes the build-time version string stamped into
// accepted output rows (spec §4.5).
package version

// Version is overridden at build time via -ldflags -X.
var Version = "dev"
