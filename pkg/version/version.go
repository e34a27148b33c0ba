// Package version holds the build version, set with -ldflags "-X soartask/pkg/version.Version=...".
package version

// Version is the release of the binaries.
var Version = "v0.3.0"
