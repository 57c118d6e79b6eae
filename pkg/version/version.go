// Package version holds the build version, overridden at link time with
// -ldflags "-X github.com/maxvaer/rexprobe/pkg/version.Version=...".
package version

// Version is the current rexprobe version.
var Version = "dev"
