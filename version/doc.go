// Package version reports build information for the execrun binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/execkit/version.Version=1.0.0" ./cmd/execrun
//
// Anything not set is filled from the module build information.
package version
