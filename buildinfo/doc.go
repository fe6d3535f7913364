// Package buildinfo provides build version information embedding for
// difflow binaries.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/difflow/buildinfo.Version=1.0.0"
package buildinfo
