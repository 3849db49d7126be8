// Package version holds build metadata injected at link time.
package version

// Version is overridden with -ldflags "-X github.com/ndewijer/portfolio-tracker/internal/version.Version=v1.2.3".
var Version = "dev"
