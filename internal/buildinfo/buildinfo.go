// Package buildinfo holds version metadata injected at link time:
//
//	go build -ldflags "-X github.com/aalvaropc/docmapr/internal/buildinfo.Version=v0.1.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("docmapr %s (commit=%s, date=%s)", Version, Commit, Date)
}
