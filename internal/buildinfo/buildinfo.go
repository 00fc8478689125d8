// Package buildinfo carries version metadata stamped at build time.
package buildinfo

// Set via -ldflags "-X github.com/mdreader/llmstream/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)
