package config

import "fmt"

// Set at build time with -ldflags "-X github.com/slulibrary/nerdemo/config.Version=..."
var (
	Version    = "dev"
	CommitHash = "n/a"
	BuildTime  = "n/a"
)

var VersionString = fmt.Sprintf("%s-%s (%s)", Version, CommitHash, BuildTime)

// UserAgent identifies nerdemo to the NLP services it calls.
func UserAgent() string {
	return "nerdemo/" + Version
}
