// Package version holds build information for the dokarkiv CLI.
package version

// Version is set at build time with
// -ldflags "-X github.com/navikt/helsearbeidsgiver-dokarkiv/internal/version.Version=...".
var Version = "0.1.0-dev"

// GitCommit is the commit the binary was built from, if known.
var GitCommit = ""

// HumanVersion returns the version together with the commit when available.
func HumanVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
