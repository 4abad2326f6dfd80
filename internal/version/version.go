package version

// Version is the application version, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/staticbuilder/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, set the same way as Version.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version with its build metadata.
func String() string {
	return Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
