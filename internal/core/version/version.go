// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Service is the name reported by meta endpoints and logs
const Service = "epimetrics-api"

// Info returns the build information. version, commit and date are set at build time:
// -ldflags "-X 'epimetrics/internal/core/version.version=v0.1.0' -X 'epimetrics/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
