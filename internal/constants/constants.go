// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// AppName is used for config, session and log directories.
const AppName = "monaca"

// Version is the CLI version. Overridden at build time with
// -ldflags "-X github.com/quocvuong92/monaca-cli/internal/constants.Version=x.y.z".
var Version = "2.0.0"

// ClientType identifies this client to the cloud API and to task modules.
const ClientType = "cli"

// Timeout constants used across the application
const (
	// DefaultAPITimeout is the timeout for a single cloud API request
	DefaultAPITimeout = 60 * time.Second
	// DefaultUploadTimeout is the timeout for a single file upload request
	DefaultUploadTimeout = 120 * time.Second
	// DefaultBuildTimeout bounds how long a remote build stream is followed
	DefaultBuildTimeout = 30 * time.Minute
	// DefaultCommandTimeout is the timeout for external tool execution (cordova)
	DefaultCommandTimeout = 30 * time.Minute
)

// Application defaults
const (
	DefaultEndpoint    = "https://ide.monaca.mobi"
	DefaultPreviewPort = 8000
	DefaultTemplate    = "minimum"
	RegisterURL        = "https://monaca.mobi/en/register/start"
	ProjectInfoDir     = ".monaca"
	ProjectInfoFile    = "project_info.json"
)

// BuildPlatforms are the platforms accepted by remote build
var BuildPlatforms = []string{
	"ios",
	"android",
	"windows",
}
