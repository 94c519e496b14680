// Package build describes the running binary. Version and Info are set at
// link time:
//
//	go build -ldflags "-X github.com/giraplus/giraplus-go/build.Version=1.4.0 \
//	    -X 'github.com/giraplus/giraplus-go/build.Info=$(cat build.json)'"
package build

import (
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"sync"
)

const develVersion = "dev"

var (
	// Version is the app version reported to the back end.
	Version string //nolint:gochecknoglobals
	// Info is a JSON blob with the details of the build, see Parse.
	Info string //nolint:gochecknoglobals
)

// Details is the metadata carried by Info.
type Details struct {
	Version      string            `json:"version"`
	GitCommit    string            `json:"git_commit"` //nolint:tagliatelle
	GitBranch    string            `json:"git_branch"` //nolint:tagliatelle
	BuildTime    string            `json:"build_time"` //nolint:tagliatelle
	GoVersion    string            `json:"go_version"` //nolint:tagliatelle
	Dependencies map[string]string `json:"dependencies"`
}

// Parse decodes a build info blob. It returns false for an empty, "{}" or
// malformed input.
func Parse(js string) (*Details, bool) {
	if len(js) == 0 || js == "{}" {
		return nil, false
	}

	var details Details

	if err := json.Unmarshal([]byte(js), &details); err != nil {
		slog.Warn("Failed to parse build info from JSON",
			"data", js,
			"error", err)

		return nil, false
	}

	return &details, true
}

var resolved = sync.OnceValue(func() string { //nolint:gochecknoglobals
	return resolve(Version, Info, debug.ReadBuildInfo)
})

func resolve(version, info string, read func() (*debug.BuildInfo, bool)) string {
	if version != "" {
		return version
	}

	if details, ok := Parse(info); ok && details.Version != "" {
		return details.Version
	}

	if bi, ok := read(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}

	return develVersion
}

// AppVersion returns Version, or the version recorded in Info or in the
// module build info, or "dev".
func AppVersion() string {
	return resolved()
}

// Product names the app in User-Agent headers.
const Product = "Gira+"

// UserAgent is the User-Agent header the app sends to the Gira+ back end,
// usually UserAgent(AppVersion()).
func UserAgent(version string) string {
	return Product + "/" + version
}
