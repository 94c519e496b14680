package build

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	js := `{
		"version": "1.4.0",
		"git_commit": "abc123",
		"git_branch": "main",
		"build_time": "2025-10-05T12:00:00Z",
		"go_version": "go1.25.5",
		"dependencies": {
			"github.com/alitto/pond/v2": "v2.6.0"
		}
	}`

	details, ok := Parse(js)

	assert.True(t, ok)
	assert.Equal(t, "1.4.0", details.Version)
	assert.Equal(t, "abc123", details.GitCommit)
	assert.Equal(t, "main", details.GitBranch)
	assert.Equal(t, "2025-10-05T12:00:00Z", details.BuildTime)
	assert.Equal(t, "go1.25.5", details.GoVersion)
	assert.Equal(t, map[string]string{"github.com/alitto/pond/v2": "v2.6.0"}, details.Dependencies)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	for _, js := range []string{"", "{}", "not valid json"} {
		details, ok := Parse(js)

		assert.False(t, ok, js)
		assert.Nil(t, details, js)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	noInfo := func() (*debug.BuildInfo, bool) { return nil, false }
	devel := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	tagged := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v1.2.0"}}, true
	}

	assert.Equal(t, "2.0.0", resolve("2.0.0", `{"version":"1.0.0"}`, tagged))
	assert.Equal(t, "1.0.0", resolve("", `{"version":"1.0.0"}`, tagged))
	assert.Equal(t, "v1.2.0", resolve("", "", tagged))
	assert.Equal(t, develVersion, resolve("", "", devel))
	assert.Equal(t, develVersion, resolve("", "", noInfo))
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Gira+/1.4.0", UserAgent("1.4.0"))
	assert.Equal(t, "Gira+/"+AppVersion(), UserAgent(AppVersion()))
}
