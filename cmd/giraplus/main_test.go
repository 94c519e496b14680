package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/giraplus/giraplus-go/cli"
	"github.com/giraplus/giraplus-go/envutil"
	"github.com/giraplus/giraplus-go/knownerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu     sync.Mutex
	paths  []string
	bodies []map[string]any
	status int
	body   string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)

	var body map[string]any
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	b.bodies = append(b.bodies, body)
	status, payload := b.status, b.body
	b.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}

	if payload == "" {
		payload = `{"success":true}`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func (b *backend) seen() ([]string, []map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.paths...), append([]map[string]any(nil), b.bodies...)
}

type scripted struct {
	rating  int
	code    string
	confirm bool
	err     error
	asked   []string
}

func (s *scripted) Rating(label string) (int, error) {
	s.asked = append(s.asked, label)

	return s.rating, s.err
}

func (s *scripted) String(label string) (string, error) {
	s.asked = append(s.asked, label)

	return s.code, s.err
}

func (s *scripted) Confirm(label string) (bool, error) {
	s.asked = append(s.asked, label)

	return s.confirm, s.err
}

func setup(t *testing.T, b *backend, env map[string]string) (context.Context, *app) {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	values := map[string]string{
		"GIRA_API_URL":      srv.URL,
		"GIRA_DEVICE_ID":    "device-1",
		"GIRA_ENV":          "prod",
		"GIRA_NO_BANNER":    "false",
		"COLUMNS":           "40",
		"LC_ALL":            "pt_PT.UTF-8",
		"GIRA_WORKER_COUNT": "2",
	}
	for k, v := range env {
		values[k] = v
	}

	return envutil.WithEnvOverrides(t.Context(), values), &app{prompter: &scripted{rating: 4, confirm: true}}
}

// execute runs the root command with args and returns what it printed.
func execute(ctx context.Context, a *app, args ...string) (string, error) {
	out := &bytes.Buffer{}

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(io.Discard)

	err := root.ExecuteContext(ctx)

	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	root := newRootCommand(newApp())
	assert.Equal(t, appName, root.Use)
	assert.True(t, root.SilenceUsage)

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{
		"message", "usage", "trip", "error", "rate", "settings", "known-errors",
	}, names)
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()

	ctx, a := setup(t, &backend{}, nil)

	out, err := execute(ctx, a)
	require.NoError(t, err)
	assert.Contains(t, out, "known-errors")

	out, err = execute(ctx, a, "rate", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--rating")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, nil)

	_, err := execute(ctx, a, "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "bogus"`)

	_, err = execute(ctx, a, "trip", "--nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")

	paths, _ := b.seen()
	assert.Empty(t, paths)
}

func TestMessageCommand(t *testing.T) {
	t.Parallel()

	b := &backend{body: `{"message":"Boas pedaladas"}`}
	ctx, a := setup(t, b, nil)

	out, err := execute(ctx, a, "message")
	require.NoError(t, err)
	assert.Contains(t, out, "Boas pedaladas")

	paths, _ := b.seen()
	assert.Equal(t, []string{"/message"}, paths)
}

func TestMessageCommand_Empty(t *testing.T) {
	t.Parallel()

	ctx, a := setup(t, &backend{body: `{"message":""}`}, nil)

	out, err := execute(ctx, a, "message")
	require.NoError(t, err)
	assert.Equal(t, "No message today.\n", out)
}

func TestMessageCommand_BadBaseURL(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverride(t.Context(), "GIRA_API_URL", "not a url")

	out, err := execute(ctx, &app{}, "message")
	require.ErrorIs(t, err, envutil.ErrNotAbsoluteURL)
	assert.Empty(t, out)
}

func TestStatisticsCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		path string
		want map[string]any
	}{
		{
			name: "usage",
			args: []string{"usage"},
			path: "/statistics/usage",
		},
		{
			name: "trip",
			args: []string{"trip", "--bike", "E0123", "--station", "S42"},
			path: "/statistics/trips",
			want: map[string]any{"bikeSerial": "E0123", "stationSerial": "S42"},
		},
		{
			name: "trip shorthand",
			args: []string{"trip", "-b", "E0123"},
			path: "/statistics/trips",
			want: map[string]any{"bikeSerial": "E0123", "stationSerial": nil},
		},
		{
			name: "error",
			args: []string{"error", "--code", "UNLOCK_FAILED", "--message", "dock did not open"},
			path: "/statistics/errors",
			want: map[string]any{"errorCode": "UNLOCK_FAILED", "errorMessage": "dock did not open"},
		},
		{
			name: "rate with flag",
			args: []string{"rate", "--bike", "E0123", "--rating", "5"},
			path: "/statistics/ratings",
			want: map[string]any{"bikeSerial": "E0123", "rating": float64(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &backend{}
			ctx, a := setup(t, b, nil)

			out, err := execute(ctx, a, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, "sent 1, skipped 0, failed 0\n", out)

			paths, bodies := b.seen()
			require.Equal(t, []string{tt.path}, paths)

			for k, v := range tt.want {
				assert.Equal(t, v, bodies[0][k], k)
			}
		})
	}
}

func TestRateCommand_Prompts(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, nil)

	prompts := &scripted{rating: 3, confirm: true}
	a.prompter = prompts

	_, err := execute(ctx, a, "rate", "--bike", "E0123")
	require.NoError(t, err)
	assert.Equal(t, []string{"How was bike E0123?", "Send ★★★☆☆"}, prompts.asked)

	_, bodies := b.seen()
	require.Len(t, bodies, 1)
	assert.InDelta(t, 3, bodies[0]["rating"], 0)
}

func TestRateCommand_Declined(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, nil)
	a.prompter = &scripted{rating: 2, confirm: false}

	out, err := execute(ctx, a, "rate", "--bike", "E0123")
	require.NoError(t, err)
	assert.Equal(t, "Rating not sent.\n", out)

	paths, _ := b.seen()
	assert.Empty(t, paths)
}

func TestRateCommand_Errors(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, nil)

	_, err := execute(ctx, a, "rate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bike" not set`)

	_, err = execute(ctx, a, "rate", "--bike", "E1", "--rating", "9")
	require.ErrorIs(t, err, cli.ErrInvalidRate)

	cancelled := errors.New("prompt closed") //nolint:err113
	a.prompter = &scripted{err: cancelled}
	_, err = execute(ctx, a, "rate", "--bike", "E1")
	require.ErrorIs(t, err, cancelled)

	paths, _ := b.seen()
	assert.Empty(t, paths)
}

func TestErrorCommand_PromptsForCode(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, nil)

	prompts := &scripted{code: "DOCK_JAMMED"}
	a.prompter = prompts

	_, err := execute(ctx, a, "error")
	require.NoError(t, err)
	assert.Equal(t, []string{"Error code"}, prompts.asked)

	_, bodies := b.seen()
	require.Len(t, bodies, 1)
	assert.Equal(t, "DOCK_JAMMED", bodies[0]["errorCode"])

	cancelled := errors.New("prompt closed") //nolint:err113
	a.prompter = &scripted{err: cancelled}
	_, err = execute(ctx, a, "error")
	require.ErrorIs(t, err, cancelled)

	paths, _ := b.seen()
	assert.Len(t, paths, 1)
}

func TestUsageCommand_ReportingDisabled(t *testing.T) {
	t.Parallel()

	b := &backend{}
	ctx, a := setup(t, b, map[string]string{"GIRA_ENV": "dev"})

	out, err := execute(ctx, a, "usage")
	require.NoError(t, err)
	assert.Equal(t, "sent 0, skipped 1, failed 0\n", out)

	paths, _ := b.seen()
	assert.Empty(t, paths)
}

func TestTripCommand_AnalyticsOff(t *testing.T) {
	t.Parallel()

	ctx, a := setup(t, &backend{}, map[string]string{"GIRA_SETTINGS_ANALYTICS": "false"})

	out, err := execute(ctx, a, "trip", "--bike", "E1")
	require.NoError(t, err)
	assert.Equal(t, "sent 0, skipped 1, failed 0\n", out)
}

func TestUsageCommand_ReportFails(t *testing.T) {
	t.Parallel()

	b := &backend{status: http.StatusBadRequest, body: `{"errors":[{"message":"ACCOUNT_BLOCKED"}]}`}
	ctx, a := setup(t, b, nil)

	out, err := execute(ctx, a, "usage")
	require.Error(t, err)
	assert.Equal(t, "sent 0, skipped 0, failed 1\n", out)

	paths, _ := b.seen()
	assert.Len(t, paths, 1)
}

func TestSettingsCommand(t *testing.T) {
	t.Parallel()

	ctx, a := setup(t, &backend{}, map[string]string{
		"GIRA_SETTINGS_THEME":          "dark",
		"GIRA_SETTINGS_REPORT_RATINGS": "false",
	})

	out, err := execute(ctx, a, "settings")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, "dark", got["theme"])
	assert.Equal(t, false, got["reportRatings"])
	assert.Equal(t, true, got["analytics"])
	assert.Equal(t, "system", got["locale"])
	assert.Equal(t, "pt", got["resolvedLocale"])
}

func TestKnownErrorsCommand(t *testing.T) {
	t.Parallel()

	ctx, a := setup(t, &backend{}, nil)

	out, err := execute(ctx, a, "known-errors")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, out, "ACCOUNT_BLOCKED")
	assert.Contains(t, out, "RATE_LIMITED")
	assert.Equal(t, fmt.Sprintf("%d known errors", knownerrors.Default().Len()), lines[len(lines)-1])
}
