// Command giraplus talks to the Gira+ back end from a terminal.
//
//	giraplus message
//	giraplus usage
//	giraplus trip [--bike SERIAL] [--station SERIAL]
//	giraplus error [--code CODE] [--message TEXT]
//	giraplus rate --bike SERIAL [--rating 1-5]
//	giraplus settings
//	giraplus known-errors
//
// Configuration comes from the environment: GIRA_API_URL, GIRA_ENV,
// GIRA_DEVICE_ID, GIRA_SETTINGS_*, LOG_* and OTEL_*.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/giraplus/giraplus-go/envutil"
	"github.com/giraplus/giraplus-go/logger"
	"github.com/giraplus/giraplus-go/shutdown"
	"github.com/giraplus/giraplus-go/telemetry"
)

const appName = "giraplus"

func main() {
	ctx := shutdown.SetupHandler(context.Background())
	ctx = logger.WithSubsystem(ctx, appName)

	logger.ConfigureLogging(ctx, appName)

	cfg, err := telemetry.LoadConfigFromEnv(ctx, envutil.String(ctx, "GIRA_ENV").ValueOrElse("prod"))
	if err != nil {
		logger.Get(ctx).Error("Invalid telemetry configuration", "error", err)
		os.Exit(1)
	}

	if err := telemetry.Initialize(ctx, cfg); err != nil {
		logger.Get(ctx).Warn("Tracing disabled", "error", err)
	}

	code := 0

	if err := newRootCommand(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		code = 1
	}

	if err := telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		logger.Get(ctx).Warn("Flushing traces failed", "error", err)
	}

	os.Exit(code)
}
