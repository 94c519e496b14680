package main

import (
	"context"
	"fmt"
	"io"

	"github.com/giraplus/giraplus-go/bgworker"
	"github.com/giraplus/giraplus-go/build"
	"github.com/giraplus/giraplus-go/cli"
	"github.com/giraplus/giraplus-go/giramais"
	"github.com/spf13/cobra"
)

type prompter interface {
	Rating(label string) (int, error)
	String(label string) (string, error)
	Confirm(label string) (bool, error)
}

// app carries what the commands share. Tests swap the prompter and client
// options.
type app struct {
	prompter      prompter
	clientOptions []giramais.Option
	workers       int
}

func newApp() *app {
	return &app{prompter: cli.Prompter{}}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Talk to the Gira+ back end from a terminal",
		Long: `Reads the message of the day, reports app statistics and rates bikes
against the Gira+ back end.

Configuration comes from the environment: GIRA_API_URL, GIRA_ENV,
GIRA_DEVICE_ID, GIRA_SETTINGS_*, LOG_* and OTEL_*.`,
		Version:       build.AppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMessageCommand(a),
		newUsageCommand(a),
		newTripCommand(a),
		newErrorCommand(a),
		newRateCommand(a),
		newSettingsCommand(),
		newKnownErrorsCommand(),
	)

	return root
}

func (a *app) client(ctx context.Context) (*giramais.Client, error) {
	return giramais.NewClient(ctx, a.clientOptions...)
}

// report submits statistics on a worker pool, waits for them and prints
// the tally to out.
func (a *app) report(ctx context.Context, out io.Writer, submit func(r *giramais.Reporter)) error {
	client, err := a.client(ctx)
	if err != nil {
		return err
	}

	pool := bgworker.New(ctx, a.workers)
	pool.StopOnShutdown(ctx)

	defer pool.StopAndWait()

	reporter := giramais.NewReporter(ctx, client, pool)
	submit(reporter)

	err = reporter.Wait()

	stats := reporter.Stats()
	fmt.Fprintf(out, "sent %d, skipped %d, failed %d\n", stats.Sent, stats.Skipped, stats.Failed)

	return err
}

// optional returns nil for an empty flag.
func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
